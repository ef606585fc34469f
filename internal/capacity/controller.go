package capacity

import (
	"net/http"
	"strconv"

	"venuecap/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CheckAvailability(c *gin.Context)
	GetCapacityStats(c *gin.Context)
	BlockCapacity(c *gin.Context)
	UnblockCapacity(c *gin.Context)
	SetBlockedCapacity(c *gin.Context)
	ReleaseReservedCapacity(c *gin.Context)
	UpdateSettings(c *gin.Context)
	AuditInvariant(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func parseResourceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid resource ID", nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// CheckAvailability answers from the capacity cache, so a positive result
// is advisory until a hold is taken.
func (ctrl *controller) CheckAvailability(c *gin.Context) {
	resourceID, ok := parseResourceID(c)
	if !ok {
		return
	}

	partySize, err := strconv.Atoi(c.Query("party_size"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "party_size must be an integer", nil, err.Error())
		return
	}

	result, err := ctrl.service.CheckAvailability(c.Request.Context(), resourceID, partySize)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Availability checked", AvailabilityResponse{
		ResourceID:         resourceID,
		PartySize:          partySize,
		AvailabilityResult: result,
	}, nil)
}

func (ctrl *controller) GetCapacityStats(c *gin.Context) {
	resourceID, ok := parseResourceID(c)
	if !ok {
		return
	}
	skipCache, _ := strconv.ParseBool(c.Query("skip_cache"))

	stats, err := ctrl.service.GetCapacityStats(c.Request.Context(), resourceID, skipCache)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Capacity retrieved successfully", stats, nil)
}

func (ctrl *controller) BlockCapacity(c *gin.Context) {
	resourceID, ok := parseResourceID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	stats, err := ctrl.service.BlockCapacity(c.Request.Context(), resourceID, req.Amount)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Capacity blocked", stats, nil)
}

func (ctrl *controller) UnblockCapacity(c *gin.Context) {
	resourceID, ok := parseResourceID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	stats, err := ctrl.service.UnblockCapacity(c.Request.Context(), resourceID, req.Amount)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Capacity unblocked", stats, nil)
}

func (ctrl *controller) SetBlockedCapacity(c *gin.Context) {
	resourceID, ok := parseResourceID(c)
	if !ok {
		return
	}
	var req SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	stats, err := ctrl.service.SetBlockedCapacity(c.Request.Context(), resourceID, *req.Blocked)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Blocked capacity set", stats, nil)
}

func (ctrl *controller) ReleaseReservedCapacity(c *gin.Context) {
	resourceID, ok := parseResourceID(c)
	if !ok {
		return
	}
	var req ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.ReleaseReservedCapacity(c.Request.Context(), resourceID, req.PartySize)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	message := "Reserved capacity released"
	if result.Clamped {
		message = "Reserved capacity released, clamped at zero"
	}
	response.RespondJSON(c, "success", http.StatusOK, message, result, nil)
}

func (ctrl *controller) UpdateSettings(c *gin.Context) {
	resourceID, ok := parseResourceID(c)
	if !ok {
		return
	}
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	stats, err := ctrl.service.UpdateSettings(c.Request.Context(), resourceID, req.ToUpdate())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation settings updated", stats, nil)
}

func (ctrl *controller) AuditInvariant(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	recs, err := ctrl.service.AuditInvariant(c.Request.Context(), limit)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Capacity audit complete", AuditResponse{
		Unbalanced: recs,
		Count:      len(recs),
	}, nil)
}
