package holds

import (
	"net/http"

	"venuecap/internal/shared/failure"
	"venuecap/internal/shared/middleware"
	"venuecap/internal/shared/utils/response"
	"venuecap/pkg/clock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateHold(c *gin.Context)
	GetHold(c *gin.Context)
	ConfirmHold(c *gin.Context)
	CancelHold(c *gin.Context)
	GetUserHolds(c *gin.Context)
}

type controller struct {
	service Service
	clock   clock.Clock
}

func NewController(service Service, clk clock.Clock) Controller {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &controller{service: service, clock: clk}
}

func (ctrl *controller) CreateHold(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}

	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	hold, err := ctrl.service.CreateHold(c.Request.Context(), req.ResourceID, userID, req.PartySize)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Capacity held", hold.ToResponse(ctrl.clock.Now()), nil)
}

func (ctrl *controller) GetHold(c *gin.Context) {
	hold, ok := ctrl.ownedHold(c)
	if !ok {
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Hold retrieved successfully", hold.ToResponse(ctrl.clock.Now()), nil)
}

func (ctrl *controller) ConfirmHold(c *gin.Context) {
	hold, ok := ctrl.ownedHold(c)
	if !ok {
		return
	}

	confirmed, err := ctrl.service.ConfirmHold(c.Request.Context(), hold.ID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Hold confirmed", confirmed.ToResponse(ctrl.clock.Now()), nil)
}

func (ctrl *controller) CancelHold(c *gin.Context) {
	hold, ok := ctrl.ownedHold(c)
	if !ok {
		return
	}

	released, err := ctrl.service.CancelHold(c.Request.Context(), hold.ID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Hold released", released.ToResponse(ctrl.clock.Now()), nil)
}

func (ctrl *controller) GetUserHolds(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}

	holds, err := ctrl.service.GetUserHolds(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	now := ctrl.clock.Now()
	out := make([]HoldResponse, 0, len(holds))
	for i := range holds {
		out = append(out, holds[i].ToResponse(now))
	}
	response.RespondJSON(c, "success", http.StatusOK, "Holds retrieved successfully", UserHoldsResponse{
		Holds: out,
		Count: len(out),
	}, nil)
}

// ownedHold loads the hold in :id and checks the caller may act on it.
// Admins may act on any hold.
func (ctrl *controller) ownedHold(c *gin.Context) (*Hold, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil, false
	}
	holdID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid hold ID", nil, err.Error())
		return nil, false
	}

	hold, err := ctrl.service.GetHold(c.Request.Context(), holdID)
	if err != nil {
		response.RespondError(c, err)
		return nil, false
	}
	if hold.OwnerID != userID && !middleware.IsAdmin(c) {
		response.RespondError(c, failure.New(failure.HoldOwnedByAnotherUser, "hold belongs to another user"))
		return nil, false
	}
	return hold, true
}
