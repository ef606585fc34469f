package waitlist

import (
	"net/http"
	"strconv"
	"time"

	"venuecap/internal/shared/middleware"
	"venuecap/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	JoinWaitlist(c *gin.Context)
	GetPosition(c *gin.Context)
	LeaveWaitlist(c *gin.Context)

	GetQueue(c *gin.Context)
	GetNextInQueue(c *gin.Context)
	GetTotalWaitingPartySize(c *gin.Context)
	GetWaitlistStats(c *gin.Context)
	NotifyUser(c *gin.Context)
	ConvertToReservation(c *gin.Context)
	ExpireNotification(c *gin.Context)
	CleanupExpiredNotifications(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid "+what+" ID", nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (ctrl *controller) JoinWaitlist(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}

	var req JoinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.AddToWaitlist(c.Request.Context(), req.ResourceID, userID, req.PartySize, req.RequiresAccessibility)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	if result.AlreadyInQueue {
		response.RespondJSON(c, "success", http.StatusOK, "Already in waitlist", result, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Successfully joined waitlist", result, nil)
}

func (ctrl *controller) GetPosition(c *gin.Context) {
	entry, ok := ctrl.ownedEntry(c)
	if !ok {
		return
	}

	pos, err := ctrl.service.GetPosition(c.Request.Context(), entry.ID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Position retrieved successfully", pos, nil)
}

func (ctrl *controller) LeaveWaitlist(c *gin.Context) {
	entry, ok := ctrl.ownedEntry(c)
	if !ok {
		return
	}

	removed, err := ctrl.service.RemoveFromWaitlist(c.Request.Context(), entry.ID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Successfully left waitlist", removed, nil)
}

// ownedEntry loads the entry in :id for its owner or an admin
func (ctrl *controller) ownedEntry(c *gin.Context) (*WaitlistEntry, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil, false
	}
	entryID, ok := parseID(c, "waitlist entry")
	if !ok {
		return nil, false
	}

	entry, err := ctrl.service.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		response.RespondError(c, err)
		return nil, false
	}
	if entry.UserID != userID && !middleware.IsAdmin(c) {
		response.RespondJSON(c, "error", http.StatusForbidden, "Waitlist entry belongs to another user", nil, nil)
		return nil, false
	}
	return entry, true
}

//  ADMIN

func (ctrl *controller) GetQueue(c *gin.Context) {
	resourceID, ok := parseID(c, "resource")
	if !ok {
		return
	}

	entries, err := ctrl.service.GetWaitlistForVenueMatch(c.Request.Context(), resourceID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist retrieved successfully", QueueResponse{
		ResourceID: resourceID,
		Entries:    entries,
		Count:      len(entries),
	}, nil)
}

func (ctrl *controller) GetNextInQueue(c *gin.Context) {
	resourceID, ok := parseID(c, "resource")
	if !ok {
		return
	}

	var maxPartySize *int
	if raw := c.Query("max_party_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondJSON(c, "error", http.StatusBadRequest, "max_party_size must be a positive integer", nil, nil)
			return
		}
		maxPartySize = &n
	}
	accessibleOnly, _ := strconv.ParseBool(c.Query("accessible"))

	entry, err := ctrl.service.GetNextInQueue(c.Request.Context(), resourceID, maxPartySize, accessibleOnly)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if entry == nil {
		response.RespondJSON(c, "success", http.StatusOK, "No matching entry in queue", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Next entry retrieved successfully", entry, nil)
}

func (ctrl *controller) GetTotalWaitingPartySize(c *gin.Context) {
	resourceID, ok := parseID(c, "resource")
	if !ok {
		return
	}

	total, err := ctrl.service.GetTotalWaitingPartySize(c.Request.Context(), resourceID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waiting party size retrieved successfully", PartySizeResponse{
		ResourceID:       resourceID,
		WaitingPartySize: total,
	}, nil)
}

func (ctrl *controller) GetWaitlistStats(c *gin.Context) {
	resourceID, ok := parseID(c, "resource")
	if !ok {
		return
	}

	stats, err := ctrl.service.GetWaitlistStats(c.Request.Context(), resourceID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist stats retrieved successfully", stats, nil)
}

func (ctrl *controller) NotifyUser(c *gin.Context) {
	entryID, ok := parseID(c, "waitlist entry")
	if !ok {
		return
	}

	var req NotifyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
			return
		}
	}

	entry, err := ctrl.service.NotifyUserManually(c.Request.Context(), entryID, time.Duration(req.WindowMinutes)*time.Minute)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "User notified", entry, nil)
}

func (ctrl *controller) ConvertToReservation(c *gin.Context) {
	entryID, ok := parseID(c, "waitlist entry")
	if !ok {
		return
	}

	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	entry, err := ctrl.service.ConvertToReservation(c.Request.Context(), entryID, req.ReservationID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist entry converted", entry, nil)
}

func (ctrl *controller) ExpireNotification(c *gin.Context) {
	entryID, ok := parseID(c, "waitlist entry")
	if !ok {
		return
	}

	entry, err := ctrl.service.ExpireNotification(c.Request.Context(), entryID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Notification expired", entry, nil)
}

func (ctrl *controller) CleanupExpiredNotifications(c *gin.Context) {
	result, err := ctrl.service.CleanupExpiredNotifications(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Lapsed notifications processed", result, nil)
}
