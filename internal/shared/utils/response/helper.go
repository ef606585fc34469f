package response

import (
	"net/http"

	"venuecap/internal/shared/failure"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes a business failure with its reason and counters, or a
// 500 for anything else.
func RespondError(c *gin.Context, err error) {
	f, ok := failure.As(err)
	if !ok {
		RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
		return
	}
	code := StatusForReason(f.Reason)
	RespondJSON(c, "error", code, f.Message, nil, f)
}

// StatusForReason maps a failure reason to an HTTP status code
func StatusForReason(reason failure.Reason) int {
	switch reason {
	case failure.ResourceNotFound,
		failure.HoldNotFoundOrExpired,
		failure.WaitlistEntryNotFound:
		return http.StatusNotFound
	case failure.ReservationsDisabled,
		failure.HoldOwnedByAnotherUser:
		return http.StatusForbidden
	case failure.PartyTooLarge,
		failure.InvalidPartySize,
		failure.InvalidAmount,
		failure.InvalidSchedule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusConflict
	}
}
