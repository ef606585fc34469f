package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"venuecap/internal/shared/failure"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForReason(t *testing.T) {
	tests := []struct {
		reason failure.Reason
		want   int
	}{
		{failure.InsufficientCapacity, http.StatusConflict},
		{failure.DuplicateHold, http.StatusConflict},
		{failure.HoldNotFoundOrExpired, http.StatusNotFound},
		{failure.WaitlistEntryNotFound, http.StatusNotFound},
		{failure.ReservationsDisabled, http.StatusForbidden},
		{failure.PartyTooLarge, http.StatusUnprocessableEntity},
		{failure.WouldGoNegative, http.StatusConflict},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForReason(tt.reason), string(tt.reason))
	}
}

func TestRespondErrorCarriesAvailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, failure.New(failure.InsufficientCapacity, "only 4 left").WithAvailable(4))

	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Status string          `json:"status"`
		Errors failure.Failure `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, failure.InsufficientCapacity, body.Errors.Reason)
	assert.Equal(t, 4, *body.Errors.Available)
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
