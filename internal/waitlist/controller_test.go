package waitlist_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"venuecap/internal/waitlist"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors"`
}

// fakeAuth stands in for JWTAuth and copies identity from test headers
func fakeAuth(c *gin.Context) {
	if id := c.GetHeader("X-Test-User"); id != "" {
		c.Set("user_id", id)
		c.Set("user_role", c.GetHeader("X-Test-Role"))
	}
	c.Next()
}

func newTestRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	ctrl := waitlist.NewController(f.svc)

	r := gin.New()
	r.Use(fakeAuth)
	r.POST("/waitlist", ctrl.JoinWaitlist)
	r.GET("/waitlist/:id/position", ctrl.GetPosition)
	r.DELETE("/waitlist/:id", ctrl.LeaveWaitlist)
	r.GET("/admin/waitlist/resources/:id", ctrl.GetQueue)
	r.GET("/admin/waitlist/resources/:id/next", ctrl.GetNextInQueue)
	r.POST("/admin/waitlist/:id/notify", ctrl.NotifyUser)
	r.POST("/admin/waitlist/:id/convert", ctrl.ConvertToReservation)
	return r, f
}

func do(t *testing.T, r http.Handler, method, path, user, role string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
		req.Header.Set("X-Test-Role", role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestControllerJoinAndPosition(t *testing.T) {
	r, f := newTestRouter(t)
	resourceID := f.ledger.Add(10, 0, true)
	user := uuid.NewString()

	w, resp := do(t, r, http.MethodPost, "/waitlist", user, "USER", gin.H{"resource_id": resourceID, "party_size": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	var joined waitlist.JoinResult
	require.NoError(t, json.Unmarshal(resp.Data, &joined))
	assert.Equal(t, 1, joined.Position)

	w, _ = do(t, r, http.MethodPost, "/waitlist", user, "USER", gin.H{"resource_id": resourceID, "party_size": 2})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = do(t, r, http.MethodGet, "/waitlist/"+joined.Entry.ID.String()+"/position", user, "USER", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pos waitlist.PositionResult
	require.NoError(t, json.Unmarshal(resp.Data, &pos))
	assert.Equal(t, 1, pos.Position)
	assert.Zero(t, pos.PeopleAhead)

	w, _ = do(t, r, http.MethodGet, "/waitlist/"+joined.Entry.ID.String()+"/position", uuid.NewString(), "USER", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/waitlist/"+joined.Entry.ID.String(), uuid.NewString(), "ADMIN", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestControllerJoinErrors(t *testing.T) {
	r, f := newTestRouter(t)
	resourceID := f.ledger.Add(10, 2, true)

	w, _ := do(t, r, http.MethodPost, "/waitlist", "", "", gin.H{"resource_id": resourceID, "party_size": 2})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodPost, "/waitlist", uuid.NewString(), "USER", gin.H{"party_size": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := do(t, r, http.MethodPost, "/waitlist", uuid.NewString(), "USER", gin.H{"resource_id": resourceID, "party_size": 3})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(resp.Errors), `"max_group_size":2`)

	w, _ = do(t, r, http.MethodGet, "/waitlist/not-a-uuid/position", uuid.NewString(), "USER", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestControllerAdminNotifyAndConvert(t *testing.T) {
	r, f := newTestRouter(t)
	resourceID := f.ledger.Add(10, 0, true)
	entry := f.join(t, resourceID, 2, false)
	admin := uuid.NewString()

	w, resp := do(t, r, http.MethodGet, "/admin/waitlist/resources/"+resourceID.String()+"/next?max_party_size=2", admin, "ADMIN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), entry.ID.String())

	w, resp = do(t, r, http.MethodPost, "/admin/waitlist/"+entry.ID.String()+"/notify", admin, "ADMIN", gin.H{"window_minutes": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var notified waitlist.WaitlistEntry
	require.NoError(t, json.Unmarshal(resp.Data, &notified))
	assert.Equal(t, waitlist.StatusNotified, notified.Status)

	w, _ = do(t, r, http.MethodPost, "/admin/waitlist/"+entry.ID.String()+"/notify", admin, "ADMIN", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, r, http.MethodPost, "/admin/waitlist/"+entry.ID.String()+"/convert", admin, "ADMIN", gin.H{"reservation_id": uuid.NewString()})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = do(t, r, http.MethodGet, "/admin/waitlist/resources/"+resourceID.String(), admin, "ADMIN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var queue waitlist.QueueResponse
	require.NoError(t, json.Unmarshal(resp.Data, &queue))
	assert.Zero(t, queue.Count)
}

func TestControllerNextInQueueEmpty(t *testing.T) {
	r, f := newTestRouter(t)
	resourceID := f.ledger.Add(10, 0, true)

	w, resp := do(t, r, http.MethodGet, "/admin/waitlist/resources/"+resourceID.String()+"/next", uuid.NewString(), "ADMIN", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data)
	assert.Equal(t, "No matching entry in queue", resp.Message)

	w, _ = do(t, r, http.MethodGet, "/admin/waitlist/resources/"+resourceID.String()+"/next?max_party_size=0", uuid.NewString(), "ADMIN", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
