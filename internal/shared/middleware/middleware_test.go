package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venuecap/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func accessClaims(userID, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"email":   "someone@example.com",
		"role":    role,
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	r.GET("/me", JWTAuthWithConfig(cfg), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})
	r.GET("/admin", JWTAuthWithConfig(cfg), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func request(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newAuthRouter()
	userID := uuid.New()

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"valid access token", signToken(t, testSecret, accessClaims(userID.String(), "USER")), http.StatusOK},
		{"wrong secret", signToken(t, "other", accessClaims(userID.String(), "USER")), http.StatusUnauthorized},
		{"refresh token rejected", signToken(t, testSecret, jwt.MapClaims{"user_id": userID.String(), "type": "refresh"}), http.StatusUnauthorized},
		{"expired", signToken(t, testSecret, jwt.MapClaims{"user_id": userID.String(), "type": "access", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(r, "/me", tt.token)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	r := newAuthRouter()

	w := request(r, "/admin", signToken(t, testSecret, accessClaims(uuid.NewString(), "USER")))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(r, "/admin", signToken(t, testSecret, accessClaims(uuid.NewString(), "ADMIN")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCurrentUserIDRejectsMalformedID(t *testing.T) {
	r := newAuthRouter()
	w := request(r, "/me", signToken(t, testSecret, accessClaims("not-a-uuid", "USER")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = request(r, "/", "")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}
