package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_checkin_backend/pkg/utils"
)

var secret = []byte("test-secret")

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin := r.Group("/admin", AuthMiddleware(secret), RoleAuthMiddleware(utils.RoleAdmin))
	admin.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staff": c.GetString(utils.ContextStaffName)})
	})
	return r
}

func token(t *testing.T, key []byte, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.GenerateAccessToken(key, "Mei", role, ttl)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + token(t, []byte("other"), utils.RoleAdmin, time.Hour), http.StatusUnauthorized},
		{"desk role", "Bearer " + token(t, secret, utils.RoleDesk, time.Hour), http.StatusForbidden},
		{"admin role", "Bearer " + token(t, secret, utils.RoleAdmin, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
