package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safebite/internal/middleware"
	"safebite/internal/service"
	"safebite/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ownerEcho(c *gin.Context) {
	owner, err := middleware.GetOwnerID(c)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner_id": owner})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	owner := uuid.New()
	mockAuth.On("ValidateToken", "valid-token").Return(&service.Claims{OwnerID: owner}, nil)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockAuth))
	r.GET("/test", ownerEcho)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer valid-token")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, owner.String(), resp["owner_id"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockAuth))
	r.GET("/test", ownerEcho)

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
	}
	mockAuth.AssertNotCalled(t, "ValidateToken")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	mockAuth.On("ValidateToken", "bad").Return(nil, errors.New("expired"))

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockAuth))
	r.GET("/test", ownerEcho)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer bad")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or expired token")
}

func TestGetOwnerID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := middleware.GetOwnerID(c)

	assert.Error(t, err)
}
