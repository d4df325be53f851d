package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"safebite/internal/handler"
	"safebite/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newContext builds a test context carrying an authenticated owner. A nil
// body sends no payload; anything else is JSON-encoded.
func newContext(t *testing.T, method, path string, ownerID uuid.UUID, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	if ownerID != uuid.Nil {
		c.Set(middleware.ContextKeyOwnerID, ownerID)
	}
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

