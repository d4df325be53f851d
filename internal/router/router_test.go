package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"safebite/internal/config"
	"safebite/internal/domain"
	"safebite/internal/handler"
	"safebite/internal/metrics"
	"safebite/internal/router"
	"safebite/internal/service"
	"safebite/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type fixture struct {
	engine    *gin.Engine
	auth      service.AuthService
	allergens *mocks.MockAllergenService
	checks    *mocks.MockCheckService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	metrics.New(reg).ObserveVerdict(&domain.Verdict{Label: domain.VerdictSafe})

	auth := service.NewAuthService(&config.JWTConfig{Secret: "router-test-secret", Issuer: "safebite", TTL: time.Hour})
	allergens := new(mocks.MockAllergenService)
	documents := new(mocks.MockDocumentService)
	checks := new(mocks.MockCheckService)

	r := router.Setup(zap.NewNop(), auth, router.Handlers{
		Allergen:  handler.NewAllergenHandler(allergens),
		Document:  handler.NewDocumentHandler(documents),
		Candidate: handler.NewCandidateHandler(documents),
		Check:     handler.NewCheckHandler(checks),
		Health:    handler.NewHealthHandler(okPinger{}),
	}, reg, []string{"*"})

	return &fixture{engine: r, auth: auth, allergens: allergens, checks: checks}
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = f.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `safebite_verdicts_total{label="SAFE"} 1`)
}

func TestRouter_ProtectedRequiresToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/allergens", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.allergens.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestRouter_OwnerFromToken(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	token, _, err := f.auth.IssueToken(owner)
	require.NoError(t, err)

	f.allergens.On("List", mock.Anything, owner).Return([]domain.Allergen{}, nil)
	f.allergens.On("Delete", mock.Anything, owner, "milk").Return(nil)
	f.checks.On("Check", mock.Anything, owner, "peanuts").
		Return(&domain.Verdict{Label: domain.VerdictUnsafe, Confidence: 1, TokenCount: 1}, nil)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/allergens", token, "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/api/v1/allergens/milk", token, "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/checks", token, `{"evidence":"peanuts"}`).Code)

	f.allergens.AssertExpectations(t)
	f.checks.AssertExpectations(t)
}
