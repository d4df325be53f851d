package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"safebite/internal/domain"
	"safebite/internal/handler"
	"safebite/mocks"
)

func TestCheckHandler_Check(t *testing.T) {
	svc := new(mocks.MockCheckService)
	h := handler.NewCheckHandler(svc)
	owner := uuid.New()

	svc.On("Check", mock.Anything, owner, "peanuts, sugar").Return(&domain.Verdict{
		Label: domain.VerdictUnsafe,
		Matches: []domain.MatchResult{
			{AllergenName: "peanut", Token: "peanut", Kind: domain.MatchKindExact, Score: 1},
		},
		Confidence: 1,
		TokenCount: 2,
	}, nil)

	c, w := newContext(t, http.MethodPost, "/api/v1/checks", owner, gin.H{"evidence": "peanuts, sugar"})
	h.Check(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "UNSAFE", data["label"])
	assert.Len(t, data["matches"], 1)
}

func TestCheckHandler_Check_MissingEvidence(t *testing.T) {
	svc := new(mocks.MockCheckService)
	h := handler.NewCheckHandler(svc)

	c, w := newContext(t, http.MethodPost, "/api/v1/checks", uuid.New(), gin.H{})
	h.Check(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckHandler_Check_WhitespaceEvidence(t *testing.T) {
	svc := new(mocks.MockCheckService)
	h := handler.NewCheckHandler(svc)
	owner := uuid.New()

	svc.On("Check", mock.Anything, owner, "   ").Return(nil, domain.ErrInvalidInput)

	c, w := newContext(t, http.MethodPost, "/api/v1/checks", owner, gin.H{"evidence": "   "})
	h.Check(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
}

func TestCheckHandler_CheckBatch(t *testing.T) {
	svc := new(mocks.MockCheckService)
	h := handler.NewCheckHandler(svc)
	owner := uuid.New()
	evidences := []string{"Granola Bar", "water"}

	svc.On("CheckBatch", mock.Anything, owner, evidences).Return([]*domain.Verdict{
		{Label: domain.VerdictUncertain, Confidence: 0.5, TokenCount: 1},
		{Label: domain.VerdictSafe, Confidence: 1, TokenCount: 1},
	}, nil)

	c, w := newContext(t, http.MethodPost, "/api/v1/checks/batch", owner, gin.H{"evidences": evidences})
	h.CheckBatch(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.([]interface{})
	assert.Len(t, data, 2)
	assert.Equal(t, "UNCERTAIN", data[0].(map[string]interface{})["label"])
}
