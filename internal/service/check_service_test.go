package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"safebite/internal/domain"
	"safebite/internal/metrics"
	"safebite/internal/port"
	"safebite/internal/service"
	"safebite/mocks"
)

func TestCheckService_Check_Unsafe(t *testing.T) {
	repo := new(mocks.MockAllergenRepo)
	reg := prometheus.NewRegistry()
	svc := service.NewCheckService(repo, testEngine(t, nil), metrics.New(reg), 2, zap.NewNop())
	owner := uuid.New()

	repo.On("ListByOwner", mock.Anything, owner).Return([]domain.Allergen{testAllergen(owner, "peanut")}, nil)

	v, err := svc.Check(context.Background(), owner, "Ingredients: peanuts, sugar, salt")

	require.NoError(t, err)
	assert.Equal(t, domain.VerdictUnsafe, v.Label)
	require.NotEmpty(t, v.Matches)
	assert.Equal(t, domain.MatchKindExact, v.Matches[0].Kind)

	expected := `
# HELP safebite_verdicts_total Safety verdicts returned, by label.
# TYPE safebite_verdicts_total counter
safebite_verdicts_total{label="UNSAFE"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "safebite_verdicts_total"))
}

func TestCheckService_Check_EmptyEvidence(t *testing.T) {
	repo := new(mocks.MockAllergenRepo)
	svc := service.NewCheckService(repo, testEngine(t, nil), nil, 1, nil)

	_, err := svc.Check(context.Background(), uuid.New(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	repo.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything)
}

func TestCheckService_Check_RepoError(t *testing.T) {
	repo := new(mocks.MockAllergenRepo)
	svc := service.NewCheckService(repo, testEngine(t, nil), nil, 1, nil)
	owner := uuid.New()

	repo.On("ListByOwner", mock.Anything, owner).Return(nil, errors.New("db down"))

	_, err := svc.Check(context.Background(), owner, "milk")

	assert.ErrorContains(t, err, "db down")
}

func TestCheckService_Check_EscalatesThroughGateway(t *testing.T) {
	repo := new(mocks.MockAllergenRepo)
	gw := new(mocks.MockReasoningGateway)
	svc := service.NewCheckService(repo, testEngine(t, gw), nil, 1, nil)
	owner := uuid.New()

	repo.On("ListByOwner", mock.Anything, owner).Return([]domain.Allergen{testAllergen(owner, "peanut")}, nil)
	gw.On("Explain", mock.Anything, port.ExplainInput{Product: "Satay Skewers", Allergens: []string{"peanut"}}).
		Return(&port.ExplainOutput{Allergens: []string{"Peanut"}, Explanation: "Satay sauce is peanut based."}, nil)

	v, err := svc.Check(context.Background(), owner, "Satay Skewers")

	require.NoError(t, err)
	assert.Equal(t, domain.VerdictUnsafe, v.Label)
	assert.Equal(t, "Satay sauce is peanut based.", v.Explanation)
	assert.Equal(t, domain.MatchKindExternal, v.Matches[0].Kind)
}

func TestCheckService_CheckBatch_KeepsOrder(t *testing.T) {
	repo := new(mocks.MockAllergenRepo)
	svc := service.NewCheckService(repo, testEngine(t, nil), nil, 2, nil)
	owner := uuid.New()

	repo.On("ListByOwner", mock.Anything, owner).Return([]domain.Allergen{testAllergen(owner, "milk")}, nil).Once()

	verdicts, err := svc.CheckBatch(context.Background(), owner, []string{
		"Ingredients: whey powder, sugar, cocoa",
		"Ingredients: rice, water, salt",
		"Granola Bar",
	})

	require.NoError(t, err)
	require.Len(t, verdicts, 3)
	assert.Equal(t, domain.VerdictUnsafe, verdicts[0].Label)
	assert.Equal(t, domain.VerdictSafe, verdicts[1].Label)
	assert.Equal(t, domain.VerdictUncertain, verdicts[2].Label)
	repo.AssertExpectations(t)
}

func TestCheckService_CheckBatch_RejectsEmptyItem(t *testing.T) {
	repo := new(mocks.MockAllergenRepo)
	svc := service.NewCheckService(repo, testEngine(t, nil), nil, 2, nil)

	_, err := svc.CheckBatch(context.Background(), uuid.New(), []string{"milk", ""})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "item 1")
	repo.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything)
}

func TestCheckService_CheckBatch_Limits(t *testing.T) {
	svc := service.NewCheckService(new(mocks.MockAllergenRepo), testEngine(t, nil), nil, 2, nil)

	_, err := svc.CheckBatch(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CheckBatch(context.Background(), uuid.New(), make([]string, 51))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
