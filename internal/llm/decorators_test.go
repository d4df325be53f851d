package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"safebite/internal/llm"
	"safebite/internal/metrics"
	"safebite/internal/port"
	"safebite/mocks"
)

func TestRateLimitedGateway_WaitsWithinDeadline(t *testing.T) {
	next := new(mocks.MockReasoningGateway)
	next.On("Explain", mock.Anything, adviceInput).Return(&port.ExplainOutput{Model: "m"}, nil)
	g := llm.NewRateLimitedGateway(next, 0.001, 1)

	_, err := g.Explain(context.Background(), adviceInput)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Explain(ctx, adviceInput)

	assert.ErrorIs(t, err, llm.ErrRateLimited)
	next.AssertNumberOfCalls(t, "Explain", 1)
}

func TestRateLimitedGateway_ZeroRateIsUnlimited(t *testing.T) {
	next := new(mocks.MockReasoningGateway)
	next.On("Explain", mock.Anything, adviceInput).Return(&port.ExplainOutput{}, nil)
	g := llm.NewRateLimitedGateway(next, 0, 0)

	for i := 0; i < 5; i++ {
		_, err := g.Explain(context.Background(), adviceInput)
		require.NoError(t, err)
	}
}

func TestCachedGateway_HitSkipsProvider(t *testing.T) {
	next := new(mocks.MockReasoningGateway)
	cache := new(mocks.MockAdviceCache)
	cached := &port.ExplainOutput{Explanation: "cached", Model: "m"}
	cache.On("Get", mock.Anything, llm.CacheKey(adviceInput)).Return(cached, true, nil)

	g := llm.NewCachedGateway(next, cache, nil, nil)
	out, err := g.Explain(context.Background(), adviceInput)

	require.NoError(t, err)
	assert.Equal(t, cached, out)
	next.AssertNotCalled(t, "Explain", mock.Anything, mock.Anything)
}

func TestCachedGateway_MissStoresAnswer(t *testing.T) {
	next := new(mocks.MockReasoningGateway)
	cache := new(mocks.MockAdviceCache)
	fresh := &port.ExplainOutput{Explanation: "fresh"}
	key := llm.CacheKey(adviceInput)
	cache.On("Get", mock.Anything, key).Return(nil, false, nil)
	next.On("Explain", mock.Anything, adviceInput).Return(fresh, nil)
	cache.On("Set", mock.Anything, key, fresh).Return(nil)

	g := llm.NewCachedGateway(next, cache, nil, nil)
	out, err := g.Explain(context.Background(), adviceInput)

	require.NoError(t, err)
	assert.Equal(t, fresh, out)
	cache.AssertExpectations(t)
}

func TestCachedGateway_CacheErrorsAreBypassed(t *testing.T) {
	next := new(mocks.MockReasoningGateway)
	cache := new(mocks.MockAdviceCache)
	fresh := &port.ExplainOutput{Explanation: "fresh"}
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.New("redis down"))
	cache.On("Set", mock.Anything, mock.Anything, fresh).Return(errors.New("redis down"))
	next.On("Explain", mock.Anything, adviceInput).Return(fresh, nil)

	g := llm.NewCachedGateway(next, cache, nil, nil)
	out, err := g.Explain(context.Background(), adviceInput)

	require.NoError(t, err)
	assert.Equal(t, fresh, out)
}

func TestCachedGateway_ProviderErrorNotCached(t *testing.T) {
	next := new(mocks.MockReasoningGateway)
	cache := new(mocks.MockAdviceCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	next.On("Explain", mock.Anything, adviceInput).Return(nil, errors.New("boom"))

	g := llm.NewCachedGateway(next, cache, nil, nil)
	_, err := g.Explain(context.Background(), adviceInput)

	assert.Error(t, err)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheKey_IgnoresOrderAndCase(t *testing.T) {
	a := llm.CacheKey(port.ExplainInput{Product: "Granola Bar", Allergens: []string{"peanut", "Milk"}})
	b := llm.CacheKey(port.ExplainInput{Product: " granola bar", Allergens: []string{"milk", "peanut"}})
	c := llm.CacheKey(port.ExplainInput{Product: "granola bar", Allergens: []string{"milk"}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestInstrumentedGateway_Outcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ok := new(mocks.MockReasoningGateway)
	ok.On("Explain", mock.Anything, mock.Anything).Return(&port.ExplainOutput{}, nil)
	failing := new(mocks.MockReasoningGateway)
	failing.On("Explain", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	_, _ = llm.NewInstrumentedGateway(ok, m).Explain(context.Background(), adviceInput)
	_, _ = llm.NewInstrumentedGateway(failing, m).Explain(context.Background(), adviceInput)

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "safebite_gateway_requests_total"))
}
