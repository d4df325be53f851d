package port

import (
	"context"

	"safebite/internal/domain"
)

// ExplainInput is the constrained question put to the reasoning gateway.
type ExplainInput struct {
	Product   string
	Allergens []string
}

// ExplainOutput is the gateway's advisory answer. VerdictHint is nil when
// the provider did not commit to a verdict.
type ExplainOutput struct {
	VerdictHint *domain.VerdictLabel `json:"verdict_hint,omitempty"`
	Allergens   []string             `json:"allergens,omitempty"`
	Explanation string               `json:"explanation"`
	Model       string               `json:"model"`
}

// ReasoningGateway is an untrusted advisory oracle with no availability,
// latency or determinism guarantees.
type ReasoningGateway interface {
	Explain(ctx context.Context, input ExplainInput) (*ExplainOutput, error)
}

// AdviceCache stores gateway answers keyed by question.
type AdviceCache interface {
	Get(ctx context.Context, key string) (*ExplainOutput, bool, error)
	Set(ctx context.Context, key string, out *ExplainOutput) error
}
