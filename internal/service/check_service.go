package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"safebite/internal/domain"
	"safebite/internal/engine"
	"safebite/internal/metrics"
	"safebite/internal/port"
)

const maxBatchChecks = 50

// CheckService answers "is this safe for me?" against an owner's allergens.
type CheckService interface {
	Check(ctx context.Context, ownerID uuid.UUID, evidence string) (*domain.Verdict, error)
	// CheckBatch returns one verdict per evidence text, in input order.
	CheckBatch(ctx context.Context, ownerID uuid.UUID, evidences []string) ([]*domain.Verdict, error)
}

type checkService struct {
	repo        port.AllergenRepository
	engine      *engine.Engine
	metrics     *metrics.Metrics
	concurrency int
	logger      *zap.Logger
}

// NewCheckService creates a new CheckService. concurrency bounds the
// parallel checks of a batch.
func NewCheckService(
	repo port.AllergenRepository,
	eng *engine.Engine,
	m *metrics.Metrics,
	concurrency int,
	logger *zap.Logger,
) CheckService {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &checkService{
		repo:        repo,
		engine:      eng,
		metrics:     m,
		concurrency: concurrency,
		logger:      logger.Named("checks"),
	}
}

func (s *checkService) Check(ctx context.Context, ownerID uuid.UUID, evidence string) (*domain.Verdict, error) {
	if strings.TrimSpace(evidence) == "" {
		return nil, fmt.Errorf("%w: evidence text is empty", domain.ErrInvalidInput)
	}
	allergens, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.check(ctx, ownerID, evidence, allergens)
}

func (s *checkService) CheckBatch(ctx context.Context, ownerID uuid.UUID, evidences []string) ([]*domain.Verdict, error) {
	if len(evidences) == 0 || len(evidences) > maxBatchChecks {
		return nil, fmt.Errorf("%w: between 1 and %d items required", domain.ErrInvalidInput, maxBatchChecks)
	}
	for i, ev := range evidences {
		if strings.TrimSpace(ev) == "" {
			return nil, fmt.Errorf("%w: item %d has empty evidence text", domain.ErrInvalidInput, i)
		}
	}

	allergens, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	verdicts := make([]*domain.Verdict, len(evidences))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ev := range evidences {
		g.Go(func() error {
			v, err := s.check(gctx, ownerID, ev, allergens)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

func (s *checkService) check(ctx context.Context, ownerID uuid.UUID, evidence string, allergens []domain.Allergen) (*domain.Verdict, error) {
	v, err := s.engine.CheckSafety(ctx, evidence, allergens)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveVerdict(v)
	s.logger.Debug("safety check",
		zap.String("owner_id", ownerID.String()),
		zap.String("label", string(v.Label)),
		zap.Int("matches", len(v.Matches)),
		zap.Int("tokens", v.TokenCount))
	return v, nil
}
