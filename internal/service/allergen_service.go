package service

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"safebite/internal/domain"
	"safebite/internal/engine"
	"safebite/internal/port"
)

const (
	minNameLength = 2
	maxNameLength = 50
	maxBatchNames = 100
)

// BatchAddResult reports the outcome of AddBatch per name.
type BatchAddResult struct {
	Added    []domain.Allergen `json:"added"`
	Existing []domain.Allergen `json:"existing"`
	Invalid  []string          `json:"invalid"`
}

// AllergenService manages the allergens registered by an owner.
type AllergenService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Allergen, error)
	// Register is idempotent: an existing allergen is returned with created=false.
	Register(ctx context.Context, ownerID uuid.UUID, rawName string) (*domain.Allergen, bool, error)
	AddBatch(ctx context.Context, ownerID uuid.UUID, rawNames []string) (*BatchAddResult, error)
	Rename(ctx context.Context, ownerID uuid.UUID, oldName, newRawName string) (*domain.Allergen, error)
	Delete(ctx context.Context, ownerID uuid.UUID, name string) error
	DeleteBatch(ctx context.Context, ownerID uuid.UUID, names []string) (int, error)
}

type allergenService struct {
	repo     port.AllergenRepository
	resolver *engine.Resolver
	logger   *zap.Logger
}

// NewAllergenService creates a new AllergenService.
func NewAllergenService(repo port.AllergenRepository, resolver *engine.Resolver, logger *zap.Logger) AllergenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &allergenService{repo: repo, resolver: resolver, logger: logger.Named("allergens")}
}

// CanonicalAllergenName normalizes a user-supplied allergen name and checks
// it is 2 to 50 characters long with at least one letter.
func CanonicalAllergenName(raw string) (string, error) {
	name, err := engine.Normalize(raw)
	if err != nil {
		return "", err
	}
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return "", fmt.Errorf("%w: allergen name must be %d to %d characters", domain.ErrInvalidInput, minNameLength, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsLetter(r) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: allergen name must contain a letter", domain.ErrInvalidInput)
}

func (s *allergenService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Allergen, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *allergenService) Register(ctx context.Context, ownerID uuid.UUID, rawName string) (*domain.Allergen, bool, error) {
	name, err := CanonicalAllergenName(rawName)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByName(ctx, ownerID, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	allergen := &domain.Allergen{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		CanonicalName: name,
		Aliases:       s.aliasesOf(name),
	}
	if err := s.repo.Create(ctx, allergen); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, domain.ErrConflict) {
			existing, getErr := s.repo.GetByName(ctx, ownerID, name)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.logger.Info("allergen registered",
		zap.String("owner_id", ownerID.String()),
		zap.String("name", name),
		zap.Int("aliases", len(allergen.Aliases)))
	return allergen, true, nil
}

func (s *allergenService) AddBatch(ctx context.Context, ownerID uuid.UUID, rawNames []string) (*BatchAddResult, error) {
	if len(rawNames) == 0 || len(rawNames) > maxBatchNames {
		return nil, fmt.Errorf("%w: between 1 and %d names required", domain.ErrInvalidInput, maxBatchNames)
	}

	result := &BatchAddResult{
		Added:    []domain.Allergen{},
		Existing: []domain.Allergen{},
		Invalid:  []string{},
	}
	for _, raw := range rawNames {
		allergen, created, err := s.Register(ctx, ownerID, raw)
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			result.Invalid = append(result.Invalid, raw)
		case err != nil:
			return nil, err
		case created:
			result.Added = append(result.Added, *allergen)
		default:
			result.Existing = append(result.Existing, *allergen)
		}
	}
	return result, nil
}

func (s *allergenService) Rename(ctx context.Context, ownerID uuid.UUID, oldName, newRawName string) (*domain.Allergen, error) {
	oldCanonical, err := engine.Normalize(oldName)
	if err != nil {
		return nil, err
	}
	newCanonical, err := CanonicalAllergenName(newRawName)
	if err != nil {
		return nil, err
	}

	allergen, err := s.repo.GetByName(ctx, ownerID, oldCanonical)
	if err != nil {
		return nil, err
	}
	if newCanonical == allergen.CanonicalName {
		return allergen, nil
	}

	if _, err := s.repo.GetByName(ctx, ownerID, newCanonical); err == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrConflict, newCanonical)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	allergen.CanonicalName = newCanonical
	allergen.Aliases = s.aliasesOf(newCanonical)
	if err := s.repo.Rename(ctx, allergen); err != nil {
		return nil, err
	}

	s.logger.Info("allergen renamed",
		zap.String("owner_id", ownerID.String()),
		zap.String("from", oldCanonical),
		zap.String("to", newCanonical))
	return allergen, nil
}

func (s *allergenService) Delete(ctx context.Context, ownerID uuid.UUID, name string) error {
	canonical, err := engine.Normalize(name)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerID, canonical)
}

func (s *allergenService) DeleteBatch(ctx context.Context, ownerID uuid.UUID, names []string) (int, error) {
	if len(names) == 0 || len(names) > maxBatchNames {
		return 0, fmt.Errorf("%w: between 1 and %d names required", domain.ErrInvalidInput, maxBatchNames)
	}

	deleted := 0
	for _, name := range names {
		err := s.Delete(ctx, ownerID, name)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		default:
			return deleted, err
		}
	}
	return deleted, nil
}

func (s *allergenService) aliasesOf(name string) []string {
	aliases := s.resolver.AliasesOf(name)
	if aliases == nil {
		return []string{}
	}
	return aliases
}
