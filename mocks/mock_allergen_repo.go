package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"safebite/internal/domain"
	"safebite/internal/port"
)

// MockAllergenRepo is a mock implementation of port.AllergenRepository.
type MockAllergenRepo struct {
	mock.Mock
}

func (m *MockAllergenRepo) Create(ctx context.Context, allergen *domain.Allergen) error {
	args := m.Called(ctx, allergen)
	return args.Error(0)
}

func (m *MockAllergenRepo) GetByName(ctx context.Context, ownerID uuid.UUID, canonicalName string) (*domain.Allergen, error) {
	args := m.Called(ctx, ownerID, canonicalName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allergen), args.Error(1)
}

func (m *MockAllergenRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Allergen, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allergen), args.Error(1)
}

func (m *MockAllergenRepo) Rename(ctx context.Context, allergen *domain.Allergen) error {
	args := m.Called(ctx, allergen)
	return args.Error(0)
}

func (m *MockAllergenRepo) Delete(ctx context.Context, ownerID uuid.UUID, canonicalName string) error {
	args := m.Called(ctx, ownerID, canonicalName)
	return args.Error(0)
}

// MockCandidateRepo is a mock implementation of port.CandidateRepository.
type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Upsert(ctx context.Context, candidates []domain.CandidateAllergen) ([]domain.CandidateAllergen, error) {
	args := m.Called(ctx, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateAllergen), args.Error(1)
}

func (m *MockCandidateRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.CandidateAllergen, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateAllergen), args.Error(1)
}

func (m *MockCandidateRepo) DeleteByNames(ctx context.Context, ownerID uuid.UUID, names []string) (int, error) {
	args := m.Called(ctx, ownerID, names)
	return args.Int(0), args.Error(1)
}

// MockLabelDocumentRepo is a mock implementation of port.LabelDocumentRepository.
type MockLabelDocumentRepo struct {
	mock.Mock
}

func (m *MockLabelDocumentRepo) Create(ctx context.Context, doc *domain.LabelDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockLabelDocumentRepo) UpdateStatus(ctx context.Context, ownerID, docID uuid.UUID, status domain.DocumentStatus) error {
	args := m.Called(ctx, ownerID, docID, status)
	return args.Error(0)
}

// MockAliasRepo is a mock implementation of port.AliasRepository.
type MockAliasRepo struct {
	mock.Mock
}

func (m *MockAliasRepo) LoadAll(ctx context.Context) ([]port.AliasEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.AliasEntry), args.Error(1)
}
