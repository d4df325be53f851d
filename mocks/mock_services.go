package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"safebite/internal/domain"
	"safebite/internal/service"
)

// MockAllergenService is a mock implementation of service.AllergenService.
type MockAllergenService struct {
	mock.Mock
}

func (m *MockAllergenService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Allergen, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allergen), args.Error(1)
}

func (m *MockAllergenService) Register(ctx context.Context, ownerID uuid.UUID, rawName string) (*domain.Allergen, bool, error) {
	args := m.Called(ctx, ownerID, rawName)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Allergen), args.Bool(1), args.Error(2)
}

func (m *MockAllergenService) AddBatch(ctx context.Context, ownerID uuid.UUID, rawNames []string) (*service.BatchAddResult, error) {
	args := m.Called(ctx, ownerID, rawNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchAddResult), args.Error(1)
}

func (m *MockAllergenService) Rename(ctx context.Context, ownerID uuid.UUID, oldName, newRawName string) (*domain.Allergen, error) {
	args := m.Called(ctx, ownerID, oldName, newRawName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allergen), args.Error(1)
}

func (m *MockAllergenService) Delete(ctx context.Context, ownerID uuid.UUID, name string) error {
	args := m.Called(ctx, ownerID, name)
	return args.Error(0)
}

func (m *MockAllergenService) DeleteBatch(ctx context.Context, ownerID uuid.UUID, names []string) (int, error) {
	args := m.Called(ctx, ownerID, names)
	return args.Int(0), args.Error(1)
}

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, input service.LabelUploadInput) (*service.LabelUploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LabelUploadResult), args.Error(1)
}

func (m *MockDocumentService) ReconcileText(ctx context.Context, ownerID uuid.UUID, rawText string) (*domain.Reconciliation, error) {
	args := m.Called(ctx, ownerID, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

func (m *MockDocumentService) ListPending(ctx context.Context, ownerID uuid.UUID) ([]domain.CandidateAllergen, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateAllergen), args.Error(1)
}

func (m *MockDocumentService) Confirm(ctx context.Context, ownerID uuid.UUID, names []string) ([]domain.Allergen, error) {
	args := m.Called(ctx, ownerID, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allergen), args.Error(1)
}

func (m *MockDocumentService) Discard(ctx context.Context, ownerID uuid.UUID, names []string) (int, error) {
	args := m.Called(ctx, ownerID, names)
	return args.Int(0), args.Error(1)
}

// MockCheckService is a mock implementation of service.CheckService.
type MockCheckService struct {
	mock.Mock
}

func (m *MockCheckService) Check(ctx context.Context, ownerID uuid.UUID, evidence string) (*domain.Verdict, error) {
	args := m.Called(ctx, ownerID, evidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Verdict), args.Error(1)
}

func (m *MockCheckService) CheckBatch(ctx context.Context, ownerID uuid.UUID, evidences []string) ([]*domain.Verdict, error) {
	args := m.Called(ctx, ownerID, evidences)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Verdict), args.Error(1)
}
