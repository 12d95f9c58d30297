package mocks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
	"garagehub/internal/core/domain"
)

// MockProviderRepository implements repositories.ProviderRepository for testing
type MockProviderRepository struct {
	CreateFunc             func(ctx context.Context, profile *models.ProviderProfile) error
	GetByIDFunc            func(ctx context.Context, id uint) (*models.ProviderProfile, error)
	GetByUserIDFunc        func(ctx context.Context, userID uint) (*models.ProviderProfile, error)
	UpdateFunc             func(ctx context.Context, profile *models.ProviderProfile) error
	ListByKYCStatusFunc    func(ctx context.Context, status domain.KYCStatus, offset, limit int) ([]*models.ProviderProfile, int64, error)
	CountByKYCStatusFunc   func(ctx context.Context, status domain.KYCStatus) (int64, error)
	CountReviewedSinceFunc func(ctx context.Context, since time.Time) (int64, error)
}

// NewMockProviderRepository creates a new MockProviderRepository with default behaviors
func NewMockProviderRepository() *MockProviderRepository {
	return &MockProviderRepository{}
}

func (m *MockProviderRepository) Create(ctx context.Context, profile *models.ProviderProfile) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, profile)
	}
	return nil
}

func (m *MockProviderRepository) GetByID(ctx context.Context, id uint) (*models.ProviderProfile, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockProviderRepository) GetByUserID(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockProviderRepository) Update(ctx context.Context, profile *models.ProviderProfile) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, profile)
	}
	return nil
}

func (m *MockProviderRepository) ListByKYCStatus(ctx context.Context, status domain.KYCStatus, offset, limit int) ([]*models.ProviderProfile, int64, error) {
	if m.ListByKYCStatusFunc != nil {
		return m.ListByKYCStatusFunc(ctx, status, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockProviderRepository) CountByKYCStatus(ctx context.Context, status domain.KYCStatus) (int64, error) {
	if m.CountByKYCStatusFunc != nil {
		return m.CountByKYCStatusFunc(ctx, status)
	}
	return 0, nil
}

func (m *MockProviderRepository) CountReviewedSince(ctx context.Context, since time.Time) (int64, error) {
	if m.CountReviewedSinceFunc != nil {
		return m.CountReviewedSinceFunc(ctx, since)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ repositories.ProviderRepository = (*MockProviderRepository)(nil)
