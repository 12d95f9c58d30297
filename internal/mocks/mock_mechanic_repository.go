package mocks

import (
	"context"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
)

// MockMechanicRepository implements repositories.MechanicRepository for testing
type MockMechanicRepository struct {
	CreateFunc            func(ctx context.Context, profile *models.MechanicProfile) error
	GetByUserIDFunc       func(ctx context.Context, userID uint) (*models.MechanicProfile, error)
	ListByProviderIDFunc  func(ctx context.Context, providerID uint) ([]*models.MechanicProfile, error)
	DeleteFunc            func(ctx context.Context, id uint) error
	CountByProviderIDFunc func(ctx context.Context, providerID uint) (int64, error)
}

// NewMockMechanicRepository creates a new MockMechanicRepository with default behaviors
func NewMockMechanicRepository() *MockMechanicRepository {
	return &MockMechanicRepository{}
}

func (m *MockMechanicRepository) Create(ctx context.Context, profile *models.MechanicProfile) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, profile)
	}
	return nil
}

func (m *MockMechanicRepository) GetByUserID(ctx context.Context, userID uint) (*models.MechanicProfile, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMechanicRepository) ListByProviderID(ctx context.Context, providerID uint) ([]*models.MechanicProfile, error) {
	if m.ListByProviderIDFunc != nil {
		return m.ListByProviderIDFunc(ctx, providerID)
	}
	return nil, nil
}

func (m *MockMechanicRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockMechanicRepository) CountByProviderID(ctx context.Context, providerID uint) (int64, error) {
	if m.CountByProviderIDFunc != nil {
		return m.CountByProviderIDFunc(ctx, providerID)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ repositories.MechanicRepository = (*MockMechanicRepository)(nil)
