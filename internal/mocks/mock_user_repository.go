package mocks

import (
	"context"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
	"garagehub/internal/core/domain"
)

// MockUserRepository implements repositories.UserRepository for testing
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *models.User) error
	GetByIDFunc       func(ctx context.Context, id uint) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	GetByPhoneFunc    func(ctx context.Context, phone string) (*models.User, error)
	UpdateFunc        func(ctx context.Context, user *models.User) error
	ListFunc          func(ctx context.Context, role domain.Role, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmailFunc func(ctx context.Context, email string) (bool, error)
	ExistsByPhoneFunc func(ctx context.Context, phone string) (bool, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	if m.GetByPhoneFunc != nil {
		return m.GetByPhoneFunc(ctx, phone)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, role domain.Role, offset, limit int) ([]*models.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, role, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *MockUserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	if m.ExistsByPhoneFunc != nil {
		return m.ExistsByPhoneFunc(ctx, phone)
	}
	return false, nil
}

// Compile-time interface compliance verification
var _ repositories.UserRepository = (*MockUserRepository)(nil)
