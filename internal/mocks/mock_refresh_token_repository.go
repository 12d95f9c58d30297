package mocks

import (
	"context"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
)

// MockRefreshTokenRepository implements repositories.RefreshTokenRepository for testing
type MockRefreshTokenRepository struct {
	CreateFunc            func(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHashFunc    func(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeFunc            func(ctx context.Context, id uint) error
	RevokeByTokenHashFunc func(ctx context.Context, tokenHash string) error
	RevokeAllByUserIDFunc func(ctx context.Context, userID uint) error
	DeleteExpiredFunc     func(ctx context.Context) error
}

// NewMockRefreshTokenRepository creates a new MockRefreshTokenRepository with default behaviors
func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{}
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	return nil
}

func (m *MockRefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if m.GetByTokenHashFunc != nil {
		return m.GetByTokenHashFunc(ctx, tokenHash)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, id)
	}
	return nil
}

func (m *MockRefreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	if m.RevokeByTokenHashFunc != nil {
		return m.RevokeByTokenHashFunc(ctx, tokenHash)
	}
	return nil
}

func (m *MockRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	if m.RevokeAllByUserIDFunc != nil {
		return m.RevokeAllByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return nil
}

// Compile-time interface compliance verification
var _ repositories.RefreshTokenRepository = (*MockRefreshTokenRepository)(nil)
