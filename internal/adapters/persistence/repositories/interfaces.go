package repositories

import (
	"context"
	"time"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/core/domain"
)

// UserRepository defines user repository interface. Reads always preload the
// provider and mechanic profiles so callers see the fully-resolved account.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, role domain.Role, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// SessionRepository defines the durable backing store of the session store
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByKey(ctx context.Context, key string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	RevokeByKey(ctx context.Context, key string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// ProviderRepository defines provider profile repository interface
type ProviderRepository interface {
	Create(ctx context.Context, profile *models.ProviderProfile) error
	GetByID(ctx context.Context, id uint) (*models.ProviderProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.ProviderProfile, error)
	Update(ctx context.Context, profile *models.ProviderProfile) error
	ListByKYCStatus(ctx context.Context, status domain.KYCStatus, offset, limit int) ([]*models.ProviderProfile, int64, error)
	CountByKYCStatus(ctx context.Context, status domain.KYCStatus) (int64, error)
	CountReviewedSince(ctx context.Context, since time.Time) (int64, error)
}

// MechanicRepository defines mechanic profile repository interface
type MechanicRepository interface {
	Create(ctx context.Context, profile *models.MechanicProfile) error
	GetByUserID(ctx context.Context, userID uint) (*models.MechanicProfile, error)
	ListByProviderID(ctx context.Context, providerID uint) ([]*models.MechanicProfile, error)
	Delete(ctx context.Context, id uint) error
	CountByProviderID(ctx context.Context, providerID uint) (int64, error)
}
