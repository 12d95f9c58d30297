package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create creates a new session row
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByKey gets an unrevoked session by its key (token hash or registration id)
func (r *sessionRepository) GetByKey(ctx context.Context, key string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("`key` = ?", key).
		Where("revoked_at IS NULL").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Update saves the full session row
func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// RevokeByKey revokes a session by its key. Revoking an already-revoked or
// missing session is a no-op, keeping logout idempotent.
func (r *sessionRepository) RevokeByKey(ctx context.Context, key string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("`key` = ?", key).
		Where("revoked_at IS NULL").
		Update("revoked_at", &now).Error
}

// RevokeAllByUserID revokes every session a user holds
func (r *sessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Update("revoked_at", &now).Error
}

// DeleteExpired deletes expired and revoked sessions (cleanup job)
func (r *sessionRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at IS NOT NULL", time.Now()).
		Delete(&models.Session{}).Error
}
