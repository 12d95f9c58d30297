package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/core/domain"
)

// providerRepository implements ProviderRepository interface
type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

// Create creates a new provider profile
func (r *providerRepository) Create(ctx context.Context, profile *models.ProviderProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByID gets a provider profile by ID
func (r *providerRepository) GetByID(ctx context.Context, id uint) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByUserID gets a provider profile by owning user
func (r *providerRepository) GetByUserID(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update updates a provider profile
func (r *providerRepository) Update(ctx context.Context, profile *models.ProviderProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// ListByKYCStatus lists provider profiles in a given KYC state with pagination
func (r *providerRepository) ListByKYCStatus(ctx context.Context, status domain.KYCStatus, offset, limit int) ([]*models.ProviderProfile, int64, error) {
	var profiles []*models.ProviderProfile
	var total int64

	q := r.db.WithContext(ctx).Model(&models.ProviderProfile{}).Where("kyc_status = ?", status)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Offset(offset).Limit(limit).Order("created_at").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// CountByKYCStatus counts provider profiles in a given KYC state
func (r *providerRepository) CountByKYCStatus(ctx context.Context, status domain.KYCStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProviderProfile{}).
		Where("kyc_status = ?", status).
		Count(&count).Error
	return count, err
}

// CountReviewedSince counts reviews completed after the given time
func (r *providerRepository) CountReviewedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProviderProfile{}).
		Where("reviewed_at >= ?", since).
		Count(&count).Error
	return count, err
}
