package repositories

import (
	"context"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
)

// mechanicRepository implements MechanicRepository interface
type mechanicRepository struct {
	db *gorm.DB
}

// NewMechanicRepository creates a new mechanic repository
func NewMechanicRepository(db *gorm.DB) MechanicRepository {
	return &mechanicRepository{db: db}
}

// Create creates a new mechanic profile
func (r *mechanicRepository) Create(ctx context.Context, profile *models.MechanicProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByUserID gets a mechanic profile by owning user
func (r *mechanicRepository) GetByUserID(ctx context.Context, userID uint) (*models.MechanicProfile, error) {
	var profile models.MechanicProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByProviderID lists all mechanics on a garage's roster
func (r *mechanicRepository) ListByProviderID(ctx context.Context, providerID uint) ([]*models.MechanicProfile, error) {
	var profiles []*models.MechanicProfile
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// Delete removes a mechanic profile
func (r *mechanicRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MechanicProfile{}, id).Error
}

// CountByProviderID counts mechanics on a garage's roster
func (r *mechanicRepository) CountByProviderID(ctx context.Context, providerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MechanicProfile{}).
		Where("provider_id = ?", providerID).
		Count(&count).Error
	return count, err
}
