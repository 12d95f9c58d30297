package repositories

import (
	"context"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/core/domain"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID with both profiles preloaded
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.withProfiles(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email with both profiles preloaded
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.withProfiles(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByPhone gets a user by normalized phone number with both profiles preloaded
func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.withProfiles(ctx).Where("phone = ?", phone).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Provider", "Mechanic").Save(user).Error
}

// List lists users with pagination
func (r *userRepository) List(ctx context.Context, role domain.Role, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&models.User{})
	listQuery := r.withProfiles(ctx)
	if role != "" {
		countQuery = countQuery.Where("role = ?", role)
		listQuery = listQuery.Where("role = ?", role)
	}

	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := listQuery.Offset(offset).Limit(limit).Order("id").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ExistsByPhone checks if phone exists
func (r *userRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) withProfiles(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Provider").Preload("Mechanic")
}
