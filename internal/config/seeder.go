package config

import (
	"log"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/core/domain"
	"garagehub/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin account.
// Development only; production admins are created through a secure process.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:            "Platform Admin",
		Email:           "admin@garagehub.in",
		Phone:           "+919000000001",
		Password:        hashedPassword,
		Role:            domain.RoleAdmin,
		IsPhoneVerified: true,
		IsActive:        true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("🌱 Seeded default admin user")
	return nil
}
