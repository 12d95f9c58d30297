package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
	"garagehub/internal/core/domain"
	"garagehub/internal/pkg/password"
	"garagehub/internal/pkg/phone"
)

// ProviderService owns garage onboarding, KYC review, and the mechanic
// roster. KYC transitions feed the flags the redirect resolver reads.
type ProviderService struct {
	providerRepo     repositories.ProviderRepository
	mechanicRepo     repositories.MechanicRepository
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewProviderService creates a new provider service
func NewProviderService(
	providerRepo repositories.ProviderRepository,
	mechanicRepo repositories.MechanicRepository,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *ProviderService {
	return &ProviderService{
		providerRepo:     providerRepo,
		mechanicRepo:     mechanicRepo,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// OnboardingInput represents a garage onboarding submission
type OnboardingInput struct {
	GarageName     string `json:"garageName"`
	Address        string `json:"address"`
	RegistrationNo string `json:"registrationNo"`
	DocumentURL    string `json:"documentUrl"`
}

// MechanicInput represents a roster-creation request. Self marks the
// provider registering themselves as their own mechanic.
type MechanicInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Self     bool   `json:"self"`
}

// SubmitOnboarding creates or resubmits the garage profile. A resubmission
// after rejection moves the profile back to pending review.
func (s *ProviderService) SubmitOnboarding(ctx context.Context, userID uint, input *OnboardingInput) (*models.ProviderProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	profile, err := s.providerRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		profile.GarageName = input.GarageName
		profile.Address = input.Address
		profile.RegistrationNo = input.RegistrationNo
		profile.DocumentURL = input.DocumentURL
		profile.KYCStatus = domain.KYCPending
		profile.KYCNote = ""
		profile.ReviewedAt = nil
		if err := s.providerRepo.Update(ctx, profile); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = &models.ProviderProfile{
			UserID:         userID,
			GarageName:     input.GarageName,
			Address:        input.Address,
			RegistrationNo: input.RegistrationNo,
			DocumentURL:    input.DocumentURL,
			KYCStatus:      domain.KYCPending,
		}
		if err := s.providerRepo.Create(ctx, profile); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !user.OnboardingComplete {
		user.OnboardingComplete = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Onboarding submitted: garage %q (user %d)", input.GarageName, userID)
	return profile, nil
}

// GetProfile returns the garage profile owned by the given user
func (s *ProviderService) GetProfile(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
	profile, err := s.providerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, err
	}
	return profile, nil
}

// ListPendingKYC lists submissions awaiting admin review
func (s *ProviderService) ListPendingKYC(ctx context.Context, offset, limit int) ([]*models.ProviderProfile, int64, error) {
	return s.providerRepo.ListByKYCStatus(ctx, domain.KYCPending, offset, limit)
}

// ReviewKYC approves or rejects a pending submission. Re-reviewing an
// already-decided submission is refused; the provider must resubmit first.
func (s *ProviderService) ReviewKYC(ctx context.Context, profileID uint, approve bool, note string) (*models.ProviderProfile, error) {
	profile, err := s.providerRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, err
	}
	if profile.KYCStatus != domain.KYCPending {
		return nil, domain.ErrKYCAlreadyReviewed
	}

	now := time.Now()
	if approve {
		profile.KYCStatus = domain.KYCVerified
	} else {
		profile.KYCStatus = domain.KYCRejected
	}
	profile.KYCNote = note
	profile.ReviewedAt = &now

	if err := s.providerRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("✅ KYC review: garage %d -> %s", profileID, profile.KYCStatus)
	return profile, nil
}

// CreateMechanic adds an account to the garage roster. Garage-created
// accounts must set their own password on first login; a provider
// registering themselves keeps their credentials and is exempt.
func (s *ProviderService) CreateMechanic(ctx context.Context, providerUserID uint, input *MechanicInput) (*models.MechanicProfile, error) {
	provider, err := s.providerRepo.GetByUserID(ctx, providerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, err
	}

	if input.Self {
		// Dual-role: attach a mechanic profile to the provider's own account.
		if _, err := s.mechanicRepo.GetByUserID(ctx, providerUserID); err == nil {
			return nil, domain.ErrDuplicateEntry
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		profile := &models.MechanicProfile{
			UserID:           providerUserID,
			ProviderID:       provider.ID,
			IsSelfRegistered: true,
		}
		if err := s.mechanicRepo.Create(ctx, profile); err != nil {
			return nil, err
		}
		log.Printf("✅ Provider %d registered as own mechanic", providerUserID)
		return profile, nil
	}

	normalized, err := phone.Normalize(input.Phone)
	if err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.userRepo.ExistsByPhone(ctx, normalized)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, domain.ErrDuplicateAccount
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    normalized,
		Password: hashed,
		Role:     domain.RoleMechanic,
		IsActive: true,
		// One-shot flag, cleared when the mechanic sets their own password.
		RequiresPasswordReset: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &models.MechanicProfile{
		UserID:     user.ID,
		ProviderID: provider.ID,
	}
	if err := s.mechanicRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("✅ Mechanic added to roster: %s (garage %d)", user.Email, provider.ID)
	return profile, nil
}

// ListMechanics lists the garage roster
func (s *ProviderService) ListMechanics(ctx context.Context, providerUserID uint) ([]*models.MechanicProfile, error) {
	provider, err := s.providerRepo.GetByUserID(ctx, providerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, err
	}
	return s.mechanicRepo.ListByProviderID(ctx, provider.ID)
}

// RemoveMechanic removes a mechanic from the roster and revokes their
// sessions. The mechanic profile must belong to the calling garage.
func (s *ProviderService) RemoveMechanic(ctx context.Context, providerUserID, mechanicProfileID uint) error {
	provider, err := s.providerRepo.GetByUserID(ctx, providerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProviderNotFound
		}
		return err
	}

	mechanics, err := s.mechanicRepo.ListByProviderID(ctx, provider.ID)
	if err != nil {
		return err
	}
	for _, m := range mechanics {
		if m.ID == mechanicProfileID {
			if err := s.mechanicRepo.Delete(ctx, m.ID); err != nil {
				return err
			}
			return s.refreshTokenRepo.RevokeAllByUserID(ctx, m.UserID)
		}
	}
	return domain.ErrMechanicNotFound
}
