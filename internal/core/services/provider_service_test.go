package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/core/domain"
	"garagehub/internal/mocks"
)

func TestSubmitOnboardingCreatesPendingProfile(t *testing.T) {
	user := &models.User{ID: 2, Role: domain.RoleProvider, IsActive: true, IsPhoneVerified: true}

	var createdProfile *models.ProviderProfile
	providerRepo := mocks.NewMockProviderRepository()
	providerRepo.CreateFunc = func(ctx context.Context, profile *models.ProviderProfile) error {
		profile.ID = 1
		createdProfile = profile
		return nil
	}

	userRepo := mocks.NewMockUserRepository()
	userRepo.GetByIDFunc = func(ctx context.Context, id uint) (*models.User, error) {
		return user, nil
	}

	svc := NewProviderService(providerRepo, mocks.NewMockMechanicRepository(), userRepo, mocks.NewMockRefreshTokenRepository())

	profile, err := svc.SubmitOnboarding(context.Background(), 2, &OnboardingInput{
		GarageName: "Sharma Auto Works",
		Address:    "14 MG Road, Pune",
	})
	if err != nil {
		t.Fatalf("SubmitOnboarding: %v", err)
	}
	if createdProfile == nil {
		t.Fatal("profile never created")
	}
	if profile.KYCStatus != domain.KYCPending {
		t.Errorf("KYCStatus = %q, want pending", profile.KYCStatus)
	}
	if !user.OnboardingComplete {
		t.Error("OnboardingComplete not set on user")
	}
}

func TestSubmitOnboardingResubmissionReopensReview(t *testing.T) {
	user := &models.User{ID: 2, Role: domain.RoleProvider, OnboardingComplete: true}
	reviewed := time.Now()
	existing := &models.ProviderProfile{
		ID:         1,
		UserID:     2,
		GarageName: "Sharma Auto Works",
		KYCStatus:  domain.KYCRejected,
		KYCNote:    "document unreadable",
		ReviewedAt: &reviewed,
	}

	providerRepo := mocks.NewMockProviderRepository()
	providerRepo.GetByUserIDFunc = func(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
		return existing, nil
	}
	userRepo := mocks.NewMockUserRepository()
	userRepo.GetByIDFunc = func(ctx context.Context, id uint) (*models.User, error) {
		return user, nil
	}

	svc := NewProviderService(providerRepo, mocks.NewMockMechanicRepository(), userRepo, mocks.NewMockRefreshTokenRepository())

	profile, err := svc.SubmitOnboarding(context.Background(), 2, &OnboardingInput{
		GarageName:  "Sharma Auto Works",
		Address:     "14 MG Road, Pune",
		DocumentURL: "https://cdn.example/doc-v2.pdf",
	})
	if err != nil {
		t.Fatalf("SubmitOnboarding: %v", err)
	}
	if profile.KYCStatus != domain.KYCPending {
		t.Errorf("KYCStatus = %q after resubmission, want pending", profile.KYCStatus)
	}
	if profile.KYCNote != "" {
		t.Errorf("KYCNote = %q, want cleared", profile.KYCNote)
	}
	if profile.ReviewedAt != nil {
		t.Error("ReviewedAt not cleared on resubmission")
	}
}

func TestReviewKYCTransitions(t *testing.T) {
	tests := []struct {
		name       string
		current    domain.KYCStatus
		approve    bool
		wantStatus domain.KYCStatus
		wantErr    error
	}{
		{"approve pending", domain.KYCPending, true, domain.KYCVerified, nil},
		{"reject pending", domain.KYCPending, false, domain.KYCRejected, nil},
		{"re-review verified refused", domain.KYCVerified, false, "", domain.ErrKYCAlreadyReviewed},
		{"re-review rejected refused", domain.KYCRejected, true, "", domain.ErrKYCAlreadyReviewed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.ProviderProfile{ID: 1, UserID: 2, KYCStatus: tt.current}
			providerRepo := mocks.NewMockProviderRepository()
			providerRepo.GetByIDFunc = func(ctx context.Context, id uint) (*models.ProviderProfile, error) {
				return profile, nil
			}

			svc := NewProviderService(providerRepo, mocks.NewMockMechanicRepository(), mocks.NewMockUserRepository(), mocks.NewMockRefreshTokenRepository())

			reviewed, err := svc.ReviewKYC(context.Background(), 1, tt.approve, "note")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReviewKYC: %v", err)
			}
			if reviewed.KYCStatus != tt.wantStatus {
				t.Errorf("KYCStatus = %q, want %q", reviewed.KYCStatus, tt.wantStatus)
			}
			if reviewed.ReviewedAt == nil {
				t.Error("ReviewedAt not stamped")
			}
		})
	}
}

func TestCreateMechanicSelfRegistration(t *testing.T) {
	providerRepo := mocks.NewMockProviderRepository()
	providerRepo.GetByUserIDFunc = func(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
		return &models.ProviderProfile{ID: 3, UserID: userID}, nil
	}

	var created *models.MechanicProfile
	mechanicRepo := mocks.NewMockMechanicRepository()
	mechanicRepo.CreateFunc = func(ctx context.Context, profile *models.MechanicProfile) error {
		profile.ID = 9
		created = profile
		return nil
	}

	userRepo := mocks.NewMockUserRepository()
	userRepo.CreateFunc = func(ctx context.Context, user *models.User) error {
		t.Error("self registration must not create a new account")
		return nil
	}

	svc := NewProviderService(providerRepo, mechanicRepo, userRepo, mocks.NewMockRefreshTokenRepository())

	profile, err := svc.CreateMechanic(context.Background(), 2, &MechanicInput{Self: true})
	if err != nil {
		t.Fatalf("CreateMechanic: %v", err)
	}
	if created == nil {
		t.Fatal("mechanic profile never created")
	}
	if !profile.IsSelfRegistered {
		t.Error("IsSelfRegistered = false for self registration")
	}
	if profile.UserID != 2 || profile.ProviderID != 3 {
		t.Errorf("profile = %+v, want UserID 2 ProviderID 3", profile)
	}
}

func TestCreateMechanicSelfRegistrationRejectsSecondProfile(t *testing.T) {
	providerRepo := mocks.NewMockProviderRepository()
	providerRepo.GetByUserIDFunc = func(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
		return &models.ProviderProfile{ID: 3, UserID: userID}, nil
	}
	mechanicRepo := mocks.NewMockMechanicRepository()
	mechanicRepo.GetByUserIDFunc = func(ctx context.Context, userID uint) (*models.MechanicProfile, error) {
		return &models.MechanicProfile{ID: 9, UserID: userID, ProviderID: 3, IsSelfRegistered: true}, nil
	}

	svc := NewProviderService(providerRepo, mechanicRepo, mocks.NewMockUserRepository(), mocks.NewMockRefreshTokenRepository())

	_, err := svc.CreateMechanic(context.Background(), 2, &MechanicInput{Self: true})
	if !errors.Is(err, domain.ErrDuplicateEntry) {
		t.Errorf("err = %v, want ErrDuplicateEntry", err)
	}
}

func TestCreateMechanicRosterAccountRequiresReset(t *testing.T) {
	providerRepo := mocks.NewMockProviderRepository()
	providerRepo.GetByUserIDFunc = func(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
		return &models.ProviderProfile{ID: 3, UserID: userID}, nil
	}

	var createdUser *models.User
	userRepo := mocks.NewMockUserRepository()
	userRepo.CreateFunc = func(ctx context.Context, user *models.User) error {
		user.ID = 20
		createdUser = user
		return nil
	}

	svc := NewProviderService(providerRepo, mocks.NewMockMechanicRepository(), userRepo, mocks.NewMockRefreshTokenRepository())

	profile, err := svc.CreateMechanic(context.Background(), 2, &MechanicInput{
		Name:     "Vikram Singh",
		Email:    "vikram@garage.example",
		Phone:    "9123456789",
		Password: "temporary-pass",
	})
	if err != nil {
		t.Fatalf("CreateMechanic: %v", err)
	}
	if createdUser == nil {
		t.Fatal("mechanic account never created")
	}
	if !createdUser.RequiresPasswordReset {
		t.Error("garage-created mechanic must carry the forced-reset flag")
	}
	if createdUser.Phone != "+919123456789" {
		t.Errorf("stored phone = %q, want normalized", createdUser.Phone)
	}
	if createdUser.Role != domain.RoleMechanic {
		t.Errorf("role = %q, want mechanic", createdUser.Role)
	}
	if profile.IsSelfRegistered {
		t.Error("roster mechanic wrongly marked self-registered")
	}
}

func TestRemoveMechanicEnforcesOwnership(t *testing.T) {
	providerRepo := mocks.NewMockProviderRepository()
	providerRepo.GetByUserIDFunc = func(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
		return &models.ProviderProfile{ID: 3, UserID: userID}, nil
	}

	mechanicRepo := mocks.NewMockMechanicRepository()
	mechanicRepo.ListByProviderIDFunc = func(ctx context.Context, providerID uint) ([]*models.MechanicProfile, error) {
		return []*models.MechanicProfile{{ID: 9, UserID: 20, ProviderID: 3}}, nil
	}

	revoked := false
	refreshRepo := mocks.NewMockRefreshTokenRepository()
	refreshRepo.RevokeAllByUserIDFunc = func(ctx context.Context, userID uint) error {
		if userID == 20 {
			revoked = true
		}
		return nil
	}

	svc := NewProviderService(providerRepo, mechanicRepo, mocks.NewMockUserRepository(), refreshRepo)

	// A mechanic outside the roster is not found.
	if err := svc.RemoveMechanic(context.Background(), 2, 999); !errors.Is(err, domain.ErrMechanicNotFound) {
		t.Errorf("foreign mechanic: err = %v, want ErrMechanicNotFound", err)
	}

	if err := svc.RemoveMechanic(context.Background(), 2, 9); err != nil {
		t.Fatalf("RemoveMechanic: %v", err)
	}
	if !revoked {
		t.Error("removed mechanic's refresh tokens not revoked")
	}
}
