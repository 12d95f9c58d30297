package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/core/domain"
	"garagehub/internal/mocks"
)

func dualProfileUser() *models.User {
	return &models.User{
		ID:              7,
		Name:            "Ravi Kumar",
		Email:           "ravi@garage.example",
		Phone:           "+919876543210",
		Role:            domain.RoleProvider,
		IsActive:        true,
		IsPhoneVerified: true,
		Provider:        &models.ProviderProfile{ID: 3, UserID: 7, GarageName: "Ravi Motors", KYCStatus: domain.KYCVerified},
		Mechanic:        &models.MechanicProfile{ID: 5, UserID: 7, ProviderID: 3, IsSelfRegistered: true},
	}
}

func newTestSessionService(user *models.User) (*SessionService, *mocks.InMemorySessionRepository) {
	sessionRepo := mocks.NewInMemorySessionRepository()
	userRepo := mocks.NewMockUserRepository()
	userRepo.GetByIDFunc = func(ctx context.Context, id uint) (*models.User, error) {
		if user != nil && id == user.ID {
			return user, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewSessionService(sessionRepo, userRepo, mocks.NewMockRefreshTokenRepository(), 7)
	return svc, sessionRepo
}

func TestHydrateEmptyOnUnknownToken(t *testing.T) {
	svc, _ := newTestSessionService(nil)

	view, err := svc.Hydrate(context.Background(), "never-issued")
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.User != nil || view.Token != "" {
		t.Errorf("view = %+v, want empty", view)
	}
}

func TestApplyAuthSuccessThenHydrate(t *testing.T) {
	user := dualProfileUser()
	svc, _ := newTestSessionService(user)

	token := "access-token-1"
	if err := svc.ApplyAuthSuccess(context.Background(), user, token); err != nil {
		t.Fatalf("ApplyAuthSuccess: %v", err)
	}

	view, err := svc.Hydrate(context.Background(), token)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.User == nil || view.User.ID != user.ID {
		t.Fatalf("hydrated user = %+v, want id %d", view.User, user.ID)
	}
	if !view.Verified {
		t.Error("Verified = false for a phone-verified user")
	}
	if view.LastError != "" {
		t.Errorf("LastError = %q, want empty", view.LastError)
	}
}

func TestApplyAuthSuccessIsIdempotent(t *testing.T) {
	user := dualProfileUser()
	svc, repo := newTestSessionService(user)

	token := "access-token-1"
	for i := 0; i < 3; i++ {
		if err := svc.ApplyAuthSuccess(context.Background(), user, token); err != nil {
			t.Fatalf("ApplyAuthSuccess #%d: %v", i+1, err)
		}
	}

	// Reapplying reuses the row; the session id must not change.
	view, err := svc.Hydrate(context.Background(), token)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.User == nil {
		t.Fatal("session lost after reapply")
	}
	_ = repo
}

func TestApplyAuthFailureKeepsPriorState(t *testing.T) {
	user := dualProfileUser()
	svc, _ := newTestSessionService(user)

	token := "access-token-1"
	if err := svc.ApplyAuthSuccess(context.Background(), user, token); err != nil {
		t.Fatalf("ApplyAuthSuccess: %v", err)
	}

	svc.ApplyAuthFailure(context.Background(), token, errors.New("upstream timeout"))

	view, err := svc.Hydrate(context.Background(), token)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.User == nil {
		t.Fatal("valid session state lost after recorded failure")
	}
	if view.LastError != "upstream timeout" {
		t.Errorf("LastError = %q, want recorded cause", view.LastError)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	user := dualProfileUser()
	svc, _ := newTestSessionService(user)

	token := "access-token-1"
	if err := svc.ApplyAuthSuccess(context.Background(), user, token); err != nil {
		t.Fatalf("ApplyAuthSuccess: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout with empty token: %v", err)
	}

	view, err := svc.Hydrate(context.Background(), token)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.User != nil {
		t.Error("session still hydrates after logout")
	}
}

func TestSetActiveRoleNoOpWhenRoleNotHeld(t *testing.T) {
	user := dualProfileUser()
	user.Mechanic = nil
	svc, _ := newTestSessionService(user)

	token := "access-token-1"
	if err := svc.ApplyAuthSuccess(context.Background(), user, token); err != nil {
		t.Fatalf("ApplyAuthSuccess: %v", err)
	}
	if err := svc.SetActiveRole(context.Background(), token, domain.RoleProvider); err != nil {
		t.Fatalf("SetActiveRole(provider): %v", err)
	}

	// Mechanic is not held; the call must succeed and change nothing.
	if err := svc.SetActiveRole(context.Background(), token, domain.RoleMechanic); err != nil {
		t.Fatalf("SetActiveRole(mechanic): %v", err)
	}

	view, err := svc.Hydrate(context.Background(), token)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.ActiveRole != domain.RoleProvider {
		t.Errorf("ActiveRole = %q, want provider (unheld role must not stick)", view.ActiveRole)
	}
}

func TestRoleSwitchRequiresBothProfiles(t *testing.T) {
	user := dualProfileUser()
	user.Mechanic = nil
	svc, _ := newTestSessionService(user)

	token := "access-token-1"
	if err := svc.ApplyAuthSuccess(context.Background(), user, token); err != nil {
		t.Fatalf("ApplyAuthSuccess: %v", err)
	}

	err := svc.RequestRoleSwitch(context.Background(), token, domain.RoleMechanic)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestRoleSwitchConfirmCommits(t *testing.T) {
	user := dualProfileUser()
	svc, _ := newTestSessionService(user)

	token := "access-token-1"
	if err := svc.ApplyAuthSuccess(context.Background(), user, token); err != nil {
		t.Fatalf("ApplyAuthSuccess: %v", err)
	}
	if err := svc.SetActiveRole(context.Background(), token, domain.RoleProvider); err != nil {
		t.Fatalf("SetActiveRole: %v", err)
	}

	if err := svc.RequestRoleSwitch(context.Background(), token, domain.RoleMechanic); err != nil {
		t.Fatalf("RequestRoleSwitch: %v", err)
	}

	committed, err := svc.ConfirmRoleSwitch(context.Background(), token)
	if err != nil {
		t.Fatalf("ConfirmRoleSwitch: %v", err)
	}
	if committed != domain.RoleMechanic {
		t.Errorf("committed = %q, want mechanic", committed)
	}

	// The write is visible immediately after confirm returns.
	view, err := svc.Hydrate(context.Background(), token)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.ActiveRole != domain.RoleMechanic {
		t.Errorf("ActiveRole = %q after confirm, want mechanic", view.ActiveRole)
	}
	if view.PendingRole != "" {
		t.Errorf("PendingRole = %q after confirm, want empty", view.PendingRole)
	}

	// Confirming again with nothing pending is refused.
	if _, err := svc.ConfirmRoleSwitch(context.Background(), token); !errors.Is(err, domain.ErrNoPendingRoleSwitch) {
		t.Errorf("second confirm: err = %v, want ErrNoPendingRoleSwitch", err)
	}
}

func TestRoleSwitchCancelKeepsCommittedRole(t *testing.T) {
	user := dualProfileUser()
	svc, _ := newTestSessionService(user)

	token := "access-token-1"
	if err := svc.ApplyAuthSuccess(context.Background(), user, token); err != nil {
		t.Fatalf("ApplyAuthSuccess: %v", err)
	}
	if err := svc.SetActiveRole(context.Background(), token, domain.RoleProvider); err != nil {
		t.Fatalf("SetActiveRole: %v", err)
	}
	if err := svc.RequestRoleSwitch(context.Background(), token, domain.RoleMechanic); err != nil {
		t.Fatalf("RequestRoleSwitch: %v", err)
	}

	committed, err := svc.CancelRoleSwitch(context.Background(), token)
	if err != nil {
		t.Fatalf("CancelRoleSwitch: %v", err)
	}
	if committed != domain.RoleProvider {
		t.Errorf("committed = %q after cancel, want provider", committed)
	}

	view, err := svc.Hydrate(context.Background(), token)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.ActiveRole != domain.RoleProvider {
		t.Errorf("ActiveRole = %q after cancel, want provider", view.ActiveRole)
	}
	if view.PendingRole != "" {
		t.Errorf("PendingRole = %q after cancel, want empty", view.PendingRole)
	}

	// Cancel with nothing pending reports the committed role unchanged.
	committed, err = svc.CancelRoleSwitch(context.Background(), token)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if committed != domain.RoleProvider {
		t.Errorf("committed = %q on idle cancel, want provider", committed)
	}
}

func TestSupersedePendingClosesRegistrationWindow(t *testing.T) {
	user := dualProfileUser()
	user.IsPhoneVerified = false
	svc, _ := newTestSessionService(user)

	registrationID, err := svc.SetTempUser(context.Background(), user)
	if err != nil {
		t.Fatalf("SetTempUser: %v", err)
	}
	if registrationID == "" {
		t.Fatal("empty registration id")
	}

	if err := svc.SetRegisterStatus(context.Background(), registrationID, "confirmed"); err != nil {
		t.Fatalf("SetRegisterStatus: %v", err)
	}

	if err := svc.SupersedePending(context.Background(), user.ID); err != nil {
		t.Fatalf("SupersedePending: %v", err)
	}

	// The pending window is gone.
	if err := svc.SetRegisterStatus(context.Background(), registrationID, "late"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v after supersede, want ErrNotFound", err)
	}
}
