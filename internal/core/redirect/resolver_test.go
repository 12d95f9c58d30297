package redirect

import (
	"testing"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/core/domain"
)

func providerUser(onboarded bool, kyc domain.KYCStatus) *models.UserResponse {
	return &models.UserResponse{
		ID:                 1,
		Role:               domain.RoleProvider,
		OnboardingComplete: onboarded,
		HasProviderProfile: true,
		Provider:           &models.ProviderSummary{ID: 10, GarageName: "Apex Motors", KYCStatus: kyc},
	}
}

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name string
		user *models.UserResponse
		want Route
	}{
		{
			name: "incomplete onboarding",
			user: providerUser(false, domain.KYCPending),
			want: RouteProviderOnboarding,
		},
		{
			name: "onboarded pending review",
			user: providerUser(true, domain.KYCPending),
			want: RouteProviderPendingReview,
		},
		{
			name: "absent kyc status behaves as pending",
			user: providerUser(true, ""),
			want: RouteProviderPendingReview,
		},
		{
			name: "verified",
			user: providerUser(true, domain.KYCVerified),
			want: RouteProviderDashboard,
		},
		{
			name: "rejected reopens onboarding even when onboarded",
			user: providerUser(true, domain.KYCRejected),
			want: RouteProviderOnboarding,
		},
		{
			name: "rejected with incomplete onboarding still lands on onboarding",
			user: providerUser(false, domain.KYCRejected),
			want: RouteProviderOnboarding,
		},
		{
			name: "missing profile fails closed",
			user: &models.UserResponse{Role: domain.RoleProvider, OnboardingComplete: true},
			want: RouteProviderPendingReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveProvider(tt.user); got != tt.want {
				t.Errorf("ResolveProvider() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Provider resolution must stay inside the provider route set regardless of
// flag combinations.
func TestResolveProvider_ClosedRouteSet(t *testing.T) {
	allowed := map[Route]bool{
		RouteProviderOnboarding:    true,
		RouteProviderPendingReview: true,
		RouteProviderDashboard:     true,
	}
	statuses := []domain.KYCStatus{"", domain.KYCPending, domain.KYCVerified, domain.KYCRejected, "garbage"}
	for _, onboarded := range []bool{true, false} {
		for _, status := range statuses {
			for _, withProfile := range []bool{true, false} {
				u := providerUser(onboarded, status)
				if !withProfile {
					u.Provider = nil
					u.HasProviderProfile = false
				}
				got := ResolveProvider(u)
				if !allowed[got] {
					t.Errorf("ResolveProvider(onboarded=%v status=%q profile=%v) escaped provider routes: %q",
						onboarded, status, withProfile, got)
				}
			}
		}
	}
}

func TestResolveMechanic(t *testing.T) {
	base := func(reset, selfReg bool) *models.UserResponse {
		return &models.UserResponse{
			Role:                  domain.RoleMechanic,
			RequiresPasswordReset: reset,
			HasMechanicProfile:    true,
			Mechanic:              &models.MechanicSummary{ID: 3, UserID: 2, ProviderID: 10, IsSelfRegistered: selfReg},
		}
	}

	tests := []struct {
		name string
		user *models.UserResponse
		next domain.NextStep
		want Route
	}{
		{
			name: "select-role bypasses everything",
			user: base(true, false),
			next: domain.NextSelectRole,
			want: RouteRoleSelector,
		},
		{
			name: "garage-created account forced to set password",
			user: base(true, false),
			want: RouteSetPassword,
		},
		{
			name: "self-registered mechanic skips password screen",
			user: base(true, true),
			want: RouteMechanicDashboard,
		},
		{
			name: "no reset goes straight to dashboard",
			user: base(false, false),
			want: RouteMechanicDashboard,
		},
		{
			name: "reset with missing mechanic profile forces password screen",
			user: &models.UserResponse{Role: domain.RoleMechanic, RequiresPasswordReset: true},
			want: RouteSetPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveMechanic(tt.user, tt.next); got != tt.want {
				t.Errorf("ResolveMechanic() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_NextShortCircuits(t *testing.T) {
	// next applies regardless of role, even for an admin.
	admin := &models.UserResponse{Role: domain.RoleAdmin}
	if got := Resolve(admin, domain.NextSetPassword); got != RouteSetPassword {
		t.Errorf("set-password next = %q, want %q", got, RouteSetPassword)
	}
	if got := Resolve(admin, domain.NextSelectRole); got != RouteRoleSelector {
		t.Errorf("select-role next = %q, want %q", got, RouteRoleSelector)
	}
	if got := Resolve(admin, domain.NextVerifyOTP); got != RouteVerifyOTP {
		t.Errorf("verify-otp next = %q, want %q", got, RouteVerifyOTP)
	}
}

func TestResolve_RoleDispatch(t *testing.T) {
	tests := []struct {
		name string
		user *models.UserResponse
		want Route
	}{
		{name: "customer", user: &models.UserResponse{Role: domain.RoleCustomer}, want: RouteCustomerHome},
		{name: "admin", user: &models.UserResponse{Role: domain.RoleAdmin}, want: RouteAdminDashboard},
		{name: "provider", user: providerUser(true, domain.KYCVerified), want: RouteProviderDashboard},
		{
			name: "mechanic",
			user: &models.UserResponse{Role: domain.RoleMechanic, HasMechanicProfile: true,
				Mechanic: &models.MechanicSummary{IsSelfRegistered: true}},
			want: RouteMechanicDashboard,
		},
		{name: "unknown role fails closed", user: &models.UserResponse{Role: "superuser"}, want: RouteCustomerHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.user, domain.NextNone); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_NilUserLandsOnLogin(t *testing.T) {
	if got := Resolve(nil, domain.NextNone); got != RouteLogin {
		t.Errorf("Resolve(nil) = %q, want %q", got, RouteLogin)
	}
	// Even a next discriminator cannot rescue a missing user.
	if got := Resolve(nil, domain.NextSelectRole); got != RouteLogin {
		t.Errorf("Resolve(nil, select-role) = %q, want %q", got, RouteLogin)
	}
}
