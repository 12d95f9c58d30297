// Package redirect maps a fully-resolved user to exactly one post-auth
// destination. Resolution is pure: no storage, no network, no side effects.
package redirect

import (
	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/core/domain"
)

// Route identifies a post-auth destination. The router mechanics behind each
// name are the client's concern.
type Route string

const (
	RouteLogin                 Route = "login"
	RouteCustomerHome          Route = "customer-home"
	RouteAdminDashboard        Route = "admin-dashboard"
	RouteProviderDashboard     Route = "provider-dashboard"
	RouteProviderOnboarding    Route = "provider-onboarding"
	RouteProviderPendingReview Route = "provider-pending-review"
	RouteMechanicDashboard     Route = "mechanic-dashboard"
	RouteRoleSelector          Route = "role-selector"
	RouteSetPassword           Route = "set-password"
	RouteVerifyOTP             Route = "verify-otp"
)

// Resolve returns the single destination for a user immediately after an
// authentication event. The next discriminator short-circuits role dispatch
// entirely; a nil user always lands on login.
func Resolve(user *models.UserResponse, next domain.NextStep) Route {
	if user == nil {
		return RouteLogin
	}

	switch next {
	case domain.NextSetPassword:
		return RouteSetPassword
	case domain.NextSelectRole:
		return RouteRoleSelector
	case domain.NextVerifyOTP:
		return RouteVerifyOTP
	}

	switch user.Role {
	case domain.RoleProvider:
		return ResolveProvider(user)
	case domain.RoleMechanic:
		return ResolveMechanic(user, next)
	case domain.RoleAdmin:
		return RouteAdminDashboard
	case domain.RoleCustomer:
		return RouteCustomerHome
	}

	// Unknown role: fail closed onto the unprivileged destination.
	return RouteCustomerHome
}

// ResolveProvider resolves a provider's destination. Precedence is
// load-bearing: incomplete onboarding wins over every KYC state, so a
// rejected-then-resubmitting provider with unfinished onboarding lands on
// onboarding, not pending-review.
func ResolveProvider(user *models.UserResponse) Route {
	if !user.OnboardingComplete {
		return RouteProviderOnboarding
	}

	// Missing profile on a provider account fails closed: never a dashboard.
	if user.Provider == nil {
		return RouteProviderPendingReview
	}

	switch user.Provider.KYCStatus {
	case domain.KYCVerified:
		return RouteProviderDashboard
	case domain.KYCRejected:
		return RouteProviderOnboarding
	case domain.KYCPending:
		return RouteProviderPendingReview
	}

	// Absent status behaves exactly like pending.
	if user.Provider.KYCStatus == "" {
		return RouteProviderPendingReview
	}
	return RouteProviderDashboard
}

// ResolveMechanic resolves a mechanic's destination. A dual-profile signal
// from the backend bypasses everything; a forced password reset applies only
// to garage-created accounts, never to a provider acting as their own
// mechanic.
func ResolveMechanic(user *models.UserResponse, next domain.NextStep) Route {
	if next == domain.NextSelectRole {
		return RouteRoleSelector
	}
	if user.RequiresPasswordReset && !isSelfRegistered(user) {
		return RouteSetPassword
	}
	return RouteMechanicDashboard
}

// ResolveCustomer always lands on the customer home.
func ResolveCustomer(*models.UserResponse) Route {
	return RouteCustomerHome
}

// ResolveAdmin always lands on the admin dashboard.
func ResolveAdmin(*models.UserResponse) Route {
	return RouteAdminDashboard
}

// isSelfRegistered treats the explicit flag as authoritative; the
// userId/providerId comparison is not re-derived here.
func isSelfRegistered(user *models.UserResponse) bool {
	return user.Mechanic != nil && user.Mechanic.IsSelfRegistered
}
