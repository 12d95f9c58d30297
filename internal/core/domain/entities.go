package domain

import "time"

// Role represents a user role in the marketplace
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleMechanic Role = "mechanic"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleMechanic, RoleAdmin:
		return true
	}
	return false
}

// KYCStatus represents the provider verification state
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

// NextStep is the post-login discriminator returned in the auth envelope.
// An empty value means the client dispatches by role.
type NextStep string

const (
	NextNone        NextStep = ""
	NextSetPassword NextStep = "set-password"
	NextSelectRole  NextStep = "select-role"
	NextVerifyOTP   NextStep = "verify-otp"
)

// User represents a user in the domain layer
type User struct {
	ID                    uint
	Name                  string
	Email                 string
	Phone                 string
	Password              string // Hashed
	Role                  Role
	IsPhoneVerified       bool
	OnboardingComplete    bool
	RequiresPasswordReset bool
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ProviderProfile represents a garage in the domain layer
type ProviderProfile struct {
	ID         uint
	UserID     uint
	GarageName string
	KYCStatus  KYCStatus
	KYCNote    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MechanicProfile links a mechanic account to the garage that employs them
type MechanicProfile struct {
	ID               uint
	UserID           uint
	ProviderID       uint
	IsSelfRegistered bool
	CreatedAt        time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
