package models

import (
	"time"

	"gorm.io/gorm"

	"garagehub/internal/core/domain"
)

// User represents the users table. One account may hold a provider profile,
// a mechanic profile, or both (dual-role).
type User struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	Name                  string           `gorm:"size:100;not null" json:"name"`
	Email                 string           `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone                 string           `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Password              string           `gorm:"size:255;not null" json:"-"`
	Role                  domain.Role      `gorm:"size:20;default:'customer'" json:"role"`
	IsPhoneVerified       bool             `gorm:"default:false" json:"isOtpVerified"`
	OnboardingComplete    bool             `gorm:"default:false" json:"onboardingComplete"`
	RequiresPasswordReset bool             `gorm:"default:false" json:"requiresPasswordReset"`
	IsActive              bool             `gorm:"default:true" json:"isActive"`
	Provider              *ProviderProfile `gorm:"foreignKey:UserID" json:"provider,omitempty"`
	Mechanic              *MechanicProfile `gorm:"foreignKey:UserID" json:"mechanic,omitempty"`
	CreatedAt             time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt             gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse is the resolved-user DTO returned in every auth envelope. The
// redirect resolver operates on this shape and nothing else.
type UserResponse struct {
	ID                    uint             `json:"id"`
	Name                  string           `json:"name"`
	Email                 string           `json:"email"`
	Phone                 string           `json:"phone"`
	Role                  domain.Role      `json:"role"`
	IsOtpVerified         bool             `json:"isOtpVerified"`
	OnboardingComplete    bool             `json:"onboardingComplete"`
	RequiresPasswordReset bool             `json:"requiresPasswordReset"`
	HasMechanicProfile    bool             `json:"hasMechanicProfile"`
	HasProviderProfile    bool             `json:"hasProviderProfile"`
	Provider              *ProviderSummary `json:"provider,omitempty"`
	Mechanic              *MechanicSummary `json:"mechanic,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
}

// ProviderSummary is the provider slice of UserResponse. KYCStatus may be
// empty when the profile exists but was never submitted; consumers treat
// that the same as pending.
type ProviderSummary struct {
	ID         uint             `json:"id"`
	GarageName string           `json:"garageName"`
	KYCStatus  domain.KYCStatus `json:"kycStatus,omitempty"`
}

// MechanicSummary is the mechanic slice of UserResponse.
type MechanicSummary struct {
	ID               uint `json:"id"`
	UserID           uint `json:"userId"`
	ProviderID       uint `json:"providerId"`
	IsSelfRegistered bool `json:"isSelfRegistered"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:                    u.ID,
		Name:                  u.Name,
		Email:                 u.Email,
		Phone:                 u.Phone,
		Role:                  u.Role,
		IsOtpVerified:         u.IsPhoneVerified,
		OnboardingComplete:    u.OnboardingComplete,
		RequiresPasswordReset: u.RequiresPasswordReset,
		HasProviderProfile:    u.Provider != nil,
		HasMechanicProfile:    u.Mechanic != nil,
		CreatedAt:             u.CreatedAt,
	}
	if u.Provider != nil {
		resp.Provider = &ProviderSummary{
			ID:         u.Provider.ID,
			GarageName: u.Provider.GarageName,
			KYCStatus:  u.Provider.KYCStatus,
		}
	}
	if u.Mechanic != nil {
		resp.Mechanic = &MechanicSummary{
			ID:               u.Mechanic.ID,
			UserID:           u.Mechanic.UserID,
			ProviderID:       u.Mechanic.ProviderID,
			IsSelfRegistered: u.Mechanic.IsSelfRegistered,
		}
	}
	return resp
}

// ProviderProfile represents the provider_profiles table (garage + KYC state)
type ProviderProfile struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"uniqueIndex;not null" json:"userId"`
	GarageName     string           `gorm:"size:150;not null" json:"garageName"`
	Address        string           `gorm:"size:255" json:"address"`
	RegistrationNo string           `gorm:"size:50" json:"registrationNo"`
	DocumentURL    string           `gorm:"size:500" json:"documentUrl"`
	KYCStatus      domain.KYCStatus `gorm:"size:20;default:'pending'" json:"kycStatus"`
	KYCNote        string           `gorm:"size:500" json:"kycNote,omitempty"`
	ReviewedAt     *time.Time       `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ProviderProfile) TableName() string {
	return "provider_profiles"
}

// MechanicProfile represents the mechanic_profiles table
type MechanicProfile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"userId"`
	ProviderID       uint      `gorm:"index;not null" json:"providerId"`
	IsSelfRegistered bool      `gorm:"default:false" json:"isSelfRegistered"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (MechanicProfile) TableName() string {
	return "mechanic_profiles"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// Session represents the sessions table, the durable backing of the session
// store. A row is either a full authenticated session (Key = access token
// hash, UserID set) or a pending registration record (Key = registration id,
// RegisterStatus = "otp", TempUser holding the serialized snapshot).
type Session struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Key            string      `gorm:"uniqueIndex;size:255;not null" json:"-"`
	UserID         *uint       `gorm:"index" json:"user_id,omitempty"`
	Role           domain.Role `gorm:"size:20" json:"role,omitempty"`
	ActiveRole     domain.Role `gorm:"size:20" json:"active_role,omitempty"`
	PendingRole    domain.Role `gorm:"size:20" json:"-"`
	RegisterStatus string      `gorm:"size:20" json:"register_status,omitempty"`
	TempUser       string      `gorm:"type:text" json:"-"`
	Verified       bool        `gorm:"default:false" json:"verified"`
	LastError      string      `gorm:"size:500" json:"-"`
	ExpiresAt      time.Time   `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt      *time.Time  `gorm:"index" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// RegisterStatusOTP marks a registration that succeeded and is waiting on
// phone verification.
const RegisterStatusOTP = "otp"

// AutoMigrate runs database migrations for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&ProviderProfile{},
		&MechanicProfile{},
		&RefreshToken{},
		&Session{},
	)
}
