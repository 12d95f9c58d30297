package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Account errors
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrAccountInactive  = errors.New("account is inactive")
	ErrInvalidPhone     = errors.New("invalid phone number")
)

// OTP channel errors
var (
	ErrChallengeSetup    = errors.New("challenge setup failed")
	ErrChallengeNotFound = errors.New("no active challenge")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrCodeIncomplete    = errors.New("verification code incomplete")
	ErrTooManyAttempts   = errors.New("too many verification attempts")
	ErrResendThrottled   = errors.New("resend requested before cooldown elapsed")
	ErrOTPMismatch       = errors.New("otp verification mismatch")
	ErrSessionExpired    = errors.New("session expired")
)

// KYC / roster errors
var (
	ErrProviderNotFound    = errors.New("provider profile not found")
	ErrMechanicNotFound    = errors.New("mechanic profile not found")
	ErrKYCAlreadyReviewed  = errors.New("kyc submission already reviewed")
	ErrRoleNotHeld         = errors.New("role not held by user")
	ErrNoPendingRoleSwitch = errors.New("no role switch pending")
)
