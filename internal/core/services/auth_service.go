package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
	"garagehub/internal/config"
	"garagehub/internal/core/domain"
	"garagehub/internal/pkg/jwt"
	"garagehub/internal/pkg/password"
	"garagehub/internal/pkg/phone"
)

// Auth errors
var (
	ErrAccountNotFound    = domain.ErrAccountNotFound
	ErrInvalidCredentials = domain.ErrInvalidCredentials
	ErrDuplicateAccount   = domain.ErrDuplicateAccount
	ErrAccountInactive    = domain.ErrAccountInactive
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrOTPMismatch        = domain.ErrOTPMismatch
	ErrSessionExpired     = domain.ErrSessionExpired
	ErrUnauthorized       = domain.ErrUnauthorized
)

// AuthService executes the four auth operations and normalizes every backend
// outcome into session store updates. It never decides navigation; the
// redirect resolver consumes its output.
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	sessions         *SessionService
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	sessions *SessionService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		sessions:         sessions,
		cfg:              cfg,
	}
}

// LoginInput represents login input. Identifier is an email when it contains
// "@", otherwise a phone number in any user-entered form.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// AuthResult is the {user, token, next?} envelope returned after login and
// OTP verification.
type AuthResult struct {
	User         *models.UserResponse `json:"user"`
	Token        string               `json:"token"`
	RefreshToken string               `json:"-"`
	Next         domain.NextStep      `json:"next,omitempty"`
}

// RegisterResult holds the register→OTP window state
type RegisterResult struct {
	TempUser       *models.UserResponse `json:"tempUser"`
	RegistrationID string               `json:"registrationId"`
	RegisterStatus string               `json:"registerStatus"`
}

// Login authenticates by email or phone and returns the auth envelope. The
// next discriminator is passed through to the caller unmutated.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResult, error) {
	var user *models.User
	var err error

	if phone.IsEmail(input.Identifier) {
		user, err = s.userRepo.GetByEmail(ctx, input.Identifier)
	} else {
		var normalized string
		normalized, err = phone.Normalize(input.Identifier)
		if err != nil {
			return nil, err
		}
		user, err = s.userRepo.GetByPhone(ctx, normalized)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	result, err := s.establishSession(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Email)
	return result, nil
}

// Register creates the account and opens the register→OTP window. The caller
// orchestrates the OTP challenge against the freshly registered phone; this
// dispatcher only records state.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*RegisterResult, error) {
	normalized, err := phone.Normalize(input.Phone)
	if err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() || role == domain.RoleAdmin {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAccount
	}
	exists, err = s.userRepo.ExistsByPhone(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAccount
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
		Role:     role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	registrationID, err := s.sessions.SetTempUser(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (%s)", user.Email, user.Phone)

	return &RegisterResult{
		TempUser:       user.ToResponse(),
		RegistrationID: registrationID,
		RegisterStatus: models.RegisterStatusOTP,
	}, nil
}

// VerifyOTP exchanges the OTP channel's identity assertion for a real
// session. This is the point where tempUser and registerStatus are
// superseded by user and token. Safe to repeat with the same outcome.
func (s *AuthService) VerifyOTP(ctx context.Context, assertion string) (*AuthResult, error) {
	claims, err := jwt.ValidateIdentityAssertion(assertion, s.cfg.JWT.AssertionSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrOTPMismatch
	}

	user, err := s.userRepo.GetByPhone(ctx, claims.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if !user.IsPhoneVerified {
		user.IsPhoneVerified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	// The tempUser window ends here, before the real session exists.
	if err := s.sessions.SupersedePending(ctx, user.ID); err != nil {
		return nil, err
	}

	result, err := s.establishSession(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ OTP verified, session issued: %s", user.Phone)
	return result, nil
}

// RefreshUser re-fetches the current user by id. Called after any
// server-side mutation of onboarding, KYC, or role flags so the session
// store stays authoritative.
func (s *AuthService) RefreshUser(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	return user.ToResponse(), nil
}

// GetUser fetches the full user model with profiles preloaded.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetPassword sets a new password and clears the one-shot forced-reset flag.
func (s *AuthService) SetPassword(ctx context.Context, userID uint, newPassword string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	user.Password = hashed
	user.RequiresPasswordReset = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Other devices must re-authenticate with the new password.
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return nil, err
	}

	log.Printf("✅ Password set for user %d", userID)
	return user.ToResponse(), nil
}

// RefreshToken rotates the refresh token and issues a fresh pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	// Token rotation
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	result, err := s.establishSession(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Email)
	return result, nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// establishSession generates a token pair, persists the rotated refresh
// token, records the session, and computes the next discriminator. The
// session write completes before any redirect decision can read it.
func (s *AuthService) establishSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}
	if err := s.sessions.ApplyAuthSuccess(ctx, user, tokens.AccessToken); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user.ToResponse(),
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Next:         ResolveNextStep(user),
	}, nil
}

// ResolveNextStep computes the post-login discriminator. Phone verification
// comes first; a provider acting as their own mechanic is exempt from the
// forced password reset; a dual-profile account must pick a workspace.
func ResolveNextStep(user *models.User) domain.NextStep {
	if !user.IsPhoneVerified {
		return domain.NextVerifyOTP
	}
	selfRegistered := user.Mechanic != nil && user.Mechanic.IsSelfRegistered
	if user.RequiresPasswordReset && !selfRegistered {
		return domain.NextSetPassword
	}
	if user.Provider != nil && user.Mechanic != nil {
		return domain.NextSelectRole
	}
	return domain.NextNone
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Phone,
		string(user.Role),
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}
