package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
	"garagehub/internal/core/domain"
	"garagehub/internal/pkg/password"
)

// SessionView is the hydrated state of one session. An empty view (nil User,
// empty Token) means the caller must route to login.
type SessionView struct {
	User           *models.UserResponse `json:"user"`
	Token          string               `json:"token,omitempty"`
	ActiveRole     domain.Role          `json:"activeRole,omitempty"`
	PendingRole    domain.Role          `json:"pendingRole,omitempty"`
	Verified       bool                 `json:"verified"`
	RegisterStatus string               `json:"registerStatus,omitempty"`
	TempUser       *models.UserResponse `json:"tempUser,omitempty"`
	LastError      string               `json:"error,omitempty"`
}

// SessionService is the single owner of session state. Every mutation goes
// through one of its operations; the sessions table is a cache of this
// state, never a second source of truth.
type SessionService struct {
	sessionRepo      repositories.SessionRepository
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	sessionTTL       time.Duration
	registerTTL      time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repositories.SessionRepository,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	sessionTTLDays int,
) *SessionService {
	return &SessionService{
		sessionRepo:      sessionRepo,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		sessionTTL:       time.Duration(sessionTTLDays) * 24 * time.Hour,
		registerTTL:      30 * time.Minute,
	}
}

// Hydrate loads the session behind an access token. A missing, revoked, or
// expired session yields an empty view rather than an error.
func (s *SessionService) Hydrate(ctx context.Context, accessToken string) (*SessionView, error) {
	if accessToken == "" {
		return &SessionView{}, nil
	}

	session, err := s.sessionRepo.GetByKey(ctx, password.HashToken(accessToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SessionView{}, nil
		}
		return nil, err
	}
	if session.IsExpired() || session.UserID == nil {
		return &SessionView{}, nil
	}

	user, err := s.userRepo.GetByID(ctx, *session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SessionView{}, nil
		}
		return nil, err
	}

	return &SessionView{
		User:        user.ToResponse(),
		Token:       accessToken,
		ActiveRole:  session.ActiveRole,
		PendingRole: session.PendingRole,
		Verified:    session.Verified,
		LastError:   session.LastError,
	}, nil
}

// ApplyAuthSuccess records a fully-authenticated session. Applying the same
// outcome twice reuses the existing row instead of duplicating it.
func (s *SessionService) ApplyAuthSuccess(ctx context.Context, user *models.User, accessToken string) error {
	key := password.HashToken(accessToken)

	existing, err := s.sessionRepo.GetByKey(ctx, key)
	if err == nil {
		existing.Role = user.Role
		existing.Verified = user.IsPhoneVerified
		existing.LastError = ""
		return s.sessionRepo.Update(ctx, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	userID := user.ID
	session := &models.Session{
		Key:       key,
		UserID:    &userID,
		Role:      user.Role,
		Verified:  user.IsPhoneVerified,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	return s.sessionRepo.Create(ctx, session)
}

// ApplyAuthFailure records the last failure on a session for display. Prior
// valid state is left intact; this operation never fails the caller.
func (s *SessionService) ApplyAuthFailure(ctx context.Context, accessToken string, cause error) {
	if accessToken == "" || cause == nil {
		return
	}
	session, err := s.sessionRepo.GetByKey(ctx, password.HashToken(accessToken))
	if err != nil {
		return
	}
	session.LastError = cause.Error()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		log.Printf("⚠️ Failed to record auth failure: %v", err)
	}
}

// Logout tears the session down completely: the session row and every
// refresh token behind it. Idempotent and safe when already logged out.
func (s *SessionService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	key := password.HashToken(accessToken)

	session, err := s.sessionRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := s.sessionRepo.RevokeByKey(ctx, key); err != nil {
		return err
	}
	if session.UserID != nil {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, *session.UserID); err != nil {
			return err
		}
	}

	log.Printf("✅ Session revoked")
	return nil
}

// SetTempUser opens the register→OTP window: a pending session row holding
// the registered-but-unverified account snapshot. Returns the registration id
// the client hands back alongside the identity assertion.
func (s *SessionService) SetTempUser(ctx context.Context, user *models.User) (string, error) {
	snapshot, err := json.Marshal(user.ToResponse())
	if err != nil {
		return "", err
	}

	userID := user.ID
	session := &models.Session{
		Key:            uuid.New().String(),
		UserID:         &userID,
		Role:           user.Role,
		RegisterStatus: models.RegisterStatusOTP,
		TempUser:       string(snapshot),
		ExpiresAt:      time.Now().Add(s.registerTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", err
	}
	return session.Key, nil
}

// SetRegisterStatus updates the registration marker on a pending session.
func (s *SessionService) SetRegisterStatus(ctx context.Context, registrationID, status string) error {
	session, err := s.sessionRepo.GetByKey(ctx, registrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	session.RegisterStatus = status
	return s.sessionRepo.Update(ctx, session)
}

// SupersedePending revokes every session a user holds. Called right before a
// real session is created so the tempUser window cannot outlive verification.
func (s *SessionService) SupersedePending(ctx context.Context, userID uint) error {
	return s.sessionRepo.RevokeAllByUserID(ctx, userID)
}

// SetActiveRole writes the active workspace role. When the role is not among
// the user's held profiles the call is a no-op: state and storage stay
// untouched.
func (s *SessionService) SetActiveRole(ctx context.Context, accessToken string, role domain.Role) error {
	session, user, err := s.sessionWithUser(ctx, accessToken)
	if err != nil {
		return err
	}
	if !holdsRole(user, role) {
		return nil
	}
	session.ActiveRole = role
	return s.sessionRepo.Update(ctx, session)
}

// RequestRoleSwitch marks a switch as pending confirmation. Both profiles
// must be held and the target must be one of them.
func (s *SessionService) RequestRoleSwitch(ctx context.Context, accessToken string, target domain.Role) error {
	session, user, err := s.sessionWithUser(ctx, accessToken)
	if err != nil {
		return err
	}
	if user.Provider == nil || user.Mechanic == nil {
		return domain.ErrForbidden
	}
	if !holdsRole(user, target) {
		return domain.ErrRoleNotHeld
	}
	session.PendingRole = target
	return s.sessionRepo.Update(ctx, session)
}

// ConfirmRoleSwitch commits the pending switch. The write completes before
// this returns, so the target dashboard can never read a stale activeRole.
func (s *SessionService) ConfirmRoleSwitch(ctx context.Context, accessToken string) (domain.Role, error) {
	session, _, err := s.sessionWithUser(ctx, accessToken)
	if err != nil {
		return "", err
	}
	if session.PendingRole == "" {
		return "", domain.ErrNoPendingRoleSwitch
	}
	session.ActiveRole = session.PendingRole
	session.PendingRole = ""
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return "", err
	}
	return session.ActiveRole, nil
}

// CancelRoleSwitch rolls the pending switch back and reports the committed
// active role. Last committed value wins, whatever was pending.
func (s *SessionService) CancelRoleSwitch(ctx context.Context, accessToken string) (domain.Role, error) {
	session, _, err := s.sessionWithUser(ctx, accessToken)
	if err != nil {
		return "", err
	}
	if session.PendingRole == "" {
		return session.ActiveRole, nil
	}
	session.PendingRole = ""
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return "", err
	}
	return session.ActiveRole, nil
}

func (s *SessionService) sessionWithUser(ctx context.Context, accessToken string) (*models.Session, *models.User, error) {
	session, err := s.sessionRepo.GetByKey(ctx, password.HashToken(accessToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrUnauthorized
		}
		return nil, nil, err
	}
	if session.IsExpired() || session.UserID == nil {
		return nil, nil, domain.ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, *session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrUnauthorized
		}
		return nil, nil, err
	}
	return session, user, nil
}

func holdsRole(user *models.User, role domain.Role) bool {
	switch role {
	case domain.RoleProvider:
		return user.Provider != nil
	case domain.RoleMechanic:
		return user.Mechanic != nil
	}
	return false
}
