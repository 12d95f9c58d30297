package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"garagehub/internal/core/domain"
	"garagehub/internal/pkg/jwt"
	"garagehub/internal/pkg/phone"
)

// ChallengeState tracks a phone challenge through its lifecycle.
type ChallengeState string

const (
	StateRequested ChallengeState = "requested"
	StateSent      ChallengeState = "sent"
	StateConfirmed ChallengeState = "confirmed"
	StateExpired   ChallengeState = "expired"
	StateFailed    ChallengeState = "failed"
)

// Challenge is a single outstanding phone verification.
type Challenge struct {
	ID         string
	Phone      string
	Code       string
	State      ChallengeState
	SentAt     time.Time
	ExpiresAt  time.Time
	Attempts   int
	Superseded bool
}

// ChallengeHandle is the opaque reference handed to callers.
type ChallengeHandle struct {
	ID        string    `json:"challengeId"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// OTPConfig tunes the OTP channel.
type OTPConfig struct {
	CodeLength      int
	TTL             time.Duration
	MaxAttempts     int
	ResendCooldown  time.Duration
	AssertionSecret string
	AssertionTTL    time.Duration
}

// DefaultOTPConfig returns the production defaults: 6-digit codes, 5 minute
// provider TTL, 5 attempts, 15 second resend cooldown.
func DefaultOTPConfig(assertionSecret string) OTPConfig {
	return OTPConfig{
		CodeLength:      6,
		TTL:             5 * time.Minute,
		MaxAttempts:     5,
		ResendCooldown:  15 * time.Second,
		AssertionSecret: assertionSecret,
		AssertionTTL:    5 * time.Minute,
	}
}

// OTPService is the sole adapter in front of SMS phone verification. At most
// one challenge is live per phone number; a resend supersedes the previous
// handle, whose confirm then fails as expired.
type OTPService struct {
	notifier NotificationService
	cfg      OTPConfig

	mu      sync.RWMutex
	byPhone map[string]*Challenge
	handles map[string]*Challenge

	now func() time.Time
}

// NewOTPService creates a new OTP service
func NewOTPService(notifier NotificationService, cfg OTPConfig) *OTPService {
	return &OTPService{
		notifier: notifier,
		cfg:      cfg,
		byPhone:  make(map[string]*Challenge),
		handles:  make(map[string]*Challenge),
		now:      time.Now,
	}
}

// RequestChallenge generates a code and sends it to phoneNumber. The cooldown
// is checked before any SMS call, so a premature resend never reaches the
// provider.
func (s *OTPService) RequestChallenge(ctx context.Context, phoneNumber string) (*ChallengeHandle, error) {
	normalized, err := phone.Normalize(phoneNumber)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := s.now()

	if existing, ok := s.byPhone[normalized]; ok {
		if existing.State == StateSent && now.Before(existing.SentAt.Add(s.cfg.ResendCooldown)) {
			s.mu.Unlock()
			return nil, domain.ErrResendThrottled
		}
		// Old handle stays registered so its confirm fails as expired.
		existing.Superseded = true
	}

	code, err := generateSecureCode(s.cfg.CodeLength)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrChallengeSetup, err)
	}

	ch := &Challenge{
		ID:        uuid.New().String(),
		Phone:     normalized,
		Code:      code,
		State:     StateRequested,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	s.byPhone[normalized] = ch
	s.handles[ch.ID] = ch
	s.mu.Unlock()

	message := fmt.Sprintf("Your GarageHub verification code is %s. Valid for %d minutes.", code, int(s.cfg.TTL.Minutes()))
	if err := s.notifier.SendSMS(ctx, normalized, message); err != nil {
		s.mu.Lock()
		ch.State = StateFailed
		delete(s.handles, ch.ID)
		if s.byPhone[normalized] == ch {
			delete(s.byPhone, normalized)
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrChallengeSetup, err)
	}

	s.mu.Lock()
	ch.State = StateSent
	ch.SentAt = s.now()
	s.mu.Unlock()

	log.Printf("📲 OTP challenge sent to %s", normalized)

	return &ChallengeHandle{ID: ch.ID, Phone: normalized, ExpiresAt: ch.ExpiresAt}, nil
}

// ConfirmChallenge exchanges a 6-digit code for an identity assertion.
// Incomplete codes are rejected locally; superseded or expired handles fail
// with the expiry error independent of any client-side timer.
func (s *OTPService) ConfirmChallenge(ctx context.Context, handleID, code string) (string, error) {
	if !phone.IsCompleteCode(code) {
		return "", domain.ErrCodeIncomplete
	}

	s.mu.Lock()
	ch, ok := s.handles[handleID]
	if !ok {
		s.mu.Unlock()
		return "", domain.ErrChallengeNotFound
	}

	now := s.now()
	if ch.Superseded || now.After(ch.ExpiresAt) || ch.State == StateExpired {
		ch.State = StateExpired
		s.mu.Unlock()
		return "", domain.ErrChallengeExpired
	}
	if ch.State == StateConfirmed {
		s.mu.Unlock()
		return "", domain.ErrChallengeExpired
	}

	ch.Attempts++
	if ch.Attempts > s.cfg.MaxAttempts {
		ch.State = StateFailed
		s.mu.Unlock()
		return "", domain.ErrTooManyAttempts
	}

	if ch.Code != code {
		s.mu.Unlock()
		return "", domain.ErrInvalidCode
	}

	ch.State = StateConfirmed
	phoneNumber := ch.Phone
	s.mu.Unlock()

	assertion, err := jwt.GenerateIdentityAssertion(phoneNumber, s.cfg.AssertionSecret, s.cfg.AssertionTTL)
	if err != nil {
		return "", fmt.Errorf("mint identity assertion: %w", err)
	}

	log.Printf("✅ Phone verified: %s", phoneNumber)
	return assertion, nil
}

// CanResend reports whether a new challenge may be issued for a phone, and
// the remaining cooldown when it may not.
func (s *OTPService) CanResend(phoneNumber string) (bool, time.Duration) {
	normalized, err := phone.Normalize(phoneNumber)
	if err != nil {
		return false, 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.byPhone[normalized]
	if !ok || ch.State != StateSent {
		return true, 0
	}
	wait := ch.SentAt.Add(s.cfg.ResendCooldown).Sub(s.now())
	if wait <= 0 {
		return true, 0
	}
	return false, wait
}

// Teardown releases a challenge handle. Safe to call for unknown handles so
// screens can always release on navigation-away.
func (s *OTPService) Teardown(handleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.handles[handleID]
	if !ok {
		return
	}
	delete(s.handles, handleID)
	if s.byPhone[ch.Phone] == ch {
		delete(s.byPhone, ch.Phone)
	}
}

// PruneExpired removes finished and expired challenges. Called from the
// cleanup cron.
func (s *OTPService) PruneExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	pruned := 0
	for id, ch := range s.handles {
		if now.After(ch.ExpiresAt) || ch.State == StateConfirmed || ch.State == StateFailed {
			delete(s.handles, id)
			if s.byPhone[ch.Phone] == ch {
				delete(s.byPhone, ch.Phone)
			}
			pruned++
		}
	}
	return pruned
}

// generateSecureCode generates a cryptographically secure numeric code
func generateSecureCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
