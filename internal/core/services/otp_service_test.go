package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"garagehub/internal/core/domain"
	"garagehub/internal/mocks"
	"garagehub/internal/pkg/jwt"
)

const testAssertionSecret = "test-assertion-secret"

func newTestOTPService(notifier NotificationService) (*OTPService, *time.Time) {
	svc := NewOTPService(notifier, DefaultOTPConfig(testAssertionSecret))
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func challengeCode(t *testing.T, svc *OTPService, phone string) string {
	t.Helper()
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	ch, ok := svc.byPhone[phone]
	if !ok {
		t.Fatalf("no challenge registered for %s", phone)
	}
	return ch.Code
}

func TestRequestChallengeNormalizesPhone(t *testing.T) {
	notifier := mocks.NewMockNotificationService()
	svc, _ := newTestOTPService(notifier)

	handle, err := svc.RequestChallenge(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestChallenge: %v", err)
	}
	if handle.Phone != "+919876543210" {
		t.Errorf("handle phone = %q, want +919876543210", handle.Phone)
	}
	if len(notifier.Sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(notifier.Sent))
	}
	if notifier.Sent[0].To != "+919876543210" {
		t.Errorf("SMS sent to %q, want normalized number", notifier.Sent[0].To)
	}
}

func TestRequestChallengeRejectsInvalidPhone(t *testing.T) {
	notifier := mocks.NewMockNotificationService()
	svc, _ := newTestOTPService(notifier)

	_, err := svc.RequestChallenge(context.Background(), "12345")
	if !errors.Is(err, domain.ErrInvalidPhone) {
		t.Fatalf("err = %v, want ErrInvalidPhone", err)
	}
	if len(notifier.Sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(notifier.Sent))
	}
}

func TestRequestChallengeCooldown(t *testing.T) {
	notifier := mocks.NewMockNotificationService()
	svc, clock := newTestOTPService(notifier)

	if _, err := svc.RequestChallenge(context.Background(), "9876543210"); err != nil {
		t.Fatalf("first request: %v", err)
	}

	// A resend inside the cooldown is refused without touching the provider.
	*clock = clock.Add(10 * time.Second)
	_, err := svc.RequestChallenge(context.Background(), "9876543210")
	if !errors.Is(err, domain.ErrResendThrottled) {
		t.Fatalf("err = %v, want ErrResendThrottled", err)
	}
	if len(notifier.Sent) != 1 {
		t.Errorf("sent %d messages, want 1 (throttled resend must not send)", len(notifier.Sent))
	}

	ok, wait := svc.CanResend("9876543210")
	if ok {
		t.Error("CanResend = true inside cooldown")
	}
	if wait <= 0 || wait > 15*time.Second {
		t.Errorf("remaining cooldown = %v, want (0, 15s]", wait)
	}

	// After the cooldown elapses the resend goes through.
	*clock = clock.Add(6 * time.Second)
	if _, err := svc.RequestChallenge(context.Background(), "9876543210"); err != nil {
		t.Fatalf("resend after cooldown: %v", err)
	}
	if len(notifier.Sent) != 2 {
		t.Errorf("sent %d messages, want 2", len(notifier.Sent))
	}
}

func TestResendSupersedesOldHandle(t *testing.T) {
	notifier := mocks.NewMockNotificationService()
	svc, clock := newTestOTPService(notifier)

	first, err := svc.RequestChallenge(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	firstCode := challengeCode(t, svc, "+919876543210")

	*clock = clock.Add(20 * time.Second)
	second, err := svc.RequestChallenge(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("resend returned the same handle")
	}

	// The superseded handle fails as expired even with its correct code.
	if _, err := svc.ConfirmChallenge(context.Background(), first.ID, firstCode); !errors.Is(err, domain.ErrChallengeExpired) {
		t.Errorf("confirm on superseded handle: err = %v, want ErrChallengeExpired", err)
	}

	// The fresh handle still confirms.
	code := challengeCode(t, svc, "+919876543210")
	if _, err := svc.ConfirmChallenge(context.Background(), second.ID, code); err != nil {
		t.Errorf("confirm on fresh handle: %v", err)
	}
}

func TestConfirmChallengeIncompleteCode(t *testing.T) {
	svc, _ := newTestOTPService(mocks.NewMockNotificationService())

	handle, err := svc.RequestChallenge(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestChallenge: %v", err)
	}

	for _, code := range []string{"", "123", "12345", "12a456"} {
		if _, err := svc.ConfirmChallenge(context.Background(), handle.ID, code); !errors.Is(err, domain.ErrCodeIncomplete) {
			t.Errorf("code %q: err = %v, want ErrCodeIncomplete", code, err)
		}
	}

	// Local rejection must not burn attempts.
	svc.mu.RLock()
	attempts := svc.handles[handle.ID].Attempts
	svc.mu.RUnlock()
	if attempts != 0 {
		t.Errorf("attempts = %d after incomplete codes, want 0", attempts)
	}
}

func TestConfirmChallengeWrongCodeAndAttemptCap(t *testing.T) {
	svc, _ := newTestOTPService(mocks.NewMockNotificationService())

	handle, err := svc.RequestChallenge(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestChallenge: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.ConfirmChallenge(context.Background(), handle.ID, "000000"); !errors.Is(err, domain.ErrInvalidCode) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCode", i+1, err)
		}
	}

	// The sixth attempt exceeds the cap; the correct code no longer helps.
	code := challengeCode(t, svc, "+919876543210")
	if _, err := svc.ConfirmChallenge(context.Background(), handle.ID, code); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Errorf("err = %v, want ErrTooManyAttempts", err)
	}
}

func TestConfirmChallengeExpiry(t *testing.T) {
	svc, clock := newTestOTPService(mocks.NewMockNotificationService())

	handle, err := svc.RequestChallenge(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestChallenge: %v", err)
	}
	code := challengeCode(t, svc, "+919876543210")

	*clock = clock.Add(6 * time.Minute)
	if _, err := svc.ConfirmChallenge(context.Background(), handle.ID, code); !errors.Is(err, domain.ErrChallengeExpired) {
		t.Errorf("err = %v, want ErrChallengeExpired", err)
	}
}

func TestConfirmChallengeMintsAssertion(t *testing.T) {
	svc, _ := newTestOTPService(mocks.NewMockNotificationService())

	handle, err := svc.RequestChallenge(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestChallenge: %v", err)
	}
	code := challengeCode(t, svc, "+919876543210")

	assertion, err := svc.ConfirmChallenge(context.Background(), handle.ID, code)
	if err != nil {
		t.Fatalf("ConfirmChallenge: %v", err)
	}

	claims, err := jwt.ValidateIdentityAssertion(assertion, testAssertionSecret)
	if err != nil {
		t.Fatalf("ValidateIdentityAssertion: %v", err)
	}
	if claims.Phone != "+919876543210" {
		t.Errorf("assertion phone = %q, want +919876543210", claims.Phone)
	}
	if claims.Purpose != jwt.AssertionPurpose {
		t.Errorf("assertion purpose = %q, want %q", claims.Purpose, jwt.AssertionPurpose)
	}
}

func TestConfirmChallengeUnknownHandle(t *testing.T) {
	svc, _ := newTestOTPService(mocks.NewMockNotificationService())

	if _, err := svc.ConfirmChallenge(context.Background(), "nope", "123456"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("err = %v, want ErrChallengeNotFound", err)
	}
}

func TestTeardownIsSafeOnUnknownHandle(t *testing.T) {
	svc, _ := newTestOTPService(mocks.NewMockNotificationService())

	svc.Teardown("never-issued")

	handle, err := svc.RequestChallenge(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestChallenge: %v", err)
	}
	svc.Teardown(handle.ID)
	svc.Teardown(handle.ID)

	if _, err := svc.ConfirmChallenge(context.Background(), handle.ID, "123456"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("confirm after teardown: err = %v, want ErrChallengeNotFound", err)
	}
}

func TestPruneExpired(t *testing.T) {
	svc, clock := newTestOTPService(mocks.NewMockNotificationService())

	if _, err := svc.RequestChallenge(context.Background(), "9876543210"); err != nil {
		t.Fatalf("RequestChallenge: %v", err)
	}
	if _, err := svc.RequestChallenge(context.Background(), "9123456789"); err != nil {
		t.Fatalf("RequestChallenge: %v", err)
	}

	*clock = clock.Add(10 * time.Minute)
	if pruned := svc.PruneExpired(); pruned != 2 {
		t.Errorf("pruned = %d, want 2", pruned)
	}

	svc.mu.RLock()
	remaining := len(svc.handles)
	svc.mu.RUnlock()
	if remaining != 0 {
		t.Errorf("%d handles remain after prune, want 0", remaining)
	}
}
