package jwt

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "+919876543210", "provider", testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Phone != "+919876543210" {
		t.Errorf("Phone = %q, want +919876543210", claims.Phone)
	}
	if claims.Role != "provider" {
		t.Errorf("Role = %q, want provider", claims.Role)
	}
}

func TestAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "+919876543210", "customer", testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}
	if _, err := ValidateAccessToken(token, "other-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-1", testSecret, 7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error: %v", err)
	}
	claims, err := ValidateRefreshToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error: %v", err)
	}
	if claims.UserID != 7 || claims.TokenID != "token-id-1" {
		t.Errorf("claims = %+v, want UserID 7 TokenID token-id-1", claims)
	}
}

func TestIdentityAssertion(t *testing.T) {
	assertion, err := GenerateIdentityAssertion("+919876543210", testSecret, 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateIdentityAssertion() error: %v", err)
	}
	claims, err := ValidateIdentityAssertion(assertion, testSecret)
	if err != nil {
		t.Fatalf("ValidateIdentityAssertion() error: %v", err)
	}
	if claims.Phone != "+919876543210" {
		t.Errorf("Phone = %q, want +919876543210", claims.Phone)
	}
	if claims.Purpose != AssertionPurpose {
		t.Errorf("Purpose = %q, want %q", claims.Purpose, AssertionPurpose)
	}
}

func TestIdentityAssertion_Expired(t *testing.T) {
	assertion, err := GenerateIdentityAssertion("+919876543210", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateIdentityAssertion() error: %v", err)
	}
	if _, err := ValidateIdentityAssertion(assertion, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestIdentityAssertion_NotAnAccessToken(t *testing.T) {
	// An access token must not be accepted where an assertion is required.
	token, err := GenerateAccessToken(1, "+919876543210", "customer", testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}
	if _, err := ValidateIdentityAssertion(token, testSecret); err == nil {
		t.Error("access token accepted as identity assertion")
	}
}
