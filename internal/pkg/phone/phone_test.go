package phone

import (
	"errors"
	"testing"

	"garagehub/internal/core/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "bare local number", input: "9876543210", want: "+919876543210"},
		{name: "already prefixed", input: "+919876543210", want: "+919876543210"},
		{name: "country code without plus", input: "919876543210", want: "+919876543210"},
		{name: "embedded separators", input: "98-7654-3210", want: "+919876543210"},
		{name: "spaces", input: " 98765 43210 ", want: "+919876543210"},
		{name: "foreign number with plus", input: "+14155550123", want: "+14155550123"},
		{name: "too short", input: "12345", wantErr: domain.ErrInvalidPhone},
		{name: "empty", input: "", wantErr: domain.ErrInvalidPhone},
		{name: "eleven digits no plus", input: "19876543210", wantErr: domain.ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Normalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsEmail(t *testing.T) {
	if !IsEmail("a@b.com") {
		t.Error("a@b.com should be treated as email")
	}
	if IsEmail("9876543210") {
		t.Error("9876543210 should not be treated as email")
	}
}

func TestIsCompleteCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12a456", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsCompleteCode(tt.code); got != tt.want {
			t.Errorf("IsCompleteCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
