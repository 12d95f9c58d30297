package services

import "context"

// NotificationService delivers out-of-band messages to users. The OTP channel
// is its only caller in the auth core.
type NotificationService interface {
	SendSMS(ctx context.Context, to, message string) error
}
