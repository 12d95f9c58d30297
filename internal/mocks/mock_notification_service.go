package mocks

import "context"

// MockNotificationService implements the services notification interface for testing
type MockNotificationService struct {
	SendSMSFunc func(ctx context.Context, to, message string) error

	// Sent records every delivered message for assertions.
	Sent []SentSMS
}

// SentSMS is one recorded SMS delivery
type SentSMS struct {
	To      string
	Message string
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendSMS records the message and succeeds unless SendSMSFunc says otherwise
func (m *MockNotificationService) SendSMS(ctx context.Context, to, message string) error {
	if m.SendSMSFunc != nil {
		if err := m.SendSMSFunc(ctx, to, message); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, SentSMS{To: to, Message: message})
	return nil
}
