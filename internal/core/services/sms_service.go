package services

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioService implements NotificationService over the Twilio SMS API
type TwilioService struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioService creates a new Twilio notification service. With no
// configured sender number the service logs messages instead of sending,
// which keeps local development free of Twilio credentials.
func NewTwilioService(accountSID, authToken, fromNumber string) *TwilioService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioService{
		client:     client,
		fromNumber: fromNumber,
	}
}

// SendSMS implements NotificationService
func (t *TwilioService) SendSMS(_ context.Context, to, message string) error {
	if t.fromNumber == "" {
		log.Printf("📨 [MOCK SMS] to=%s body=%q", to, message)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}
