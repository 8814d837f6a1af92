package service

import (
	"context"
	"log"
)

// SMSSender dispatches one-time codes to a phone number. Actual delivery
// integrations live outside this service; LogSMSSender stands in for
// development and tests.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSMSSender writes the message to the server log instead of sending it.
type LogSMSSender struct{}

// Send logs the message
func (LogSMSSender) Send(_ context.Context, phone, message string) error {
	log.Printf("SMS to %s: %s", phone, message)
	return nil
}
