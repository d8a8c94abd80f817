package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrNotQueued = errors.New("sms was not accepted for delivery")

type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// LogSender logs messages instead of sending them. Used when Twilio is not configured.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, body string) error {
	s.logger.InfoContext(ctx, "sms (not sent)", "to", to, "body", body)
	return nil
}

// messageCreator is the part of the Twilio REST client we call.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	api  messageCreator
	from string
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if msg.Status == nil {
		return ErrNotQueued
	}
	if *msg.Status != "queued" {
		return fmt.Errorf("%w: status %s", ErrNotQueued, *msg.Status)
	}
	return nil
}

type Options struct {
	AccountSID string
	AuthToken  string
	From       string
}

// NewSender returns a TwilioSender when credentials are present, LogSender otherwise.
func NewSender(opts Options, logger *slog.Logger) Sender {
	if opts.AccountSID == "" {
		return &LogSender{logger: logger.With("component", "sms")}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: opts.AccountSID,
		Password: opts.AuthToken,
	})
	return &TwilioSender{api: client.Api, from: opts.From}
}
