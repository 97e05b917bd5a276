package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"reviewdesk/internal/adapters/observability"
)

// Notifier sends WhatsApp messages through Twilio. Delivery is
// fire-and-forget from the coordinator's point of view; there is no retry
// or queue on this path.
type Notifier struct {
	cli  *twilio.RestClient
	from string
}

func New(accountSID, authToken, fromNumber string) (*Notifier, error) {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return nil, fmt.Errorf("twilio credentials are required")
	}
	cli := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Notifier{cli: cli, from: fromNumber}, nil
}

// Send delivers body to the number and returns the message SID.
// The twilio client carries no context; the ctx parameter keeps the port
// shape and lets callers bound the overall operation.
func (n *Notifier) Send(ctx context.Context, phone, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(ensureWhatsAppPrefix(phone))
	params.SetFrom(ensureWhatsAppPrefix(n.from))
	params.SetBody(body)

	start := time.Now()
	msg, err := n.cli.Api.CreateMessage(params)
	if err != nil {
		observability.ObserveExternal("twilio", "create_message", 0, time.Since(start))
		return "", fmt.Errorf("twilio create message: %w", err)
	}
	observability.ObserveExternal("twilio", "create_message", 200, time.Since(start))

	if msg.Sid == nil {
		return "", nil
	}
	return *msg.Sid, nil
}

// ensureWhatsAppPrefix adds the channel prefix Twilio expects on both
// sides of a WhatsApp message.
func ensureWhatsAppPrefix(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

// StripWhatsAppPrefix normalizes an inbound sender address back to E.164.
func StripWhatsAppPrefix(number string) string {
	return strings.TrimPrefix(number, "whatsapp:")
}
