package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the part of the Twilio REST API used to send messages
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioChannel sends messages through Twilio. From and To may be plain
// numbers for SMS or carry the "whatsapp:" prefix for WhatsApp.
type TwilioChannel struct {
	api  messageCreator
	from string
	to   string
}

// NewTwilioChannel creates a channel authenticated with an account SID and auth token
func NewTwilioChannel(accountSID, authToken, from, to string) (*TwilioChannel, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("twilio account sid and auth token are required")
	}
	if from == "" || to == "" {
		return nil, errors.New("twilio sender and recipient are required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioChannel{api: client.Api, from: from, to: to}, nil
}

func (t *TwilioChannel) Name() string { return "twilio" }

// Send creates one outbound message. The SDK call is not context-aware, so ctx is
// only checked before the request starts.
func (t *TwilioChannel) Send(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(t.to)
	params.SetBody(body)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	if resp != nil && resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
		return fmt.Errorf("create message: %s", *resp.ErrorMessage)
	}
	return nil
}

var _ Channel = (*TwilioChannel)(nil)
