// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"context"
	"fmt"
	"net/http"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/pdiddy/deep-research/pkg/types"
)

// SendGrid is a Mailer backed by the SendGrid v3 API.
type SendGrid struct {
	client *sendgrid.Client
}

// NewSendGrid builds a SendGrid mailer. A missing API key is a ConfigError.
func NewSendGrid(cfg types.DeliverConfig) (*SendGrid, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, &types.ConfigError{Setting: "deliver.sendgrid_api_key", Detail: "SendGrid API key is required"}
	}
	if cfg.FromAddress == "" {
		return nil, &types.ConfigError{Setting: "deliver.from_address", Detail: "sender address is required"}
	}
	return &SendGrid{client: sendgrid.NewSendClient(cfg.SendGridAPIKey)}, nil
}

// Send delivers one HTML email. Any non-2xx response from SendGrid is a
// CapabilityError.
func (s *SendGrid) Send(ctx context.Context, from, to, subject, htmlBody string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("", from),
		subject,
		mail.NewEmail("", to),
		"",
		htmlBody,
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return &types.CapabilityError{Capability: "mail", Err: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &types.CapabilityError{
			Capability: "mail",
			Err:        fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, resp.Body),
		}
	}
	return nil
}
