// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deliver converts the final report to an email and hands it to the
// mail-sending capability. The stage itself never retries; the orchestrator's
// retry policy covers the composition step and a send failure is terminal.
package deliver

import (
	"context"
	"fmt"

	"github.com/pdiddy/deep-research/internal/genai"
	"github.com/pdiddy/deep-research/pkg/types"
)

const stageName = "deliver"

const instructions = `You will receive a finalized Markdown research report. Convert it to clean,
well-formed HTML suitable for an email body and write an email subject of
8 to 12 words.

Return only a JSON object: {"subject": "...", "html_body": "..."}`

// emailContent is the wire shape expected from the generation capability.
type emailContent struct {
	Subject  string `json:"subject" validate:"required"`
	HTMLBody string `json:"html_body" validate:"required"`
}

// Mailer sends one email. Implementations return an error on transport
// failure; they do not retry.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, htmlBody string) error
}

// Send composes subject and HTML for rep and hands them to the mailer.
// Composition failures (SchemaViolation, CapabilityError) are returned as
// errors so the orchestrator's policy applies; a mailer failure is recorded
// in the outcome with status failed rather than returned, because by then
// the run has a terminal delivery record either way.
func Send(ctx context.Context, gen genai.Generator, mailer Mailer, rep *types.Report, cfg types.DeliverConfig) (types.DeliveryOutcome, error) {
	content, err := genai.Object[emailContent](ctx, gen, stageName, instructions, rep.MarkdownBody)
	if err != nil {
		return types.DeliveryOutcome{}, err
	}

	if err := mailer.Send(ctx, cfg.FromAddress, cfg.ToAddress, content.Subject, content.HTMLBody); err != nil {
		return types.DeliveryOutcome{
			Subject:     content.Subject,
			Status:      types.DeliveryFailed,
			ErrorDetail: fmt.Sprintf("sending to %s: %v", cfg.ToAddress, err),
		}, nil
	}

	return types.DeliveryOutcome{
		Subject: content.Subject,
		Status:  types.DeliverySuccess,
	}, nil
}
