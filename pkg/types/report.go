// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Report is the synthesized long-form output of one run. It is written once
// by the report stage and replaced wholesale, never edited in place, when the
// evaluator produces a revision.
type Report struct {
	// ShortSummary is a two-to-three sentence summary of the findings.
	ShortSummary string `json:"short_summary" yaml:"short_summary" validate:"required"`

	// MarkdownBody is the full report in Markdown.
	MarkdownBody string `json:"markdown_body" yaml:"markdown_body" validate:"required"`

	// FollowUpQuestions suggests topics the user may want to explore next.
	FollowUpQuestions []string `json:"follow_up_questions,omitempty" yaml:"follow_up_questions,omitempty"`
}

// Evaluation scores a Report. Passed is derived from Score and the configured
// threshold, not taken from the generation capability.
type Evaluation struct {
	// Passed reports whether Score reached the pass threshold.
	Passed bool `json:"passed" yaml:"passed"`

	// Score is an integer grade between 0 and 5.
	Score int `json:"score" yaml:"score"`

	// Issues lists problems found in the report, if any.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`

	// RevisedReport, when present, supersedes the original report for
	// delivery. It must not introduce facts absent from the original.
	RevisedReport *Report `json:"revised_report,omitempty" yaml:"revised_report,omitempty"`
}

// Final returns the report that should be delivered: the revision when one
// exists, otherwise the original.
func (e *Evaluation) Final(original *Report) *Report {
	if e != nil && e.RevisedReport != nil {
		return e.RevisedReport
	}
	return original
}

// DeliveryStatus is the terminal outcome of the email handoff.
type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryOutcome records the result of handing the final report to the
// mail-sending capability.
type DeliveryOutcome struct {
	// Subject is the generated email subject line.
	Subject string `json:"subject" yaml:"subject"`

	// Status is success or failed.
	Status DeliveryStatus `json:"status" yaml:"status"`

	// ErrorDetail describes the failure when Status is failed.
	ErrorDetail string `json:"error_detail,omitempty" yaml:"error_detail,omitempty"`
}
