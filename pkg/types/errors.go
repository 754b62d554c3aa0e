// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// SchemaViolation reports that a generation capability's output failed its
// declared schema: wrong count, malformed field, or a duplicate where
// uniqueness is required. The orchestrator retries the stage once with
// identical input before failing the run.
type SchemaViolation struct {
	// Stage names the pipeline stage whose output was invalid.
	Stage string

	// Detail describes the violation.
	Detail string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("%s: schema violation: %s", e.Stage, e.Detail)
}

// IsSchemaViolation reports whether err wraps a SchemaViolation.
func IsSchemaViolation(err error) bool {
	var sv *SchemaViolation
	return errors.As(err, &sv)
}

// CapabilityError reports that an external capability (generation, search,
// mail) was unreachable or returned a transport-level error. It surfaces
// immediately as a failed stage; the orchestrator does not retry it.
type CapabilityError struct {
	// Capability names the boundary that failed: generation, search, mail.
	Capability string

	// Err is the underlying error.
	Err error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s capability: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// IsCapabilityError reports whether err wraps a CapabilityError.
func IsCapabilityError(err error) bool {
	var ce *CapabilityError
	return errors.As(err, &ce)
}

// ConfigError reports a missing or invalid credential or setting. It is
// fatal at startup; a run never begins under a ConfigError.
type ConfigError struct {
	// Setting names the missing or invalid setting.
	Setting string

	// Detail describes the problem.
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Setting, e.Detail)
}
