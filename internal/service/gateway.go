package service

import (
	"context"
	"errors"
	"fmt"
)

// FailureReason classifies why an image generation attempt failed.
// The vision store only cares about success vs failure; the API layer maps
// reasons onto user-facing responses.
type FailureReason string

const (
	ReasonInvalidCredentials FailureReason = "invalid_credentials"
	ReasonQuotaExhausted     FailureReason = "quota_exhausted"
	ReasonRateLimited        FailureReason = "rate_limited"
	ReasonContentPolicy      FailureReason = "content_policy"
	ReasonTimeout            FailureReason = "timeout"
	ReasonUnknown            FailureReason = "unknown"
)

// GenerationError is the failure outcome of a Gateway call.
type GenerationError struct {
	Reason  FailureReason
	Message string
	Err     error
}

// Error implements the error interface.
// Parameters: none.
// Returns:
//   - string: reason-tagged message.
func (e *GenerationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("generation failed (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("generation failed (%s)", e.Reason)
}

// Unwrap returns the wrapped cause, if any.
// Parameters: none.
// Returns:
//   - error: underlying error or nil.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason from an error chain.
// Parameters:
//   - err: error returned by a Gateway call.
// Returns:
//   - FailureReason: classified reason, or ReasonUnknown for foreign errors.
func ReasonOf(err error) FailureReason {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return ReasonUnknown
}

// GenerationGateway produces a generated-image reference for a vision.
// Calls may take arbitrarily long and may fail for provider-specific reasons;
// callers must reconcile results by vision identity, never by call order.
type GenerationGateway interface {
	// Generate returns an image reference usable directly as a displayable
	// image source, or a *GenerationError describing the failure.
	Generate(ctx context.Context, address, prompt string) (string, error)
}
