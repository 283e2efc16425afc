package types

import (
	"fmt"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants.
// All packages MUST use these constants instead of hardcoded strings.
const (
	// Configuration (fatal at startup)
	ErrCodeConfigCatalog     ErrorCode = "config_invalid_catalog"
	ErrCodeConfigSchema      ErrorCode = "config_schema_violation"
	ErrCodeConfigDuplicateID ErrorCode = "config_duplicate_rule_id"
	ErrCodeConfigRule        ErrorCode = "config_invalid_rule"
	ErrCodeConfigScoring     ErrorCode = "config_invalid_scoring"
	ErrCodeConfigSeason      ErrorCode = "config_invalid_season"
	ErrCodeConfigLocations   ErrorCode = "config_invalid_locations"
	ErrCodeConfigSnapshot    ErrorCode = "config_invalid_snapshot_source"

	// Upstream (degrade data quality, never abort scoring)
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamBadPayload  ErrorCode = "upstream_invalid_payload"

	// Invariant violations (programming errors)
	ErrCodeInvariantScore      ErrorCode = "invariant_score_out_of_bounds"
	ErrCodeInvariantConfidence ErrorCode = "invariant_confidence_below_floor"
	ErrCodeInvariantNoGo       ErrorCode = "invariant_nogo_outside_safety_category"

	// Internal
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
	ErrCodePublishFailed      ErrorCode = "internal_publish_failed"
)

// ErrorClass is the coarse family an ErrorCode belongs to.
type ErrorClass string

const (
	ClassConfig    ErrorClass = "config"
	ClassUpstream  ErrorClass = "upstream"
	ClassInvariant ErrorClass = "invariant"
	ClassInternal  ErrorClass = "internal"
)

// Class maps an ErrorCode to its family by prefix.
// Returns ClassInternal for unrecognized codes as a safe default.
func (c ErrorCode) Class() ErrorClass {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "config_"):
		return ClassConfig
	case strings.HasPrefix(s, "upstream_"):
		return ClassUpstream
	case strings.HasPrefix(s, "invariant_"):
		return ClassInvariant
	default:
		return ClassInternal
	}
}

// AppError is the standard application error type used throughout the engine.
// Configuration, upstream and invariant failures are all expressed as AppError
// so callers can branch on Code.Class() and keep the error chain intact.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
