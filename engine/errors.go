/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error types in one place. Nothing here is fatal to a batch:
  a validation error rejects one booking, an analysis error marks one
  booking, and unknown course types only log and contribute zero revenue.

ERROR CATEGORIES:
  1. Validation errors - malformed input aggregate, reject the booking
  2. Analysis errors   - unexpected failure mid-computation, recovered
  3. Pricing warnings  - unknown type/flexibility combination, non-fatal

SEE ALSO:
  - analyze.go: recovers panics into AnalysisError per booking
  - pricing.go: logs unknown-course-type warnings
*/
package engine

import (
	"errors"
	"fmt"
	"log"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is wrapped by ValidationError for malformed aggregates.
	ErrValidation = errors.New("invalid booking aggregate")

	// ErrAnalysisFailed is wrapped by AnalysisError when a booking blows up
	// mid-computation. The batch continues past it.
	ErrAnalysisFailed = errors.New("booking analysis failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports a malformed booking aggregate. The booking is
// rejected; the batch is not.
type ValidationError struct {
	BookingID string
	Field     string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking %s: invalid %s: %s", e.BookingID, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AnalysisError reports an unexpected failure while analyzing one booking.
// The booking still appears in output with zeroed financials and an
// analysis_error issue.
type AnalysisError struct {
	BookingID string
	Cause     string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("booking %s: analysis failed: %s", e.BookingID, e.Cause)
}

func (e *AnalysisError) Unwrap() error { return ErrAnalysisFailed }

// IsValidation reports whether err rejects a single booking's shape.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// =============================================================================
// WARNINGS - Logged, never returned
// =============================================================================

// warnf routes non-fatal engine warnings (unknown course types, legacy
// status codes, missing price-range entries) through one chokepoint so
// they are never silently dropped.
var warnf = func(format string, args ...any) {
	log.Printf("engine: warning: "+format, args...)
}
