package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

// Sentinels let callers match an error kind with errors.Is; the typed
// errors below carry the details and match with errors.As.
var (
	ErrInvalidFlight      = errors.New("invalid flight")
	ErrValidation         = errors.New("validation failed")
	ErrSeatConflict       = errors.New("seat conflict")
	ErrPrecondition       = errors.New("precondition failed")
	ErrImmutableSession   = errors.New("session is immutable")
	ErrCancellationWindow = errors.New("cancellation window closed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotFinalized       = errors.New("session is not confirmed")
)

type InvalidFlightError struct {
	Reasons []string
}

func (e *InvalidFlightError) Error() string {
	return fmt.Sprintf("invalid flight: %s", strings.Join(e.Reasons, "; "))
}

func (e *InvalidFlightError) Unwrap() error { return ErrInvalidFlight }

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violation found in one call.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) add(field, msg string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

type SeatConflictError struct {
	SeatID         string
	HeldBy         int
	PassengerIndex int
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s is already assigned to passenger %d", e.SeatID, e.HeldBy)
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatConflict }

const (
	RequirementDraft      = "status must be draft"
	RequirementFlight     = "flight"
	RequirementPassengers = "passengers"
	RequirementContact    = "contact"
)

// PreconditionError lists all unmet requirements, not just the first.
type PreconditionError struct {
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("payment cannot be requested, missing: %s", strings.Join(e.Missing, ", "))
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

type ImmutableSessionError struct {
	Op     string
	Status domain.SessionStatus
}

func (e *ImmutableSessionError) Error() string {
	return fmt.Sprintf("%s not allowed: session is %s", e.Op, e.Status)
}

func (e *ImmutableSessionError) Unwrap() error { return ErrImmutableSession }

type CancellationWindowError struct {
	Departure time.Time
	Now       time.Time
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("flight departed at %s, cancellation no longer possible", e.Departure.Format(time.RFC3339))
}

func (e *CancellationWindowError) Unwrap() error { return ErrCancellationWindow }

type TransitionError struct {
	Op   string
	From domain.SessionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed from status %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
