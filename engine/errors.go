/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All failure kinds in one place. Callers match with errors.Is and use
  the classifier helpers to decide HTTP status / retry behavior.

ERROR CATEGORIES:
  1. Input errors       - caller bugs, never retried (InvalidOffset, InvalidDate)
  2. Eligibility errors - hard write failures; fix input and resubmit
  3. Conflict errors    - uniqueness violations; never retry identical args
  4. State errors       - illegal assignment status transition
  5. Not-found errors   - referenced record does not exist

Coverage findings (NoCrewsConfigured, DuplicateOffset, ...) are NOT
errors: they are advisory report entries and never block anything.
See coverage.go.

USAGE:
  if errors.Is(err, engine.ErrDuplicateEmployeeAssignment) { ... }
  if engine.IsConflict(err) { w.WriteHeader(http.StatusConflict) }

SEE ALSO:
  - guard.go: produces eligibility/conflict/state errors
  - cycle.go: produces ErrInvalidOffset
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidOffset is returned when a crew's cycle offset is outside [0, 6).
	ErrInvalidOffset = errors.New("cycle offset must be an integer in [0, 6)")

	// ErrInvalidDate is returned for malformed date input.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidShift is returned for a shift value other than day/night.
	ErrInvalidShift = errors.New("invalid shift")

	// ErrInvalidScope is returned for an override scope other than day/night/both.
	ErrInvalidScope = errors.New("invalid shift scope")

	// ErrInvalidRole is returned for an unknown role tag.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInactiveEmployee is returned when the employee's active flag is false.
	ErrInactiveEmployee = errors.New("employee is inactive")

	// ErrMachineUnavailable is returned when the machine is not in an
	// assignable state (maintenance or retired).
	ErrMachineUnavailable = errors.New("machine is not available for assignment")

	// ErrNotSupervisor is returned when a supervisor assignment targets an
	// employee whose effective role on that date/shift is not supervisor.
	ErrNotSupervisor = errors.New("employee is not a supervisor")

	// ErrDuplicateEmployeeAssignment: the (employee, date, shift) slot is taken.
	ErrDuplicateEmployeeAssignment = errors.New("employee already assigned for this date and shift")

	// ErrDuplicateMachineAssignment: the (machine, date, shift) slot is taken
	// under the strict one-assignment-per-slot configuration.
	ErrDuplicateMachineAssignment = errors.New("machine already has an assignment for this date and shift")

	// ErrDuplicateOverride: an override row already exists for
	// (employee, date, scope).
	ErrDuplicateOverride = errors.New("role override already exists for this date and scope")

	// ErrDuplicateSupervisorAssignment: the (supervisor, date, shift) row exists.
	ErrDuplicateSupervisorAssignment = errors.New("supervisor already assigned for this date and shift")

	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid assignment status transition")

	// Not-found errors.
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrMachineNotFound    = errors.New("machine not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OffsetError reports the offending offset value.
type OffsetError struct {
	Offset int
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("cycle offset %d out of range [0, 6)", e.Offset)
}

func (e *OffsetError) Unwrap() error { return ErrInvalidOffset }

// TransitionError reports an illegal state-machine move.
type TransitionError struct {
	AssignmentID AssignmentID
	From         AssignmentStatus
	To           AssignmentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("assignment %s: cannot transition %s -> %s", e.AssignmentID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ConflictError reports which uniqueness key was violated and by what.
type ConflictError struct {
	Key      string // e.g. "employee/2025-07-30/day"
	Existing string // id of the row holding the slot, if known
	Kind     error  // one of the Duplicate* sentinels
}

func (e *ConflictError) Error() string {
	if e.Existing != "" {
		return fmt.Sprintf("%v: %s (held by %s)", e.Kind, e.Key, e.Existing)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Key)
}

func (e *ConflictError) Unwrap() error { return e.Kind }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConflict reports a uniqueness violation. Safe to retry with
// different parameters, never with identical ones.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmployeeAssignment) ||
		errors.Is(err, ErrDuplicateMachineAssignment) ||
		errors.Is(err, ErrDuplicateOverride) ||
		errors.Is(err, ErrDuplicateSupervisorAssignment)
}

// IsClientError reports an error caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidOffset) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidShift) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInactiveEmployee) ||
		errors.Is(err, ErrMachineUnavailable) ||
		errors.Is(err, ErrNotSupervisor)
}

// IsNotFound reports a missing referenced record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrMachineNotFound) ||
		errors.Is(err, ErrAssignmentNotFound)
}
