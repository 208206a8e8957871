package lodging

import (
	"errors"
	"fmt"

	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("lodging: not found")
	ErrAlreadyExists = errors.New("lodging: already exists")

	// Property errors
	ErrBuildingNotFound = errors.New("lodging: building not found")
	ErrFloorNotFound    = errors.New("lodging: floor not found")
	ErrUnitNotFound     = errors.New("lodging: unit not found")

	// Stay errors
	ErrNoOccupancy = errors.New("lodging: unit has no occupancy")
	ErrNoTenancy   = errors.New("lodging: unit has no tenancy")
	ErrWrongMode   = errors.New("lodging: operation not available in unit mode")

	// Payment errors
	ErrPaymentNotFound = errors.New("lodging: payment not found")

	// Store errors
	ErrStoreNotReady   = errors.New("lodging: store not ready")
	ErrStoreClosed     = errors.New("lodging: store is closed")
	ErrMigrationFailed = errors.New("lodging: migration failed")

	// Engine errors
	ErrAlreadyStarted = errors.New("lodging: engine already started")
	ErrNotStarted     = errors.New("lodging: engine not started")
)

// Classification sentinels shared with the domain packages.
var (
	ErrValidation        = types.ErrValidation
	ErrIllegalTransition = types.ErrIllegalTransition
	ErrResourceInUse     = types.ErrResourceInUse
	ErrLineNotFound      = folio.ErrLineNotFound
)

// ValidationError reports a missing or invalid field.
type ValidationError = types.ValidationError

// TransitionError reports an action not allowed from the unit's status.
type TransitionError = types.TransitionError

// InUseError reports a refused deletion and the occupied units blocking it.
type InUseError = types.InUseError

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "lodging: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("lodging: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBuildingNotFound) ||
		errors.Is(err, ErrFloorNotFound) ||
		errors.Is(err, ErrUnitNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrLineNotFound)
}

// IsValidation returns true if the error is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict returns true if the error was caused by the unit's current
// state rather than by bad input.
func IsConflict(err error) bool {
	return errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrResourceInUse) ||
		errors.Is(err, ErrNoOccupancy) ||
		errors.Is(err, ErrNoTenancy) ||
		errors.Is(err, ErrWrongMode) ||
		errors.Is(err, ErrAlreadyExists)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady)
}
