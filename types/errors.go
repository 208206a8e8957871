package types

import (
	"errors"
	"fmt"
	"strings"
)

// Classification sentinels. Every typed error below matches exactly one of
// them through errors.Is.
var (
	ErrValidation        = errors.New("lodging: validation failed")
	ErrIllegalTransition = errors.New("lodging: illegal transition")
	ErrResourceInUse     = errors.New("lodging: resource in use")
)

// ValidationError reports a missing or invalid field. The operation that
// returned it has not changed any state.
type ValidationError struct {
	Field   string
	Message string
}

// Invalid builds a ValidationError.
func Invalid(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("lodging: validation failed for %s: %s", e.Field, e.Message)
}

// Is matches ErrValidation.
func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// TransitionError reports an action that is not legal from the unit's
// current status, e.g. checking in to an occupied room.
type TransitionError struct {
	Action string
	From   string
	To     string
}

func (e TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("lodging: cannot %s while %s", e.Action, e.From)
	}
	return fmt.Sprintf("lodging: cannot %s: %s -> %s is not allowed", e.Action, e.From, e.To)
}

// Is matches ErrIllegalTransition.
func (e TransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// InUseError reports a deletion refused because units in scope still hold
// an occupancy or tenancy.
type InUseError struct {
	Scope   string   // "unit", "floor" or "building"
	ScopeID string   // id of the scope being deleted
	UnitIDs []string // occupied units blocking the deletion
}

func (e InUseError) Error() string {
	return fmt.Sprintf("lodging: %s %s is in use by %d occupied unit(s): %s",
		e.Scope, e.ScopeID, len(e.UnitIDs), strings.Join(e.UnitIDs, ", "))
}

// Is matches ErrResourceInUse.
func (e InUseError) Is(target error) bool { return target == ErrResourceInUse }
