package allocation

import "errors"

// Error kinds reported by the allocation service. Callers match them with errors.Is;
// the wrapped message names the offending selection, application or residence.
var (
	// ErrResolution means a selection was malformed or matched no residence.
	ErrResolution = errors.New("selection could not be resolved")

	// ErrValidation means the batch would exceed the on-campus cap.
	ErrValidation = errors.New("selection rejected")

	// ErrConflict means the student already has an application for a selected residence.
	ErrConflict = errors.New("duplicate application for the same residence")

	// ErrNotFound means an application, residence or student id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor does not own the application.
	ErrForbidden = errors.New("forbidden")

	// ErrWrongState means the application's status does not permit the transition.
	ErrWrongState = errors.New("application is not in a state that permits this action")

	// ErrStoreUnavailable means the store could not be reached or failed mid-operation.
	// The outcome of a write that failed this way is unknown.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidInput means a request argument was malformed (unknown decision, empty name).
	ErrInvalidInput = errors.New("invalid input")
)
