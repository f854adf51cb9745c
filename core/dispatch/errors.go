package dispatch

import "errors"

var (
	// ErrNoSelection is returned when an operation needs a selected date.
	ErrNoSelection = errors.New("no date or event selected")
	// ErrUnknownSelection is returned by Select for ids or dates without events.
	ErrUnknownSelection = errors.New("selection matches no events")
	// ErrInvalidState is returned when an operation is not allowed in the
	// current session state.
	ErrInvalidState = errors.New("operation not allowed in current state")
)
