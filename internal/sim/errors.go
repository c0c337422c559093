package sim

import (
	"errors"
)

var (
	// ErrUnknownRequestType is returned when an actor receives a request
	// type it does not handle.
	ErrUnknownRequestType = errors.New("unknown request type")

	// ErrNoResult marks a generation that produced nothing. Autonomous
	// paths treat it as a silent no-op.
	ErrNoResult = errors.New("generation produced no result")

	// ErrNotEnoughPersonas is returned when a trigger needs more
	// personas than the directory holds.
	ErrNotEnoughPersonas = errors.New("not enough personas")
)
