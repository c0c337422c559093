package world

import (
	"errors"
)

var (
	// ErrDuplicateEmail is returned when an actor is created with an email
	// address already held by another user or coworker.
	ErrDuplicateEmail = errors.New("email address already in use")

	// ErrDuplicateUsername is returned when a user is created with a
	// username already taken.
	ErrDuplicateUsername = errors.New("username already in use")

	// ErrMissingField is returned when a required field is empty.
	ErrMissingField = errors.New("required field is empty")

	// ErrUserNotFound is returned when no user has the given email.
	ErrUserNotFound = errors.New("user not found")

	// ErrCoworkerNotFound is returned when no coworker has the given
	// email.
	ErrCoworkerNotFound = errors.New("coworker not found")

	// ErrThreadNotFound is returned when a thread ID does not resolve.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrNotParticipant is returned when a viewer tries to change the
	// status of a thread they are not part of.
	ErrNotParticipant = errors.New("viewer is not a thread participant")

	// ErrProjectNotFound is returned when a project ID does not resolve.
	ErrProjectNotFound = errors.New("project not found")

	// ErrEventNotFound is returned when an event ID does not resolve.
	ErrEventNotFound = errors.New("event not found")

	// ErrConversationNotFound is returned when a conversation ID does not
	// resolve.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrPostNotFound is returned when a social post ID does not resolve.
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidSnapshot is returned when an imported snapshot is missing
	// one of the required collections.
	ErrInvalidSnapshot = errors.New("snapshot missing required collection")
)
