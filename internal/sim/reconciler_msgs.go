package sim

import (
	"github.com/cubicool/cubicle/internal/baselib/actor"
	"github.com/cubicool/cubicle/internal/world"
)

// ReconcileRequest is the union type for all reconciler requests.
type ReconcileRequest interface {
	actor.Message
	isReconcileRequest()
}

// ReconcileResponse is the union type for all reconciler responses.
type ReconcileResponse interface {
	isReconcileResponse()
}

// Ensure all request types implement ReconcileRequest.
func (ApplyEmailMsg) isReconcileRequest()      {}
func (ClaimDeadlineMsg) isReconcileRequest()   {}
func (CompleteProjectMsg) isReconcileRequest() {}
func (ApplyIMMsg) isReconcileRequest()         {}
func (RemoveIMMsg) isReconcileRequest()        {}
func (ApplyPostMsg) isReconcileRequest()       {}
func (ApplyCommentMsg) isReconcileRequest()    {}

// Ensure all response types implement ReconcileResponse.
func (ApplyEmailResponse) isReconcileResponse()      {}
func (ClaimDeadlineResponse) isReconcileResponse()   {}
func (CompleteProjectResponse) isReconcileResponse() {}
func (ApplyIMResponse) isReconcileResponse()         {}
func (RemoveIMResponse) isReconcileResponse()        {}
func (ApplyPostResponse) isReconcileResponse()       {}
func (ApplyCommentResponse) isReconcileResponse()    {}

// ApplyEmailMsg folds a generated or user-composed email into the store:
// appended to ThreadID when set, otherwise committed as a new thread. An
// optional image prompt is resolved before the email is finalized.
type ApplyEmailMsg struct {
	actor.BaseMessage

	// ThreadID is the target thread. Empty creates a new thread.
	ThreadID string

	// Email holds the addressing and content. ID and Timestamp are
	// assigned by the store.
	Email world.Email

	// ImagePrompt, when non-empty, is resolved to an image attachment
	// before commit. Resolution failure degrades to a text-only email.
	ImagePrompt string

	// HighEngagement marks a newly created thread as an involved
	// discussion.
	HighEngagement bool
}

// MessageType implements actor.Message.
func (ApplyEmailMsg) MessageType() string { return "ApplyEmailMsg" }

// ApplyEmailResponse is the response to ApplyEmailMsg.
type ApplyEmailResponse struct {
	// Thread is the post-commit thread state.
	Thread world.Thread

	// Created reports whether a new thread was created.
	Created bool
}

// ClaimDeadlineMsg atomically claims a due system event. Exactly one claim
// per event succeeds, which is what makes deadline firing at-most-once.
type ClaimDeadlineMsg struct {
	actor.BaseMessage

	EventID string
}

// MessageType implements actor.Message.
func (ClaimDeadlineMsg) MessageType() string { return "ClaimDeadlineMsg" }

// ClaimDeadlineResponse is the response to ClaimDeadlineMsg.
type ClaimDeadlineResponse struct {
	Event   world.Event
	Claimed bool
}

// CompleteProjectMsg flips a project to Completed as part of project
// deadline resolution.
type CompleteProjectMsg struct {
	actor.BaseMessage

	ProjectID string
}

// MessageType implements actor.Message.
func (CompleteProjectMsg) MessageType() string { return "CompleteProjectMsg" }

// CompleteProjectResponse is the response to CompleteProjectMsg.
type CompleteProjectResponse struct {
	Found bool
}

// ApplyIMMsg appends an instant message, including transient typing
// placeholders.
type ApplyIMMsg struct {
	actor.BaseMessage

	ConversationID string
	SenderEmail    string
	Content        string
	IsTyping       bool
}

// MessageType implements actor.Message.
func (ApplyIMMsg) MessageType() string { return "ApplyIMMsg" }

// ApplyIMResponse is the response to ApplyIMMsg.
type ApplyIMResponse struct {
	Message world.IMMessage
}

// RemoveIMMsg deletes a transient typing placeholder.
type RemoveIMMsg struct {
	actor.BaseMessage

	ConversationID string
	MessageID      string
}

// MessageType implements actor.Message.
func (RemoveIMMsg) MessageType() string { return "RemoveIMMsg" }

// RemoveIMResponse is the response to RemoveIMMsg.
type RemoveIMResponse struct{}

// ApplyPostMsg publishes a social post.
type ApplyPostMsg struct {
	actor.BaseMessage

	AuthorEmail    string
	Content        string
	HighEngagement bool
}

// MessageType implements actor.Message.
func (ApplyPostMsg) MessageType() string { return "ApplyPostMsg" }

// ApplyPostResponse is the response to ApplyPostMsg.
type ApplyPostResponse struct {
	Post world.SocialPost
}

// ApplyCommentMsg appends a comment to a social post.
type ApplyCommentMsg struct {
	actor.BaseMessage

	PostID      string
	AuthorEmail string
	Content     string
}

// MessageType implements actor.Message.
func (ApplyCommentMsg) MessageType() string { return "ApplyCommentMsg" }

// ApplyCommentResponse is the response to ApplyCommentMsg.
type ApplyCommentResponse struct {
	Comment world.SocialComment
}
