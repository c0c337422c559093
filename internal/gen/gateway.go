package gen

import (
	"context"
	"time"

	"github.com/cubicool/cubicle/internal/world"
)

// Participant is the slice of an actor's identity that generation prompts
// need. Personality is empty for human users.
type Participant struct {
	Name        string
	Email       string
	Role        string
	Department  string
	Personality string
}

// EmailRequest asks for a new email in an ongoing or fresh conversation.
type EmailRequest struct {
	// Sender is the persona writing the email.
	Sender Participant

	// Recipients are the primary addressees.
	Recipients []Participant

	// Cc holds optional carbon-copy addressees.
	Cc []Participant

	// History is the prior conversation, oldest first. Empty for a fresh
	// thread.
	History []world.Email

	// Instructions is trigger-specific guidance, e.g. "ask for a status
	// update on project X".
	Instructions string

	// HighEngagement requests a longer, more involved message.
	HighEngagement bool

	// AllowAction permits the model to attach a side action.
	AllowAction bool

	// AllowImage permits the model to request a generated image
	// attachment.
	AllowImage bool
}

// EmailResult is the structured outcome of an email generation.
type EmailResult struct {
	Subject     string
	Body        string
	Signature   string
	Action      SideAction
	ImagePrompt string
}

// IMRequest asks for an instant-message reply from a persona.
type IMRequest struct {
	Sender       Participant
	Participants []Participant
	History      []world.IMMessage
	Instructions string
}

// IMResult is the structured outcome of an IM generation.
type IMResult struct {
	Text   string
	Action SideAction
}

// TextRequest asks for a small piece of plain content, e.g. a social post
// or comment.
type TextRequest struct {
	Author       Participant
	Instructions string
	Context      string
}

// CoworkerProposal is a generated persona candidate.
type CoworkerProposal struct {
	Name        string
	Email       string
	Personality string
	Age         int
	Signature   string
	Role        string
	Department  string
	ReportsTo   string
}

// ProjectProposal is a generated project candidate.
type ProjectProposal struct {
	Name         string
	Brief        string
	MemberEmails []string
}

// EventProposal is a generated calendar event candidate.
type EventProposal struct {
	Title       string
	Description string
	AllDay      bool
}

// SideAction is a sealed union of follow-on actions a generation result may
// carry. The reconciler executes these after the primary content commits.
type SideAction interface {
	isSideAction()
}

// SendEmailAction instructs the engine to send an additional email in a new
// thread from the system notification address.
type SendEmailAction struct {
	To      []string
	Cc      []string
	Subject string
	Body    string
}

func (SendEmailAction) isSideAction() {}

// CreateEventAction instructs the engine to create a calendar event,
// possibly a hidden deadline event.
type CreateEventAction struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	IsSystem    bool
	ProjectID   string
	TaskDetails *world.TaskDetails
}

func (CreateEventAction) isSideAction() {}

// Gateway is the external generation collaborator. Every method either
// returns structured content or an error; callers treat errors uniformly as
// "no result" and never let them escape the simulation loop.
type Gateway interface {
	// GenerateEmail produces an email, optionally with a side action and
	// image prompt.
	GenerateEmail(ctx context.Context,
		req EmailRequest) (*EmailResult, error)

	// GenerateIMReply produces an instant-message reply.
	GenerateIMReply(ctx context.Context, req IMRequest) (*IMResult, error)

	// GenerateText produces a short plain-text piece of content.
	GenerateText(ctx context.Context, req TextRequest) (string, error)

	// GenerateCoworker proposes a new persona for the directory.
	GenerateCoworker(ctx context.Context,
		existing []Participant) (*CoworkerProposal, error)

	// GenerateProject proposes a new project over the given candidate
	// members.
	GenerateProject(ctx context.Context,
		candidates []Participant) (*ProjectProposal, error)

	// GenerateEvent proposes a new calendar event.
	GenerateEvent(ctx context.Context,
		theme string) (*EventProposal, error)

	// GenerateImage resolves a text prompt into an opaque encoded image
	// payload.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
