package sim

import (
	"time"

	"github.com/cubicool/cubicle/internal/gen"
	"github.com/cubicool/cubicle/internal/world"
)

// Command is the sealed union of user actions that can be deferred by the
// pause gate. Commands are plain data rather than closures so queued work
// can be inspected, logged and tested independently of capture-by-reference
// pitfalls.
type Command interface {
	isCommand()

	// Kind returns the command's type name for logging.
	Kind() string
}

// SendEmailCommand starts a new thread from a user-composed email.
type SendEmailCommand struct {
	From           string
	To             []string
	Cc             []string
	Bcc            []string
	Subject        string
	Body           string
	Signature      string
	HighEngagement bool
}

func (SendEmailCommand) isCommand()   {}
func (SendEmailCommand) Kind() string { return "SendEmail" }

// ReplyEmailCommand appends a user-composed reply to an existing thread and
// lets the persona participants respond.
type ReplyEmailCommand struct {
	ThreadID  string
	From      string
	To        []string
	Cc        []string
	Bcc       []string
	Subject   string
	Body      string
	Signature string
}

func (ReplyEmailCommand) isCommand()   {}
func (ReplyEmailCommand) Kind() string { return "ReplyEmail" }

// CreateProjectCommand creates a project and generates its kickoff thread.
type CreateProjectCommand struct {
	Name                string
	Brief               string
	MemberEmails        []string
	CreatorEmail        string
	Deadline            *time.Time
	CompletionRecipient string
}

func (CreateProjectCommand) isCommand()   {}
func (CreateProjectCommand) Kind() string { return "CreateProject" }

// SendIMCommand delivers a user instant message and schedules persona
// replies.
type SendIMCommand struct {
	ConversationID string
	SenderEmail    string
	Content        string
}

func (SendIMCommand) isCommand()   {}
func (SendIMCommand) Kind() string { return "SendIM" }

// BroadcastEmailCommand sends a system email to every actor in its own new
// thread.
type BroadcastEmailCommand struct {
	Subject string
	Body    string
}

func (BroadcastEmailCommand) isCommand()   {}
func (BroadcastEmailCommand) Kind() string { return "BroadcastEmail" }

// CompleteTaskCommand resolves a claimed ad-hoc task deadline: the assignee
// announces completion to the recipient in a fresh thread.
type CompleteTaskCommand struct {
	Event world.Event
}

func (CompleteTaskCommand) isCommand()   {}
func (CompleteTaskCommand) Kind() string { return "CompleteTask" }

// FinishProjectCommand resolves a claimed project deadline: the project is
// marked Completed and a wrap-up email lands in the project thread.
type FinishProjectCommand struct {
	Event world.Event
}

func (FinishProjectCommand) isCommand()   {}
func (FinishProjectCommand) Kind() string { return "FinishProject" }

// SideActionCommand executes a generation-carried side action.
type SideActionCommand struct {
	Action gen.SideAction
}

func (SideActionCommand) isCommand()   {}
func (SideActionCommand) Kind() string { return "SideAction" }

// CreateEventCommand creates a calendar event and, for visible events,
// sends the announcement broadcast.
type CreateEventCommand struct {
	Event    world.Event
	Announce bool
}

func (CreateEventCommand) isCommand()   {}
func (CreateEventCommand) Kind() string { return "CreateEvent" }
