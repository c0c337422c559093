package world

import (
	"time"
)

// ThreadStatus is the per-viewer visibility state of a thread. A status is
// always scoped to one participant; there is no global thread status.
type ThreadStatus string

const (
	ThreadActive   ThreadStatus = "ACTIVE"
	ThreadArchived ThreadStatus = "ARCHIVED"
	ThreadDeleted  ThreadStatus = "DELETED"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "Active"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectOnHold    ProjectStatus = "On Hold"
)

// Relationship describes how one actor feels about another.
type Relationship string

const (
	RelFriendly Relationship = "friendly"
	RelNeutral  Relationship = "neutral"
	RelRival    Relationship = "rival"
)

// User is a human-controlled actor. The email address is the identity key
// used everywhere else in the store.
type User struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Username      string                  `json:"username"`
	Email         string                  `json:"email"`
	Password      string                  `json:"password,omitempty"`
	Signature     string                  `json:"signature"`
	IsAdmin       bool                    `json:"isAdmin,omitempty"`
	Company       string                  `json:"company"`
	Domain        string                  `json:"domain"`
	Age           int                     `json:"age"`
	Birthday      string                  `json:"birthday,omitempty"`
	Role          string                  `json:"role"`
	Department    string                  `json:"department"`
	ReportsTo     string                  `json:"reportsTo,omitempty"`
	Family        map[string]string       `json:"family,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Coworker is a simulated persona. Its messages are produced by the
// generation gateway rather than a human.
type Coworker struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Email         string                  `json:"email"`
	Company       string                  `json:"company"`
	Domain        string                  `json:"domain"`
	Personality   string                  `json:"personality"`
	Age           int                     `json:"age"`
	Birthday      string                  `json:"birthday,omitempty"`
	Signature     string                  `json:"signature"`
	Role          string                  `json:"role"`
	Department    string                  `json:"department"`
	ReportsTo     string                  `json:"reportsTo,omitempty"`
	IsAdmin       bool                    `json:"isAdmin,omitempty"`
	Family        map[string]string       `json:"family,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Attachment is an opaque encoded payload carried by an email. Only image
// attachments exist today.
type Attachment struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Email is a single immutable message inside a thread. Timestamp is
// simulation time, not wall clock.
type Email struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Cc          []string     `json:"cc,omitempty"`
	Bcc         []string     `json:"bcc,omitempty"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Signature   string       `json:"signature,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Thread is an ordered email sequence plus a participant set. Statuses are
// keyed by participant email and scope visibility to that viewer only.
type Thread struct {
	ID             string                  `json:"id"`
	Emails         []Email                 `json:"emails"`
	Participants   []string                `json:"participants"`
	Statuses       map[string]ThreadStatus `json:"userStatuses"`
	HighEngagement bool                    `json:"highEngagement,omitempty"`
}

// LastEmail returns the most recent email in the thread, or false if the
// thread is empty.
func (t *Thread) LastEmail() (Email, bool) {
	if len(t.Emails) == 0 {
		return Email{}, false
	}

	return t.Emails[len(t.Emails)-1], true
}

// Project groups a set of members around a brief. The optional deadline is
// mirrored by a hidden system event that drives autonomous completion.
type Project struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Brief               string        `json:"brief"`
	MemberEmails        []string      `json:"memberEmails"`
	Status              ProjectStatus `json:"status"`
	ThreadID            string        `json:"threadId,omitempty"`
	Deadline            *time.Time    `json:"deadline,omitempty"`
	CompletionRecipient string        `json:"completionRecipientEmail,omitempty"`
}

// TaskDetails is the payload of an ad-hoc task deadline event.
type TaskDetails struct {
	Description         string `json:"description"`
	AssigneeEmail       string `json:"assigneeEmail"`
	CompletionRecipient string `json:"completionRecipientEmail"`
}

// Event is a calendar entry. System events are hidden from normal views and
// exist only to fire a one-time deadline action, after which they are
// removed.
type Event struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	AllDay       bool         `json:"allDay"`
	ReminderSent bool         `json:"reminderSent,omitempty"`
	IsSystem     bool         `json:"isSystem,omitempty"`
	ProjectID    string       `json:"projectId,omitempty"`
	TaskDetails  *TaskDetails `json:"taskDetails,omitempty"`
}

// IMMessage is one message in an instant-message conversation. Typing
// placeholders are transient rows removed once the real reply lands.
type IMMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderEmail    string    `json:"senderEmail"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	IsTyping       bool      `json:"isTyping,omitempty"`
}

// IMConversation is identified by its exact participant set. Two requests
// for the same set always resolve to the same conversation.
type IMConversation struct {
	ID                string   `json:"id"`
	ParticipantEmails []string `json:"participantEmails"`
	GroupName         string   `json:"groupName,omitempty"`
	HighEngagement    bool     `json:"highEngagement,omitempty"`
}

// SocialComment is a reply on a social post.
type SocialComment struct {
	ID          string    `json:"id"`
	PostID      string    `json:"postId"`
	AuthorEmail string    `json:"authorEmail"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

// SocialPost is an entry on the company feed. Likes hold unique emails.
type SocialPost struct {
	ID             string          `json:"id"`
	AuthorEmail    string          `json:"authorEmail"`
	Content        string          `json:"content"`
	Timestamp      time.Time       `json:"timestamp"`
	Likes          []string        `json:"likes"`
	Comments       []SocialComment `json:"comments"`
	HighEngagement bool            `json:"highEngagement,omitempty"`
}

// CompanyProfile is the shared company identity shown across the simulation
// and used when posting as the company itself.
type CompanyProfile struct {
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Tagline string   `json:"tagline"`
	Rules   []string `json:"rules"`
}

// Role is a directory role an actor can hold.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is a full-state export of the store. Import requires at minimum
// the Users, Threads, and Coworkers collections to be present.
type Snapshot struct {
	Users         []User           `json:"users"`
	Threads       []Thread         `json:"threads"`
	Coworkers     []Coworker       `json:"globalCoworkers"`
	Projects      []Project        `json:"projects"`
	Events        []Event          `json:"events"`
	Conversations []IMConversation `json:"imConversations"`
	IMMessages    []IMMessage      `json:"imMessages"`
	Posts         []SocialPost     `json:"socialPosts"`
	Profile       CompanyProfile   `json:"companyProfile"`
	Roles         []Role           `json:"roles"`
	Muted         bool             `json:"isMuted"`
	CurrentTime   time.Time        `json:"currentTime"`
}
