package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cubicool/cubicle/internal/actorutil"
	"github.com/cubicool/cubicle/internal/baselib/actor"
	"github.com/cubicool/cubicle/internal/gen"
	"github.com/cubicool/cubicle/internal/world"
)

// Engine is the top-level simulation driver. It owns the background
// schedule, the pause gate and the actor wiring, and exposes the user-facing
// operations the CLI and API surface call into.
//
// Writes flow one way: operations and triggers build Commands or reconciler
// messages, the gate decides whether a Command runs now or after resume, and
// the reconciler actor serializes every store mutation that generation
// produces.
type Engine struct {
	cfg     Config
	store   *world.Store
	gateway gen.Gateway

	sched *Scheduler
	gate  *Gate

	reconciler actor.ActorRef[ReconcileRequest, ReconcileResponse]
	notifier   actor.ActorRef[NotifyRequest, NotifyResponse]

	mu          sync.Mutex
	currentUser string
	visible     bool
}

// NewEngine wires the engine into the given actor system: it registers the
// reconciler and notifier actors and arms the four background loops. Start
// must be called before any autonomous activity happens.
func NewEngine(cfg Config, store *world.Store, gateway gen.Gateway,
	system *actor.ActorSystem, seed int64) *Engine {

	e := &Engine{
		cfg:     cfg,
		store:   store,
		gateway: gateway,
		sched:   NewScheduler(seed),
		visible: true,
	}

	e.gate = NewGate(e.execute, cfg.ResumeStagger)

	e.reconciler = actor.RegisterWithSystem(
		system, "reconciler", ReconcilerKey,
		NewReconciler(store, gateway),
	)
	e.notifier = actor.RegisterWithSystem(
		system, "notifier", NotifierKey, NewNotifier(),
	)

	e.sched.AddLoop(
		"spontaneous-email", cfg.SpontaneousEmailMin,
		cfg.SpontaneousEmailJitter, e.spontaneousEmail,
	)
	e.sched.AddLoop(
		"project-query", cfg.ProjectQueryMin, cfg.ProjectQueryJitter,
		e.projectQuery,
	)
	e.sched.AddLoop(
		"project-work", cfg.ProjectWorkMin, cfg.ProjectWorkJitter,
		e.projectWork,
	)
	e.sched.AddLoop(
		"social", cfg.SocialMin, cfg.SocialJitter, e.socialActivity,
	)

	return e
}

// Store exposes the world state for read paths.
func (e *Engine) Store() *world.Store {
	return e.store
}

// Notifier returns the notification hub ref so surfaces can subscribe.
func (e *Engine) Notifier() actor.ActorRef[NotifyRequest, NotifyResponse] {
	return e.notifier
}

// Start launches the background activity loops.
func (e *Engine) Start(ctx context.Context) {
	log.InfoS(ctx, "Starting simulation engine",
		"coworkers", len(e.store.Coworkers()),
		"threads", e.store.ThreadCount())

	e.sched.Start(ctx)
}

// Stop cancels the background loops and waits for in-flight triggers.
func (e *Engine) Stop() {
	e.sched.Stop()
}

// Pause stops simulation side effects. User actions issued while paused are
// queued and run on Resume.
func (e *Engine) Pause() {
	e.gate.Pause()
}

// Resume unpauses and drains the queued actions in order.
func (e *Engine) Resume(ctx context.Context) {
	e.gate.Resume(ctx)
}

// Paused reports the pause state.
func (e *Engine) Paused() bool {
	return e.gate.Paused()
}

// QueuedActions returns the number of commands waiting for resume.
func (e *Engine) QueuedActions() int {
	return e.gate.QueueLen()
}

// SetVisible toggles the foreground flag. Background loops keep ticking
// while hidden but skip their work, the same way an unfocused client stops
// generating activity.
func (e *Engine) SetVisible(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.visible = visible
}

// SetCurrentUser records the acting user, whose admin status influences
// which spontaneous emails carry an oversight cc.
func (e *Engine) SetCurrentUser(email string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentUser = email
}

// CurrentUser returns the acting user's email.
func (e *Engine) CurrentUser() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.currentUser
}

// skipAutonomous reports whether background triggers should do nothing this
// tick: paused simulations queue only explicit user actions, and hidden
// clients generate no activity at all.
func (e *Engine) skipAutonomous() bool {
	if e.gate.Paused() {
		return true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return !e.visible
}

// SendEmail composes a new thread on behalf of the user. It reports whether
// the action was deferred by the pause gate.
func (e *Engine) SendEmail(ctx context.Context,
	cmd SendEmailCommand) (bool, error) {

	return e.gate.Do(ctx, cmd)
}

// ReplyEmail appends a user reply to an existing thread.
func (e *Engine) ReplyEmail(ctx context.Context,
	cmd ReplyEmailCommand) (bool, error) {

	return e.gate.Do(ctx, cmd)
}

// SendIM delivers a user instant message and lets the persona participants
// respond.
func (e *Engine) SendIM(ctx context.Context,
	cmd SendIMCommand) (bool, error) {

	return e.gate.Do(ctx, cmd)
}

// CreateProject creates a project, its kickoff thread and, when a deadline
// is set, the hidden system event that completes it.
func (e *Engine) CreateProject(ctx context.Context,
	cmd CreateProjectCommand) (bool, error) {

	return e.gate.Do(ctx, cmd)
}

// CreateEvent adds a calendar event, optionally announcing it to everyone.
func (e *Engine) CreateEvent(ctx context.Context, event world.Event,
	announce bool) (bool, error) {

	return e.gate.Do(ctx, CreateEventCommand{
		Event:    event,
		Announce: announce,
	})
}

// Broadcast sends an admin announcement to every actor, each in their own
// thread, from the system notification address.
func (e *Engine) Broadcast(ctx context.Context, subject,
	body string) (bool, error) {

	return e.gate.Do(ctx, BroadcastEmailCommand{
		Subject: subject,
		Body:    body,
	})
}

// SetThreadStatus archives, deletes or restores a thread for one viewer
// only.
func (e *Engine) SetThreadStatus(threadID, viewer string,
	status world.ThreadStatus) error {

	return e.store.SetThreadStatus(threadID, viewer, status)
}

// CreatePost publishes a social post authored by the given actor.
func (e *Engine) CreatePost(ctx context.Context, author,
	content string) (world.SocialPost, error) {

	resp, err := e.askReconciler(ctx, ApplyPostMsg{
		AuthorEmail: author,
		Content:     content,
	})
	if err != nil {
		return world.SocialPost{}, err
	}

	post := resp.(ApplyPostResponse).Post
	e.notify(ctx, nil, "social", fmt.Sprintf("%s shared a post",
		e.store.ActorName(author)))

	return post, nil
}

// CommentPost appends a comment to a post.
func (e *Engine) CommentPost(ctx context.Context, postID, author,
	content string) (world.SocialComment, error) {

	resp, err := e.askReconciler(ctx, ApplyCommentMsg{
		PostID:      postID,
		AuthorEmail: author,
		Content:     content,
	})
	if err != nil {
		return world.SocialComment{}, err
	}

	return resp.(ApplyCommentResponse).Comment, nil
}

// AdvanceTime moves the simulation clock forward and resolves everything the
// new time makes due: claimed deadlines and 24h event reminders.
func (e *Engine) AdvanceTime(ctx context.Context, d time.Duration) {
	e.store.Clock().Advance(d)
	e.onClockChanged(ctx)
}

// SetTime jumps the simulation clock to an absolute time, then resolves due
// deadlines and reminders.
func (e *Engine) SetTime(ctx context.Context, t time.Time) {
	e.store.Clock().Set(t)
	e.onClockChanged(ctx)
}

func (e *Engine) onClockChanged(ctx context.Context) {
	e.sweepDeadlines(ctx)
	e.sendReminders(ctx)
}

// SeedCoworker asks the gateway for a new persona consistent with the
// existing directory and adds it.
func (e *Engine) SeedCoworker(
	ctx context.Context) (world.Coworker, error) {

	existing := make([]gen.Participant, 0, len(e.store.Coworkers()))
	for _, c := range e.store.Coworkers() {
		existing = append(existing, e.participantFor(c.Email))
	}

	proposal, err := e.gateway.GenerateCoworker(ctx, existing)
	if err != nil {
		return world.Coworker{}, fmt.Errorf("unable to generate "+
			"coworker: %w", err)
	}

	coworker, err := e.store.AddCoworker(world.Coworker{
		Name:        proposal.Name,
		Email:       proposal.Email,
		Personality: proposal.Personality,
		Age:         proposal.Age,
		Signature:   proposal.Signature,
		Role:        proposal.Role,
		Department:  proposal.Department,
		ReportsTo:   proposal.ReportsTo,
		Company:     e.store.Profile().Name,
	})
	if err != nil {
		return world.Coworker{}, err
	}

	log.InfoS(ctx, "Seeded coworker",
		"name", coworker.Name,
		"email", coworker.Email)

	return coworker, nil
}

// SeedProject asks the gateway for a project proposal over the current
// personas and creates it through the normal project path.
func (e *Engine) SeedProject(ctx context.Context,
	creatorEmail string) (bool, error) {

	coworkers := e.store.Coworkers()
	if len(coworkers) < 2 {
		return false, ErrNotEnoughPersonas
	}

	candidates := make([]gen.Participant, 0, len(coworkers))
	for _, c := range coworkers {
		candidates = append(candidates, e.participantFor(c.Email))
	}

	proposal, err := e.gateway.GenerateProject(ctx, candidates)
	if err != nil {
		return false, fmt.Errorf("unable to generate project: %w", err)
	}

	return e.gate.Do(ctx, CreateProjectCommand{
		Name:         proposal.Name,
		Brief:        proposal.Brief,
		MemberEmails: proposal.MemberEmails,
		CreatorEmail: creatorEmail,
	})
}

// SeedEvent asks the gateway for an event proposal around the given theme
// and schedules it for the next simulated day, announced to everyone.
func (e *Engine) SeedEvent(ctx context.Context,
	theme string) (bool, error) {

	proposal, err := e.gateway.GenerateEvent(ctx, theme)
	if err != nil {
		return false, fmt.Errorf("unable to generate event: %w", err)
	}

	start := e.store.Clock().Now().Add(24 * time.Hour)
	event := world.Event{
		Title:       proposal.Title,
		Description: proposal.Description,
		Start:       start,
		End:         start.Add(time.Hour),
		AllDay:      proposal.AllDay,
	}

	return e.gate.Do(ctx, CreateEventCommand{
		Event:    event,
		Announce: true,
	})
}

// execute interprets a Command. It is the gate's Executor, so it runs either
// immediately or during the post-resume drain.
func (e *Engine) execute(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case SendEmailCommand:
		return e.execSendEmail(ctx, c)

	case ReplyEmailCommand:
		return e.execReplyEmail(ctx, c)

	case SendIMCommand:
		return e.execSendIM(ctx, c)

	case CreateProjectCommand:
		return e.execCreateProject(ctx, c)

	case BroadcastEmailCommand:
		return e.broadcast(ctx, c.Subject, c.Body)

	case CreateEventCommand:
		return e.execCreateEvent(ctx, c)

	case CompleteTaskCommand:
		return e.execCompleteTask(ctx, c)

	case FinishProjectCommand:
		return e.execFinishProject(ctx, c)

	case SideActionCommand:
		return e.execSideAction(ctx, c.Action)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownRequestType, cmd.Kind())
	}
}

func (e *Engine) execSendEmail(ctx context.Context,
	cmd SendEmailCommand) error {

	resp, err := e.askReconciler(ctx, ApplyEmailMsg{
		Email: world.Email{
			From:      cmd.From,
			To:        cmd.To,
			Cc:        cmd.Cc,
			Bcc:       cmd.Bcc,
			Subject:   cmd.Subject,
			Body:      cmd.Body,
			Signature: cmd.Signature,
		},
		HighEngagement: cmd.HighEngagement,
	})
	if err != nil {
		return err
	}

	thread := resp.(ApplyEmailResponse).Thread
	e.notifyThread(ctx, thread, cmd.From, "email")

	// A direct email to personas always draws a response; the chain
	// probability only gates persona-to-persona follow-ups.
	e.schedulePersonaReply(ctx, thread.ID, 0, true)

	return nil
}

func (e *Engine) execReplyEmail(ctx context.Context,
	cmd ReplyEmailCommand) error {

	resp, err := e.askReconciler(ctx, ApplyEmailMsg{
		ThreadID: cmd.ThreadID,
		Email: world.Email{
			From:      cmd.From,
			To:        cmd.To,
			Cc:        cmd.Cc,
			Bcc:       cmd.Bcc,
			Subject:   cmd.Subject,
			Body:      cmd.Body,
			Signature: cmd.Signature,
		},
	})
	if err != nil {
		return err
	}

	thread := resp.(ApplyEmailResponse).Thread
	e.notifyThread(ctx, thread, cmd.From, "email")
	e.schedulePersonaReply(ctx, thread.ID, 0, true)

	return nil
}

func (e *Engine) execSendIM(ctx context.Context, cmd SendIMCommand) error {
	_, err := e.askReconciler(ctx, ApplyIMMsg{
		ConversationID: cmd.ConversationID,
		SenderEmail:    cmd.SenderEmail,
		Content:        cmd.Content,
	})
	if err != nil {
		return err
	}

	convo, ok := e.store.Conversation(cmd.ConversationID)
	if !ok {
		return world.ErrConversationNotFound
	}

	others := make([]string, 0, len(convo.ParticipantEmails))
	for _, p := range convo.ParticipantEmails {
		if p != cmd.SenderEmail {
			others = append(others, p)
		}
	}
	e.notify(ctx, others, "im", fmt.Sprintf("New message from %s",
		e.store.ActorName(cmd.SenderEmail)))

	for _, p := range others {
		if !e.store.IsPersona(p) {
			continue
		}
		if e.sched.Roll() >= e.cfg.IMReplyChance {
			continue
		}

		e.scheduleIMReply(ctx, convo.ID, p)
	}

	return nil
}

func (e *Engine) execCreateProject(ctx context.Context,
	cmd CreateProjectCommand) error {

	project, err := e.store.AddProject(world.Project{
		Name:                cmd.Name,
		Brief:               cmd.Brief,
		MemberEmails:        cmd.MemberEmails,
		Deadline:            cmd.Deadline,
		CompletionRecipient: cmd.CompletionRecipient,
	})
	if err != nil {
		return err
	}

	// A deadline becomes a hidden system event that the clock sweep
	// resolves exactly once.
	if cmd.Deadline != nil {
		_, err := e.store.AddEvent(world.Event{
			Start:     *cmd.Deadline,
			End:       *cmd.Deadline,
			IsSystem:  true,
			ProjectID: project.ID,
		})
		if err != nil {
			return err
		}
	}

	creator := cmd.CreatorEmail
	if creator == "" && len(project.MemberEmails) > 0 {
		creator = project.MemberEmails[0]
	}

	result, err := e.gateway.GenerateEmail(ctx, gen.EmailRequest{
		Sender:     e.participantFor(creator),
		Recipients: e.participantsFor(project.MemberEmails, creator),
		Instructions: fmt.Sprintf("Kick off the new project %q. "+
			"Brief: %s. Welcome the team and outline the first "+
			"steps.", project.Name, project.Brief),
	})
	if err != nil {
		// The project exists either way; the kickoff thread is what
		// failed.
		return fmt.Errorf("unable to generate kickoff email: %w", err)
	}

	resp, err := e.askReconciler(ctx, ApplyEmailMsg{
		Email: world.Email{
			From:      creator,
			To:        remove(project.MemberEmails, creator),
			Subject:   result.Subject,
			Body:      result.Body,
			Signature: result.Signature,
		},
	})
	if err != nil {
		return err
	}

	thread := resp.(ApplyEmailResponse).Thread
	if err := e.store.LinkProjectThread(project.ID, thread.ID); err != nil {
		return err
	}

	log.InfoS(ctx, "Created project",
		"project_id", project.ID,
		"name", project.Name,
		"members", len(project.MemberEmails),
		"has_deadline", cmd.Deadline != nil)

	e.notify(ctx, project.MemberEmails, "project",
		fmt.Sprintf("New project: %s", project.Name))

	return nil
}

func (e *Engine) execCreateEvent(ctx context.Context,
	cmd CreateEventCommand) error {

	event, err := e.store.AddEvent(cmd.Event)
	if err != nil {
		return err
	}

	if !cmd.Announce || event.IsSystem {
		return nil
	}

	return e.broadcast(ctx,
		fmt.Sprintf("New Event: %s", event.Title),
		fmt.Sprintf("%s has been added to the company calendar "+
			"for %s.\n\n%s", event.Title,
			event.Start.Format("Monday, January 2 at 3:04 PM"),
			event.Description),
	)
}

// execCompleteTask turns a claimed task deadline into a completion report
// from the assignee, delivered in a fresh thread.
func (e *Engine) execCompleteTask(ctx context.Context,
	cmd CompleteTaskCommand) error {

	td := cmd.Event.TaskDetails
	if td == nil {
		return nil
	}

	result, err := e.gateway.GenerateEmail(ctx, gen.EmailRequest{
		Sender: e.participantFor(td.AssigneeEmail),
		Recipients: []gen.Participant{
			e.participantFor(td.CompletionRecipient),
		},
		Instructions: fmt.Sprintf("You have just finished the task: "+
			"%s. Report its completion and summarize the "+
			"outcome.", td.Description),
	})
	if err != nil {
		return fmt.Errorf("unable to generate task completion: %w",
			err)
	}

	resp, err := e.askReconciler(ctx, ApplyEmailMsg{
		Email: world.Email{
			From:      td.AssigneeEmail,
			To:        []string{td.CompletionRecipient},
			Subject:   result.Subject,
			Body:      result.Body,
			Signature: result.Signature,
		},
	})
	if err != nil {
		return err
	}

	thread := resp.(ApplyEmailResponse).Thread
	e.notifyThread(ctx, thread, td.AssigneeEmail, "email")

	return nil
}

// execFinishProject marks the project Completed and lands a wrap-up email
// in the project thread.
func (e *Engine) execFinishProject(ctx context.Context,
	cmd FinishProjectCommand) error {

	project, ok := e.store.Project(cmd.Event.ProjectID)
	if !ok {
		// Deleted since the deadline was set; the claim already
		// removed the event.
		return nil
	}

	if _, err := e.askReconciler(ctx, CompleteProjectMsg{
		ProjectID: project.ID,
	}); err != nil {
		return err
	}

	sender := project.CompletionRecipient
	if sender == "" && len(project.MemberEmails) > 0 {
		sender = project.MemberEmails[0]
	}

	history := e.threadHistory(project.ThreadID)
	result, err := e.gateway.GenerateEmail(ctx, gen.EmailRequest{
		Sender:     e.participantFor(sender),
		Recipients: e.participantsFor(project.MemberEmails, sender),
		History:    history,
		Instructions: fmt.Sprintf("The project %q has reached its "+
			"deadline and is now complete. Congratulate the team "+
			"and summarize what was delivered.", project.Name),
	})
	if err != nil {
		return fmt.Errorf("unable to generate project completion: %w",
			err)
	}

	resp, err := e.askReconciler(ctx, ApplyEmailMsg{
		ThreadID: project.ThreadID,
		Email: world.Email{
			From:      sender,
			To:        remove(project.MemberEmails, sender),
			Subject:   result.Subject,
			Body:      result.Body,
			Signature: result.Signature,
		},
	})
	if err != nil {
		return err
	}

	thread := resp.(ApplyEmailResponse).Thread
	e.notifyThread(ctx, thread, sender, "email")
	e.notify(ctx, project.MemberEmails, "project",
		fmt.Sprintf("Project completed: %s", project.Name))

	return nil
}

// execSideAction runs a generation-carried follow-on action. Side effects
// are intentionally modest: an extra email in a new thread, or a calendar
// entry that may itself be a hidden deadline.
func (e *Engine) execSideAction(ctx context.Context,
	action gen.SideAction) error {

	switch a := action.(type) {
	case gen.SendEmailAction:
		resp, err := e.askReconciler(ctx, ApplyEmailMsg{
			Email: world.Email{
				From:    SystemSenderEmail,
				To:      a.To,
				Cc:      a.Cc,
				Subject: a.Subject,
				Body:    a.Body,
			},
		})
		if err != nil {
			return err
		}

		thread := resp.(ApplyEmailResponse).Thread
		e.notifyThread(ctx, thread, SystemSenderEmail, "email")

		return nil

	case gen.CreateEventAction:
		_, err := e.store.AddEvent(world.Event{
			Title:       a.Title,
			Description: a.Description,
			Start:       a.Start,
			End:         a.End,
			AllDay:      a.AllDay,
			IsSystem:    a.IsSystem,
			ProjectID:   a.ProjectID,
			TaskDetails: a.TaskDetails,
		})
		return err

	default:
		return nil
	}
}

// broadcast sends a system email to every actor, each in their own new
// thread.
func (e *Engine) broadcast(ctx context.Context, subject, body string) error {
	for _, addr := range e.store.AllEmails() {
		resp, err := e.askReconciler(ctx, ApplyEmailMsg{
			Email: world.Email{
				From:    SystemSenderEmail,
				To:      []string{addr},
				Subject: subject,
				Body:    body,
			},
		})
		if err != nil {
			return err
		}

		thread := resp.(ApplyEmailResponse).Thread
		e.notifyThread(ctx, thread, SystemSenderEmail, "system")
	}

	return nil
}

// sweepDeadlines claims every due system event and schedules its
// resolution. Claiming happens before any generation, so a failed or queued
// follow-up can never make the same deadline fire twice.
func (e *Engine) sweepDeadlines(ctx context.Context) {
	now := e.store.Clock().Now()

	for _, due := range e.store.DueSystemEvents(now) {
		resp, err := e.askReconciler(ctx, ClaimDeadlineMsg{
			EventID: due.ID,
		})
		if err != nil {
			log.ErrorS(ctx, "Deadline claim failed", err,
				"event_id", due.ID)
			continue
		}

		claim := resp.(ClaimDeadlineResponse)
		if !claim.Claimed {
			continue
		}

		var cmd Command
		switch {
		case claim.Event.ProjectID != "":
			cmd = FinishProjectCommand{Event: claim.Event}

		case claim.Event.TaskDetails != nil:
			cmd = CompleteTaskCommand{Event: claim.Event}

		default:
			continue
		}

		if _, err := e.gate.Do(ctx, cmd); err != nil {
			log.ErrorS(ctx, "Deadline resolution failed", err,
				"event_id", claim.Event.ID)
		}
	}
}

// sendReminders broadcasts a one-time reminder for every visible event
// starting within the reminder window.
func (e *Engine) sendReminders(ctx context.Context) {
	now := e.store.Clock().Now()

	for _, ev := range e.store.PendingReminders(now, e.cfg.ReminderWindow) {
		if err := e.store.MarkReminderSent(ev.ID); err != nil {
			continue
		}

		_, err := e.gate.Do(ctx, BroadcastEmailCommand{
			Subject: fmt.Sprintf("Reminder: %s", ev.Title),
			Body: fmt.Sprintf("%s starts %s.\n\n%s", ev.Title,
				ev.Start.Format("Monday, January 2 at "+
					"3:04 PM"), ev.Description),
		})
		if err != nil {
			log.ErrorS(ctx, "Reminder broadcast failed", err,
				"event_id", ev.ID)
		}
	}
}

// askReconciler sends a request to the reconciler and waits for the reply.
func (e *Engine) askReconciler(ctx context.Context,
	msg ReconcileRequest) (ReconcileResponse, error) {

	return actorutil.AskAwait(ctx, e.reconciler, msg)
}

// notify fans a notification out via the hub, unless notifications are
// muted. Empty viewers means broadcast.
func (e *Engine) notify(ctx context.Context, viewers []string, kind,
	text string) {

	if e.store.Muted() {
		return
	}

	e.notifier.Tell(ctx, PublishMsg{
		Viewers: viewers,
		Notification: Notification{
			Kind: kind,
			Text: text,
			At:   e.store.Clock().Now(),
		},
	})
}

// notifyThread notifies every thread participant other than the sender
// about new mail.
func (e *Engine) notifyThread(ctx context.Context, thread world.Thread,
	sender, kind string) {

	viewers := make([]string, 0, len(thread.Participants))
	for _, p := range thread.Participants {
		if p != sender {
			viewers = append(viewers, p)
		}
	}

	last, ok := thread.LastEmail()
	if !ok {
		return
	}

	e.notify(ctx, viewers, kind, fmt.Sprintf("New email from %s: %s",
		e.store.ActorName(sender), last.Subject))
}

// participantFor builds the generation-facing view of an actor. Unknown
// addresses degrade to a bare email identity.
func (e *Engine) participantFor(email string) gen.Participant {
	if c, ok := e.store.Coworker(email); ok {
		return gen.Participant{
			Name:        c.Name,
			Email:       c.Email,
			Role:        c.Role,
			Department:  c.Department,
			Personality: c.Personality,
		}
	}

	if u, ok := e.store.User(email); ok {
		return gen.Participant{
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			Department: u.Department,
		}
	}

	return gen.Participant{Name: email, Email: email}
}

// participantsFor maps emails to participants, skipping the given sender.
func (e *Engine) participantsFor(emails []string,
	skip string) []gen.Participant {

	out := make([]gen.Participant, 0, len(emails))
	for _, addr := range emails {
		if addr == skip {
			continue
		}
		out = append(out, e.participantFor(addr))
	}

	return out
}

// threadHistory returns the emails of a thread, or nil when the thread does
// not exist.
func (e *Engine) threadHistory(threadID string) []world.Email {
	if threadID == "" {
		return nil
	}

	thread, ok := e.store.Thread(threadID)
	if !ok {
		return nil
	}

	return thread.Emails
}

// remove returns emails without the given address.
func remove(emails []string, addr string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e != addr {
			out = append(out, e)
		}
	}

	return out
}
