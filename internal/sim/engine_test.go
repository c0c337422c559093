package sim

import (
	"context"
	"testing"
	"time"

	"github.com/cubicool/cubicle/internal/baselib/actor"
	"github.com/cubicool/cubicle/internal/gen"
	"github.com/cubicool/cubicle/internal/world"
	"github.com/stretchr/testify/require"
)

var engineStart = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

// newTestEngine wires an engine over a fresh store and mock gateway, with
// every delay zeroed so scheduled work fires immediately.
func newTestEngine(t *testing.T,
	mock *gen.MockGateway) (*Engine, *world.Store) {

	t.Helper()

	store := world.NewStore(world.NewClock(engineStart))
	system := actor.NewActorSystem()
	t.Cleanup(func() {
		require.NoError(t, system.Shutdown(context.Background()))
	})

	cfg := DefaultConfig()
	cfg.ChainReplyChance = 0
	cfg.ChainReplyDelayMin = 0
	cfg.ChainReplyDelayJitter = 0
	cfg.IMReplyDelayMin = 0
	cfg.IMReplyDelayJitter = 0
	cfg.SideActionDelay = 0
	cfg.ResumeStagger = 0

	engine := NewEngine(cfg, store, mock, system, 1)
	t.Cleanup(engine.Stop)

	return engine, store
}

func addTestUser(t *testing.T, store *world.Store, name, username string,
	admin bool) world.User {

	t.Helper()

	user, err := store.AddUser(world.User{
		Name:     name,
		Username: username,
		Email:    username + "@test.com",
		IsAdmin:  admin,
	})
	require.NoError(t, err)

	return user
}

func addTestCoworker(t *testing.T, store *world.Store, name,
	local string) world.Coworker {

	t.Helper()

	coworker, err := store.AddCoworker(world.Coworker{
		Name:        name,
		Email:       local + "@test.com",
		Personality: "pragmatic and direct",
		Role:        "Engineer",
	})
	require.NoError(t, err)

	return coworker
}

// TestSendEmailDrawsPersonaReply verifies a user email creates a thread and
// always draws a persona response.
func TestSendEmailDrawsPersonaReply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.EmailResults = []*gen.EmailResult{{
		Subject: "Re: numbers",
		Body:    "Looking into it now.",
	}}

	engine, store := newTestEngine(t, mock)
	user := addTestUser(t, store, "Dana", "dana", false)
	alice := addTestCoworker(t, store, "Alice", "alice")

	deferred, err := engine.SendEmail(ctx, SendEmailCommand{
		From:    user.Email,
		To:      []string{alice.Email},
		Subject: "numbers",
		Body:    "Can you check the Q2 numbers?",
	})
	require.NoError(t, err)
	require.False(t, deferred)

	threads := store.Threads()
	require.Len(t, threads, 1)

	require.Eventually(t, func() bool {
		thread, ok := store.Thread(threads[0].ID)
		return ok && len(thread.Emails) == 2
	}, 5*time.Second, 10*time.Millisecond)

	thread, _ := store.Thread(threads[0].ID)
	require.Equal(t, alice.Email, thread.Emails[1].From)
	require.Equal(t, "Re: numbers", thread.Emails[1].Subject)
}

// TestPauseBlocksGatewayAndQueuesActions verifies that nothing reaches the
// gateway while paused and the queued action runs on resume.
func TestPauseBlocksGatewayAndQueuesActions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.EmailResults = []*gen.EmailResult{{
		Subject: "Re: hello",
		Body:    "Hello back.",
	}}

	engine, store := newTestEngine(t, mock)
	user := addTestUser(t, store, "Dana", "dana", false)
	alice := addTestCoworker(t, store, "Alice", "alice")

	engine.Pause()

	deferred, err := engine.SendEmail(ctx, SendEmailCommand{
		From:    user.Email,
		To:      []string{alice.Email},
		Subject: "hello",
		Body:    "Hi Alice.",
	})
	require.NoError(t, err)
	require.True(t, deferred)

	require.Zero(t, store.ThreadCount())
	require.Zero(t, mock.Calls())
	require.Equal(t, 1, engine.QueuedActions())

	engine.Resume(ctx)

	require.Equal(t, 1, store.ThreadCount())
	require.Zero(t, engine.QueuedActions())
}

// TestProjectDeadlineCompletesOnce verifies a project deadline fires its
// completion exactly once when the clock passes it.
func TestProjectDeadlineCompletesOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.EmailResults = []*gen.EmailResult{
		{Subject: "Kickoff: Atlas", Body: "Welcome aboard."},
		{Subject: "Atlas: done", Body: "We shipped it."},
	}

	engine, store := newTestEngine(t, mock)
	alice := addTestCoworker(t, store, "Alice", "alice")
	bob := addTestCoworker(t, store, "Bob", "bob")

	deadline := engineStart.Add(48 * time.Hour)
	deferred, err := engine.CreateProject(ctx, CreateProjectCommand{
		Name:         "Atlas",
		Brief:        "Ship the atlas service",
		MemberEmails: []string{alice.Email, bob.Email},
		CreatorEmail: alice.Email,
		Deadline:     &deadline,
	})
	require.NoError(t, err)
	require.False(t, deferred)

	projects := store.Projects()
	require.Len(t, projects, 1)
	require.Equal(t, world.ProjectActive, projects[0].Status)
	require.NotEmpty(t, projects[0].ThreadID)

	// The hidden deadline event exists but has not fired.
	require.Len(t, store.Events(), 1)

	engine.AdvanceTime(ctx, 72*time.Hour)

	project, ok := store.Project(projects[0].ID)
	require.True(t, ok)
	require.Equal(t, world.ProjectCompleted, project.Status)
	require.Empty(t, store.Events())

	thread, ok := store.Thread(project.ThreadID)
	require.True(t, ok)
	require.Len(t, thread.Emails, 2)
	require.Equal(t, "Atlas: done", thread.Emails[1].Subject)

	// A second sweep has nothing left to claim.
	engine.AdvanceTime(ctx, time.Hour)
	thread, _ = store.Thread(project.ThreadID)
	require.Len(t, thread.Emails, 2)
}

// TestTaskDeadlineClaimSurvivesPause verifies a deadline claimed while
// paused fires exactly once, after resume.
func TestTaskDeadlineClaimSurvivesPause(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.EmailResults = []*gen.EmailResult{{
		Subject: "Report finished",
		Body:    "The audit report is done.",
	}}

	engine, store := newTestEngine(t, mock)
	alice := addTestCoworker(t, store, "Alice", "alice")
	bob := addTestCoworker(t, store, "Bob", "bob")

	_, err := store.AddEvent(world.Event{
		Start:    engineStart.Add(time.Hour),
		End:      engineStart.Add(time.Hour),
		IsSystem: true,
		TaskDetails: &world.TaskDetails{
			Description:         "Finish the audit report",
			AssigneeEmail:       alice.Email,
			CompletionRecipient: bob.Email,
		},
	})
	require.NoError(t, err)

	engine.Pause()
	engine.AdvanceTime(ctx, 2*time.Hour)

	// Claimed immediately, resolved later.
	require.Empty(t, store.Events())
	require.Zero(t, store.ThreadCount())
	require.Zero(t, mock.Calls())
	require.Equal(t, 1, engine.QueuedActions())

	engine.Resume(ctx)

	threads := store.Threads()
	require.Len(t, threads, 1)
	require.Equal(t, alice.Email, threads[0].Emails[0].From)
	require.Equal(t, []string{bob.Email}, threads[0].Emails[0].To)

	// The claim is gone; another sweep cannot re-fire it.
	engine.AdvanceTime(ctx, time.Hour)
	require.Equal(t, 1, store.ThreadCount())
}

// TestIMReplyReplacesTypingPlaceholder verifies the typing indicator
// lifecycle around a persona IM reply.
func TestIMReplyReplacesTypingPlaceholder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.IMResults = []*gen.IMResult{{Text: "On my way."}}

	engine, store := newTestEngine(t, mock)
	engine.cfg.IMReplyChance = 1

	user := addTestUser(t, store, "Dana", "dana", false)
	alice := addTestCoworker(t, store, "Alice", "alice")

	convo := store.EnsureConversation(
		[]string{user.Email, alice.Email}, "",
	)

	deferred, err := engine.SendIM(ctx, SendIMCommand{
		ConversationID: convo.ID,
		SenderEmail:    user.Email,
		Content:        "Meeting in five?",
	})
	require.NoError(t, err)
	require.False(t, deferred)

	require.Eventually(t, func() bool {
		msgs := store.IMMessages(convo.ID)
		if len(msgs) != 2 {
			return false
		}
		for _, m := range msgs {
			if m.IsTyping {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)

	msgs := store.IMMessages(convo.ID)
	require.Equal(t, user.Email, msgs[0].SenderEmail)
	require.Equal(t, alice.Email, msgs[1].SenderEmail)
	require.Equal(t, "On my way.", msgs[1].Content)
}

// TestIMReplyFailureRemovesPlaceholder verifies a failed generation still
// cleans up the typing indicator.
func TestIMReplyFailureRemovesPlaceholder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()

	engine, store := newTestEngine(t, mock)
	engine.cfg.IMReplyChance = 1

	user := addTestUser(t, store, "Dana", "dana", false)
	alice := addTestCoworker(t, store, "Alice", "alice")

	convo := store.EnsureConversation(
		[]string{user.Email, alice.Email}, "",
	)

	_, err := engine.SendIM(ctx, SendIMCommand{
		ConversationID: convo.ID,
		SenderEmail:    user.Email,
		Content:        "You there?",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msgs := store.IMMessages(convo.ID)
		if len(msgs) != 1 {
			return false
		}
		return !msgs[0].IsTyping
	}, 5*time.Second, 10*time.Millisecond)
}

// TestSpontaneousEmailCcsAdminUser verifies the oversight cc lands when the
// acting user is an admin.
func TestSpontaneousEmailCcsAdminUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.EmailResults = []*gen.EmailResult{{
		Subject: "Sync on roadmap",
		Body:    "Quick question about the roadmap.",
	}}

	engine, store := newTestEngine(t, mock)
	admin := addTestUser(t, store, "Dana", "dana", true)
	addTestCoworker(t, store, "Alice", "alice")
	addTestCoworker(t, store, "Bob", "bob")

	engine.SetCurrentUser(admin.Email)
	engine.spontaneousEmail(ctx)

	threads := store.Threads()
	require.Len(t, threads, 1)
	require.Equal(t, []string{admin.Email}, threads[0].Emails[0].Cc)
	require.Contains(t, threads[0].Participants, admin.Email)
}

// TestChainReplyDepthCap verifies persona reply chains stop at the depth
// limit.
func TestChainReplyDepthCap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.EmailResults = []*gen.EmailResult{
		{Subject: "Budget", Body: "Thoughts on the budget?"},
		{Subject: "Re: Budget", Body: "Looks tight."},
		{Subject: "Re: Budget", Body: "Agreed, let's trim."},
		{Subject: "Re: Budget", Body: "Should not be sent."},
	}

	engine, store := newTestEngine(t, mock)
	engine.cfg.ChainReplyChance = 1

	addTestCoworker(t, store, "Alice", "alice")
	addTestCoworker(t, store, "Bob", "bob")

	engine.spontaneousEmail(ctx)

	threads := store.Threads()
	require.Len(t, threads, 1)

	// Initial email plus replies at depth one and two; depth three is
	// past the cap.
	require.Eventually(t, func() bool {
		thread, ok := store.Thread(threads[0].ID)
		return ok && len(thread.Emails) == 3
	}, 5*time.Second, 10*time.Millisecond)

	engine.Stop()

	thread, _ := store.Thread(threads[0].ID)
	require.Len(t, thread.Emails, 3)
	require.Len(t, mock.EmailResults, 1)
}

// TestSocialActivityPostsOnEmptyFeed verifies an empty feed always produces
// a post regardless of the post probability.
func TestSocialActivityPostsOnEmptyFeed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.TextResults = []string{"Shipped the new dashboard today."}

	engine, store := newTestEngine(t, mock)
	engine.cfg.SocialPostChance = 0
	engine.cfg.CompanyPostChance = 0

	addTestCoworker(t, store, "Alice", "alice")

	engine.socialActivity(ctx)

	posts := store.Posts()
	require.Len(t, posts, 1)
	require.Equal(t, "alice@test.com", posts[0].AuthorEmail)
}

// TestSocialCommentSkipsAuthorAndRepeatVoices verifies the commenter pool
// excludes the post author and prior commenters.
func TestSocialCommentSkipsAuthorAndRepeatVoices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.TextResults = []string{"Nice work!", "Should not appear."}

	engine, store := newTestEngine(t, mock)

	alice := addTestCoworker(t, store, "Alice", "alice")
	bob := addTestCoworker(t, store, "Bob", "bob")

	post := store.AddPost(bob.Email, "We hit the milestone.", false)

	engine.socialComment(ctx, store.Coworkers(), store.Posts())

	got, ok := store.Post(post.ID)
	require.True(t, ok)
	require.Len(t, got.Comments, 1)
	require.Equal(t, alice.Email, got.Comments[0].AuthorEmail)

	// Alice already commented and Bob is the author, so a second tick
	// has no eligible voice left.
	engine.socialComment(ctx, store.Coworkers(), store.Posts())

	got, _ = store.Post(post.ID)
	require.Len(t, got.Comments, 1)
	require.Len(t, mock.TextResults, 1)
}

// TestCompanyVoicePost verifies the community manager can post as the
// company profile.
func TestCompanyVoicePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.TextResults = []string{"Welcome our three new hires!"}

	engine, store := newTestEngine(t, mock)
	engine.cfg.CompanyPostChance = 1

	manager := addTestCoworker(t, store, "Casey", "casey")
	engine.cfg.CommunityManagerEmail = manager.Email

	store.SetProfile(world.CompanyProfile{
		Name:    "Cubicle Inc",
		Email:   "company@test.com",
		Tagline: "Work together",
	})

	engine.socialPost(ctx, store.Coworkers())

	posts := store.Posts()
	require.Len(t, posts, 1)
	require.Equal(t, "company@test.com", posts[0].AuthorEmail)
}

// TestEventAnnouncementBroadcast verifies an announced event lands a system
// email in a fresh thread per actor.
func TestEventAnnouncementBroadcast(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()

	engine, store := newTestEngine(t, mock)
	addTestUser(t, store, "Dana", "dana", false)
	addTestCoworker(t, store, "Alice", "alice")
	addTestCoworker(t, store, "Bob", "bob")

	deferred, err := engine.CreateEvent(ctx, world.Event{
		Title:       "Summer Offsite",
		Description: "Annual offsite at the lake.",
		Start:       engineStart.Add(72 * time.Hour),
		End:         engineStart.Add(80 * time.Hour),
	}, true)
	require.NoError(t, err)
	require.False(t, deferred)

	threads := store.Threads()
	require.Len(t, threads, 3)
	for _, thread := range threads {
		require.Len(t, thread.Emails, 1)
		require.Equal(t, SystemSenderEmail, thread.Emails[0].From)
		require.Len(t, thread.Emails[0].To, 1)
		require.Contains(t, thread.Emails[0].Subject, "Summer Offsite")
	}
}

// TestEventReminderFiresOnce verifies the 24h reminder broadcast is sent a
// single time as the clock approaches the event.
func TestEventReminderFiresOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()

	engine, store := newTestEngine(t, mock)
	addTestUser(t, store, "Dana", "dana", false)

	_, err := store.AddEvent(world.Event{
		Title: "All Hands",
		Start: engineStart.Add(30 * time.Hour),
		End:   engineStart.Add(31 * time.Hour),
	})
	require.NoError(t, err)

	// Still outside the window.
	engine.AdvanceTime(ctx, 2*time.Hour)
	require.Zero(t, store.ThreadCount())

	// Inside the window: one reminder per actor.
	engine.AdvanceTime(ctx, 10*time.Hour)
	require.Equal(t, 1, store.ThreadCount())

	// Never again.
	engine.AdvanceTime(ctx, time.Hour)
	require.Equal(t, 1, store.ThreadCount())
}

// TestHiddenClientSkipsAutonomousWork verifies background triggers no-op
// while the client is hidden.
func TestHiddenClientSkipsAutonomousWork(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.EmailResults = []*gen.EmailResult{{
		Subject: "Should not send",
		Body:    "Hidden clients are silent.",
	}}

	engine, store := newTestEngine(t, mock)
	addTestCoworker(t, store, "Alice", "alice")
	addTestCoworker(t, store, "Bob", "bob")

	engine.SetVisible(false)
	engine.spontaneousEmail(ctx)

	require.Zero(t, store.ThreadCount())
	require.Zero(t, mock.Calls())

	engine.SetVisible(true)
	engine.spontaneousEmail(ctx)
	require.Equal(t, 1, store.ThreadCount())
}

// TestSeedCoworker verifies the generated persona proposal is added to the
// directory.
func TestSeedCoworker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.CoworkerResults = []*gen.CoworkerProposal{{
		Name:        "Priya Shah",
		Email:       "priya@test.com",
		Personality: "thoughtful, loves spreadsheets",
		Role:        "Analyst",
	}}

	engine, store := newTestEngine(t, mock)

	coworker, err := engine.SeedCoworker(ctx)
	require.NoError(t, err)
	require.Equal(t, "priya@test.com", coworker.Email)
	require.NotEmpty(t, coworker.ID)

	_, ok := store.Coworker("priya@test.com")
	require.True(t, ok)
}

// TestSideActionCreatesDeadlineEvent verifies a generation-carried event
// action lands a hidden system event that the clock later resolves.
func TestSideActionCreatesDeadlineEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.EmailResults = []*gen.EmailResult{{
		Subject: "Slides ready",
		Body:    "Deck is done.",
	}}

	engine, store := newTestEngine(t, mock)
	alice := addTestCoworker(t, store, "Alice", "alice")
	bob := addTestCoworker(t, store, "Bob", "bob")

	due := engineStart.Add(4 * time.Hour)
	err := engine.execute(ctx, SideActionCommand{
		Action: gen.CreateEventAction{
			Title:    "Prepare slides",
			Start:    due,
			End:      due,
			IsSystem: true,
			TaskDetails: &world.TaskDetails{
				Description:         "Prepare the board slides",
				AssigneeEmail:       alice.Email,
				CompletionRecipient: bob.Email,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, store.Events(), 1)

	engine.AdvanceTime(ctx, 5*time.Hour)

	require.Empty(t, store.Events())
	require.Equal(t, 1, store.ThreadCount())
}

// TestScheduleDelayBounds verifies randomized delays stay inside their
// configured range.
func TestScheduleDelayBounds(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(7)
	for i := 0; i < 200; i++ {
		d := sched.Delay(20*time.Second, 20*time.Second)
		require.GreaterOrEqual(t, d, 20*time.Second)
		require.Less(t, d, 40*time.Second)
	}
}
