package sim

import (
	"context"
	"fmt"

	"github.com/cubicool/cubicle/internal/gen"
	"github.com/cubicool/cubicle/internal/world"
)

// spontaneousEmail starts an unprompted persona-to-persona thread. When the
// acting user is an admin, they are cc'd for oversight.
func (e *Engine) spontaneousEmail(ctx context.Context) {
	if e.skipAutonomous() {
		return
	}

	coworkers := e.store.Coworkers()
	if len(coworkers) < 2 {
		return
	}

	sender := coworkers[e.sched.Pick(len(coworkers))]
	recipient := sender
	for recipient.Email == sender.Email {
		recipient = coworkers[e.sched.Pick(len(coworkers))]
	}

	var cc []string
	if user, ok := e.store.User(e.CurrentUser()); ok && user.IsAdmin {
		cc = []string{user.Email}
	}

	high := e.sched.Roll() < e.cfg.HighEngagementChance

	result, err := e.gateway.GenerateEmail(ctx, gen.EmailRequest{
		Sender:     e.participantFor(sender.Email),
		Recipients: []gen.Participant{e.participantFor(recipient.Email)},
		Cc:         e.participantsFor(cc, ""),
		Instructions: "Start a new work conversation about something " +
			"currently on your plate. Keep it natural for your " +
			"role and relationship with the recipient.",
		HighEngagement: high,
		AllowAction:    true,
		AllowImage:     true,
	})
	if err != nil {
		log.WarnS(ctx, "Spontaneous email generation failed", err,
			"sender", sender.Email)
		return
	}

	resp, err := e.askReconciler(ctx, ApplyEmailMsg{
		Email: world.Email{
			From:      sender.Email,
			To:        []string{recipient.Email},
			Cc:        cc,
			Subject:   result.Subject,
			Body:      result.Body,
			Signature: result.Signature,
		},
		ImagePrompt:    result.ImagePrompt,
		HighEngagement: high,
	})
	if err != nil {
		log.ErrorS(ctx, "Spontaneous email commit failed", err)
		return
	}

	thread := resp.(ApplyEmailResponse).Thread
	e.notifyThread(ctx, thread, sender.Email, "email")
	e.queueSideAction(ctx, result.Action)
	e.maybeChainReply(ctx, thread.ID, 1)
}

// projectQuery has a project member ask the team for a status update in the
// project thread.
func (e *Engine) projectQuery(ctx context.Context) {
	if e.skipAutonomous() {
		return
	}

	e.projectEmail(ctx, "Ask the team for a status update on the "+
		"project. Mention a concrete area you want news about.")
}

// projectWork has a project member share a concrete contribution in the
// project thread. Contributions may carry side actions, which is how ad-hoc
// task deadlines enter the calendar.
func (e *Engine) projectWork(ctx context.Context) {
	if e.skipAutonomous() {
		return
	}

	e.projectEmail(ctx, "Share a concrete piece of progress you just "+
		"made on the project. Be specific about what was done and "+
		"what comes next.")
}

// projectEmail picks an active project and a persona member and lands a
// generated email in the project thread, creating and linking the thread on
// first use.
func (e *Engine) projectEmail(ctx context.Context, instructions string) {
	projects := e.store.ActiveProjects()
	if len(projects) == 0 {
		return
	}

	project := projects[e.sched.Pick(len(projects))]

	var personas []string
	for _, m := range project.MemberEmails {
		if e.store.IsPersona(m) {
			personas = append(personas, m)
		}
	}
	if len(personas) == 0 {
		return
	}

	sender := personas[e.sched.Pick(len(personas))]

	result, err := e.gateway.GenerateEmail(ctx, gen.EmailRequest{
		Sender:     e.participantFor(sender),
		Recipients: e.participantsFor(project.MemberEmails, sender),
		History:    e.threadHistory(project.ThreadID),
		Instructions: fmt.Sprintf("Project %q. Brief: %s. %s",
			project.Name, project.Brief, instructions),
		AllowAction: true,
	})
	if err != nil {
		log.WarnS(ctx, "Project email generation failed", err,
			"project_id", project.ID)
		return
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
		log.ErrorS(ctx, "Project email commit failed", err,
			"project_id", project.ID)
		return
	}

	thread := resp.(ApplyEmailResponse).Thread
	if project.ThreadID == "" {
		if err := e.store.LinkProjectThread(
			project.ID, thread.ID,
		); err != nil {
			log.WarnS(ctx, "Project thread link failed", err,
				"project_id", project.ID)
		}
	}

	e.notifyThread(ctx, thread, sender, "email")
	e.queueSideAction(ctx, result.Action)
	e.maybeChainReply(ctx, thread.ID, 1)
}

// socialActivity runs one tick of the company feed: sometimes a post,
// sometimes a comment, often nothing. An empty feed always gets a post so
// the surface never stays blank.
func (e *Engine) socialActivity(ctx context.Context) {
	if e.skipAutonomous() {
		return
	}

	coworkers := e.store.Coworkers()
	if len(coworkers) == 0 {
		return
	}

	posts := e.store.Posts()
	roll := e.sched.Roll()

	switch {
	case roll < e.cfg.SocialPostChance || len(posts) == 0:
		e.socialPost(ctx, coworkers)

	case roll < e.cfg.SocialPostChance+e.cfg.SocialCommentChance:
		e.socialComment(ctx, coworkers, posts)
	}
}

func (e *Engine) socialPost(ctx context.Context,
	coworkers []world.Coworker) {

	author := coworkers[e.sched.Pick(len(coworkers))].Email
	instructions := "Write a short post for the internal company feed. " +
		"Something from your work life: a win, an observation, a " +
		"question to the office."

	// The community manager sometimes speaks with the company's voice
	// instead of their own.
	if e.cfg.CommunityManagerEmail != "" &&
		e.sched.Roll() < e.cfg.CompanyPostChance {

		profile := e.store.Profile()
		if profile.Email != "" {
			author = profile.Email
			instructions = fmt.Sprintf("Write a short official "+
				"post from %s for the internal feed: an "+
				"announcement, a culture note or a thank "+
				"you. Tagline: %s.", profile.Name,
				profile.Tagline)
		}
	}

	content, err := e.gateway.GenerateText(ctx, gen.TextRequest{
		Author:       e.participantFor(author),
		Instructions: instructions,
	})
	if err != nil {
		log.WarnS(ctx, "Social post generation failed", err,
			"author", author)
		return
	}

	high := e.sched.Roll() < e.cfg.HighEngagementChance

	if _, err := e.askReconciler(ctx, ApplyPostMsg{
		AuthorEmail:    author,
		Content:        content,
		HighEngagement: high,
	}); err != nil {
		log.ErrorS(ctx, "Social post commit failed", err)
		return
	}

	e.notify(ctx, nil, "social", fmt.Sprintf("%s shared a post",
		e.store.ActorName(author)))
}

func (e *Engine) socialComment(ctx context.Context,
	coworkers []world.Coworker, posts []world.SocialPost) {

	post := posts[e.sched.Pick(len(posts))]

	// Only personas who are not the author and have not already weighed
	// in may comment, so threads never devolve into one voice repeating
	// itself.
	commented := make(map[string]struct{}, len(post.Comments))
	for _, c := range post.Comments {
		commented[c.AuthorEmail] = struct{}{}
	}

	var candidates []string
	for _, c := range coworkers {
		if c.Email == post.AuthorEmail {
			continue
		}
		if _, ok := commented[c.Email]; ok {
			continue
		}
		candidates = append(candidates, c.Email)
	}
	if len(candidates) == 0 {
		return
	}

	author := candidates[e.sched.Pick(len(candidates))]

	content, err := e.gateway.GenerateText(ctx, gen.TextRequest{
		Author: e.participantFor(author),
		Instructions: "Write a brief comment reacting to a " +
			"coworker's post on the internal feed.",
		Context: fmt.Sprintf("%s posted: %s",
			e.store.ActorName(post.AuthorEmail), post.Content),
	})
	if err != nil {
		log.WarnS(ctx, "Social comment generation failed", err,
			"post_id", post.ID)
		return
	}

	if _, err := e.askReconciler(ctx, ApplyCommentMsg{
		PostID:      post.ID,
		AuthorEmail: author,
		Content:     content,
	}); err != nil {
		log.ErrorS(ctx, "Social comment commit failed", err)
		return
	}

	e.notify(ctx, []string{post.AuthorEmail}, "social",
		fmt.Sprintf("%s commented on your post",
			e.store.ActorName(author)))
}

// maybeChainReply rolls the chain probability and, on success, schedules a
// persona follow-up to the thread. Depth counts generated emails in the
// chain; the cap keeps personas from talking forever.
func (e *Engine) maybeChainReply(ctx context.Context, threadID string,
	depth int) {

	if depth > e.cfg.ChainReplyMaxDepth {
		return
	}
	if e.sched.Roll() >= e.cfg.ChainReplyChance {
		return
	}

	e.schedulePersonaReply(ctx, threadID, depth, false)
}

// schedulePersonaReply arms a one-shot timer that has a persona respond to
// the latest email in the thread. Forced replies come from direct user mail
// and skip the chain roll that normally precedes scheduling.
func (e *Engine) schedulePersonaReply(ctx context.Context, threadID string,
	depth int, forced bool) {

	delay := e.sched.Delay(
		e.cfg.ChainReplyDelayMin, e.cfg.ChainReplyDelayJitter,
	)

	e.sched.Once(ctx, delay, func(ctx context.Context) {
		// Re-check at fire time: a pause or hide that happened while
		// the timer ran wins.
		if !forced && e.skipAutonomous() {
			return
		}
		if forced && e.gate.Paused() {
			return
		}

		e.personaReply(ctx, threadID, depth)
	})
}

// personaReply generates and commits one persona response to the thread's
// latest email, then rolls for a further chain step.
func (e *Engine) personaReply(ctx context.Context, threadID string,
	depth int) {

	thread, ok := e.store.Thread(threadID)
	if !ok {
		return
	}

	last, ok := thread.LastEmail()
	if !ok {
		return
	}

	// The responder is a persona participant other than whoever spoke
	// last.
	var candidates []string
	for _, p := range thread.Participants {
		if p == last.From || p == SystemSenderEmail {
			continue
		}
		if e.store.IsPersona(p) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return
	}

	sender := candidates[e.sched.Pick(len(candidates))]

	result, err := e.gateway.GenerateEmail(ctx, gen.EmailRequest{
		Sender:     e.participantFor(sender),
		Recipients: e.participantsFor(thread.Participants, sender),
		History:    thread.Emails,
		Instructions: "Reply to the latest email in this " +
			"conversation in your own voice.",
		HighEngagement: thread.HighEngagement,
		AllowAction:    true,
		AllowImage:     true,
	})
	if err != nil {
		log.WarnS(ctx, "Reply generation failed", err,
			"thread_id", threadID,
			"sender", sender)
		return
	}

	resp, err := e.askReconciler(ctx, ApplyEmailMsg{
		ThreadID: threadID,
		Email: world.Email{
			From:      sender,
			To:        remove(thread.Participants, sender),
			Subject:   result.Subject,
			Body:      result.Body,
			Signature: result.Signature,
		},
		ImagePrompt: result.ImagePrompt,
	})
	if err != nil {
		log.ErrorS(ctx, "Reply commit failed", err,
			"thread_id", threadID)
		return
	}

	e.notifyThread(ctx, resp.(ApplyEmailResponse).Thread, sender, "email")
	e.queueSideAction(ctx, result.Action)
	e.maybeChainReply(ctx, threadID, depth+1)
}

// scheduleIMReply inserts a typing placeholder right away, then replaces it
// with the generated reply after a human-feeling delay. The placeholder is
// always removed, even when generation fails or the simulation pauses
// mid-wait.
func (e *Engine) scheduleIMReply(ctx context.Context, convoID,
	sender string) {

	resp, err := e.askReconciler(ctx, ApplyIMMsg{
		ConversationID: convoID,
		SenderEmail:    sender,
		Content:        "",
		IsTyping:       true,
	})
	if err != nil {
		log.WarnS(ctx, "Typing placeholder failed", err,
			"conversation_id", convoID)
		return
	}

	placeholder := resp.(ApplyIMResponse).Message
	delay := e.sched.Delay(e.cfg.IMReplyDelayMin, e.cfg.IMReplyDelayJitter)

	e.sched.Once(ctx, delay, func(ctx context.Context) {
		e.deliverIMReply(ctx, convoID, sender, placeholder.ID)
	})
}

func (e *Engine) deliverIMReply(ctx context.Context, convoID, sender,
	placeholderID string) {

	defer func() {
		_, err := e.askReconciler(ctx, RemoveIMMsg{
			ConversationID: convoID,
			MessageID:      placeholderID,
		})
		if err != nil {
			log.WarnS(ctx, "Typing placeholder cleanup failed",
				err, "conversation_id", convoID)
		}
	}()

	if e.gate.Paused() {
		return
	}

	convo, ok := e.store.Conversation(convoID)
	if !ok {
		return
	}

	var live []world.IMMessage
	for _, m := range e.store.IMMessages(convoID) {
		if !m.IsTyping {
			live = append(live, m)
		}
	}

	result, err := e.gateway.GenerateIMReply(ctx, gen.IMRequest{
		Sender: e.participantFor(sender),
		Participants: e.participantsFor(
			convo.ParticipantEmails, sender,
		),
		History: live,
		Instructions: "Reply to the latest message in this chat. " +
			"Keep it short and conversational.",
	})
	if err != nil {
		log.WarnS(ctx, "IM reply generation failed", err,
			"conversation_id", convoID,
			"sender", sender)
		return
	}

	if _, err := e.askReconciler(ctx, ApplyIMMsg{
		ConversationID: convoID,
		SenderEmail:    sender,
		Content:        result.Text,
	}); err != nil {
		log.ErrorS(ctx, "IM reply commit failed", err,
			"conversation_id", convoID)
		return
	}

	viewers := remove(convo.ParticipantEmails, sender)
	e.notify(ctx, viewers, "im", fmt.Sprintf("New message from %s",
		e.store.ActorName(sender)))

	e.queueSideAction(ctx, result.Action)
}

// queueSideAction schedules a generation-carried side action to run shortly
// after the primary content, through the gate so pausing defers it.
func (e *Engine) queueSideAction(ctx context.Context,
	action gen.SideAction) {

	if action == nil {
		return
	}

	e.sched.Once(ctx, e.cfg.SideActionDelay,
		func(ctx context.Context) {
			_, err := e.gate.Do(ctx, SideActionCommand{
				Action: action,
			})
			if err != nil {
				log.ErrorS(ctx, "Side action failed", err)
			}
		})
}
