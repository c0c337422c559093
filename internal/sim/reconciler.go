package sim

import (
	"context"

	"github.com/cubicool/cubicle/internal/baselib/actor"
	"github.com/cubicool/cubicle/internal/gen"
	"github.com/cubicool/cubicle/internal/world"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// ReconcilerKey is the service key for the reconciler actor.
var ReconcilerKey = actor.NewServiceKey[ReconcileRequest, ReconcileResponse](
	"reconciler",
)

// Reconciler is the single writer for simulation-driven state. Every
// generated email, IM, post and deadline resolution funnels through this
// actor, so concurrent triggers can never lose an append to a stale
// read-modify-replace race.
//
// This design follows the actor model:
//   - All state mutations happen within the actor's Receive method.
//   - Triggers communicate via Tell or Ask; no mutexes beyond the store's
//     own guard are involved.
type Reconciler struct {
	store   *world.Store
	gateway gen.Gateway
}

// NewReconciler creates the reconciler behavior over the given store. The
// gateway is used only to resolve image prompts into attachments.
func NewReconciler(store *world.Store, gateway gen.Gateway) *Reconciler {
	return &Reconciler{
		store:   store,
		gateway: gateway,
	}
}

// Receive implements actor.ActorBehavior by dispatching to type-specific
// handlers.
func (r *Reconciler) Receive(ctx context.Context,
	msg ReconcileRequest) fn.Result[ReconcileResponse] {

	switch m := msg.(type) {
	case ApplyEmailMsg:
		resp, err := r.handleApplyEmail(ctx, m)
		if err != nil {
			return fn.Err[ReconcileResponse](err)
		}
		return fn.Ok[ReconcileResponse](resp)

	case ClaimDeadlineMsg:
		return fn.Ok[ReconcileResponse](r.handleClaimDeadline(ctx, m))

	case CompleteProjectMsg:
		return fn.Ok[ReconcileResponse](r.handleCompleteProject(ctx, m))

	case ApplyIMMsg:
		resp, err := r.handleApplyIM(m)
		if err != nil {
			return fn.Err[ReconcileResponse](err)
		}
		return fn.Ok[ReconcileResponse](resp)

	case RemoveIMMsg:
		r.store.RemoveIMMessage(m.ConversationID, m.MessageID)
		return fn.Ok[ReconcileResponse](RemoveIMResponse{})

	case ApplyPostMsg:
		post := r.store.AddPost(
			m.AuthorEmail, m.Content, m.HighEngagement,
		)
		return fn.Ok[ReconcileResponse](ApplyPostResponse{Post: post})

	case ApplyCommentMsg:
		comment, err := r.store.AddComment(
			m.PostID, m.AuthorEmail, m.Content,
		)
		if err != nil {
			return fn.Err[ReconcileResponse](err)
		}
		return fn.Ok[ReconcileResponse](ApplyCommentResponse{
			Comment: comment,
		})

	default:
		return fn.Err[ReconcileResponse](ErrUnknownRequestType)
	}
}

// handleApplyEmail resolves an optional image prompt, then commits the email
// as an append or a fresh thread.
func (r *Reconciler) handleApplyEmail(ctx context.Context,
	msg ApplyEmailMsg) (ApplyEmailResponse, error) {

	email := msg.Email

	// Resolve the image before the message is finalized. A failed image
	// degrades to a text-only email rather than failing the commit.
	if msg.ImagePrompt != "" && r.gateway != nil {
		data, err := r.gateway.GenerateImage(ctx, msg.ImagePrompt)
		if err != nil {
			log.WarnS(ctx, "Image generation failed, sending "+
				"text-only email", err,
				"prompt", msg.ImagePrompt)
		} else {
			email.Attachments = append(email.Attachments,
				world.Attachment{Type: "image", Data: data})
		}
	}

	if msg.ThreadID == "" {
		thread := r.store.CreateThread(email, msg.HighEngagement)

		log.DebugS(ctx, "Created thread",
			"thread_id", thread.ID,
			"from", email.From,
			"participants", len(thread.Participants))

		return ApplyEmailResponse{Thread: thread, Created: true}, nil
	}

	thread, err := r.store.AppendEmail(msg.ThreadID, email)
	if err != nil {
		return ApplyEmailResponse{}, err
	}

	log.DebugS(ctx, "Appended email",
		"thread_id", thread.ID,
		"from", email.From,
		"num_emails", len(thread.Emails))

	return ApplyEmailResponse{Thread: thread}, nil
}

// handleClaimDeadline removes the event from the store and hands it to the
// caller. Claiming is the first step of deadline resolution; once claimed,
// the event cannot re-fire even if the follow-up generation fails.
func (r *Reconciler) handleClaimDeadline(ctx context.Context,
	msg ClaimDeadlineMsg) ClaimDeadlineResponse {

	event, ok := r.store.ClaimEvent(msg.EventID)
	if !ok {
		return ClaimDeadlineResponse{}
	}

	log.DebugS(ctx, "Claimed deadline event",
		"event_id", event.ID,
		"is_project", event.ProjectID != "")

	return ClaimDeadlineResponse{Event: event, Claimed: true}
}

// handleCompleteProject flips a project to Completed. A missing project is
// reported, not an error: the deadline may reference a project deleted in
// the meantime.
func (r *Reconciler) handleCompleteProject(ctx context.Context,
	msg CompleteProjectMsg) CompleteProjectResponse {

	err := r.store.SetProjectStatus(
		msg.ProjectID, world.ProjectCompleted,
	)
	if err != nil {
		log.DebugS(ctx, "Project deadline for missing project",
			"project_id", msg.ProjectID)

		return CompleteProjectResponse{}
	}

	return CompleteProjectResponse{Found: true}
}

// handleApplyIM appends an instant message to its conversation.
func (r *Reconciler) handleApplyIM(
	msg ApplyIMMsg) (ApplyIMResponse, error) {

	im, err := r.store.AppendIMMessage(
		msg.ConversationID, msg.SenderEmail, msg.Content,
		msg.IsTyping,
	)
	if err != nil {
		return ApplyIMResponse{}, err
	}

	return ApplyIMResponse{Message: im}, nil
}
