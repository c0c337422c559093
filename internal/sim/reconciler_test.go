package sim

import (
	"context"
	"testing"
	"time"

	"github.com/cubicool/cubicle/internal/gen"
	"github.com/cubicool/cubicle/internal/world"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(mock *gen.MockGateway) (*Reconciler, *world.Store) {
	store := world.NewStore(world.NewClock(
		time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC),
	))

	return NewReconciler(store, mock), store
}

// TestReconcilerImageAttachment verifies an image prompt is resolved into
// an attachment before the email commits.
func TestReconcilerImageAttachment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.ImageResults = []string{"encoded-image-bytes"}

	reconciler, _ := newTestReconciler(mock)

	res := reconciler.Receive(ctx, ApplyEmailMsg{
		Email: world.Email{
			From:    "alice@test.com",
			To:      []string{"bob@test.com"},
			Subject: "Vacation pics",
		},
		ImagePrompt: "a beach at sunset",
	})

	resp, err := res.Unpack()
	require.NoError(t, err)

	thread := resp.(ApplyEmailResponse).Thread
	require.Len(t, thread.Emails[0].Attachments, 1)
	require.Equal(t, "image", thread.Emails[0].Attachments[0].Type)
	require.Equal(t, []string{"a beach at sunset"}, mock.ImageCalls)
}

// TestReconcilerImageFailureDegrades verifies a failed image generation
// still commits the email, text only.
func TestReconcilerImageFailureDegrades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := gen.NewMockGateway()
	mock.Fail = true

	reconciler, store := newTestReconciler(mock)

	res := reconciler.Receive(ctx, ApplyEmailMsg{
		Email: world.Email{
			From:    "alice@test.com",
			To:      []string{"bob@test.com"},
			Subject: "Vacation pics",
		},
		ImagePrompt: "a beach at sunset",
	})

	resp, err := res.Unpack()
	require.NoError(t, err)

	thread := resp.(ApplyEmailResponse).Thread
	require.Empty(t, thread.Emails[0].Attachments)
	require.Equal(t, 1, store.ThreadCount())
}

// TestReconcilerAppendUnknownThread verifies appending to a missing thread
// surfaces the store error.
func TestReconcilerAppendUnknownThread(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reconciler, _ := newTestReconciler(gen.NewMockGateway())

	res := reconciler.Receive(ctx, ApplyEmailMsg{
		ThreadID: "thread-does-not-exist",
		Email: world.Email{
			From: "alice@test.com",
			To:   []string{"bob@test.com"},
		},
	})

	_, err := res.Unpack()
	require.ErrorIs(t, err, world.ErrThreadNotFound)
}

// TestReconcilerClaimIsSingleUse verifies the second claim of the same
// event reports not claimed.
func TestReconcilerClaimIsSingleUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reconciler, store := newTestReconciler(gen.NewMockGateway())

	event, err := store.AddEvent(world.Event{
		Start:    time.Date(2024, 5, 21, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 5, 21, 9, 0, 0, 0, time.UTC),
		IsSystem: true,
	})
	require.NoError(t, err)

	res := reconciler.Receive(ctx, ClaimDeadlineMsg{EventID: event.ID})
	resp, err := res.Unpack()
	require.NoError(t, err)
	require.True(t, resp.(ClaimDeadlineResponse).Claimed)

	res = reconciler.Receive(ctx, ClaimDeadlineMsg{EventID: event.ID})
	resp, err = res.Unpack()
	require.NoError(t, err)
	require.False(t, resp.(ClaimDeadlineResponse).Claimed)
}
