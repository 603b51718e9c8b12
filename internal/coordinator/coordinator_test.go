package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobtread/obs-mod-toys/internal/object"
)

func startCoordinator(t *testing.T) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := Start(ctx, Config{})
	t.Cleanup(h.Close)
	return h
}

func recvNotification(t *testing.T, h *Handle) Notification {
	t.Helper()
	select {
	case n := <-h.Notifications():
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}
	}
}

func requireNoNotification(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case n := <-h.Notifications():
		t.Fatalf("unexpected notification: %+v", n)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCreateMintsServerAssignedID(t *testing.T) {
	ctx := context.Background()
	h := startCoordinator(t)
	sid := uuid.New()

	clientID := uuid.New()
	require.NoError(t, h.Submit(ctx, sid, CreateObject{
		ID:              clientID, // must be replaced, never trusted
		Object:          object.Text{Text: "hi"},
		InitialPosition: object.Position{X: 0, Y: 0},
	}))

	n := recvNotification(t, h)
	assert.Equal(t, sid, n.SessionID)

	create, ok := n.Action.(CreateObject)
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, create.ID)
	assert.NotEqual(t, clientID, create.ID)

	snap, err := h.RequestSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, create.ID, snap[0].ID)
}

func TestActionsApplyInSubmissionOrder(t *testing.T) {
	ctx := context.Background()
	h := startCoordinator(t)
	sid := uuid.New()

	require.NoError(t, h.Submit(ctx, sid, CreateObject{
		Object:          object.Text{Text: "a"},
		InitialPosition: object.Position{X: 1, Y: 1},
	}))
	created := recvNotification(t, h).Action.(CreateObject)

	require.NoError(t, h.Submit(ctx, sid, MoveObject{ID: created.ID, Position: object.Position{X: 2, Y: 2}}))
	require.NoError(t, h.Submit(ctx, sid, MoveObject{ID: created.ID, Position: object.Position{X: 3, Y: 3}}))

	// Last write wins under total ordering
	snap, err := h.RequestSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, object.Position{X: 3, Y: 3}, snap[0].Object.Position)
}

func TestSnapshotReflectsPriorActionsOnly(t *testing.T) {
	ctx := context.Background()
	h := startCoordinator(t)
	sid := uuid.New()

	require.NoError(t, h.Submit(ctx, sid, CreateObject{
		Object:          object.Text{Text: "a"},
		InitialPosition: object.Position{},
	}))

	// The snapshot query is ordered after the create and before anything
	// submitted later.
	snap, err := h.RequestSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 1)

	require.NoError(t, h.Submit(ctx, sid, ClearObjects{}))

	snap, err = h.RequestSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestMoveAbsentBroadcastsWithoutMutating(t *testing.T) {
	ctx := context.Background()
	h := startCoordinator(t)
	sid := uuid.New()
	ghost := uuid.New()

	require.NoError(t, h.Submit(ctx, sid, MoveObject{ID: ghost, Position: object.Position{X: 5, Y: 5}}))

	n := recvNotification(t, h)
	move, ok := n.Action.(MoveObject)
	require.True(t, ok)
	assert.Equal(t, ghost, move.ID)

	// Exactly one notification per action
	requireNoNotification(t, h)

	snap, err := h.RequestSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestRemoveAbsentBroadcastsWithoutMutating(t *testing.T) {
	ctx := context.Background()
	h := startCoordinator(t)
	sid := uuid.New()
	ghost := uuid.New()

	require.NoError(t, h.Submit(ctx, sid, RemoveObject{ID: ghost}))

	n := recvNotification(t, h)
	remove, ok := n.Action.(RemoveObject)
	require.True(t, ok)
	assert.Equal(t, ghost, remove.ID)
	requireNoNotification(t, h)
}

func TestClearEmptiesTheStore(t *testing.T) {
	ctx := context.Background()
	h := startCoordinator(t)
	sid := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, h.Submit(ctx, sid, CreateObject{
			Object:          object.Text{Text: "x"},
			InitialPosition: object.Position{},
		}))
	}
	require.NoError(t, h.Submit(ctx, sid, ClearObjects{}))

	snap, err := h.RequestSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestEveryHandleReceivesEveryNotification(t *testing.T) {
	ctx := context.Background()
	h := startCoordinator(t)
	other := h.Clone()
	defer other.Close()
	sid := uuid.New()

	require.NoError(t, h.Submit(ctx, sid, ClearObjects{}))

	// Echo suppression is the session handler's job; at the coordinator
	// level the originator's handle receives its own notification too.
	n := recvNotification(t, h)
	assert.Equal(t, sid, n.SessionID)
	n = recvNotification(t, other)
	assert.Equal(t, sid, n.SessionID)
}

func TestCloneSeesNoHistory(t *testing.T) {
	ctx := context.Background()
	h := startCoordinator(t)
	sid := uuid.New()

	require.NoError(t, h.Submit(ctx, sid, ClearObjects{}))
	recvNotification(t, h) // action fully processed

	late := h.Clone()
	defer late.Close()
	requireNoNotification(t, late)
}

func TestSubmitHonorsContextCancellation(t *testing.T) {
	// A coordinator that never runs leaves the inbox to fill up.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := Start(ctx, Config{InboxCapacity: 1})
	defer h.Close()
	time.Sleep(10 * time.Millisecond) // let the run loop observe cancellation
	sid := uuid.New()

	// First submit lands in the buffered channel even with no consumer.
	require.NoError(t, h.Submit(context.Background(), sid, ClearObjects{}))

	submitCtx, submitCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer submitCancel()
	err := h.Submit(submitCtx, sid, ClearObjects{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestSnapshotHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := Start(ctx, Config{})
	defer h.Close()
	time.Sleep(10 * time.Millisecond) // let the run loop observe cancellation

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer reqCancel()
	_, err := h.RequestSnapshot(reqCtx)
	assert.Error(t, err)
}
