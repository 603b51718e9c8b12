// Package coordinator serializes every mutation of the shared canvas.
//
// A single goroutine owns the object store and drains one bounded inbound
// channel, so actions from all sessions are applied in one total order with
// no locking. Each accepted action is broadcast exactly once, whether or not
// it changed the store.
package coordinator

import (
	"context"

	"github.com/google/uuid"

	"github.com/jacobtread/obs-mod-toys/internal/metrics"
	"github.com/jacobtread/obs-mod-toys/internal/object"
)

// Capacities mirror the pre-existing deployment defaults.
const (
	DefaultInboxCapacity   = 50
	DefaultBroadcastBuffer = 10
)

// Config sizes the coordinator's channels. Zero values fall back to the
// defaults above.
type Config struct {
	InboxCapacity   int
	BroadcastBuffer int
}

// request is one item on the inbound channel: either an action to apply or
// a snapshot query.
type request interface {
	isRequest()
}

type actionRequest struct {
	sessionID uuid.UUID
	action    Action
}

func (actionRequest) isRequest() {}

type snapshotRequest struct {
	reply chan []object.DefinedObjectWithID
}

func (snapshotRequest) isRequest() {}

// Coordinator is the sole owner of the object store. It is only reachable
// through handles.
type Coordinator struct {
	inbox       chan request
	broadcaster *Broadcaster
	store       *object.Store
}

// Handle is a cloneable capability for talking to a running coordinator: a
// shared sender onto its inbound channel plus a private broadcast
// subscription.
type Handle struct {
	inbox       chan<- request
	sub         *Subscription
	broadcaster *Broadcaster
}

// Start launches the coordinator goroutine and returns the first handle to
// it. The goroutine runs until ctx is cancelled.
func Start(ctx context.Context, cfg Config) *Handle {
	if cfg.InboxCapacity <= 0 {
		cfg.InboxCapacity = DefaultInboxCapacity
	}
	if cfg.BroadcastBuffer <= 0 {
		cfg.BroadcastBuffer = DefaultBroadcastBuffer
	}

	c := &Coordinator{
		inbox:       make(chan request, cfg.InboxCapacity),
		broadcaster: NewBroadcaster(cfg.BroadcastBuffer),
		store:       object.NewStore(),
	}

	go c.run(ctx)

	return &Handle{
		inbox:       c.inbox,
		sub:         c.broadcaster.Subscribe(),
		broadcaster: c.broadcaster,
	}
}

// run drains the inbound channel one request at a time. A failed reply to a
// single snapshot query never brings the loop down.
func (c *Coordinator) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.inbox:
			switch r := req.(type) {
			case actionRequest:
				c.apply(r.sessionID, r.action)
			case snapshotRequest:
				// The querier may already have given up; do not block on it.
				select {
				case r.reply <- c.store.Snapshot():
				default:
				}
			}
		}
	}
}

// apply mutates the store and broadcasts the action. Move and remove against
// absent ids leave the store untouched but the notification still mirrors
// the request; clients rely on getting an acknowledgment even for no-ops.
func (c *Coordinator) apply(sessionID uuid.UUID, action Action) {
	switch a := action.(type) {
	case CreateObject:
		a.ID = uuid.New()
		c.store.Insert(a.ID, object.DefinedObject{
			Position: a.InitialPosition,
			Object:   a.Object,
		})
		action = a
	case MoveObject:
		c.store.MoveIfPresent(a.ID, a.Position)
	case RemoveObject:
		c.store.Remove(a.ID)
	case ClearObjects:
		c.store.Clear()
	}

	metrics.ActionsProcessed.WithLabelValues(action.Kind()).Inc()

	dropped := c.broadcaster.Publish(Notification{SessionID: sessionID, Action: action})
	if dropped > 0 {
		metrics.NotificationsDropped.Add(float64(dropped))
	}
}

// Clone returns a handle with its own broadcast subscription. The clone only
// sees notifications published after this call.
func (h *Handle) Clone() *Handle {
	return &Handle{
		inbox:       h.inbox,
		sub:         h.broadcaster.Subscribe(),
		broadcaster: h.broadcaster,
	}
}

// Submit enqueues an action for serialized processing. It returns once the
// action is accepted onto the inbound channel and does not wait for it to be
// applied; a full channel blocks until there is room or ctx is cancelled.
func (h *Handle) Submit(ctx context.Context, sessionID uuid.UUID, action Action) error {
	select {
	case h.inbox <- actionRequest{sessionID: sessionID, action: action}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestSnapshot returns the store contents as of the moment the query is
// dequeued, reflecting every action submitted before it.
func (h *Handle) RequestSnapshot(ctx context.Context) ([]object.DefinedObjectWithID, error) {
	reply := make(chan []object.DefinedObjectWithID, 1)

	select {
	case h.inbox <- snapshotRequest{reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case objects := <-reply:
		return objects, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Notifications returns this handle's private broadcast stream.
func (h *Handle) Notifications() <-chan Notification {
	return h.sub.Notifications()
}

// Close releases the handle's broadcast subscription. The shared inbound
// channel is unaffected.
func (h *Handle) Close() {
	h.sub.Close()
}
