// Package session runs one handler per live WebSocket connection,
// translating client messages into coordinator submissions and relaying the
// broadcast stream back out with the session's own echoes filtered.
package session

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/jacobtread/obs-mod-toys/internal/coordinator"
	"github.com/jacobtread/obs-mod-toys/internal/metrics"
	"github.com/jacobtread/obs-mod-toys/internal/middleware"
	"github.com/jacobtread/obs-mod-toys/internal/object"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // Send pings at 90% of pong deadline
	writeWait  = 10 * time.Second
)

// Handler drives a single session. The session identifier is minted at
// construction, never reused, and is the sole basis for echo suppression.
type Handler struct {
	id        uuid.UUID
	conn      *websocket.Conn
	handle    *coordinator.Handle
	validator *object.Validator
	limits    *middleware.Limits
	limiter   *rate.Limiter
	color     string

	// authenticated flips once on the first Authenticate message and never
	// reverts while the connection lives.
	authenticated bool
}

// New creates a handler for a freshly upgraded connection. The handle must
// be a dedicated clone; the handler owns it and closes it on exit.
func New(conn *websocket.Conn, handle *coordinator.Handle, validator *object.Validator, limits *middleware.Limits, color string) *Handler {
	return &Handler{
		id:        uuid.New(),
		conn:      conn,
		handle:    handle,
		validator: validator,
		limits:    limits,
		limiter:   rate.NewLimiter(rate.Limit(limits.MessagesPerSecond), limits.BurstSize),
		color:     color,
	}
}

// ID returns the session identifier.
func (h *Handler) ID() uuid.UUID {
	return h.id
}

// Run drives the session until the connection dies, an undecodable frame
// arrives, or a write fails. All session state and every socket write live
// on this goroutine; the read pump only feeds frames in. The socket read and
// the broadcast subscription race fairly in the select below.
func (h *Handler) Run(ctx context.Context) {
	defer h.conn.Close()
	defer h.handle.Close()

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	done := make(chan struct{})
	defer close(done)

	frames := make(chan []byte)
	readErr := make(chan error, 1)
	go h.readPump(done, frames, readErr)

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-readErr:
			log.Printf("Session %s: read: %v", h.id, err)
			return

		case msg := <-frames:
			if !h.limiter.Allow() {
				log.Printf("Rate limit exceeded for session: %s", h.id)
				continue // Drop message
			}
			if err := h.handleClientMessage(ctx, msg); err != nil {
				log.Printf("Session %s: %v", h.id, err)
				return
			}

		case n, ok := <-h.handle.Notifications():
			if !ok {
				return
			}
			if n.SessionID == h.id {
				continue // Never echo a session's own action back
			}
			if err := h.writeActionReported(n.Action); err != nil {
				log.Printf("Session %s: write broadcast: %v", h.id, err)
				return
			}

		case <-pingTicker.C:
			h.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := h.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection dead
			}
		}
	}
}

// readPump feeds inbound frames to the run loop. Frames over the size limit
// fail the read and end the session.
func (h *Handler) readPump(done <-chan struct{}, frames chan<- []byte, readErr chan<- error) {
	h.conn.SetReadLimit(h.limits.MaxMessageSize)
	h.conn.SetReadDeadline(time.Now().Add(pongWait))
	h.conn.SetPongHandler(func(string) error {
		h.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := h.conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		select {
		case frames <- msg:
		case <-done:
			return
		}
	}
}

// handleClientMessage dispatches one decoded frame. A returned error
// terminates the session; recoverable conditions reply with an Error
// message instead.
func (h *Handler) handleClientMessage(ctx context.Context, raw []byte) error {
	msg, err := decodeClientMessage(raw)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case authenticateMessage:
		// Credentials are accepted unconditionally for now.
		h.authenticated = true
		reply, err := encodeAuthenticated(h.id, h.color)
		if err != nil {
			return err
		}
		return h.write(reply)

	case serverActionMessage:
		if !h.authenticated {
			return h.writeError("not authenticated")
		}
		action, err := h.vetAction(m.Action)
		if err != nil {
			return h.writeError(err.Error())
		}
		return h.handle.Submit(ctx, h.id, action)

	case requestObjectsMessage:
		// Read-only, permitted regardless of authentication.
		objects, err := h.handle.RequestSnapshot(ctx)
		if err != nil {
			return err
		}
		reply, err := encodeObjects(objects)
		if err != nil {
			return err
		}
		return h.write(reply)
	}

	return nil
}

// vetAction validates and sanitizes the payload of create actions. Move,
// remove and clear carry nothing worth vetting.
func (h *Handler) vetAction(action coordinator.Action) (coordinator.Action, error) {
	create, ok := action.(coordinator.CreateObject)
	if !ok {
		return action, nil
	}

	obj, err := h.validator.Vet(create.Object)
	if err != nil {
		return nil, err
	}
	create.Object = obj
	return create, nil
}

func (h *Handler) writeActionReported(action coordinator.Action) error {
	msg, err := encodeActionReported(action)
	if err != nil {
		return err
	}
	return h.write(msg)
}

// writeError reports a recoverable failure to the client. The connection
// stays open unless the write itself fails.
func (h *Handler) writeError(message string) error {
	msg, err := encodeError(message)
	if err != nil {
		return err
	}
	return h.write(msg)
}

func (h *Handler) write(msg []byte) error {
	h.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return h.conn.WriteMessage(websocket.TextMessage, msg)
}
