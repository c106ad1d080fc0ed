package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/juncto/meet/internal/config"
	"github.com/juncto/meet/internal/core"
	"github.com/juncto/meet/internal/metrics"
	"github.com/juncto/meet/internal/protocol"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Controller owns the session-protocol endpoint for the singleton room.
type Controller struct {
	room *core.Room
	cfg  *config.Config
}

func NewController(room *core.Room, cfg *config.Config) *Controller {
	return &Controller{room: room, cfg: cfg}
}

// wsConn is one client's transport endpoint: a private outbound queue
// drained by the write pump plus a closed flag so racing senders fail fast.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// session is the per-connection context. It starts with no participant
// identity; id or knockID is assigned once admission resolves.
type session struct {
	ctl    *Controller
	conn   *wsConn
	ctx    context.Context
	cancel context.CancelFunc
	sid    string // client token, used for logging only

	mu      sync.Mutex
	id      string // admitted participant id
	knockID string // pending knock id
	closed  bool
}

func (s *session) identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the connection and spawns its inbound and outbound
// loops. All participant state is cleaned up when either loop ends.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", sid).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &session{ctl: ctl, conn: conn, ctx: ctx, cancel: cancel, sid: sid}
	metrics.ActiveConnections.Inc()

	go s.writePump()
	go s.readPump()
}

// cleanup runs once when the connection terminates. Exactly one of the
// racing removal paths observes the entry as present and publishes the
// departure; everything else is a no-op.
func (s *session) cleanup() {
	s.cancel()
	s.mu.Lock()
	s.closed = true
	id, knockID := s.id, s.knockID
	s.mu.Unlock()

	switch {
	case id != "":
		if _, ok := s.ctl.room.RemoveParticipant(id); ok {
			s.ctl.broadcast(protocol.SParticipantLeft, id)
		}
	case knockID != "":
		if _, ok := s.ctl.room.RemoveKnock(knockID); ok {
			s.ctl.broadcast(protocol.SKnockingParticipantLeft, knockID)
		}
	}
	metrics.ActiveConnections.Dec()
	log.Info().Str("module", "signal").Str("sid", s.sid).Str("id", id).Msg("session cleaned up")
}

// publish serializes the payload once and appends it to the room stream.
func (ctl *Controller) publish(ev core.Event, typ string, payload any) {
	f, err := protocol.Marshal(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("type", typ).Msg("publish marshal")
		return
	}
	ev.Frame = f
	metrics.EventsPublished.WithLabelValues(typ).Inc()
	ctl.room.Stream().Publish(ev)
}

// broadcast publishes an unconditionally-delivered event.
func (ctl *Controller) broadcast(typ string, payload any) {
	ctl.publish(core.Event{Kind: core.KindBroadcast}, typ, payload)
}

func sendEvent(conn core.SignalConnection, typ string, payload any) {
	f, err := protocol.Marshal(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("type", typ).Msg("sendEvent marshal")
		return
	}
	_ = conn.TrySend(f)
}

func sendError(conn core.SignalConnection, msg string) {
	sendEvent(conn, protocol.SError, msg)
}
