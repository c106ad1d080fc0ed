package signal

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/juncto/meet/internal/core"
	"github.com/juncto/meet/internal/domain"
	"github.com/juncto/meet/internal/protocol"
)

const (
	errRoomLocked = "Room is locked"
	errRoomFull   = "Room is full"
)

func (s *session) handleJoin(env protocol.Envelope) {
	var name string
	if err := env.Decode(&name); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		sendError(s.conn, "bad payload")
		return
	}

	s.mu.Lock()
	joined := s.id != "" || s.knockID != ""
	s.mu.Unlock()
	if joined {
		sendError(s.conn, "already joined")
		return
	}

	p, err := domain.NewParticipant(name)
	if err != nil {
		sendError(s.conn, err.Error())
		return
	}

	res := s.ctl.room.Admit(p)
	switch res.Status {
	case core.StatusLocked:
		log.Info().Str("module", "signal").Str("sid", s.sid).Msg("join rejected: locked")
		sendError(s.conn, errRoomLocked)
	case core.StatusFull:
		log.Info().Str("module", "signal").Str("sid", s.sid).Msg("join rejected: full")
		sendError(s.conn, errRoomFull)
	case core.StatusKnock:
		s.parkKnock(p)
	case core.StatusAdmitted:
		s.mu.Lock()
		s.id = p.ID
		s.mu.Unlock()
		s.admitted(*p, res.BecameHost)
	}
}

// parkKnock places the request in the waiting room, tells everyone someone
// is waiting, and starts the expiry timer racing the host's decision.
func (s *session) parkKnock(p *domain.Participant) {
	s.mu.Lock()
	s.knockID = p.ID
	s.mu.Unlock()

	s.ctl.room.AddKnock(&core.Knock{Participant: *p, Session: s, CreatedAt: time.Now()})
	log.Info().Str("module", "signal").Str("id", p.ID).Str("name", p.Name).Msg("knocking")

	s.ctl.broadcast(protocol.SKnockingParticipant, *p)
	sendEvent(s.conn, protocol.SKnocking, nil)

	go s.ctl.knockTimer(p.ID)
}

// knockTimer expires a pending knock. The timer always fires; when the slot
// was already consumed by a decision or a disconnect it is a no-op.
func (ctl *Controller) knockTimer(id string) {
	<-time.After(ctl.cfg.KnockTimeout)
	k, ok := ctl.room.RemoveKnock(id)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("id", id).Msg("knock expired")
	k.Session.Resolve()
	sendEvent(k.Session.Signal(), protocol.SAccessDenied, nil)
	ctl.broadcast(protocol.SKnockingParticipantLeft, id)
}

func (s *session) handleGrantAccess(id string, env protocol.Envelope) {
	if !s.ctl.room.IsHost(id) {
		log.Warn().Str("module", "signal").Str("id", id).Msg("grant by non-host ignored")
		return
	}
	var target string
	if err := env.Decode(&target); err != nil {
		return
	}
	k, ok := s.ctl.room.RemoveKnock(target)
	if !ok {
		// Lost the race against the timer or a withdrawal.
		return
	}
	s.ctl.broadcast(protocol.SKnockingParticipantLeft, target)
	k.Session.Grant(k.Participant)
}

func (s *session) handleDenyAccess(id string, env protocol.Envelope) {
	if !s.ctl.room.IsHost(id) {
		log.Warn().Str("module", "signal").Str("id", id).Msg("deny by non-host ignored")
		return
	}
	var target string
	if err := env.Decode(&target); err != nil {
		return
	}
	k, ok := s.ctl.room.RemoveKnock(target)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("id", target).Msg("knock denied")
	k.Session.Resolve()
	sendEvent(k.Session.Signal(), protocol.SAccessDenied, nil)
	s.ctl.broadcast(protocol.SKnockingParticipantLeft, target)
}

// Signal implements core.KnockerSession.
func (s *session) Signal() core.SignalConnection { return s.conn }

// Resolve implements core.KnockerSession: the knock ended without admission
// (deny or expiry), so clear the pending state and let the connection issue
// a fresh Join.
func (s *session) Resolve() {
	s.mu.Lock()
	s.knockID = ""
	s.mu.Unlock()
}

// Grant implements core.KnockerSession: the host approved this knocker, so
// promote it through the same admission path a direct join takes. Runs on
// the host's inbound loop; the session mutex arbitrates against a
// concurrent disconnect of the knocker and is held through the join
// broadcast so a racing departure is always announced after it.
func (s *session) Grant(p domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	res := s.ctl.room.Promote(&p)
	if res.Status == core.StatusFull {
		s.knockID = ""
		sendError(s.conn, errRoomFull)
		return
	}
	s.id = p.ID
	s.knockID = ""

	sendEvent(s.conn, protocol.SAccessGranted, nil)
	s.admitted(p, res.BecameHost)
}

// admitted subscribes the new participant to the fan-out stream and sends
// the private welcome snapshot. The snapshot is a base state: broadcast
// deltas may interleave with it and clients reconcile.
func (s *session) admitted(p domain.Participant, becameHost bool) {
	ctl := s.ctl
	sub := ctl.room.Stream().Subscribe(s.ctx)
	go s.forward(sub, p.ID)

	sendEvent(s.conn, protocol.SWelcome, p.ID)
	sendEvent(s.conn, protocol.SRoomUpdated, ctl.room.Config())
	sendEvent(s.conn, protocol.SParticipantList, ctl.room.Participants())
	for _, k := range ctl.room.Knocks() {
		sendEvent(s.conn, protocol.SKnockingParticipant, k)
	}
	sendEvent(s.conn, protocol.SChatHistory, ctl.room.ChatHistory())
	sendEvent(s.conn, protocol.SWhiteboardHistory, ctl.room.Whiteboard())
	sendEvent(s.conn, protocol.SBreakoutRooms, ctl.room.Breakouts())
	for _, poll := range ctl.room.Polls() {
		sendEvent(s.conn, protocol.SPollCreated, poll)
	}
	if url := ctl.room.VideoURL(); url != "" {
		sendEvent(s.conn, protocol.SVideoShared, url)
	}

	ctl.broadcast(protocol.SParticipantJoined, p)
	if becameHost {
		ctl.broadcast(protocol.SRoomUpdated, ctl.room.Config())
	}
	log.Info().Str("module", "signal").Str("id", p.ID).Str("name", p.Name).Bool("host", becameHost).Msg("participant joined")
}
