package signal

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/juncto/meet/internal/core"
	"github.com/juncto/meet/internal/metrics"
	"github.com/juncto/meet/internal/protocol"
)

const writeWait = 5 * time.Second

// writePump drains the private outbound queue, serializing each frame to
// the wire in order, and keeps the connection alive with pings.
func (s *session) writePump() {
	ticker := time.NewTicker(s.ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case <-s.ctx.Done():
			log.Info().Str("module", "signal").Str("sid", s.sid).Msg("writePump ctx done")
			return
		case data, ok := <-s.conn.send:
			if !ok {
				log.Warn().Str("module", "signal").Str("sid", s.sid).Msg("writePump channel closed")
				return
			}
			if err := s.conn.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := s.conn.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := s.conn.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump decodes client commands and dispatches them. Its exit, whatever
// the cause, is the single termination path for the session.
func (s *session) readPump() {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", s.sid).Msg("readPump closing")
		s.conn.Close()
		s.cleanup()
	}()

	pongWait := s.ctl.cfg.PingPeriod * 10 / 9
	s.conn.conn.SetReadLimit(s.ctl.cfg.ReadLimit)
	_ = s.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.conn.SetPongHandler(func(string) error {
		return s.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-s.ctx.Done():
			log.Info().Str("module", "signal").Str("sid", s.sid).Msg("readPump ctx done")
			return
		default:
			_, data, err := s.conn.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", s.sid).Msg("readPump read error")
				return
			}
			s.dispatch(data)
		}
	}
}

// dispatch routes one decoded command. Malformed input is logged and
// dropped; the connection stays open.
func (s *session) dispatch(data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	if env.Type == protocol.CJoin {
		s.handleJoin(env)
		return
	}

	id := s.identity()
	if id == "" {
		// Everything except Join requires an admitted identity.
		log.Warn().Str("module", "signal").Str("sid", s.sid).Str("type", env.Type).Msg("command before admission")
		return
	}

	switch env.Type {
	case protocol.CChat:
		s.handleChat(id, env)
	case protocol.CTyping:
		s.handleTyping(id, env)
	case protocol.CToggleRoomLock:
		s.handleToggle(id, s.ctl.room.ToggleLock)
	case protocol.CToggleRecording:
		s.handleToggle(id, s.ctl.room.ToggleRecording)
	case protocol.CToggleLobby:
		s.handleToggle(id, s.ctl.room.ToggleLobby)
	case protocol.CGrantAccess:
		s.handleGrantAccess(id, env)
	case protocol.CDenyAccess:
		s.handleDenyAccess(id, env)
	case protocol.CKick:
		s.handleKick(id, env)
	case protocol.CEndMeeting:
		s.handleEndMeeting(id)
	case protocol.CCreateBreakoutRoom:
		s.handleCreateBreakout(id, env)
	case protocol.CJoinBreakoutRoom:
		s.handleJoinBreakout(id, env)
	case protocol.CCreatePoll:
		s.handleCreatePoll(id, env)
	case protocol.CVote:
		s.handleVote(id, env)
	case protocol.CDraw:
		s.handleDraw(id, env)
	case protocol.CUpdateProfile:
		s.handleUpdateProfile(id, env)
	case protocol.CReaction:
		s.handleReaction(id, env)
	case protocol.CToggleRaiseHand:
		s.handleToggleHand(id)
	case protocol.CToggleScreenShare:
		s.handleToggleScreenShare(id)
	case protocol.CStartShareVideo:
		s.handleStartShareVideo(id, env)
	case protocol.CStopShareVideo:
		s.handleStopShareVideo(id)
	case protocol.CSpeaking:
		s.handleSpeaking(id, env)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown command")
	}
}

// forward filters the shared stream down to what this participant may see
// and pushes it onto the private outbound queue. Delivery is best-effort:
// backpressure drops the frame, a closed connection ends the loop.
func (s *session) forward(sub *core.Subscription, pid string) {
	var seenLag uint64
	for {
		ev, ok := sub.Next(s.ctx)
		if !ok {
			return
		}
		if l := sub.Lagged(); l != seenLag {
			metrics.LaggedEvents.Add(float64(l - seenLag))
			log.Warn().Str("module", "signal").Str("id", pid).Uint64("skipped", l-seenLag).Msg("subscriber lagged, skipped forward")
			seenLag = l
		}
		if !ev.DeliverableTo(pid, s.ctl.room.Location(pid)) {
			continue
		}
		if err := s.conn.TrySend(ev.Frame); err != nil {
			if errors.Is(err, ErrBackpressure) {
				log.Debug().Str("module", "signal").Str("id", pid).Msg("frame dropped on backpressure")
				continue
			}
			return
		}
		if ev.Terminal() {
			s.conn.Close()
			return
		}
	}
}
