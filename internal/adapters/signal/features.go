package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/juncto/meet/internal/domain"
	"github.com/juncto/meet/internal/protocol"
)

func (s *session) handleCreatePoll(id string, env protocol.Envelope) {
	var p domain.Poll
	if err := env.Decode(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad poll payload")
		return
	}
	stored := s.ctl.room.CreatePoll(p)
	s.ctl.broadcast(protocol.SPollCreated, stored)
	log.Info().Str("module", "signal").Str("poll", stored.ID).Str("by", id).Msg("poll created")
}

func (s *session) handleVote(id string, env protocol.Envelope) {
	var cmd protocol.VoteCommand
	if err := env.Decode(&cmd); err != nil {
		return
	}
	poll, ok := s.ctl.room.Vote(id, cmd.PollID, cmd.OptionID)
	if !ok {
		// Double vote or unknown poll/option: nothing changed.
		return
	}
	s.ctl.broadcast(protocol.SPollUpdated, poll)
}

func (s *session) handleDraw(id string, env protocol.Envelope) {
	var d domain.DrawAction
	if err := env.Decode(&d); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad draw payload")
		return
	}
	d.SenderID = id
	s.ctl.room.AppendDraw(d)
	s.ctl.broadcast(protocol.SDraw, d)
}

func (s *session) handleCreateBreakout(id string, env protocol.Envelope) {
	var name string
	if err := env.Decode(&name); err != nil {
		return
	}
	br := s.ctl.room.CreateBreakout(name)
	s.ctl.broadcast(protocol.SBreakoutRooms, s.ctl.room.Breakouts())
	log.Info().Str("module", "signal").Str("breakout", br.ID).Str("by", id).Msg("breakout room created")
}

// handleJoinBreakout moves the participant; nothing is announced, the
// sub-room filter alone changes what the mover sees from now on.
func (s *session) handleJoinBreakout(id string, env protocol.Envelope) {
	var roomID *string
	if err := env.Decode(&roomID); err != nil {
		return
	}
	target := ""
	if roomID != nil {
		target = *roomID
	}
	if !s.ctl.room.JoinBreakout(id, target) {
		log.Warn().Str("module", "signal").Str("id", id).Str("breakout", target).Msg("join breakout ignored")
	}
}
