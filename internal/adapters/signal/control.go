package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/juncto/meet/internal/core"
	"github.com/juncto/meet/internal/domain"
	"github.com/juncto/meet/internal/protocol"
)

// handleToggle runs one of the host-only config toggles. The store enforces
// the host check; non-host attempts change nothing and get no reply.
func (s *session) handleToggle(id string, toggle func(string) (domain.RoomConfig, bool)) {
	cfg, ok := toggle(id)
	if !ok {
		log.Warn().Str("module", "signal").Str("id", id).Msg("config toggle by non-host ignored")
		return
	}
	s.ctl.broadcast(protocol.SRoomUpdated, cfg)
}

// handleKick removes the target and publishes the paired events: Kicked is
// seen only by the target (closing its connection), ParticipantLeft by all.
func (s *session) handleKick(id string, env protocol.Envelope) {
	var target string
	if err := env.Decode(&target); err != nil {
		return
	}
	if _, ok := s.ctl.room.Kick(id, target); !ok {
		log.Warn().Str("module", "signal").Str("id", id).Str("target", target).Msg("kick ignored")
		return
	}
	s.ctl.publish(core.Event{Kind: core.KindKicked, Target: target}, protocol.SKicked, target)
	s.ctl.broadcast(protocol.SParticipantLeft, target)
}

func (s *session) handleEndMeeting(id string) {
	if !s.ctl.room.IsHost(id) {
		log.Warn().Str("module", "signal").Str("id", id).Msg("end meeting by non-host ignored")
		return
	}
	log.Info().Str("module", "signal").Str("id", id).Msg("meeting ended by host")
	s.ctl.publish(core.Event{Kind: core.KindRoomEnded}, protocol.SRoomEnded, nil)
}

func (s *session) handleUpdateProfile(id string, env protocol.Envelope) {
	var name string
	if err := env.Decode(&name); err != nil {
		return
	}
	var nameErr error
	p, ok := s.ctl.room.UpdateParticipant(id, func(p *domain.Participant) { nameErr = p.SetName(name) })
	if !ok {
		return
	}
	if nameErr != nil {
		sendError(s.conn, "invalid display name")
		return
	}
	s.ctl.broadcast(protocol.SParticipantUpdated, p)
}

func (s *session) handleToggleHand(id string) {
	p, ok := s.ctl.room.UpdateParticipant(id, func(p *domain.Participant) { p.IsHandRaised = !p.IsHandRaised })
	if !ok {
		return
	}
	s.ctl.broadcast(protocol.SParticipantUpdated, p)
}

func (s *session) handleToggleScreenShare(id string) {
	p, ok := s.ctl.room.UpdateParticipant(id, func(p *domain.Participant) { p.IsSharingScreen = !p.IsSharingScreen })
	if !ok {
		return
	}
	s.ctl.broadcast(protocol.SParticipantUpdated, p)
}

func (s *session) handleReaction(id string, env protocol.Envelope) {
	var emoji string
	if err := env.Decode(&emoji); err != nil {
		return
	}
	s.ctl.broadcast(protocol.SReaction, protocol.ReactionEvent{SenderID: id, Emoji: emoji})
}

func (s *session) handleStartShareVideo(id string, env protocol.Envelope) {
	if !s.ctl.room.IsHost(id) {
		log.Warn().Str("module", "signal").Str("id", id).Msg("video share by non-host ignored")
		return
	}
	var url string
	if err := env.Decode(&url); err != nil || url == "" {
		return
	}
	s.ctl.room.SetVideoURL(url)
	s.ctl.broadcast(protocol.SVideoShared, url)
}

func (s *session) handleStopShareVideo(id string) {
	if !s.ctl.room.IsHost(id) {
		return
	}
	s.ctl.room.ClearVideoURL()
	s.ctl.broadcast(protocol.SVideoStopped, nil)
}

func (s *session) handleSpeaking(id string, env protocol.Envelope) {
	var speaking bool
	if err := env.Decode(&speaking); err != nil {
		return
	}
	s.ctl.broadcast(protocol.SPeerSpeaking, protocol.PeerSpeakingEvent{UserID: id, Speaking: speaking})
}
