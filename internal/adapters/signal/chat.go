package signal

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/juncto/meet/internal/core"
	"github.com/juncto/meet/internal/domain"
	"github.com/juncto/meet/internal/protocol"
)

// handleChat records and fans out one chat message. The event is scoped to
// the sender's sub-room; addressed messages additionally reach only the
// recipient and the sender. Only public main-room messages are persisted.
func (s *session) handleChat(id string, env protocol.Envelope) {
	var cmd protocol.ChatCommand
	if err := env.Decode(&cmd); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}

	msg := domain.ChatMessage{
		UserID:      id,
		Content:     cmd.Content,
		RecipientID: cmd.RecipientID,
		Timestamp:   uint64(time.Now().Unix()),
		Attachment:  cmd.Attachment,
	}
	subRoom, persisted := s.ctl.room.AppendChat(msg)

	recipient := ""
	if cmd.RecipientID != nil {
		recipient = *cmd.RecipientID
	}
	s.ctl.publish(core.Event{
		Kind:      core.KindChat,
		SubRoom:   subRoom,
		SenderID:  id,
		Recipient: recipient,
	}, protocol.SChat, protocol.ChatEvent{Message: msg, SubRoom: protocol.SubRoom(subRoom)})
	log.Debug().Str("module", "signal").Str("from", id).Bool("persisted", persisted).Msg("chat")
}

// handleTyping rebroadcasts a typing indicator scoped like chat.
func (s *session) handleTyping(id string, env protocol.Envelope) {
	var typing bool
	if err := env.Decode(&typing); err != nil {
		return
	}
	loc := s.ctl.room.Location(id)
	s.ctl.publish(core.Event{
		Kind:     core.KindTyping,
		SubRoom:  loc,
		SenderID: id,
	}, protocol.SPeerTyping, protocol.PeerTypingEvent{UserID: id, Typing: typing, SubRoom: protocol.SubRoom(loc)})
}
