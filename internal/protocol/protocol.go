// Package protocol defines the session-protocol envelope and message type
// names. The wire format is fixed by the existing clients: a JSON object
// with a "type" tag and an optional "payload", PascalCase type names,
// snake_case fields.
package protocol

import (
	"encoding/json"

	"github.com/juncto/meet/internal/domain"
)

// Client-to-server message types.
const (
	CJoin               = "Join"
	CChat               = "Chat"
	CToggleRoomLock     = "ToggleRoomLock"
	CToggleRecording    = "ToggleRecording"
	CToggleLobby        = "ToggleLobby"
	CGrantAccess        = "GrantAccess"
	CDenyAccess         = "DenyAccess"
	CKick               = "Kick"
	CEndMeeting         = "EndMeeting"
	CCreateBreakoutRoom = "CreateBreakoutRoom"
	CJoinBreakoutRoom   = "JoinBreakoutRoom"
	CCreatePoll         = "CreatePoll"
	CVote               = "Vote"
	CDraw               = "Draw"
	CUpdateProfile      = "UpdateProfile"
	CReaction           = "Reaction"
	CToggleRaiseHand    = "ToggleRaiseHand"
	CToggleScreenShare  = "ToggleScreenShare"
	CTyping             = "Typing"
	CStartShareVideo    = "StartShareVideo"
	CStopShareVideo     = "StopShareVideo"
	CSpeaking           = "Speaking"
)

// Server-to-client message types.
const (
	SWelcome                 = "Welcome"
	SRoomUpdated             = "RoomUpdated"
	SChat                    = "Chat"
	SChatHistory             = "ChatHistory"
	SParticipantJoined       = "ParticipantJoined"
	SParticipantLeft         = "ParticipantLeft"
	SParticipantUpdated      = "ParticipantUpdated"
	SParticipantList         = "ParticipantList"
	SKnockingParticipant     = "KnockingParticipant"
	SKnockingParticipantLeft = "KnockingParticipantLeft"
	SKnocking                = "Knocking"
	SAccessGranted           = "AccessGranted"
	SAccessDenied            = "AccessDenied"
	SKicked                  = "Kicked"
	SRoomEnded               = "RoomEnded"
	SReaction                = "Reaction"
	SPollCreated             = "PollCreated"
	SPollUpdated             = "PollUpdated"
	SDraw                    = "Draw"
	SWhiteboardHistory       = "WhiteboardHistory"
	SBreakoutRooms           = "BreakoutRooms"
	SPeerTyping              = "PeerTyping"
	SPeerSpeaking            = "PeerSpeaking"
	SVideoShared             = "VideoShared"
	SVideoStopped            = "VideoStopped"
	SError                   = "Error"
)

// Envelope is the tagged union carried on the wire. Payload is absent for
// unit variants.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Marshal builds a wire frame for the given type and payload. A nil payload
// produces a unit variant.
func Marshal(typ string, payload any) ([]byte, error) {
	env := Envelope{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// Decode unmarshals an envelope payload into out. A missing payload leaves
// out at its zero value, matching how unit variants travel.
func (e Envelope) Decode(out any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, out)
}

// ChatCommand is the Chat client payload.
type ChatCommand struct {
	Content     string                 `json:"content"`
	RecipientID *string                `json:"recipient_id,omitempty"`
	Attachment  *domain.FileAttachment `json:"attachment,omitempty"`
}

// VoteCommand is the Vote client payload.
type VoteCommand struct {
	PollID   string `json:"poll_id"`
	OptionID uint32 `json:"option_id"`
}

// ChatEvent is the Chat server payload; SubRoom nil means main room.
type ChatEvent struct {
	Message domain.ChatMessage `json:"message"`
	SubRoom *string            `json:"sub_room,omitempty"`
}

// ReactionEvent is the Reaction server payload.
type ReactionEvent struct {
	SenderID string `json:"sender_id"`
	Emoji    string `json:"emoji"`
}

// PeerTypingEvent is the PeerTyping server payload.
type PeerTypingEvent struct {
	UserID  string  `json:"user_id"`
	Typing  bool    `json:"typing"`
	SubRoom *string `json:"sub_room,omitempty"`
}

// PeerSpeakingEvent is the PeerSpeaking server payload.
type PeerSpeakingEvent struct {
	UserID   string `json:"user_id"`
	Speaking bool   `json:"speaking"`
}

// SubRoom converts an internal location ("" = main) to its wire form.
func SubRoom(location string) *string {
	if location == "" {
		return nil
	}
	return &location
}
