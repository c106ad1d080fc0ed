package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juncto/meet/internal/domain"
)

// roundTrip marshals a frame, decodes it back, and returns the envelope so
// callers can decode the payload into out.
func roundTrip(t *testing.T, typ string, payload, out any) Envelope {
	t.Helper()
	frame, err := Marshal(typ, payload)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, typ, env.Type)
	if out != nil {
		require.NoError(t, env.Decode(out))
	}
	return env
}

func strPtr(s string) *string { return &s }

func TestUnitVariantsHaveNoPayload(t *testing.T) {
	for _, typ := range []string{
		CToggleRoomLock, CToggleRecording, CToggleLobby, CEndMeeting,
		CToggleRaiseHand, CToggleScreenShare, CStopShareVideo,
		SKnocking, SAccessGranted, SAccessDenied, SRoomEnded, SVideoStopped,
	} {
		frame, err := Marshal(typ, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"`+typ+`"}`, string(frame))

		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		assert.Equal(t, typ, env.Type)
		assert.Empty(t, env.Payload)
	}
}

func TestChatMessageRoundTrip(t *testing.T) {
	msg := domain.ChatMessage{
		UserID:    "user1",
		Content:   "Hello",
		Timestamp: 1627840000,
	}
	var got ChatEvent
	roundTrip(t, SChat, ChatEvent{Message: msg}, &got)
	assert.Equal(t, msg, got.Message)
	assert.Nil(t, got.SubRoom)
}

func TestChatMessageWithAttachmentRoundTrip(t *testing.T) {
	msg := domain.ChatMessage{
		UserID:      "user1",
		Content:     "Here is a file",
		RecipientID: strPtr("user2"),
		Timestamp:   1627840000,
		Attachment: &domain.FileAttachment{
			Filename:      "test.txt",
			MimeType:      "text/plain",
			Size:          12,
			ContentBase64: "SGVsbG8gV29ybGQ=",
		},
	}
	var got ChatEvent
	roundTrip(t, SChat, ChatEvent{Message: msg, SubRoom: strPtr("b1")}, &got)
	assert.Equal(t, msg, got.Message)
	require.NotNil(t, got.Message.Attachment)
	assert.Equal(t, "test.txt", got.Message.Attachment.Filename)
	require.NotNil(t, got.SubRoom)
	assert.Equal(t, "b1", *got.SubRoom)
}

func TestParticipantRoundTrip(t *testing.T) {
	p := domain.Participant{ID: "123", Name: "Alice"}
	var got domain.Participant
	roundTrip(t, SParticipantJoined, p, &got)
	assert.Equal(t, p, got)

	var updated domain.Participant
	roundTrip(t, SParticipantUpdated, domain.Participant{ID: "123", Name: "Alice", IsHandRaised: true}, &updated)
	assert.True(t, updated.IsHandRaised)

	var list []domain.Participant
	roundTrip(t, SParticipantList, []domain.Participant{p}, &list)
	assert.Len(t, list, 1)

	var left string
	roundTrip(t, SParticipantLeft, "123", &left)
	assert.Equal(t, "123", left)
}

func TestRoomConfigRoundTrip(t *testing.T) {
	cfg := domain.DefaultRoomConfig()
	assert.False(t, cfg.IsRecording)

	var got domain.RoomConfig
	roundTrip(t, SRoomUpdated, cfg, &got)
	assert.Equal(t, cfg, got)

	cfg.IsLocked = true
	cfg.LobbyEnabled = true
	cfg.HostID = "h1"
	roundTrip(t, SRoomUpdated, cfg, &got)
	assert.Equal(t, cfg, got)
}

func TestPollRoundTrip(t *testing.T) {
	poll := domain.Poll{
		ID:       "poll1",
		Question: "Color?",
		Options: []domain.PollOption{
			{ID: 0, Text: "Red"},
			{ID: 1, Text: "Blue", Votes: 5},
		},
		Voters: []string{},
	}
	var created domain.Poll
	roundTrip(t, CCreatePoll, poll, &created)
	assert.Equal(t, poll, created)

	var vote VoteCommand
	roundTrip(t, CVote, VoteCommand{PollID: "poll1", OptionID: 1}, &vote)
	assert.Equal(t, uint32(1), vote.OptionID)

	var updated domain.Poll
	roundTrip(t, SPollUpdated, poll, &updated)
	assert.Equal(t, poll, updated)
}

func TestDrawRoundTrip(t *testing.T) {
	draw := domain.DrawAction{
		SenderID: "user1",
		Color:    "#000000",
		StartX:   10, StartY: 20, EndX: 30, EndY: 40,
		Width: 2,
	}
	var got domain.DrawAction
	roundTrip(t, CDraw, draw, &got)
	assert.Equal(t, draw, got)

	var history []domain.DrawAction
	roundTrip(t, SWhiteboardHistory, []domain.DrawAction{draw}, &history)
	assert.Equal(t, draw, history[0])
}

func TestJoinAndProfileRoundTrip(t *testing.T) {
	var name string
	roundTrip(t, CJoin, "Alice", &name)
	assert.Equal(t, "Alice", name)

	roundTrip(t, CUpdateProfile, "Bob", &name)
	assert.Equal(t, "Bob", name)

	var welcome string
	roundTrip(t, SWelcome, "id-1", &welcome)
	assert.Equal(t, "id-1", welcome)
}

func TestReactionRoundTrip(t *testing.T) {
	var emoji string
	roundTrip(t, CReaction, "👍", &emoji)
	assert.Equal(t, "👍", emoji)

	var got ReactionEvent
	roundTrip(t, SReaction, ReactionEvent{SenderID: "123", Emoji: "👍"}, &got)
	assert.Equal(t, "123", got.SenderID)
	assert.Equal(t, "👍", got.Emoji)
}

func TestAdmissionMessagesRoundTrip(t *testing.T) {
	var target string
	roundTrip(t, CGrantAccess, "u9", &target)
	assert.Equal(t, "u9", target)
	roundTrip(t, CDenyAccess, "u9", &target)
	assert.Equal(t, "u9", target)
	roundTrip(t, CKick, "u9", &target)
	assert.Equal(t, "u9", target)

	var knocker domain.Participant
	roundTrip(t, SKnockingParticipant, domain.Participant{ID: "u9", Name: "Dana"}, &knocker)
	assert.Equal(t, "Dana", knocker.Name)

	var gone string
	roundTrip(t, SKnockingParticipantLeft, "u9", &gone)
	assert.Equal(t, "u9", gone)

	roundTrip(t, SKicked, "u9", &target)
	assert.Equal(t, "u9", target)
}

func TestBreakoutRoundTrip(t *testing.T) {
	var name string
	roundTrip(t, CCreateBreakoutRoom, "Design", &name)
	assert.Equal(t, "Design", name)

	var id *string
	roundTrip(t, CJoinBreakoutRoom, strPtr("b1"), &id)
	require.NotNil(t, id)
	assert.Equal(t, "b1", *id)

	// Returning to main travels as an explicit null payload.
	frame, err := Marshal(CJoinBreakoutRoom, (*string)(nil))
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	var back *string
	require.NoError(t, env.Decode(&back))
	assert.Nil(t, back)

	var rooms []domain.BreakoutRoom
	roundTrip(t, SBreakoutRooms, []domain.BreakoutRoom{{ID: "b1", Name: "Design"}}, &rooms)
	assert.Equal(t, "Design", rooms[0].Name)
}

func TestSharedVideoRoundTrip(t *testing.T) {
	var url string
	roundTrip(t, CStartShareVideo, "https://youtu.be/test", &url)
	assert.Equal(t, "https://youtu.be/test", url)

	roundTrip(t, SVideoShared, "https://youtu.be/test", &url)
	assert.Equal(t, "https://youtu.be/test", url)
}

func TestPresenceRoundTrip(t *testing.T) {
	var speaking bool
	roundTrip(t, CSpeaking, true, &speaking)
	assert.True(t, speaking)

	var ps PeerSpeakingEvent
	roundTrip(t, SPeerSpeaking, PeerSpeakingEvent{UserID: "u1", Speaking: true}, &ps)
	assert.True(t, ps.Speaking)

	var typing bool
	roundTrip(t, CTyping, true, &typing)
	assert.True(t, typing)

	var pt PeerTypingEvent
	roundTrip(t, SPeerTyping, PeerTypingEvent{UserID: "u1", Typing: true, SubRoom: strPtr("b2")}, &pt)
	assert.True(t, pt.Typing)
	require.NotNil(t, pt.SubRoom)
	assert.Equal(t, "b2", *pt.SubRoom)
}

func TestChatCommandRoundTrip(t *testing.T) {
	cmd := ChatCommand{Content: "hi", RecipientID: strPtr("u2")}
	var got ChatCommand
	roundTrip(t, CChat, cmd, &got)
	assert.Equal(t, cmd, got)

	var history []domain.ChatMessage
	roundTrip(t, SChatHistory, []domain.ChatMessage{{UserID: "u1", Content: "hi", Timestamp: 1}}, &history)
	assert.Len(t, history, 1)
}

func TestErrorRoundTrip(t *testing.T) {
	var msg string
	roundTrip(t, SError, "Room is full", &msg)
	assert.Equal(t, "Room is full", msg)
}

func TestSubRoomHelper(t *testing.T) {
	assert.Nil(t, SubRoom(""))
	sr := SubRoom("b1")
	require.NotNil(t, sr)
	assert.Equal(t, "b1", *sr)
}
