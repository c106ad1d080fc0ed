package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastReachesEveryone(t *testing.T) {
	ev := Event{Kind: KindBroadcast}
	assert.True(t, ev.DeliverableTo("a", ""))
	assert.True(t, ev.DeliverableTo("b", "breakout1"))
	assert.False(t, ev.Terminal())
}

func TestChatScopedToSubRoom(t *testing.T) {
	// Sender sits in breakout1; A shares the breakout, B is in main, C is
	// in a different breakout.
	ev := Event{Kind: KindChat, SubRoom: "breakout1", SenderID: "sender"}
	assert.True(t, ev.DeliverableTo("a", "breakout1"))
	assert.False(t, ev.DeliverableTo("b", ""))
	assert.False(t, ev.DeliverableTo("c", "breakout2"))
	assert.True(t, ev.DeliverableTo("sender", "breakout1"))
}

func TestChatMainRoomExcludesBreakouts(t *testing.T) {
	ev := Event{Kind: KindChat, SenderID: "sender"}
	assert.True(t, ev.DeliverableTo("a", ""))
	assert.False(t, ev.DeliverableTo("b", "breakout1"))
}

func TestPrivateChatRecipientAndSenderOnly(t *testing.T) {
	ev := Event{Kind: KindChat, SenderID: "sender", Recipient: "rcpt"}
	assert.True(t, ev.DeliverableTo("rcpt", ""))
	assert.True(t, ev.DeliverableTo("sender", ""))
	assert.False(t, ev.DeliverableTo("other", ""))

	// Sub-room scoping still applies on top of addressing.
	assert.False(t, ev.DeliverableTo("rcpt", "breakout1"))
}

func TestTypingScopedToSubRoom(t *testing.T) {
	ev := Event{Kind: KindTyping, SubRoom: "breakout1"}
	assert.True(t, ev.DeliverableTo("a", "breakout1"))
	assert.False(t, ev.DeliverableTo("b", ""))
}

func TestKickedTargetOnlyAndTerminal(t *testing.T) {
	ev := Event{Kind: KindKicked, Target: "victim"}
	assert.True(t, ev.DeliverableTo("victim", ""))
	assert.False(t, ev.DeliverableTo("bystander", ""))
	assert.True(t, ev.Terminal())
}

func TestRoomEndedReachesEveryoneAndTerminal(t *testing.T) {
	ev := Event{Kind: KindRoomEnded}
	assert.True(t, ev.DeliverableTo("a", ""))
	assert.True(t, ev.DeliverableTo("b", "breakout1"))
	assert.True(t, ev.Terminal())
}
