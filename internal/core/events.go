package core

// EventKind selects the filtering rule applied per subscriber.
type EventKind int

const (
	// KindBroadcast events reach every subscriber.
	KindBroadcast EventKind = iota
	// KindChat events are scoped to the sender's sub-room and, when
	// addressed, to the recipient and sender only.
	KindChat
	// KindTyping events are scoped to the sender's sub-room.
	KindTyping
	// KindKicked events reach only the kicked participant and terminate
	// its connection after delivery.
	KindKicked
	// KindRoomEnded events reach everyone and terminate each connection
	// after delivery.
	KindRoomEnded
)

// Event is one entry on the shared broadcast stream: a pre-serialized frame
// plus the metadata the per-subscriber filter needs.
type Event struct {
	Kind      EventKind
	Frame     Frame
	SubRoom   string // sub-room scope for chat/typing, "" = main
	SenderID  string
	Recipient string // private chat recipient, "" = public
	Target    string // kick target
}

// Terminal reports whether the subscriber's connection should close after
// this event is delivered to it.
func (e Event) Terminal() bool {
	return e.Kind == KindKicked || e.Kind == KindRoomEnded
}

// DeliverableTo evaluates the filtering rule for a subscriber identified by
// pid currently located in location ("" = main).
func (e Event) DeliverableTo(pid, location string) bool {
	switch e.Kind {
	case KindChat:
		if e.SubRoom != location {
			return false
		}
		if e.Recipient != "" && pid != e.Recipient && pid != e.SenderID {
			return false
		}
		return true
	case KindTyping:
		return e.SubRoom == location
	case KindKicked:
		return pid == e.Target
	default:
		return true
	}
}
