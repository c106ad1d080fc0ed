package core

import (
	"time"

	"github.com/juncto/meet/internal/domain"
)

// Frame is a serialized wire message.
type Frame []byte

// SignalConnection abstracts the messaging transport for one client.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// KnockerSession is the connection-side handle stored with a pending knock.
// Grant promotes the knocker through the normal admission path; Resolve
// clears the pending state when the knock ends without admission, so the
// same connection may join again. The implementation owns all notifications
// for the outcome.
type KnockerSession interface {
	Signal() SignalConnection
	Grant(domain.Participant)
	Resolve()
}

// Knock is a pending admission request parked in the waiting room. The
// entry's presence in the store is the one-shot decision slot: grant, deny,
// expiry, and disconnect cleanup all claim it through RemoveKnock, and only
// the claimant that finds it present acts.
type Knock struct {
	Participant domain.Participant
	Session     KnockerSession
	CreatedAt   time.Time
}
