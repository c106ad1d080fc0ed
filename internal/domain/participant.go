// Package domain contains entities and their wire shapes, no logic beyond
// construction and light validation.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxDisplayNameLen = 64

var (
	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)

// Participant is an admitted member of the room. The id is opaque and
// generated server-side at join time.
type Participant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IsHandRaised    bool   `json:"is_hand_raised"`
	IsSharingScreen bool   `json:"is_sharing_screen"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(name string) (*Participant, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return nil, ErrNameTooLong
	}
	return &Participant{ID: uuid.NewString(), Name: name}, nil
}

func (p *Participant) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	p.Name = name
	return nil
}
