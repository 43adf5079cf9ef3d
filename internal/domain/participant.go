// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxParticipantIDLen = 36
	MaxDisplayNameLen   = 48
)

var (
	ErrDisplayNameTooLong   = errors.New("display name too long")
	ErrParticipantIDEmpty   = errors.New("participant id empty")
	ErrParticipantIDTooLong = errors.New("participant id too long")
)

type ParticipantID string

// Participant is the identity the platform hands to the engagement core.
// It lives for the duration of one physical connection.
type Participant struct {
	ID          ParticipantID `json:"id"`
	DisplayName string        `json:"display_name,omitempty"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
// IDs longer than a uuid are rejected; the transport falls back to an
// anonymous identity rather than trusting an oversized cookie token.
func NewParticipant(id ParticipantID, displayName string) (*Participant, error) {
	if id == "" {
		return nil, ErrParticipantIDEmpty
	}
	if len(id) > MaxParticipantIDLen {
		return nil, ErrParticipantIDTooLong
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &Participant{ID: id, DisplayName: displayName}, nil
}

// NewAnonymousParticipant mints a throwaway identity for visitors the
// platform did not authenticate.
func NewAnonymousParticipant() *Participant {
	return &Participant{ID: ParticipantID(uuid.NewString())}
}
