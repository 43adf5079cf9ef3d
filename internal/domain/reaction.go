package domain

import (
	"errors"
	"time"
)

var (
	ErrUnknownReactionType = errors.New("unknown reaction type")
	ErrInvalidWeight       = errors.New("reaction weight must be positive")
)

type ReactionType string

// The fixed reaction vocabulary of the platform.
const (
	ReactionCalm     ReactionType = "calm"
	ReactionGrateful ReactionType = "grateful"
	ReactionInspired ReactionType = "inspired"
	ReactionPresent  ReactionType = "present"
	ReactionProud    ReactionType = "proud"
)

var ReactionTypes = []ReactionType{
	ReactionCalm, ReactionGrateful, ReactionInspired, ReactionPresent, ReactionProud,
}

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionCalm, ReactionGrateful, ReactionInspired, ReactionPresent, ReactionProud:
		return true
	}
	return false
}

// ReactionEvent is write-once; the durable aggregate derived from it is
// (room, type) -> sum of weights.
type ReactionEvent struct {
	Room      RoomSlug      `json:"room"`
	Type      ReactionType  `json:"type"`
	Weight    int64         `json:"weight"`
	Author    ParticipantID `json:"author,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewReactionEvent defaults a zero weight to 1.
func NewReactionEvent(room RoomSlug, author ParticipantID, t ReactionType, weight int64) (ReactionEvent, error) {
	if !t.Valid() {
		return ReactionEvent{}, ErrUnknownReactionType
	}
	if weight == 0 {
		weight = 1
	}
	if weight < 0 {
		return ReactionEvent{}, ErrInvalidWeight
	}
	return ReactionEvent{Room: room, Type: t, Weight: weight, Author: author}, nil
}

// ReactionCount is one entry of a room's aggregate summary.
type ReactionCount struct {
	Type  ReactionType `json:"type"`
	Total int64        `json:"total"`
}
