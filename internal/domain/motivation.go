package domain

import "errors"

var ErrCandidateTextEmpty = errors.New("candidate text empty")

// MotivationalCandidate is a pre-authored overlay message eligible for
// weighted-random selection when a matching reaction is recorded.
// Room == "" means the candidate applies to every room.
type MotivationalCandidate struct {
	ID     string       `json:"id"`
	Type   ReactionType `json:"type"`
	Room   RoomSlug     `json:"room,omitempty"`
	Text   string       `json:"text"`
	Weight int64        `json:"weight"`
	Active bool         `json:"active"`
}

// NewMotivationalCandidate clamps the weight to at least 1.
func NewMotivationalCandidate(id string, t ReactionType, room RoomSlug, text string, weight int64) (MotivationalCandidate, error) {
	if !t.Valid() {
		return MotivationalCandidate{}, ErrUnknownReactionType
	}
	if text == "" {
		return MotivationalCandidate{}, ErrCandidateTextEmpty
	}
	if weight < 1 {
		weight = 1
	}
	return MotivationalCandidate{ID: id, Type: t, Room: room, Text: text, Weight: weight, Active: true}, nil
}

// EligibleFor reports whether the candidate can be drawn for a reaction
// of the given type in the given room.
func (c MotivationalCandidate) EligibleFor(room RoomSlug, t ReactionType) bool {
	if !c.Active || c.Type != t {
		return false
	}
	return c.Room == "" || c.Room == room
}
