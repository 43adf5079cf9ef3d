package domain

import (
	"errors"
	"time"
)

const MaxMessageBodyLen = 2000

var (
	ErrMessageBodyEmpty   = errors.New("message body empty")
	ErrMessageBodyTooLong = errors.New("message body too long")
)

type MessageKind string

const (
	MessageChat   MessageKind = "chat"
	MessageSystem MessageKind = "system"
)

// ChatMessage is immutable once persisted. ID is assigned by the store,
// ordering is (CreatedAt, ID).
type ChatMessage struct {
	ID        string        `json:"id"`
	Room      RoomSlug      `json:"room"`
	Author    ParticipantID `json:"author,omitempty"`
	Body      string        `json:"body"`
	Kind      MessageKind   `json:"kind"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewChatMessage validates the body; the store fills ID and CreatedAt.
func NewChatMessage(room RoomSlug, author ParticipantID, body string) (ChatMessage, error) {
	if body == "" {
		return ChatMessage{}, ErrMessageBodyEmpty
	}
	if len(body) > MaxMessageBodyLen {
		return ChatMessage{}, ErrMessageBodyTooLong
	}
	return ChatMessage{Room: room, Author: author, Body: body, Kind: MessageChat}, nil
}
