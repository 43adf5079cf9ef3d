package app

import (
	"encoding/json"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

// NotifySessionStatusChange fans an external lifecycle change into the
// room. An ENDED session evicts all remaining members; the room entry is
// then garbage-collected like any other emptied room.
func (g *Gateway) NotifySessionStatusChange(slug domain.RoomSlug, status domain.SessionStatus) {
	room, ok := g.Rooms.Get(slug)
	if !ok {
		return
	}
	g.broadcast(room, "", Event{Type: EvtSessionStatus, Data: SessionStatusData{
		Session: slug,
		Status:  status,
	}})
	if status == domain.SessionEnded {
		g.evictRoom(room)
	}
}

// NotifyUpdate relays an opaque platform-side update into the room.
func (g *Gateway) NotifyUpdate(slug domain.RoomSlug, kind string, payload json.RawMessage) {
	room, ok := g.Rooms.Get(slug)
	if !ok {
		return
	}
	g.broadcast(room, "", Event{Type: EvtSessionUpdate, Data: SessionUpdateData{
		Session: slug,
		Kind:    kind,
		Payload: payload,
	}})
}

func (g *Gateway) evictRoom(room core.RoomService) {
	slug := room.Room().Slug
	for _, m := range room.MembersSnapshot() {
		room.RemoveMember(m.ID)
		g.Hub.LeftRoom(m.ID, slug)
		g.sendTo(m.ID, Event{Type: EvtSessionLeft, Data: SessionLeftData{Session: slug}})
	}
	g.Rooms.Release(slug)
}
