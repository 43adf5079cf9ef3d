package app

import (
	"sync"

	"github.com/samber/lo"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomSlug]core.RoomService
}

func NewRoomManager() core.RoomManager {
	return &RoomManagerImpl{rooms: make(map[domain.RoomSlug]core.RoomService)}
}

func (f *RoomManagerImpl) GetOrCreate(slug domain.RoomSlug, title string) core.RoomService {
	f.mu.RLock()
	room, ok := f.rooms[slug]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[slug]; ok {
		return room
	}
	room = core.NewRoomService(&domain.Room{Slug: slug, Title: title})
	f.rooms[slug] = room
	return room
}

func (f *RoomManagerImpl) Get(slug domain.RoomSlug) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[slug]
	return room, ok
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return lo.MapToSlice(f.rooms, func(slug domain.RoomSlug, r core.RoomService) core.RoomInfo {
		return core.RoomInfo{Slug: slug, Title: r.Room().Title, MemberCount: r.MemberCount()}
	})
}

// Release garbage-collects the room entry once its membership is empty.
// A later join recreates the room from scratch.
func (f *RoomManagerImpl) Release(slug domain.RoomSlug) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok := f.rooms[slug]; ok && room.MemberCount() == 0 {
		delete(f.rooms, slug)
	}
}
