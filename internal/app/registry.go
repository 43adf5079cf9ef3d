package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

type hubEntry struct {
	Session core.MemberSession
	Cancel  context.CancelFunc
	Rooms   map[domain.RoomSlug]struct{}
}

// Registry is the connection hub: at most one live connection per
// participant identity, plus the set of rooms that identity currently
// belongs to. A later Bind for the same identity wins; the caller is
// responsible for running disconnect cleanup on the previous session.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ParticipantID]*hubEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ParticipantID]*hubEntry)}
}

func (r *Registry) Bind(pid domain.ParticipantID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[pid] = &hubEntry{
		Session: sess,
		Cancel:  cancel,
		Rooms:   make(map[domain.RoomSlug]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("pid", string(pid)).Msg("bound connection")
}

func (r *Registry) Get(pid domain.ParticipantID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[pid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind removes the binding only if it still points at the given
// session, so a stale reader goroutine cannot tear down its successor.
// It hands back the connection's cancel func for the caller to fire.
func (r *Registry) Unbind(pid domain.ParticipantID, sess core.MemberSession) (context.CancelFunc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[pid]
	if !ok || e.Session != sess {
		return nil, false
	}
	delete(r.conns, pid)
	log.Info().Str("module", "app.registry").Str("pid", string(pid)).Msg("unbound connection")
	return e.Cancel, true
}

// Send delivers one frame if and only if a live connection exists for
// the identity. A missing or saturated connection is a silent no-op:
// the participant may have vanished between broadcast decision and
// delivery, and that is fine.
func (r *Registry) Send(pid domain.ParticipantID, data core.Frame) {
	r.mu.RLock()
	e, ok := r.conns[pid]
	r.mu.RUnlock()
	if !ok {
		return
	}
	if err := e.Session.Conn().TrySend(data); err != nil {
		log.Debug().Str("module", "app.registry").Str("pid", string(pid)).Err(err).Msg("send dropped")
	}
}

func (r *Registry) JoinedRoom(pid domain.ParticipantID, slug domain.RoomSlug) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[pid]; ok {
		e.Rooms[slug] = struct{}{}
	}
}

func (r *Registry) LeftRoom(pid domain.ParticipantID, slug domain.RoomSlug) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[pid]; ok {
		delete(e.Rooms, slug)
	}
}

// RoomsOf snapshots the rooms the participant currently belongs to.
func (r *Registry) RoomsOf(pid domain.ParticipantID) []domain.RoomSlug {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[pid]
	if !ok {
		return nil
	}
	return lo.Keys(e.Rooms)
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
