// Package session mirrors the lifecycle state of the platform's live
// sessions. The state is owned by the platform's CRUD side; it reaches
// this core through the status-notify endpoint and is read-only for the
// gateway.
package session

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

type Directory struct {
	mu     sync.RWMutex
	states map[domain.RoomSlug]domain.SessionState
}

func NewDirectory() *Directory {
	return &Directory{states: make(map[domain.RoomSlug]domain.SessionState)}
}

func (d *Directory) State(slug domain.RoomSlug) (domain.SessionState, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.states[slug]
	if !ok {
		return domain.SessionState{}, core.ErrSessionNotFound
	}
	return st, nil
}

func (d *Directory) SetState(slug domain.RoomSlug, st domain.SessionState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.states[slug] = st
	log.Info().Str("module", "session.directory").Str("room", string(slug)).Str("status", string(st.Status)).Msg("session state updated")
}

var _ core.SessionDirectory = (*Directory)(nil)
