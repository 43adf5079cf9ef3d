package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
	"github.com/loopwell/engage/internal/metrics"
)

const (
	defaultReplayLimit  = 50
	defaultRetryBackoff = 100 * time.Millisecond
)

// Gateway orchestrates the engagement core: it validates inbound actions
// against session state, drives the store and the selector, and emits
// events back through the hub. All delivery is at-most-once with no
// retries and no recipient acks.
type Gateway struct {
	Hub      *Registry
	Rooms    core.RoomManager
	Sessions core.SessionDirectory
	Store    core.EngagementStore
	Selector *Selector
	Policy   Policy

	ReplayLimit  int
	RetryBackoff time.Duration
}

func NewGateway(hub *Registry, rooms core.RoomManager, sessions core.SessionDirectory, store core.EngagementStore) *Gateway {
	return &Gateway{
		Hub:          hub,
		Rooms:        rooms,
		Sessions:     sessions,
		Store:        store,
		Selector:     NewSelector(),
		Policy:       SimplePolicy{},
		ReplayLimit:  defaultReplayLimit,
		RetryBackoff: defaultRetryBackoff,
	}
}

// sendTo delivers one event to a participant, best-effort.
func (g *Gateway) sendTo(pid domain.ParticipantID, ev Event) {
	frame, err := ev.Frame()
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("event", ev.Type).Msg("marshal event")
		return
	}
	g.Hub.Send(pid, frame)
}

// sendToSession bypasses the hub lookup when the caller already holds
// the session, e.g. for the join acknowledgement.
func (g *Gateway) sendToSession(sess core.MemberSession, ev Event) {
	frame, err := ev.Frame()
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("event", ev.Type).Msg("marshal event")
		return
	}
	if err := sess.Conn().TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.gateway").Str("event", ev.Type).Msg("direct send dropped")
	}
}

func (g *Gateway) broadcast(room core.RoomService, excluding domain.ParticipantID, ev Event) {
	frame, err := ev.Frame()
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("event", ev.Type).Msg("marshal event")
		return
	}
	metrics.Broadcasts.Inc()
	res := room.Broadcast(excluding, frame)
	if len(res.Dropped) == 0 {
		return
	}
	metrics.DroppedSends.Add(float64(len(res.Dropped)))
	for _, slow := range res.Dropped {
		switch g.Policy.OnBackpressure(room, slow) {
		case DisconnectMember:
			g.disconnect(slow.Meta().ID, slow)
		case DropEvent, NoAction:
		}
	}
}

// withRetry runs one store call and retries it once after a short
// backoff. Membership mutations already applied are never rolled back;
// the store and the registry are not transactional with each other.
func (g *Gateway) withRetry(ctx context.Context, what string, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	log.Warn().Err(err).Str("module", "app.gateway").Str("op", what).Msg("store call failed, retrying once")
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %v", core.ErrTransientStore, what, err)
	case <-time.After(g.RetryBackoff):
	}
	if err = op(); err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrTransientStore, what, err)
	}
	return nil
}
