package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
	"github.com/loopwell/engage/internal/metrics"
)

// Connect registers a connection for the participant. A later Connect
// for the same identity wins: the previous connection is closed and
// cleaned up exactly as a disconnect before the new one is bound.
func (g *Gateway) Connect(p *domain.Participant, conn core.EventConn, cancel context.CancelFunc) core.MemberSession {
	if prev, ok := g.Hub.Get(p.ID); ok {
		log.Info().Str("module", "app.gateway").Str("pid", string(p.ID)).Msg("replacing previous connection")
		g.disconnect(p.ID, prev)
	}
	sess := core.NewMemberSession(p, conn)
	g.Hub.Bind(p.ID, sess, cancel)
	metrics.OpenConnections.Inc()
	g.sendToSession(sess, Event{Type: EvtWelcome, Data: WelcomeData{
		Participant: core.MemberDTO{ID: p.ID, DisplayName: p.DisplayName},
	}})
	return sess
}

// Disconnect tears down the participant's current connection and
// synchronously removes it from every room it belonged to.
func (g *Gateway) Disconnect(pid domain.ParticipantID) {
	g.disconnect(pid, nil)
}

// DisconnectSession is the variant the transport calls when its read
// loop exits: it no-ops when the binding already points at a successor
// connection, so cleanup runs exactly once per physical connection.
func (g *Gateway) DisconnectSession(pid domain.ParticipantID, sess core.MemberSession) {
	g.disconnect(pid, sess)
}

func (g *Gateway) disconnect(pid domain.ParticipantID, only core.MemberSession) {
	sess, ok := g.Hub.Get(pid)
	if !ok || (only != nil && sess != only) {
		return
	}
	rooms := g.Hub.RoomsOf(pid)
	cancel, ok := g.Hub.Unbind(pid, sess)
	if !ok {
		return
	}
	metrics.OpenConnections.Dec()
	for _, slug := range rooms {
		g.removeFromRoom(pid, slug, sess.Meta())
	}
	if cancel != nil {
		cancel()
	}
	sess.Conn().Close()
	log.Info().Str("module", "app.gateway").Str("pid", string(pid)).Int("rooms", len(rooms)).Msg("disconnected")
}

// Join admits the participant into the room iff the external session is
// ACTIVE. The acknowledgement is sent only after the membership is
// registered, so the joiner is already eligible for later broadcasts.
func (g *Gateway) Join(ctx context.Context, pid domain.ParticipantID, slug domain.RoomSlug) error {
	sess, ok := g.Hub.Get(pid)
	if !ok {
		// Connection replaced or gone mid-flight; nobody left to ack.
		return nil
	}
	st, err := g.Sessions.State(slug)
	if err != nil {
		return err
	}
	if st.Status != domain.SessionActive {
		return core.ErrSessionNotActive
	}

	room := g.Rooms.GetOrCreate(slug, st.Title)
	rejoin := room.Contains(pid)
	room.AddMember(pid, sess)
	g.Hub.JoinedRoom(pid, slug)

	// A replacement Connect may have raced this join between the hub
	// lookup above and the membership write; its disconnect cleanup saw
	// no rooms, so undo here or the stale session lingers as a dead
	// member.
	if cur, ok := g.Hub.Get(pid); !ok || cur != sess {
		g.Hub.LeftRoom(pid, slug)
		room.RemoveMember(pid)
		if room.MemberCount() == 0 {
			g.Rooms.Release(slug)
		}
		log.Info().Str("module", "app.gateway").Str("pid", string(pid)).Str("room", string(slug)).Msg("join superseded by reconnect")
		return nil
	}

	var recent []domain.ChatMessage
	if err := g.withRetry(ctx, "recent comments", func() error {
		var e error
		recent, e = g.Store.RecentComments(ctx, slug, g.ReplayLimit)
		return e
	}); err != nil {
		// Replay is best-effort; the join itself stands.
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(slug)).Msg("chat replay unavailable")
		recent = nil
	}
	if recent == nil {
		recent = []domain.ChatMessage{}
	}

	g.sendToSession(sess, Event{Type: EvtSessionJoined, Data: SessionJoinedData{
		Session:        slug,
		Title:          st.Title,
		Members:        room.MembersSnapshot(),
		MemberCount:    room.MemberCount(),
		RecentComments: recent,
	}})
	// A repeated join is a membership no-op; the others already saw this
	// member arrive once.
	if !rejoin {
		g.broadcast(room, pid, Event{Type: EvtUserJoined, Data: PresenceData{
			Session: slug,
			User:    core.MemberDTO{ID: pid, DisplayName: sess.Meta().DisplayName},
		}})
	}
	return nil
}

// Leave removes the participant, tells the remaining members, then acks
// the leaver.
func (g *Gateway) Leave(pid domain.ParticipantID, slug domain.RoomSlug) error {
	room, ok := g.Rooms.Get(slug)
	if !ok || !room.Contains(pid) {
		return core.ErrNotAMember
	}
	sess, ok := g.Hub.Get(pid)
	if !ok {
		return core.ErrNotAMember
	}
	g.removeFromRoom(pid, slug, sess.Meta())
	g.sendToSession(sess, Event{Type: EvtSessionLeft, Data: SessionLeftData{Session: slug}})
	return nil
}

// removeFromRoom updates membership, releases the room when it empties,
// and otherwise notifies the remaining members.
func (g *Gateway) removeFromRoom(pid domain.ParticipantID, slug domain.RoomSlug, meta *domain.Participant) {
	g.Hub.LeftRoom(pid, slug)
	room, ok := g.Rooms.Get(slug)
	if !ok {
		return
	}
	room.RemoveMember(pid)
	if room.MemberCount() == 0 {
		g.Rooms.Release(slug)
		return
	}
	g.broadcast(room, pid, Event{Type: EvtUserLeft, Data: PresenceData{
		Session: slug,
		User:    core.MemberDTO{ID: pid, DisplayName: meta.DisplayName},
	}})
}

// memberRoom resolves the room for an action that requires membership.
func (g *Gateway) memberRoom(pid domain.ParticipantID, slug domain.RoomSlug) (core.RoomService, error) {
	room, ok := g.Rooms.Get(slug)
	if !ok || !room.Contains(pid) {
		return nil, core.ErrNotAMember
	}
	return room, nil
}
