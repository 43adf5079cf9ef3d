package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

func bindSession(t *testing.T, r *Registry, pid domain.ParticipantID) (*fakeConn, core.MemberSession) {
	t.Helper()
	p, err := domain.NewParticipant(pid, "")
	require.NoError(t, err)
	conn := &fakeConn{}
	sess := core.NewMemberSession(p, conn)
	r.Bind(pid, sess, func() {})
	return conn, sess
}

func TestRegistry_BindAndGet(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	_, sess := bindSession(t, r, "pid-1")

	got, ok := r.Get("pid-1")
	req.True(ok)
	req.Same(sess, got)
	req.Equal(1, r.ConnectionCount())

	_, ok = r.Get("pid-2")
	req.False(ok)
}

func TestRegistry_LaterBindWins(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	_, first := bindSession(t, r, "pid-1")
	_, second := bindSession(t, r, "pid-1")

	got, ok := r.Get("pid-1")
	req.True(ok)
	req.Same(second, got)
	req.Equal(1, r.ConnectionCount())

	// A stale unbind against the replaced session must not tear down
	// the successor.
	_, ok = r.Unbind("pid-1", first)
	req.False(ok)
	_, ok = r.Get("pid-1")
	req.True(ok)

	cancel, ok := r.Unbind("pid-1", second)
	req.True(ok)
	req.NotNil(cancel)
	req.Equal(0, r.ConnectionCount())
}

func TestRegistry_SendIsBestEffort(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	// Missing connection: silent no-op.
	r.Send("ghost", core.Frame(`{"type":"pong"}`))

	conn, _ := bindSession(t, r, "pid-1")
	r.Send("pid-1", core.Frame(`{"type":"pong"}`))
	req.Len(conn.frames, 1)

	// Saturated connection: frame dropped, no error surfaces.
	conn.full = true
	r.Send("pid-1", core.Frame(`{"type":"pong"}`))
	req.Len(conn.frames, 1)
}

func TestRegistry_RoomTracking(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	bindSession(t, r, "pid-1")

	req.Empty(r.RoomsOf("pid-1"))

	r.JoinedRoom("pid-1", "calm-waters")
	r.JoinedRoom("pid-1", "morning-flow")
	req.ElementsMatch([]domain.RoomSlug{"calm-waters", "morning-flow"}, r.RoomsOf("pid-1"))

	r.LeftRoom("pid-1", "calm-waters")
	req.Equal([]domain.RoomSlug{"morning-flow"}, r.RoomsOf("pid-1"))

	// Untracked identity: all no-ops.
	r.JoinedRoom("ghost", "calm-waters")
	req.Nil(r.RoomsOf("ghost"))
}
