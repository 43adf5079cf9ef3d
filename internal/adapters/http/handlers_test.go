package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/loopwell/engage/internal/app"
	"github.com/loopwell/engage/internal/domain"
	"github.com/loopwell/engage/internal/session"
)

// recordingStore captures the limit the handler asks for.
type recordingStore struct {
	lastLimit int
}

func (s *recordingStore) AppendComment(_ context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	return msg, nil
}

func (s *recordingStore) RecentComments(_ context.Context, _ domain.RoomSlug, limit int) ([]domain.ChatMessage, error) {
	s.lastLimit = limit
	return nil, nil
}

func (s *recordingStore) AppendReaction(_ context.Context, _ domain.ReactionEvent) error {
	return nil
}

func (s *recordingStore) Summary(_ context.Context, _ domain.RoomSlug) ([]domain.ReactionCount, error) {
	return nil, nil
}

func (s *recordingStore) PutCandidate(_ context.Context, _ domain.MotivationalCandidate) error {
	return nil
}

func (s *recordingStore) CandidatesFor(_ context.Context, _ domain.RoomSlug, _ domain.ReactionType) ([]domain.MotivationalCandidate, error) {
	return nil, nil
}

func commentsRequest(t *testing.T, h *handlers, query string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/rooms/calm-waters/comments"+query, nil)
	c.Params = gin.Params{{Key: "slug", Value: "calm-waters"}}
	h.roomComments(c)
	return w
}

func TestRoomComments_LimitClampedToReplayLimit(t *testing.T) {
	req := require.New(t)
	st := &recordingStore{}
	gw := app.NewGateway(app.NewRegistry(), app.NewRoomManager(), session.NewDirectory(), st)
	gw.ReplayLimit = 25
	h := &handlers{gw: gw, dir: session.NewDirectory(), store: st}

	w := commentsRequest(t, h, "")
	req.Equal(http.StatusOK, w.Code)
	req.Equal(25, st.lastLimit)

	w = commentsRequest(t, h, "?limit=5")
	req.Equal(http.StatusOK, w.Code)
	req.Equal(5, st.lastLimit)

	w = commentsRequest(t, h, "?limit=1000000")
	req.Equal(http.StatusOK, w.Code)
	req.Equal(25, st.lastLimit)

	w = commentsRequest(t, h, "?limit=0")
	req.Equal(http.StatusBadRequest, w.Code)

	w = commentsRequest(t, h, "?limit=abc")
	req.Equal(http.StatusBadRequest, w.Code)
}
