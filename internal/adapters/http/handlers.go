package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/app"
	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
	"github.com/loopwell/engage/internal/session"
)

type handlers struct {
	gw    *app.Gateway
	dir   *session.Directory
	store core.EngagementStore
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.gw.Rooms.List())
}

func (h *handlers) roomComments(c *gin.Context) {
	slug := domain.RoomSlug(c.Param("slug"))
	limit := h.gw.ReplayLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad limit"})
			return
		}
		limit = min(n, h.gw.ReplayLimit)
	}
	msgs, err := h.store.RecentComments(c.Request.Context(), slug, limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(slug)).Msg("recent comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	c.JSON(http.StatusOK, msgs)
}

// notifyStatus is the platform's NotifySessionStatusChange entry point.
func (h *handlers) notifyStatus(c *gin.Context) {
	slug := domain.RoomSlug(c.Param("slug"))
	var body struct {
		Status domain.SessionStatus `json:"status"`
		Title  string               `json:"title"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !body.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be SCHEDULED, ACTIVE or ENDED"})
		return
	}

	h.dir.SetState(slug, domain.SessionState{Status: body.Status, Title: body.Title})
	h.gw.NotifySessionStatusChange(slug, body.Status)
	c.Status(http.StatusNoContent)
}

// notifyUpdate fans an opaque platform update into the room.
func (h *handlers) notifyUpdate(c *gin.Context) {
	slug := domain.RoomSlug(c.Param("slug"))
	var body struct {
		Kind    string          `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind required"})
		return
	}

	h.gw.NotifyUpdate(slug, body.Kind, body.Payload)
	c.Status(http.StatusNoContent)
}

// putMotivation upserts one motivational candidate into the pool.
func (h *handlers) putMotivation(c *gin.Context) {
	var body struct {
		ID     string              `json:"id"`
		Type   domain.ReactionType `json:"type"`
		Room   domain.RoomSlug     `json:"room"`
		Text   string              `json:"text"`
		Weight int64               `json:"weight"`
		Active *bool               `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cand, err := domain.NewMotivationalCandidate(body.ID, body.Type, body.Room, body.Text, body.Weight)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Active != nil {
		cand.Active = *body.Active
	}

	if err := h.store.PutCandidate(c.Request.Context(), cand); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("put candidate")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, cand)
}
