package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/adapters/ws"
	"github.com/loopwell/engage/internal/app"
	"github.com/loopwell/engage/internal/config"
	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/session"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware carries the participant identity the platform
// hands to this core. Visitors without the cookie get a fresh token.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, gw *app.Gateway, dir *session.Directory, store core.EngagementStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("EngageSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	h := &handlers{gw: gw, dir: dir, store: store}

	api := r.Group("/api")
	api.GET("/ws/engage", func(c *gin.Context) {
		ctl := ws.NewController(gw, cfg)
		log.Info().Str("module", "adapters.http").Str("pid", c.GetString("client_token")).Msg("ws engage endpoint hit")
		ctl.HandleEngage(ctx, c)
	})
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:slug/comments", h.roomComments)

	// Platform-facing surface: the CRUD side pushes session lifecycle
	// changes and the motivational pool through here.
	internal := r.Group("/internal")
	internal.POST("/sessions/:slug/status", h.notifyStatus)
	internal.POST("/sessions/:slug/update", h.notifyUpdate)
	internal.PUT("/motivations", h.putMotivation)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
