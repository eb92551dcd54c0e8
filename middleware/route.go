package middleware

import (
	"github.com/gin-gonic/gin"
)

// Handlers is the full HTTP surface: the REST collaborators plus the
// realtime endpoint.
type Handlers struct {
	Register gin.HandlerFunc
	Login    gin.HandlerFunc
	Save     gin.HandlerFunc
	Load     gin.HandlerFunc
	WS       gin.HandlerFunc
}

// Route wires every endpoint onto the engine. The save/load contract
// carries player_id in the body/path with no auth header, matching the
// documented 400/404 surface.
func Route(r *gin.Engine, h Handlers) {
	r.Use(Origin())

	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/save", h.Save)
	api.GET("/load/:playerId", h.Load)

	r.GET("/ws", h.WS)
}
