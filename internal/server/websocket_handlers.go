package server

import (
	"log/slog"

	"agora/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func (s *Server) upgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// FeedHandler streams post feed events to the connected client.
// @Summary Live feed
// @Description Websocket stream of post_created, post_deleted, post_reaction_updated, comment_created and comment_deleted events.
// @Tags feed
// @Router /ws [get]
func (s *Server) FeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"live feed unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(conn)
		if err != nil {
			middleware.Logger.Warn("feed connection rejected", slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
