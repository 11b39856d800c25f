package server

import (
	"devconnector/internal/middleware"
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireUpgrade rejects plain HTTP requests to the websocket endpoint.
func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{Msg: "Websocket upgrade required"})
}

// FeedWebsocket streams post activity events to the connected client.
// @Summary Realtime post feed
// @Description Upgrade to a websocket. Pass ?token= to also receive personal notifications.
// @Tags realtime
// @Param token query string false "Session token"
// @Router /ws [get]
func (s *Server) FeedWebsocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration refused", "user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"msg":"`+err.Error()+`"}}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
