package controllers

import (
	"attendtrack_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// WebSocketController exposes the live attendance feed. The feed is a
// one-way broadcast of recorded check-ins for dashboard screens.
type WebSocketController struct {
	hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// FeedHandler returns a Fiber WebSocket handler that attaches the
// connection to the broadcast hub.
func (wsc *WebSocketController) FeedHandler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("websocket handler panic")
			}
		}()
		wsc.hub.ServeFiberWS(c)
	})
}

// GetFeedStats returns live feed connection statistics (admin only).
func (wsc *WebSocketController) GetFeedStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wsc.hub.GetClientCount(),
		"status":            "active",
	})
}
