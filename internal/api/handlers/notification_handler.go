package handlers

import (
	"LeftoverLink/domain"
	"LeftoverLink/internal/api/presenters"
	"LeftoverLink/internal/middleware"
	"LeftoverLink/pkg/jwt"
	"LeftoverLink/pkg/notification"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const wsWriteTimeout = 10 * time.Second

type (
	NotificationHandler interface {
		// Upgrade authenticates the socket before the protocol switch.
		Upgrade(c *fiber.Ctx) error
		Serve() fiber.Handler
	}

	notificationHandler struct {
		hub        *notification.Hub
		jwtService jwt.JWTService
	}

	wsSubscriber struct {
		id     string
		userID string
		outbox *notification.Outbox
	}
)

func NewNotificationHandler(hub *notification.Hub, jwtService jwt.JWTService) NotificationHandler {
	return &notificationHandler{
		hub:        hub,
		jwtService: jwtService,
	}
}

func (h *notificationHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := middleware.TokenFromRequest(c)
	if token == "" {
		return presenters.HandleError(c, domain.ErrTokenNotFound)
	}
	userID, _, err := h.jwtService.GetUserIDByToken(token)
	if err != nil {
		return presenters.HandleError(c, err)
	}

	c.Locals("user_id", userID)
	return c.Next()
}

func (h *notificationHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		sub := &wsSubscriber{
			id:     uuid.NewString(),
			userID: userID,
			outbox: notification.NewOutbox(notification.DefaultOutboxSize, func(ev notification.Event) error {
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
					return err
				}
				return conn.WriteJSON(ev)
			}),
		}
		defer sub.outbox.Close()

		h.hub.Register(sub)
		defer h.hub.Unregister(sub)
		log.Infow("socket connected", "conn", sub.id, "user", userID)

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warnw("socket read failed", "conn", sub.id, "error", err)
				}
				log.Infow("socket disconnected", "conn", sub.id, "user", userID)
				return
			}

			var in notification.Incoming
			if err := json.Unmarshal(msg, &in); err != nil {
				_ = sub.Send(notification.Event{Name: notification.EventError, Data: "malformed frame"})
				continue
			}
			h.hub.Dispatch(sub, in)
		}
	})
}

func (s *wsSubscriber) ID() string {
	return s.id
}

func (s *wsSubscriber) UserID() string {
	return s.userID
}

// Send queues ev for the connection's writer and never blocks.
func (s *wsSubscriber) Send(ev notification.Event) error {
	return s.outbox.Send(ev)
}
