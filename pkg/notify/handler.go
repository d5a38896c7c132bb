package notify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// Upgrader turns an HTTP request into a websocket connection.
type Upgrader interface {
	Upgrade(w http.ResponseWriter, r *http.Request, responseHeader http.Header) (*websocket.Conn, error)
}

type NotificationHandler struct {
	service  NotificationService
	hub      *Hub
	upgrader Upgrader
	log      *zap.Logger
}

// NewNotificationHandler accepts websocket connections from the given
// origins; an empty list or "*" accepts any origin.
func NewNotificationHandler(service NotificationService, hub *Hub, allowedOrigins []string, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func (h *NotificationHandler) SetUpgrader(u Upgrader) {
	h.upgrader = u
}

// WebsocketPath is the live feed route. Browsers cannot set headers on the
// handshake, so it authenticates with a query token.
const WebsocketPath = "/ws/notifications"

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET(WebsocketPath, h.websocket)

	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.list)
		notifications.GET("/status", h.status)
		notifications.POST("/:id/read", h.markRead)
	}
}

// @Summary      Live notification feed
// @Description  Upgrades to a websocket. Authenticate with ?token=. A new connection replaces the previous one.
// @Tags         notifications
// @Param        token query string true "Access token"
// @Success      101
// @Failure      401 {object} response.APIResponse
// @Router       /ws/notifications [get]
func (h *NotificationHandler) websocket(c *gin.Context) {
	p := auth.MustPrincipal(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Int64("user_id", p.UserID), zap.Error(err))
		return
	}

	client := h.hub.AddClient(p.UserID, conn)
	h.log.Info("notification feed connected", zap.Int64("user_id", p.UserID))
	h.service.Touch(context.Background(), p.UserID)

	go h.readLoop(client, p)
	go h.writeLoop(client)
}

func (h *NotificationHandler) readLoop(client *Client, p auth.Principal) {
	defer func() {
		h.hub.RemoveClient(client)
		client.Conn.Close()
		h.log.Info("notification feed disconnected", zap.Int64("user_id", client.UserID))
		h.service.Touch(context.Background(), client.UserID)
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-client.Done:
			return
		default:
		}

		var receipt ReadReceipt
		if err := client.Conn.ReadJSON(&receipt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read failed", zap.Int64("user_id", client.UserID), zap.Error(err))
			}
			return
		}
		h.processReadReceipt(client, p, receipt)
	}
}

func (h *NotificationHandler) processReadReceipt(client *Client, p auth.Principal, receipt ReadReceipt) {
	if receipt.EventType != EventRead {
		h.sendError(client, "unsupported event_type")
		return
	}
	if len(receipt.NotificationIDs) == 0 {
		h.sendError(client, "notification_ids required for read receipt")
		return
	}
	if err := h.service.MarkRead(context.Background(), p, receipt.NotificationIDs...); err != nil &&
		!errors.Is(err, ErrNotificationNotFound) {
		h.log.Error("read receipt failed", zap.Int64("user_id", p.UserID), zap.Error(err))
		h.sendError(client, "could not mark notifications read")
	}
}

func (h *NotificationHandler) sendError(client *Client, msg string) {
	select {
	case client.Send <- ErrorEvent{EventType: EventError, Error: msg}:
	default:
	}
}

func (h *NotificationHandler) writeLoop(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-client.Done:
			return

		case message := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(message); err != nil {
				h.log.Warn("websocket write failed", zap.Int64("user_id", client.UserID), zap.Error(err))
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Warn("websocket ping failed", zap.Int64("user_id", client.UserID), zap.Error(err))
				return
			}
		}
	}
}

// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page (1-based)"
// @Param        limit query int false "Page size (max 100)"
// @Success      200 {object} response.APIResponse{data=Page}
// @Router       /notifications [get]
func (h *NotificationHandler) list(c *gin.Context) {
	page, limit := response.Page(c)
	result, err := h.service.List(c.Request.Context(), auth.MustPrincipal(c), page, limit)
	if err != nil {
		response.SendInternalError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "notifications fetched", result)
}

// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) markRead(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusNotFound, false, "Not found.", nil)
		return
	}
	err := h.service.MarkRead(c.Request.Context(), auth.MustPrincipal(c), id)
	switch {
	case errors.Is(err, ErrNotificationNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Not found.", nil)
	case err != nil:
		response.SendInternalError(c, err)
	default:
		response.SendAPIResponse(c, http.StatusOK, true, "notification marked read", nil)
	}
}

// @Summary      Live feed status
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=Status}
// @Router       /notifications/status [get]
func (h *NotificationHandler) status(c *gin.Context) {
	st, err := h.service.Status(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		response.SendInternalError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "online status", st)
}
