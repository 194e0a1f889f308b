package progress

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/auth"
	httperrors "github.com/codecrafters-dev/platform/pkg/http/errors"
	ws "github.com/codecrafters-dev/platform/pkg/http/ws"
)

// Handler upgrades GET /ws/submissions and attaches the socket to the hub.
type Handler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewHandler(hub *ws.Hub, upgrader websocket.Upgrader, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "progress_ws").Logger(),
	}
}

// ServeHTTP expects the auth middleware to have resolved ?token= into claims.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	logger := h.logger.With().Str("user_id", claims.UserID.String()).Logger()
	conn := ws.NewConnection(raw, logger)
	h.hub.RegisterConnection(claims.UserID, conn)

	go conn.WritePump()
	conn.ReadPump(func(msg ws.Message) error {
		if msg.Type == ws.TypePing {
			return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
		}
		reply, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: httperrors.ErrCodeUnknownMessageType, Message: "Unsupported message type"})
		if err != nil {
			return err
		}
		reply.RequestID = msg.RequestID
		return conn.Send(reply)
	})
	h.hub.UnregisterConnection(claims.UserID, conn)
}
