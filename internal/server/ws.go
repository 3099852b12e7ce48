package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/patente-quiz/internal/rewards"
	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
	"github.com/gokatarajesh/patente-quiz/pkg/http/ws"
)

type tokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// ProfileSource returns the profile pushed to a client when it connects.
type ProfileSource func(ctx context.Context, userID uuid.UUID) (rewards.Profile, error)

// WSHandler serves the notification socket: profile, registry and quiz
// updates are pushed to every device of the signed-in user.
type WSHandler struct {
	hub      *ws.Hub
	tokens   tokenValidator
	profiles ProfileSource
	logger   zerolog.Logger
}

func NewWSHandler(hub *ws.Hub, tokens tokenValidator, profiles ProfileSource, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:      hub,
		tokens:   tokens,
		profiles: profiles,
		logger:   logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket upgrades the connection after validating ?token=.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
		return
	}

	conn, err := WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.HandleConnection(r.Context(), conn, claims.UserID)
}

// HandleConnection registers conn and blocks until the peer goes away.
func (h *WSHandler) HandleConnection(ctx context.Context, conn *websocket.Conn, userID uuid.UUID) {
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Register(userID, wsConn)
	go wsConn.WritePump()

	if h.profiles != nil {
		if p, err := h.profiles(context.WithoutCancel(ctx), userID); err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("initial profile load failed")
		} else if msg, err := ws.NewMessage(ws.TypeProfileUpdated, p); err == nil {
			_ = wsConn.Send(msg)
		}
	}

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(wsConn, msg)
	})

	h.hub.Unregister(userID, wsConn)
}

func (h *WSHandler) handleMessage(conn *ws.Connection, msg ws.Message) error {
	switch msg.Type {
	case ws.TypePing:
		return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	default:
		return h.sendError(conn, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *WSHandler) sendError(conn *ws.Connection, requestID, code, message string) error {
	msg, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return conn.Send(msg)
}
