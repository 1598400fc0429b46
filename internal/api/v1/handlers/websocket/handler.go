package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/deepgram/ragbridge/internal/connections"
	domain "github.com/deepgram/ragbridge/internal/domain/chat"
	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/deepgram/ragbridge/internal/services/chat"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// origins are enforced by the CORS layer for browser clients
			return true
		},
	}
)

type errorFrame struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// HandleChatWebSocket serves chat completions over a WebSocket. Each text
// message is one completions request; streaming answers arrive as chunk
// messages closed by a "[DONE]" message.
func HandleChatWebSocket(chatService *chat.Service, manager *connections.Manager, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Failed to upgrade chat socket")
		return
	}

	id, release := manager.Track(conn)
	defer func() {
		release()
		conn.Close()
	}()

	logger := log.Ctx(r.Context()).With().Str("connection_id", id).Logger()
	ctx := logger.WithContext(r.Context())
	timeouts := manager.Timeouts()

	logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Chat socket opened")

	conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, timeouts, done)

	for {
		conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("Chat socket closed unexpectedly")
			} else {
				logger.Info().Msg("Chat socket closed")
			}
			return
		}

		if messageType != websocket.TextMessage {
			if writeError(conn, timeouts, "Only text messages are supported", http.StatusBadRequest) != nil {
				return
			}
			continue
		}

		if err := handleMessage(ctx, chatService, conn, timeouts, message, &logger); err != nil {
			logger.Info().Err(err).Msg("Chat socket write failed")
			return
		}
	}
}

// handleMessage answers one request. The returned error is only non-nil when
// the socket can no longer be written.
func handleMessage(ctx context.Context, chatService *chat.Service, conn *websocket.Conn, timeouts connections.TimeoutConfig, message []byte, logger *zerolog.Logger) error {
	var req models.ChatRequest
	if err := json.Unmarshal(message, &req); err != nil {
		logger.Warn().Err(err).Msg("Client sent malformed JSON message")
		return writeError(conn, timeouts, "Invalid request format", http.StatusBadRequest)
	}

	prepared, err := chatService.Prepare(ctx, &req)
	if err != nil {
		logger.Warn().Err(err).Msg("Rejected chat socket request")
		return writeError(conn, timeouts, err.Error(), domain.StatusCode(err))
	}

	if prepared.Stream {
		return chatService.Stream(ctx, prepared, chat.NewWebSocketSink(conn, timeouts.WriteWait))
	}

	resp, err := chatService.Complete(ctx, prepared)
	if err != nil {
		logger.Error().Err(err).Msg("Backend request failed")
		return writeError(conn, timeouts, err.Error(), domain.StatusCode(err))
	}

	conn.SetWriteDeadline(time.Now().Add(timeouts.WriteWait))
	return conn.WriteJSON(resp)
}

func writeError(conn *websocket.Conn, timeouts connections.TimeoutConfig, message string, status int) error {
	conn.SetWriteDeadline(time.Now().Add(timeouts.WriteWait))
	return conn.WriteJSON(errorFrame{Error: message, Status: status})
}

func keepAlive(conn *websocket.Conn, timeouts connections.TimeoutConfig, done chan struct{}) {
	ticker := time.NewTicker(timeouts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(timeouts.WriteWait)
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
