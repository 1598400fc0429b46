package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/gorilla/websocket"
)

// ChunkSink is where a stream's frames go. A write error means the client is
// gone and nothing more should be written.
type ChunkSink interface {
	WriteChunk(chunk *models.ChunkEnvelope) error
	WriteDone() error
}

// SetSSEHeaders commits the event-stream response headers.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// SSESink writes "data: <json>\n\n" frames and flushes after each one.
type SSESink struct {
	w       io.Writer
	flusher http.Flusher
}

func NewSSESink(w io.Writer) *SSESink {
	flusher, _ := w.(http.Flusher)
	return &SSESink{w: w, flusher: flusher}
}

func (s *SSESink) WriteChunk(chunk *models.ChunkEnvelope) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}
	return s.write(data)
}

func (s *SSESink) WriteDone() error {
	return s.write([]byte(doneSentinel))
}

func (s *SSESink) write(payload []byte) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// WebSocketSink sends each chunk as one text message and the sentinel as a
// bare "[DONE]" text message.
type WebSocketSink struct {
	conn      *websocket.Conn
	writeWait time.Duration
}

func NewWebSocketSink(conn *websocket.Conn, writeWait time.Duration) *WebSocketSink {
	return &WebSocketSink{conn: conn, writeWait: writeWait}
}

func (s *WebSocketSink) WriteChunk(chunk *models.ChunkEnvelope) error {
	s.setDeadline()
	return s.conn.WriteJSON(chunk)
}

func (s *WebSocketSink) WriteDone() error {
	s.setDeadline()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(doneSentinel))
}

func (s *WebSocketSink) setDeadline() {
	if s.writeWait > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	}
}
