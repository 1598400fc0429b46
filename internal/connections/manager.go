package connections

import (
	"sync"
	"time"

	"github.com/deepgram/ragbridge/pkg/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TimeoutConfig holds the keepalive and write deadlines for chat sockets
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   60 * time.Second,
	PingPeriod: 54 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Info describes one open chat socket.
type Info struct {
	ID         string
	RemoteAddr string
	OpenedAt   time.Time
}

// Manager tracks open WebSocket chat connections and mirrors the count into
// the websocket gauge.
type Manager struct {
	connections sync.Map
	timeouts    TimeoutConfig
	metrics     *metrics.Collector
}

func NewManager(timeouts TimeoutConfig, collector *metrics.Collector) *Manager {
	return &Manager{
		timeouts: timeouts,
		metrics:  collector,
	}
}

// Track registers conn and returns its id plus a release func. Calling
// release more than once is safe.
func (m *Manager) Track(conn *websocket.Conn) (string, func()) {
	info := Info{
		ID:       uuid.NewString(),
		OpenedAt: time.Now(),
	}
	if conn != nil && conn.NetConn() != nil {
		info.RemoteAddr = conn.RemoteAddr().String()
	}

	m.connections.Store(conn, info)
	m.metrics.WebSocketOpened()

	var once sync.Once
	return info.ID, func() {
		once.Do(func() {
			m.connections.Delete(conn)
			m.metrics.WebSocketClosed()
		})
	}
}

// Count returns the current number of open connections
func (m *Manager) Count() int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// Lookup returns the info recorded for conn.
func (m *Manager) Lookup(conn *websocket.Conn) (Info, bool) {
	value, ok := m.connections.Load(conn)
	if !ok {
		return Info{}, false
	}
	return value.(Info), true
}

// Timeouts returns the configured socket deadlines
func (m *Manager) Timeouts() TimeoutConfig {
	return m.timeouts
}
