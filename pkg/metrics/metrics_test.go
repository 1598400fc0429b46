package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("records request counters", func(t *testing.T) {
		c := NewCollector(prometheus.NewRegistry())
		c.RecordRequest("/v1/chat/completions", "POST", "200", 150*time.Millisecond)
		c.RecordRequest("/v1/chat/completions", "POST", "200", 20*time.Millisecond)

		count := testutil.ToFloat64(c.requestsTotal.WithLabelValues("/v1/chat/completions", "POST", "200"))
		assert.Equal(t, float64(2), count)
	})

	t.Run("records backend and stream outcomes", func(t *testing.T) {
		c := NewCollector(nil)
		c.RecordBackend("stream", "ok", time.Second)
		c.RecordBackend("complete", "unavailable", 30*time.Second)
		c.RecordChunks("simulated", 2)
		c.RecordChunks("simulated", 0)
		c.RecordStream("simulated", "done")

		assert.Equal(t, float64(1), testutil.ToFloat64(c.backendRequests.WithLabelValues("stream", "ok")))
		assert.Equal(t, float64(1), testutil.ToFloat64(c.backendRequests.WithLabelValues("complete", "unavailable")))
		assert.Equal(t, float64(2), testutil.ToFloat64(c.streamChunks.WithLabelValues("simulated")))
		assert.Equal(t, float64(1), testutil.ToFloat64(c.streamsTotal.WithLabelValues("simulated", "done")))
	})

	t.Run("tracks websocket gauge", func(t *testing.T) {
		c := NewCollector(nil)
		c.WebSocketOpened()
		c.WebSocketOpened()
		c.WebSocketClosed()

		assert.Equal(t, float64(1), testutil.ToFloat64(c.wsConnections))
	})

	t.Run("nil collector is a no-op", func(t *testing.T) {
		var c *Collector
		assert.NotPanics(t, func() {
			c.RecordRequest("/", "GET", "200", time.Millisecond)
			c.RecordBackend("stream", "ok", time.Millisecond)
			c.RecordChunks("event_stream", 3)
			c.RecordStream("event_stream", "done")
			c.RecordAssetResolution("file")
			c.RecordAssetFileEvent("WRITE")
			c.WebSocketOpened()
			c.WebSocketClosed()
		})
		assert.NotNil(t, c.Handler())
	})

	t.Run("handler exposes metrics", func(t *testing.T) {
		c := NewCollector(nil)
		c.RecordAssetResolution("static")

		server := httptest.NewServer(c.Handler())
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(body), `ragbridge_asset_resolutions_total{source="static"} 1`))
	})
}
