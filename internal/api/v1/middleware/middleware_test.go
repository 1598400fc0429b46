package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deepgram/ragbridge/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{"Generates id", ""},
		{"Keeps caller id", "abc-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := log.Logger
			defer func() { log.Logger = prev }()

			var buf bytes.Buffer
			log.Logger = zerolog.New(&buf)

			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				log.Ctx(r.Context()).Info().Msg("inside")
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			assert.NotEmpty(t, got)
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, got)
			}
			assert.Contains(t, buf.String(), `"request_id":"`+got+`"`)
		})
	}
}

func TestAccessLogRecordsRouteTemplate(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	router := mux.NewRouter()
	router.Use(AccessLog(collector))
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/items/1", "/items/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := registry.Gather()
	require.NoError(t, err)

	var count float64
	for _, family := range families {
		if family.GetName() != "ragbridge_http_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, label := range m.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["route"] == "/items/{id}" && labels["code"] == "418" {
				count += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), count)
}

func TestStatusRecorderFlush(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w}

	rec.Write([]byte("data"))
	rec.Flush()

	assert.Equal(t, http.StatusOK, rec.status)
	assert.True(t, w.Flushed)
}

func TestRecover(t *testing.T) {
	t.Run("panic before writing becomes JSON 500", func(t *testing.T) {
		handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
	})

	t.Run("panic after writing keeps the started response", func(t *testing.T) {
		handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("data: partial\n\n"))
			panic("boom")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "data: partial\n\n", w.Body.String())
	})

	t.Run("abort handler is re-raised", func(t *testing.T) {
		handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		assert.Panics(t, func() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}
