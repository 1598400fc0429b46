package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	proxysvc "github.com/deepgram/ragbridge/internal/services/proxy"
	"github.com/deepgram/ragbridge/pkg/httpext"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 10 << 20

// HandlePassthrough relays a completions request to the configured proxy
// target and streams the response back as it arrives.
func HandlePassthrough(proxyService *proxysvc.Service, w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if proxyService == nil {
		httpext.JsonError(w, "Proxy target not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpext.JsonError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		httpext.JsonError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if !json.Valid(body) {
		logger.Warn().Msg("Client sent malformed JSON to proxy")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	resp, err := proxyService.Forward(r.Context(), body, r.Header)
	if err != nil {
		logger.Error().Err(err).Msg("Proxy request failed")
		httpext.JsonErrorWithDetails(w, http.StatusBadGateway, httpext.ErrorResponse{
			Error:   "Proxy request failed",
			Details: err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	proxysvc.CopyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	n, err := copyFlushing(w, resp.Body)
	if err != nil {
		logger.Info().Err(err).Int64("bytes", n).Msg("Proxy relay interrupted")
		return
	}

	logger.Info().
		Int("status", resp.StatusCode).
		Int64("bytes", n).
		Msg("Proxy request relayed")
}

// copyFlushing copies src to w, flushing after every read so event streams
// reach the client without buffering.
func copyFlushing(w http.ResponseWriter, src io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)

	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			m, writeErr := w.Write(buf[:n])
			written += int64(m)
			if writeErr != nil {
				return written, writeErr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
