package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	domain "github.com/deepgram/ragbridge/internal/domain/chat"
	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/deepgram/ragbridge/internal/services/chat"
	"github.com/deepgram/ragbridge/pkg/httpext"
	"github.com/rs/zerolog/log"
)

// HandleChatCompletions serves the OpenAI-compatible completions endpoint.
// Errors before the event stream starts are JSON error responses; once the
// stream is open they are delivered as chunks.
func HandleChatCompletions(chatService *chat.Service, w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	// trace level log of the JSON request body pretty printed
	if logger.Trace().Enabled() {
		prettyJSON, err := json.MarshalIndent(req, "", "    ")
		if err == nil {
			logger.Trace().RawJSON("request_body", prettyJSON).Msg("Incoming completions request")
		}
	}

	logger.Info().
		Int("message_count", len(req.Messages)).
		Bool("stream", req.IsStream()).
		Str("client_ip", r.RemoteAddr).
		Msg("Received chat completions request")

	prepared, err := chatService.Prepare(ctx, &req)
	if err != nil {
		logger.Warn().Err(err).Msg("Rejected chat completions request")
		httpext.JsonError(w, err.Error(), domain.StatusCode(err))
		return
	}

	if !prepared.Stream {
		handleCompletion(chatService, prepared, w, r)
		return
	}

	chat.SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	if err := chatService.Stream(ctx, prepared, chat.NewSSESink(w)); err != nil {
		logger.Info().Err(err).Str("client_ip", r.RemoteAddr).Msg("Client disconnected during stream")
	}
}

func handleCompletion(chatService *chat.Service, prepared *chat.Prepared, w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	resp, err := chatService.Complete(r.Context(), prepared)
	if err != nil {
		logger.Error().Err(err).Msg("Backend request failed")
		if domain.IsUpstream(err) {
			httpext.JsonErrorWithDetails(w, http.StatusBadGateway, httpext.ErrorResponse{
				Error:   "Backend request failed",
				Details: upstreamDetails(err),
			})
			return
		}
		httpext.JsonError(w, "Failed to process chat", domain.StatusCode(err))
		return
	}

	if err := httpext.JsonResponse(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
		return
	}

	logger.Info().
		Str("client_ip", r.RemoteAddr).
		Int("status", http.StatusOK).
		Msg("Chat completions request processed successfully")
}

// upstreamDetails prefers the backend's own error body when there is one.
func upstreamDetails(err error) string {
	var upstreamErr *domain.UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.Body != "" {
		return upstreamErr.Body
	}
	return err.Error()
}
