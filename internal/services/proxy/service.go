package proxy

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/deepgram/ragbridge/internal/config"
	"github.com/rs/zerolog/log"
)

// hopHeaders describe the upstream connection and are never relayed.
var hopHeaders = []string{"Content-Encoding", "Transfer-Encoding", "Connection"}

// Service forwards raw completions bodies to an external OpenAI-compatible
// endpoint without looking inside them.
type Service struct {
	client    *http.Client
	targetURL string
	apiKey    string
}

// NewService returns nil when PROXY_TARGET_URL is unset.
func NewService(cfg config.ProxyConfig) *Service {
	if cfg.TargetURL == "" {
		log.Info().Msg("Proxy target URL not configured - pass-through mode disabled")
		return nil
	}

	log.Info().Str("target", cfg.TargetURL).Msg("Pass-through proxy enabled")

	// The timeout bounds the wait for response headers only. Streamed bodies
	// can run for as long as the target keeps sending.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout

	return &Service{
		client:    &http.Client{Transport: transport},
		targetURL: cfg.TargetURL,
		apiKey:    cfg.APIKey,
	}
}

// Forward posts body to the target. The caller owns the returned response
// body. Accept-Encoding is not forwarded so the transport hands back a decoded
// body, which keeps it valid once Content-Encoding is stripped.
func (s *Service) Forward(ctx context.Context, body []byte, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.targetURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if accept := header.Get("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}

	switch {
	case s.apiKey != "":
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	case header.Get("Authorization") != "":
		req.Header.Set("Authorization", header.Get("Authorization"))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach proxy target: %w", err)
	}

	log.Ctx(ctx).Debug().
		Int("status", resp.StatusCode).
		Str("content_type", resp.Header.Get("Content-Type")).
		Msg("Proxy target responded")

	return resp, nil
}

// CopyResponseHeaders copies src into dst minus the connection-management
// headers.
func CopyResponseHeaders(dst, src http.Header) {
	for key, values := range src {
		if isHopHeader(key) {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func isHopHeader(key string) bool {
	canonical := http.CanonicalHeaderKey(key)
	for _, h := range hopHeaders {
		if canonical == h {
			return true
		}
	}
	return false
}
