package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/deepgram/ragbridge/internal/config"
	"github.com/deepgram/ragbridge/internal/domain/chat"
	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/deepgram/ragbridge/pkg/metrics"
	"github.com/rs/zerolog/log"
)

// maxErrorBody bounds how much of a failed backend response is kept for the
// UpstreamError details.
const maxErrorBody = 64 * 1024

const (
	modeComplete = "complete"
	modeStream   = "stream"
)

// Client calls the RAG backend completions endpoint. There are no retries;
// every call carries its own timeout.
type Client struct {
	client        *http.Client
	endpoint      string
	apiKey        string
	timeout       time.Duration
	streamTimeout time.Duration
	metrics       *metrics.Collector
}

func NewClient(cfg config.BackendConfig, collector *metrics.Collector) *Client {
	return &Client{
		client:        &http.Client{},
		endpoint:      cfg.BaseURL + cfg.CompletionsPath,
		apiKey:        cfg.APIKey,
		timeout:       cfg.Timeout,
		streamTimeout: cfg.StreamTimeout,
		metrics:       collector,
	}
}

// Complete performs a non-streaming call and returns the raw JSON body.
func (c *Client) Complete(ctx context.Context, req models.BackendRequest) ([]byte, error) {
	req.Stream = false

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.do(ctx, req, modeComplete, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &chat.UpstreamUnavailableError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return body, nil
}

// Stream opens a streaming call. The stream timeout stays armed until the
// returned body is closed, so callers must always close it.
func (c *Client) Stream(ctx context.Context, req models.BackendRequest) (*models.BackendStream, error) {
	req.Stream = true

	ctx, cancel := context.WithTimeout(ctx, c.streamTimeout)

	resp, err := c.do(ctx, req, modeStream, "text/event-stream")
	if err != nil {
		cancel()
		return nil, err
	}

	return &models.BackendStream{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
	}, nil
}

func (c *Client) do(ctx context.Context, req models.BackendRequest, mode, accept string) (*http.Response, error) {
	start := time.Now()

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	log.Ctx(ctx).Debug().
		Str("endpoint", c.endpoint).
		Str("mode", mode).
		Strs("asset_ids", req.AssetIDs).
		Msg("Calling RAG backend")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.metrics.RecordBackend(mode, "unavailable", time.Since(start))
		log.Ctx(ctx).Warn().Err(err).Str("mode", mode).Msg("RAG backend unreachable")
		return nil, &chat.UpstreamUnavailableError{Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		c.metrics.RecordBackend(mode, "error", time.Since(start))
		log.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("mode", mode).
			Str("body", string(body)).
			Msg("RAG backend returned error status")

		return nil, &chat.UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	c.metrics.RecordBackend(mode, "ok", time.Since(start))
	return resp, nil
}

// cancelOnClose releases the per-call context when the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
	once   sync.Once
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.cancel)
	return err
}
