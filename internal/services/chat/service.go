package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deepgram/ragbridge/internal/config"
	"github.com/deepgram/ragbridge/internal/domain/chat"
	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/deepgram/ragbridge/internal/services/asset"
	"github.com/deepgram/ragbridge/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Backend is the RAG backend as seen by the chat service.
type Backend interface {
	Complete(ctx context.Context, req models.BackendRequest) ([]byte, error)
	Stream(ctx context.Context, req models.BackendRequest) (*models.BackendStream, error)
}

// AssetResolver picks the backend asset for a request.
type AssetResolver interface {
	Resolve(ctx context.Context, requested models.AssetID) (models.AssetID, asset.Source, error)
}

// Prepared is a validated request ready to send to the backend.
type Prepared struct {
	Backend      models.BackendRequest
	Model        string
	AssetSource  asset.Source
	Stream       bool
	IncludeUsage bool
}

type Service struct {
	backend      Backend
	resolver     AssetResolver
	defaultModel string
	simulated    SimulatedTranscoder
	metrics      *metrics.Collector
	// use a single instance of Validate, it caches struct info
	validate *validator.Validate
}

func NewService(backend Backend, resolver AssetResolver, defaultModel string, streamCfg config.StreamConfig, collector *metrics.Collector) *Service {
	if defaultModel == "" {
		defaultModel = config.DefaultModel
	}

	return &Service{
		backend:      backend,
		resolver:     resolver,
		defaultModel: defaultModel,
		simulated: SimulatedTranscoder{
			WordsPerChunk: streamCfg.WordsPerChunk,
			Delay:         streamCfg.ChunkDelay,
		},
		metrics:  collector,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Prepare validates the request, resolves the asset and builds the backend
// payload. Every error it returns happens before any output is written.
func (s *Service) Prepare(ctx context.Context, req *models.ChatRequest) (*Prepared, error) {
	if req == nil {
		return nil, chat.NewValidationError("Request body is required")
	}

	if err := s.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return nil, chat.NewValidationError("Invalid request: field %s failed on the '%s' rule", validationErrs[0].Field(), validationErrs[0].Tag())
		}
		return nil, chat.NewValidationError("Invalid request: %v", err)
	}

	prompt, err := ExtractPrompt(req.Messages)
	if err != nil {
		return nil, err
	}

	assets, source, err := s.resolver.Resolve(ctx, req.AssetOverride)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	log.Ctx(ctx).Debug().
		Strs("asset_ids", assets).
		Str("asset_source", string(source)).
		Str("model", model).
		Bool("stream", req.IsStream()).
		Msg("Prepared backend request")

	return &Prepared{
		Backend:      BuildBackendRequest(req, assets, model, prompt),
		Model:        model,
		AssetSource:  source,
		Stream:       req.IsStream(),
		IncludeUsage: req.IncludeUsage(),
	}, nil
}

// Complete runs a non-streaming request and formats the answer.
func (s *Service) Complete(ctx context.Context, p *Prepared) (*models.CompletionEnvelope, error) {
	body, err := s.backend.Complete(ctx, p.Backend)
	if err != nil {
		return nil, err
	}

	completion, err := ParseBackendCompletion(body)
	if err != nil {
		return nil, &chat.UpstreamUnavailableError{Err: err}
	}

	return FormatCompletion(NewStreamContext(p.Model, false), completion), nil
}

// Stream runs a streaming request into sink. Backend failures are reported
// in-band, so the returned error is only non-nil when the client went away or
// ctx was cancelled.
func (s *Service) Stream(ctx context.Context, p *Prepared, sink ChunkSink) error {
	start := time.Now()
	out := NewFrameWriter(sink, NewStreamContext(p.Model, p.IncludeUsage))
	logger := log.Ctx(ctx).With().Str("chat_id", out.Context().ID).Logger()

	stream, err := s.backend.Stream(ctx, p.Backend)
	if err != nil {
		logger.Warn().Err(err).Msg("Backend stream failed before first frame")
		s.metrics.RecordStream("none", "error")
		return out.Fail(err)
	}
	defer stream.Body.Close()

	transcoder := SelectTranscoder(stream.ContentType, s.simulated)
	kind := transcoder.Kind().String()

	err = transcoder.Transcode(ctx, stream.Body, out)

	outcome := "done"
	switch {
	case err != nil:
		outcome = "cancelled"
	case out.Failed():
		outcome = "error"
	}

	s.metrics.RecordChunks(kind, out.Chunks())
	s.metrics.RecordStream(kind, outcome)

	logger.Info().
		Str("transcoder", kind).
		Str("outcome", outcome).
		Int("chunks", out.Chunks()).
		Dur("duration", time.Since(start)).
		Msg("Stream finished")

	if err != nil {
		return fmt.Errorf("stream interrupted: %w", err)
	}
	return nil
}
