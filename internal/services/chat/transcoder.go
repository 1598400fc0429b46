package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/deepgram/ragbridge/internal/domain/chat"
	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// TranscoderKind tags which strategy handles a backend response.
type TranscoderKind int

const (
	KindEventStream TranscoderKind = iota
	KindSimulated
)

func (k TranscoderKind) String() string {
	switch k {
	case KindEventStream:
		return "event_stream"
	case KindSimulated:
		return "simulated"
	default:
		return "unknown"
	}
}

// Transcoder turns a backend response body into client frames.
type Transcoder interface {
	Kind() TranscoderKind
	Transcode(ctx context.Context, body io.Reader, out *FrameWriter) error
}

// SelectTranscoder picks the strategy from the backend's content type: event
// streams are relayed, anything else is treated as one JSON answer.
func SelectTranscoder(contentType string, simulated SimulatedTranscoder) Transcoder {
	if isEventStream(contentType) {
		return EventStreamTranscoder{}
	}
	return simulated
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/event-stream")
	}
	return mediaType == "text/event-stream"
}

// EventStreamTranscoder relays a backend event stream, re-stamping every
// chunk with this stream's id, created time and model.
type EventStreamTranscoder struct{}

func (EventStreamTranscoder) Kind() TranscoderKind {
	return KindEventStream
}

func (EventStreamTranscoder) Transcode(ctx context.Context, body io.Reader, out *FrameWriter) error {
	reader := newEventReader(body)
	skipped := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := reader.Next()
		if err == io.EOF {
			if skipped > 0 {
				log.Ctx(ctx).Warn().Int("skipped_events", skipped).Msg("Backend stream contained malformed or empty events")
			}
			return out.Done()
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return out.Fail(&chat.UpstreamUnavailableError{Err: fmt.Errorf("failed to read backend stream: %w", err)})
		}

		payload = strings.TrimSpace(payload)
		if payload == doneSentinel {
			return out.Done()
		}

		var chunk models.BackendChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			skipped++
			log.Ctx(ctx).Debug().Err(err).Str("payload", payload).Msg("Skipping malformed backend event")
			continue
		}

		if msg := chunk.ErrorMessage(); msg != "" {
			log.Ctx(ctx).Warn().Str("backend_error", msg).Msg("Backend reported an error mid-stream")
			return out.Fail(&chat.UpstreamUnavailableError{Err: fmt.Errorf("backend stream error: %s", msg)})
		}

		if chunk.IsEmpty() {
			skipped++
			log.Ctx(ctx).Debug().Str("payload", payload).Msg("Skipping backend event without choices or usage")
			continue
		}

		choices := make([]models.ChunkChoice, 0, len(chunk.Choices))
		for _, choice := range chunk.Choices {
			choices = append(choices, models.ChunkChoice{
				Index:        choice.Index,
				Delta:        choice.Delta,
				FinishReason: choice.FinishReason,
			})
		}

		if err := out.Chunk(choices, chunk.Usage); err != nil {
			return err
		}
	}
}

// SimulatedTranscoder replays a complete JSON answer as a stream of word
// groups.
type SimulatedTranscoder struct {
	WordsPerChunk int
	Delay         time.Duration
}

func (SimulatedTranscoder) Kind() TranscoderKind {
	return KindSimulated
}

func (t SimulatedTranscoder) Transcode(ctx context.Context, body io.Reader, out *FrameWriter) error {
	data, err := io.ReadAll(body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return out.Fail(&chat.UpstreamUnavailableError{Err: fmt.Errorf("failed to read backend response: %w", err)})
	}

	completion, err := ParseBackendCompletion(data)
	if err != nil {
		return out.Fail(err)
	}

	role := openai.ChatMessageRoleAssistant
	empty := ""
	if err := out.Delta(models.Delta{Role: &role, Content: &empty}, nil); err != nil {
		return err
	}

	if reasoning := completion.Reasoning(); reasoning != "" {
		if err := out.Delta(models.Delta{Reasoning: &reasoning}, nil); err != nil {
			return err
		}
	}

	groups := WordGroups(completion.Content(), t.WordsPerChunk)
	for i, group := range groups {
		if i > 0 && t.Delay > 0 {
			if err := sleep(ctx, t.Delay); err != nil {
				return err
			}
		}
		content := group
		if err := out.Delta(models.Delta{Content: &content}, nil); err != nil {
			return err
		}
	}

	if err := out.Delta(models.Delta{}, models.StringPtr(string(openai.FinishReasonStop))); err != nil {
		return err
	}

	if out.Context().IncludeUsage && completion.HasUsage() {
		if err := out.Chunk([]models.ChunkChoice{}, completion.Usage); err != nil {
			return err
		}
	}

	return out.Done()
}

// WordGroups splits text on whitespace and joins every size words. Each group
// but the last carries a trailing space, so concatenating the groups rebuilds
// the words separated by single spaces.
func WordGroups(text string, size int) []string {
	if size < 1 {
		size = 1
	}

	words := strings.Fields(text)
	groups := make([]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		group := strings.Join(words[start:end], " ")
		if end < len(words) {
			group += " "
		}
		groups = append(groups, group)
	}
	return groups
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
