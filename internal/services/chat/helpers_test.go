package chat

import (
	"encoding/json"
	"errors"

	"github.com/deepgram/ragbridge/internal/domain/chat/models"
)

var errClientGone = errors.New("client gone")

// recordingSink keeps every frame in order. "[DONE]" is recorded as a frame.
type recordingSink struct {
	frames []string
	chunks []*models.ChunkEnvelope
	// failAt makes the n-th write (1-based) fail; zero never fails.
	failAt int
	writes int
}

func (r *recordingSink) WriteChunk(chunk *models.ChunkEnvelope) error {
	r.writes++
	if r.failAt > 0 && r.writes >= r.failAt {
		return errClientGone
	}
	data, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	r.frames = append(r.frames, string(data))
	r.chunks = append(r.chunks, chunk)
	return nil
}

func (r *recordingSink) WriteDone() error {
	r.writes++
	if r.failAt > 0 && r.writes >= r.failAt {
		return errClientGone
	}
	r.frames = append(r.frames, doneSentinel)
	return nil
}

func (r *recordingSink) doneCount() int {
	n := 0
	for _, f := range r.frames {
		if f == doneSentinel {
			n++
		}
	}
	return n
}

func (r *recordingSink) lastFrame() string {
	if len(r.frames) == 0 {
		return ""
	}
	return r.frames[len(r.frames)-1]
}

// contents concatenates every delta.content in order.
func (r *recordingSink) contents() string {
	var out string
	for _, c := range r.chunks {
		for _, choice := range c.Choices {
			if choice.Delta.Content != nil {
				out += *choice.Delta.Content
			}
		}
	}
	return out
}

func testStreamContext(includeUsage bool) StreamContext {
	return StreamContext{ID: "chatcmpl-0123456789ab", Created: 1700000000, Model: "rag-default", IncludeUsage: includeUsage}
}

func contentDelta(s string) models.Delta {
	return models.Delta{Content: &s}
}
