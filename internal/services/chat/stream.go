package chat

import (
	"encoding/json"
	"fmt"

	"github.com/deepgram/ragbridge/internal/domain/chat/models"
)

type streamState int

const (
	stateInit streamState = iota
	stateStreaming
	stateDone
	stateError
)

func (s streamState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateStreaming:
		return "streaming"
	case stateDone:
		return "done"
	case stateError:
		return "error"
	default:
		return "unknown"
	}
}

// FrameWriter drives the INIT -> STREAMING -> DONE state machine on top of a
// sink. The sentinel is written at most once and nothing follows it. After a
// sink write fails every later call returns that error without writing.
type FrameWriter struct {
	sink     ChunkSink
	sc       StreamContext
	state    streamState
	chunks   int
	failed   bool
	writeErr error
}

func NewFrameWriter(sink ChunkSink, sc StreamContext) *FrameWriter {
	return &FrameWriter{sink: sink, sc: sc, state: stateInit}
}

// Context returns the stream identity used for every frame.
func (f *FrameWriter) Context() StreamContext {
	return f.sc
}

// Chunks is the number of chunk frames written so far.
func (f *FrameWriter) Chunks() int {
	return f.chunks
}

// Failed reports whether the stream ended through the error path.
func (f *FrameWriter) Failed() bool {
	return f.failed
}

func (f *FrameWriter) Chunk(choices []models.ChunkChoice, usage json.RawMessage) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.state == stateDone {
		return nil
	}
	if choices == nil {
		choices = []models.ChunkChoice{}
	}

	envelope := &models.ChunkEnvelope{
		ID:      f.sc.ID,
		Object:  models.ObjectChunk,
		Created: f.sc.Created,
		Model:   f.sc.Model,
		Choices: choices,
	}
	if models.HasRawValue(usage) {
		envelope.Usage = usage
	}

	if err := f.sink.WriteChunk(envelope); err != nil {
		f.writeErr = err
		return err
	}
	f.chunks++
	if f.state == stateInit {
		f.state = stateStreaming
	}
	return nil
}

// Delta writes a single-choice chunk at index 0.
func (f *FrameWriter) Delta(delta models.Delta, finishReason *string) error {
	return f.Chunk([]models.ChunkChoice{{Index: 0, Delta: delta, FinishReason: finishReason}}, nil)
}

// Done writes the sentinel unless it was already written.
func (f *FrameWriter) Done() error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.state == stateDone {
		return nil
	}

	if err := f.sink.WriteDone(); err != nil {
		f.writeErr = err
		return err
	}
	f.state = stateDone
	return nil
}

// Fail reports err to the client in-band: one chunk whose content carries the
// message and finish_reason "error", then the sentinel. It returns nil when
// the error was delivered.
func (f *FrameWriter) Fail(err error) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.state == stateDone {
		return nil
	}

	f.state = stateError
	f.failed = true

	message := fmt.Sprintf("Error: %v", err)
	if chunkErr := f.Delta(models.Delta{Content: &message}, models.StringPtr(models.FinishReasonError)); chunkErr != nil {
		return chunkErr
	}
	return f.Done()
}
