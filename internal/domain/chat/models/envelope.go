package models

import "encoding/json"

const (
	ObjectChunk      = "chat.completion.chunk"
	ObjectCompletion = "chat.completion"

	FinishReasonError = "error"
)

// ZeroUsage is reported when the backend did not return token counts.
var ZeroUsage = json.RawMessage(`{"prompt_tokens":0,"completion_tokens":0,"total_tokens":0}`)

// Delta carries the incremental fields of a streamed choice. Nil fields are
// left out of the JSON entirely.
type Delta struct {
	Role      *string `json:"role,omitempty"`
	Content   *string `json:"content,omitempty"`
	Reasoning *string `json:"reasoning,omitempty"`
}

type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// ChunkEnvelope is one chat.completion.chunk frame.
type ChunkEnvelope struct {
	ID      string          `json:"id"`
	Object  string          `json:"object"`
	Created int64           `json:"created"`
	Model   string          `json:"model"`
	Choices []ChunkChoice   `json:"choices"`
	Usage   json.RawMessage `json:"usage,omitempty"`
}

type CompletionMessage struct {
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Reasoning *string `json:"reasoning,omitempty"`
}

type CompletionChoice struct {
	Index        int               `json:"index"`
	Message      CompletionMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

// CompletionEnvelope is the single-shot chat.completion response.
type CompletionEnvelope struct {
	ID                string             `json:"id"`
	Object            string             `json:"object"`
	Created           int64              `json:"created"`
	Model             string             `json:"model"`
	Choices           []CompletionChoice `json:"choices"`
	Usage             json.RawMessage    `json:"usage"`
	SystemFingerprint string             `json:"system_fingerprint"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
