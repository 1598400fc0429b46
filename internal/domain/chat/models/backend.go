package models

import (
	"encoding/json"
	"io"
)

// BackendMessage is the single user turn sent to the RAG backend.
type BackendMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BackendRequest is the payload posted to the RAG backend completions endpoint.
// Optional parameters are only present when the client sent them.
type BackendRequest struct {
	AssetIDs        AssetID          `json:"asset_ids"`
	Model           string           `json:"model"`
	Messages        []BackendMessage `json:"messages"`
	Stream          bool             `json:"stream"`
	Temperature     *float64         `json:"temperature,omitempty"`
	TopP            *float64         `json:"top_p,omitempty"`
	TopK            *int             `json:"top_k,omitempty"`
	MaxTokens       *int             `json:"max_tokens,omitempty"`
	Seed            *int             `json:"seed,omitempty"`
	ChunkDuration   *float64         `json:"chunk_duration,omitempty"`
	EnableReasoning *bool            `json:"enable_reasoning,omitempty"`
}

// BackendStream is an open streaming response from the backend. Closing Body
// releases the connection and the streaming timeout.
type BackendStream struct {
	ContentType string
	Body        io.ReadCloser
}

// BackendCompletion is the single JSON document returned by a non-streaming
// backend call.
type BackendCompletion struct {
	Choices []BackendCompletionChoice `json:"choices"`
	Usage   json.RawMessage           `json:"usage,omitempty"`
}

type BackendCompletionChoice struct {
	Message *BackendCompletionMessage `json:"message,omitempty"`
	Text    *string                   `json:"text,omitempty"`
}

type BackendCompletionMessage struct {
	Content   *string `json:"content"`
	Reasoning *string `json:"reasoning,omitempty"`
}

// Content returns choices[0].message.content, falling back to choices[0].text.
func (c *BackendCompletion) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	choice := c.Choices[0]
	if choice.Message != nil {
		if choice.Message.Content != nil {
			return *choice.Message.Content
		}
		return ""
	}
	if choice.Text != nil {
		return *choice.Text
	}
	return ""
}

// Reasoning returns choices[0].message.reasoning when the backend produced one.
func (c *BackendCompletion) Reasoning() string {
	if len(c.Choices) == 0 || c.Choices[0].Message == nil || c.Choices[0].Message.Reasoning == nil {
		return ""
	}
	return *c.Choices[0].Message.Reasoning
}

// HasUsage reports whether the backend included a non-null usage object.
func (c *BackendCompletion) HasUsage() bool {
	return HasRawValue(c.Usage)
}

// BackendChunk is one event payload of a streaming backend response. Error is
// set when the backend reports a failure inside the stream.
type BackendChunk struct {
	Choices []BackendChunkChoice `json:"choices"`
	Usage   json.RawMessage      `json:"usage,omitempty"`
	Error   json.RawMessage      `json:"error,omitempty"`
}

// IsEmpty reports whether the event carries nothing a client could use.
func (c *BackendChunk) IsEmpty() bool {
	return len(c.Choices) == 0 && !HasRawValue(c.Usage)
}

// ErrorMessage returns the backend's error text, accepting both
// {"error":{"message":"..."}} and {"error":"..."}. It is empty when the event
// is not an error.
func (c *BackendChunk) ErrorMessage() string {
	if !HasRawValue(c.Error) {
		return ""
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(c.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	var text string
	if err := json.Unmarshal(c.Error, &text); err == nil && text != "" {
		return text
	}

	return string(c.Error)
}

type BackendChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// HasRawValue reports whether raw holds something other than nothing or null.
func HasRawValue(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
