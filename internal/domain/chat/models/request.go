package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ChatRequest is the OpenAI-compatible body accepted on the completions routes.
// Optional generation parameters are pointers so that an omitted field can be
// told apart from an explicit zero. Their ranges are left to the backend.
type ChatRequest struct {
	Messages        []openai.ChatCompletionMessage `json:"messages" validate:"required,min=1"`
	Model           string                         `json:"model,omitempty"`
	Temperature     *float64                       `json:"temperature,omitempty"`
	TopP            *float64                       `json:"top_p,omitempty"`
	TopK            *int                           `json:"top_k,omitempty"`
	MaxTokens       *int                           `json:"max_tokens,omitempty"`
	Seed            *int                           `json:"seed,omitempty"`
	ChunkDuration   *float64                       `json:"chunk_duration,omitempty"`
	EnableReasoning *bool                          `json:"enable_reasoning,omitempty"`
	Stream          *bool                          `json:"stream,omitempty"`
	StreamOptions   *openai.StreamOptions          `json:"stream_options,omitempty"`
	AssetOverride   AssetID                        `json:"asset_override,omitempty"`
}

// IsStream reports whether the client wants an event stream. Streaming is the
// default when the field is absent.
func (r *ChatRequest) IsStream() bool {
	return r.Stream == nil || *r.Stream
}

// IncludeUsage reports whether stream_options.include_usage was set.
func (r *ChatRequest) IncludeUsage() bool {
	return r.StreamOptions != nil && r.StreamOptions.IncludeUsage
}

// MessageText returns the textual content of a message. Multi-part content
// has its text parts joined with a single space.
func MessageText(msg openai.ChatCompletionMessage) string {
	if len(msg.MultiContent) == 0 {
		return msg.Content
	}

	parts := make([]string, 0, len(msg.MultiContent))
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			parts = append(parts, part.Text)
		}
	}
	return strings.Join(parts, " ")
}

// AssetID identifies the backend collection(s) to answer against.
type AssetID []string

// UnmarshalJSON accepts either a single string or a list of strings.
func (a *AssetID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = ParseAssetID(single)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("asset id must be a string or a list of strings")
	}

	var ids AssetID
	for _, id := range list {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	*a = ids
	return nil
}

// ParseAssetID turns a raw textual value (file content, env var, redis value)
// into an AssetID. Entries are comma separated; blanks are dropped.
func ParseAssetID(raw string) AssetID {
	var ids AssetID
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (a AssetID) IsEmpty() bool {
	return len(a) == 0
}

func (a AssetID) String() string {
	return strings.Join(a, ",")
}
