package chat

import (
	"github.com/deepgram/ragbridge/internal/domain/chat"
	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/sashabaranov/go-openai"
)

// ExtractPrompt returns the content of the last user message.
func ExtractPrompt(messages []openai.ChatCompletionMessage) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == openai.ChatMessageRoleUser {
			return models.MessageText(messages[i]), nil
		}
	}
	return "", chat.NewValidationError("No user message found in messages")
}

// BuildBackendRequest converts a client request into the backend payload.
// Only generation parameters the client actually sent are copied, so backend
// defaults stay authoritative for everything else.
func BuildBackendRequest(req *models.ChatRequest, assets models.AssetID, model, prompt string) models.BackendRequest {
	return models.BackendRequest{
		AssetIDs: assets,
		Model:    model,
		Messages: []models.BackendMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		Stream:          req.IsStream(),
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		TopK:            req.TopK,
		MaxTokens:       req.MaxTokens,
		Seed:            req.Seed,
		ChunkDuration:   req.ChunkDuration,
		EnableReasoning: req.EnableReasoning,
	}
}
