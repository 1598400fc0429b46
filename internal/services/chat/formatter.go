package chat

import (
	"encoding/json"
	"fmt"

	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/sashabaranov/go-openai"
)

// ParseBackendCompletion decodes a single backend JSON answer. Both the
// non-streaming response and the simulated stream go through here.
func ParseBackendCompletion(body []byte) (*models.BackendCompletion, error) {
	var completion models.BackendCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode backend response: %w", err)
	}
	return &completion, nil
}

// FormatCompletion builds the chat.completion envelope for a backend answer.
func FormatCompletion(sc StreamContext, completion *models.BackendCompletion) *models.CompletionEnvelope {
	usage := models.ZeroUsage
	if completion.HasUsage() {
		usage = completion.Usage
	}

	message := models.CompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: completion.Content(),
	}
	if reasoning := completion.Reasoning(); reasoning != "" {
		message.Reasoning = models.StringPtr(reasoning)
	}

	return &models.CompletionEnvelope{
		ID:      sc.ID,
		Object:  models.ObjectCompletion,
		Created: sc.Created,
		Model:   sc.Model,
		Choices: []models.CompletionChoice{{
			Index:        0,
			Message:      message,
			FinishReason: string(openai.FinishReasonStop),
		}},
		Usage:             usage,
		SystemFingerprint: newFingerprint(),
	}
}
