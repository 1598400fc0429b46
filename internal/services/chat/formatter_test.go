package chat

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chatIDPattern      = regexp.MustCompile(`^chatcmpl-[0-9a-f]{12}$`)
	fingerprintPattern = regexp.MustCompile(`^fp_[0-9a-f]{8}$`)
)

func TestIDs(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Regexp(t, chatIDPattern, newChatID())
		assert.Regexp(t, fingerprintPattern, newFingerprint())
	}
	assert.NotEqual(t, newChatID(), newChatID())
}

func TestFormatCompletion(t *testing.T) {
	t.Run("copies content and usage", func(t *testing.T) {
		completion, err := ParseBackendCompletion([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"hi there"}}],
			"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}
		}`))
		require.NoError(t, err)

		envelope := FormatCompletion(testStreamContext(false), completion)

		data, err := json.Marshal(envelope)
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "chatcmpl-0123456789ab", got["id"])
		assert.Equal(t, "chat.completion", got["object"])
		assert.Equal(t, float64(1700000000), got["created"])
		assert.Equal(t, "rag-default", got["model"])
		assert.Regexp(t, fingerprintPattern, got["system_fingerprint"])

		choice := got["choices"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "stop", choice["finish_reason"])
		assert.Equal(t, float64(0), choice["index"])
		message := choice["message"].(map[string]interface{})
		assert.Equal(t, "assistant", message["role"])
		assert.Equal(t, "hi there", message["content"])
		assert.NotContains(t, message, "reasoning")

		assert.Equal(t, map[string]interface{}{
			"prompt_tokens": float64(3), "completion_tokens": float64(2), "total_tokens": float64(5),
		}, got["usage"])
	})

	t.Run("zero fills missing usage", func(t *testing.T) {
		completion, err := ParseBackendCompletion([]byte(`{"choices":[{"text":"legacy"}]}`))
		require.NoError(t, err)

		envelope := FormatCompletion(testStreamContext(false), completion)

		assert.Equal(t, "legacy", envelope.Choices[0].Message.Content)
		assert.JSONEq(t, `{"prompt_tokens":0,"completion_tokens":0,"total_tokens":0}`, string(envelope.Usage))
	})

	t.Run("keeps reasoning", func(t *testing.T) {
		completion, err := ParseBackendCompletion([]byte(`{"choices":[{"message":{"content":"x","reasoning":"thought"}}]}`))
		require.NoError(t, err)

		envelope := FormatCompletion(testStreamContext(false), completion)
		require.NotNil(t, envelope.Choices[0].Message.Reasoning)
		assert.Equal(t, "thought", *envelope.Choices[0].Message.Reasoning)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := ParseBackendCompletion([]byte(`not json`))
		assert.Error(t, err)
	})
}
