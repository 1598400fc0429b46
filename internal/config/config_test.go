package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns default when env not set",
			key:          "RAGBRIDGE_TEST_KEY_1",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
		{
			name:         "returns env value when set",
			key:          "RAGBRIDGE_TEST_KEY_2",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := GetEnvOrDefault(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("GetEnvOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset uses default", "", 30 * time.Second},
		{"duration string", "2m", 2 * time.Minute},
		{"bare integer is seconds", "45", 45 * time.Second},
		{"garbage uses default", "soon", 30 * time.Second},
		{"negative uses default", "-5s", 30 * time.Second},
		{"negative bare integer", "-5", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RAGBRIDGE_TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, parseEnvDuration("RAGBRIDGE_TEST_DURATION", 30*time.Second))
		})
	}
}

func TestParseEnvBool(t *testing.T) {
	t.Setenv("RAGBRIDGE_TEST_BOOL", "true")
	assert.True(t, parseEnvBool("RAGBRIDGE_TEST_BOOL", false))

	t.Setenv("RAGBRIDGE_TEST_BOOL", "nope")
	assert.False(t, parseEnvBool("RAGBRIDGE_TEST_BOOL", false))
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HOST", "PORT", "CORS_ALLOWED_ORIGINS", "RAG_BACKEND_URL", "RAG_COMPLETIONS_PATH",
		"RAG_TIMEOUT", "RAG_STREAM_TIMEOUT", "DEFAULT_MODEL", "ASSET_ID", "ASSET_ID_FILE",
		"SIMULATED_CHUNK_WORDS", "SIMULATED_CHUNK_DELAY", "PROXY_TARGET_URL", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "/v1/chat/completions", cfg.Backend.CompletionsPath)
	assert.Equal(t, DefaultRAGTimeout, cfg.Backend.Timeout)
	assert.Equal(t, DefaultRAGStreamTimeout, cfg.Backend.StreamTimeout)
	assert.Equal(t, DefaultModel, cfg.Backend.DefaultModel)
	assert.Equal(t, "", cfg.Asset.ID)
	assert.Equal(t, "ragbridge:asset_id", cfg.Asset.RedisKey)
	assert.Equal(t, 3, cfg.Stream.WordsPerChunk)
	assert.Equal(t, 50*time.Millisecond, cfg.Stream.ChunkDelay)
	assert.Equal(t, "", cfg.Proxy.TargetURL)
	assert.Equal(t, 60*time.Second, cfg.Proxy.Timeout)
	assert.Equal(t, "", cfg.Redis.URL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RAG_BACKEND_URL", "http://rag.internal:9000/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SIMULATED_CHUNK_WORDS", "0")
	t.Setenv("ASSET_ID_WATCH", "true")

	cfg := Load()

	assert.Equal(t, "http://rag.internal:9000", cfg.Backend.BaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3, cfg.Stream.WordsPerChunk)
	assert.True(t, cfg.Asset.Watch)
}
