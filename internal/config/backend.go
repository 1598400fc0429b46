package config

import (
	"strings"
	"time"
)

const (
	DefaultRAGTimeout       = 30 * time.Second
	DefaultRAGStreamTimeout = 5 * time.Minute
	DefaultModel            = "rag-default"
)

// BackendConfig describes the RAG backend the proxy translates to.
type BackendConfig struct {
	BaseURL         string
	CompletionsPath string
	APIKey          string
	Timeout         time.Duration
	StreamTimeout   time.Duration
	DefaultModel    string
}

func GetBackendConfig() BackendConfig {
	return BackendConfig{
		BaseURL:         strings.TrimRight(GetEnvOrDefault("RAG_BACKEND_URL", "http://localhost:8000"), "/"),
		CompletionsPath: GetEnvOrDefault("RAG_COMPLETIONS_PATH", "/v1/chat/completions"),
		APIKey:          GetEnvOrDefault("RAG_API_KEY", ""),
		Timeout:         parseEnvDuration("RAG_TIMEOUT", DefaultRAGTimeout),
		StreamTimeout:   parseEnvDuration("RAG_STREAM_TIMEOUT", DefaultRAGStreamTimeout),
		DefaultModel:    GetEnvOrDefault("DEFAULT_MODEL", DefaultModel),
	}
}
