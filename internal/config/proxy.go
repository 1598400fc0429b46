package config

import (
	"time"
)

type ProxyConfig struct {
	TargetURL string
	APIKey    string
	Timeout   time.Duration
}

func GetProxyConfig() ProxyConfig {
	return ProxyConfig{
		TargetURL: GetEnvOrDefault("PROXY_TARGET_URL", ""),
		APIKey:    GetEnvOrDefault("PROXY_API_KEY", ""),
		Timeout:   parseEnvDuration("PROXY_TIMEOUT", 60*time.Second),
	}
}
