package config

import (
	"strings"
)

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Host:           GetEnvOrDefault("HOST", "0.0.0.0"),
		Port:           parseEnvInt("PORT", 8080),
		AllowedOrigins: GetCORSAllowedOrigins(),
		LogLevel:       GetEnvOrDefault("LOG_LEVEL", "INFO"),
		LogFormat:      GetEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// GetCORSAllowedOrigins returns the comma separated CORS_ALLOWED_ORIGINS list.
// The default "*" allows every origin.
func GetCORSAllowedOrigins() []string {
	raw := GetEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
