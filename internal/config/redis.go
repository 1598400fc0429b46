package config

import (
	"github.com/deepgram/ragbridge/pkg/logger"
)

type RedisConfig struct {
	URL      string
	Password string
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		URL:      GetRedisURL(),
		Password: GetRedisPassword(),
	}
}

func GetRedisURL() string {
	logger.Debug(logger.CONFIG, "Attempting to retrieve Redis URL from environment")
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		logger.Debug(logger.CONFIG, "Redis URL not set - redis asset override disabled")
	} else {
		logger.Info(logger.CONFIG, "Redis URL successfully loaded")
	}
	return value
}

func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
