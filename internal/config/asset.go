package config

// AssetConfig holds the layered asset id sources. The file and redis key are
// re-read on every request; ID is the static fallback.
type AssetConfig struct {
	ID       string
	File     string
	Watch    bool
	RedisKey string
}

func GetAssetConfig() AssetConfig {
	return AssetConfig{
		ID:       GetEnvOrDefault("ASSET_ID", ""),
		File:     GetEnvOrDefault("ASSET_ID_FILE", ""),
		Watch:    parseEnvBool("ASSET_ID_WATCH", false),
		RedisKey: GetEnvOrDefault("ASSET_ID_REDIS_KEY", "ragbridge:asset_id"),
	}
}
