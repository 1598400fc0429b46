package config

// Config is the full runtime configuration, read once at startup.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Asset   AssetConfig
	Stream  StreamConfig
	Proxy   ProxyConfig
	Redis   RedisConfig
}

// Load reads every setting from the environment.
func Load() Config {
	return Config{
		Server:  GetServerConfig(),
		Backend: GetBackendConfig(),
		Asset:   GetAssetConfig(),
		Stream:  GetStreamConfig(),
		Proxy:   GetProxyConfig(),
		Redis:   GetRedisConfig(),
	}
}
