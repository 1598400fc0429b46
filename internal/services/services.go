package services

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/deepgram/ragbridge/internal/config"
	"github.com/deepgram/ragbridge/internal/connections"
	"github.com/deepgram/ragbridge/internal/infrastructure/rag"
	"github.com/deepgram/ragbridge/internal/infrastructure/redis"
	"github.com/deepgram/ragbridge/internal/services/asset"
	"github.com/deepgram/ragbridge/internal/services/chat"
	"github.com/deepgram/ragbridge/internal/services/proxy"
	"github.com/deepgram/ragbridge/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	config            config.Config
	metrics           *metrics.Collector
	redisService      *redis.Service
	assetResolver     *asset.Resolver
	ragClient         *rag.Client
	chatService       *chat.Service
	proxyService      *proxy.Service
	connectionManager *connections.Manager
}

// InitializeServices builds every service from cfg. Redis and the proxy are
// optional and stay nil when not configured.
func InitializeServices(cfg config.Config, registry *prometheus.Registry) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	if u, err := url.Parse(cfg.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid RAG_BACKEND_URL %q", cfg.Backend.BaseURL)
	}

	collector := metrics.NewCollector(registry)

	// Initialize Redis service (optional)
	redisService := redis.NewService(cfg.Redis)
	log.Info().Bool("enabled", redisService != nil).Msg("Initializing Redis service")

	// a nil *redis.Service must not become a non-nil interface
	var reader asset.KeyReader
	if redisService != nil {
		reader = redisService
	}
	assetResolver := asset.NewResolverFromConfig(cfg.Asset, reader, collector)
	log.Info().
		Str("static_asset", cfg.Asset.ID).
		Str("asset_file", cfg.Asset.File).
		Msg("Initializing asset resolver")

	ragClient := rag.NewClient(cfg.Backend, collector)
	log.Info().Str("backend", cfg.Backend.BaseURL).Msg("Initializing RAG backend client")

	chatService := chat.NewService(ragClient, assetResolver, cfg.Backend.DefaultModel, cfg.Stream, collector)
	log.Info().Msg("Initializing chat service")

	proxyService := proxy.NewService(cfg.Proxy)

	connectionManager := connections.NewManager(connections.DefaultTimeouts, collector)

	log.Info().Msg("All services initialized successfully")

	return &Services{
		config:            cfg,
		metrics:           collector,
		redisService:      redisService,
		assetResolver:     assetResolver,
		ragClient:         ragClient,
		chatService:       chatService,
		proxyService:      proxyService,
		connectionManager: connectionManager,
	}, nil
}

// GetChatService returns the chat service
func (s *Services) GetChatService() *chat.Service {
	return s.chatService
}

// GetProxyService returns the pass-through proxy, nil when disabled
func (s *Services) GetProxyService() *proxy.Service {
	return s.proxyService
}

// GetAssetResolver returns the asset resolver
func (s *Services) GetAssetResolver() *asset.Resolver {
	return s.assetResolver
}

// GetRedisService returns the redis service, nil when disabled
func (s *Services) GetRedisService() *redis.Service {
	return s.redisService
}

// GetConnectionManager returns the WebSocket connection manager
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connectionManager
}

// GetMetrics returns the metrics collector
func (s *Services) GetMetrics() *metrics.Collector {
	return s.metrics
}

// GetConfig returns the configuration the services were built from
func (s *Services) GetConfig() config.Config {
	return s.config
}

// Close releases connections held by the services.
func (s *Services) Close() error {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	if s.redisService != nil {
		return s.redisService.Close()
	}
	return nil
}
