package asset

import (
	"context"

	"github.com/deepgram/ragbridge/internal/config"
	"github.com/deepgram/ragbridge/internal/domain/chat"
	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/deepgram/ragbridge/pkg/metrics"
	"github.com/rs/zerolog/log"
)

// Resolver picks the asset id for a request. Precedence is the request value,
// then each override in order, then the static fallback.
type Resolver struct {
	overrides []Override
	static    models.AssetID
	metrics   *metrics.Collector
}

func NewResolver(static models.AssetID, collector *metrics.Collector, overrides ...Override) *Resolver {
	return &Resolver{
		overrides: overrides,
		static:    static,
		metrics:   collector,
	}
}

// NewResolverFromConfig builds the file and redis layers that are configured.
// reader may be nil when redis is disabled.
func NewResolverFromConfig(cfg config.AssetConfig, reader KeyReader, collector *metrics.Collector) *Resolver {
	var overrides []Override
	if cfg.File != "" {
		overrides = append(overrides, FileSource{Path: cfg.File})
	}
	if reader != nil && cfg.RedisKey != "" {
		overrides = append(overrides, RedisSource{Reader: reader, Key: cfg.RedisKey})
	}

	return NewResolver(models.ParseAssetID(cfg.ID), collector, overrides...)
}

// Resolve returns the first non-empty asset id. Override lookup failures are
// logged and skipped; only a complete miss is an error.
func (r *Resolver) Resolve(ctx context.Context, requested models.AssetID) (models.AssetID, Source, error) {
	if !requested.IsEmpty() {
		r.metrics.RecordAssetResolution(string(SourceRequest))
		return requested, SourceRequest, nil
	}

	for _, override := range r.overrides {
		ids, err := override.Lookup(ctx)
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("source", string(override.Source())).Msg("Asset override unavailable, falling back")
			continue
		}
		if !ids.IsEmpty() {
			r.metrics.RecordAssetResolution(string(override.Source()))
			return ids, override.Source(), nil
		}
	}

	if !r.static.IsEmpty() {
		r.metrics.RecordAssetResolution(string(SourceStatic))
		return r.static, SourceStatic, nil
	}

	return nil, "", &chat.ConfigurationError{Message: "No asset id configured: set asset_override, ASSET_ID_FILE or ASSET_ID"}
}
