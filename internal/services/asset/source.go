package asset

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/deepgram/ragbridge/internal/domain/chat/models"
)

// Source names the layer that produced a resolved asset id.
type Source string

const (
	SourceRequest Source = "request"
	SourceFile    Source = "file"
	SourceRedis   Source = "redis"
	SourceStatic  Source = "static"
)

// Override is a hot-reloadable asset id layer. Implementations must read
// their backing store on every call and never cache.
type Override interface {
	Source() Source
	Lookup(ctx context.Context) (models.AssetID, error)
}

// ReadAssetFile is the only accessor for the asset override file. It returns
// the trimmed file content.
func ReadAssetFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// FileSource reads the asset id from a file on every lookup, so the file can
// be swapped without restarting the process.
type FileSource struct {
	Path string
}

func (f FileSource) Source() Source {
	return SourceFile
}

func (f FileSource) Lookup(ctx context.Context) (models.AssetID, error) {
	raw, err := ReadAssetFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset file: %w", err)
	}
	return models.ParseAssetID(raw), nil
}

// KeyReader is the subset of the redis service used for overrides.
type KeyReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// RedisSource reads the asset id from a redis key on every lookup.
type RedisSource struct {
	Reader KeyReader
	Key    string
}

func (r RedisSource) Source() Source {
	return SourceRedis
}

func (r RedisSource) Lookup(ctx context.Context) (models.AssetID, error) {
	raw, err := r.Reader.Get(ctx, r.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset key %q: %w", r.Key, err)
	}
	return models.ParseAssetID(raw), nil
}
