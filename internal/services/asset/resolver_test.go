package asset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepgram/ragbridge/internal/config"
	"github.com/deepgram/ragbridge/internal/domain/chat"
	"github.com/deepgram/ragbridge/internal/domain/chat/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeReader) Get(ctx context.Context, key string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.values[key], nil
}

func writeAssetFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asset_id")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolvePrecedence(t *testing.T) {
	filePath := writeAssetFile(t, "  from-file \n")
	missingPath := filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		name       string
		requested  models.AssetID
		cfg        config.AssetConfig
		redis      *fakeReader
		want       models.AssetID
		wantSource Source
	}{
		{
			name:       "request wins over everything",
			requested:  models.AssetID{"from-request"},
			cfg:        config.AssetConfig{ID: "static", File: filePath, RedisKey: "k"},
			redis:      &fakeReader{values: map[string]string{"k": "from-redis"}},
			want:       models.AssetID{"from-request"},
			wantSource: SourceRequest,
		},
		{
			name:       "file wins over redis and static",
			cfg:        config.AssetConfig{ID: "static", File: filePath, RedisKey: "k"},
			redis:      &fakeReader{values: map[string]string{"k": "from-redis"}},
			want:       models.AssetID{"from-file"},
			wantSource: SourceFile,
		},
		{
			name:       "missing file falls through to redis",
			cfg:        config.AssetConfig{ID: "static", File: missingPath, RedisKey: "k"},
			redis:      &fakeReader{values: map[string]string{"k": "a,b"}},
			want:       models.AssetID{"a", "b"},
			wantSource: SourceRedis,
		},
		{
			name:       "redis error falls through to static",
			cfg:        config.AssetConfig{ID: "static", File: missingPath, RedisKey: "k"},
			redis:      &fakeReader{err: errors.New("connection refused")},
			want:       models.AssetID{"static"},
			wantSource: SourceStatic,
		},
		{
			name:       "empty redis key falls through to static",
			cfg:        config.AssetConfig{ID: "static", RedisKey: "k"},
			redis:      &fakeReader{values: map[string]string{}},
			want:       models.AssetID{"static"},
			wantSource: SourceStatic,
		},
		{
			name:       "unreadable file degrades to static without redis",
			cfg:        config.AssetConfig{ID: "static", File: missingPath},
			want:       models.AssetID{"static"},
			wantSource: SourceStatic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reader KeyReader
			if tt.redis != nil {
				reader = tt.redis
			}
			resolver := NewResolverFromConfig(tt.cfg, reader, nil)

			got, source, err := resolver.Resolve(context.Background(), tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestResolveRequestDoesNoIO(t *testing.T) {
	reader := &fakeReader{values: map[string]string{"k": "from-redis"}}
	resolver := NewResolverFromConfig(config.AssetConfig{RedisKey: "k"}, reader, nil)

	_, _, err := resolver.Resolve(context.Background(), models.AssetID{"x"})
	require.NoError(t, err)
	assert.Equal(t, 0, reader.calls)
}

func TestResolveNothingConfigured(t *testing.T) {
	resolver := NewResolverFromConfig(config.AssetConfig{File: filepath.Join(t.TempDir(), "missing")}, nil, nil)

	_, _, err := resolver.Resolve(context.Background(), nil)

	var cfgErr *chat.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestResolveReadsFileFresh(t *testing.T) {
	path := writeAssetFile(t, "first")
	resolver := NewResolverFromConfig(config.AssetConfig{File: path}, nil, nil)

	got, _, err := resolver.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.AssetID{"first"}, got)

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))

	got, _, err = resolver.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.AssetID{"second"}, got)
}

func TestReadAssetFile(t *testing.T) {
	value, err := ReadAssetFile(writeAssetFile(t, "\n\tkb-9  \n"))
	require.NoError(t, err)
	assert.Equal(t, "kb-9", value)

	_, err = ReadAssetFile(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
