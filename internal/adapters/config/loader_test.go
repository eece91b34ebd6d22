package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kcache/internal/adapters/config"
	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	return config.NewLoader(logger), logger
}

func TestLoad_Success(t *testing.T) {
	path := writeConfig(t, `
capacity: 128
duplicate_policy: lazy
workers: 3
routing: round_robin
log_format: json
compile_latency: 5ms
`)
	loader, _ := newLoader(t)

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, domain.Config{
		Capacity:        128,
		DuplicatePolicy: domain.DuplicateLazy,
		Workers:         3,
		Routing:         domain.RouteRoundRobin,
		LogFormat:       domain.LogJSON,
		CompileLatency:  5 * time.Millisecond,
	}, cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "capacity: 10\n")
	loader, _ := newLoader(t)

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	want := domain.DefaultConfig()
	want.Capacity = 10
	assert.Equal(t, want, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	loader, _ := newLoader(t)

	cfg, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	loader, logger := newLoader(t)
	logger.EXPECT().Info(gomock.Any()).Times(1)

	cfg, err := loader.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoad_ReadFailure(t *testing.T) {
	loader, _ := newLoader(t)

	// A directory cannot be read as a file.
	_, err := loader.Load(t.TempDir())
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectedErr error
		metaKey     string
	}{
		{name: "zero capacity", content: "capacity: 0", expectedErr: domain.ErrInvalidCapacity, metaKey: "capacity"},
		{name: "negative capacity", content: "capacity: -5", expectedErr: domain.ErrInvalidCapacity, metaKey: "capacity"},
		{name: "no workers", content: "workers: 0", expectedErr: domain.ErrInvalidWorkerCount, metaKey: "workers"},
		{name: "bad policy", content: "duplicate_policy: fifo", expectedErr: domain.ErrInvalidDuplicatePolicy, metaKey: "duplicate_policy"},
		{name: "bad routing", content: "routing: random", expectedErr: domain.ErrInvalidRouting, metaKey: "routing"},
		{name: "bad log format", content: "log_format: xml", expectedErr: domain.ErrInvalidLogFormat, metaKey: "log_format"},
		{name: "bad latency", content: "compile_latency: soon", expectedErr: domain.ErrConfigParseFailed, metaKey: "compile_latency"},
		{name: "negative latency", content: "compile_latency: -1s", expectedErr: domain.ErrInvalidCompileLatency, metaKey: "compile_latency"},
		{name: "unknown key", content: "capacty: 10", expectedErr: domain.ErrConfigParseFailed, metaKey: "path"},
		{name: "malformed yaml", content: "capacity: [1", expectedErr: domain.ErrConfigParseFailed, metaKey: "path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			_, err := loader.Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.expectedErr)

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok, "expected *zerr.Error, got %T", err)
			assert.Contains(t, zErr.Metadata(), tt.metaKey)
		})
	}
}
