package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kcache/internal/adapters/config"
	"go.trai.ch/kcache/internal/adapters/executor"
	"go.trai.ch/kcache/internal/adapters/trace"
	"go.trai.ch/kcache/internal/app"
	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const traceYAML = `
patterns:
  - id: 1
    name: conv_relu
    ops: [conv2d, relu]
    inputs:  [{dtype: f32, rank: 4}, {dtype: f32, rank: 4}]
    outputs: [{dtype: f32, rank: 4}]
calls:
  - pattern: 1
    inputs:  [[1, 3, 224, 224], [64, 3, 7, 7]]
    outputs: [[1, 64, 112, 112]]
    repeat: 10
  - pattern: 1
    inputs:  [[2, 3, 224, 224], [64, 3, 7, 7]]
    outputs: [[2, 64, 112, 112]]
`

func newComponents(t *testing.T) (*app.Components, *mocks.MockLogger) {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	rec := executor.NewRecorder()
	a := app.New(config.NewLoader(log), trace.NewLoader(log), rec, nil, log)
	return &app.Components{App: a, Logger: log, Executor: rec}, log
}

func providerFor(c *app.Components) ComponentProvider {
	return func(_ context.Context) (*app.Components, func(), error) {
		return c, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	components, _ := newComponents(t)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, stderr, providerFor(components))

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "kcache version")
}

// TestRun_Replay replays a trace end to end through the real adapters.
func TestRun_Replay(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "trace.yaml")
	require.NoError(t, os.WriteFile(tracePath, []byte(traceYAML), 0o600))
	configPath := filepath.Join(dir, "kcache.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("capacity: 4\nworkers: 2\n"), 0o600))

	components, _ := newComponents(t)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	exitCode := run(context.Background(),
		[]string{"replay", tracePath, "--config", configPath},
		stdout, stderr, providerFor(components))

	require.Equal(t, 0, exitCode, stderr.String())
	assert.Contains(t, stdout.String(), "replayed 11 calls over 1 patterns on 2 workers")

	rec, ok := components.Executor.(*executor.Recorder)
	require.True(t, ok)
	assert.Equal(t, uint64(11), rec.Executions())
	assert.Len(t, rec.Runs(), 2)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	components, log := newComponents(t)
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrTraceReadFailed)
	}).Times(1)

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	exitCode := run(context.Background(),
		[]string{"replay", missing, "--config", filepath.Join(t.TempDir(), "none.yaml")},
		new(bytes.Buffer), new(bytes.Buffer), providerFor(components))

	assert.Equal(t, 1, exitCode)
}
