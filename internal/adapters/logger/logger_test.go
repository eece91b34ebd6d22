package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kcache/internal/adapters/logger"
	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/zerr"
)

func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	lg, ok := logger.New().(*logger.Logger)
	require.True(t, ok)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("dispatching 3 calls")

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "dispatching 3 calls")
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("compile failed")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "compile failed")
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_ErrorText(t *testing.T) {
	lg, buf := newTestLogger(t)
	err := zerr.With(zerr.Wrap(domain.ErrInvalidCapacity, "invalid configuration"), "capacity", 0)

	lg.Error(err)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "Error: invalid configuration")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, domain.ErrInvalidCapacity.Error())
}

func TestLogger_ErrorJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(zerr.With(zerr.Wrap(errors.New("disk full"), "failed to read trace"), "path", "trace.yaml"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "failed to read trace: disk full", record["error"])
	assert.Equal(t, map[string]any{"path": "trace.yaml"}, record["metadata"])
}

func TestLogger_SetJSONKeepsOutput(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Info("hello")
	lg.SetJSON(false)
	lg.Info("world")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, json.Valid(lines[0]))
	assert.False(t, json.Valid(lines[1]))
}

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "single standard error",
			err:          errors.New("simple error"),
			wantMessages: []string{"simple error"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "zerr single error",
			err:          zerr.New("zerr error"),
			wantMessages: []string{"zerr error"},
			wantMetadata: []map[string]any{{}},
		},
		{
			name:         "zerr wrapped chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer"),
			wantMessages: []string{"outer layer", "middle layer", "root cause"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name:         "metadata on an unnamed level folds into the cause",
			err:          zerr.With(errors.Join(domain.ErrKernelReleaseFailed, errors.New("device lost")), "kernel", "k1"),
			wantMessages: []string{domain.ErrKernelReleaseFailed.Error() + "\ndevice lost"},
			wantMetadata: []map[string]any{{"kernel": "k1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)

			require.Len(t, entries, len(tt.wantMessages))
			for i, want := range tt.wantMessages {
				assert.Equal(t, want, entries[i].Message, "message %d", i)
				assert.Equal(t, tt.wantMetadata[i], entries[i].Metadata, "metadata %d", i)
			}
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "single error"}},
			want:    "Error: single error",
		},
		{
			name:    "two entries with caused by",
			entries: []logger.ErrorEntry{{Message: "outer error"}, {Message: "inner error"}},
			want:    "Error: outer error\n\n  Caused by:\n    → inner error",
		},
		{
			name:    "metadata sorted alphabetically",
			entries: []logger.ErrorEntry{{Message: "error", Metadata: map[string]any{"zebra": "z", "alpha": "a"}}},
			want:    "Error: error\n       alpha: a\n       zebra: z",
		},
		{
			name: "multiline cause with metadata",
			entries: []logger.ErrorEntry{
				{Message: "main"},
				{Message: "cause line1\ncause line2", Metadata: map[string]any{"worker": 3}},
			},
			want: "Error: main\n\n  Caused by:\n    → cause line1\n      cause line2\n      worker: 3",
		},
		{
			name:    "empty entries",
			entries: []logger.ErrorEntry{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
