package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/nalforge/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
		check   func(t *testing.T, l *logrus.Logger)
	}{
		{
			name: "json to stdout",
			cfg:  config.LoggingConfig{Level: "debug", Format: "json", Output: "stdout"},
			check: func(t *testing.T, l *logrus.Logger) {
				assert.Equal(t, logrus.DebugLevel, l.GetLevel())
				assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
				assert.Equal(t, os.Stdout, l.Out)
			},
		},
		{
			name: "text to stderr",
			cfg:  config.LoggingConfig{Level: "warn", Format: "text", Output: "stderr"},
			check: func(t *testing.T, l *logrus.Logger) {
				assert.Equal(t, logrus.WarnLevel, l.GetLevel())
				assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
				assert.Equal(t, os.Stderr, l.Out)
			},
		},
		{
			name:    "bad level",
			cfg:     config.LoggingConfig{Level: "chatty", Format: "json", Output: "stdout"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, l)
		})
	}
}

func TestNewFileOutputCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nalforge.log")

	l, err := New(&config.LoggingConfig{Level: "info", Format: "json", Output: path, MaxSize: 1})
	require.NoError(t, err)

	l.Info("hello")

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	WithComponent(l, "encoder").WithField("nalu_index", 3).Info("encoded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "encoder", entry["component"])
	assert.Equal(t, "nalforge", entry["service"])
	assert.Equal(t, float64(3), entry["nalu_index"])
}

func TestNullLogger(t *testing.T) {
	l := OrNull(nil)
	assert.IsType(t, &NullLogger{}, l)

	// Chaining must keep returning a usable logger
	l.WithField("a", 1).WithError(assert.AnError).Warnf("ignored %d", 1)

	existing := NewLogrusAdapter(logrus.NewEntry(logrus.New()))
	assert.Same(t, existing, OrNull(existing))
}

func TestSessionContext(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	ctx, sessionID := SessionContext(context.Background(), l)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, sessionID, GetSessionID(ctx))

	FromContext(ctx).Info("started")
	assert.Contains(t, buf.String(), sessionID)

	assert.Empty(t, GetSessionID(context.Background()))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestSampledLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})

	sampled := NewSampledLogger(NewLogrusAdapter(logrus.NewEntry(l))).
		WithSampler(CategoryOverflow, 2, 3)

	for i := 0; i < 10; i++ {
		sampled.WarnWithCategory(CategoryOverflow, "masked", map[string]interface{}{"i": i})
	}

	// burst of 2, then seen 5 and 8
	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 4, lines)

	stats := sampled.GetSamplerStats()[CategoryOverflow]
	assert.Equal(t, int64(10), stats.Seen)
	assert.Equal(t, int64(4), stats.Logged)
	assert.Equal(t, int64(6), stats.Dropped)

	t.Run("unknown category always logs", func(t *testing.T) {
		buf.Reset()
		sampled.DebugWithCategory("other", "x", nil)
		sampled.DebugWithCategory("other", "y", nil)
		assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
	})

	t.Run("derived loggers share counters", func(t *testing.T) {
		derived := sampled.WithField("k", "v").(*SampledLogger)
		derived.WarnWithCategory(CategoryOverflow, "masked", nil)
		assert.Equal(t, int64(11), sampled.GetSamplerStats()[CategoryOverflow].Seen)
	})
}
