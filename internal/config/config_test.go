package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nalforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "file", cfg.Film.Store)
	assert.Nil(t, cfg.Film.Seed)
	assert.Equal(t, 168*time.Hour, cfg.Film.TTL)
	assert.Equal(t, -1, cfg.Encoder.CutNALU)
	assert.False(t, cfg.Encoder.Strict)
	assert.Equal(t, 1200, cfg.Output.RTP.MTU)
	assert.Equal(t, uint32(90000), cfg.Output.RTP.ClockRate)
	assert.Equal(t, DefaultGeneratorConfig(), cfg.Generator)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
film:
  seed: 42
  store: redis
redis:
  address: 127.0.0.1:6380
encoder:
  strict: true
  cut_nalu: 3
generator:
  num_nalus:
    min: 2
    max: 5
  sps:
    seq_parameter_set_id:
      min: 3
      max: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NotNil(t, cfg.Film.Seed)
	assert.Equal(t, uint64(42), *cfg.Film.Seed)
	assert.Equal(t, "redis", cfg.Film.Store)
	assert.Equal(t, "127.0.0.1:6380", cfg.Redis.Address)
	assert.True(t, cfg.Encoder.Strict)
	assert.Equal(t, 3, cfg.Encoder.CutNALU)

	assert.Equal(t, U32Range{Min: 2, Max: 5}, cfg.Generator.NumNALUs)
	assert.Equal(t, U32Range{Min: 3, Max: 3}, cfg.Generator.SPS.SeqParameterSetID)
	assert.Equal(t, DefaultGeneratorConfig().SPS.ProfileIDC, cfg.Generator.SPS.ProfileIDC)
	// Untouched ranges keep their defaults
	assert.Equal(t, DefaultGeneratorConfig().PPS, cfg.Generator.PPS)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NALFORGE_LOGGING_LEVEL", "warn")
	t.Setenv("NALFORGE_ENCODER_STRICT", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Encoder.Strict)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, "film:\n  store: s3\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "film config")
	})
}

func TestChance(t *testing.T) {
	tests := []struct {
		percent   uint32
		threshold uint32
	}{
		{0, 100},
		{25, 75},
		{100, 0},
		{150, 0},
	}

	for _, tt := range tests {
		r := Chance(tt.percent)
		assert.Equal(t, uint32(0), r.Min)
		assert.Equal(t, uint32(98), r.Max)
		assert.Equal(t, tt.threshold, r.Threshold)
	}
}
