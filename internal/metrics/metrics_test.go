package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordNALU(t *testing.T) {
	initialCount := testutil.ToFloat64(nalusEncodedTotal.WithLabelValues("7"))
	initialBytes := testutil.ToFloat64(naluBytesTotal.WithLabelValues("7"))

	RecordNALU(7, 11)
	RecordNALU(7, 5)

	assert.Equal(t, initialCount+2, testutil.ToFloat64(nalusEncodedTotal.WithLabelValues("7")))
	assert.Equal(t, initialBytes+16, testutil.ToFloat64(naluBytesTotal.WithLabelValues("7")))
}

func TestEmulationPreventionBytes(t *testing.T) {
	initial := testutil.ToFloat64(emulationPreventionBytesTotal)

	AddEmulationPreventionBytes(3)
	AddEmulationPreventionBytes(0)
	AddEmulationPreventionBytes(-1)

	assert.Equal(t, initial+3, testutil.ToFloat64(emulationPreventionBytesTotal))
}

func TestFilmMetrics(t *testing.T) {
	initialReplay := testutil.ToFloat64(filmDrawsTotal.WithLabelValues(SourceReplay))
	initialGen := testutil.ToFloat64(filmDrawsTotal.WithLabelValues(SourceGenerator))
	initialFallbacks := testutil.ToFloat64(filmFallbacksTotal)

	IncrementFilmDraw(SourceReplay)
	IncrementFilmDraw(SourceGenerator)
	IncrementFilmDraw(SourceGenerator)
	IncrementFilmFallback()
	SetFilmBytes(128)

	assert.Equal(t, initialReplay+1, testutil.ToFloat64(filmDrawsTotal.WithLabelValues(SourceReplay)))
	assert.Equal(t, initialGen+2, testutil.ToFloat64(filmDrawsTotal.WithLabelValues(SourceGenerator)))
	assert.Equal(t, initialFallbacks+1, testutil.ToFloat64(filmFallbacksTotal))
	assert.Equal(t, float64(128), testutil.ToFloat64(filmBytes))
}

func TestErrorAndOutputMetrics(t *testing.T) {
	initialErr := testutil.ToFloat64(encodeErrorsTotal.WithLabelValues("UNRESOLVED_REFERENCE"))
	initialMasked := testutil.ToFloat64(overflowsMaskedTotal.WithLabelValues("level_idc"))
	initialOut := testutil.ToFloat64(outputBytesTotal.WithLabelValues("avcc"))
	initialRTP := testutil.ToFloat64(rtpPacketsTotal.WithLabelValues("sent"))

	IncrementEncodeError("UNRESOLVED_REFERENCE")
	IncrementOverflowMasked("level_idc")
	AddOutputBytes("avcc", 42)
	AddRTPPackets("sent", 4)

	assert.Equal(t, initialErr+1, testutil.ToFloat64(encodeErrorsTotal.WithLabelValues("UNRESOLVED_REFERENCE")))
	assert.Equal(t, initialMasked+1, testutil.ToFloat64(overflowsMaskedTotal.WithLabelValues("level_idc")))
	assert.Equal(t, initialOut+42, testutil.ToFloat64(outputBytesTotal.WithLabelValues("avcc")))
	assert.Equal(t, initialRTP+4, testutil.ToFloat64(rtpPacketsTotal.WithLabelValues("sent")))
}

func TestMetricsRegistered(t *testing.T) {
	RecordNALU(5, 1)
	IncrementFilmFallback()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	mf, ok := byName["nalforge_nalus_encoded_total"]
	require.True(t, ok)
	assert.Equal(t, dto.MetricType_COUNTER, mf.GetType())

	found := false
	for _, m := range mf.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "nal_unit_type" && label.GetValue() == "5" {
				found = true
			}
		}
	}
	assert.True(t, found)

	_, ok = byName["nalforge_film_fallbacks_total"]
	assert.True(t, ok)
}

func TestWriteTextfile(t *testing.T) {
	RecordNALU(8, 4)

	path := filepath.Join(t.TempDir(), "nalforge.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nalforge_nalus_encoded_total")

	err = WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
