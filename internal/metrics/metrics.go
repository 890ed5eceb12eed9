package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Encoder metrics
	nalusEncodedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nalforge_nalus_encoded_total",
		Help: "Total NALUs written by the dispatcher",
	}, []string{"nal_unit_type"})

	naluBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nalforge_nalu_bytes_total",
		Help: "Total NALU bytes written, start codes excluded",
	}, []string{"nal_unit_type"})

	emulationPreventionBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nalforge_emulation_prevention_bytes_total",
		Help: "Total 0x03 escape bytes inserted",
	})

	overflowsMaskedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nalforge_overflows_masked_total",
		Help: "Fixed-width overflows masked in lenient mode",
	}, []string{"field"})

	encodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nalforge_encode_errors_total",
		Help: "Encodes aborted, by error type",
	}, []string{"error_type"})

	// Randomness source metrics
	filmDrawsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nalforge_film_draws_total",
		Help: "Values produced by the randomness source",
	}, []string{"source"})

	filmFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nalforge_film_fallbacks_total",
		Help: "Replay sessions that fell back to the generator",
	})

	filmBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nalforge_film_bytes",
		Help: "Size of the most recently saved film",
	})

	// Output metrics
	outputBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nalforge_output_bytes_total",
		Help: "Bytes written per output format",
	}, []string{"format"})

	rtpPacketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nalforge_rtp_packets_total",
		Help: "RTP packets produced and sent",
	}, []string{"stage"})
)

// Film draw sources
const (
	SourceReplay    = "replay"
	SourceGenerator = "generator"
)

// RecordNALU records one NALU written by the dispatcher.
func RecordNALU(naluType uint8, size int) {
	label := fmt.Sprintf("%d", naluType)
	nalusEncodedTotal.WithLabelValues(label).Inc()
	naluBytesTotal.WithLabelValues(label).Add(float64(size))
}

// AddEmulationPreventionBytes records inserted escape bytes.
func AddEmulationPreventionBytes(n int) {
	if n > 0 {
		emulationPreventionBytesTotal.Add(float64(n))
	}
}

// IncrementOverflowMasked records a lenient-mode overflow.
func IncrementOverflowMasked(field string) {
	overflowsMaskedTotal.WithLabelValues(field).Inc()
}

// IncrementEncodeError records an aborted encode.
func IncrementEncodeError(errorType string) {
	encodeErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncrementFilmDraw records one value from the randomness source.
func IncrementFilmDraw(source string) {
	filmDrawsTotal.WithLabelValues(source).Inc()
}

// IncrementFilmFallback records a replay to generator transition.
func IncrementFilmFallback() {
	filmFallbacksTotal.Inc()
}

// SetFilmBytes records the size of a saved film.
func SetFilmBytes(n int) {
	filmBytes.Set(float64(n))
}

// AddOutputBytes records bytes written in an output format.
func AddOutputBytes(format string, n int) {
	outputBytesTotal.WithLabelValues(format).Add(float64(n))
}

// AddRTPPackets records RTP packets at a stage (packetized, sent).
func AddRTPPackets(stage string, n int) {
	rtpPacketsTotal.WithLabelValues(stage).Add(float64(n))
}

// WriteTextfile writes every registered metric in the Prometheus text
// format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
