package logger

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// SampledLogger caps repetitive per-NALU messages. Each category logs its
// first Burst messages, then one in every Every messages. Sampling is by
// count so the same stream always produces the same log lines.
type SampledLogger struct {
	base     Logger
	samplers *samplerSet
}

type samplerSet struct {
	mu       sync.Mutex
	samplers map[string]*LogSampler
}

// LogSampler holds the policy and counters for one category
type LogSampler struct {
	burst int64
	every int64

	seen    int64
	logged  int64
	dropped int64
}

// SamplerStats holds statistics for a log sampler
type SamplerStats struct {
	Name    string `json:"name"`
	Seen    int64  `json:"seen"`
	Logged  int64  `json:"logged"`
	Dropped int64  `json:"dropped"`
}

// Log categories used by the encoder and randomness source
const (
	CategoryOverflow    = "overflow"
	CategoryPassthrough = "passthrough"
	CategoryNALU        = "nalu"
	CategoryFilm        = "film"
)

// NewSampledLogger creates a new sampled logger
func NewSampledLogger(base Logger) *SampledLogger {
	return &SampledLogger{
		base:     base,
		samplers: &samplerSet{samplers: make(map[string]*LogSampler)},
	}
}

// NewEncoderLogger creates a sampled logger configured for encode runs.
func NewEncoderLogger(base Logger) *SampledLogger {
	return NewSampledLogger(base).
		// Lenient overflows can fire on every field of a hostile model
		WithSampler(CategoryOverflow, 20, 100).
		WithSampler(CategoryPassthrough, 10, 50).
		WithSampler(CategoryNALU, 200, 100)
}

// WithSampler sets the policy for a category. every <= 0 drops everything
// after the burst.
func (s *SampledLogger) WithSampler(name string, burst, every int) *SampledLogger {
	s.samplers.mu.Lock()
	defer s.samplers.mu.Unlock()

	s.samplers.samplers[name] = &LogSampler{burst: int64(burst), every: int64(every)}
	return s
}

func (s *SampledLogger) shouldLog(category string) bool {
	s.samplers.mu.Lock()
	defer s.samplers.mu.Unlock()

	sampler, ok := s.samplers.samplers[category]
	if !ok {
		return true
	}

	sampler.seen++
	allow := sampler.seen <= sampler.burst ||
		(sampler.every > 0 && (sampler.seen-sampler.burst)%sampler.every == 0)
	if allow {
		sampler.logged++
	} else {
		sampler.dropped++
	}
	return allow
}

// LogWithCategory logs msg at level if the category's sampler allows it.
func (s *SampledLogger) LogWithCategory(level logrus.Level, category, msg string, fields map[string]interface{}) {
	if !s.shouldLog(category) {
		return
	}
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["category"] = category
	s.base.WithFields(fields).Log(level, msg)
}

// DebugWithCategory logs a sampled debug message
func (s *SampledLogger) DebugWithCategory(category, msg string, fields map[string]interface{}) {
	s.LogWithCategory(logrus.DebugLevel, category, msg, fields)
}

// WarnWithCategory logs a sampled warning
func (s *SampledLogger) WarnWithCategory(category, msg string, fields map[string]interface{}) {
	s.LogWithCategory(logrus.WarnLevel, category, msg, fields)
}

// GetSamplerStats returns statistics for all samplers
func (s *SampledLogger) GetSamplerStats() map[string]SamplerStats {
	s.samplers.mu.Lock()
	defer s.samplers.mu.Unlock()

	stats := make(map[string]SamplerStats, len(s.samplers.samplers))
	for name, sampler := range s.samplers.samplers {
		stats[name] = SamplerStats{
			Name:    name,
			Seen:    sampler.seen,
			Logged:  sampler.logged,
			Dropped: sampler.dropped,
		}
	}
	return stats
}

// Logger interface, unsampled. Derived loggers share the samplers.

func (s *SampledLogger) WithFields(fields map[string]interface{}) Logger {
	return &SampledLogger{base: s.base.WithFields(fields), samplers: s.samplers}
}

func (s *SampledLogger) WithField(key string, value interface{}) Logger {
	return &SampledLogger{base: s.base.WithField(key, value), samplers: s.samplers}
}

func (s *SampledLogger) WithError(err error) Logger {
	return &SampledLogger{base: s.base.WithError(err), samplers: s.samplers}
}

func (s *SampledLogger) Debug(args ...interface{})                   { s.base.Debug(args...) }
func (s *SampledLogger) Info(args ...interface{})                    { s.base.Info(args...) }
func (s *SampledLogger) Warn(args ...interface{})                    { s.base.Warn(args...) }
func (s *SampledLogger) Error(args ...interface{})                   { s.base.Error(args...) }
func (s *SampledLogger) Log(level logrus.Level, args ...interface{}) { s.base.Log(level, args...) }

func (s *SampledLogger) Debugf(format string, args ...interface{}) { s.base.Debugf(format, args...) }
func (s *SampledLogger) Infof(format string, args ...interface{})  { s.base.Infof(format, args...) }
func (s *SampledLogger) Warnf(format string, args ...interface{})  { s.base.Warnf(format, args...) }
func (s *SampledLogger) Errorf(format string, args ...interface{}) { s.base.Errorf(format, args...) }
