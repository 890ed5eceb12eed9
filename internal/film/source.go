// Package film implements the reproducible randomness source behind stream
// generation. Every value a Source produces is recorded bit-for-bit into a
// film, and a film can be loaded back to reproduce the same session.
package film

import (
	"math"
	"math/rand/v2"

	"github.com/zsiec/nalforge/internal/bitstream"
	"github.com/zsiec/nalforge/internal/config"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
)

// Mode is the state of a Source. A Source moves from ModeReplaying to
// ModeGenerating at most once and never back.
type Mode int

const (
	ModeGenerating Mode = iota
	ModeReplaying
)

func (m Mode) String() string {
	switch m {
	case ModeReplaying:
		return "replaying"
	case ModeGenerating:
		return "generating"
	default:
		return "unknown"
	}
}

// pcgIncrement decorrelates the second PCG word from the seed.
const pcgIncrement = 0x9E3779B97F4A7C15

// Source produces bounded random values. In replay mode values are read
// from a recorded film; once the film runs out the source falls back to its
// seeded generator for the rest of the session. Either way every value is
// appended to the recording at the width it was drawn with.
//
// A Source is not safe for concurrent use.
type Source struct {
	seed      uint64
	rng       *rand.Rand
	replay    *bitstream.Cursor // nil once generating
	recording *bitstream.Cursor
	sessionID string
	logger    logger.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger used for the replay fallback warning.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) {
		s.logger = logger.OrNull(l)
	}
}

// WithSessionID tags log lines with a session id.
func WithSessionID(id string) Option {
	return func(s *Source) {
		s.sessionID = id
	}
}

// NewFromSeed creates a generating source seeded with seed.
func NewFromSeed(seed uint64, opts ...Option) *Source {
	return newSource(seed, nil, opts)
}

// NewRandom creates a generating source with a random seed.
func NewRandom(opts ...Option) *Source {
	return newSource(rand.Uint64(), nil, opts)
}

// NewReplay creates a source that replays film and falls back to a
// generator seeded with seed once the film is exhausted. The film is
// copied.
func NewReplay(film []byte, seed uint64, opts ...Option) *Source {
	return newSource(seed, bitstream.NewCursorFromBytes(film), opts)
}

func newSource(seed uint64, replay *bitstream.Cursor, opts []Option) *Source {
	s := &Source{
		seed:      seed,
		rng:       rand.New(rand.NewPCG(seed, seed^pcgIncrement)),
		replay:    replay,
		recording: bitstream.NewCursor(),
		logger:    logger.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(map[string]interface{}{
		"component": "film",
		"seed":      seed,
	})
	if s.sessionID != "" {
		s.logger = s.logger.WithField("session_id", s.sessionID)
	}
	return s
}

// Seed returns the generator seed.
func (s *Source) Seed() uint64 {
	return s.seed
}

// SessionID returns the session id set with WithSessionID.
func (s *Source) SessionID() string {
	return s.sessionID
}

// Mode reports whether the source is still replaying.
func (s *Source) Mode() Mode {
	if s.replay != nil {
		return ModeReplaying
	}
	return ModeGenerating
}

// Film returns a copy of everything recorded so far.
func (s *Source) Film() []byte {
	return s.recording.Bytes()
}

// NextUint returns a value in [min, max]. The value is recorded at
// UnsignedWidth(max) bits. A replayed value outside the range is folded
// back into it, so a film recorded under different ranges still replays.
func (s *Source) NextUint(min, max uint32) uint32 {
	if min > max {
		min, max = max, min
	}
	width := bitstream.UnsignedWidth(uint64(max))

	if s.replay != nil {
		raw, err := s.replay.ReadBits(width)
		if err == nil {
			v := uint64(raw) % (uint64(max) + 1)
			if v < uint64(min) {
				v = uint64(min) + v%(uint64(max)-uint64(min)+1)
			}
			s.recordUnsigned(v, width)
			metrics.IncrementFilmDraw(metrics.SourceReplay)
			return uint32(v)
		}
		s.fallback(err)
	}

	v := uint64(min) + s.rng.Uint64N(uint64(max)-uint64(min)+1)
	s.recordUnsigned(v, width)
	metrics.IncrementFilmDraw(metrics.SourceGenerator)
	return uint32(v)
}

// NextInt returns a value in [min, max], recorded as a sign bit (1 for
// negative) followed by the magnitude. The magnitude field is wide enough
// for both the span of the range and the largest bound.
func (s *Source) NextInt(min, max int32) int32 {
	if min > max {
		min, max = max, min
	}
	width := signedWidth(min, max)
	span := int64(max) - int64(min) + 1

	if s.replay != nil {
		v, err := s.readSigned(width)
		if err == nil {
			if v < int64(min) || v > int64(max) {
				v = int64(min) + floorMod(v-int64(min), span)
			}
			s.recordSigned(v, width)
			metrics.IncrementFilmDraw(metrics.SourceReplay)
			return int32(v)
		}
		s.fallback(err)
	}

	v := int64(min) + int64(s.rng.Uint64N(uint64(span)))
	s.recordSigned(v, width)
	metrics.IncrementFilmDraw(metrics.SourceGenerator)
	return int32(v)
}

// NextBool draws from [min, max+1] and reports whether the draw reached
// threshold. Biased coins are a single integer draw.
func (s *Source) NextBool(min, max, threshold uint32) bool {
	if max < math.MaxUint32 {
		max++
	}
	return s.NextUint(min, max) >= threshold
}

// NextBytes returns n opaque bytes.
func (s *Source) NextBytes(n int) []byte {
	if n <= 0 {
		return nil
	}

	// A byte read always steps one byte past the read position, so an
	// aligned recording needs a pad byte for the payload to replay.
	if s.recording.WriteBitOffset() == 0 {
		s.recording.AppendBytes([]byte{0})
	}

	if s.replay != nil {
		data, err := s.replay.ReadBytes(n)
		if err == nil {
			s.recording.AppendBytes(data)
			metrics.IncrementFilmDraw(metrics.SourceReplay)
			return data
		}
		s.fallback(err)
	}

	data := make([]byte, n)
	for i := range data {
		data[i] = byte(s.rng.Uint32())
	}
	s.recording.AppendBytes(data)
	metrics.IncrementFilmDraw(metrics.SourceGenerator)
	return data
}

// Uint samples r.
func (s *Source) Uint(r config.U32Range) uint32 {
	return s.NextUint(r.Min, r.Max)
}

// Int samples r.
func (s *Source) Int(r config.I32Range) int32 {
	return s.NextInt(r.Min, r.Max)
}

// Bool flips the coin described by r.
func (s *Source) Bool(r config.BoolRange) bool {
	return s.NextBool(r.Min, r.Max, r.Threshold)
}

// Enum picks one of e.Values by drawing an index. An empty enum yields 0
// without drawing.
func (s *Source) Enum(e config.U32Enum) uint32 {
	if len(e.Values) == 0 {
		return 0
	}
	return e.Values[s.NextUint(0, uint32(len(e.Values)-1))]
}

func (s *Source) readSigned(width int) (int64, error) {
	negative, err := s.replay.ReadFlag()
	if err != nil {
		return 0, err
	}
	mag, err := s.replay.ReadBits(width)
	if err != nil {
		return 0, err
	}
	if negative {
		return -int64(mag), nil
	}
	return int64(mag), nil
}

func (s *Source) recordUnsigned(v uint64, width int) {
	s.recording.AppendBits(bitstream.AppendUnsignedFixed(nil, v, width))
}

func (s *Source) recordSigned(v int64, width int) {
	bits := make([]uint8, 1, width+1)
	if v < 0 {
		bits[0] = 1
		v = -v
	}
	s.recording.AppendBits(bitstream.AppendUnsignedFixed(bits, uint64(v), width))
}

// fallback switches to the generator for the rest of the session.
func (s *Source) fallback(err error) {
	byteOffset, bitOffset := s.replay.ReadOffset()
	s.logger.WithError(err).WithFields(map[string]interface{}{
		"film_bytes":  s.replay.Len(),
		"byte_offset": byteOffset,
		"bit_offset":  bitOffset,
	}).Warn("Film exhausted, generating from seed")

	s.replay = nil
	metrics.IncrementFilmFallback()
}

func signedWidth(min, max int32) int {
	width := bitstream.SpanWidth(int64(min), int64(max))
	if w := bitstream.UnsignedWidth(absBound(min, max)); w > width {
		width = w
	}
	return width
}

func absBound(min, max int32) uint64 {
	lo := int64(min)
	if lo < 0 {
		lo = -lo
	}
	hi := int64(max)
	if hi < 0 {
		hi = -hi
	}
	if lo > hi {
		return uint64(lo)
	}
	return uint64(hi)
}

func floorMod(a, n int64) int64 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
