package vidgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zsiec/nalforge/internal/decoder"
	"github.com/zsiec/nalforge/internal/encoder"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/film"
	"github.com/zsiec/nalforge/internal/syntax"
)

// decodedStream generates a stream with slices and returns its encoding
// decoded twice, so one copy can be changed and the other compared with.
func decodedStream(t *testing.T, seed uint64) ([]byte, *syntax.Stream, *syntax.Stream) {
	t.Helper()
	cfg := extendedConfig()
	for ; ; seed++ {
		stream, _ := generate(t, cfg, seed)
		if len(stream.Slices) < 2 {
			continue
		}
		res, err := encoder.New(encoder.Options{Strict: true, CutNALU: -1}).Encode(stream)
		require.NoError(t, err)

		base, err := decoder.New(nil).Decode(res.AnnexB)
		require.NoError(t, err)
		mutated, err := decoder.New(nil).Decode(res.AnnexB)
		require.NoError(t, err)
		return res.AnnexB, base, mutated
	}
}

func strictEncode(t *testing.T, stream *syntax.Stream) []byte {
	t.Helper()
	res, err := encoder.New(encoder.Options{Strict: true, CutNALU: -1}).Encode(stream)
	require.NoError(t, err)
	return res.AnnexB
}

func TestRandomize_SingleSliceWithHeader(t *testing.T) {
	for seed := uint64(200); seed < 210; seed++ {
		_, base, mutated := decodedStream(t, seed)

		g := New(extendedConfig(), film.NewFromSeed(seed), nil)
		changed, err := g.Randomize(mutated, RandomizeOptions{SliceIndex: 1, Header: true})
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, 1, changed)

		assert.Equal(t, base.Slices[0], mutated.Slices[0], "seed %d", seed)
		assert.Equal(t, base.Slices[2:], mutated.Slices[2:], "seed %d", seed)
		assert.Equal(t, base.SPS, mutated.SPS)
		assert.Equal(t, base.PPS, mutated.PPS)

		// the redrawn slice still encodes strictly and survives a decode
		first := strictEncode(t, mutated)
		decoded, err := decoder.New(nil).Decode(first)
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, first, strictEncode(t, decoded), "seed %d", seed)
	}
}

func TestRandomize_AllSlicesDataOnly(t *testing.T) {
	_, base, mutated := decodedStream(t, 300)

	g := New(extendedConfig(), film.NewFromSeed(3), nil)
	changed, err := g.Randomize(mutated, RandomizeOptions{AllSlices: true})
	require.NoError(t, err)
	assert.Equal(t, len(base.Slices), changed)

	assert.Equal(t, base.NALUs, mutated.NALUs)
	for i := range base.Slices {
		assert.Equal(t, base.Slices[i].Header, mutated.Slices[i].Header, "slice %d", i)
	}

	first := strictEncode(t, mutated)
	decoded, err := decoder.New(nil).Decode(first)
	require.NoError(t, err)
	assert.Equal(t, first, strictEncode(t, decoded))
}

func TestRandomize_ReplayFilm(t *testing.T) {
	_, _, a := decodedStream(t, 400)
	_, _, b := decodedStream(t, 400)

	src := film.NewFromSeed(42)
	_, err := New(extendedConfig(), src, nil).Randomize(a, RandomizeOptions{AllSlices: true, Header: true})
	require.NoError(t, err)

	replay := film.NewReplay(src.Film(), 7)
	_, err = New(extendedConfig(), replay, nil).Randomize(b, RandomizeOptions{AllSlices: true, Header: true})
	require.NoError(t, err)

	assert.Equal(t, strictEncode(t, a), strictEncode(t, b))
	assert.Equal(t, src.Film(), replay.Film())
}

func TestRandomize_SliceIndexOutOfRange(t *testing.T) {
	_, base, mutated := decodedStream(t, 500)

	g := New(extendedConfig(), film.NewFromSeed(1), nil)
	changed, err := g.Randomize(mutated, RandomizeOptions{SliceIndex: len(base.Slices)})
	assert.Equal(t, 0, changed)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, base, mutated)
}
