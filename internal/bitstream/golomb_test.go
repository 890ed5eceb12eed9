package bitstream

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zsiec/nalforge/internal/errors"
)

func TestEncodeUE(t *testing.T) {
	tests := []struct {
		value uint32
		want  []uint8
	}{
		{0, []uint8{1}},
		{1, []uint8{0, 1, 0}},
		{2, []uint8{0, 1, 1}},
		{3, []uint8{0, 0, 1, 0, 0}},
		{4, []uint8{0, 0, 1, 0, 1}},
		{5, []uint8{0, 0, 1, 1, 0}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeUE(tt.value), "ue(%d)", tt.value)
	}
}

func TestEncodeSE(t *testing.T) {
	tests := []struct {
		value int32
		want  []uint8
	}{
		{0, []uint8{1}},
		{1, []uint8{0, 1, 0}},
		{-1, []uint8{0, 1, 1}},
		{2, []uint8{0, 0, 1, 0, 0}},
		{-2, []uint8{0, 0, 1, 0, 1}},
		{3, []uint8{0, 0, 1, 1, 0}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeSE(tt.value), "se(%d)", tt.value)
	}
}

func TestEncodeExpGolomb(t *testing.T) {
	t.Run("dispatches on signedness", func(t *testing.T) {
		got, err := EncodeExpGolomb(-1, true)
		require.NoError(t, err)
		assert.Equal(t, []uint8{0, 1, 1}, got)

		got, err = EncodeExpGolomb(3, false)
		require.NoError(t, err)
		assert.Equal(t, []uint8{0, 0, 1, 0, 0}, got)
	})

	t.Run("negative unsigned overflows", func(t *testing.T) {
		_, err := EncodeExpGolomb(-1, false)
		assert.True(t, stderrors.Is(err, apperrors.ErrEncodingOverflow))
	})

	t.Run("extremes do not overflow", func(t *testing.T) {
		code := EncodeUE(math.MaxUint32)
		assert.Len(t, code, 65)

		code = EncodeSE(math.MinInt32)
		assert.Len(t, code, 65)
	})
}

func TestExpGolombRoundTrip(t *testing.T) {
	t.Run("unsigned", func(t *testing.T) {
		c := NewCursor()
		values := []uint32{}
		for v := uint32(0); v <= 1<<20; v += 97 {
			values = append(values, v)
		}
		values = append(values, 1<<20, math.MaxUint32-1, math.MaxUint32)
		for _, v := range values {
			c.AppendBits(EncodeUE(v))
		}

		r := NewCursorFromBytes(c.Bytes())
		for _, v := range values {
			got, err := DecodeUE(r)
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	})

	t.Run("signed", func(t *testing.T) {
		c := NewCursor()
		values := []int32{}
		for v := int32(-1 << 16); v <= 1<<16; v += 37 {
			values = append(values, v)
		}
		values = append(values, 1<<16, -1<<16, math.MaxInt32, math.MinInt32)
		for _, v := range values {
			c.AppendBits(EncodeSE(v))
		}

		r := NewCursorFromBytes(c.Bytes())
		for _, v := range values {
			got, err := DecodeSE(r)
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	})
}

func TestDecodeExpGolombErrors(t *testing.T) {
	t.Run("prefix too long", func(t *testing.T) {
		r := NewCursorFromBytes(make([]byte, 8))
		_, err := DecodeUE(r)
		assert.True(t, stderrors.Is(err, apperrors.ErrInvalidSyntax))
	})

	t.Run("truncated suffix", func(t *testing.T) {
		// 0000000 1 then seven suffix bits that are not there
		r := NewCursorFromBytes([]byte{0x01})
		_, err := DecodeUE(r)
		assert.True(t, stderrors.Is(err, apperrors.ErrCursorExhausted))
	})
}

func TestEncodeUnsignedFixed(t *testing.T) {
	tests := []struct {
		name    string
		value   uint64
		width   int
		want    []uint8
		wantErr bool
	}{
		{"zero width zero value", 0, 0, []uint8{}, false},
		{"pads with zeros", 5, 5, []uint8{0, 0, 1, 0, 1}, false},
		{"full width", 255, 8, []uint8{1, 1, 1, 1, 1, 1, 1, 1}, false},
		{"overflow", 256, 8, nil, true},
		{"overflow zero width", 1, 0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeUnsignedFixed(tt.value, tt.width)
			if tt.wantErr {
				assert.True(t, stderrors.Is(err, apperrors.ErrEncodingOverflow))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWidths(t *testing.T) {
	unsigned := []struct {
		max  uint64
		want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {255, 8}, {256, 9}, {math.MaxUint32, 32},
	}
	for _, tt := range unsigned {
		assert.Equal(t, tt.want, UnsignedWidth(tt.max), "max %d", tt.max)
	}

	span := []struct {
		min, max int64
		want     int
	}{
		{0, 0, 1}, {0, 1, 1}, {0, 2, 1}, {0, 3, 2}, {-4, 4, 3}, {-10, 10, 5},
	}
	for _, tt := range span {
		assert.Equal(t, tt.want, SpanWidth(tt.min, tt.max), "[%d,%d]", tt.min, tt.max)
	}
}
