package bitstream

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zsiec/nalforge/internal/errors"
)

// cursorAt builds a cursor whose write side ends at writeBit.
func cursorAt(contents []byte, writeBit int) *Cursor {
	c := NewCursorFromBytes(contents)
	c.writeBit = writeBit
	return c
}

func TestCursorAppendBits(t *testing.T) {
	tests := []struct {
		name       string
		contents   []byte
		writeBit   int
		bits       []uint8
		want       []byte
		wantOffset int
	}{
		{
			name:       "single bit merges into open byte",
			contents:   []byte{0x80},
			writeBit:   1,
			bits:       []uint8{1},
			want:       []byte{0xC0},
			wantOffset: 2,
		},
		{
			name:       "exact fill closes the byte",
			contents:   []byte{0x80},
			writeBit:   4,
			bits:       []uint8{0, 1, 1, 1},
			want:       []byte{0x87},
			wantOffset: 0,
		},
		{
			name:       "short run starts a new byte",
			contents:   []byte{0x01},
			writeBit:   0,
			bits:       []uint8{0, 1, 1, 1, 0, 1},
			want:       []byte{0x01, 0x74},
			wantOffset: 6,
		},
		{
			name:       "short run after committed byte",
			contents:   []byte{0xC4},
			writeBit:   0,
			bits:       []uint8{0, 1, 1, 1, 0, 1},
			want:       []byte{0xC4, 0x74},
			wantOffset: 6,
		},
		{
			name:       "merge spills into a new byte",
			contents:   []byte{0x40},
			writeBit:   2,
			bits:       []uint8{0, 1, 1, 1, 0, 1, 1},
			want:       []byte{0x5D, 0x80},
			wantOffset: 1,
		},
		{
			name:       "sixteen bits aligned",
			contents:   []byte{0x80},
			writeBit:   0,
			bits:       ones(16),
			want:       []byte{0x80, 0xFF, 0xFF},
			wantOffset: 0,
		},
		{
			name:       "seventeen bits aligned",
			contents:   []byte{0x80},
			writeBit:   0,
			bits:       ones(17),
			want:       []byte{0x80, 0xFF, 0xFF, 0x80},
			wantOffset: 1,
		},
		{
			name:       "merge into last of several bytes",
			contents:   []byte{0x01, 0x02, 0x00},
			writeBit:   6,
			bits:       []uint8{0, 1, 1, 1, 0, 1},
			want:       []byte{0x01, 0x02, 0x01, 0xD0},
			wantOffset: 4,
		},
		{
			name:       "empty input is a no-op",
			contents:   []byte{0x80},
			writeBit:   3,
			bits:       nil,
			want:       []byte{0x80},
			wantOffset: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cursorAt(tt.contents, tt.writeBit)
			c.AppendBits(tt.bits)

			assert.Equal(t, tt.want, c.Bytes())
			assert.Equal(t, tt.wantOffset, c.WriteBitOffset())
		})
	}
}

func TestCursorAppendBytes(t *testing.T) {
	c := NewCursor()
	c.AppendBits([]uint8{1, 0, 1})
	require.Equal(t, 3, c.WriteBitOffset())

	c.AppendBytes([]byte{0xAA, 0xBB})
	assert.Equal(t, []byte{0xA0, 0xAA, 0xBB}, c.Bytes())
	assert.Equal(t, 0, c.WriteBitOffset())

	c.AppendBits([]uint8{1})
	assert.Equal(t, []byte{0xA0, 0xAA, 0xBB, 0x80}, c.Bytes())
}

func TestCursorReadBits(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		contents []byte
		startBit int
		want     uint32
		wantByte int
		wantBit  int
	}{
		{"zero bits", 0, []byte{0x01}, 0, 0, 0, 0},
		{"high bit set", 1, []byte{0x80}, 0, 1, 0, 1},
		{"high bit clear", 1, []byte{0x01}, 0, 0, 0, 1},
		{"two bits", 2, []byte{0xC4}, 0, 3, 0, 2},
		{"offset read", 1, []byte{0x40}, 1, 1, 0, 2},
		{"two bits from 0x80", 2, []byte{0x80}, 0, 2, 0, 2},
		{"reads to end of byte", 2, []byte{0x01}, 6, 1, 1, 0},
		{"zero bits mid byte", 0, []byte{0x80}, 3, 0, 0, 3},
		{"last bit", 1, []byte{0x01}, 7, 1, 1, 0},
		{"spans bytes", 9, []byte{0x80, 0x80}, 0, 257, 1, 1},
		{"spans bytes offset", 9, []byte{0x80, 0x80}, 1, 2, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursorFromBytes(tt.contents)
			_, err := c.ReadBits(tt.startBit)
			require.NoError(t, err)

			got, err := c.ReadBits(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			byteOff, bitOff := c.ReadOffset()
			assert.Equal(t, tt.wantByte, byteOff)
			assert.Equal(t, tt.wantBit, bitOff)
		})
	}
}

func TestCursorReadFlag(t *testing.T) {
	c := NewCursorFromBytes([]byte{0xA0})

	var got []bool
	for i := 0; i < 8; i++ {
		v, err := c.ReadFlag()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []bool{true, false, true, false, false, false, false, false}, got)

	_, err := c.ReadFlag()
	assert.True(t, stderrors.Is(err, apperrors.ErrCursorExhausted))
}

func TestCursorReadBitsExhausted(t *testing.T) {
	t.Run("empty buffer", func(t *testing.T) {
		_, err := NewCursor().ReadBits(1)
		assert.True(t, stderrors.Is(err, apperrors.ErrCursorExhausted))
	})

	t.Run("mid read keeps consumed bits", func(t *testing.T) {
		c := NewCursorFromBytes([]byte{0xFF})
		_, err := c.ReadBits(4)
		require.NoError(t, err)

		_, err = c.ReadBits(8)
		assert.True(t, stderrors.Is(err, apperrors.ErrCursorExhausted))

		byteOff, bitOff := c.ReadOffset()
		assert.Equal(t, 1, byteOff)
		assert.Equal(t, 0, bitOff)
	})

	t.Run("too wide", func(t *testing.T) {
		_, err := NewCursorFromBytes(make([]byte, 8)).ReadBits(33)
		assert.True(t, stderrors.Is(err, apperrors.ErrInvalidSyntax))
	})
}

func TestCursorReadBytes(t *testing.T) {
	t.Run("skips the current byte", func(t *testing.T) {
		c := NewCursorFromBytes([]byte{0x11, 0x22, 0x33, 0x44})

		got, err := c.ReadBytes(2)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x22, 0x33}, got)

		byteOff, bitOff := c.ReadOffset()
		assert.Equal(t, 3, byteOff)
		assert.Equal(t, 0, bitOff)
	})

	t.Run("aligns after a partial bit read", func(t *testing.T) {
		c := NewCursorFromBytes([]byte{0xA0, 0xAA, 0xBB})
		v, err := c.ReadBits(3)
		require.NoError(t, err)
		assert.Equal(t, uint32(5), v)

		got, err := c.ReadBytes(2)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xAA, 0xBB}, got)
	})

	t.Run("exhausted when fewer than n remain", func(t *testing.T) {
		c := NewCursorFromBytes([]byte{0x11, 0x22})

		_, err := c.ReadBytes(2)
		assert.True(t, stderrors.Is(err, apperrors.ErrCursorExhausted))
	})

	t.Run("exhausted at end", func(t *testing.T) {
		c := NewCursorFromBytes([]byte{0x11})

		_, err := c.ReadBytes(0)
		assert.True(t, stderrors.Is(err, apperrors.ErrCursorExhausted))
	})
}

func TestCursorFixedWidthRoundTrip(t *testing.T) {
	for width := 1; width <= 32; width++ {
		values := []uint64{0, 1, (1 << uint(width)) - 1, (1 << uint(width-1))}
		if width > 2 {
			values = append(values, (1<<uint(width))/3)
		}

		for _, v := range values {
			bits, err := EncodeUnsignedFixed(v, width)
			require.NoError(t, err)
			require.Len(t, bits, width)

			c := NewCursor()
			// Misalign the stream so values straddle byte boundaries
			c.AppendBits([]uint8{1, 0, 1})
			c.AppendBits(bits)

			r := NewCursorFromBytes(c.Bytes())
			_, err = r.ReadBits(3)
			require.NoError(t, err)

			got, err := r.ReadBits(width)
			require.NoError(t, err)
			assert.Equal(t, uint32(v), got, "width %d", width)
		}
	}
}

func ones(n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
