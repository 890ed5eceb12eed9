package bitstream

import (
	"fmt"

	apperrors "github.com/zsiec/nalforge/internal/errors"
)

// Cursor is an in-memory byte buffer with independent read and write
// positions. Writes always append to the end of the buffer; reads walk
// forward from the start. A Cursor is owned by a single caller and is not
// safe for concurrent use.
type Cursor struct {
	contents []byte

	readByte int
	readBit  int // 0-7, next bit to read within contents[readByte]

	// writeBit is the number of bits already used in the last byte of
	// contents. Zero means the last byte is committed and the next bit
	// starts a new byte.
	writeBit int
}

// NewCursor creates an empty cursor for recording.
func NewCursor() *Cursor {
	return &Cursor{}
}

// NewCursorFromBytes creates a cursor preloaded with data for replay.
// The data is copied.
func NewCursorFromBytes(data []byte) *Cursor {
	contents := make([]byte, len(data))
	copy(contents, data)
	return &Cursor{contents: contents}
}

// Bytes returns a copy of the buffer contents.
func (c *Cursor) Bytes() []byte {
	out := make([]byte, len(c.contents))
	copy(out, c.contents)
	return out
}

// Len returns the number of bytes in the buffer.
func (c *Cursor) Len() int {
	return len(c.contents)
}

// WriteBitOffset returns how many bits of the last byte are in use.
func (c *Cursor) WriteBitOffset() int {
	return c.writeBit
}

// ReadOffset returns the current read byte and bit offsets.
func (c *Cursor) ReadOffset() (byteOffset, bitOffset int) {
	return c.readByte, c.readBit
}

// BitPosition returns the read position in bits from the start.
func (c *Cursor) BitPosition() int {
	return c.readByte*8 + c.readBit
}

// RemainingBits returns the number of unread bits.
func (c *Cursor) RemainingBits() int {
	remaining := len(c.contents)*8 - c.BitPosition()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AppendBytes byte-aligns the write side and appends data verbatim.
func (c *Cursor) AppendBytes(data []byte) {
	c.writeBit = 0
	c.contents = append(c.contents, data...)
}

// AppendBits appends a sequence of 0/1 values MSB-first. Bits are merged
// into the partially written last byte before new bytes are started.
// Any non-zero element is treated as a 1 bit.
func (c *Cursor) AppendBits(bits []uint8) {
	i := 0

	// Fill the open byte first
	if c.writeBit != 0 {
		last := len(c.contents) - 1
		for ; i < len(bits) && c.writeBit < 8; i++ {
			if bits[i] != 0 {
				c.contents[last] |= 0x80 >> c.writeBit
			}
			c.writeBit++
		}
		if c.writeBit == 8 {
			c.writeBit = 0
		}
	}

	// Pack whole bytes, leaving a partial byte open at the end
	for i < len(bits) {
		var b byte
		n := 0
		for ; n < 8 && i < len(bits); n, i = n+1, i+1 {
			if bits[i] != 0 {
				b |= 0x80 >> n
			}
		}
		c.contents = append(c.contents, b)
		c.writeBit = n % 8
	}
}

// ReadBytes byte-aligns the read side and returns the next n bytes.
//
// Alignment always steps past the current byte, even when the read
// position is already on a byte boundary, so every call skips exactly one
// byte before reading. Film recordings rely on this stride.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	c.readBit = 0
	c.readByte++

	if c.readByte >= len(c.contents) || c.readByte+n > len(c.contents) {
		return nil, apperrors.NewCursorExhausted(fmt.Sprintf("%d bytes", n), c.RemainingBits())
	}

	out := make([]byte, n)
	copy(out, c.contents[c.readByte:c.readByte+n])
	c.readByte += n
	return out, nil
}

// ReadBits reads an n-bit unsigned value MSB-first, with n at most 32.
// When the buffer runs out mid-read the bits already consumed stay
// consumed and ErrCursorExhausted is returned.
func (c *Cursor) ReadBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, apperrors.NewInvalidSyntax(fmt.Sprintf("cannot read %d bits at once", n))
	}
	if c.readByte >= len(c.contents) {
		return 0, apperrors.NewCursorExhausted(fmt.Sprintf("%d bits", n), 0)
	}

	var value uint32
	for i := 0; i < n; i++ {
		if c.readByte >= len(c.contents) {
			return 0, apperrors.NewCursorExhausted(fmt.Sprintf("%d bits", n), 0)
		}
		bit := (c.contents[c.readByte] >> (7 - c.readBit)) & 1
		value = value<<1 | uint32(bit)

		c.readBit++
		if c.readBit == 8 {
			c.readBit = 0
			c.readByte++
		}
	}
	return value, nil
}

// ReadFlag reads a single bit as a bool.
func (c *Cursor) ReadFlag() (bool, error) {
	v, err := c.ReadBits(1)
	return v == 1, err
}
