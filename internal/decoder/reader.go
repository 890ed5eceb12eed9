package decoder

import (
	"fmt"

	"github.com/zsiec/nalforge/internal/bitstream"
	apperrors "github.com/zsiec/nalforge/internal/errors"
)

// reader reads the syntax elements of one RBSP. Like the encoder's
// writer the first error sticks and later reads return zero values.
type reader struct {
	c    *bitstream.Cursor
	stop int // bit offset of rbsp_stop_one_bit, -1 when absent
	err  error
}

func newReader(rbsp []byte) *reader {
	return &reader{
		c:    bitstream.NewCursorFromBytes(rbsp),
		stop: bitstream.StopBitPosition(rbsp),
	}
}

func (r *reader) fail(field string, err error) {
	if r.err != nil {
		return
	}
	if apperrors.IsType(err, apperrors.ErrorTypeCursorExhausted) {
		r.err = apperrors.Wrap(err, apperrors.ErrorTypeInvalidSyntax, fmt.Sprintf("rbsp truncated reading %s", field))
		return
	}
	r.err = err
}

func (r *reader) u(field string, width int) uint32 {
	if r.err != nil || width == 0 {
		return 0
	}
	v, err := r.c.ReadBits(width)
	if err != nil {
		r.fail(field, err)
		return 0
	}
	return v
}

func (r *reader) flag() bool {
	if r.err != nil {
		return false
	}
	v, err := r.c.ReadFlag()
	if err != nil {
		r.fail("flag", err)
		return false
	}
	return v
}

func (r *reader) ue(field string) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := bitstream.DecodeUE(r.c)
	if err != nil {
		r.fail(field, err)
		return 0
	}
	return v
}

func (r *reader) se(field string) int32 {
	if r.err != nil {
		return 0
	}
	v, err := bitstream.DecodeSE(r.c)
	if err != nil {
		r.fail(field, err)
		return 0
	}
	return v
}

// moreData is more_rbsp_data(): true while the read position is before the
// stop bit.
func (r *reader) moreData() bool {
	return r.err == nil && r.c.BitPosition() < r.stop
}

// rest returns every bit between the read position and the stop bit.
func (r *reader) rest() []uint8 {
	if r.err != nil {
		return nil
	}
	n := r.stop - r.c.BitPosition()
	if n <= 0 {
		return nil
	}
	bits := make([]uint8, n)
	for i := range bits {
		bits[i] = uint8(r.u("rest", 1))
	}
	return bits
}

func (r *reader) bytes(field string, n int) []byte {
	if n < 0 || r.err != nil {
		return nil
	}
	if r.c.RemainingBits() < n*8 {
		r.fail(field, apperrors.NewCursorExhausted(fmt.Sprintf("%d bytes", n), r.c.RemainingBits()))
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(r.u(field, 8))
	}
	return out
}

// finish checks that parsing stopped at the stop bit.
func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.stop < 0 {
		return apperrors.NewInvalidSyntax("rbsp has no stop bit")
	}
	if pos := r.c.BitPosition(); pos != r.stop {
		return apperrors.NewInvalidSyntax(fmt.Sprintf("syntax ends at bit %d, stop bit is at %d", pos, r.stop)).
			WithDetails(map[string]interface{}{"position": pos, "stop_bit": r.stop})
	}
	return nil
}
