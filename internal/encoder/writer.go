package encoder

import (
	"fmt"

	"github.com/zsiec/nalforge/internal/bitstream"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
)

// maxFieldWidth is the widest fixed-width field any structure codes.
const maxFieldWidth = 32

// Writer collects the bits of one RBSP. The first error sticks and later
// writes are dropped, so encoders check Err once at the end.
type Writer struct {
	bits   []uint8
	strict bool
	log    *logger.SampledLogger
	index  int
	err    error
}

// NewWriter creates a writer. In strict mode a value that does not fit its
// field is an error; otherwise it is masked to the field width and logged.
func NewWriter(strict bool, log *logger.SampledLogger) *Writer {
	if log == nil {
		log = logger.NewEncoderLogger(logger.NewNullLogger())
	}
	return &Writer{strict: strict, log: log, index: -1}
}

// U writes value as a width-bit unsigned field.
func (w *Writer) U(field string, width int, value uint64) {
	if w.err != nil || width == 0 {
		return
	}
	if width < 0 || width > maxFieldWidth {
		w.err = apperrors.NewInvalidSyntax(fmt.Sprintf("%s has unsupported width %d", field, width))
		return
	}

	if !bitstream.FitsUnsigned(value, width) {
		if w.strict {
			w.err = apperrors.NewEncodingOverflow(field, value, width)
			return
		}
		metrics.IncrementOverflowMasked(field)
		w.log.WarnWithCategory(logger.CategoryOverflow, "Value masked to field width", map[string]interface{}{
			"field":      field,
			"value":      value,
			"width":      width,
			"nalu_index": w.index,
		})
	}
	w.bits = bitstream.AppendUnsignedFixed(w.bits, value, width)
}

// Flag writes a one-bit flag.
func (w *Writer) Flag(v bool) {
	if w.err != nil {
		return
	}
	if v {
		w.bits = append(w.bits, 1)
	} else {
		w.bits = append(w.bits, 0)
	}
}

// UE writes an unsigned Exp-Golomb code.
func (w *Writer) UE(v uint32) {
	if w.err != nil {
		return
	}
	w.bits = bitstream.AppendUE(w.bits, v)
}

// SE writes a signed Exp-Golomb code.
func (w *Writer) SE(v int32) {
	if w.err != nil {
		return
	}
	w.bits = bitstream.AppendSE(w.bits, v)
}

// Bits appends raw bits.
func (w *Writer) Bits(bits []uint8) {
	if w.err != nil {
		return
	}
	for _, b := range bits {
		if b != 0 {
			w.bits = append(w.bits, 1)
		} else {
			w.bits = append(w.bits, 0)
		}
	}
}

// Bytes appends whole bytes.
func (w *Writer) Bytes(data []byte) {
	if w.err != nil {
		return
	}
	for _, b := range data {
		w.bits = bitstream.AppendUnsignedFixed(w.bits, uint64(b), 8)
	}
}

// Fail records err unless an error is already set.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Err returns the first error.
func (w *Writer) Err() error {
	return w.err
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return len(w.bits)
}

// Packed returns the bits packed into bytes without a stop bit.
func (w *Writer) Packed() []byte {
	return bitstream.Pack(w.bits)
}

// RBSP returns the bits followed by rbsp_trailing_bits.
func (w *Writer) RBSP() []byte {
	bits := make([]uint8, len(w.bits), len(w.bits)+1)
	copy(bits, w.bits)
	return bitstream.Pack(append(bits, 1))
}
