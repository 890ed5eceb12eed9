package bitstream

import (
	"fmt"
	"math"
	"math/bits"

	apperrors "github.com/zsiec/nalforge/internal/errors"
)

// maxGolombPrefix is the longest zero prefix of any code produced for a
// 32-bit value. se(v) of math.MinInt32 needs the full 32.
const maxGolombPrefix = 32

// BitReader is the read side shared by Cursor and the decoders.
type BitReader interface {
	ReadBits(n int) (uint32, error)
}

// UnsignedWidth returns ceil(log2(max+1)), the bits needed for any value
// in [0, max]. The result is at least 1.
func UnsignedWidth(max uint64) int {
	if w := bits.Len64(max); w > 0 {
		return w
	}
	return 1
}

// SpanWidth returns ceil(log2(max-min)) for min <= max, at least 1.
func SpanWidth(min, max int64) int {
	span := uint64(max - min)
	if span <= 1 {
		return 1
	}
	return bits.Len64(span - 1)
}

// EncodeUnsignedFixed returns value as exactly width bits, MSB-first.
// Values that need more than width bits are an encoding overflow.
func EncodeUnsignedFixed(value uint64, width int) ([]uint8, error) {
	if width < 0 || width > 64 {
		return nil, apperrors.NewInvalidSyntax(fmt.Sprintf("invalid fixed width %d", width))
	}
	if !FitsUnsigned(value, width) {
		return nil, apperrors.NewEncodingOverflow("fixed-width value", value, width)
	}
	return AppendUnsignedFixed(make([]uint8, 0, width), value, width), nil
}

// FitsUnsigned reports whether value can be written in width bits.
func FitsUnsigned(value uint64, width int) bool {
	if width >= 64 {
		return true
	}
	return value>>uint(width) == 0
}

// AppendUnsignedFixed appends the low width bits of value to dst. Higher
// bits are masked off.
func AppendUnsignedFixed(dst []uint8, value uint64, width int) []uint8 {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, uint8(value>>uint(i)&1))
	}
	return dst
}

// EncodeUE returns the ue(v) code for value.
func EncodeUE(value uint32) []uint8 {
	return AppendUE(nil, value)
}

// EncodeSE returns the se(v) code for value.
func EncodeSE(value int32) []uint8 {
	return AppendSE(nil, value)
}

// EncodeExpGolomb returns the ue(v) or se(v) code for value. In unsigned
// mode value must not be negative.
func EncodeExpGolomb(value int64, signed bool) ([]uint8, error) {
	if signed {
		if value < math.MinInt32 || value > math.MaxInt32 {
			return nil, apperrors.NewEncodingOverflow("se(v)", uint64(value), 32)
		}
		return EncodeSE(int32(value)), nil
	}
	if value < 0 || value > math.MaxUint32 {
		return nil, apperrors.NewEncodingOverflow("ue(v)", uint64(value), 32)
	}
	return EncodeUE(uint32(value)), nil
}

// AppendUE appends the ue(v) code for value to dst.
func AppendUE(dst []uint8, value uint32) []uint8 {
	return appendCodeNum(dst, uint64(value))
}

// AppendSE appends the se(v) code for value to dst.
func AppendSE(dst []uint8, value int32) []uint8 {
	return appendCodeNum(dst, SignedCodeNum(value))
}

// SignedCodeNum maps v to its se(v) code number: 2v-1 for positive v and
// -2v otherwise.
func SignedCodeNum(v int32) uint64 {
	if v > 0 {
		return 2*uint64(v) - 1
	}
	return 2 * uint64(-int64(v))
}

func appendCodeNum(dst []uint8, codeNum uint64) []uint8 {
	// codeNum is at most 2^32 so codeNum+1 cannot wrap
	x := codeNum + 1
	length := bits.Len64(x)
	for i := 0; i < length-1; i++ {
		dst = append(dst, 0)
	}
	return AppendUnsignedFixed(dst, x, length)
}

// DecodeUE reads a ue(v) value.
func DecodeUE(r BitReader) (uint32, error) {
	codeNum, err := decodeCodeNum(r)
	if err != nil {
		return 0, err
	}
	if codeNum > math.MaxUint32 {
		return 0, apperrors.NewInvalidSyntax(fmt.Sprintf("ue(v) code number %d exceeds 32 bits", codeNum))
	}
	return uint32(codeNum), nil
}

// DecodeSE reads an se(v) value.
func DecodeSE(r BitReader) (int32, error) {
	codeNum, err := decodeCodeNum(r)
	if err != nil {
		return 0, err
	}

	var v int64
	if codeNum&1 == 1 {
		v = int64((codeNum + 1) / 2)
	} else {
		v = -int64(codeNum / 2)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, apperrors.NewInvalidSyntax(fmt.Sprintf("se(v) value %d exceeds 32 bits", v))
	}
	return int32(v), nil
}

func decodeCodeNum(r BitReader) (uint64, error) {
	leadingZeros := 0
	for {
		bit, err := r.ReadBits(1)
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			break
		}
		leadingZeros++
		if leadingZeros > maxGolombPrefix {
			return 0, apperrors.NewInvalidSyntax("exp-golomb prefix longer than 32 zero bits")
		}
	}

	if leadingZeros == 0 {
		return 0, nil
	}

	suffix, err := r.ReadBits(leadingZeros)
	if err != nil {
		return 0, err
	}
	return (uint64(1) << uint(leadingZeros)) - 1 + uint64(suffix), nil
}
