package bitstream

const shortStartCodeLen = 3

var (
	// LongStartCode is the four byte Annex-B start code.
	LongStartCode = []byte{0x00, 0x00, 0x00, 0x01}
	// ShortStartCode is the three byte Annex-B start code.
	ShortStartCode = []byte{0x00, 0x00, 0x01}
)

// Unit is one NALU found in an Annex-B byte stream. Data still carries its
// emulation prevention bytes.
type Unit struct {
	LongStartCode bool
	Data          []byte
}

// SplitAnnexB splits buf on 3 and 4 byte start codes. Bytes before the first
// start code are ignored and empty units are dropped.
func SplitAnnexB(buf []byte) []Unit {
	var units []Unit

	end := len(buf) - shortStartCodeLen
	prev := -1
	prevLong := false

	emit := func(stop int) {
		if prev < 0 || stop <= prev {
			return
		}
		units = append(units, Unit{LongStartCode: prevLong, Data: buf[prev:stop]})
	}

	for off := 0; off <= end; {
		switch {
		case buf[off+2] > 1:
			// Speed up traversal in search for start codes
			off += 3
		case buf[off+2] == 1 && buf[off+1] == 0 && buf[off] == 0:
			long := off > 0 && buf[off-1] == 0
			if long {
				emit(off - 1)
			} else {
				emit(off)
			}
			off += 3
			prev = off
			prevLong = long
		default:
			off++
		}
	}
	emit(len(buf))

	return units
}

// AppendAnnexB appends a start code and nalu to dst.
func AppendAnnexB(dst []byte, nalu []byte, long bool) []byte {
	if long {
		dst = append(dst, LongStartCode...)
	} else {
		dst = append(dst, ShortStartCode...)
	}
	return append(dst, nalu...)
}
