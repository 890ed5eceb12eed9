package bitstream

// Pack folds a flat bit sequence into bytes, MSB-first, zero-padding the
// final byte. The caller appends the rbsp_stop_one_bit before packing.
func Pack(bits []uint8) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Unpack expands data into one element per bit, MSB-first.
func Unpack(data []byte) []uint8 {
	out := make([]uint8, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			out = append(out, b>>i&1)
		}
	}
	return out
}

// InsertEmulationPrevention escapes every 0x00 0x00 followed by a byte
// in 0x00-0x03 with an inserted 0x03. A zero byte always re-arms the first
// zero flag, so long zero runs are escaped every two zeros.
func InsertEmulationPrevention(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/2)

	zero1, zero2 := false, false
	for _, b := range data {
		switch {
		case zero1 && zero2 && b <= 0x03:
			out = append(out, 0x03)
			zero1, zero2 = false, false
		case zero1 && b == 0x00:
			zero2 = true
		default:
			zero1, zero2 = false, false
		}

		if b == 0x00 {
			zero1 = true
		}
		out = append(out, b)
	}

	return out
}

// EmulationPreventionOverhead returns how many escape bytes
// InsertEmulationPrevention would add to data.
func EmulationPreventionOverhead(data []byte) int {
	return len(InsertEmulationPrevention(data)) - len(data)
}

// RemoveEmulationPrevention strips 0x03 bytes that follow two zero bytes
// and precede a byte in 0x00-0x03 or the end of the payload.
func RemoveEmulationPrevention(data []byte) []byte {
	out := make([]byte, 0, len(data))

	zeroCount := 0
	for i := 0; i < len(data); i++ {
		b := data[i]

		if zeroCount >= 2 && b == 0x03 && (i+1 == len(data) || data[i+1] <= 0x03) {
			zeroCount = 0
			continue
		}

		if b == 0x00 {
			zeroCount++
		} else {
			zeroCount = 0
		}
		out = append(out, b)
	}

	return out
}

// StopBitPosition returns the bit offset of the rbsp_stop_one_bit, the last
// set bit of data, or -1 when data has no set bit.
func StopBitPosition(data []byte) int {
	for i := len(data) - 1; i >= 0; i-- {
		if data[i] == 0 {
			continue
		}
		for bit := 7; bit >= 0; bit-- {
			if data[i]>>(7-bit)&1 == 1 {
				return i*8 + bit
			}
		}
	}
	return -1
}
