package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPack(t *testing.T) {
	tests := []struct {
		name string
		bits []uint8
		want []byte
	}{
		{"empty", nil, []byte{}},
		{"stop bit only", []uint8{1}, []byte{0x80}},
		{"full byte", []uint8{1, 0, 1, 0, 1, 0, 1, 0}, []byte{0xAA}},
		{"pads final byte", []uint8{0, 0, 0, 0, 0, 0, 0, 1, 1}, []byte{0x01, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pack(tt.bits))
		})
	}
}

func TestUnpackInvertsPack(t *testing.T) {
	data := []byte{0x67, 0x00, 0xFB, 0x04}
	assert.Equal(t, data, Pack(Unpack(data)))
}

func TestInsertEmulationPrevention(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{
			name:     "No escaping needed",
			input:    []byte{0x42, 0x00, 0x1e, 0x8d},
			expected: []byte{0x42, 0x00, 0x1e, 0x8d},
		},
		{
			name:     "Escapes start code emulation",
			input:    []byte{0x00, 0x00, 0x01},
			expected: []byte{0x00, 0x00, 0x03, 0x01},
		},
		{
			name:     "Escapes 0x03 itself",
			input:    []byte{0x00, 0x00, 0x03},
			expected: []byte{0x00, 0x00, 0x03, 0x03},
		},
		{
			name:     "Leaves 0x04 alone",
			input:    []byte{0x00, 0x00, 0x04},
			expected: []byte{0x00, 0x00, 0x04},
		},
		{
			name:     "Five zero run escapes every two zeros",
			input:    []byte{0x00, 0x00, 0x00, 0x00, 0x00},
			expected: []byte{0x00, 0x00, 0x03, 0x00, 0x00, 0x03, 0x00},
		},
		{
			name:     "Six zero run keeps every input byte",
			input:    []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			expected: []byte{0x00, 0x00, 0x03, 0x00, 0x00, 0x03, 0x00, 0x00},
		},
		{
			name:     "Non-zero byte breaks the run",
			input:    []byte{0x00, 0x05, 0x00, 0x00, 0x02},
			expected: []byte{0x00, 0x05, 0x00, 0x00, 0x03, 0x02},
		},
		{
			name:     "Default SPS body",
			input:    []byte{0x00, 0x00, 0x00, 0xFB, 0x04},
			expected: []byte{0x00, 0x00, 0x03, 0x00, 0xFB, 0x04},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InsertEmulationPrevention(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.input, RemoveEmulationPrevention(got))
			assert.Equal(t, len(tt.expected)-len(tt.input), EmulationPreventionOverhead(tt.input))
		})
	}
}

func TestRemoveEmulationPrevention(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{
			name:     "Single emulation prevention byte",
			input:    []byte{0x00, 0x00, 0x03, 0x00, 0x01},
			expected: []byte{0x00, 0x00, 0x00, 0x01},
		},
		{
			name:     "Emulation prevention at end",
			input:    []byte{0x00, 0x00, 0x03},
			expected: []byte{0x00, 0x00},
		},
		{
			name:     "Not an escape before 0x04",
			input:    []byte{0x00, 0x00, 0x03, 0x04},
			expected: []byte{0x00, 0x00, 0x03, 0x04},
		},
		{
			name:     "Complex pattern",
			input:    []byte{0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x03, 0x01, 0x00, 0x00, 0x03, 0x03},
			expected: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x03},
		},
		{
			name:     "Empty input",
			input:    []byte{},
			expected: []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemoveEmulationPrevention(tt.input))
		})
	}
}

func TestStopBitPosition(t *testing.T) {
	assert.Equal(t, -1, StopBitPosition(nil))
	assert.Equal(t, -1, StopBitPosition([]byte{0x00, 0x00}))
	assert.Equal(t, 0, StopBitPosition([]byte{0x80}))
	assert.Equal(t, 13, StopBitPosition([]byte{0xFF, 0x04, 0x00}))
}
