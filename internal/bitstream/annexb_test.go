package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAnnexB(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []Unit
	}{
		{
			name:  "no start code",
			input: []byte{0x67, 0x42},
			want:  nil,
		},
		{
			name:  "single long start code",
			input: []byte{0x00, 0x00, 0x00, 0x01, 0x67, 0x00, 0x00, 0x03, 0x00, 0xFB, 0x04},
			want: []Unit{
				{LongStartCode: true, Data: []byte{0x67, 0x00, 0x00, 0x03, 0x00, 0xFB, 0x04}},
			},
		},
		{
			name:  "mixed start codes",
			input: []byte{0x00, 0x00, 0x01, 0x09, 0x10, 0x00, 0x00, 0x00, 0x01, 0x68, 0xCE, 0x00, 0x00, 0x01, 0x65, 0x88},
			want: []Unit{
				{LongStartCode: false, Data: []byte{0x09, 0x10}},
				{LongStartCode: true, Data: []byte{0x68, 0xCE}},
				{LongStartCode: false, Data: []byte{0x65, 0x88}},
			},
		},
		{
			name:  "leading garbage ignored",
			input: []byte{0xAB, 0x00, 0x00, 0x01, 0x09, 0xF0},
			want: []Unit{
				{LongStartCode: false, Data: []byte{0x09, 0xF0}},
			},
		},
		{
			name:  "empty unit dropped",
			input: []byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x01, 0x0C, 0xFF},
			want: []Unit{
				{LongStartCode: false, Data: []byte{0x0C, 0xFF}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitAnnexB(tt.input))
		})
	}
}

func TestAppendAnnexBRoundTrip(t *testing.T) {
	var stream []byte
	stream = AppendAnnexB(stream, []byte{0x67, 0x42}, true)
	stream = AppendAnnexB(stream, []byte{0x68, 0xCE}, false)

	units := SplitAnnexB(stream)
	require.Len(t, units, 2)
	assert.True(t, units[0].LongStartCode)
	assert.Equal(t, []byte{0x67, 0x42}, units[0].Data)
	assert.False(t, units[1].LongStartCode)
	assert.Equal(t, []byte{0x68, 0xCE}, units[1].Data)
}
