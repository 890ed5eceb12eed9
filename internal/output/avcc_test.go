package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zsiec/nalforge/internal/encoder"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/syntax"
)

func minimalNALUs() []encoder.EncodedNALU {
	return []encoder.EncodedNALU{
		{Index: 0, Type: syntax.NALUSPS, Data: []byte{0x67, 0x42, 0xC3, 0x1E}},
		{Index: 1, Type: syntax.NALUPPS, Data: []byte{0x68, 0xCE}},
		{Index: 2, Type: syntax.NALUSliceIDR, Data: []byte{0x65, 0x88, 0x80}},
		{Index: 3, Type: syntax.NALUSliceNonIDR, Data: []byte{0x41, 0x9A}},
	}
}

func TestAVCC_Build(t *testing.T) {
	avcc, err := NewAVCCBuilder(true, nil).Build(minimalNALUs())
	require.NoError(t, err)

	assert.Equal(t, []byte{
		0x01, 0x42, 0xC0, 0x1E, 0xFF,
		0xE1, 0x00, 0x04, 0x67, 0x42, 0xC3, 0x1E,
		0x01, 0x00, 0x02, 0x68, 0xCE,
	}, avcc.Extradata)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x03, 0x65, 0x88, 0x80,
		0x00, 0x00, 0x00, 0x02, 0x41, 0x9A,
	}, avcc.Samples)
	assert.Equal(t, 1, avcc.SPSCount)
	assert.Equal(t, 1, avcc.PPSCount)
}

func TestAVCC_NoParameterSets(t *testing.T) {
	avcc, err := NewAVCCBuilder(false, nil).Build([]encoder.EncodedNALU{
		{Type: syntax.NALUAUD, Data: []byte{0x09, 0xF0}},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0xFF, 0xE0, 0x00}, avcc.Extradata)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02, 0x09, 0xF0}, avcc.Samples)
}

func TestAVCC_SPSCountOverflow(t *testing.T) {
	var nalus []encoder.EncodedNALU
	for i := 0; i < 33; i++ {
		nalus = append(nalus, encoder.EncodedNALU{Type: syntax.NALUSPS, Data: []byte{0x67, 0x42, 0x00, 0x1E}})
	}

	tests := []struct {
		name   string
		strict bool
	}{
		{name: "strict", strict: true},
		{name: "lenient", strict: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avcc, err := NewAVCCBuilder(tt.strict, nil).Build(nalus)
			if tt.strict {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeEncodingOverflow))
				appErr, ok := apperrors.GetAppError(err)
				require.True(t, ok)
				assert.Equal(t, "sps_count", appErr.Details["field"])
				return
			}

			require.NoError(t, err)
			// 33 masked to five bits
			assert.Equal(t, byte(0xE1), avcc.Extradata[5])
			assert.Equal(t, 33, avcc.SPSCount)
		})
	}
}

func TestAVCC_ParameterSetTooLarge(t *testing.T) {
	big := make([]byte, 0x10000)
	big[0] = 0x68
	nalus := []encoder.EncodedNALU{{Type: syntax.NALUPPS, Data: big}}

	_, err := NewAVCCBuilder(true, nil).Build(nalus)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeEncodingOverflow))

	avcc, err := NewAVCCBuilder(false, nil).Build(nalus)
	require.NoError(t, err)
	// pps count, then the length masked to 16 bits
	assert.Equal(t, []byte{0x01, 0x00, 0x00}, avcc.Extradata[6:9])
}

func TestAVCC_WriteFiles(t *testing.T) {
	avcc, err := NewAVCCBuilder(true, nil).Build(minimalNALUs())
	require.NoError(t, err)

	base := filepath.Join(t.TempDir(), "out", "stream")
	extradataPath, samplesPath, err := avcc.WriteFiles(base)
	require.NoError(t, err)
	assert.Equal(t, base+".avcc.extradata", extradataPath)
	assert.Equal(t, base+".avcc.264", samplesPath)

	got, err := os.ReadFile(extradataPath)
	require.NoError(t, err)
	assert.Equal(t, avcc.Extradata, got)

	got, err = os.ReadFile(samplesPath)
	require.NoError(t, err)
	assert.Equal(t, avcc.Samples, got)
}
