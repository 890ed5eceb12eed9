package syntax

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zsiec/nalforge/internal/errors"
)

func TestNALU_HeaderLength(t *testing.T) {
	tests := []struct {
		name string
		nalu NALU
		want int
	}{
		{"sps", NALU{NalUnitType: NALUSPS}, 1},
		{"prefix", NALU{NalUnitType: NALUPrefix}, 4},
		{"slice extension", NALU{NalUnitType: NALUSliceExtension, SVCExtensionFlag: true}, 4},
		{"3d-avc mvc header", NALU{NalUnitType: NALUSliceExtensionView}, 4},
		{"3d-avc header", NALU{NalUnitType: NALUSliceExtensionView, AVC3DExtensionFlag: true}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.nalu.HeaderLength())
		})
	}
}

func TestNALU_Payload(t *testing.T) {
	n := NALU{NalUnitType: NALUFiller, Content: []byte{0x0C, 0xFF, 0xFF}}
	assert.Equal(t, []byte{0xFF, 0xFF}, n.Payload())

	n = NALU{NalUnitType: NALUPrefix, Content: []byte{0x6E, 1, 2}}
	assert.Nil(t, n.Payload())
}

func TestNALU_IdrPicFlag(t *testing.T) {
	assert.False(t, (&NALU{NalUnitType: NALUSliceNonIDR}).IdrPicFlag())
	assert.True(t, (&NALU{NalUnitType: NALUSliceIDR}).IdrPicFlag())
	assert.True(t, (&NALU{NalUnitType: NALUSliceExtension}).IdrPicFlag())
	assert.False(t, (&NALU{NalUnitType: NALUSliceExtension, MVC: MVCHeaderExtension{NonIDRFlag: true}}).IdrPicFlag())
	assert.True(t, (&NALU{NalUnitType: NALUSliceExtension, SVCExtensionFlag: true, SVC: SVCHeaderExtension{IDRFlag: true}}).IdrPicFlag())
	assert.False(t, (&NALU{NalUnitType: NALUSliceExtensionView, AVC3DExtensionFlag: true, AVC3D: AVC3DHeaderExtension{NonIDRFlag: true}}).IdrPicFlag())
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "SPS", TypeName(7))
	assert.Equal(t, "reserved", TypeName(17))
	assert.Equal(t, "unspecified", TypeName(30))
	assert.Equal(t, "invalid(40)", TypeName(40))
}

func TestSPS_Chroma(t *testing.T) {
	baseline := SPS{ProfileIDC: 66, ChromaFormatIDC: 3, SeparateColourPlaneFlag: true}
	assert.Equal(t, uint32(1), baseline.EffectiveChromaFormatIDC())
	assert.Equal(t, uint32(1), baseline.ChromaArrayType())
	assert.False(t, baseline.SeparateColourPlanes())

	high444 := SPS{ProfileIDC: 244, ChromaFormatIDC: 3, SeparateColourPlaneFlag: true}
	assert.Equal(t, uint32(0), high444.ChromaArrayType())
	assert.True(t, high444.SeparateColourPlanes())
	assert.Equal(t, 12, high444.ScalingListCount())

	high := SPS{ProfileIDC: 100, ChromaFormatIDC: 2, SeparateColourPlaneFlag: true}
	assert.Equal(t, uint32(2), high.ChromaArrayType())
	assert.Equal(t, 8, high.ScalingListCount())
}

func TestPPS_Widths(t *testing.T) {
	tests := []struct {
		groupsMinus1 uint32
		want         int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{7, 3},
	}
	for _, tt := range tests {
		p := PPS{NumSliceGroupsMinus1: tt.groupsMinus1}
		assert.Equal(t, tt.want, p.SliceGroupIDWidth(), "num_slice_groups_minus1=%d", tt.groupsMinus1)
	}

	p := PPS{NumSliceGroupsMinus1: 1, SliceGroupMapType: SliceGroupWipe, Transform8x8ModeFlag: true}
	assert.True(t, p.HasSliceGroupChangeCycle())
	assert.Equal(t, 12, p.ScalingListCount(3))
	assert.Equal(t, 8, p.ScalingListCount(1))

	p.SliceGroupMapType = SliceGroupExplicit
	assert.False(t, p.HasSliceGroupChangeCycle())
}

func TestSliceGroupChangeCycleWidth(t *testing.T) {
	tests := []struct {
		name       string
		width      uint32
		height     uint32
		rateMinus1 uint32
		want       int
	}{
		// 1 map unit: Ceil(Log2(1 + 1)) = 1
		{"single unit", 0, 0, 0, 1},
		// 99 units at rate 1: Ceil(Log2(100)) = 7
		{"qcif", 10, 8, 0, 7},
		// 99 units at rate 10: Ceil(Log2(10.9)) = 4
		{"qcif rate 10", 10, 8, 9, 4},
		// 8 units at rate 8: Ceil(Log2(2)) = 1
		{"exact division", 7, 0, 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sps := &SPS{PicWidthInMbsMinus1: tt.width, PicHeightInMapUnitsMinus1: tt.height}
			pps := &PPS{SliceGroupChangeRateMinus1: tt.rateMinus1}
			assert.Equal(t, tt.want, SliceGroupChangeCycleWidth(sps, pps))
		})
	}
}

func TestSliceHeader_Kinds(t *testing.T) {
	h := SliceHeader{SliceType: 6}
	assert.True(t, h.IsB())
	assert.False(t, h.IsIntra())

	h.SliceType = 7
	assert.True(t, h.IsIntra())

	h.SliceType = 3
	assert.True(t, h.IsPredicted())

	pps := &PPS{NumRefIdxL0DefaultActiveMinus1: 2, NumRefIdxL1DefaultActiveMinus1: 1, WeightedPredFlag: true}
	l0, l1 := h.ActiveRefIdx(pps)
	assert.Equal(t, uint32(2), l0)
	assert.Equal(t, uint32(1), l1)
	assert.True(t, h.HasPredWeightTable(pps))

	h.NumRefIdxActiveOverride = true
	h.NumRefIdxL0ActiveMinus1 = 5
	l0, _ = h.ActiveRefIdx(pps)
	assert.Equal(t, uint32(5), l0)
}

func TestStream_JSONRoundTrip(t *testing.T) {
	stream := &Stream{
		NALUs: []NALU{
			{NalRefIdc: 3, NalUnitType: NALUSPS, LongStartCode: true},
			{NalRefIdc: 3, NalUnitType: NALUPPS},
			{NalRefIdc: 1, NalUnitType: NALUSliceIDR},
			{NalUnitType: NALUFiller, Content: []byte{0x0C, 0xFF, 0x80}},
			{NalUnitType: NALUSliceExtension, MVC: MVCHeaderExtension{ViewID: 513, ReservedOneBit: 1}},
		},
		SPS: []SPS{{ProfileIDC: 100, LevelIDC: 31, ChromaFormatIDC: 1, PicOrderCntType: 1, OffsetForRefFrame: []int32{-4, 7}}},
		PPS: []PPS{{PicParameterSetID: 2, ChromaQPIndexOffset: -3}},
		Slices: []Slice{{
			Header: SliceHeader{SliceType: 7, PicParameterSetID: 2, SliceQPDelta: -12},
			Data:   []uint8{1, 0, 1, 1},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, stream.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"NalUnitType": 7`)

	got, err := ReadJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, stream, got)
}

func TestReadJSON_Invalid(t *testing.T) {
	_, err := ReadJSON([]byte(`{"NALUs": [`))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidSyntax))
}
