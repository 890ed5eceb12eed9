package syntax

// Slice group map types (7.4.2.2).
const (
	SliceGroupInterleaved uint32 = 0
	SliceGroupDispersed   uint32 = 1
	SliceGroupForeground  uint32 = 2
	SliceGroupBoxOut      uint32 = 3
	SliceGroupRasterScan  uint32 = 4
	SliceGroupWipe        uint32 = 5
	SliceGroupExplicit    uint32 = 6
)

// PPS is pic_parameter_set_rbsp (7.3.2.2).
type PPS struct {
	PicParameterSetID                     uint32
	SeqParameterSetID                     uint32
	EntropyCodingModeFlag                 bool
	BottomFieldPicOrderInFramePresentFlag bool

	NumSliceGroupsMinus1          uint32
	SliceGroupMapType             uint32
	RunLengthMinus1               []uint32 // map type 0, one per group
	TopLeft                       []uint32 // map type 2, one per group but the last
	BottomRight                   []uint32
	SliceGroupChangeDirectionFlag bool // map types 3 to 5
	SliceGroupChangeRateMinus1    uint32
	PicSizeInMapUnitsMinus1       uint32   // map type 6
	SliceGroupID                  []uint32 // map type 6, one per map unit

	NumRefIdxL0DefaultActiveMinus1     uint32
	NumRefIdxL1DefaultActiveMinus1     uint32
	WeightedPredFlag                   bool
	WeightedBipredIDC                  uint8 // u(2)
	PicInitQPMinus26                   int32
	PicInitQSMinus26                   int32
	ChromaQPIndexOffset                int32
	DeblockingFilterControlPresentFlag bool
	ConstrainedIntraPredFlag           bool
	RedundantPicCntPresentFlag         bool

	// MoreData selects the optional tail that follows
	// redundant_pic_cnt_present_flag.
	MoreData                    bool
	Transform8x8ModeFlag        bool
	PicScalingMatrixPresentFlag bool
	ScalingLists                []ScalingList
	SecondChromaQPIndexOffset   int32

	// IsSubsetPPS marks a PPS whose seq_parameter_set_id refers to a
	// subset SPS rather than a plain SPS.
	IsSubsetPPS bool
}

// HasSliceGroupChangeCycle reports whether slice headers referring to this
// PPS carry slice_group_change_cycle.
func (p *PPS) HasSliceGroupChangeCycle() bool {
	return p.NumSliceGroupsMinus1 > 0 &&
		p.SliceGroupMapType >= SliceGroupBoxOut && p.SliceGroupMapType <= SliceGroupWipe
}

// ScalingListCount returns how many scaling lists the PPS tail codes for a
// stream with the given chroma_format_idc.
func (p *PPS) ScalingListCount(chromaFormatIDC uint32) int {
	if !p.Transform8x8ModeFlag {
		return 6
	}
	if chromaFormatIDC == 3 {
		return 12
	}
	return 8
}

// SliceGroupIDWidth returns the width of slice_group_id,
// Ceil(Log2(num_slice_groups_minus1 + 1)).
func (p *PPS) SliceGroupIDWidth() int {
	width := 0
	for n := p.NumSliceGroupsMinus1; n > 0; n >>= 1 {
		width++
	}
	return width
}
