package syntax

// Slice types modulo 5 (Table 7-6).
const (
	SliceP  uint32 = 0
	SliceB  uint32 = 1
	SliceI  uint32 = 2
	SliceSP uint32 = 3
	SliceSI uint32 = 4
)

// Slice is a slice NALU: a parsed header followed by slice data that is
// carried as opaque bits up to the RBSP stop bit.
type Slice struct {
	Header SliceHeader
	Data   []uint8
}

// RefPicListModification is one ref_pic_list_modification loop. The
// terminating modification_of_pic_nums_idc of 3 is implicit.
type RefPicListModification struct {
	Flag       bool
	Operations []ModificationOperation
}

// ModificationOperation is one loop iteration. Value holds
// abs_diff_pic_num_minus1 (idc 0 and 1), long_term_pic_num (idc 2) or,
// in MVC slices, abs_diff_view_idx_minus1 (idc 4 and 5).
type ModificationOperation struct {
	IDC   uint32
	Value uint32
}

// PredWeight is one reference index entry of pred_weight_table.
type PredWeight struct {
	LumaWeightFlag   bool
	LumaWeight       int32
	LumaOffset       int32
	ChromaWeightFlag bool
	ChromaWeight     [2]int32
	ChromaOffset     [2]int32
}

// PredWeightTable is pred_weight_table (7.3.3.2).
type PredWeightTable struct {
	LumaLog2WeightDenom   uint32
	ChromaLog2WeightDenom uint32
	L0                    []PredWeight
	L1                    []PredWeight
}

// MMCO is one memory_management_control_operation. The terminating
// operation 0 is implicit.
type MMCO struct {
	Operation                 uint32
	DifferenceOfPicNumsMinus1 uint32 // operations 1 and 3
	LongTermPicNum            uint32 // operation 2
	LongTermFrameIdx          uint32 // operations 3 and 6
	MaxLongTermFrameIdxPlus1  uint32 // operation 4
}

// DecRefPicMarking is dec_ref_pic_marking (7.3.3.3).
type DecRefPicMarking struct {
	NoOutputOfPriorPicsFlag       bool // IDR only
	LongTermReferenceFlag         bool // IDR only
	AdaptiveRefPicMarkingModeFlag bool
	Operations                    []MMCO
}

// SliceHeader is slice_header (7.3.3), including the MVC list
// modification syntax used by slice extension NALUs.
type SliceHeader struct {
	FirstMbInSlice    uint32
	SliceType         uint32
	PicParameterSetID uint32
	ColourPlaneID     uint8 // u(2)
	FrameNum          uint32
	FieldPicFlag      bool
	BottomFieldFlag   bool
	IDRPicID          uint32

	PicOrderCntLsb         uint32
	DeltaPicOrderCntBottom int32
	DeltaPicOrderCnt       [2]int32

	RedundantPicCnt            uint32
	DirectSpatialMvPredFlag    bool
	NumRefIdxActiveOverride    bool
	NumRefIdxL0ActiveMinus1    uint32
	NumRefIdxL1ActiveMinus1    uint32
	RefPicListModificationL0   RefPicListModification
	RefPicListModificationL1   RefPicListModification
	PredWeightTable            PredWeightTable
	DecRefPicMarking           DecRefPicMarking
	CabacInitIDC               uint32
	SliceQPDelta               int32
	SPForSwitchFlag            bool
	SliceQSDelta               int32
	DisableDeblockingFilterIDC uint32
	SliceAlphaC0OffsetDiv2     int32
	SliceBetaOffsetDiv2        int32
	SliceGroupChangeCycle      uint32
}

// Kind returns slice_type modulo 5.
func (h *SliceHeader) Kind() uint32 {
	return h.SliceType % 5
}

// IsB reports a B slice.
func (h *SliceHeader) IsB() bool {
	return h.Kind() == SliceB
}

// IsIntra reports an I or SI slice.
func (h *SliceHeader) IsIntra() bool {
	k := h.Kind()
	return k == SliceI || k == SliceSI
}

// IsPredicted reports a P or SP slice.
func (h *SliceHeader) IsPredicted() bool {
	k := h.Kind()
	return k == SliceP || k == SliceSP
}

// ActiveRefIdx returns num_ref_idx_l0/l1_active_minus1 after applying the
// PPS defaults when the slice does not override them.
func (h *SliceHeader) ActiveRefIdx(pps *PPS) (l0, l1 uint32) {
	if h.NumRefIdxActiveOverride {
		return h.NumRefIdxL0ActiveMinus1, h.NumRefIdxL1ActiveMinus1
	}
	return pps.NumRefIdxL0DefaultActiveMinus1, pps.NumRefIdxL1DefaultActiveMinus1
}

// HasPredWeightTable reports whether the header carries pred_weight_table.
func (h *SliceHeader) HasPredWeightTable(pps *PPS) bool {
	return (pps.WeightedPredFlag && h.IsPredicted()) ||
		(pps.WeightedBipredIDC == 1 && h.IsB())
}

// SliceGroupChangeCycleWidth returns the width of slice_group_change_cycle,
// Ceil(Log2(PicSizeInMapUnits / SliceGroupChangeRate + 1)).
func SliceGroupChangeCycleWidth(sps *SPS, pps *PPS) int {
	size := sps.PicSizeInMapUnits()
	rate := uint64(pps.SliceGroupChangeRateMinus1) + 1

	// Smallest v with rate * (2^v - 1) >= size, capped at 32 bits
	width := 0
	for width < 32 && rate*((uint64(1)<<uint(width))-1) < size {
		width++
	}
	return width
}
