package syntax

// highProfiles lists the profile_idc values whose SPS carries chroma
// format, bit depth and scaling matrix fields (7.3.2.1.1).
var highProfiles = map[uint8]bool{
	100: true, 110: true, 122: true, 244: true, 44: true, 83: true, 86: true,
	118: true, 128: true, 138: true, 139: true, 134: true, 135: true,
}

// HasChromaInfo reports whether an SPS with this profile codes
// chroma_format_idc and the fields that follow it.
func HasChromaInfo(profileIDC uint8) bool {
	return highProfiles[profileIDC]
}

// ScalingList is one scaling_list() entry. DeltaScale holds the coded
// delta_scale values; coding stops early once nextScale reaches zero, so
// the slice may be shorter than the list.
type ScalingList struct {
	Present    bool
	DeltaScale []int32
}

// ScalingListSize returns the coefficient count of list i: 16 for the six
// 4x4 lists, 64 for the 8x8 lists.
func ScalingListSize(i int) int {
	if i < 6 {
		return 16
	}
	return 64
}

// SPS is seq_parameter_set_data (7.3.2.1.1).
type SPS struct {
	ProfileIDC        uint8
	ConstraintSet0    bool
	ConstraintSet1    bool
	ConstraintSet2    bool
	ConstraintSet3    bool
	ConstraintSet4    bool
	ConstraintSet5    bool
	ReservedZero2Bits uint8
	LevelIDC          uint8
	SeqParameterSetID uint32

	// Present when HasChromaInfo(ProfileIDC).
	ChromaFormatIDC                 uint32
	SeparateColourPlaneFlag         bool
	BitDepthLumaMinus8              uint32
	BitDepthChromaMinus8            uint32
	QpprimeYZeroTransformBypassFlag bool
	SeqScalingMatrixPresentFlag     bool
	ScalingLists                    []ScalingList // 8 entries, 12 for 4:4:4

	Log2MaxFrameNumMinus4          uint32
	PicOrderCntType                uint32
	Log2MaxPicOrderCntLsbMinus4    uint32
	DeltaPicOrderAlwaysZeroFlag    bool
	OffsetForNonRefPic             int32
	OffsetForTopToBottomField      int32
	NumRefFramesInPicOrderCntCycle uint32
	OffsetForRefFrame              []int32

	MaxNumRefFrames                uint32
	GapsInFrameNumValueAllowedFlag bool
	PicWidthInMbsMinus1            uint32
	PicHeightInMapUnitsMinus1      uint32
	FrameMbsOnlyFlag               bool
	MbAdaptiveFrameFieldFlag       bool
	Direct8x8InferenceFlag         bool

	FrameCroppingFlag     bool
	FrameCropLeftOffset   uint32
	FrameCropRightOffset  uint32
	FrameCropTopOffset    uint32
	FrameCropBottomOffset uint32

	VUIParametersPresentFlag bool
	VUI                      VUI
}

// ScalingListCount returns how many scaling lists the SPS codes.
func (s *SPS) ScalingListCount() int {
	if s.ChromaFormatIDC == 3 {
		return 12
	}
	return 8
}

// EffectiveChromaFormatIDC returns chroma_format_idc, which is inferred as
// 1 for profiles that do not code it.
func (s *SPS) EffectiveChromaFormatIDC() uint32 {
	if !HasChromaInfo(s.ProfileIDC) {
		return 1
	}
	return s.ChromaFormatIDC
}

// ChromaArrayType is 0 for separately coded colour planes, otherwise
// chroma_format_idc.
func (s *SPS) ChromaArrayType() uint32 {
	if s.SeparateColourPlanes() {
		return 0
	}
	return s.EffectiveChromaFormatIDC()
}

// SeparateColourPlanes reports whether slices carry colour_plane_id.
func (s *SPS) SeparateColourPlanes() bool {
	return HasChromaInfo(s.ProfileIDC) && s.ChromaFormatIDC == 3 && s.SeparateColourPlaneFlag
}

// PicSizeInMapUnits is PicWidthInMbs * PicHeightInMapUnits.
func (s *SPS) PicSizeInMapUnits() uint64 {
	return (uint64(s.PicWidthInMbsMinus1) + 1) * (uint64(s.PicHeightInMapUnitsMinus1) + 1)
}

// VUI is vui_parameters (E.1.1).
type VUI struct {
	AspectRatioInfoPresentFlag bool
	AspectRatioIDC             uint8
	SarWidth                   uint16
	SarHeight                  uint16

	OverscanInfoPresentFlag bool
	OverscanAppropriateFlag bool

	VideoSignalTypePresentFlag   bool
	VideoFormat                  uint8 // u(3)
	VideoFullRangeFlag           bool
	ColourDescriptionPresentFlag bool
	ColourPrimaries              uint8
	TransferCharacteristics      uint8
	MatrixCoefficients           uint8

	ChromaLocInfoPresentFlag       bool
	ChromaSampleLocTypeTopField    uint32
	ChromaSampleLocTypeBottomField uint32

	TimingInfoPresentFlag bool
	NumUnitsInTick        uint32
	TimeScale             uint32
	FixedFrameRateFlag    bool

	NalHRDParametersPresentFlag bool
	NalHRD                      HRD
	VclHRDParametersPresentFlag bool
	VclHRD                      HRD
	LowDelayHRDFlag             bool
	PicStructPresentFlag        bool

	BitstreamRestrictionFlag           bool
	MotionVectorsOverPicBoundariesFlag bool
	MaxBytesPerPicDenom                uint32
	MaxBitsPerMbDenom                  uint32
	Log2MaxMvLengthHorizontal          uint32
	Log2MaxMvLengthVertical            uint32
	MaxNumReorderFrames                uint32
	MaxDecFrameBuffering               uint32
}

// ExtendedSAR is the aspect_ratio_idc value that codes an explicit sample
// aspect ratio.
const ExtendedSAR = 255

// HRD is hrd_parameters (E.1.2).
type HRD struct {
	CpbCntMinus1                       uint32
	BitRateScale                       uint8 // u(4)
	CpbSizeScale                       uint8 // u(4)
	BitRateValueMinus1                 []uint32
	CpbSizeValueMinus1                 []uint32
	CbrFlag                            []bool
	InitialCpbRemovalDelayLengthMinus1 uint8 // u(5)
	CpbRemovalDelayLengthMinus1        uint8 // u(5)
	DpbOutputDelayLengthMinus1         uint8 // u(5)
	TimeOffsetLength                   uint8 // u(5)
}

// SubsetSPS is subset_seq_parameter_set_rbsp (7.3.2.1.3). The profile
// specific extension that follows the SPS data is kept as opaque bits.
type SubsetSPS struct {
	SPS           SPS
	ExtensionBits []uint8
}

// SPSExtension is seq_parameter_set_extension_rbsp (7.3.2.1.2).
type SPSExtension struct {
	SeqParameterSetID       uint32
	AuxFormatIDC            uint32
	BitDepthAuxMinus8       uint32
	AlphaIncrFlag           bool
	AlphaOpaqueValue        uint32 // u(v), v = bit_depth_aux_minus8 + 9
	AlphaTransparentValue   uint32
	AdditionalExtensionFlag bool
}

// AlphaValueWidth returns the coded width of the alpha values.
func (e *SPSExtension) AlphaValueWidth() int {
	return int(e.BitDepthAuxMinus8) + 9
}
