package config

// U32Range is an inclusive range of unsigned values.
type U32Range struct {
	Min uint32 `mapstructure:"min"`
	Max uint32 `mapstructure:"max"`
}

// I32Range is an inclusive range of signed values.
type I32Range struct {
	Min int32 `mapstructure:"min"`
	Max int32 `mapstructure:"max"`
}

// BoolRange is a biased coin: a value is drawn from [Min, Max+1] and the
// result is true when it reaches Threshold.
type BoolRange struct {
	Min       uint32 `mapstructure:"min"`
	Max       uint32 `mapstructure:"max"`
	Threshold uint32 `mapstructure:"threshold"`
}

// U32Enum is a set of values sampled uniformly by index.
type U32Enum struct {
	Values []uint32 `mapstructure:"values"`
}

// Chance returns a BoolRange that is true percent% of the time. The draw
// covers [0, 99].
func Chance(percent uint32) BoolRange {
	if percent > 100 {
		percent = 100
	}
	return BoolRange{Min: 0, Max: 98, Threshold: 100 - percent}
}

type GeneratorConfig struct {
	NumNALUs      U32Range      `mapstructure:"num_nalus"`
	LongStartCode BoolRange     `mapstructure:"long_start_code"`
	Header        HeaderRanges  `mapstructure:"header"`
	SPS           SPSRanges     `mapstructure:"sps"`
	VUI           VUIRanges     `mapstructure:"vui"`
	PPS           PPSRanges     `mapstructure:"pps"`
	Slice         SliceRanges   `mapstructure:"slice"`
	SEI           SEIRanges     `mapstructure:"sei"`
	AUD           AUDRanges     `mapstructure:"aud"`
	Payload       PayloadRanges `mapstructure:"payload"`
}

type HeaderRanges struct {
	ForbiddenZeroBit U32Range  `mapstructure:"forbidden_zero_bit"`
	NalRefIdc        U32Range  `mapstructure:"nal_ref_idc"`
	NalUnitTypes     U32Enum   `mapstructure:"nal_unit_types"`
	Extended         BoolRange `mapstructure:"extended"` // draw from ExtendedTypes instead
	ExtendedTypes    U32Enum   `mapstructure:"extended_types"`
	SVCExtension     BoolRange `mapstructure:"svc_extension"`
	AVC3DExtension   BoolRange `mapstructure:"avc_3d_extension"`
	PriorityID       U32Range  `mapstructure:"priority_id"`
	DependencyID     U32Range  `mapstructure:"dependency_id"`
	QualityID        U32Range  `mapstructure:"quality_id"`
	TemporalID       U32Range  `mapstructure:"temporal_id"`
	ViewID           U32Range  `mapstructure:"view_id"`
	ViewIdx          U32Range  `mapstructure:"view_idx"`
	Flag             BoolRange `mapstructure:"flag"`
}

type SPSRanges struct {
	ProfileIDC                U32Enum   `mapstructure:"profile_idc"`
	LevelIDC                  U32Enum   `mapstructure:"level_idc"`
	SeqParameterSetID         U32Range  `mapstructure:"seq_parameter_set_id"`
	ChromaFormatIDC           U32Range  `mapstructure:"chroma_format_idc"`
	BitDepthMinus8            U32Range  `mapstructure:"bit_depth_minus8"`
	ScalingMatrixPresent      BoolRange `mapstructure:"scaling_matrix_present"`
	DeltaScale                I32Range  `mapstructure:"delta_scale"`
	Log2MaxFrameNumMinus4     U32Range  `mapstructure:"log2_max_frame_num_minus4"`
	PicOrderCntType           U32Range  `mapstructure:"pic_order_cnt_type"`
	Log2MaxPocLsbMinus4       U32Range  `mapstructure:"log2_max_pic_order_cnt_lsb_minus4"`
	OffsetForPicOrder         I32Range  `mapstructure:"offset_for_pic_order"`
	NumRefFramesInPocCycle    U32Range  `mapstructure:"num_ref_frames_in_pic_order_cnt_cycle"`
	MaxNumRefFrames           U32Range  `mapstructure:"max_num_ref_frames"`
	PicWidthInMbsMinus1       U32Range  `mapstructure:"pic_width_in_mbs_minus1"`
	PicHeightInMapUnitsMinus1 U32Range  `mapstructure:"pic_height_in_map_units_minus1"`
	FrameCropping             BoolRange `mapstructure:"frame_cropping"`
	CropOffset                U32Range  `mapstructure:"crop_offset"`
	VUIPresent                BoolRange `mapstructure:"vui_present"`
	ExtensionBits             U32Range  `mapstructure:"extension_bits"` // subset SPS extension payload length
	AuxFormatIDC              U32Range  `mapstructure:"aux_format_idc"`
	BitDepthAuxMinus8         U32Range  `mapstructure:"bit_depth_aux_minus8"`
	Flag                      BoolRange `mapstructure:"flag"`
}

type VUIRanges struct {
	AspectRatioIDC   U32Range  `mapstructure:"aspect_ratio_idc"`
	SarDimension     U32Range  `mapstructure:"sar_dimension"`
	VideoFormat      U32Range  `mapstructure:"video_format"`
	ColourValue      U32Range  `mapstructure:"colour_value"`
	ChromaLocType    U32Range  `mapstructure:"chroma_loc_type"`
	NumUnitsInTick   U32Range  `mapstructure:"num_units_in_tick"`
	TimeScale        U32Range  `mapstructure:"time_scale"`
	CpbCntMinus1     U32Range  `mapstructure:"cpb_cnt_minus1"`
	HRDScale         U32Range  `mapstructure:"hrd_scale"`
	HRDValue         U32Range  `mapstructure:"hrd_value"`
	DelayLength      U32Range  `mapstructure:"delay_length"`
	RestrictionValue U32Range  `mapstructure:"restriction_value"`
	Flag             BoolRange `mapstructure:"flag"`
}

type PPSRanges struct {
	PicParameterSetID            U32Range  `mapstructure:"pic_parameter_set_id"`
	NumSliceGroupsMinus1         U32Range  `mapstructure:"num_slice_groups_minus1"`
	SliceGroupMapType            U32Range  `mapstructure:"slice_group_map_type"`
	SliceGroupValue              U32Range  `mapstructure:"slice_group_value"`
	NumRefIdxDefaultActiveMinus1 U32Range  `mapstructure:"num_ref_idx_default_active_minus1"`
	WeightedBipredIDC            U32Range  `mapstructure:"weighted_bipred_idc"`
	PicInitQPMinus26             I32Range  `mapstructure:"pic_init_qp_minus26"`
	ChromaQPIndexOffset          I32Range  `mapstructure:"chroma_qp_index_offset"`
	MoreData                     BoolRange `mapstructure:"more_data"`
	Flag                         BoolRange `mapstructure:"flag"`
}

type SliceRanges struct {
	FirstMbInSlice        U32Range  `mapstructure:"first_mb_in_slice"`
	SliceType             U32Range  `mapstructure:"slice_type"`
	IDRPicID              U32Range  `mapstructure:"idr_pic_id"`
	DeltaPicOrderCnt      I32Range  `mapstructure:"delta_pic_order_cnt"`
	RedundantPicCnt       U32Range  `mapstructure:"redundant_pic_cnt"`
	NumRefIdxActiveMinus1 U32Range  `mapstructure:"num_ref_idx_active_minus1"`
	ModificationCount     U32Range  `mapstructure:"modification_count"`
	ModificationIDC       U32Range  `mapstructure:"modification_idc"`
	ModificationValue     U32Range  `mapstructure:"modification_value"`
	MMCOCount             U32Range  `mapstructure:"mmco_count"`
	MMCO                  U32Range  `mapstructure:"mmco"`
	LumaLog2WeightDenom   U32Range  `mapstructure:"luma_log2_weight_denom"`
	Weight                I32Range  `mapstructure:"weight"`
	CabacInitIDC          U32Range  `mapstructure:"cabac_init_idc"`
	SliceQPDelta          I32Range  `mapstructure:"slice_qp_delta"`
	DisableDeblocking     U32Range  `mapstructure:"disable_deblocking_filter_idc"`
	FilterOffsetDiv2      I32Range  `mapstructure:"filter_offset_div2"`
	DataBytes             U32Range  `mapstructure:"data_bytes"`
	Flag                  BoolRange `mapstructure:"flag"`
}

type SEIRanges struct {
	MessageCount U32Range `mapstructure:"message_count"`
	PayloadType  U32Enum  `mapstructure:"payload_type"`
	PayloadSize  U32Range `mapstructure:"payload_size"`
}

type AUDRanges struct {
	PrimaryPicType U32Range `mapstructure:"primary_pic_type"`
}

type PayloadRanges struct {
	Length U32Range `mapstructure:"length"` // filler, reserved and unspecified NALU bodies
}

// DefaultGeneratorConfig returns ranges that produce syntactically varied
// streams of a few dozen NALUs.
func DefaultGeneratorConfig() GeneratorConfig {
	even := Chance(50)

	return GeneratorConfig{
		NumNALUs:      U32Range{Min: 8, Max: 40},
		LongStartCode: Chance(75),
		Header: HeaderRanges{
			ForbiddenZeroBit: U32Range{Min: 0, Max: 0},
			NalRefIdc:        U32Range{Min: 0, Max: 3},
			NalUnitTypes:     U32Enum{Values: []uint32{1, 5, 6, 7, 8, 9}},
			Extended:         Chance(5),
			ExtendedTypes:    U32Enum{Values: []uint32{0, 2, 3, 4, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31}},
			SVCExtension:     Chance(50),
			AVC3DExtension:   Chance(50),
			PriorityID:       U32Range{Min: 0, Max: 63},
			DependencyID:     U32Range{Min: 0, Max: 7},
			QualityID:        U32Range{Min: 0, Max: 15},
			TemporalID:       U32Range{Min: 0, Max: 7},
			ViewID:           U32Range{Min: 0, Max: 1023},
			ViewIdx:          U32Range{Min: 0, Max: 255},
			Flag:             even,
		},
		SPS: SPSRanges{
			ProfileIDC:                U32Enum{Values: []uint32{66, 77, 88, 100, 110, 122, 244, 44, 83, 86, 118, 128, 138, 139, 134, 135}},
			LevelIDC:                  U32Enum{Values: []uint32{10, 11, 12, 13, 20, 21, 22, 30, 31, 32, 40, 41, 42, 50, 51, 52}},
			SeqParameterSetID:         U32Range{Min: 0, Max: 31},
			ChromaFormatIDC:           U32Range{Min: 0, Max: 3},
			BitDepthMinus8:            U32Range{Min: 0, Max: 6},
			ScalingMatrixPresent:      Chance(10),
			DeltaScale:                I32Range{Min: -128, Max: 127},
			Log2MaxFrameNumMinus4:     U32Range{Min: 0, Max: 12},
			PicOrderCntType:           U32Range{Min: 0, Max: 2},
			Log2MaxPocLsbMinus4:       U32Range{Min: 0, Max: 12},
			OffsetForPicOrder:         I32Range{Min: -1024, Max: 1024},
			NumRefFramesInPocCycle:    U32Range{Min: 0, Max: 8},
			MaxNumRefFrames:           U32Range{Min: 0, Max: 16},
			PicWidthInMbsMinus1:       U32Range{Min: 0, Max: 119},
			PicHeightInMapUnitsMinus1: U32Range{Min: 0, Max: 67},
			FrameCropping:             Chance(20),
			CropOffset:                U32Range{Min: 0, Max: 16},
			VUIPresent:                Chance(30),
			ExtensionBits:             U32Range{Min: 0, Max: 64},
			AuxFormatIDC:              U32Range{Min: 0, Max: 3},
			BitDepthAuxMinus8:         U32Range{Min: 0, Max: 4},
			Flag:                      even,
		},
		VUI: VUIRanges{
			AspectRatioIDC:   U32Range{Min: 0, Max: 255},
			SarDimension:     U32Range{Min: 1, Max: 1024},
			VideoFormat:      U32Range{Min: 0, Max: 7},
			ColourValue:      U32Range{Min: 0, Max: 255},
			ChromaLocType:    U32Range{Min: 0, Max: 5},
			NumUnitsInTick:   U32Range{Min: 1, Max: 1001},
			TimeScale:        U32Range{Min: 1, Max: 120000},
			CpbCntMinus1:     U32Range{Min: 0, Max: 3},
			HRDScale:         U32Range{Min: 0, Max: 15},
			HRDValue:         U32Range{Min: 0, Max: 100000},
			DelayLength:      U32Range{Min: 0, Max: 31},
			RestrictionValue: U32Range{Min: 0, Max: 16},
			Flag:             even,
		},
		PPS: PPSRanges{
			PicParameterSetID:            U32Range{Min: 0, Max: 255},
			NumSliceGroupsMinus1:         U32Range{Min: 0, Max: 7},
			SliceGroupMapType:            U32Range{Min: 0, Max: 6},
			SliceGroupValue:              U32Range{Min: 0, Max: 63},
			NumRefIdxDefaultActiveMinus1: U32Range{Min: 0, Max: 31},
			WeightedBipredIDC:            U32Range{Min: 0, Max: 2},
			PicInitQPMinus26:             I32Range{Min: -26, Max: 25},
			ChromaQPIndexOffset:          I32Range{Min: -12, Max: 12},
			MoreData:                     Chance(30),
			Flag:                         even,
		},
		Slice: SliceRanges{
			FirstMbInSlice:        U32Range{Min: 0, Max: 100},
			SliceType:             U32Range{Min: 0, Max: 9},
			IDRPicID:              U32Range{Min: 0, Max: 65535},
			DeltaPicOrderCnt:      I32Range{Min: -128, Max: 128},
			RedundantPicCnt:       U32Range{Min: 0, Max: 127},
			NumRefIdxActiveMinus1: U32Range{Min: 0, Max: 31},
			ModificationCount:     U32Range{Min: 0, Max: 4},
			ModificationIDC:       U32Range{Min: 0, Max: 2},
			ModificationValue:     U32Range{Min: 0, Max: 31},
			MMCOCount:             U32Range{Min: 0, Max: 4},
			MMCO:                  U32Range{Min: 1, Max: 6},
			LumaLog2WeightDenom:   U32Range{Min: 0, Max: 7},
			Weight:                I32Range{Min: -128, Max: 127},
			CabacInitIDC:          U32Range{Min: 0, Max: 2},
			SliceQPDelta:          I32Range{Min: -26, Max: 25},
			DisableDeblocking:     U32Range{Min: 0, Max: 2},
			FilterOffsetDiv2:      I32Range{Min: -6, Max: 6},
			DataBytes:             U32Range{Min: 0, Max: 64},
			Flag:                  even,
		},
		SEI: SEIRanges{
			MessageCount: U32Range{Min: 1, Max: 3},
			PayloadType:  U32Enum{Values: []uint32{0, 1, 2, 3, 4, 5, 6, 137, 144, 300}},
			PayloadSize:  U32Range{Min: 0, Max: 300},
		},
		AUD: AUDRanges{
			PrimaryPicType: U32Range{Min: 0, Max: 7},
		},
		Payload: PayloadRanges{
			Length: U32Range{Min: 0, Max: 64},
		},
	}
}
