package decoder

import "github.com/zsiec/nalforge/internal/syntax"

func parseSPSData(r *reader, s *syntax.SPS) {
	s.ProfileIDC = uint8(r.u("profile_idc", 8))
	s.ConstraintSet0 = r.flag()
	s.ConstraintSet1 = r.flag()
	s.ConstraintSet2 = r.flag()
	s.ConstraintSet3 = r.flag()
	s.ConstraintSet4 = r.flag()
	s.ConstraintSet5 = r.flag()
	s.ReservedZero2Bits = uint8(r.u("reserved_zero_2bits", 2))
	s.LevelIDC = uint8(r.u("level_idc", 8))
	s.SeqParameterSetID = r.ue("seq_parameter_set_id")

	if syntax.HasChromaInfo(s.ProfileIDC) {
		s.ChromaFormatIDC = r.ue("chroma_format_idc")
		if s.ChromaFormatIDC == 3 {
			s.SeparateColourPlaneFlag = r.flag()
		}
		s.BitDepthLumaMinus8 = r.ue("bit_depth_luma_minus8")
		s.BitDepthChromaMinus8 = r.ue("bit_depth_chroma_minus8")
		s.QpprimeYZeroTransformBypassFlag = r.flag()
		s.SeqScalingMatrixPresentFlag = r.flag()
		if s.SeqScalingMatrixPresentFlag {
			s.ScalingLists = parseScalingLists(r, s.ScalingListCount())
		}
	}

	s.Log2MaxFrameNumMinus4 = r.ue("log2_max_frame_num_minus4")
	s.PicOrderCntType = r.ue("pic_order_cnt_type")
	switch s.PicOrderCntType {
	case 0:
		s.Log2MaxPicOrderCntLsbMinus4 = r.ue("log2_max_pic_order_cnt_lsb_minus4")
	case 1:
		s.DeltaPicOrderAlwaysZeroFlag = r.flag()
		s.OffsetForNonRefPic = r.se("offset_for_non_ref_pic")
		s.OffsetForTopToBottomField = r.se("offset_for_top_to_bottom_field")
		s.NumRefFramesInPicOrderCntCycle = r.ue("num_ref_frames_in_pic_order_cnt_cycle")
		for i := uint32(0); i < s.NumRefFramesInPicOrderCntCycle && r.err == nil; i++ {
			s.OffsetForRefFrame = append(s.OffsetForRefFrame, r.se("offset_for_ref_frame"))
		}
	}

	s.MaxNumRefFrames = r.ue("max_num_ref_frames")
	s.GapsInFrameNumValueAllowedFlag = r.flag()
	s.PicWidthInMbsMinus1 = r.ue("pic_width_in_mbs_minus1")
	s.PicHeightInMapUnitsMinus1 = r.ue("pic_height_in_map_units_minus1")
	s.FrameMbsOnlyFlag = r.flag()
	if !s.FrameMbsOnlyFlag {
		s.MbAdaptiveFrameFieldFlag = r.flag()
	}
	s.Direct8x8InferenceFlag = r.flag()

	s.FrameCroppingFlag = r.flag()
	if s.FrameCroppingFlag {
		s.FrameCropLeftOffset = r.ue("frame_crop_left_offset")
		s.FrameCropRightOffset = r.ue("frame_crop_right_offset")
		s.FrameCropTopOffset = r.ue("frame_crop_top_offset")
		s.FrameCropBottomOffset = r.ue("frame_crop_bottom_offset")
	}

	s.VUIParametersPresentFlag = r.flag()
	if s.VUIParametersPresentFlag {
		parseVUI(r, &s.VUI)
	}
}

// parseScalingLists keeps only the deltas present in the stream, which
// re-encode to the same bits.
func parseScalingLists(r *reader, count int) []syntax.ScalingList {
	lists := make([]syntax.ScalingList, count)
	for i := 0; i < count && r.err == nil; i++ {
		lists[i].Present = r.flag()
		if !lists[i].Present {
			continue
		}
		size := syntax.ScalingListSize(i)
		lastScale, nextScale := int64(8), int64(8)
		for j := 0; j < size && r.err == nil; j++ {
			if nextScale != 0 {
				delta := r.se("delta_scale")
				lists[i].DeltaScale = append(lists[i].DeltaScale, delta)
				nextScale = ((lastScale+int64(delta)+256)%256 + 256) % 256
			}
			if nextScale != 0 {
				lastScale = nextScale
			}
		}
	}
	return lists
}

func parseVUI(r *reader, v *syntax.VUI) {
	v.AspectRatioInfoPresentFlag = r.flag()
	if v.AspectRatioInfoPresentFlag {
		v.AspectRatioIDC = uint8(r.u("aspect_ratio_idc", 8))
		if v.AspectRatioIDC == syntax.ExtendedSAR {
			v.SarWidth = uint16(r.u("sar_width", 16))
			v.SarHeight = uint16(r.u("sar_height", 16))
		}
	}

	v.OverscanInfoPresentFlag = r.flag()
	if v.OverscanInfoPresentFlag {
		v.OverscanAppropriateFlag = r.flag()
	}

	v.VideoSignalTypePresentFlag = r.flag()
	if v.VideoSignalTypePresentFlag {
		v.VideoFormat = uint8(r.u("video_format", 3))
		v.VideoFullRangeFlag = r.flag()
		v.ColourDescriptionPresentFlag = r.flag()
		if v.ColourDescriptionPresentFlag {
			v.ColourPrimaries = uint8(r.u("colour_primaries", 8))
			v.TransferCharacteristics = uint8(r.u("transfer_characteristics", 8))
			v.MatrixCoefficients = uint8(r.u("matrix_coefficients", 8))
		}
	}

	v.ChromaLocInfoPresentFlag = r.flag()
	if v.ChromaLocInfoPresentFlag {
		v.ChromaSampleLocTypeTopField = r.ue("chroma_sample_loc_type_top_field")
		v.ChromaSampleLocTypeBottomField = r.ue("chroma_sample_loc_type_bottom_field")
	}

	v.TimingInfoPresentFlag = r.flag()
	if v.TimingInfoPresentFlag {
		v.NumUnitsInTick = r.u("num_units_in_tick", 32)
		v.TimeScale = r.u("time_scale", 32)
		v.FixedFrameRateFlag = r.flag()
	}

	v.NalHRDParametersPresentFlag = r.flag()
	if v.NalHRDParametersPresentFlag {
		parseHRD(r, &v.NalHRD)
	}
	v.VclHRDParametersPresentFlag = r.flag()
	if v.VclHRDParametersPresentFlag {
		parseHRD(r, &v.VclHRD)
	}
	if v.NalHRDParametersPresentFlag || v.VclHRDParametersPresentFlag {
		v.LowDelayHRDFlag = r.flag()
	}
	v.PicStructPresentFlag = r.flag()

	v.BitstreamRestrictionFlag = r.flag()
	if v.BitstreamRestrictionFlag {
		v.MotionVectorsOverPicBoundariesFlag = r.flag()
		v.MaxBytesPerPicDenom = r.ue("max_bytes_per_pic_denom")
		v.MaxBitsPerMbDenom = r.ue("max_bits_per_mb_denom")
		v.Log2MaxMvLengthHorizontal = r.ue("log2_max_mv_length_horizontal")
		v.Log2MaxMvLengthVertical = r.ue("log2_max_mv_length_vertical")
		v.MaxNumReorderFrames = r.ue("max_num_reorder_frames")
		v.MaxDecFrameBuffering = r.ue("max_dec_frame_buffering")
	}
}

func parseHRD(r *reader, h *syntax.HRD) {
	h.CpbCntMinus1 = r.ue("cpb_cnt_minus1")
	h.BitRateScale = uint8(r.u("bit_rate_scale", 4))
	h.CpbSizeScale = uint8(r.u("cpb_size_scale", 4))
	for i := uint32(0); i <= h.CpbCntMinus1 && r.err == nil; i++ {
		h.BitRateValueMinus1 = append(h.BitRateValueMinus1, r.ue("bit_rate_value_minus1"))
		h.CpbSizeValueMinus1 = append(h.CpbSizeValueMinus1, r.ue("cpb_size_value_minus1"))
		h.CbrFlag = append(h.CbrFlag, r.flag())
	}
	h.InitialCpbRemovalDelayLengthMinus1 = uint8(r.u("initial_cpb_removal_delay_length_minus1", 5))
	h.CpbRemovalDelayLengthMinus1 = uint8(r.u("cpb_removal_delay_length_minus1", 5))
	h.DpbOutputDelayLengthMinus1 = uint8(r.u("dpb_output_delay_length_minus1", 5))
	h.TimeOffsetLength = uint8(r.u("time_offset_length", 5))
}

func parseSubsetSPS(r *reader, s *syntax.SubsetSPS) {
	parseSPSData(r, &s.SPS)
	s.ExtensionBits = r.rest()
}

func parseSPSExtension(r *reader, e *syntax.SPSExtension) {
	e.SeqParameterSetID = r.ue("seq_parameter_set_id")
	e.AuxFormatIDC = r.ue("aux_format_idc")
	if e.AuxFormatIDC != 0 {
		e.BitDepthAuxMinus8 = r.ue("bit_depth_aux_minus8")
		e.AlphaIncrFlag = r.flag()
		width := e.AlphaValueWidth()
		e.AlphaOpaqueValue = r.u("alpha_opaque_value", width)
		e.AlphaTransparentValue = r.u("alpha_transparent_value", width)
	}
	e.AdditionalExtensionFlag = r.flag()
}
