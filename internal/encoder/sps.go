package encoder

import "github.com/zsiec/nalforge/internal/syntax"

// writeSPSData writes seq_parameter_set_data (7.3.2.1.1).
func writeSPSData(w *Writer, s *syntax.SPS) {
	w.U("profile_idc", 8, uint64(s.ProfileIDC))
	w.Flag(s.ConstraintSet0)
	w.Flag(s.ConstraintSet1)
	w.Flag(s.ConstraintSet2)
	w.Flag(s.ConstraintSet3)
	w.Flag(s.ConstraintSet4)
	w.Flag(s.ConstraintSet5)
	w.U("reserved_zero_2bits", 2, uint64(s.ReservedZero2Bits))
	w.U("level_idc", 8, uint64(s.LevelIDC))
	w.UE(s.SeqParameterSetID)

	if syntax.HasChromaInfo(s.ProfileIDC) {
		w.UE(s.ChromaFormatIDC)
		if s.ChromaFormatIDC == 3 {
			w.Flag(s.SeparateColourPlaneFlag)
		}
		w.UE(s.BitDepthLumaMinus8)
		w.UE(s.BitDepthChromaMinus8)
		w.Flag(s.QpprimeYZeroTransformBypassFlag)
		w.Flag(s.SeqScalingMatrixPresentFlag)
		if s.SeqScalingMatrixPresentFlag {
			writeScalingLists(w, s.ScalingLists, s.ScalingListCount())
		}
	}

	w.UE(s.Log2MaxFrameNumMinus4)
	w.UE(s.PicOrderCntType)
	switch s.PicOrderCntType {
	case 0:
		w.UE(s.Log2MaxPicOrderCntLsbMinus4)
	case 1:
		w.Flag(s.DeltaPicOrderAlwaysZeroFlag)
		w.SE(s.OffsetForNonRefPic)
		w.SE(s.OffsetForTopToBottomField)
		w.UE(s.NumRefFramesInPicOrderCntCycle)
		for i := uint32(0); i < s.NumRefFramesInPicOrderCntCycle && w.Err() == nil; i++ {
			w.SE(int32At(s.OffsetForRefFrame, int(i)))
		}
	}

	w.UE(s.MaxNumRefFrames)
	w.Flag(s.GapsInFrameNumValueAllowedFlag)
	w.UE(s.PicWidthInMbsMinus1)
	w.UE(s.PicHeightInMapUnitsMinus1)
	w.Flag(s.FrameMbsOnlyFlag)
	if !s.FrameMbsOnlyFlag {
		w.Flag(s.MbAdaptiveFrameFieldFlag)
	}
	w.Flag(s.Direct8x8InferenceFlag)

	w.Flag(s.FrameCroppingFlag)
	if s.FrameCroppingFlag {
		w.UE(s.FrameCropLeftOffset)
		w.UE(s.FrameCropRightOffset)
		w.UE(s.FrameCropTopOffset)
		w.UE(s.FrameCropBottomOffset)
	}

	w.Flag(s.VUIParametersPresentFlag)
	if s.VUIParametersPresentFlag {
		writeVUI(w, &s.VUI)
	}
}

// writeScalingLists writes count scaling_list_present flags and the lists
// that are present. Missing entries are coded as absent.
func writeScalingLists(w *Writer, lists []syntax.ScalingList, count int) {
	for i := 0; i < count; i++ {
		var list syntax.ScalingList
		if i < len(lists) {
			list = lists[i]
		}
		w.Flag(list.Present)
		if list.Present {
			writeScalingList(w, list.DeltaScale, syntax.ScalingListSize(i))
		}
	}
}

// writeScalingList follows 7.3.2.1.1.1: deltas are coded until nextScale
// reaches zero. Deltas beyond the end of the slice are coded as zero.
func writeScalingList(w *Writer, deltas []int32, size int) {
	lastScale, nextScale := int64(8), int64(8)
	for j := 0; j < size; j++ {
		if nextScale != 0 {
			delta := int32At(deltas, j)
			w.SE(delta)
			nextScale = nextScaleValue(lastScale, delta)
		}
		if nextScale != 0 {
			lastScale = nextScale
		}
	}
}

func nextScaleValue(lastScale int64, delta int32) int64 {
	return ((lastScale+int64(delta)+256)%256 + 256) % 256
}

// writeVUI writes vui_parameters (E.1.1).
func writeVUI(w *Writer, v *syntax.VUI) {
	w.Flag(v.AspectRatioInfoPresentFlag)
	if v.AspectRatioInfoPresentFlag {
		w.U("aspect_ratio_idc", 8, uint64(v.AspectRatioIDC))
		if v.AspectRatioIDC == syntax.ExtendedSAR {
			w.U("sar_width", 16, uint64(v.SarWidth))
			w.U("sar_height", 16, uint64(v.SarHeight))
		}
	}

	w.Flag(v.OverscanInfoPresentFlag)
	if v.OverscanInfoPresentFlag {
		w.Flag(v.OverscanAppropriateFlag)
	}

	w.Flag(v.VideoSignalTypePresentFlag)
	if v.VideoSignalTypePresentFlag {
		w.U("video_format", 3, uint64(v.VideoFormat))
		w.Flag(v.VideoFullRangeFlag)
		w.Flag(v.ColourDescriptionPresentFlag)
		if v.ColourDescriptionPresentFlag {
			w.U("colour_primaries", 8, uint64(v.ColourPrimaries))
			w.U("transfer_characteristics", 8, uint64(v.TransferCharacteristics))
			w.U("matrix_coefficients", 8, uint64(v.MatrixCoefficients))
		}
	}

	w.Flag(v.ChromaLocInfoPresentFlag)
	if v.ChromaLocInfoPresentFlag {
		w.UE(v.ChromaSampleLocTypeTopField)
		w.UE(v.ChromaSampleLocTypeBottomField)
	}

	w.Flag(v.TimingInfoPresentFlag)
	if v.TimingInfoPresentFlag {
		w.U("num_units_in_tick", 32, uint64(v.NumUnitsInTick))
		w.U("time_scale", 32, uint64(v.TimeScale))
		w.Flag(v.FixedFrameRateFlag)
	}

	w.Flag(v.NalHRDParametersPresentFlag)
	if v.NalHRDParametersPresentFlag {
		writeHRD(w, &v.NalHRD)
	}
	w.Flag(v.VclHRDParametersPresentFlag)
	if v.VclHRDParametersPresentFlag {
		writeHRD(w, &v.VclHRD)
	}
	if v.NalHRDParametersPresentFlag || v.VclHRDParametersPresentFlag {
		w.Flag(v.LowDelayHRDFlag)
	}
	w.Flag(v.PicStructPresentFlag)

	w.Flag(v.BitstreamRestrictionFlag)
	if v.BitstreamRestrictionFlag {
		w.Flag(v.MotionVectorsOverPicBoundariesFlag)
		w.UE(v.MaxBytesPerPicDenom)
		w.UE(v.MaxBitsPerMbDenom)
		w.UE(v.Log2MaxMvLengthHorizontal)
		w.UE(v.Log2MaxMvLengthVertical)
		w.UE(v.MaxNumReorderFrames)
		w.UE(v.MaxDecFrameBuffering)
	}
}

// writeHRD writes hrd_parameters (E.1.2).
func writeHRD(w *Writer, h *syntax.HRD) {
	w.UE(h.CpbCntMinus1)
	w.U("bit_rate_scale", 4, uint64(h.BitRateScale))
	w.U("cpb_size_scale", 4, uint64(h.CpbSizeScale))
	for i := 0; uint32(i) <= h.CpbCntMinus1 && w.Err() == nil; i++ {
		w.UE(uint32At(h.BitRateValueMinus1, i))
		w.UE(uint32At(h.CpbSizeValueMinus1, i))
		w.Flag(i < len(h.CbrFlag) && h.CbrFlag[i])
	}
	w.U("initial_cpb_removal_delay_length_minus1", 5, uint64(h.InitialCpbRemovalDelayLengthMinus1))
	w.U("cpb_removal_delay_length_minus1", 5, uint64(h.CpbRemovalDelayLengthMinus1))
	w.U("dpb_output_delay_length_minus1", 5, uint64(h.DpbOutputDelayLengthMinus1))
	w.U("time_offset_length", 5, uint64(h.TimeOffsetLength))
}

// writeSubsetSPS writes the SPS data followed by the opaque extension.
func writeSubsetSPS(w *Writer, s *syntax.SubsetSPS) {
	writeSPSData(w, &s.SPS)
	w.Bits(s.ExtensionBits)
}

// writeSPSExtension writes seq_parameter_set_extension_rbsp (7.3.2.1.2).
func writeSPSExtension(w *Writer, e *syntax.SPSExtension) {
	w.UE(e.SeqParameterSetID)
	w.UE(e.AuxFormatIDC)
	if e.AuxFormatIDC != 0 {
		w.UE(e.BitDepthAuxMinus8)
		w.Flag(e.AlphaIncrFlag)
		width := e.AlphaValueWidth()
		w.U("alpha_opaque_value", width, uint64(e.AlphaOpaqueValue))
		w.U("alpha_transparent_value", width, uint64(e.AlphaTransparentValue))
	}
	w.Flag(e.AdditionalExtensionFlag)
}

func int32At(values []int32, i int) int32 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func uint32At(values []uint32, i int) uint32 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
