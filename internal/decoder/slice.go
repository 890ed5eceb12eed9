package decoder

import "github.com/zsiec/nalforge/internal/syntax"

// parseSliceHeaderBody reads slice_header after pic_parameter_set_id,
// against the parameter sets that ID resolved to.
func parseSliceHeaderBody(r *reader, h *syntax.SliceHeader, n *syntax.NALU, sps *syntax.SPS, pps *syntax.PPS) {
	if sps.SeparateColourPlanes() {
		h.ColourPlaneID = uint8(r.u("colour_plane_id", 2))
	}
	h.FrameNum = r.u("frame_num", int(sps.Log2MaxFrameNumMinus4)+4)
	if !sps.FrameMbsOnlyFlag {
		h.FieldPicFlag = r.flag()
		if h.FieldPicFlag {
			h.BottomFieldFlag = r.flag()
		}
	}
	fieldPic := !sps.FrameMbsOnlyFlag && h.FieldPicFlag

	idr := n.IdrPicFlag()
	if idr {
		h.IDRPicID = r.ue("idr_pic_id")
	}

	if sps.PicOrderCntType == 0 {
		h.PicOrderCntLsb = r.u("pic_order_cnt_lsb", int(sps.Log2MaxPicOrderCntLsbMinus4)+4)
		if pps.BottomFieldPicOrderInFramePresentFlag && !fieldPic {
			h.DeltaPicOrderCntBottom = r.se("delta_pic_order_cnt_bottom")
		}
	}
	if sps.PicOrderCntType == 1 && !sps.DeltaPicOrderAlwaysZeroFlag {
		h.DeltaPicOrderCnt[0] = r.se("delta_pic_order_cnt")
		if pps.BottomFieldPicOrderInFramePresentFlag && !fieldPic {
			h.DeltaPicOrderCnt[1] = r.se("delta_pic_order_cnt")
		}
	}

	if pps.RedundantPicCntPresentFlag {
		h.RedundantPicCnt = r.ue("redundant_pic_cnt")
	}
	if h.IsB() {
		h.DirectSpatialMvPredFlag = r.flag()
	}
	if h.IsPredicted() || h.IsB() {
		h.NumRefIdxActiveOverride = r.flag()
		if h.NumRefIdxActiveOverride {
			h.NumRefIdxL0ActiveMinus1 = r.ue("num_ref_idx_l0_active_minus1")
			if h.IsB() {
				h.NumRefIdxL1ActiveMinus1 = r.ue("num_ref_idx_l1_active_minus1")
			}
		}
	}

	mvc := n.NalUnitType == syntax.NALUSliceExtension || n.NalUnitType == syntax.NALUSliceExtensionView
	if !h.IsIntra() {
		parseRefPicListModification(r, &h.RefPicListModificationL0, mvc)
		if h.IsB() {
			parseRefPicListModification(r, &h.RefPicListModificationL1, mvc)
		}
	}

	if h.HasPredWeightTable(pps) {
		parsePredWeightTable(r, h, sps, pps)
	}
	if n.NalRefIdc != 0 {
		parseDecRefPicMarking(r, &h.DecRefPicMarking, idr)
	}
	if pps.EntropyCodingModeFlag && !h.IsIntra() {
		h.CabacInitIDC = r.ue("cabac_init_idc")
	}
	h.SliceQPDelta = r.se("slice_qp_delta")

	kind := h.Kind()
	if kind == syntax.SliceSP || kind == syntax.SliceSI {
		if kind == syntax.SliceSP {
			h.SPForSwitchFlag = r.flag()
		}
		h.SliceQSDelta = r.se("slice_qs_delta")
	}

	if pps.DeblockingFilterControlPresentFlag {
		h.DisableDeblockingFilterIDC = r.ue("disable_deblocking_filter_idc")
		if h.DisableDeblockingFilterIDC != 1 {
			h.SliceAlphaC0OffsetDiv2 = r.se("slice_alpha_c0_offset_div2")
			h.SliceBetaOffsetDiv2 = r.se("slice_beta_offset_div2")
		}
	}

	if pps.HasSliceGroupChangeCycle() {
		h.SliceGroupChangeCycle = r.u("slice_group_change_cycle", syntax.SliceGroupChangeCycleWidth(sps, pps))
	}
}

func parseRefPicListModification(r *reader, m *syntax.RefPicListModification, mvc bool) {
	m.Flag = r.flag()
	if !m.Flag {
		return
	}
	for r.err == nil {
		op := syntax.ModificationOperation{IDC: r.ue("modification_of_pic_nums_idc")}
		if op.IDC == 3 || r.err != nil {
			return
		}
		switch op.IDC {
		case 0, 1, 2:
			op.Value = r.ue("abs_diff_pic_num_minus1")
		case 4, 5:
			if mvc {
				op.Value = r.ue("abs_diff_view_idx_minus1")
			}
		}
		m.Operations = append(m.Operations, op)
	}
}

func parsePredWeightTable(r *reader, h *syntax.SliceHeader, sps *syntax.SPS, pps *syntax.PPS) {
	t := &h.PredWeightTable
	chroma := sps.ChromaArrayType() != 0

	t.LumaLog2WeightDenom = r.ue("luma_log2_weight_denom")
	if chroma {
		t.ChromaLog2WeightDenom = r.ue("chroma_log2_weight_denom")
	}

	l0, l1 := h.ActiveRefIdx(pps)
	t.L0 = parsePredWeights(r, l0, chroma)
	if h.IsB() {
		t.L1 = parsePredWeights(r, l1, chroma)
	}
}

func parsePredWeights(r *reader, activeMinus1 uint32, chroma bool) []syntax.PredWeight {
	var weights []syntax.PredWeight
	for i := uint32(0); i <= activeMinus1 && r.err == nil; i++ {
		var pw syntax.PredWeight
		pw.LumaWeightFlag = r.flag()
		if pw.LumaWeightFlag {
			pw.LumaWeight = r.se("luma_weight")
			pw.LumaOffset = r.se("luma_offset")
		}
		if chroma {
			pw.ChromaWeightFlag = r.flag()
			if pw.ChromaWeightFlag {
				for j := 0; j < 2; j++ {
					pw.ChromaWeight[j] = r.se("chroma_weight")
					pw.ChromaOffset[j] = r.se("chroma_offset")
				}
			}
		}
		weights = append(weights, pw)
	}
	return weights
}

func parseDecRefPicMarking(r *reader, m *syntax.DecRefPicMarking, idr bool) {
	if idr {
		m.NoOutputOfPriorPicsFlag = r.flag()
		m.LongTermReferenceFlag = r.flag()
		return
	}

	m.AdaptiveRefPicMarkingModeFlag = r.flag()
	if !m.AdaptiveRefPicMarkingModeFlag {
		return
	}
	for r.err == nil {
		op := syntax.MMCO{Operation: r.ue("memory_management_control_operation")}
		if op.Operation == 0 || r.err != nil {
			return
		}
		if op.Operation == 1 || op.Operation == 3 {
			op.DifferenceOfPicNumsMinus1 = r.ue("difference_of_pic_nums_minus1")
		}
		if op.Operation == 2 {
			op.LongTermPicNum = r.ue("long_term_pic_num")
		}
		if op.Operation == 3 || op.Operation == 6 {
			op.LongTermFrameIdx = r.ue("long_term_frame_idx")
		}
		if op.Operation == 4 {
			op.MaxLongTermFrameIdxPlus1 = r.ue("max_long_term_frame_idx_plus1")
		}
		m.Operations = append(m.Operations, op)
	}
}
