package encoder

import "github.com/zsiec/nalforge/internal/syntax"

// sliceContext is the resolved view a slice header is coded against.
type sliceContext struct {
	nalu *syntax.NALU
	sps  *syntax.SPS
	pps  *syntax.PPS
}

// writeSliceHeader writes slice_header (7.3.3).
func writeSliceHeader(w *Writer, h *syntax.SliceHeader, ctx sliceContext) {
	sps, pps := ctx.sps, ctx.pps

	w.UE(h.FirstMbInSlice)
	w.UE(h.SliceType)
	w.UE(h.PicParameterSetID)
	if sps.SeparateColourPlanes() {
		w.U("colour_plane_id", 2, uint64(h.ColourPlaneID))
	}
	w.U("frame_num", int(sps.Log2MaxFrameNumMinus4)+4, uint64(h.FrameNum))
	if !sps.FrameMbsOnlyFlag {
		w.Flag(h.FieldPicFlag)
		if h.FieldPicFlag {
			w.Flag(h.BottomFieldFlag)
		}
	}
	fieldPic := !sps.FrameMbsOnlyFlag && h.FieldPicFlag

	idr := ctx.nalu.IdrPicFlag()
	if idr {
		w.UE(h.IDRPicID)
	}

	if sps.PicOrderCntType == 0 {
		w.U("pic_order_cnt_lsb", int(sps.Log2MaxPicOrderCntLsbMinus4)+4, uint64(h.PicOrderCntLsb))
		if pps.BottomFieldPicOrderInFramePresentFlag && !fieldPic {
			w.SE(h.DeltaPicOrderCntBottom)
		}
	}
	if sps.PicOrderCntType == 1 && !sps.DeltaPicOrderAlwaysZeroFlag {
		w.SE(h.DeltaPicOrderCnt[0])
		if pps.BottomFieldPicOrderInFramePresentFlag && !fieldPic {
			w.SE(h.DeltaPicOrderCnt[1])
		}
	}

	if pps.RedundantPicCntPresentFlag {
		w.UE(h.RedundantPicCnt)
	}
	if h.IsB() {
		w.Flag(h.DirectSpatialMvPredFlag)
	}
	if h.IsPredicted() || h.IsB() {
		w.Flag(h.NumRefIdxActiveOverride)
		if h.NumRefIdxActiveOverride {
			w.UE(h.NumRefIdxL0ActiveMinus1)
			if h.IsB() {
				w.UE(h.NumRefIdxL1ActiveMinus1)
			}
		}
	}

	mvc := ctx.nalu.NalUnitType == syntax.NALUSliceExtension || ctx.nalu.NalUnitType == syntax.NALUSliceExtensionView
	if !h.IsIntra() {
		writeRefPicListModification(w, &h.RefPicListModificationL0, mvc)
		if h.IsB() {
			writeRefPicListModification(w, &h.RefPicListModificationL1, mvc)
		}
	}

	if h.HasPredWeightTable(pps) {
		writePredWeightTable(w, h, sps, pps)
	}
	if ctx.nalu.NalRefIdc != 0 {
		writeDecRefPicMarking(w, &h.DecRefPicMarking, idr)
	}
	if pps.EntropyCodingModeFlag && !h.IsIntra() {
		w.UE(h.CabacInitIDC)
	}
	w.SE(h.SliceQPDelta)

	kind := h.Kind()
	if kind == syntax.SliceSP || kind == syntax.SliceSI {
		if kind == syntax.SliceSP {
			w.Flag(h.SPForSwitchFlag)
		}
		w.SE(h.SliceQSDelta)
	}

	if pps.DeblockingFilterControlPresentFlag {
		w.UE(h.DisableDeblockingFilterIDC)
		if h.DisableDeblockingFilterIDC != 1 {
			w.SE(h.SliceAlphaC0OffsetDiv2)
			w.SE(h.SliceBetaOffsetDiv2)
		}
	}

	if pps.HasSliceGroupChangeCycle() {
		w.U("slice_group_change_cycle", syntax.SliceGroupChangeCycleWidth(sps, pps), uint64(h.SliceGroupChangeCycle))
	}
}

// writeRefPicListModification writes one list of
// ref_pic_list_modification (7.3.3.1) or, for MVC slices,
// ref_pic_list_mvc_modification (H.7.3.3.1.1).
func writeRefPicListModification(w *Writer, m *syntax.RefPicListModification, mvc bool) {
	w.Flag(m.Flag)
	if !m.Flag {
		return
	}
	for _, op := range m.Operations {
		if w.Err() != nil {
			return
		}
		w.UE(op.IDC)
		if op.IDC == 3 {
			return
		}
		if modificationHasValue(op.IDC, mvc) {
			w.UE(op.Value)
		}
	}
	w.UE(3)
}

func modificationHasValue(idc uint32, mvc bool) bool {
	switch idc {
	case 0, 1, 2:
		return true
	case 4, 5:
		return mvc
	default:
		return false
	}
}

// writePredWeightTable writes pred_weight_table (7.3.3.2).
func writePredWeightTable(w *Writer, h *syntax.SliceHeader, sps *syntax.SPS, pps *syntax.PPS) {
	t := &h.PredWeightTable
	chroma := sps.ChromaArrayType() != 0

	w.UE(t.LumaLog2WeightDenom)
	if chroma {
		w.UE(t.ChromaLog2WeightDenom)
	}

	l0, l1 := h.ActiveRefIdx(pps)
	writePredWeights(w, t.L0, l0, chroma)
	if h.IsB() {
		writePredWeights(w, t.L1, l1, chroma)
	}
}

func writePredWeights(w *Writer, weights []syntax.PredWeight, activeMinus1 uint32, chroma bool) {
	for i := 0; uint32(i) <= activeMinus1 && w.Err() == nil; i++ {
		var pw syntax.PredWeight
		if i < len(weights) {
			pw = weights[i]
		}
		w.Flag(pw.LumaWeightFlag)
		if pw.LumaWeightFlag {
			w.SE(pw.LumaWeight)
			w.SE(pw.LumaOffset)
		}
		if chroma {
			w.Flag(pw.ChromaWeightFlag)
			if pw.ChromaWeightFlag {
				for j := 0; j < 2; j++ {
					w.SE(pw.ChromaWeight[j])
					w.SE(pw.ChromaOffset[j])
				}
			}
		}
	}
}

// writeDecRefPicMarking writes dec_ref_pic_marking (7.3.3.3).
func writeDecRefPicMarking(w *Writer, m *syntax.DecRefPicMarking, idr bool) {
	if idr {
		w.Flag(m.NoOutputOfPriorPicsFlag)
		w.Flag(m.LongTermReferenceFlag)
		return
	}

	w.Flag(m.AdaptiveRefPicMarkingModeFlag)
	if !m.AdaptiveRefPicMarkingModeFlag {
		return
	}
	for _, op := range m.Operations {
		if w.Err() != nil {
			return
		}
		w.UE(op.Operation)
		if op.Operation == 0 {
			return
		}
		writeMMCOArguments(w, &op)
	}
	w.UE(0)
}

func writeMMCOArguments(w *Writer, op *syntax.MMCO) {
	if op.Operation == 1 || op.Operation == 3 {
		w.UE(op.DifferenceOfPicNumsMinus1)
	}
	if op.Operation == 2 {
		w.UE(op.LongTermPicNum)
	}
	if op.Operation == 3 || op.Operation == 6 {
		w.UE(op.LongTermFrameIdx)
	}
	if op.Operation == 4 {
		w.UE(op.MaxLongTermFrameIdxPlus1)
	}
}

// writeSlice writes the slice header followed by the opaque slice data.
func writeSlice(w *Writer, s *syntax.Slice, ctx sliceContext) {
	writeSliceHeader(w, &s.Header, ctx)
	w.Bits(s.Data)
}
