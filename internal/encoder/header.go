package encoder

import "github.com/zsiec/nalforge/internal/syntax"

// writeHeader writes nal_unit_header and, for types 14, 20 and 21, its
// extension. It returns the type the header carries after any masking.
func writeHeader(w *Writer, n *syntax.NALU) uint8 {
	w.U("forbidden_zero_bit", 1, uint64(n.ForbiddenZeroBit))
	w.U("nal_ref_idc", 2, uint64(n.NalRefIdc))
	w.U("nal_unit_type", 5, uint64(n.NalUnitType))
	naluType := n.NalUnitType & syntax.MaxNALUType

	if !syntax.HasHeaderExtension(naluType) {
		return naluType
	}

	if naluType == syntax.NALUSliceExtensionView {
		w.Flag(n.AVC3DExtensionFlag)
		if n.AVC3DExtensionFlag {
			writeAVC3DExtension(w, &n.AVC3D)
			return naluType
		}
	} else {
		w.Flag(n.SVCExtensionFlag)
		if n.SVCExtensionFlag {
			writeSVCExtension(w, &n.SVC)
			return naluType
		}
	}
	writeMVCExtension(w, &n.MVC)
	return naluType
}

func writeSVCExtension(w *Writer, e *syntax.SVCHeaderExtension) {
	w.Flag(e.IDRFlag)
	w.U("priority_id", 6, uint64(e.PriorityID))
	w.Flag(e.NoInterLayerPredFlag)
	w.U("dependency_id", 3, uint64(e.DependencyID))
	w.U("quality_id", 4, uint64(e.QualityID))
	w.U("temporal_id", 3, uint64(e.TemporalID))
	w.Flag(e.UseRefBasePicFlag)
	w.Flag(e.DiscardableFlag)
	w.Flag(e.OutputFlag)
	w.U("reserved_three_2bits", 2, uint64(e.ReservedThree2Bits))
}

func writeMVCExtension(w *Writer, e *syntax.MVCHeaderExtension) {
	w.Flag(e.NonIDRFlag)
	w.U("priority_id", 6, uint64(e.PriorityID))
	w.U("view_id", 10, uint64(e.ViewID))
	w.U("temporal_id", 3, uint64(e.TemporalID))
	w.Flag(e.AnchorPicFlag)
	w.Flag(e.InterViewFlag)
	w.U("reserved_one_bit", 1, uint64(e.ReservedOneBit))
}

func writeAVC3DExtension(w *Writer, e *syntax.AVC3DHeaderExtension) {
	w.U("view_idx", 8, uint64(e.ViewIdx))
	w.Flag(e.DepthFlag)
	w.Flag(e.NonIDRFlag)
	w.U("temporal_id", 3, uint64(e.TemporalID))
	w.Flag(e.AnchorPicFlag)
	w.Flag(e.InterViewFlag)
}
