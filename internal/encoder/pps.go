package encoder

import "github.com/zsiec/nalforge/internal/syntax"

// writePPS writes pic_parameter_set_rbsp (7.3.2.2). sps is the parameter
// set the PPS refers to; its chroma format decides how many scaling lists
// the optional tail carries.
func writePPS(w *Writer, p *syntax.PPS, sps *syntax.SPS) {
	w.UE(p.PicParameterSetID)
	w.UE(p.SeqParameterSetID)
	w.Flag(p.EntropyCodingModeFlag)
	w.Flag(p.BottomFieldPicOrderInFramePresentFlag)
	w.UE(p.NumSliceGroupsMinus1)

	if p.NumSliceGroupsMinus1 > 0 {
		w.UE(p.SliceGroupMapType)
		switch p.SliceGroupMapType {
		case syntax.SliceGroupInterleaved:
			for i := 0; uint32(i) <= p.NumSliceGroupsMinus1 && w.Err() == nil; i++ {
				w.UE(uint32At(p.RunLengthMinus1, i))
			}
		case syntax.SliceGroupForeground:
			for i := 0; uint32(i) < p.NumSliceGroupsMinus1 && w.Err() == nil; i++ {
				w.UE(uint32At(p.TopLeft, i))
				w.UE(uint32At(p.BottomRight, i))
			}
		case syntax.SliceGroupBoxOut, syntax.SliceGroupRasterScan, syntax.SliceGroupWipe:
			w.Flag(p.SliceGroupChangeDirectionFlag)
			w.UE(p.SliceGroupChangeRateMinus1)
		case syntax.SliceGroupExplicit:
			w.UE(p.PicSizeInMapUnitsMinus1)
			width := p.SliceGroupIDWidth()
			for i := 0; uint32(i) <= p.PicSizeInMapUnitsMinus1 && w.Err() == nil; i++ {
				w.U("slice_group_id", width, uint64(uint32At(p.SliceGroupID, i)))
			}
		}
	}

	w.UE(p.NumRefIdxL0DefaultActiveMinus1)
	w.UE(p.NumRefIdxL1DefaultActiveMinus1)
	w.Flag(p.WeightedPredFlag)
	w.U("weighted_bipred_idc", 2, uint64(p.WeightedBipredIDC))
	w.SE(p.PicInitQPMinus26)
	w.SE(p.PicInitQSMinus26)
	w.SE(p.ChromaQPIndexOffset)
	w.Flag(p.DeblockingFilterControlPresentFlag)
	w.Flag(p.ConstrainedIntraPredFlag)
	w.Flag(p.RedundantPicCntPresentFlag)

	if p.MoreData {
		w.Flag(p.Transform8x8ModeFlag)
		w.Flag(p.PicScalingMatrixPresentFlag)
		if p.PicScalingMatrixPresentFlag {
			writeScalingLists(w, p.ScalingLists, p.ScalingListCount(sps.EffectiveChromaFormatIDC()))
		}
		w.SE(p.SecondChromaQPIndexOffset)
	}
}
