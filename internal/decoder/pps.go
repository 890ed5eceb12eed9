package decoder

import "github.com/zsiec/nalforge/internal/syntax"

// parsePPSBody reads pic_parameter_set_rbsp after the two IDs. sps is the
// parameter set those IDs resolved to.
func parsePPSBody(r *reader, p *syntax.PPS, sps *syntax.SPS) {
	p.EntropyCodingModeFlag = r.flag()
	p.BottomFieldPicOrderInFramePresentFlag = r.flag()
	p.NumSliceGroupsMinus1 = r.ue("num_slice_groups_minus1")

	if p.NumSliceGroupsMinus1 > 0 {
		p.SliceGroupMapType = r.ue("slice_group_map_type")
		switch p.SliceGroupMapType {
		case syntax.SliceGroupInterleaved:
			for i := uint32(0); i <= p.NumSliceGroupsMinus1 && r.err == nil; i++ {
				p.RunLengthMinus1 = append(p.RunLengthMinus1, r.ue("run_length_minus1"))
			}
		case syntax.SliceGroupForeground:
			for i := uint32(0); i < p.NumSliceGroupsMinus1 && r.err == nil; i++ {
				p.TopLeft = append(p.TopLeft, r.ue("top_left"))
				p.BottomRight = append(p.BottomRight, r.ue("bottom_right"))
			}
		case syntax.SliceGroupBoxOut, syntax.SliceGroupRasterScan, syntax.SliceGroupWipe:
			p.SliceGroupChangeDirectionFlag = r.flag()
			p.SliceGroupChangeRateMinus1 = r.ue("slice_group_change_rate_minus1")
		case syntax.SliceGroupExplicit:
			p.PicSizeInMapUnitsMinus1 = r.ue("pic_size_in_map_units_minus1")
			width := p.SliceGroupIDWidth()
			for i := uint32(0); i <= p.PicSizeInMapUnitsMinus1 && r.err == nil; i++ {
				p.SliceGroupID = append(p.SliceGroupID, r.u("slice_group_id", width))
			}
		}
	}

	p.NumRefIdxL0DefaultActiveMinus1 = r.ue("num_ref_idx_l0_default_active_minus1")
	p.NumRefIdxL1DefaultActiveMinus1 = r.ue("num_ref_idx_l1_default_active_minus1")
	p.WeightedPredFlag = r.flag()
	p.WeightedBipredIDC = uint8(r.u("weighted_bipred_idc", 2))
	p.PicInitQPMinus26 = r.se("pic_init_qp_minus26")
	p.PicInitQSMinus26 = r.se("pic_init_qs_minus26")
	p.ChromaQPIndexOffset = r.se("chroma_qp_index_offset")
	p.DeblockingFilterControlPresentFlag = r.flag()
	p.ConstrainedIntraPredFlag = r.flag()
	p.RedundantPicCntPresentFlag = r.flag()

	if r.moreData() {
		p.MoreData = true
		p.Transform8x8ModeFlag = r.flag()
		p.PicScalingMatrixPresentFlag = r.flag()
		if p.PicScalingMatrixPresentFlag {
			p.ScalingLists = parseScalingLists(r, p.ScalingListCount(sps.EffectiveChromaFormatIDC()))
		}
		p.SecondChromaQPIndexOffset = r.se("second_chroma_qp_index_offset")
	}
}
