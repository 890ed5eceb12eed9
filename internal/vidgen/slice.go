package vidgen

import "github.com/zsiec/nalforge/internal/syntax"

// mvcModificationIDCs are the modification_of_pic_nums_idc values an MVC
// slice may use besides the terminating 3.
var mvcModificationIDCs = []uint32{0, 1, 2, 4, 5}

// slice draws a slice header coded against pps and sps followed by opaque
// slice data. Fields the header does not code under n, pps and sps are
// left zero.
func (g *Generator) slice(n *syntax.NALU, pps *syntax.PPS, sps *syntax.SPS) syntax.Slice {
	r := &g.cfg.Slice
	flag := func() bool { return g.flag(r.Flag) }
	idr := n.IdrPicFlag()

	h := syntax.SliceHeader{
		FirstMbInSlice:    g.src.Uint(r.FirstMbInSlice),
		SliceType:         g.src.Uint(r.SliceType),
		PicParameterSetID: pps.PicParameterSetID,
	}
	if idr && !h.IsIntra() {
		// IDR pictures only hold I and SI slices
		h.SliceType = h.SliceType - h.Kind() + syntax.SliceI
	}

	if sps.SeparateColourPlanes() {
		h.ColourPlaneID = uint8(g.fixed(2))
	}
	h.FrameNum = g.fixed(int(sps.Log2MaxFrameNumMinus4) + 4)
	if !sps.FrameMbsOnlyFlag {
		h.FieldPicFlag = flag()
		if h.FieldPicFlag {
			h.BottomFieldFlag = flag()
		}
	}
	if idr {
		h.IDRPicID = g.src.Uint(r.IDRPicID)
	}

	bottomDelta := pps.BottomFieldPicOrderInFramePresentFlag && !h.FieldPicFlag
	switch {
	case sps.PicOrderCntType == 0:
		h.PicOrderCntLsb = g.fixed(int(sps.Log2MaxPicOrderCntLsbMinus4) + 4)
		if bottomDelta {
			h.DeltaPicOrderCntBottom = g.src.Int(r.DeltaPicOrderCnt)
		}
	case sps.PicOrderCntType == 1 && !sps.DeltaPicOrderAlwaysZeroFlag:
		h.DeltaPicOrderCnt[0] = g.src.Int(r.DeltaPicOrderCnt)
		if bottomDelta {
			h.DeltaPicOrderCnt[1] = g.src.Int(r.DeltaPicOrderCnt)
		}
	}

	if pps.RedundantPicCntPresentFlag {
		h.RedundantPicCnt = g.src.Uint(r.RedundantPicCnt)
	}
	if h.IsB() {
		h.DirectSpatialMvPredFlag = flag()
	}
	if h.IsPredicted() || h.IsB() {
		h.NumRefIdxActiveOverride = flag()
		if h.NumRefIdxActiveOverride {
			h.NumRefIdxL0ActiveMinus1 = g.src.Uint(r.NumRefIdxActiveMinus1)
			if h.IsB() {
				h.NumRefIdxL1ActiveMinus1 = g.src.Uint(r.NumRefIdxActiveMinus1)
			}
		}
	}

	if !h.IsIntra() {
		mvc := n.NalUnitType == syntax.NALUSliceExtension
		h.RefPicListModificationL0 = g.refPicListModification(mvc)
		if h.IsB() {
			h.RefPicListModificationL1 = g.refPicListModification(mvc)
		}
	}

	if h.HasPredWeightTable(pps) {
		h.PredWeightTable = g.predWeightTable(&h, sps, pps)
	}
	if n.NalRefIdc != 0 {
		h.DecRefPicMarking = g.decRefPicMarking(idr)
	}
	if pps.EntropyCodingModeFlag && !h.IsIntra() {
		h.CabacInitIDC = g.src.Uint(r.CabacInitIDC)
	}
	h.SliceQPDelta = g.src.Int(r.SliceQPDelta)

	switch h.Kind() {
	case syntax.SliceSP:
		h.SPForSwitchFlag = flag()
		h.SliceQSDelta = g.src.Int(r.SliceQPDelta)
	case syntax.SliceSI:
		h.SliceQSDelta = g.src.Int(r.SliceQPDelta)
	}

	if pps.DeblockingFilterControlPresentFlag {
		h.DisableDeblockingFilterIDC = g.src.Uint(r.DisableDeblocking)
		if h.DisableDeblockingFilterIDC != 1 {
			h.SliceAlphaC0OffsetDiv2 = g.src.Int(r.FilterOffsetDiv2)
			h.SliceBetaOffsetDiv2 = g.src.Int(r.FilterOffsetDiv2)
		}
	}
	if pps.HasSliceGroupChangeCycle() {
		h.SliceGroupChangeCycle = g.fixed(syntax.SliceGroupChangeCycleWidth(sps, pps))
	}

	return syntax.Slice{
		Header: h,
		Data:   g.sliceData(),
	}
}

// sliceData draws opaque slice data bits.
func (g *Generator) sliceData() []uint8 {
	return g.bits(int(g.src.Uint(g.cfg.Slice.DataBytes)) * 8)
}

func (g *Generator) refPicListModification(mvc bool) syntax.RefPicListModification {
	r := &g.cfg.Slice
	m := syntax.RefPicListModification{Flag: g.flag(r.Flag)}
	if !m.Flag {
		return m
	}

	count := g.src.Uint(r.ModificationCount)
	for i := uint32(0); i < count; i++ {
		var op syntax.ModificationOperation
		if mvc {
			op.IDC = mvcModificationIDCs[g.src.NextUint(0, uint32(len(mvcModificationIDCs)-1))]
		} else {
			op.IDC = g.src.Uint(r.ModificationIDC)
		}
		if op.IDC == 3 {
			break
		}
		op.Value = g.src.Uint(r.ModificationValue)
		m.Operations = append(m.Operations, op)
	}
	return m
}

func (g *Generator) predWeightTable(h *syntax.SliceHeader, sps *syntax.SPS, pps *syntax.PPS) syntax.PredWeightTable {
	r := &g.cfg.Slice
	chroma := sps.ChromaArrayType() != 0

	t := syntax.PredWeightTable{LumaLog2WeightDenom: g.src.Uint(r.LumaLog2WeightDenom)}
	if chroma {
		t.ChromaLog2WeightDenom = g.src.Uint(r.LumaLog2WeightDenom)
	}

	l0, l1 := h.ActiveRefIdx(pps)
	t.L0 = g.predWeights(l0, chroma)
	if h.IsB() {
		t.L1 = g.predWeights(l1, chroma)
	}
	return t
}

func (g *Generator) predWeights(activeMinus1 uint32, chroma bool) []syntax.PredWeight {
	r := &g.cfg.Slice
	weights := make([]syntax.PredWeight, activeMinus1+1)
	for i := range weights {
		pw := &weights[i]
		pw.LumaWeightFlag = g.flag(r.Flag)
		if pw.LumaWeightFlag {
			pw.LumaWeight = g.src.Int(r.Weight)
			pw.LumaOffset = g.src.Int(r.Weight)
		}
		if !chroma {
			continue
		}
		pw.ChromaWeightFlag = g.flag(r.Flag)
		if pw.ChromaWeightFlag {
			for j := 0; j < 2; j++ {
				pw.ChromaWeight[j] = g.src.Int(r.Weight)
				pw.ChromaOffset[j] = g.src.Int(r.Weight)
			}
		}
	}
	return weights
}

func (g *Generator) decRefPicMarking(idr bool) syntax.DecRefPicMarking {
	r := &g.cfg.Slice
	var m syntax.DecRefPicMarking
	if idr {
		m.NoOutputOfPriorPicsFlag = g.flag(r.Flag)
		m.LongTermReferenceFlag = g.flag(r.Flag)
		return m
	}

	m.AdaptiveRefPicMarkingModeFlag = g.flag(r.Flag)
	if !m.AdaptiveRefPicMarkingModeFlag {
		return m
	}
	count := g.src.Uint(r.MMCOCount)
	for i := uint32(0); i < count; i++ {
		op := syntax.MMCO{Operation: g.src.Uint(r.MMCO)}
		switch op.Operation {
		case 0:
			return m
		case 1:
			op.DifferenceOfPicNumsMinus1 = g.src.Uint(r.ModificationValue)
		case 2:
			op.LongTermPicNum = g.src.Uint(r.ModificationValue)
		case 3:
			op.DifferenceOfPicNumsMinus1 = g.src.Uint(r.ModificationValue)
			op.LongTermFrameIdx = g.src.Uint(r.ModificationValue)
		case 4:
			op.MaxLongTermFrameIdxPlus1 = g.src.Uint(r.ModificationValue)
		case 6:
			op.LongTermFrameIdx = g.src.Uint(r.ModificationValue)
		}
		m.Operations = append(m.Operations, op)
	}
	return m
}
