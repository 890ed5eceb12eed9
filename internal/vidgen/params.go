package vidgen

import (
	"github.com/zsiec/nalforge/internal/encoder"
	"github.com/zsiec/nalforge/internal/syntax"
)

func (g *Generator) spsData(s *syntax.SPS) {
	r := &g.cfg.SPS
	flag := func() bool { return g.flag(r.Flag) }

	s.ProfileIDC = uint8(g.src.Enum(r.ProfileIDC))
	s.ConstraintSet0 = flag()
	s.ConstraintSet1 = flag()
	s.ConstraintSet2 = flag()
	s.ConstraintSet3 = flag()
	s.ConstraintSet4 = flag()
	s.ConstraintSet5 = flag()
	s.LevelIDC = uint8(g.src.Enum(r.LevelIDC))
	s.SeqParameterSetID = g.src.Uint(r.SeqParameterSetID)

	if syntax.HasChromaInfo(s.ProfileIDC) {
		s.ChromaFormatIDC = g.src.Uint(r.ChromaFormatIDC)
		if s.ChromaFormatIDC == 3 {
			s.SeparateColourPlaneFlag = flag()
		}
		s.BitDepthLumaMinus8 = g.src.Uint(r.BitDepthMinus8)
		s.BitDepthChromaMinus8 = g.src.Uint(r.BitDepthMinus8)
		s.QpprimeYZeroTransformBypassFlag = flag()
		s.SeqScalingMatrixPresentFlag = g.src.Bool(r.ScalingMatrixPresent)
		if s.SeqScalingMatrixPresentFlag {
			s.ScalingLists = g.scalingLists(s.ScalingListCount())
		}
	}

	s.Log2MaxFrameNumMinus4 = g.src.Uint(r.Log2MaxFrameNumMinus4)
	s.PicOrderCntType = g.src.Uint(r.PicOrderCntType)
	switch s.PicOrderCntType {
	case 0:
		s.Log2MaxPicOrderCntLsbMinus4 = g.src.Uint(r.Log2MaxPocLsbMinus4)
	case 1:
		s.DeltaPicOrderAlwaysZeroFlag = flag()
		s.OffsetForNonRefPic = g.src.Int(r.OffsetForPicOrder)
		s.OffsetForTopToBottomField = g.src.Int(r.OffsetForPicOrder)
		s.NumRefFramesInPicOrderCntCycle = g.src.Uint(r.NumRefFramesInPocCycle)
		for i := uint32(0); i < s.NumRefFramesInPicOrderCntCycle; i++ {
			s.OffsetForRefFrame = append(s.OffsetForRefFrame, g.src.Int(r.OffsetForPicOrder))
		}
	}

	s.MaxNumRefFrames = g.src.Uint(r.MaxNumRefFrames)
	s.GapsInFrameNumValueAllowedFlag = flag()
	s.PicWidthInMbsMinus1 = g.src.Uint(r.PicWidthInMbsMinus1)
	s.PicHeightInMapUnitsMinus1 = g.src.Uint(r.PicHeightInMapUnitsMinus1)
	s.FrameMbsOnlyFlag = flag()
	if !s.FrameMbsOnlyFlag {
		s.MbAdaptiveFrameFieldFlag = flag()
	}
	s.Direct8x8InferenceFlag = flag()

	s.FrameCroppingFlag = g.src.Bool(r.FrameCropping)
	if s.FrameCroppingFlag {
		s.FrameCropLeftOffset = g.src.Uint(r.CropOffset)
		s.FrameCropRightOffset = g.src.Uint(r.CropOffset)
		s.FrameCropTopOffset = g.src.Uint(r.CropOffset)
		s.FrameCropBottomOffset = g.src.Uint(r.CropOffset)
	}

	s.VUIParametersPresentFlag = g.src.Bool(r.VUIPresent)
	if s.VUIParametersPresentFlag {
		g.vui(&s.VUI)
	}
}

// scalingLists draws count lists. A present list gets between one and a
// full list of deltas; the encoder codes the rest as zero.
func (g *Generator) scalingLists(count int) []syntax.ScalingList {
	lists := make([]syntax.ScalingList, count)
	for i := range lists {
		lists[i].Present = g.flag(g.cfg.SPS.Flag)
		if !lists[i].Present {
			continue
		}
		n := g.src.NextUint(1, uint32(syntax.ScalingListSize(i)))
		for j := uint32(0); j < n; j++ {
			lists[i].DeltaScale = append(lists[i].DeltaScale, g.src.Int(g.cfg.SPS.DeltaScale))
		}
	}
	return lists
}

func (g *Generator) vui(v *syntax.VUI) {
	r := &g.cfg.VUI
	flag := func() bool { return g.flag(r.Flag) }

	v.AspectRatioInfoPresentFlag = flag()
	if v.AspectRatioInfoPresentFlag {
		v.AspectRatioIDC = uint8(g.src.Uint(r.AspectRatioIDC))
		if v.AspectRatioIDC == syntax.ExtendedSAR {
			v.SarWidth = uint16(g.src.Uint(r.SarDimension))
			v.SarHeight = uint16(g.src.Uint(r.SarDimension))
		}
	}

	v.OverscanInfoPresentFlag = flag()
	if v.OverscanInfoPresentFlag {
		v.OverscanAppropriateFlag = flag()
	}

	v.VideoSignalTypePresentFlag = flag()
	if v.VideoSignalTypePresentFlag {
		v.VideoFormat = uint8(g.src.Uint(r.VideoFormat))
		v.VideoFullRangeFlag = flag()
		v.ColourDescriptionPresentFlag = flag()
		if v.ColourDescriptionPresentFlag {
			v.ColourPrimaries = uint8(g.src.Uint(r.ColourValue))
			v.TransferCharacteristics = uint8(g.src.Uint(r.ColourValue))
			v.MatrixCoefficients = uint8(g.src.Uint(r.ColourValue))
		}
	}

	v.ChromaLocInfoPresentFlag = flag()
	if v.ChromaLocInfoPresentFlag {
		v.ChromaSampleLocTypeTopField = g.src.Uint(r.ChromaLocType)
		v.ChromaSampleLocTypeBottomField = g.src.Uint(r.ChromaLocType)
	}

	v.TimingInfoPresentFlag = flag()
	if v.TimingInfoPresentFlag {
		v.NumUnitsInTick = g.src.Uint(r.NumUnitsInTick)
		v.TimeScale = g.src.Uint(r.TimeScale)
		v.FixedFrameRateFlag = flag()
	}

	v.NalHRDParametersPresentFlag = flag()
	if v.NalHRDParametersPresentFlag {
		v.NalHRD = g.hrd()
	}
	v.VclHRDParametersPresentFlag = flag()
	if v.VclHRDParametersPresentFlag {
		v.VclHRD = g.hrd()
	}
	if v.NalHRDParametersPresentFlag || v.VclHRDParametersPresentFlag {
		v.LowDelayHRDFlag = flag()
	}
	v.PicStructPresentFlag = flag()

	v.BitstreamRestrictionFlag = flag()
	if v.BitstreamRestrictionFlag {
		v.MotionVectorsOverPicBoundariesFlag = flag()
		v.MaxBytesPerPicDenom = g.src.Uint(r.RestrictionValue)
		v.MaxBitsPerMbDenom = g.src.Uint(r.RestrictionValue)
		v.Log2MaxMvLengthHorizontal = g.src.Uint(r.RestrictionValue)
		v.Log2MaxMvLengthVertical = g.src.Uint(r.RestrictionValue)
		v.MaxNumReorderFrames = g.src.Uint(r.RestrictionValue)
		v.MaxDecFrameBuffering = g.src.Uint(r.RestrictionValue)
	}
}

func (g *Generator) hrd() syntax.HRD {
	r := &g.cfg.VUI
	h := syntax.HRD{
		CpbCntMinus1: g.src.Uint(r.CpbCntMinus1),
		BitRateScale: uint8(g.src.Uint(r.HRDScale)),
		CpbSizeScale: uint8(g.src.Uint(r.HRDScale)),
	}
	for i := uint32(0); i <= h.CpbCntMinus1; i++ {
		h.BitRateValueMinus1 = append(h.BitRateValueMinus1, g.src.Uint(r.HRDValue))
		h.CpbSizeValueMinus1 = append(h.CpbSizeValueMinus1, g.src.Uint(r.HRDValue))
		h.CbrFlag = append(h.CbrFlag, g.flag(r.Flag))
	}
	h.InitialCpbRemovalDelayLengthMinus1 = uint8(g.src.Uint(r.DelayLength))
	h.CpbRemovalDelayLengthMinus1 = uint8(g.src.Uint(r.DelayLength))
	h.DpbOutputDelayLengthMinus1 = uint8(g.src.Uint(r.DelayLength))
	h.TimeOffsetLength = uint8(g.src.Uint(r.DelayLength))
	return h
}

func (g *Generator) subsetSPS() syntax.SubsetSPS {
	var sub syntax.SubsetSPS
	g.spsData(&sub.SPS)
	sub.ExtensionBits = g.bits(int(g.src.Uint(g.cfg.SPS.ExtensionBits)))
	return sub
}

func (g *Generator) spsExtension() syntax.SPSExtension {
	r := &g.cfg.SPS
	e := syntax.SPSExtension{
		SeqParameterSetID: g.src.Uint(r.SeqParameterSetID),
		AuxFormatIDC:      g.src.Uint(r.AuxFormatIDC),
	}
	if e.AuxFormatIDC != 0 {
		e.BitDepthAuxMinus8 = g.src.Uint(r.BitDepthAuxMinus8)
		e.AlphaIncrFlag = g.flag(r.Flag)
		width := e.AlphaValueWidth()
		e.AlphaOpaqueValue = g.fixed(width)
		e.AlphaTransparentValue = g.fixed(width)
	}
	e.AdditionalExtensionFlag = g.flag(r.Flag)
	return e
}

// pps draws a PPS for the most recent SPS, or for the subset SPS right
// before it. The subset marking is derived the way a decoder derives it,
// from which kind of SPS the ID resolves to.
func (g *Generator) pps() (syntax.PPS, error) {
	s := g.stream
	r := &g.cfg.PPS
	flag := func() bool { return g.flag(r.Flag) }

	var p syntax.PPS
	p.PicParameterSetID = g.src.Uint(r.PicParameterSetID)

	prev := s.NALUs[len(s.NALUs)-1].NalUnitType
	if prev == syntax.NALUSubsetSPS && len(s.SubsetSPS) > 0 {
		p.SeqParameterSetID = s.SubsetSPS[len(s.SubsetSPS)-1].SPS.SeqParameterSetID
	} else {
		p.SeqParameterSetID = s.SPS[len(s.SPS)-1].SeqParameterSetID
	}
	sps, subset, err := encoder.ResolveAnySPS(p.SeqParameterSetID, s.SPS, s.SubsetSPS)
	if err != nil {
		return p, err
	}
	p.IsSubsetPPS = subset

	p.EntropyCodingModeFlag = flag()
	p.BottomFieldPicOrderInFramePresentFlag = flag()
	p.NumSliceGroupsMinus1 = g.src.Uint(r.NumSliceGroupsMinus1)
	if p.NumSliceGroupsMinus1 > 0 {
		p.SliceGroupMapType = g.src.Uint(r.SliceGroupMapType)
		switch p.SliceGroupMapType {
		case syntax.SliceGroupInterleaved:
			for i := uint32(0); i <= p.NumSliceGroupsMinus1; i++ {
				p.RunLengthMinus1 = append(p.RunLengthMinus1, g.src.Uint(r.SliceGroupValue))
			}
		case syntax.SliceGroupForeground:
			for i := uint32(0); i < p.NumSliceGroupsMinus1; i++ {
				p.TopLeft = append(p.TopLeft, g.src.Uint(r.SliceGroupValue))
				p.BottomRight = append(p.BottomRight, g.src.Uint(r.SliceGroupValue))
			}
		case syntax.SliceGroupBoxOut, syntax.SliceGroupRasterScan, syntax.SliceGroupWipe:
			p.SliceGroupChangeDirectionFlag = flag()
			p.SliceGroupChangeRateMinus1 = g.src.Uint(r.SliceGroupValue)
		case syntax.SliceGroupExplicit:
			p.PicSizeInMapUnitsMinus1 = g.src.Uint(r.SliceGroupValue)
			for i := uint32(0); i <= p.PicSizeInMapUnitsMinus1; i++ {
				p.SliceGroupID = append(p.SliceGroupID, g.src.NextUint(0, p.NumSliceGroupsMinus1))
			}
		}
	}

	p.NumRefIdxL0DefaultActiveMinus1 = g.src.Uint(r.NumRefIdxDefaultActiveMinus1)
	p.NumRefIdxL1DefaultActiveMinus1 = g.src.Uint(r.NumRefIdxDefaultActiveMinus1)
	p.WeightedPredFlag = flag()
	p.WeightedBipredIDC = uint8(g.src.Uint(r.WeightedBipredIDC))
	p.PicInitQPMinus26 = g.src.Int(r.PicInitQPMinus26)
	p.PicInitQSMinus26 = g.src.Int(r.PicInitQPMinus26)
	p.ChromaQPIndexOffset = g.src.Int(r.ChromaQPIndexOffset)
	p.DeblockingFilterControlPresentFlag = flag()
	p.ConstrainedIntraPredFlag = flag()
	p.RedundantPicCntPresentFlag = flag()

	p.MoreData = g.src.Bool(r.MoreData)
	if p.MoreData {
		p.Transform8x8ModeFlag = flag()
		p.PicScalingMatrixPresentFlag = flag()
		if p.PicScalingMatrixPresentFlag {
			p.ScalingLists = g.scalingLists(p.ScalingListCount(sps.EffectiveChromaFormatIDC()))
		}
		p.SecondChromaQPIndexOffset = g.src.Int(r.ChromaQPIndexOffset)
	}
	return p, nil
}
