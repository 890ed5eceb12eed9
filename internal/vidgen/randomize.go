package vidgen

import (
	"fmt"

	"github.com/zsiec/nalforge/internal/encoder"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/syntax"
)

// RandomizeOptions selects the slices Randomize redraws and how much of
// each.
type RandomizeOptions struct {
	// SliceIndex is the position in Stream.Slices to redraw. Ignored when
	// AllSlices is set.
	SliceIndex int
	AllSlices  bool
	// Header also redraws the slice header and, for type 1 and 5 units,
	// nal_ref_idc and the IDR choice. Without it only slice data changes.
	Header bool
}

// Randomize redraws slices of an existing stream in place and returns how
// many it changed. Headers are drawn against the parameter sets the
// encoder resolves for each slice, so the result still encodes.
func (g *Generator) Randomize(stream *syntax.Stream, opts RandomizeOptions) (int, error) {
	var sps, subsets, pps, slices, changed int

	for i := range stream.NALUs {
		n := &stream.NALUs[i]

		switch n.NalUnitType {
		case syntax.NALUSPS:
			sps++
			continue
		case syntax.NALUSubsetSPS:
			subsets++
			continue
		case syntax.NALUPPS:
			pps++
			continue
		case syntax.NALUSliceNonIDR, syntax.NALUSliceIDR, syntax.NALUSliceExtension:
			if n.NalUnitType == syntax.NALUSliceExtension && n.SVCExtensionFlag {
				continue
			}
		default:
			continue
		}

		index := slices
		slices++
		if !opts.AllSlices && index != opts.SliceIndex {
			continue
		}
		if index >= len(stream.Slices) {
			return changed, apperrors.AtNALU(apperrors.NewMissingModel("slice", index), i)
		}

		emitted := emittedSets{
			sps:     stream.SPS[:min(sps, len(stream.SPS))],
			subsets: stream.SubsetSPS[:min(subsets, len(stream.SubsetSPS))],
			pps:     stream.PPS[:min(pps, len(stream.PPS))],
		}
		if err := g.randomizeSlice(n, &stream.Slices[index], emitted, opts.Header); err != nil {
			return changed, apperrors.AtNALU(err, i)
		}
		changed++

		g.log.WithFields(map[string]interface{}{
			"nalu_index":  i,
			"slice_index": index,
			"type":        n.NalUnitType,
			"header":      opts.Header,
		}).Debug("Slice randomized")
	}

	if !opts.AllSlices && opts.SliceIndex >= slices {
		return changed, apperrors.NewValidationError(
			fmt.Sprintf("slice index %d out of range, stream has %d slices", opts.SliceIndex, slices))
	}
	return changed, nil
}

// emittedSets are the parameter sets sent before a slice.
type emittedSets struct {
	sps     []syntax.SPS
	subsets []syntax.SubsetSPS
	pps     []syntax.PPS
}

func (g *Generator) randomizeSlice(n *syntax.NALU, s *syntax.Slice, emitted emittedSets, header bool) error {
	if !header {
		s.Data = g.sliceData()
		return nil
	}

	if n.NalUnitType != syntax.NALUSliceExtension {
		n.NalRefIdc = uint8(g.src.Uint(g.cfg.Header.NalRefIdc))
		n.NalUnitType = syntax.NALUSliceNonIDR
		if g.flag(g.cfg.Header.Flag) {
			n.NalUnitType = syntax.NALUSliceIDR
		}
	}

	pps, sps, err := encoder.ResolveSlice(n.NalUnitType, s.Header.PicParameterSetID, emitted.pps, emitted.sps, emitted.subsets)
	if err != nil {
		return err
	}
	*s = g.slice(n, pps, sps)
	return nil
}
