package encoder

import (
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/syntax"
)

// ResolvePPS returns the most recently emitted PPS with the given id.
// emitted must hold only parameter sets that precede the referencing NALU.
func ResolvePPS(id uint32, emitted []syntax.PPS) (*syntax.PPS, error) {
	for i := len(emitted) - 1; i >= 0; i-- {
		if emitted[i].PicParameterSetID == id {
			return &emitted[i], nil
		}
	}
	return nil, apperrors.NewUnresolvedReference("PPS", id)
}

// ResolveSPS returns the most recently emitted SPS with the given id,
// searching subset SPSs instead of plain ones when subset is set.
func ResolveSPS(id uint32, subset bool, spses []syntax.SPS, subsets []syntax.SubsetSPS) (*syntax.SPS, error) {
	if subset {
		for i := len(subsets) - 1; i >= 0; i-- {
			if subsets[i].SPS.SeqParameterSetID == id {
				return &subsets[i].SPS, nil
			}
		}
		return nil, apperrors.NewUnresolvedReference("subset SPS", id)
	}

	for i := len(spses) - 1; i >= 0; i-- {
		if spses[i].SeqParameterSetID == id {
			return &spses[i], nil
		}
	}
	return nil, apperrors.NewUnresolvedReference("SPS", id)
}

// ResolveAnySPS looks for a plain SPS first and then a subset SPS. It
// reports which kind matched, which is how a PPS learns IsSubsetPPS.
func ResolveAnySPS(id uint32, spses []syntax.SPS, subsets []syntax.SubsetSPS) (*syntax.SPS, bool, error) {
	if sps, err := ResolveSPS(id, false, spses, nil); err == nil {
		return sps, false, nil
	}
	if sps, err := ResolveSPS(id, true, nil, subsets); err == nil {
		return sps, true, nil
	}
	return nil, false, apperrors.NewUnresolvedReference("SPS", id)
}

// ResolveSlice resolves the PPS and SPS a slice NALU of the given type
// refers to. Slice extension NALUs always refer to a subset SPS.
func ResolveSlice(naluType uint8, ppsID uint32, ppses []syntax.PPS, spses []syntax.SPS, subsets []syntax.SubsetSPS) (*syntax.PPS, *syntax.SPS, error) {
	pps, err := ResolvePPS(ppsID, ppses)
	if err != nil {
		return nil, nil, err
	}

	subset := pps.IsSubsetPPS || naluType == syntax.NALUSliceExtension
	sps, err := ResolveSPS(pps.SeqParameterSetID, subset, spses, subsets)
	if err != nil {
		return nil, nil, err
	}
	return pps, sps, nil
}
