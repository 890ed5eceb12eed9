package decoder

import (
	"fmt"

	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/syntax"
)

// parseHeader reads nal_unit_header and its extension from the unescaped
// leading bytes of data. The header itself never carries emulation
// prevention bytes.
func parseHeader(data []byte) (syntax.NALU, error) {
	var n syntax.NALU
	if len(data) == 0 {
		return n, apperrors.NewInvalidSyntax("empty NALU")
	}

	r := newReader(data)
	n.ForbiddenZeroBit = uint8(r.u("forbidden_zero_bit", 1))
	n.NalRefIdc = uint8(r.u("nal_ref_idc", 2))
	n.NalUnitType = uint8(r.u("nal_unit_type", 5))

	if !syntax.HasHeaderExtension(n.NalUnitType) {
		return n, r.err
	}

	if n.NalUnitType == syntax.NALUSliceExtensionView {
		n.AVC3DExtensionFlag = r.flag()
	} else {
		n.SVCExtensionFlag = r.flag()
	}
	if len(data) < n.HeaderLength() {
		return n, apperrors.NewInvalidSyntax(fmt.Sprintf("%s header needs %d bytes, have %d",
			syntax.TypeName(n.NalUnitType), n.HeaderLength(), len(data)))
	}

	switch {
	case n.AVC3DExtensionFlag:
		e := &n.AVC3D
		e.ViewIdx = uint8(r.u("view_idx", 8))
		e.DepthFlag = r.flag()
		e.NonIDRFlag = r.flag()
		e.TemporalID = uint8(r.u("temporal_id", 3))
		e.AnchorPicFlag = r.flag()
		e.InterViewFlag = r.flag()
	case n.SVCExtensionFlag:
		e := &n.SVC
		e.IDRFlag = r.flag()
		e.PriorityID = uint8(r.u("priority_id", 6))
		e.NoInterLayerPredFlag = r.flag()
		e.DependencyID = uint8(r.u("dependency_id", 3))
		e.QualityID = uint8(r.u("quality_id", 4))
		e.TemporalID = uint8(r.u("temporal_id", 3))
		e.UseRefBasePicFlag = r.flag()
		e.DiscardableFlag = r.flag()
		e.OutputFlag = r.flag()
		e.ReservedThree2Bits = uint8(r.u("reserved_three_2bits", 2))
	default:
		e := &n.MVC
		e.NonIDRFlag = r.flag()
		e.PriorityID = uint8(r.u("priority_id", 6))
		e.ViewID = uint16(r.u("view_id", 10))
		e.TemporalID = uint8(r.u("temporal_id", 3))
		e.AnchorPicFlag = r.flag()
		e.InterViewFlag = r.flag()
		e.ReservedOneBit = uint8(r.u("reserved_one_bit", 1))
	}
	return n, r.err
}
