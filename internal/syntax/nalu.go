// Package syntax holds the in-memory model of an H.264 elementary stream:
// NALU headers and the per-type syntax structures the encoder serializes
// and the decoder fills in. The model is syntactic only. Nothing here
// checks that values are semantically valid.
package syntax

import "fmt"

// NAL unit types (Table 7-1).
const (
	NALUUnspecified        uint8 = 0
	NALUSliceNonIDR        uint8 = 1
	NALUSliceDataA         uint8 = 2
	NALUSliceDataB         uint8 = 3
	NALUSliceDataC         uint8 = 4
	NALUSliceIDR           uint8 = 5
	NALUSEI                uint8 = 6
	NALUSPS                uint8 = 7
	NALUPPS                uint8 = 8
	NALUAUD                uint8 = 9
	NALUEndOfSequence      uint8 = 10
	NALUEndOfStream        uint8 = 11
	NALUFiller             uint8 = 12
	NALUSPSExtension       uint8 = 13
	NALUPrefix             uint8 = 14
	NALUSubsetSPS          uint8 = 15
	NALUDepthParameterSet  uint8 = 16
	NALUAuxiliarySlice     uint8 = 19
	NALUSliceExtension     uint8 = 20
	NALUSliceExtensionView uint8 = 21

	// MaxNALUType is the largest value the 5-bit type field holds.
	MaxNALUType uint8 = 31
)

var naluTypeNames = map[uint8]string{
	NALUUnspecified:        "unspecified",
	NALUSliceNonIDR:        "slice",
	NALUSliceDataA:         "slice data A",
	NALUSliceDataB:         "slice data B",
	NALUSliceDataC:         "slice data C",
	NALUSliceIDR:           "IDR slice",
	NALUSEI:                "SEI",
	NALUSPS:                "SPS",
	NALUPPS:                "PPS",
	NALUAUD:                "AUD",
	NALUEndOfSequence:      "end of sequence",
	NALUEndOfStream:        "end of stream",
	NALUFiller:             "filler",
	NALUSPSExtension:       "SPS extension",
	NALUPrefix:             "prefix",
	NALUSubsetSPS:          "subset SPS",
	NALUDepthParameterSet:  "depth parameter set",
	NALUAuxiliarySlice:     "auxiliary slice",
	NALUSliceExtension:     "slice extension",
	NALUSliceExtensionView: "3D-AVC slice extension",
}

// TypeName returns a short human readable name for a NAL unit type.
func TypeName(t uint8) string {
	if name, ok := naluTypeNames[t]; ok {
		return name
	}
	switch {
	case t >= 24 && t <= MaxNALUType:
		return "unspecified"
	case t <= MaxNALUType:
		return "reserved"
	default:
		return fmt.Sprintf("invalid(%d)", t)
	}
}

// HasHeaderExtension reports whether type t carries the extension header
// introduced by SVC, MVC and 3D-AVC.
func HasHeaderExtension(t uint8) bool {
	return t == NALUPrefix || t == NALUSliceExtension || t == NALUSliceExtensionView
}

// SVCHeaderExtension is nal_unit_header_svc_extension (G.7.3.1.1).
type SVCHeaderExtension struct {
	IDRFlag              bool
	PriorityID           uint8 // u(6)
	NoInterLayerPredFlag bool
	DependencyID         uint8 // u(3)
	QualityID            uint8 // u(4)
	TemporalID           uint8 // u(3)
	UseRefBasePicFlag    bool
	DiscardableFlag      bool
	OutputFlag           bool
	ReservedThree2Bits   uint8 // u(2)
}

// MVCHeaderExtension is nal_unit_header_mvc_extension (H.7.3.1.1).
type MVCHeaderExtension struct {
	NonIDRFlag     bool
	PriorityID     uint8  // u(6)
	ViewID         uint16 // u(10)
	TemporalID     uint8  // u(3)
	AnchorPicFlag  bool
	InterViewFlag  bool
	ReservedOneBit uint8 // u(1)
}

// AVC3DHeaderExtension is nal_unit_header_3davc_extension (J.7.3.1.1).
type AVC3DHeaderExtension struct {
	ViewIdx       uint8 // u(8)
	DepthFlag     bool
	NonIDRFlag    bool
	TemporalID    uint8 // u(3)
	AnchorPicFlag bool
	InterViewFlag bool
}

// NALU is one NAL unit of a stream. The header fields are always encoded
// from the model. Content keeps the unit as it appeared in a decoded
// stream, header included and emulation prevention removed, and is what
// types without a syntax model pass through.
type NALU struct {
	ForbiddenZeroBit uint8
	NalRefIdc        uint8 // u(2)
	NalUnitType      uint8 // u(5)

	// Extension header, present for types 14, 20 and 21.
	SVCExtensionFlag   bool // types 14 and 20
	AVC3DExtensionFlag bool // type 21
	SVC                SVCHeaderExtension
	MVC                MVCHeaderExtension
	AVC3D              AVC3DHeaderExtension

	LongStartCode bool
	Content       []byte
}

// HeaderLength returns the number of header bytes of n, extension
// included.
func (n *NALU) HeaderLength() int {
	switch n.NalUnitType {
	case NALUPrefix, NALUSliceExtension:
		return 4
	case NALUSliceExtensionView:
		if n.AVC3DExtensionFlag {
			return 3
		}
		return 4
	default:
		return 1
	}
}

// Payload returns the part of Content after the header bytes.
func (n *NALU) Payload() []byte {
	hl := n.HeaderLength()
	if len(n.Content) <= hl {
		return nil
	}
	return n.Content[hl:]
}

// IdrPicFlag derives IdrPicFlag for slices of this unit.
func (n *NALU) IdrPicFlag() bool {
	switch n.NalUnitType {
	case NALUSliceIDR:
		return true
	case NALUSliceExtension:
		if n.SVCExtensionFlag {
			return n.SVC.IDRFlag
		}
		return !n.MVC.NonIDRFlag
	case NALUSliceExtensionView:
		if n.AVC3DExtensionFlag {
			return !n.AVC3D.NonIDRFlag
		}
		return !n.MVC.NonIDRFlag
	default:
		return false
	}
}

// Stream is an ordered NALU list plus the per-type models its units refer
// to. Each per-type slice is consumed in order: the k-th SPS NALU is
// encoded from SPS[k], the k-th PPS NALU from PPS[k] and so on. Slices of
// types 1, 5 and 20 share Slices.
type Stream struct {
	NALUs         []NALU
	SPS           []SPS
	SubsetSPS     []SubsetSPS
	SPSExtensions []SPSExtension
	PPS           []PPS
	Slices        []Slice
	SEI           []SEI
	AUD           []AUD
	Prefix        []PrefixSVC
}
