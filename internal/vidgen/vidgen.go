// Package vidgen builds random syntax.Stream models. Every decision is
// drawn from a film.Source, so a stream is reproduced exactly from its seed
// or from the film recorded while generating it.
package vidgen

import (
	"github.com/zsiec/nalforge/internal/bitstream"
	"github.com/zsiec/nalforge/internal/config"
	"github.com/zsiec/nalforge/internal/encoder"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/film"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/syntax"
)

// Generator draws one stream. It is not safe for concurrent use.
type Generator struct {
	cfg    config.GeneratorConfig
	src    *film.Source
	log    logger.Logger
	stream *syntax.Stream
}

// New creates a Generator over src.
func New(cfg config.GeneratorConfig, src *film.Source, log logger.Logger) *Generator {
	return &Generator{
		cfg: cfg,
		src: src,
		log: logger.OrNull(log).WithFields(map[string]interface{}{
			"component": "vidgen",
			"seed":      src.Seed(),
		}),
	}
}

// RandomVideo generates a stream with a fresh Generator.
func RandomVideo(cfg config.GeneratorConfig, src *film.Source, log logger.Logger) (*syntax.Stream, error) {
	return New(cfg, src, log).Generate()
}

// Generate draws the NALU count and then every NALU in order. The first
// NALU is always an SPS, every SPS and subset SPS is followed by a PPS and
// the first plain slice is an IDR slice, so every reference resolves.
func (g *Generator) Generate() (*syntax.Stream, error) {
	g.stream = &syntax.Stream{}
	count := int(g.src.Uint(g.cfg.NumNALUs))

	for i := 0; i < count; i++ {
		n := g.header()

		switch {
		case i == 0:
			n.NalUnitType = syntax.NALUSPS
		case isSPS(g.stream.NALUs[i-1].NalUnitType):
			n.NalUnitType = syntax.NALUPPS
		}
		if n.NalUnitType == syntax.NALUSliceNonIDR && len(g.stream.Slices) == 0 {
			n.NalUnitType = syntax.NALUSliceIDR
		}

		if err := g.body(&n); err != nil {
			return nil, apperrors.AtNALU(err, i)
		}
		avoidStartCodeInHeader(&n)
		g.stream.NALUs = append(g.stream.NALUs, n)

		g.log.WithFields(map[string]interface{}{
			"nalu_index": i,
			"type":       n.NalUnitType,
			"type_name":  syntax.TypeName(n.NalUnitType),
		}).Debug("NALU generated")
	}

	g.log.WithFields(map[string]interface{}{
		"nalus":      len(g.stream.NALUs),
		"sps":        len(g.stream.SPS),
		"pps":        len(g.stream.PPS),
		"slices":     len(g.stream.Slices),
		"film_bytes": len(g.src.Film()),
		"mode":       g.src.Mode().String(),
	}).Debug("Stream generated")

	return g.stream, nil
}

func isSPS(t uint8) bool {
	return t == syntax.NALUSPS || t == syntax.NALUSubsetSPS
}

// body draws the model of n and appends it to the stream.
func (g *Generator) body(n *syntax.NALU) error {
	s := g.stream

	if n.NalUnitType == syntax.NALUSliceExtension {
		pps, sps, ok := g.extensionTarget()
		if !ok {
			// No subset SPS to refer to yet, so make one
			n.NalUnitType = syntax.NALUSubsetSPS
		} else {
			s.Slices = append(s.Slices, g.slice(n, pps, sps))
			return nil
		}
	}

	switch n.NalUnitType {
	case syntax.NALUSPS:
		var sps syntax.SPS
		g.spsData(&sps)
		s.SPS = append(s.SPS, sps)

	case syntax.NALUSubsetSPS:
		s.SubsetSPS = append(s.SubsetSPS, g.subsetSPS())

	case syntax.NALUSPSExtension:
		s.SPSExtensions = append(s.SPSExtensions, g.spsExtension())

	case syntax.NALUPPS:
		pps, err := g.pps()
		if err != nil {
			return err
		}
		s.PPS = append(s.PPS, pps)

	case syntax.NALUSliceNonIDR, syntax.NALUSliceIDR:
		last := &s.PPS[len(s.PPS)-1]
		pps, sps, err := encoder.ResolveSlice(n.NalUnitType, last.PicParameterSetID, s.PPS, s.SPS, s.SubsetSPS)
		if err != nil {
			return err
		}
		s.Slices = append(s.Slices, g.slice(n, pps, sps))

	case syntax.NALUSEI:
		sei := g.sei()
		if len(sei.Messages) == 0 {
			// an empty sei_rbsp is passed through, stop bit only
			n.Content = []byte{0, 0x80}
		}
		s.SEI = append(s.SEI, sei)

	case syntax.NALUAUD:
		s.AUD = append(s.AUD, syntax.AUD{PrimaryPicType: uint8(g.src.Uint(g.cfg.AUD.PrimaryPicType))})

	case syntax.NALUPrefix:
		if n.SVCExtensionFlag {
			s.Prefix = append(s.Prefix, g.prefixSVC(n))
		}

	case syntax.NALUEndOfSequence, syntax.NALUEndOfStream:
		n.Content = make([]byte, n.HeaderLength())

	default:
		n.Content = append(make([]byte, n.HeaderLength()), g.opaque()...)
	}
	return nil
}

// extensionTarget picks the parameter sets a slice extension refers to:
// the most recent PPS built on a subset SPS, resolved the way the encoder
// will resolve it.
func (g *Generator) extensionTarget() (*syntax.PPS, *syntax.SPS, bool) {
	s := g.stream
	if len(s.SubsetSPS) == 0 || len(s.PPS) == 0 {
		return nil, nil, false
	}

	target := &s.PPS[len(s.PPS)-1]
	for i := len(s.PPS) - 1; i >= 0; i-- {
		if s.PPS[i].IsSubsetPPS {
			target = &s.PPS[i]
			break
		}
	}

	pps, sps, err := encoder.ResolveSlice(syntax.NALUSliceExtension, target.PicParameterSetID, s.PPS, s.SPS, s.SubsetSPS)
	if err != nil {
		return nil, nil, false
	}
	return pps, sps, true
}

// header draws nal_unit_header and its extension.
func (g *Generator) header() syntax.NALU {
	h := &g.cfg.Header
	n := syntax.NALU{
		LongStartCode:    g.src.Bool(g.cfg.LongStartCode),
		ForbiddenZeroBit: uint8(g.src.Uint(h.ForbiddenZeroBit)),
		NalRefIdc:        uint8(g.src.Uint(h.NalRefIdc)),
	}
	if g.src.Bool(h.Extended) {
		n.NalUnitType = uint8(g.src.Enum(h.ExtendedTypes))
	} else {
		n.NalUnitType = uint8(g.src.Enum(h.NalUnitTypes))
	}

	switch n.NalUnitType {
	case syntax.NALUPrefix:
		n.SVCExtensionFlag = g.src.Bool(h.SVCExtension)
	case syntax.NALUSliceExtensionView:
		n.AVC3DExtensionFlag = g.src.Bool(h.AVC3DExtension)
	}
	if !syntax.HasHeaderExtension(n.NalUnitType) {
		return n
	}

	switch {
	case n.SVCExtensionFlag:
		n.SVC = syntax.SVCHeaderExtension{
			IDRFlag:              g.flag(h.Flag),
			PriorityID:           uint8(g.src.Uint(h.PriorityID)),
			NoInterLayerPredFlag: g.flag(h.Flag),
			DependencyID:         uint8(g.src.Uint(h.DependencyID)),
			QualityID:            uint8(g.src.Uint(h.QualityID)),
			TemporalID:           uint8(g.src.Uint(h.TemporalID)),
			UseRefBasePicFlag:    g.flag(h.Flag),
			DiscardableFlag:      g.flag(h.Flag),
			OutputFlag:           g.flag(h.Flag),
			ReservedThree2Bits:   3,
		}
	case n.AVC3DExtensionFlag:
		n.AVC3D = syntax.AVC3DHeaderExtension{
			ViewIdx:       uint8(g.src.Uint(h.ViewIdx)),
			DepthFlag:     g.flag(h.Flag),
			NonIDRFlag:    g.flag(h.Flag),
			TemporalID:    uint8(g.src.Uint(h.TemporalID)),
			AnchorPicFlag: g.flag(h.Flag),
			InterViewFlag: g.flag(h.Flag),
		}
	default:
		n.MVC = syntax.MVCHeaderExtension{
			NonIDRFlag:     g.flag(h.Flag),
			PriorityID:     uint8(g.src.Uint(h.PriorityID)),
			ViewID:         uint16(g.src.Uint(h.ViewID)),
			TemporalID:     uint8(g.src.Uint(h.TemporalID)),
			AnchorPicFlag:  g.flag(h.Flag),
			InterViewFlag:  g.flag(h.Flag),
			ReservedOneBit: 1,
		}
	}
	return n
}

// avoidStartCodeInHeader adjusts header fields whose bytes would form a
// start code. Header bytes are never escaped, so 00 00 01 inside a header,
// or a zero last header byte ahead of an opaque payload, would split the
// NALU when the stream is read back.
func avoidStartCodeInHeader(n *syntax.NALU) {
	switch {
	case !syntax.HasHeaderExtension(n.NalUnitType):
		if n.ForbiddenZeroBit == 0 && n.NalRefIdc == 0 && n.NalUnitType == syntax.NALUUnspecified {
			n.NalRefIdc = 1
		}
	case n.SVCExtensionFlag:
		// reserved_three_2bits keeps the last byte odd and above 1
	case n.NalUnitType == syntax.NALUSliceExtensionView && n.AVC3DExtensionFlag:
		e := &n.AVC3D
		if e.ViewIdx&1 == 0 && !e.DepthFlag && !e.NonIDRFlag && e.TemporalID&7 == 0 && !e.AnchorPicFlag && !e.InterViewFlag {
			e.InterViewFlag = true
		}
	default:
		e := &n.MVC
		first := e.PriorityID&0x3F == 0 && !e.NonIDRFlag
		second := (e.ViewID>>2)&0xFF == 0
		last := e.ViewID&3 == 0 && e.TemporalID&7 == 0 && !e.AnchorPicFlag && !e.InterViewFlag
		if first && second && last {
			e.InterViewFlag = true
		}
	}
}

func (g *Generator) flag(r config.BoolRange) bool {
	return g.src.Bool(r)
}

// opaque draws an unmodelled payload. It always ends in 0x80 so the unit
// never ends in a zero byte next to the following start code.
func (g *Generator) opaque() []byte {
	n := int(g.src.Uint(g.cfg.Payload.Length))
	return append(g.src.NextBytes(n), 0x80)
}

// bits draws n opaque bits.
func (g *Generator) bits(n int) []uint8 {
	if n <= 0 {
		return nil
	}
	return bitstream.Unpack(g.src.NextBytes((n + 7) / 8))[:n]
}

// fixed draws a value that fits a width-bit field.
func (g *Generator) fixed(width int) uint32 {
	if width <= 0 {
		return 0
	}
	if width > 32 {
		width = 32
	}
	return g.src.NextUint(0, uint32(uint64(1)<<uint(width)-1))
}
