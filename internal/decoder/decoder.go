// Package decoder parses an Annex-B byte stream back into a syntax.Stream.
// It resolves references the same way the encoder does, so an unmodified
// stream re-encodes to the same bytes.
package decoder

import (
	"github.com/zsiec/nalforge/internal/bitstream"
	"github.com/zsiec/nalforge/internal/encoder"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/syntax"
)

// Decoder turns Annex-B bytes into models.
type Decoder struct {
	log logger.Logger
}

// New creates a Decoder. A nil logger discards output.
func New(log logger.Logger) *Decoder {
	return &Decoder{log: logger.OrNull(log).WithField("component", "decoder")}
}

// Decode splits annexB on start codes and parses every NALU. Parsing stops
// at the first malformed unit and the error names its index.
func (d *Decoder) Decode(annexB []byte) (*syntax.Stream, error) {
	units := bitstream.SplitAnnexB(annexB)
	stream := &syntax.Stream{NALUs: make([]syntax.NALU, 0, len(units))}

	for i, unit := range units {
		n, err := d.decodeNALU(stream, unit)
		if err != nil {
			return nil, apperrors.AtNALU(err, i)
		}
		stream.NALUs = append(stream.NALUs, n)
	}

	d.log.WithFields(map[string]interface{}{
		"nalus":  len(stream.NALUs),
		"bytes":  len(annexB),
		"sps":    len(stream.SPS),
		"pps":    len(stream.PPS),
		"slices": len(stream.Slices),
	}).Debug("Stream decoded")

	return stream, nil
}

func (d *Decoder) decodeNALU(stream *syntax.Stream, unit bitstream.Unit) (syntax.NALU, error) {
	n, err := parseHeader(unit.Data)
	if err != nil {
		return n, err
	}
	n.LongStartCode = unit.LongStartCode

	hl := n.HeaderLength()
	rbsp := bitstream.RemoveEmulationPrevention(unit.Data[hl:])
	n.Content = make([]byte, 0, hl+len(rbsp))
	n.Content = append(n.Content, unit.Data[:hl]...)
	n.Content = append(n.Content, rbsp...)

	r := newReader(rbsp)
	switch n.NalUnitType {
	case syntax.NALUSPS:
		var sps syntax.SPS
		parseSPSData(r, &sps)
		if err := r.finish(); err != nil {
			return n, err
		}
		stream.SPS = append(stream.SPS, sps)

	case syntax.NALUSubsetSPS:
		var sub syntax.SubsetSPS
		parseSubsetSPS(r, &sub)
		if err := r.finish(); err != nil {
			return n, err
		}
		stream.SubsetSPS = append(stream.SubsetSPS, sub)

	case syntax.NALUSPSExtension:
		var ext syntax.SPSExtension
		parseSPSExtension(r, &ext)
		if err := r.finish(); err != nil {
			return n, err
		}
		stream.SPSExtensions = append(stream.SPSExtensions, ext)

	case syntax.NALUPPS:
		var pps syntax.PPS
		pps.PicParameterSetID = r.ue("pic_parameter_set_id")
		pps.SeqParameterSetID = r.ue("seq_parameter_set_id")
		if r.err != nil {
			return n, r.err
		}
		sps, subset, err := encoder.ResolveAnySPS(pps.SeqParameterSetID, stream.SPS, stream.SubsetSPS)
		if err != nil {
			return n, err
		}
		pps.IsSubsetPPS = subset
		parsePPSBody(r, &pps, sps)
		if err := r.finish(); err != nil {
			return n, err
		}
		stream.PPS = append(stream.PPS, pps)

	case syntax.NALUSliceNonIDR, syntax.NALUSliceIDR, syntax.NALUSliceExtension:
		if n.NalUnitType == syntax.NALUSliceExtension && n.SVCExtensionFlag {
			break
		}
		var slice syntax.Slice
		h := &slice.Header
		h.FirstMbInSlice = r.ue("first_mb_in_slice")
		h.SliceType = r.ue("slice_type")
		h.PicParameterSetID = r.ue("pic_parameter_set_id")
		if r.err != nil {
			return n, r.err
		}
		pps, sps, err := encoder.ResolveSlice(n.NalUnitType, h.PicParameterSetID, stream.PPS, stream.SPS, stream.SubsetSPS)
		if err != nil {
			return n, err
		}
		parseSliceHeaderBody(r, h, &n, sps, pps)
		slice.Data = r.rest()
		if err := r.finish(); err != nil {
			return n, err
		}
		stream.Slices = append(stream.Slices, slice)

	case syntax.NALUSEI:
		var sei syntax.SEI
		parseSEI(r, &sei)
		if err := r.finish(); err != nil {
			return n, err
		}
		stream.SEI = append(stream.SEI, sei)

	case syntax.NALUAUD:
		var aud syntax.AUD
		parseAUD(r, &aud)
		if err := r.finish(); err != nil {
			return n, err
		}
		stream.AUD = append(stream.AUD, aud)

	case syntax.NALUPrefix:
		if !n.SVCExtensionFlag {
			break
		}
		var prefix syntax.PrefixSVC
		parsePrefixSVC(r, &prefix, &n)
		if err := r.finish(); err != nil {
			return n, err
		}
		stream.Prefix = append(stream.Prefix, prefix)
	}

	d.log.WithFields(map[string]interface{}{
		"type":      n.NalUnitType,
		"type_name": syntax.TypeName(n.NalUnitType),
		"bytes":     len(unit.Data),
	}).Debug("NALU decoded")

	return n, nil
}
