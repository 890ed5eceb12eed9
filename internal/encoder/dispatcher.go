// Package encoder serializes a syntax.Stream into an Annex-B byte stream.
// NALUs are processed strictly in order, and slices and PPSs may only
// refer to parameter sets emitted before them.
package encoder

import (
	"github.com/zsiec/nalforge/internal/bitstream"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
	"github.com/zsiec/nalforge/internal/syntax"
)

// Options configures an Encoder.
type Options struct {
	// Strict turns fixed-width overflows into errors instead of masked
	// warnings.
	Strict bool
	// CutNALU drops the NALU at this index from the output. Negative
	// keeps everything.
	CutNALU int
	Logger  logger.Logger
}

// DefaultOptions returns lenient options that keep every NALU.
func DefaultOptions() Options {
	return Options{CutNALU: -1}
}

// EncodedNALU is one NALU of the output.
type EncodedNALU struct {
	Index         int
	Type          uint8
	LongStartCode bool
	Passthrough   bool   // content copied from the model instead of encoded
	EscapeBytes   int    // emulation prevention bytes inserted
	Data          []byte // header and escaped payload, no start code
}

// Stats summarizes an encode.
type Stats struct {
	NALUs                    int
	Bytes                    int
	EmulationPreventionBytes int
	Passthrough              int
	Cut                      int
}

// Result is an encoded stream.
type Result struct {
	AnnexB []byte
	NALUs  []EncodedNALU
	Stats  Stats
}

// DispatchState counts the NALUs of each kind already processed. A counter
// is the index of the next model entry of its kind, and every list prefix
// below it is what references may resolve against.
type DispatchState struct {
	Index        int
	SPS          int
	SubsetSPS    int
	SPSExtension int
	PPS          int
	Slice        int
	SEI          int
	AUD          int
	Prefix       int
}

// Encoder turns models into bytes.
type Encoder struct {
	opts Options
	log  *logger.SampledLogger
}

// New creates an Encoder.
func New(opts Options) *Encoder {
	base := logger.OrNull(opts.Logger).WithField("component", "encoder")
	return &Encoder{
		opts: opts,
		log:  logger.NewEncoderLogger(base),
	}
}

// Encode serializes every NALU of stream. Any error aborts the whole
// encode and names the NALU index it occurred at.
func (e *Encoder) Encode(stream *syntax.Stream) (*Result, error) {
	res := &Result{}
	state := &DispatchState{}

	for state.Index = 0; state.Index < len(stream.NALUs); state.Index++ {
		n := &stream.NALUs[state.Index]

		encoded, err := e.encodeNALU(stream, state, n)
		if err != nil {
			err = apperrors.AtNALU(err, state.Index)
			if appErr, ok := apperrors.GetAppError(err); ok {
				metrics.IncrementEncodeError(string(appErr.Type))
			}
			return nil, err
		}

		if state.Index == e.opts.CutNALU {
			res.Stats.Cut++
			e.log.WithFields(map[string]interface{}{
				"nalu_index": state.Index,
				"type":       encoded.Type,
			}).Info("NALU cut from output")
			continue
		}

		res.AnnexB = bitstream.AppendAnnexB(res.AnnexB, encoded.Data, encoded.LongStartCode)
		res.NALUs = append(res.NALUs, encoded)
		res.Stats.NALUs++
		res.Stats.Bytes += len(encoded.Data)
		res.Stats.EmulationPreventionBytes += encoded.EscapeBytes
		if encoded.Passthrough {
			res.Stats.Passthrough++
		}
		metrics.RecordNALU(encoded.Type, len(encoded.Data))
	}

	metrics.AddEmulationPreventionBytes(res.Stats.EmulationPreventionBytes)
	e.log.WithFields(map[string]interface{}{
		"nalus":       res.Stats.NALUs,
		"bytes":       len(res.AnnexB),
		"passthrough": res.Stats.Passthrough,
		"ep_bytes":    res.Stats.EmulationPreventionBytes,
	}).Debug("Stream encoded")

	return res, nil
}

func (e *Encoder) newWriter(index int) *Writer {
	w := NewWriter(e.opts.Strict, e.log)
	w.index = index
	return w
}

// encodeNALU encodes one NALU and advances the counter of its kind.
func (e *Encoder) encodeNALU(stream *syntax.Stream, state *DispatchState, n *syntax.NALU) (EncodedNALU, error) {
	hw := e.newWriter(state.Index)
	naluType := writeHeader(hw, n)
	if err := hw.Err(); err != nil {
		return EncodedNALU{}, err
	}
	header := hw.Packed()

	w := e.newWriter(state.Index)
	var rbsp []byte
	passthrough := false
	headerOnly := false

	switch naluType {
	case syntax.NALUSPS:
		if state.SPS >= len(stream.SPS) {
			return EncodedNALU{}, apperrors.NewMissingModel("SPS", state.SPS)
		}
		writeSPSData(w, &stream.SPS[state.SPS])
		state.SPS++

	case syntax.NALUSubsetSPS:
		if state.SubsetSPS >= len(stream.SubsetSPS) {
			return EncodedNALU{}, apperrors.NewMissingModel("subset SPS", state.SubsetSPS)
		}
		writeSubsetSPS(w, &stream.SubsetSPS[state.SubsetSPS])
		state.SubsetSPS++

	case syntax.NALUSPSExtension:
		if state.SPSExtension >= len(stream.SPSExtensions) {
			return EncodedNALU{}, apperrors.NewMissingModel("SPS extension", state.SPSExtension)
		}
		writeSPSExtension(w, &stream.SPSExtensions[state.SPSExtension])
		state.SPSExtension++

	case syntax.NALUPPS:
		if state.PPS >= len(stream.PPS) {
			return EncodedNALU{}, apperrors.NewMissingModel("PPS", state.PPS)
		}
		pps := &stream.PPS[state.PPS]
		sps, err := ResolveSPS(pps.SeqParameterSetID, pps.IsSubsetPPS,
			stream.SPS[:state.SPS], stream.SubsetSPS[:state.SubsetSPS])
		if err != nil {
			return EncodedNALU{}, err
		}
		writePPS(w, pps, sps)
		state.PPS++

	case syntax.NALUSliceNonIDR, syntax.NALUSliceIDR, syntax.NALUSliceExtension:
		if naluType == syntax.NALUSliceExtension && n.SVCExtensionFlag {
			// SVC slice syntax is not modelled
			passthrough = true
			break
		}
		if state.Slice >= len(stream.Slices) {
			return EncodedNALU{}, apperrors.NewMissingModel("slice", state.Slice)
		}
		slice := &stream.Slices[state.Slice]
		pps, sps, err := ResolveSlice(naluType, slice.Header.PicParameterSetID,
			stream.PPS[:state.PPS], stream.SPS[:state.SPS], stream.SubsetSPS[:state.SubsetSPS])
		if err != nil {
			return EncodedNALU{}, err
		}
		writeSlice(w, slice, sliceContext{nalu: n, sps: sps, pps: pps})
		state.Slice++

	case syntax.NALUSEI:
		if state.SEI >= len(stream.SEI) {
			return EncodedNALU{}, apperrors.NewMissingModel("SEI", state.SEI)
		}
		sei := &stream.SEI[state.SEI]
		state.SEI++
		if len(sei.Messages) == 0 {
			passthrough = true
			break
		}
		writeSEI(w, sei)

	case syntax.NALUAUD:
		if state.AUD >= len(stream.AUD) {
			return EncodedNALU{}, apperrors.NewMissingModel("AUD", state.AUD)
		}
		writeAUD(w, &stream.AUD[state.AUD])
		state.AUD++

	case syntax.NALUPrefix:
		if !n.SVCExtensionFlag {
			headerOnly = true
			break
		}
		if state.Prefix >= len(stream.Prefix) {
			return EncodedNALU{}, apperrors.NewMissingModel("prefix", state.Prefix)
		}
		writePrefixSVC(w, &stream.Prefix[state.Prefix], n)
		state.Prefix++

	default:
		// Data partitions, end of sequence and stream, filler, reserved
		// and unspecified types carry their content through unchanged
		passthrough = true
	}

	if err := w.Err(); err != nil {
		return EncodedNALU{}, err
	}

	switch {
	case headerOnly:
		rbsp = nil
	case passthrough:
		rbsp = n.Payload()
	default:
		rbsp = w.RBSP()
	}

	escaped := bitstream.InsertEmulationPrevention(rbsp)
	data := make([]byte, 0, len(header)+len(escaped))
	data = append(data, header...)
	data = append(data, escaped...)

	fields := map[string]interface{}{
		"nalu_index": state.Index,
		"type":       naluType,
		"type_name":  syntax.TypeName(naluType),
		"bytes":      len(data),
	}
	if passthrough {
		e.log.DebugWithCategory(logger.CategoryPassthrough, "NALU passed through", fields)
	} else {
		e.log.DebugWithCategory(logger.CategoryNALU, "NALU encoded", fields)
	}

	return EncodedNALU{
		Index:         state.Index,
		Type:          naluType,
		LongStartCode: n.LongStartCode,
		Passthrough:   passthrough,
		EscapeBytes:   len(escaped) - len(rbsp),
		Data:          data,
	}, nil
}
