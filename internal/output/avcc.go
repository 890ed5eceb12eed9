// Package output turns an encoded stream into the formats other tools
// consume: AVCC extradata with length-prefixed samples, RTP packets and
// their dump files, and paced RTP over UDP.
package output

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zsiec/nalforge/internal/encoder"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
	"github.com/zsiec/nalforge/internal/syntax"
)

const (
	maxAVCCSPS        = 0x1F
	maxAVCCPPS        = 0xFF
	maxParameterBytes = 0xFFFF
)

// AVCC is a stream in the length-prefixed layout MP4 and WebCodecs use.
// Parameter sets live in Extradata; every other NALU is a sample prefixed
// by its 4-byte big-endian length.
type AVCC struct {
	Extradata []byte
	Samples   []byte
	SPSCount  int
	PPSCount  int
}

// AVCCBuilder splits encoded NALUs into AVCC extradata and samples. In
// strict mode a count or size the extradata fields cannot hold is an
// error; otherwise it is masked to the field and logged.
type AVCCBuilder struct {
	strict bool
	log    logger.Logger
}

// NewAVCCBuilder creates a builder.
func NewAVCCBuilder(strict bool, log logger.Logger) *AVCCBuilder {
	return &AVCCBuilder{
		strict: strict,
		log:    logger.OrNull(log).WithField("component", "avcc"),
	}
}

// Build lays out nalus. SPS and subset SPS units go to the SPS list, PPS
// units to the PPS list. Profile, compatibility and level come from the
// first SPS.
func (b *AVCCBuilder) Build(nalus []encoder.EncodedNALU) (*AVCC, error) {
	var spses, ppses [][]byte
	out := &AVCC{}

	for _, n := range nalus {
		switch n.Type {
		case syntax.NALUSPS, syntax.NALUSubsetSPS:
			spses = append(spses, n.Data)
		case syntax.NALUPPS:
			ppses = append(ppses, n.Data)
		default:
			out.Samples = binary.BigEndian.AppendUint32(out.Samples, uint32(len(n.Data)))
			out.Samples = append(out.Samples, n.Data...)
		}
	}

	extradata, err := b.extradata(spses, ppses)
	if err != nil {
		return nil, err
	}
	out.Extradata = extradata
	out.SPSCount = len(spses)
	out.PPSCount = len(ppses)
	return out, nil
}

func (b *AVCCBuilder) extradata(spses, ppses [][]byte) ([]byte, error) {
	var profile, compat, level byte
	if len(spses) > 0 && len(spses[0]) >= 4 {
		profile = spses[0][1]
		compat = spses[0][2] & 0xFC // constraint_set0..5, reserved bits cleared
		level = spses[0][3]
	}

	// version 1, 4-byte NALU lengths
	data := []byte{1, profile, compat, level, 0xFF}

	spsCount, err := b.fit("sps_count", len(spses), maxAVCCSPS, 5)
	if err != nil {
		return nil, err
	}
	data = append(data, 0xE0|byte(spsCount))
	if data, err = b.appendParameterSets(data, "sps_length", spses); err != nil {
		return nil, err
	}

	ppsCount, err := b.fit("pps_count", len(ppses), maxAVCCPPS, 8)
	if err != nil {
		return nil, err
	}
	data = append(data, byte(ppsCount))
	return b.appendParameterSets(data, "pps_length", ppses)
}

func (b *AVCCBuilder) appendParameterSets(data []byte, field string, sets [][]byte) ([]byte, error) {
	for _, set := range sets {
		size, err := b.fit(field, len(set), maxParameterBytes, 16)
		if err != nil {
			return nil, err
		}
		data = binary.BigEndian.AppendUint16(data, uint16(size))
		data = append(data, set...)
	}
	return data, nil
}

// fit returns v if it is at most max, and otherwise fails or masks it
// depending on strictness.
func (b *AVCCBuilder) fit(field string, v, max, width int) (int, error) {
	if v <= max {
		return v, nil
	}
	if b.strict {
		return 0, apperrors.NewEncodingOverflow(field, uint64(v), width)
	}

	metrics.IncrementOverflowMasked(field)
	b.log.WithFields(map[string]interface{}{
		"field": field,
		"value": v,
		"width": width,
	}).Warn("AVCC field overflow, value masked")
	return v & max, nil
}

// WriteFiles writes base.avcc.extradata and base.avcc.264 and returns their
// paths.
func (a *AVCC) WriteFiles(base string) (string, string, error) {
	extradataPath := base + ".avcc.extradata"
	samplesPath := base + ".avcc.264"

	if err := writeFile(extradataPath, a.Extradata); err != nil {
		return "", "", err
	}
	if err := writeFile(samplesPath, a.Samples); err != nil {
		return "", "", err
	}

	metrics.AddOutputBytes("avcc", len(a.Extradata)+len(a.Samples))
	return extradataPath, samplesPath, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.WrapStorageError(err, "failed to create output directory")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.WrapStorageError(err, fmt.Sprintf("failed to write %s", path))
	}
	return nil
}
