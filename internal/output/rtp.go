package output

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"

	"github.com/zsiec/nalforge/internal/bitstream"
	"github.com/zsiec/nalforge/internal/config"
	"github.com/zsiec/nalforge/internal/encoder"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
	"github.com/zsiec/nalforge/internal/syntax"
)

// Packetizer wraps the RFC 6184 payloader with reproducible sequence
// numbers and timestamps. Every NALU is carried, either as a single NAL
// unit packet or as FU-A fragments; STAP-A aggregation is disabled so
// parameter sets are never held back or overwritten.
type Packetizer struct {
	cfg        config.RTPConfig
	packetizer rtp.Packetizer
	timestamp  uint32
	frameTicks uint32
	log        logger.Logger
}

// NewPacketizer creates a packetizer starting at cfg.InitialSequence and
// cfg.InitialTimestamp.
func NewPacketizer(cfg config.RTPConfig, log logger.Logger) *Packetizer {
	frameTicks := uint32(0)
	if cfg.FrameRate > 0 {
		frameTicks = cfg.ClockRate / cfg.FrameRate
	}
	return &Packetizer{
		cfg: cfg,
		packetizer: rtp.NewPacketizer(
			uint16(cfg.MTU),
			cfg.PayloadType,
			cfg.SSRC,
			&codecs.H264Payloader{DisableStapA: true},
			rtp.NewFixedSequencer(cfg.InitialSequence),
			cfg.ClockRate,
		),
		timestamp:  cfg.InitialTimestamp,
		frameTicks: frameTicks,
		log:        logger.OrNull(log).WithField("component", "rtp"),
	}
}

// Packetize turns one encoded NALU into packets. Every packet of a call
// carries the current timestamp, which advances by one frame after each
// slice.
func (p *Packetizer) Packetize(n encoder.EncodedNALU) []*rtp.Packet {
	if len(n.Data) == 0 {
		return nil
	}

	data := n.Data
	dropped := isDroppedByPayloader(data[0] & 0x1F)
	if dropped {
		data = append([]byte{data[0]&^0x1F | carrierType}, data[1:]...)
	}

	annexB := bitstream.AppendAnnexB(nil, data, false)
	packets := p.packetizer.Packetize(annexB, 0)
	if dropped {
		restoreType(packets, n.Data[0])
	}
	for _, pkt := range packets {
		pkt.Timestamp = p.timestamp
	}

	if isSlice(n.Type) {
		p.timestamp += p.frameTicks
	}
	return packets
}

// PacketizeAll packetizes nalus in order.
func (p *Packetizer) PacketizeAll(nalus []encoder.EncodedNALU) []*rtp.Packet {
	var packets []*rtp.Packet
	for _, n := range nalus {
		packets = append(packets, p.Packetize(n)...)
	}

	metrics.AddRTPPackets("packetized", len(packets))
	p.log.WithFields(map[string]interface{}{
		"nalus":   len(nalus),
		"packets": len(packets),
		"ssrc":    p.cfg.SSRC,
	}).Debug("Stream packetized")
	return packets
}

// carrierType stands in for AUD and filler units, which the payloader
// discards, while they are packetized.
const carrierType = syntax.NALUSliceNonIDR

func isDroppedByPayloader(t uint8) bool {
	return t == syntax.NALUAUD || t == syntax.NALUFiller
}

// restoreType puts header back into packets built from a carrier unit.
func restoreType(packets []*rtp.Packet, header byte) {
	for _, pkt := range packets {
		switch pkt.Payload[0] & 0x1F {
		case fuaType:
			pkt.Payload[1] = pkt.Payload[1]&^0x1F | header&0x1F
		default:
			pkt.Payload[0] = header
		}
	}
}

// fuaType is the RFC 6184 fragmentation unit type.
const fuaType = 28

func isSlice(t uint8) bool {
	switch t {
	case syntax.NALUSliceNonIDR, syntax.NALUSliceIDR, syntax.NALUSliceExtension, syntax.NALUSliceExtensionView:
		return true
	default:
		return false
	}
}

// WriteRTPDump writes packets as 2-byte big-endian lengths followed by the
// marshalled packet, and returns the bytes written.
func WriteRTPDump(w io.Writer, packets []*rtp.Packet) (int, error) {
	total := 0
	for i, pkt := range packets {
		raw, err := pkt.Marshal()
		if err != nil {
			return total, apperrors.WrapInternalError(err, fmt.Sprintf("failed to marshal RTP packet %d", i))
		}
		if len(raw) > 0xFFFF {
			return total, apperrors.NewEncodingOverflow("rtp_packet_length", uint64(len(raw)), 16)
		}

		var length [2]byte
		binary.BigEndian.PutUint16(length[:], uint16(len(raw)))
		if _, err := w.Write(length[:]); err != nil {
			return total, apperrors.WrapStorageError(err, "failed to write RTP dump")
		}
		if _, err := w.Write(raw); err != nil {
			return total, apperrors.WrapStorageError(err, "failed to write RTP dump")
		}
		total += 2 + len(raw)
	}

	metrics.AddOutputBytes("rtp", total)
	return total, nil
}

// ReadRTPDump parses a dump written by WriteRTPDump.
func ReadRTPDump(data []byte) ([]*rtp.Packet, error) {
	var packets []*rtp.Packet
	for off := 0; off < len(data); {
		if len(data)-off < 2 {
			return nil, apperrors.NewInvalidSyntax(fmt.Sprintf("RTP dump truncated at byte %d", off))
		}
		size := int(binary.BigEndian.Uint16(data[off:]))
		off += 2
		if len(data)-off < size {
			return nil, apperrors.NewInvalidSyntax(fmt.Sprintf("RTP packet at byte %d needs %d bytes, have %d", off, size, len(data)-off))
		}

		pkt := &rtp.Packet{}
		if err := pkt.Unmarshal(data[off : off+size]); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeInvalidSyntax, fmt.Sprintf("bad RTP packet at byte %d", off))
		}
		packets = append(packets, pkt)
		off += size
	}
	return packets, nil
}
