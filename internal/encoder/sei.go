package encoder

import (
	"fmt"

	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
	"github.com/zsiec/nalforge/internal/syntax"
)

// writeSEI writes sei_rbsp as a run of sei_message (7.3.2.3.1). A payload
// whose length disagrees with its declared size is an overflow in strict
// mode; otherwise it is padded or cut to the declared size.
func writeSEI(w *Writer, s *syntax.SEI) {
	for i := range s.Messages {
		msg := &s.Messages[i]
		writeFFRun(w, msg.PayloadType)
		writeFFRun(w, msg.PayloadSize)

		payload := msg.Payload
		if uint64(len(payload)) != uint64(msg.PayloadSize) {
			if w.strict {
				w.Fail(apperrors.New(apperrors.ErrorTypeEncodingOverflow,
					fmt.Sprintf("sei payload has %d bytes, payload_size declares %d", len(payload), msg.PayloadSize)).
					WithDetails(map[string]interface{}{"payload_type": msg.PayloadType, "message": i}))
				return
			}
			metrics.IncrementOverflowMasked("sei payload_size")
			w.log.WarnWithCategory(logger.CategoryOverflow, "SEI payload resized to declared size", map[string]interface{}{
				"payload_type":  msg.PayloadType,
				"payload_size":  msg.PayloadSize,
				"payload_bytes": len(payload),
				"nalu_index":    w.index,
			})
			payload = resize(payload, int(msg.PayloadSize))
		}
		w.Bytes(payload)
	}
}

// writeFFRun codes a payload type or size as 0xFF bytes followed by the
// remainder.
func writeFFRun(w *Writer, v uint32) {
	for v >= 0xFF {
		w.U("ff_byte", 8, 0xFF)
		v -= 0xFF
	}
	w.U("last_byte", 8, uint64(v))
}

func resize(data []byte, n int) []byte {
	if len(data) >= n {
		return data[:n]
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}

// writeAUD writes access_unit_delimiter_rbsp (7.3.2.4).
func writeAUD(w *Writer, a *syntax.AUD) {
	w.U("primary_pic_type", 3, uint64(a.PrimaryPicType))
}

// writePrefixSVC writes prefix_nal_unit_svc (G.7.3.2.12.1).
func writePrefixSVC(w *Writer, p *syntax.PrefixSVC, n *syntax.NALU) {
	if n.NalRefIdc != 0 {
		w.Flag(p.StoreRefBasePicFlag)
		if p.HasBaseMarking(n) {
			writeDecRefBasePicMarking(w, p)
		}
		w.Flag(p.AdditionalPrefixNALUnitExtensionFlag)
		if p.AdditionalPrefixNALUnitExtensionFlag {
			w.Bits(p.ExtensionDataFlags)
		}
		return
	}
	w.Bits(p.ExtensionDataFlags)
}

// writeDecRefBasePicMarking writes dec_ref_base_pic_marking (G.7.3.3.5).
func writeDecRefBasePicMarking(w *Writer, p *syntax.PrefixSVC) {
	w.Flag(p.AdaptiveRefBasePicMarkingModeFlag)
	if !p.AdaptiveRefBasePicMarkingModeFlag {
		return
	}
	for _, op := range p.BaseOperations {
		if w.Err() != nil {
			return
		}
		w.UE(op.Operation)
		switch op.Operation {
		case 0:
			return
		case 1:
			w.UE(op.DifferenceOfBasePicNumsMinus1)
		case 2:
			w.UE(op.LongTermBasePicNum)
		}
	}
	w.UE(0)
}
