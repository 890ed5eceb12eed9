package decoder

import "github.com/zsiec/nalforge/internal/syntax"

// parseSEI reads sei_message entries until the stop bit.
func parseSEI(r *reader, s *syntax.SEI) {
	for r.moreData() {
		var msg syntax.SEIMessage
		msg.PayloadType = readFFRun(r, "last_payload_type_byte")
		msg.PayloadSize = readFFRun(r, "last_payload_size_byte")
		msg.Payload = r.bytes("sei_payload", int(msg.PayloadSize))
		if r.err != nil {
			return
		}
		s.Messages = append(s.Messages, msg)
	}
}

func readFFRun(r *reader, field string) uint32 {
	var v uint32
	for r.err == nil {
		b := r.u(field, 8)
		v += b
		if b != 0xFF {
			break
		}
	}
	return v
}

func parseAUD(r *reader, a *syntax.AUD) {
	a.PrimaryPicType = uint8(r.u("primary_pic_type", 3))
}

func parsePrefixSVC(r *reader, p *syntax.PrefixSVC, n *syntax.NALU) {
	if n.NalRefIdc == 0 {
		p.ExtensionDataFlags = r.rest()
		return
	}

	p.StoreRefBasePicFlag = r.flag()
	if p.HasBaseMarking(n) {
		parseDecRefBasePicMarking(r, p)
	}
	p.AdditionalPrefixNALUnitExtensionFlag = r.flag()
	if p.AdditionalPrefixNALUnitExtensionFlag {
		p.ExtensionDataFlags = r.rest()
	}
}

func parseDecRefBasePicMarking(r *reader, p *syntax.PrefixSVC) {
	p.AdaptiveRefBasePicMarkingModeFlag = r.flag()
	if !p.AdaptiveRefBasePicMarkingModeFlag {
		return
	}
	for r.err == nil {
		op := syntax.BaseMMCO{Operation: r.ue("memory_management_base_control_operation")}
		if op.Operation == 0 || r.err != nil {
			return
		}
		switch op.Operation {
		case 1:
			op.DifferenceOfBasePicNumsMinus1 = r.ue("difference_of_base_pic_nums_minus1")
		case 2:
			op.LongTermBasePicNum = r.ue("long_term_base_pic_num")
		}
		p.BaseOperations = append(p.BaseOperations, op)
	}
}
