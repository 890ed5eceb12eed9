package vidgen

import "github.com/zsiec/nalforge/internal/syntax"

// sei draws an SEI whose messages always declare their true size.
func (g *Generator) sei() syntax.SEI {
	r := &g.cfg.SEI
	var sei syntax.SEI

	count := g.src.Uint(r.MessageCount)
	for i := uint32(0); i < count; i++ {
		msg := syntax.SEIMessage{PayloadType: g.src.Enum(r.PayloadType)}
		msg.Payload = g.src.NextBytes(int(g.src.Uint(r.PayloadSize)))
		msg.PayloadSize = uint32(len(msg.Payload))
		sei.Messages = append(sei.Messages, msg)
	}
	return sei
}

// prefixSVC draws the body of an SVC prefix unit under header n.
func (g *Generator) prefixSVC(n *syntax.NALU) syntax.PrefixSVC {
	r := &g.cfg.Slice
	var p syntax.PrefixSVC

	if n.NalRefIdc == 0 {
		p.ExtensionDataFlags = g.bits(int(g.src.Uint(g.cfg.SPS.ExtensionBits)))
		return p
	}

	p.StoreRefBasePicFlag = g.flag(r.Flag)
	if p.HasBaseMarking(n) {
		p.AdaptiveRefBasePicMarkingModeFlag = g.flag(r.Flag)
		if p.AdaptiveRefBasePicMarkingModeFlag {
			count := g.src.Uint(r.MMCOCount)
			for i := uint32(0); i < count; i++ {
				op := syntax.BaseMMCO{Operation: g.src.NextUint(1, 2)}
				if op.Operation == 1 {
					op.DifferenceOfBasePicNumsMinus1 = g.src.Uint(r.ModificationValue)
				} else {
					op.LongTermBasePicNum = g.src.Uint(r.ModificationValue)
				}
				p.BaseOperations = append(p.BaseOperations, op)
			}
		}
	}
	p.AdditionalPrefixNALUnitExtensionFlag = g.flag(r.Flag)
	if p.AdditionalPrefixNALUnitExtensionFlag {
		p.ExtensionDataFlags = g.bits(int(g.src.Uint(g.cfg.SPS.ExtensionBits)))
	}
	return p
}
