package syntax

// SEIMessage is one sei_message (7.3.2.3.1). The payload is opaque; the
// encoder checks PayloadSize against len(Payload).
type SEIMessage struct {
	PayloadType uint32
	PayloadSize uint32
	Payload     []byte
}

// SEI is sei_rbsp, a list of messages.
type SEI struct {
	Messages []SEIMessage
}

// AUD is access_unit_delimiter_rbsp (7.3.2.4).
type AUD struct {
	PrimaryPicType uint8 // u(3)
}

// BaseMMCO is one memory_management_base_control_operation. The
// terminating operation 0 is implicit.
type BaseMMCO struct {
	Operation                     uint32
	DifferenceOfBasePicNumsMinus1 uint32 // operation 1
	LongTermBasePicNum            uint32 // operation 2
}

// PrefixSVC is prefix_nal_unit_svc (G.7.3.2.12.1), the body of a prefix
// NALU whose header has svc_extension_flag set.
type PrefixSVC struct {
	StoreRefBasePicFlag bool

	// dec_ref_base_pic_marking, present when the base picture is stored
	// or used and the unit is not an IDR.
	AdaptiveRefBasePicMarkingModeFlag bool
	BaseOperations                    []BaseMMCO

	AdditionalPrefixNALUnitExtensionFlag bool
	ExtensionDataFlags                   []uint8
}

// HasBaseMarking reports whether the prefix body carries
// dec_ref_base_pic_marking under header n.
func (p *PrefixSVC) HasBaseMarking(n *NALU) bool {
	return (n.SVC.UseRefBasePicFlag || p.StoreRefBasePicFlag) && !n.SVC.IDRFlag
}
