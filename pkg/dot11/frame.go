// Package dot11 recovers how much of a raw, possibly truncated 802.11 frame
// delivered by a promiscuous-mode radio can be trusted.
package dot11

// FrameType is the two-bit 802.11 frame type.
type FrameType uint8

const (
	TypeManagement FrameType = 0
	TypeControl    FrameType = 1
	TypeData       FrameType = 2
	TypeExtension  FrameType = 3
)

func (t FrameType) String() string {
	switch t {
	case TypeManagement:
		return "management"
	case TypeControl:
		return "control"
	case TypeData:
		return "data"
	default:
		return "extension"
	}
}

// Management subtypes carrying fixed fields.
const (
	SubtypeAssocRequest  = 0x0
	SubtypeProbeResponse = 0x5
	SubtypeBeacon        = 0x8
	SubtypeAuth          = 0xb
	SubtypeAction        = 0xd
)

// Control subtypes with a known length.
const (
	SubtypeRTS = 0xb
	SubtypeCTS = 0xc
	SubtypeACK = 0xd
)

const (
	// MACHeaderLen is the three-address MAC header length.
	MACHeaderLen = 24
	// FourAddrHeaderLen is the MAC header length when ToDS and FromDS are both set.
	FourAddrHeaderLen = 30

	qosControlLen  = 2
	minLLCSNAPLen  = 8
	qosSubtypeBit  = 0x8
	capabilityESS  = 0x0001
	capabilityIBSS = 0x0002
)

var fixedFieldLen = map[uint8]int{
	SubtypeBeacon:        12,
	SubtypeProbeResponse: 12,
	SubtypeAssocRequest:  4,
	SubtypeAuth:          6,
	SubtypeAction:        1,
}

// Classification is the decoded frame control field.
type Classification struct {
	Type    FrameType
	Subtype uint8
	ToDS    bool
	FromDS  bool
}

// Classify decodes the frame control field. ok is false when fewer than two
// bytes are available.
func Classify(frame []byte) (c Classification, ok bool) {
	if len(frame) < 2 {
		return Classification{}, false
	}
	fc := uint16(frame[0]) | uint16(frame[1])<<8
	return Classification{
		Type:    FrameType((fc >> 2) & 0x3),
		Subtype: uint8((fc >> 4) & 0xf),
		ToDS:    (fc>>8)&0x1 == 1,
		FromDS:  (fc>>9)&0x1 == 1,
	}, true
}

// InferLength returns the length of the structurally justified prefix of
// frame. It never returns more than len(frame) and returns 0 only when frame
// is shorter than the frame control field. Malformed input truncates the
// result, it is never an error.
func InferLength(frame []byte) int {
	c, ok := Classify(frame)
	if !ok {
		return 0
	}
	var n int
	switch c.Type {
	case TypeManagement:
		n = managementLength(frame, c.Subtype)
	case TypeControl:
		n = controlLength(c.Subtype)
	case TypeData:
		n = dataLength(frame, c)
	default:
		n = MACHeaderLen
	}
	if n > len(frame) {
		return len(frame)
	}
	return n
}

func managementLength(frame []byte, subtype uint8) int {
	captured := len(frame)
	if captured < MACHeaderLen {
		return captured
	}
	n := MACHeaderLen
	if fixed, ok := fixedFieldLen[subtype]; ok {
		if captured < n+fixed {
			return n
		}
		if subtype == SubtypeBeacon && !validBeaconFixedFields(frame[n : n+fixed]) {
			return n
		}
		n += fixed
	}
	return walkTags(frame, n)
}

// validBeaconFixedFields checks timestamp(8), interval(2), capability(2).
func validBeaconFixedFields(f []byte) bool {
	interval := uint16(f[8]) | uint16(f[9])<<8
	if interval == 0 {
		return false
	}
	capability := uint16(f[10]) | uint16(f[11])<<8
	return capability&(capabilityESS|capabilityIBSS) != 0
}

// walkTags advances over (tag, length, value) triples starting at pos and
// returns the offset after the last complete, plausible element.
func walkTags(frame []byte, pos int) int {
	for pos+2 <= len(frame) {
		tag, length := frame[pos], frame[pos+1]
		if pos+2+int(length) > len(frame) || !IsPlausibleTag(tag, length) {
			break
		}
		pos += 2 + int(length)
	}
	return pos
}

func controlLength(subtype uint8) int {
	switch subtype {
	case SubtypeRTS:
		return 16
	case SubtypeCTS, SubtypeACK:
		return 10
	default:
		return 16
	}
}

func dataLength(frame []byte, c Classification) int {
	captured := len(frame)
	n := MACHeaderLen
	if c.ToDS && c.FromDS {
		if captured < FourAddrHeaderLen {
			return captured
		}
		n = FourAddrHeaderLen
	}
	if c.Subtype&qosSubtypeBit != 0 {
		if captured < n+qosControlLen {
			return n
		}
		n += qosControlLen
	}
	if captured > n && captured-n >= minLLCSNAPLen {
		return captured
	}
	return n
}
