// Package pcap writes inferred 802.11 frames as a libpcap stream with a
// synthetic radiotap header, through a sink that lands in a rotated file or
// the framed serial fallback.
package pcap

import (
	"encoding/binary"
	"time"

	"github.com/google/gopacket/layers"
)

// libpcap stream constants.
const (
	Magic        uint32 = 0xa1b2c3d4
	VersionMajor uint16 = 2
	VersionMinor uint16 = 4
	SnapLen      uint32 = 65535

	// LinkType is LINKTYPE_IEEE802_11_RADIOTAP.
	LinkType = uint32(layers.LinkTypeIEEE80211Radio)

	GlobalHeaderLen = 24
	RecordHeaderLen = 16
)

// RadiotapHeader stands in for the hardware radio metadata: version 0,
// length 8, no present fields.
var RadiotapHeader = [8]byte{0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00}

// RadiotapLen is the length of RadiotapHeader.
const RadiotapLen = len(RadiotapHeader)

// AppendGlobalHeader appends the 24-byte file header.
func AppendGlobalHeader(dst []byte) []byte {
	var hdr [GlobalHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[0:4], Magic)
	binary.LittleEndian.PutUint16(hdr[4:6], VersionMajor)
	binary.LittleEndian.PutUint16(hdr[6:8], VersionMinor)
	// 8:12 thiszone (0), 12:16 sigfigs (0)
	binary.LittleEndian.PutUint32(hdr[16:20], SnapLen)
	binary.LittleEndian.PutUint32(hdr[20:24], LinkType)
	return append(dst, hdr[:]...)
}

// putRecord writes a complete record for frame into b, which must be
// RecordHeaderLen+RadiotapLen+len(frame) bytes long.
func putRecord(b []byte, ts time.Time, frame []byte) {
	incl := uint32(RadiotapLen + len(frame))
	binary.LittleEndian.PutUint32(b[0:4], uint32(ts.Unix()))
	binary.LittleEndian.PutUint32(b[4:8], uint32(ts.Nanosecond()/1000))
	binary.LittleEndian.PutUint32(b[8:12], incl)
	binary.LittleEndian.PutUint32(b[12:16], incl)
	copy(b[RecordHeaderLen:], RadiotapHeader[:])
	copy(b[RecordHeaderLen+RadiotapLen:], frame)
}
