// Package serial carries sink chunks over a text-oriented console when no
// storage is mounted. Chunks are wrapped as
//
//	[BUF/BEGIN]<raw bytes>[BUF/CLOSE]\n
//
// which host tools unwrap with Decoder.
package serial

// Frame markers. Host tooling matches these byte-for-byte.
const (
	MarkBegin = "[BUF/BEGIN]"
	MarkClose = "[BUF/CLOSE]"
)

// FrameOverhead is the number of bytes framing adds to a chunk.
const FrameOverhead = len(MarkBegin) + len(MarkClose) + 1

// AppendFrame appends the framed form of p to dst.
func AppendFrame(dst, p []byte) []byte {
	dst = append(dst, MarkBegin...)
	dst = append(dst, p...)
	dst = append(dst, MarkClose...)
	return append(dst, '\n')
}
