package pcap

import "sync"

// Scratch pools for assembling records before they are copied into the
// sink. Callers should only return buffers that originated from recordGet
// (checked via capacity match).

const (
	recSmall = 256
	recMed   = 1024
	recLarge = 4096
)

var (
	poolSmall = sync.Pool{New: func() any { b := make([]byte, recSmall); return &b }}
	poolMed   = sync.Pool{New: func() any { b := make([]byte, recMed); return &b }}
	poolLarge = sync.Pool{New: func() any { b := make([]byte, recLarge); return &b }}
)

func recordGet(n int) []byte {
	switch {
	case n <= recSmall:
		p := poolSmall.Get().(*[]byte)
		return (*p)[:n]
	case n <= recMed:
		p := poolMed.Get().(*[]byte)
		return (*p)[:n]
	case n <= recLarge:
		p := poolLarge.Get().(*[]byte)
		return (*p)[:n]
	default:
		return make([]byte, n)
	}
}

func recordPut(b []byte) {
	switch cap(b) {
	case recSmall:
		bb := b[:recSmall]
		poolSmall.Put(&bb)
	case recMed:
		bb := b[:recMed]
		poolMed.Put(&bb)
	case recLarge:
		bb := b[:recLarge]
		poolLarge.Put(&bb)
	}
}
