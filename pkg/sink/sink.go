// Package sink implements the accumulate-then-flush buffer shared by the
// pcap and wardriving encoders. A Sink delivers whole buffers to either a
// file or the framed serial fallback; which one is fixed when it is built.
package sink

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/irctrakz/ghostcap/internal/syncutil"
	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/sirupsen/logrus"
)

// DefaultCapacity matches the firmware's fixed 4 KiB buffers.
const DefaultCapacity = 4096

// ErrClosed is returned by Write and Flush after Close.
var ErrClosed = errors.New("sink closed")

// Config configures a Sink.
type Config struct {
	// Capacity is the buffer size in bytes. Zero means DefaultCapacity.
	Capacity int

	// Tag names the owning stream in logs (e.g. logging.TagPCAP).
	Tag string
}

// Metrics contains counters for a Sink.
type Metrics struct {
	// Writes is the number of accepted Write calls.
	Writes uint64

	// Flushes is the number of chunks handed to the destination.
	Flushes uint64

	// BytesFlushed is the number of bytes handed to the destination.
	BytesFlushed uint64

	// Errors is the number of failed flushes and rejected writes.
	Errors uint64
}

// Sink is a fixed-capacity byte buffer in front of a Destination. All
// methods are safe for concurrent use; the radio callback and an explicit
// flush request may race.
type Sink struct {
	mu       syncutil.Mutex
	buf      []byte
	capacity int
	dest     Destination
	closed   bool
	log      *logrus.Entry

	metrics Metrics
}

// New builds a Sink in front of dest.
func New(dest Destination, cfg Config) *Sink {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sink{
		buf:      make([]byte, 0, capacity),
		capacity: capacity,
		dest:     dest,
		log:      logging.Tag(tagOr(cfg.Tag)).WithField("dest", dest.String()),
	}
}

// Write appends p. When p does not fit in the remaining space the buffer is
// flushed first. p larger than the whole buffer is rejected.
func (s *Sink) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if len(p) > s.capacity {
		atomic.AddUint64(&s.metrics.Errors, 1)
		return fmt.Errorf("%w: %d byte write exceeds %d byte buffer", core.ErrResourceExhausted, len(p), s.capacity)
	}
	if len(s.buf)+len(p) > s.capacity {
		s.log.Debug("Buffer full, flushing")
		if err := s.flushLocked(); err != nil {
			return err
		}
	}
	s.buf = append(s.buf, p...)
	atomic.AddUint64(&s.metrics.Writes, 1)
	return nil
}

// Flush hands the buffered bytes to the destination. An empty buffer is a
// no-op. The buffer is emptied even when the destination fails; the lost
// chunk is reported, not retried. A failing file destination is kept for the
// rest of the session; only session open demotes to the serial fallback.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.flushLocked()
}

func (s *Sink) flushLocked() error {
	if len(s.buf) == 0 {
		return nil
	}
	n := len(s.buf)
	err := s.dest.Send(s.buf)
	s.buf = s.buf[:0]
	if err != nil {
		atomic.AddUint64(&s.metrics.Errors, 1)
		s.log.WithError(err).WithField("bytes", n).Error("Failed to flush buffer")
		return err
	}
	atomic.AddUint64(&s.metrics.Flushes, 1)
	atomic.AddUint64(&s.metrics.BytesFlushed, uint64(n))
	s.log.WithField("bytes", n).Debug("Flushed buffer")
	return nil
}

// Close flushes residual bytes and releases the destination. Closing an
// already closed Sink is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if len(s.buf) > 0 {
		s.log.Debug("Flushing remaining buffer before closing")
	}
	ferr := s.flushLocked()
	cerr := s.dest.Close()
	return errors.Join(ferr, cerr)
}

// Buffered returns the number of bytes waiting for the next flush.
func (s *Sink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Capacity returns the buffer size. It is fixed at construction.
func (s *Sink) Capacity() int { return s.capacity }

// Fallback reports whether this Sink writes to the serial fallback.
func (s *Sink) Fallback() bool {
	_, ok := s.dest.(*FramedDestination)
	return ok
}

// Destination returns the name of the destination.
func (s *Sink) Destination() string { return s.dest.String() }

// Metrics returns a snapshot of the counters.
func (s *Sink) Metrics() Metrics {
	return Metrics{
		Writes:       atomic.LoadUint64(&s.metrics.Writes),
		Flushes:      atomic.LoadUint64(&s.metrics.Flushes),
		BytesFlushed: atomic.LoadUint64(&s.metrics.BytesFlushed),
		Errors:       atomic.LoadUint64(&s.metrics.Errors),
	}
}
