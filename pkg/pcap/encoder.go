package pcap

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/dot11"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/irctrakz/ghostcap/pkg/sink"
	"github.com/irctrakz/ghostcap/pkg/storage"
	"github.com/sirupsen/logrus"
)

// Extension is the file extension of rotated capture files.
const Extension = "pcap"

// Encoder turns raw promiscuous-mode frames into pcap records. One Encoder
// owns at most one session at a time; Record may be called concurrently.
type Encoder struct {
	cfg      core.CaptureConfig
	probe    storage.Probe
	fallback io.Writer
	create   func(name string) (io.WriteCloser, error)
	now      func() time.Time
	log      *logrus.Entry

	mu   sync.RWMutex
	sink *sink.Sink
}

// Option customises an Encoder.
type Option func(*Encoder)

// WithClock replaces the wall clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Encoder) { e.now = now }
}

// WithProbe replaces the storage presence check.
func WithProbe(p storage.Probe) Option {
	return func(e *Encoder) { e.probe = p }
}

// WithCreate replaces os.Create for capture files.
func WithCreate(create func(name string) (io.WriteCloser, error)) Option {
	return func(e *Encoder) { e.create = create }
}

// NewEncoder creates an Encoder writing into cfg.Dir, or framed to fallback
// when that directory is unavailable.
func NewEncoder(cfg core.CaptureConfig, fallback io.Writer, opts ...Option) *Encoder {
	e := &Encoder{
		cfg:      cfg,
		probe:    storage.OSProbe{},
		fallback: fallback,
		now:      time.Now,
		log:      logging.Tag(logging.TagPCAP),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// OpenSession starts a capture session named base (cfg.BaseName when
// empty), closing any session already open. The global header is always
// emitted. A non-nil error means the file could not be used; the session is
// still open on the serial fallback.
func (e *Encoder) OpenSession(base string) error {
	if base == "" {
		base = e.cfg.BaseName
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sink != nil {
		if err := e.sink.Close(); err != nil {
			e.log.WithError(err).Warn("Failed to close previous session")
		}
	}
	s, err := sink.OpenSession(sink.SessionConfig{
		Dir:      e.cfg.Dir,
		Base:     base,
		Ext:      Extension,
		Capacity: e.cfg.BufferSize,
		Tag:      logging.TagPCAP,
		Probe:    e.probe,
		Fallback: e.fallback,
		Create:   e.create,
	}, AppendGlobalHeader(nil))
	e.sink = s
	if err != nil {
		e.log.WithError(err).Error("Failed to write PCAP global header to file")
	}
	return err
}

// Record infers how much of frame is valid and buffers one record for it.
// Frames shorter than two bytes are rejected. A record is never split
// across flushes; one that cannot fit in the sink at all is rejected.
func (e *Encoder) Record(frame []byte) error {
	if len(frame) < 2 {
		return fmt.Errorf("%w: frame of %d bytes", core.ErrInvalidArgument, len(frame))
	}
	valid := dot11.InferLength(frame)
	size := RecordHeaderLen + RadiotapLen + valid

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return fmt.Errorf("%w: no capture session open", core.ErrInvalidArgument)
	}
	if size > e.sink.Capacity() {
		e.log.WithField("size", size).Error("Packet too large")
		return fmt.Errorf("%w: %d byte record exceeds %d byte buffer", core.ErrResourceExhausted, size, e.sink.Capacity())
	}

	buf := recordGet(size)
	putRecord(buf, e.now(), frame[:valid])
	err := e.sink.Write(buf)
	recordPut(buf)
	if err != nil {
		return err
	}
	if e.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		e.log.WithFields(logrus.Fields{
			"captured": len(frame),
			"valid":    valid,
			"buffered": e.sink.Buffered(),
		}).Debug("Added packet")
	}
	return nil
}

// Flush pushes buffered records to the file or serial fallback now.
func (e *Encoder) Flush() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return nil
	}
	return e.sink.Flush()
}

// CloseSession flushes and closes the current session. It is a no-op when
// no session is open.
func (e *Encoder) CloseSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sink == nil {
		return nil
	}
	err := e.sink.Close()
	e.sink = nil
	e.log.Info("PCAP session closed")
	return err
}

// Destination names where the current session is going, "" when closed.
func (e *Encoder) Destination() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return ""
	}
	return e.sink.Destination()
}

// Metrics returns the current session's sink counters.
func (e *Encoder) Metrics() sink.Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return sink.Metrics{}
	}
	return e.sink.Metrics()
}
