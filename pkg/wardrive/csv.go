package wardrive

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/irctrakz/ghostcap/pkg/sink"
	"github.com/irctrakz/ghostcap/pkg/storage"
	"github.com/sirupsen/logrus"
)

const (
	// Header is the first line of every wardriving stream.
	Header = "BSSID,SSID,Latitude,Longitude,RSSI,Channel,Encryption,Time\n"

	// Extension is the file extension of rotated CSV files.
	Extension = "csv"

	// MaxLineLen bounds one formatted row, newline included.
	MaxLineLen = 512
)

// CSVEncoder writes sightings as CSV rows through a sink that lands in a
// rotated file or the framed serial fallback.
type CSVEncoder struct {
	cfg      core.WardrivingConfig
	probe    storage.Probe
	fallback io.Writer
	create   func(name string) (io.WriteCloser, error)
	log      *logrus.Entry

	mu   sync.RWMutex
	sink *sink.Sink
}

// Option customises a CSVEncoder.
type Option func(*CSVEncoder)

// WithProbe replaces the storage presence check.
func WithProbe(p storage.Probe) Option {
	return func(e *CSVEncoder) { e.probe = p }
}

// WithCreate replaces os.Create for CSV files.
func WithCreate(create func(name string) (io.WriteCloser, error)) Option {
	return func(e *CSVEncoder) { e.create = create }
}

// NewCSVEncoder creates an encoder writing into cfg.Dir, or framed to
// fallback when that directory is unavailable.
func NewCSVEncoder(cfg core.WardrivingConfig, fallback io.Writer, opts ...Option) *CSVEncoder {
	e := &CSVEncoder{
		cfg:      cfg,
		probe:    storage.OSProbe{},
		fallback: fallback,
		log:      logging.Tag(logging.TagCSV),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// OpenSession starts a session named base (cfg.BaseName when empty) and
// emits the header. As with capture sessions, an error means the file could
// not be used and the session is running on the serial fallback.
func (e *CSVEncoder) OpenSession(base string) error {
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
		Tag:      logging.TagCSV,
		Probe:    e.probe,
		Fallback: e.fallback,
		Create:   e.create,
	}, []byte(Header))
	e.sink = s
	if err != nil {
		e.log.WithError(err).Error("Failed to write CSV header to file")
	}
	return err
}

// WriteHeader emits the column header line and flushes it.
func (e *CSVEncoder) WriteHeader() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return fmt.Errorf("%w: no wardriving session open", core.ErrInvalidArgument)
	}
	if err := e.sink.Write([]byte(Header)); err != nil {
		return err
	}
	return e.sink.Flush()
}

// WriteRecord buffers one row for ap seen at fix.
func (e *CSVEncoder) WriteRecord(fix *Fix, ap Observation) error {
	line, err := FormatRecord(fix, ap)
	if err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return fmt.Errorf("%w: no wardriving session open", core.ErrInvalidArgument)
	}
	return e.sink.Write(line)
}

// FormatRecord renders one row. Fields are quoted only when they contain
// a separator, quote or newline.
func FormatRecord(fix *Fix, ap Observation) ([]byte, error) {
	if fix == nil {
		return nil, fmt.Errorf("%w: no gps fix", core.ErrInvalidArgument)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := w.Write([]string{
		ap.BSSID,
		ap.SSID,
		strconv.FormatFloat(fix.Latitude, 'f', 6, 64),
		strconv.FormatFloat(fix.Longitude, 'f', 6, 64),
		strconv.FormatInt(int64(ap.RSSI), 10),
		strconv.FormatUint(uint64(ap.Channel), 10),
		ap.Encryption,
		fix.Timestamp(),
	})
	if err == nil {
		w.Flush()
		err = w.Error()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to format csv row: %w", err)
	}
	if buf.Len() > MaxLineLen {
		return nil, fmt.Errorf("%w: %d byte row exceeds %d", core.ErrFormattingOverflow, buf.Len(), MaxLineLen)
	}
	return buf.Bytes(), nil
}

// Flush pushes buffered rows to the file or serial fallback now.
func (e *CSVEncoder) Flush() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return nil
	}
	return e.sink.Flush()
}

// CloseSession flushes and closes the current session.
func (e *CSVEncoder) CloseSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sink == nil {
		return nil
	}
	err := e.sink.Close()
	e.sink = nil
	e.log.Info("CSV session closed")
	return err
}

// Destination names where the current session is going, "" when closed.
func (e *CSVEncoder) Destination() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return ""
	}
	return e.sink.Destination()
}

// Metrics returns the current session's sink counters.
func (e *CSVEncoder) Metrics() sink.Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.sink == nil {
		return sink.Metrics{}
	}
	return e.sink.Metrics()
}
