package sink

import (
	"fmt"
	"io"
	"os"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/irctrakz/ghostcap/pkg/storage"
)

// SessionConfig describes where a logging session should land.
type SessionConfig struct {
	// Dir is the rotation directory. When the probe says it does not exist
	// the session goes to Fallback.
	Dir string

	// Base and Ext form file names Base_<N>.Ext.
	Base string
	Ext  string

	// Capacity and Tag configure the Sink.
	Capacity int
	Tag      string

	// Probe checks Dir; nil means storage.OSProbe.
	Probe storage.Probe

	// Fallback is the serial transport; nil discards.
	Fallback io.Writer

	// Create opens a new file; nil means os.Create.
	Create func(name string) (io.WriteCloser, error)
}

// OpenSession builds the Sink for one session and emits header through it
// before returning, so every stream, file or serial, starts self-describing.
//
// The returned Sink is never nil. A missing directory is not an error: the
// session simply runs on the serial fallback. Failing to create the file or
// to write the header to it is reported, and the session continues on the
// fallback with the header re-emitted there.
func OpenSession(cfg SessionConfig, header []byte) (*Sink, error) {
	log := logging.Tag(tagOr(cfg.Tag))
	probe := cfg.Probe
	if probe == nil {
		probe = storage.OSProbe{}
	}

	var fileErr error
	if probe.DirExists(cfg.Dir) {
		dest, err := openFile(cfg)
		if err == nil {
			s := New(dest, Config{Capacity: cfg.Capacity, Tag: cfg.Tag})
			if err = writeHeader(s, header); err == nil {
				log.WithField("file", dest.String()).Info("Session opened and header written")
				return s, nil
			}
			_ = s.Close()
		}
		fileErr = err
		log.WithError(err).Error("Failed to start file session, using serial")
	} else {
		log.WithField("dir", cfg.Dir).Warn("Storage not available, using serial")
	}

	fallback := cfg.Fallback
	if fallback == nil {
		fallback = io.Discard
	}
	s := New(NewFramedDestination(fallback), Config{Capacity: cfg.Capacity, Tag: cfg.Tag})
	if err := writeHeader(s, header); err != nil {
		return s, joinErr(fileErr, err)
	}
	return s, fileErr
}

func openFile(cfg SessionConfig) (*FileDestination, error) {
	name, err := storage.NextName(cfg.Dir, cfg.Base, cfg.Ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	create := cfg.Create
	if create == nil {
		create = func(name string) (io.WriteCloser, error) { return os.Create(name) }
	}
	f, err := create(name)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %v", core.ErrIO, name, err)
	}
	return NewFileDestination(f, name), nil
}

func writeHeader(s *Sink, header []byte) error {
	if len(header) == 0 {
		return nil
	}
	if err := s.Write(header); err != nil {
		return err
	}
	return s.Flush()
}

func joinErr(a, b error) error {
	if a == nil {
		return b
	}
	return fmt.Errorf("%w; serial fallback: %v", a, b)
}

func tagOr(tag string) string {
	if tag == "" {
		return logging.TagSink
	}
	return tag
}
