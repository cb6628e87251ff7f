package main

import (
	"errors"
	"io"
	"os"

	"github.com/irctrakz/ghostcap/internal/syncutil"
	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/irctrakz/ghostcap/pkg/serial"
)

// transport is the shared fallback writer every session frames onto.
type transport struct {
	mu      syncutil.Mutex
	w       io.Writer
	closers []io.Closer
}

// openTransport fans frames out to the UART, stdout and TCP host tools as
// configured. With nothing configured frames go to stdout.
func openTransport(sc core.SerialConfig) (*transport, error) {
	t := &transport{}
	var writers []io.Writer

	if sc.Port != "" {
		p, err := serial.Open(sc.Port, sc.Baud)
		if err != nil {
			return nil, err
		}
		writers = append(writers, p)
		t.closers = append(t.closers, p)
		logging.Tag(logging.TagSink).WithField("port", p.String()).Info("Serial port opened")
	}
	if sc.Listen != "" {
		b, err := serial.Listen(sc.Listen, sc.MaxClients)
		if err != nil {
			t.Close()
			return nil, err
		}
		writers = append(writers, b)
		t.closers = append(t.closers, b)
		logging.Tag(logging.TagSink).WithField("addr", b.Addr().String()).Info("Serving framed stream")
	}
	if !sc.Stdout && len(writers) == 0 {
		logging.Debugf("No serial transport configured, framing to stdout")
	}
	if sc.Stdout || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	t.w = io.MultiWriter(writers...)
	return t, nil
}

// Write passes one frame to every underlying writer. Frames from different
// sessions reach all writers in the same order.
func (t *transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Write(p)
}

func (t *transport) Close() error {
	var errs []error
	for _, c := range t.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
