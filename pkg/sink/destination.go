package sink

import (
	"fmt"
	"io"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/serial"
)

// Destination receives whole buffers when a Sink flushes.
type Destination interface {
	// Send delivers one chunk. Implementations must not retain p.
	Send(p []byte) error

	// Close releases whatever the destination owns.
	Close() error

	// String names the destination for logs.
	String() string
}

// FileDestination writes chunks to an open file with one bulk write each.
type FileDestination struct {
	w    io.WriteCloser
	name string
}

// NewFileDestination wraps w, typically an *os.File, named name in logs.
func NewFileDestination(w io.WriteCloser, name string) *FileDestination {
	return &FileDestination{w: w, name: name}
}

// Send writes p and fails unless every byte was accepted.
func (d *FileDestination) Send(p []byte) error {
	n, err := d.w.Write(p)
	if err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", core.ErrIO, d.name, err)
	}
	if n != len(p) {
		return fmt.Errorf("%w: short write to %s: %d of %d bytes", core.ErrIO, d.name, n, len(p))
	}
	return nil
}

// Close closes the file.
func (d *FileDestination) Close() error {
	if err := d.w.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", core.ErrIO, d.name, err)
	}
	return nil
}

func (d *FileDestination) String() string { return d.name }

// FramedDestination wraps chunks in serial markers and writes them to a
// transport the caller owns. Each frame goes out in a single Write so that
// sinks sharing one transport never interleave inside a frame.
type FramedDestination struct {
	w       io.Writer
	scratch []byte
}

// NewFramedDestination wraps the serial transport w.
func NewFramedDestination(w io.Writer) *FramedDestination {
	return &FramedDestination{w: w}
}

// Send writes one framed chunk.
func (d *FramedDestination) Send(p []byte) error {
	d.scratch = serial.AppendFrame(d.scratch[:0], p)
	n, err := d.w.Write(d.scratch)
	if err != nil {
		return fmt.Errorf("%w: serial write: %v", core.ErrIO, err)
	}
	if n != len(d.scratch) {
		return fmt.Errorf("%w: short serial write: %d of %d bytes", core.ErrIO, n, len(d.scratch))
	}
	return nil
}

// Close is a no-op; the transport outlives the session.
func (d *FramedDestination) Close() error { return nil }

func (d *FramedDestination) String() string { return "serial" }
