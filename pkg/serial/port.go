package serial

import (
	"fmt"
	"strings"
	"sync"
	"time"

	bugst "go.bug.st/serial"
)

// DefaultBaud is the console rate the firmware's UART0 runs at.
const DefaultBaud = 115200

// portIO is the subset of go.bug.st/serial.Port a Port needs.
type portIO interface {
	Write(p []byte) (int, error)
	Drain() error
	Close() error
}

// Port writes the framed stream to a UART.
type Port struct {
	mu   sync.Mutex
	port portIO
	name string
}

// Open opens the UART at name (8N1).
func Open(name string, baud int) (*Port, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := bugst.Open(name, &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", name, err)
	}
	return &Port{port: p, name: name}, nil
}

// Write writes all of b and waits for it to leave the output buffer.
func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	written := 0
	for written < len(b) {
		n, err := p.port.Write(b[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("UART write to %s failed: %w", p.name, err)
		}
		if n == 0 {
			return written, fmt.Errorf("UART write to %s stalled at %d of %d bytes", p.name, written, len(b))
		}
	}
	return written, p.drain()
}

// drain retries interrupted system calls a few times.
func (p *Port) drain() error {
	const maxRetries = 3
	delay := 2 * time.Millisecond
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = p.port.Drain(); err == nil || !isInterruptedSystemCall(err) {
			break
		}
		time.Sleep(delay)
		delay *= 2
	}
	if err != nil {
		return fmt.Errorf("UART drain on %s failed: %w", p.name, err)
	}
	return nil
}

func isInterruptedSystemCall(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "interrupted system call") || strings.Contains(s, "eintr")
}

// Close closes the UART.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.port.Close(); err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}

func (p *Port) String() string { return p.name }
