package serial

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/irctrakz/ghostcap/pkg/logging"
	"golang.org/x/net/netutil"
)

const clientWriteTimeout = 2 * time.Second

// Broadcaster serves the framed stream over TCP to host tools that are not
// attached to the UART. Every Write goes to every connected client; a client
// that cannot keep up is dropped. Writes never fail, so a Broadcaster can sit
// in an io.MultiWriter next to the UART.
type Broadcaster struct {
	ln net.Listener

	writeMu sync.Mutex // orders frames across concurrent Writes

	mu      sync.Mutex
	clients map[net.Conn]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// Listen starts accepting at most maxClients concurrent host connections on addr.
func Listen(addr string, maxClients int) (*Broadcaster, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if maxClients <= 0 {
		maxClients = 1
	}
	b := &Broadcaster{
		ln:      netutil.LimitListener(ln, maxClients),
		clients: make(map[net.Conn]struct{}),
	}
	b.wg.Add(1)
	go b.acceptLoop()
	return b, nil
}

// Addr returns the listening address.
func (b *Broadcaster) Addr() net.Addr { return b.ln.Addr() }

func (b *Broadcaster) acceptLoop() {
	defer b.wg.Done()
	log := logging.Tag(logging.TagSink)
	for {
		c, err := b.ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.WithError(err).Warn("Host tool accept failed")
			}
			return
		}
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			c.Close()
			return
		}
		b.clients[c] = struct{}{}
		b.mu.Unlock()
		log.WithField("remote", c.RemoteAddr().String()).Info("Host tool connected")
	}
}

// Write sends p to every client. Clients are written in parallel outside
// the client lock, so one stalled host tool delays a frame by at most
// clientWriteTimeout and never blocks accepts.
func (b *Broadcaster) Write(p []byte) (int, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	conns := make([]net.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c)
	}
	b.mu.Unlock()
	if len(conns) == 0 {
		return len(p), nil
	}

	failed := make([]error, len(conns))
	var wg sync.WaitGroup
	for i, c := range conns {
		wg.Add(1)
		go func(i int, c net.Conn) {
			defer wg.Done()
			_ = c.SetWriteDeadline(time.Now().Add(clientWriteTimeout))
			_, failed[i] = c.Write(p)
		}(i, c)
	}
	wg.Wait()

	for i, err := range failed {
		if err != nil {
			b.drop(conns[i], err)
		}
	}
	return len(p), nil
}

func (b *Broadcaster) drop(c net.Conn, err error) {
	b.mu.Lock()
	_, ok := b.clients[c]
	delete(b.clients, c)
	b.mu.Unlock()
	c.Close()
	if ok {
		logging.Tag(logging.TagSink).WithError(err).
			WithField("remote", c.RemoteAddr().String()).Warn("Dropping host tool")
	}
}

// Clients returns the number of connected host tools.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close stops accepting and disconnects every client.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for c := range b.clients {
		c.Close()
		delete(b.clients, c)
	}
	b.mu.Unlock()
	err := b.ln.Close()
	b.wg.Wait()
	return err
}
