package wardrive

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// Sampler decides whether one occurrence of a repeated event gets logged.
type Sampler interface {
	Sample() bool
}

// EveryN samples the Nth, 2Nth, ... occurrence. N <= 1 samples everything.
type EveryN struct {
	n     uint64
	count uint64
}

// NewEveryN returns a deterministic 1-in-n sampler.
func NewEveryN(n int) *EveryN {
	if n < 1 {
		n = 1
	}
	return &EveryN{n: uint64(n)}
}

// Sample implements Sampler.
func (s *EveryN) Sample() bool {
	return atomic.AddUint64(&s.count, 1)%s.n == 0
}

// Random samples each occurrence with probability 1/n.
type Random struct {
	mu sync.Mutex
	r  *rand.Rand
	n  int
}

// NewRandom returns a seeded 1-in-n sampler.
func NewRandom(n int, seed int64) *Random {
	if n < 1 {
		n = 1
	}
	return &Random{r: rand.New(rand.NewSource(seed)), n: n}
}

// Sample implements Sampler.
func (s *Random) Sample() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(s.n) == 0
}

// Never is a Sampler that never samples.
type Never struct{}

// Sample implements Sampler.
func (Never) Sample() bool { return false }
