package wardrive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryN(t *testing.T) {
	s := NewEveryN(3)
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, s.Sample())
	}
	assert.Equal(t, []bool{false, false, true, false, false, true}, got)
}

func TestEveryNOneSamplesAll(t *testing.T) {
	for _, n := range []int{1, 0, -4} {
		s := NewEveryN(n)
		assert.True(t, s.Sample())
		assert.True(t, s.Sample())
	}
}

func TestRandomIsReproducible(t *testing.T) {
	a, b := NewRandom(20, 7), NewRandom(20, 7)
	hits := 0
	for i := 0; i < 2000; i++ {
		x := a.Sample()
		assert.Equal(t, x, b.Sample())
		if x {
			hits++
		}
	}
	assert.Greater(t, hits, 0)
	assert.Less(t, hits, 1000)
}

func TestNever(t *testing.T) {
	assert.False(t, Never{}.Sample())
}
