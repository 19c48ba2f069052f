package device

import (
	"math"

	"golang.org/x/exp/rand"
)

// Channel models the acoustic path between a speaker and a microphone as a
// gain plus additive white Gaussian noise.
type Channel struct {
	Gain  float64 // 0 is treated as unity
	Noise float64 // noise standard deviation as a fraction of full scale
	Seed  uint64

	rng *rand.Rand
}

func (c *Channel) identity() bool {
	return (c.Gain == 0 || c.Gain == 1) && c.Noise == 0
}

// Apply transforms buf in place.
func (c *Channel) Apply(buf []int32) {
	if c == nil || c.identity() {
		return
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(c.Seed))
	}
	gain := c.Gain
	if gain == 0 {
		gain = 1
	}
	sigma := c.Noise * math.MaxInt32
	for i, v := range buf {
		x := float64(v) * gain
		if sigma > 0 {
			x += c.rng.NormFloat64() * sigma
		}
		buf[i] = clampi32(x)
	}
}
