// Package css implements chirp spread spectrum modulation: every frame byte
// becomes one cyclically shifted linear up-chirp.
package css

import (
	"fmt"
	"math"

	"Audiomodem/pkg/modem"
)

const (
	DefaultSF             = 8
	DefaultBandwidth      = 1000.0
	DefaultCenter         = 2000.0
	DefaultPreambleUp     = 10
	DefaultPreambleDown   = 2
	DefaultWindowFraction = 0.025

	// MaxSF keeps one byte per symbol.
	MaxSF = 8
)

// SyncPattern follows the preamble of every transmission.
var SyncPattern = [2]byte{0x2D, 0xD4}

// ChirpParams is an immutable, validated CSS configuration.
// Build it with NewChirpParams; the zero value is not usable.
type ChirpParams struct {
	sf             int
	bw             float64
	fc             float64
	fs             int
	preambleUp     int
	preambleDown   int
	windowFraction float64

	m    int
	tsym float64
	ns   int
	f0   float64
	k    float64
}

type Option func(*ChirpParams)

func WithSampleRate(fs int) Option {
	return func(p *ChirpParams) { p.fs = fs }
}

func WithPreamble(up, down int) Option {
	return func(p *ChirpParams) {
		p.preambleUp = up
		p.preambleDown = down
	}
}

func WithWindowFraction(fraction float64) Option {
	return func(p *ChirpParams) { p.windowFraction = fraction }
}

func NewChirpParams(sf int, bw, fc float64, opts ...Option) (ChirpParams, error) {
	p := ChirpParams{
		sf:             sf,
		bw:             bw,
		fc:             fc,
		fs:             modem.SampleRate,
		preambleUp:     DefaultPreambleUp,
		preambleDown:   DefaultPreambleDown,
		windowFraction: DefaultWindowFraction,
	}
	for _, opt := range opts {
		opt(&p)
	}

	switch {
	case p.sf <= 0 || p.sf > MaxSF:
		return ChirpParams{}, fmt.Errorf("%w: spreading factor must be in 1..%d, got %d", modem.ErrConfiguration, MaxSF, p.sf)
	case p.bw <= 0:
		return ChirpParams{}, fmt.Errorf("%w: bandwidth must be positive, got %g", modem.ErrConfiguration, p.bw)
	case p.fs <= 0:
		return ChirpParams{}, fmt.Errorf("%w: sample rate must be positive, got %d", modem.ErrConfiguration, p.fs)
	case p.windowFraction <= 0 || p.windowFraction >= 0.5:
		return ChirpParams{}, fmt.Errorf("%w: window fraction must be in (0, 0.5), got %g", modem.ErrConfiguration, p.windowFraction)
	case p.preambleUp < 0 || p.preambleDown < 0:
		return ChirpParams{}, fmt.Errorf("%w: preamble counts must not be negative", modem.ErrConfiguration)
	}

	p.m = 1 << p.sf
	p.tsym = float64(p.m) / p.bw
	p.ns = int(math.Round(float64(p.fs) * p.tsym))
	p.f0 = p.fc - p.bw/2
	p.k = p.bw / p.tsym

	switch {
	case p.f0 <= 0:
		return ChirpParams{}, fmt.Errorf("%w: sweep starts at %g Hz", modem.ErrConfiguration, p.f0)
	case p.f0+p.bw >= float64(p.fs)/2:
		return ChirpParams{}, fmt.Errorf("%w: sweep ends at %g Hz, above Nyquist", modem.ErrConfiguration, p.f0+p.bw)
	case p.ns < p.m:
		return ChirpParams{}, fmt.Errorf("%w: %d samples per symbol cannot hold %d shifts", modem.ErrConfiguration, p.ns, p.m)
	}
	return p, nil
}

// DefaultChirpParams is sf 8, 1 kHz bandwidth centred on 2 kHz.
func DefaultChirpParams() ChirpParams {
	p, err := NewChirpParams(DefaultSF, DefaultBandwidth, DefaultCenter)
	if err != nil {
		panic(err)
	}
	return p
}

func (p ChirpParams) SF() int                 { return p.sf }
func (p ChirpParams) Bandwidth() float64      { return p.bw }
func (p ChirpParams) Center() float64         { return p.fc }
func (p ChirpParams) SampleRate() int         { return p.fs }
func (p ChirpParams) PreambleUp() int         { return p.preambleUp }
func (p ChirpParams) PreambleDown() int       { return p.preambleDown }
func (p ChirpParams) WindowFraction() float64 { return p.windowFraction }

// M is the number of distinct shifts, 2^sf.
func (p ChirpParams) M() int { return p.m }

// Tsym is the symbol period in seconds.
func (p ChirpParams) Tsym() float64 { return p.tsym }

// Ns is the number of samples per symbol.
func (p ChirpParams) Ns() int { return p.ns }

// F0 is the lowest frequency of the sweep.
func (p ChirpParams) F0() float64 { return p.f0 }

// K is the sweep rate in Hz per second.
func (p ChirpParams) K() float64 { return p.k }

func (p ChirpParams) String() string {
	return fmt.Sprintf("ChirpParams{sf=%d bw=%g fc=%g fs=%d M=%d Ns=%d}", p.sf, p.bw, p.fc, p.fs, p.m, p.ns)
}
