package modem

import (
	"fmt"
	"math"
	"sync"
)

type referenceKey struct {
	samplesPerSymbol int
	freq             float64
}

type referenceTable struct {
	cos, sin []float64
}

// AFSK is a binary FSK codec: a 1 bit is sent at MarkFrequency, a 0 bit at
// SpaceFrequency. Reference tables are cached per symbol length and frequency;
// an AFSK value is safe for concurrent use.
type AFSK struct {
	sampleRate int

	mu      sync.Mutex
	tables  map[referenceKey]referenceTable
	windows map[int][]float64
}

func NewAFSK(sampleRate int) *AFSK {
	return &AFSK{
		sampleRate: sampleRate,
		tables:     make(map[referenceKey]referenceTable),
		windows:    make(map[int][]float64),
	}
}

func (a *AFSK) SampleRate() int {
	return a.sampleRate
}

// SamplesPerSymbol validates baud against the sample rate.
func (a *AFSK) SamplesPerSymbol(baud int) (int, error) {
	if a.sampleRate <= 0 {
		return 0, fmt.Errorf("%w: sample rate must be positive", ErrConfiguration)
	}
	if baud <= 0 {
		return 0, fmt.Errorf("%w: baud must be positive, got %d", ErrConfiguration, baud)
	}
	if a.sampleRate%baud != 0 {
		return 0, fmt.Errorf("%w: sample rate %d is not a multiple of baud %d", ErrConfiguration, a.sampleRate, baud)
	}
	return a.sampleRate / baud, nil
}

// Modulate renders bits as a continuous-phase waveform, each symbol shaped by a
// raised-cosine window.
func (a *AFSK) Modulate(bits []bool, baud int) ([]float64, error) {
	sps, err := a.SamplesPerSymbol(baud)
	if err != nil {
		return nil, err
	}
	if len(bits) == 0 {
		return []float64{}, nil
	}
	window, err := a.symbolWindow(sps)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(bits)*sps)
	phase := 0.0
	for _, bit := range bits {
		freq := SpaceFrequency
		if bit {
			freq = MarkFrequency
		}
		step := 2 * math.Pi * freq / float64(a.sampleRate)
		for i := 0; i < sps; i++ {
			out = append(out, math.Sin(phase+step*float64(i))*window[i])
		}
		phase = math.Mod(phase+step*float64(sps), 2*math.Pi)
	}
	return out, nil
}

// Demodulate slices samples into whole symbols and compares quadrature
// energy at the mark and space frequencies. Trailing partial symbols are dropped.
func (a *AFSK) Demodulate(samples []float64, baud int) ([]bool, error) {
	sps, err := a.SamplesPerSymbol(baud)
	if err != nil {
		return nil, err
	}
	count := len(samples) / sps
	if count == 0 {
		return []bool{}, nil
	}

	mark := a.reference(sps, MarkFrequency)
	space := a.reference(sps, SpaceFrequency)

	bits := make([]bool, count)
	for i := range bits {
		symbol := samples[i*sps : (i+1)*sps]
		bits[i] = quadraturePower(symbol, mark) >= quadraturePower(symbol, space)
	}
	return bits, nil
}

func quadraturePower(symbol []float64, ref referenceTable) float64 {
	i := dotProduct(symbol, ref.cos)
	q := dotProduct(symbol, ref.sin)
	return i*i + q*q
}

func (a *AFSK) reference(sps int, freq float64) referenceTable {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := referenceKey{sps, freq}
	if table, ok := a.tables[key]; ok {
		return table
	}
	table := referenceTable{
		cos: make([]float64, sps),
		sin: make([]float64, sps),
	}
	for i := 0; i < sps; i++ {
		phase := 2 * math.Pi * freq * float64(i) / float64(a.sampleRate)
		table.cos[i] = math.Cos(phase)
		table.sin[i] = math.Sin(phase)
	}
	a.tables[key] = table
	return table
}

func (a *AFSK) symbolWindow(sps int) ([]float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if w, ok := a.windows[sps]; ok {
		return w, nil
	}
	w, err := RaisedCosineWindow(sps, SymbolRampFraction)
	if err != nil {
		return nil, err
	}
	a.windows[sps] = w
	return w, nil
}
