package css

import (
	"fmt"
	"math"

	"Audiomodem/pkg/frame"
	"Audiomodem/pkg/modem"
)

// PeakLevel is the absolute peak of every synthesized waveform.
const PeakLevel = 0.8

type SynthesisOptions struct {
	Preamble bool
	Sync     bool
	Tones    bool
}

// Synthesize renders symbols, optionally preceded by the preamble and sync
// pattern and bracketed by the start and end tones, normalized to PeakLevel.
func Synthesize(symbols []byte, p ChirpParams, opts SynthesisOptions) ([]float64, error) {
	ref := GenerateReferenceChirp(p)
	window := symbolWindow(p)

	var out []float64
	if opts.Tones {
		out = append(out, modem.StartTone(p.fs)...)
	}
	if opts.Preamble {
		up := shiftedSymbol(p, ref, window, 0)
		for range p.preambleUp {
			out = append(out, up...)
		}
		down := downChirp(p, ref, window)
		for range p.preambleDown {
			out = append(out, down...)
		}
	}

	var body []byte
	if opts.Sync {
		body = append(body, SyncPattern[:]...)
	}
	body = append(body, symbols...)

	cache := make(map[int][]float64)
	for _, symbol := range body {
		shift, err := SymbolToShift(int(symbol), p)
		if err != nil {
			return nil, err
		}
		chirp, ok := cache[shift]
		if !ok {
			chirp = shiftedSymbol(p, ref, window, shift)
			cache[shift] = chirp
		}
		out = append(out, chirp...)
	}

	if opts.Tones {
		out = append(out, modem.EndTone(p.fs)...)
	}

	peak := 0.0
	for _, v := range out {
		peak = max(peak, math.Abs(v))
	}
	if peak == 0 {
		peak = 1
	}
	for i := range out {
		out[i] = PeakLevel * out[i] / peak
	}
	return out, nil
}

// Modulator assembles complete CSS transmissions.
type Modulator struct {
	Params          ChirpParams
	Repeats         int
	FEC             bool
	InterleaveDepth int
	IncludeTones    bool
}

func NewModulator(p ChirpParams) *Modulator {
	return &Modulator{
		Params:          p,
		Repeats:         1,
		InterleaveDepth: 1,
	}
}

// Modulate sends the frame bytes one per symbol. The FEC flag in header is
// replaced by m.FEC; FEC and interleaving are not available yet and fail
// with modem.ErrNotImplemented.
func (m *Modulator) Modulate(header frame.Header, payload []byte) ([]float64, error) {
	if m.Repeats <= 0 {
		return nil, fmt.Errorf("%w: repeats must be positive, got %d", modem.ErrConfiguration, m.Repeats)
	}
	if m.InterleaveDepth < 1 {
		return nil, fmt.Errorf("%w: interleave depth must be at least 1, got %d", modem.ErrConfiguration, m.InterleaveDepth)
	}

	if m.FEC {
		header.Flags |= frame.FlagFEC
	} else {
		header.Flags &^= frame.FlagFEC
	}
	frameBytes, err := frame.Build(header, payload)
	if err != nil {
		return nil, err
	}

	if m.FEC {
		return nil, fmt.Errorf("%w: forward error correction for CSS", modem.ErrNotImplemented)
	}
	if m.InterleaveDepth > 1 {
		return nil, fmt.Errorf("%w: interleave depth %d", modem.ErrNotImplemented, m.InterleaveDepth)
	}

	single, err := Synthesize(frameBytes, m.Params, SynthesisOptions{
		Preamble: true,
		Sync:     true,
		Tones:    m.IncludeTones,
	})
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(single)*m.Repeats)
	for range m.Repeats {
		out = append(out, single...)
	}
	return out, nil
}

// ModulateText sends text as a UTF-8 payload with rate code 0.
func (m *Modulator) ModulateText(text string) ([]float64, error) {
	payload := []byte(text)
	header := frame.NewHeader(0, len(payload))
	header.Version = modem.DefaultVersion
	return m.Modulate(header, payload)
}

var _ modem.FrameModulator = (*Modulator)(nil)
