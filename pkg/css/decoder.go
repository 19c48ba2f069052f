package css

import (
	"fmt"
	"math"
	"sync"
	"time"

	"Audiomodem/pkg/frame"
	"Audiomodem/pkg/modem"

	"gonum.org/v1/gonum/floats"
)

// SymbolDecision is the outcome of correlating one symbol window against
// every template. Dominance is the best correlation over the second best.
type SymbolDecision struct {
	Shift     int
	Magnitude float64
	Dominance float64
}

type templateBank struct {
	templates [][]float64
	norms     []float64
}

func newTemplateBank(p ChirpParams) *templateBank {
	ref := GenerateReferenceChirp(p)
	window := symbolWindow(p)
	bank := &templateBank{
		templates: make([][]float64, p.m),
		norms:     make([]float64, p.m),
	}
	for shift := range bank.templates {
		bank.templates[shift] = shiftedSymbol(p, ref, window, shift)
		norm := floats.Norm(bank.templates[shift], 2)
		if norm == 0 {
			norm = 1
		}
		bank.norms[shift] = norm
	}
	return bank
}

func (b *templateBank) demod(segment []float64) SymbolDecision {
	best, second := math.Inf(-1), math.Inf(-1)
	shift := 0
	for i, tmpl := range b.templates {
		c := floats.Dot(tmpl, segment) / b.norms[i]
		switch {
		case c > best:
			second = best
			best, shift = c, i
		case c > second:
			second = c
		}
	}
	if len(b.templates) == 1 {
		second = best
	}
	return SymbolDecision{
		Shift:     shift,
		Magnitude: best,
		Dominance: best / (second + 1e-6),
	}
}

type DecodeOptions struct {
	Preamble bool
	Sync     bool
	Tones    bool
}

// DefaultDecodeOptions match a Modulator without tones.
var DefaultDecodeOptions = DecodeOptions{Preamble: true, Sync: true}

// Decoder demodulates single, fully captured and aligned CSS frames.
// Template banks are built on first use for each ChirpParams and kept.
// A Decoder is safe for concurrent use.
type Decoder struct {
	mu    sync.Mutex
	banks map[ChirpParams]*templateBank
}

func NewDecoder() *Decoder {
	return &Decoder{banks: make(map[ChirpParams]*templateBank)}
}

func (d *Decoder) bank(p ChirpParams) *templateBank {
	d.mu.Lock()
	defer d.mu.Unlock()

	if b, ok := d.banks[p]; ok {
		return b
	}
	b := newTemplateBank(p)
	d.banks[p] = b
	return b
}

// DemodSymbol decides a single window of exactly p.Ns() samples.
func (d *Decoder) DemodSymbol(segment []float64, p ChirpParams) (SymbolDecision, error) {
	if len(segment) != p.ns {
		return SymbolDecision{}, fmt.Errorf("%w: symbol window has %d samples, want %d", modem.ErrConfiguration, len(segment), p.ns)
	}
	return d.bank(p).demod(segment), nil
}

// dataRegion strips the tones and the preamble and sync symbols.
func dataRegion(samples []float64, p ChirpParams, opts DecodeOptions) ([]float64, error) {
	if opts.Tones {
		if n := modem.ToneSamples(p.fs); len(samples) >= 2*n {
			samples = samples[n : len(samples)-n]
		}
	}
	skip := 0
	if opts.Preamble {
		skip += p.preambleUp + p.preambleDown
	}
	if opts.Sync {
		skip += len(SyncPattern)
	}
	offset := skip * p.ns
	if len(samples) <= offset {
		return nil, fmt.Errorf("%w: %d samples do not reach past %d preamble and sync symbols", ErrInsufficientSymbols, len(samples), skip)
	}
	return samples[offset:], nil
}

// Demodulate returns a decision for every complete symbol after the preamble and sync.
func (d *Decoder) Demodulate(samples []float64, p ChirpParams, opts DecodeOptions) ([]SymbolDecision, error) {
	data, err := dataRegion(samples, p, opts)
	if err != nil {
		return nil, err
	}
	bank := d.bank(p)
	decisions := make([]SymbolDecision, len(data)/p.ns)
	for i := range decisions {
		decisions[i] = bank.demod(data[i*p.ns : (i+1)*p.ns])
	}
	return decisions, nil
}

func (d *Decoder) symbols(bank *templateBank, data []float64, p ChirpParams, from, to int) ([]byte, error) {
	out := make([]byte, 0, to-from)
	for i := from; i < to; i++ {
		decision := bank.demod(data[i*p.ns : (i+1)*p.ns])
		symbol, err := ShiftToSymbol(decision.Shift, p)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(symbol))
	}
	return out, nil
}

// Decode recovers exactly one frame. The header is demodulated first and
// its length decides how many further symbols are needed.
func (d *Decoder) Decode(samples []float64, p ChirpParams, opts DecodeOptions) (frame.Decoded, error) {
	data, err := dataRegion(samples, p, opts)
	if err != nil {
		return frame.Decoded{}, err
	}
	complete := len(data) / p.ns
	if complete < frame.HeaderLength {
		return frame.Decoded{}, fmt.Errorf("%w: %d symbols cannot hold a header", ErrInsufficientSymbols, complete)
	}

	bank := d.bank(p)
	raw, err := d.symbols(bank, data, p, 0, frame.HeaderLength)
	if err != nil {
		return frame.Decoded{}, err
	}
	header, err := frame.ParseHeader(raw)
	if err != nil {
		return frame.Decoded{}, err
	}
	total := frame.Size(header)
	if complete < total {
		return frame.Decoded{}, fmt.Errorf("%w: header wants %d symbols, waveform holds %d", ErrInsufficientSymbols, total, complete)
	}
	rest, err := d.symbols(bank, data, p, frame.HeaderLength, total)
	if err != nil {
		return frame.Decoded{}, err
	}

	header, payload, err := frame.Parse(append(raw, rest...))
	if err != nil {
		return frame.Decoded{}, err
	}

	rssi := 10 * math.Log10(floats.Dot(data, data)/float64(len(data))+1e-12)
	return frame.Decoded{
		Metadata: frame.Metadata{
			Timestamp: time.Now(),
			SF:        p.sf,
			Bandwidth: p.bw,
			RSSI:      &rssi,
		},
		Header:  header,
		Payload: payload,
	}, nil
}

var defaultDecoder = NewDecoder()

// Decode uses a package-wide Decoder.
func Decode(samples []float64, p ChirpParams, opts DecodeOptions) (frame.Decoded, error) {
	return defaultDecoder.Decode(samples, p, opts)
}
