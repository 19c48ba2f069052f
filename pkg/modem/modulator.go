package modem

import (
	"fmt"
	"log"

	"Audiomodem/pkg/frame"
)

// Modulator assembles complete AFSK transmissions:
// start tone, preamble, sync word, frame bits, end tone.
type Modulator struct {
	AFSK    *AFSK
	Repeats int
	Volume  float64
}

func NewModulator(sampleRate int) *Modulator {
	return &Modulator{
		AFSK:    NewAFSK(sampleRate),
		Repeats: 1,
		Volume:  DefaultVolume,
	}
}

// NewModulatorFromProfile builds a Modulator for p at SampleRate.
func NewModulatorFromProfile(p TransmissionProfile) (*Modulator, error) {
	if _, err := p.RateCode(); err != nil {
		return nil, err
	}
	m := NewModulator(SampleRate)
	m.Repeats = p.Repeats
	if p.Volume > 0 {
		m.Volume = p.Volume
	}
	return m, nil
}

// Modulate renders header and payload at the baud named by header.RateCode.
func (m *Modulator) Modulate(header frame.Header, payload []byte) ([]float64, error) {
	if m.Repeats <= 0 {
		return nil, fmt.Errorf("%w: repeats must be positive, got %d", ErrConfiguration, m.Repeats)
	}
	baud, err := BaudFromRateCode(header.RateCode)
	if err != nil {
		return nil, err
	}
	frameBytes, err := frame.Build(header, payload)
	if err != nil {
		return nil, err
	}

	preamble := make([]bool, PreambleSymbols(baud))
	for i := range preamble {
		preamble[i] = i%2 == 1
	}
	bits := append(preamble, BytesToBits(SyncWord)...)
	bits = append(bits, BytesToBits(frameBytes)...)

	data, err := m.AFSK.Modulate(bits, baud)
	if err != nil {
		return nil, err
	}

	sampleRate := m.AFSK.SampleRate()
	start := StartTone(sampleRate)
	end := EndTone(sampleRate)

	single := make([]float64, 0, len(start)+len(data)+len(end))
	single = append(single, start...)
	single = append(single, data...)
	single = append(single, end...)

	volume := m.Volume
	if volume <= 0 {
		volume = DefaultVolume
	}
	out := make([]float64, 0, len(single)*m.Repeats)
	for range m.Repeats {
		for _, v := range single {
			out = append(out, volume*v)
		}
	}

	debugLog("[Modulation] baud: %d bits: %d samples: %d repeats: %d\n", baud, len(bits), len(out), m.Repeats)
	return out, nil
}

// ModulateText sends text as a UTF-8 payload at the given baud.
func (m *Modulator) ModulateText(text string, baud int) ([]float64, error) {
	code, err := RateCodeFromBaud(baud)
	if err != nil {
		return nil, err
	}
	payload := []byte(text)
	header := frame.NewHeader(code, len(payload))
	header.Version = DefaultVersion
	header.Flags = DefaultFlags
	return m.Modulate(header, payload)
}

// Debug enables verbose per-window logging.
var Debug = false

func debugLog(format string, args ...any) {
	if Debug {
		log.Printf(format, args...)
	}
}

var _ FrameModulator = (*Modulator)(nil)
