package modem

import "Audiomodem/pkg/frame"

// BitModem maps a bitstream to samples and back at a given symbol rate.
type BitModem interface {
	Modulate(bits []bool, baud int) ([]float64, error)
	Demodulate(samples []float64, baud int) ([]bool, error)
}

// FrameModulator turns a header and payload into a complete transmission.
type FrameModulator interface {
	Modulate(header frame.Header, payload []byte) ([]float64, error)
}

var _ BitModem = (*AFSK)(nil)
