package modem

import (
	"fmt"
	"math"
)

const (
	SampleRate = 48000

	MarkFrequency  = 1200.0
	SpaceFrequency = 2200.0

	StartToneFrequency = 1000.0
	EndToneFrequency   = 1500.0
	ToneDurationMs     = 250

	SymbolRampFraction = 0.05
	ToneRampFraction   = 0.02

	DefaultVolume  = 0.8
	DefaultVersion = 0x01
	DefaultFlags   = 0x00

	// EndTonePurity is the bin energy share above which an end tone reaching
	// the end of the receive buffer is taken as complete.
	EndTonePurity = 0.95

	// MaxPayloadLength bounds the receiver's history; longer frames can still be sent.
	MaxPayloadLength = 512
)

// BaudRates are indexed by rate code.
var BaudRates = []int{50, 100, 200}

// SyncWord marks the start of the frame bytes in an AFSK bitstream.
var SyncWord = []byte{0xDD, 0xAA}

func BaudFromRateCode(code uint8) (int, error) {
	if int(code) >= len(BaudRates) {
		return 0, fmt.Errorf("%w: invalid rate code %d", ErrConfiguration, code)
	}
	return BaudRates[code], nil
}

func RateCodeFromBaud(baud int) (uint8, error) {
	for i, b := range BaudRates {
		if b == baud {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported baud %d", ErrConfiguration, baud)
}

// ToneSamples is the length of the start and end tones at sampleRate.
func ToneSamples(sampleRate int) int {
	return int(math.Round(float64(sampleRate) * ToneDurationMs / 1000))
}

// PreambleSymbols is the number of alternating preamble bits sent at baud.
func PreambleSymbols(baud int) int {
	return max(1, int(math.Round(0.2*float64(baud))))
}

// TransmissionProfile describes the parameters of a single AFSK transmission.
type TransmissionProfile struct {
	Baud    int
	Repeats int
	Volume  float64
}

func (p TransmissionProfile) RateCode() (uint8, error) {
	return RateCodeFromBaud(p.Baud)
}
