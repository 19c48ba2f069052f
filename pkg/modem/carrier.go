package modem

import (
	"fmt"
	"math"
)

type CarrierConfig struct {
	Amplitude  float64
	Freq       float64
	Phase      float64
	SampleRate float64
	Size       int
}

func (p CarrierConfig) New() []float64 {
	signal := make([]float64, p.Size)
	for i := 0; i < p.Size; i++ {
		t := float64(i) / p.SampleRate
		signal[i] = p.Amplitude * math.Sin(2*math.Pi*p.Freq*t+p.Phase)
	}
	return signal
}

// ToneConfig describes a unit-amplitude sine tone shaped by raised-cosine ramps.
type ToneConfig struct {
	Freq         float64
	Duration     float64 // seconds
	SampleRate   int
	RampFraction float64
}

func (p ToneConfig) New() ([]float64, error) {
	if p.Duration <= 0 {
		return nil, fmt.Errorf("%w: tone duration must be positive", ErrConfiguration)
	}
	size := max(1, int(math.Round(p.Duration*float64(p.SampleRate))))
	tone := CarrierConfig{
		Amplitude:  1,
		Freq:       p.Freq,
		SampleRate: float64(p.SampleRate),
		Size:       size,
	}.New()
	if p.RampFraction > 0 {
		window, err := RaisedCosineWindow(size, p.RampFraction)
		if err != nil {
			return nil, err
		}
		for i := range tone {
			tone[i] *= window[i]
		}
	}
	return tone, nil
}

func StartTone(sampleRate int) []float64 {
	tone, _ := ToneConfig{Freq: StartToneFrequency, Duration: ToneDurationMs / 1000.0, SampleRate: sampleRate, RampFraction: ToneRampFraction}.New()
	return tone
}

func EndTone(sampleRate int) []float64 {
	tone, _ := ToneConfig{Freq: EndToneFrequency, Duration: ToneDurationMs / 1000.0, SampleRate: sampleRate, RampFraction: ToneRampFraction}.New()
	return tone
}
