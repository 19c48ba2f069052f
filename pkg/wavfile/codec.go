// Package wavfile reads and writes mono modem waveforms as PCM WAV files.
//
// Samples are float64 values in [-1, 1]. Integer PCM is normalised by the
// full-scale value of its bit depth; multi-channel files keep only the first
// channel.
package wavfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	pcmFormat       = 1
	DefaultBitDepth = 16
)

// Codec converts between WAV files and sample slices at a fixed sample rate.
type Codec struct {
	SampleRate int
	BitDepth   int // bit depth used by Write, 0 means DefaultBitDepth
}

func New(sampleRate int) Codec {
	return Codec{SampleRate: sampleRate, BitDepth: DefaultBitDepth}
}

func (c Codec) bitDepth() int {
	if c.BitDepth == 0 {
		return DefaultBitDepth
	}
	return c.BitDepth
}

// Read decodes the whole file at path.
func (c Codec) Read(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := openDecoder(f, c.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return toFloat(buf.Data, int(dec.NumChans), int(dec.BitDepth)), nil
}

// Write encodes samples as mono PCM, creating parent directories as needed.
// Samples outside [-1, 1] are clipped.
func (c Codec) Write(path string, samples []float64) error {
	depth := c.bitDepth()
	if _, err := fullScale(depth); err != nil {
		return err
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: %d Hz", ErrSampleRate, c.SampleRate)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, c.SampleRate, depth, 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		Data:           fromFloat(samples, depth),
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// openDecoder validates the header and checks the sample rate when
// sampleRate is positive.
func openDecoder(f *os.File, sampleRate int) (*wav.Decoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	dec.ReadInfo()
	if dec.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("%w: audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	if _, err := fullScale(int(dec.BitDepth)); err != nil {
		return nil, err
	}
	if dec.NumChans == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrUnsupportedFormat)
	}
	if sampleRate > 0 && int(dec.SampleRate) != sampleRate {
		return nil, fmt.Errorf("%w: file has %d Hz, expected %d Hz", ErrSampleRate, dec.SampleRate, sampleRate)
	}
	return dec, nil
}

func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32768, nil
	case 24:
		return 8388608, nil
	case 32:
		return 2147483648, nil
	}
	return 0, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
}

// toFloat keeps channel 0 of interleaved data.
func toFloat(data []int, channels, bitDepth int) []float64 {
	scale, _ := fullScale(bitDepth)
	if channels < 1 {
		channels = 1
	}
	out := make([]float64, 0, len(data)/channels)
	for i := 0; i < len(data); i += channels {
		out = append(out, float64(data[i])/scale)
	}
	return out
}

func fromFloat(samples []float64, bitDepth int) []int {
	scale, _ := fullScale(bitDepth)
	peak := scale - 1
	out := make([]int, len(samples))
	for i, s := range samples {
		v := s * scale
		if v > peak {
			v = peak
		} else if v < -scale {
			v = -scale
		}
		out[i] = int(v)
	}
	return out
}
