// Package speaker plays waveforms through the default system output using oto.
package speaker

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const pollInterval = 10 * time.Millisecond

// oto allows a single context per process.
var (
	contextOnce sync.Once
	otoContext  *oto.Context
	contextErr  error
	contextRate int
)

func sharedContext(sampleRate int) (*oto.Context, error) {
	contextOnce.Do(func() {
		var ready chan struct{}
		otoContext, ready, contextErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		})
		if contextErr == nil {
			<-ready
			contextRate = sampleRate
		}
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if contextRate != sampleRate {
		return nil, &RateError{Open: contextRate, Requested: sampleRate}
	}
	return otoContext, nil
}

type RateError struct {
	Open, Requested int
}

func (e *RateError) Error() string {
	return fmt.Sprintf("speaker: output already opened at %d Hz, cannot play at %d Hz", e.Open, e.Requested)
}

// Speaker is an AudioSink for the default output device.
type Speaker struct {
	SampleRate int
}

func New(sampleRate int) *Speaker {
	return &Speaker{SampleRate: sampleRate}
}

// Play blocks until samples have been played or ctx is done. oto always
// uses the default output, so a non-empty deviceName is only logged.
func (s *Speaker) Play(ctx context.Context, samples []float64, deviceName string) error {
	if deviceName != "" {
		log.Printf("[Speaker] device %q not selectable, using default output", deviceName)
	}
	c, err := sharedContext(s.SampleRate)
	if err != nil {
		return err
	}

	p := c.NewPlayer(bytes.NewReader(Encode(samples)))
	defer p.Close()
	p.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return p.Err()
}

// Encode converts samples to little-endian float32 PCM.
func Encode(samples []float64) []byte {
	out := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(float32(v)))
	}
	return out
}
