// Package device connects the modem to audio hardware and simulated channels.
package device

import (
	"context"
	"errors"
)

// Device is a full-duplex, callback-driven mono audio device. The callback
// receives one input buffer and fills one output buffer per period.
type Device interface {
	Start(callback func(in, out []int32))
	Stop()
}

const BufferSize = 512

var ErrUnsupported = errors.New("audio backend not supported on this platform")

// AudioSource yields successive chunks of mono samples in [-1, 1]. ReadChunk
// returns io.EOF when the stream is finite and exhausted.
type AudioSource interface {
	SampleRate() int
	ReadChunk(ctx context.Context) ([]float64, error)
	Close() error
}

// AudioSink plays samples and returns once playback has finished.
type AudioSink interface {
	Play(ctx context.Context, samples []float64, deviceName string) error
}

type WaveFileCodec interface {
	Read(path string) ([]float64, error)
	Write(path string, samples []float64) error
}
