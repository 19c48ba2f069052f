package wavfile

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const DefaultChunkSize = 4800

// Source streams a WAV file in fixed-size chunks. It returns io.EOF once the
// PCM data is exhausted.
type Source struct {
	f          *os.File
	dec        *wav.Decoder
	buf        *audio.IntBuffer
	sampleRate int
	channels   int
	bitDepth   int
}

// Open prepares path for streaming. sampleRate is checked when positive;
// chunkSize is the number of mono samples per ReadChunk.
func Open(path string, sampleRate, chunkSize int) (*Source, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := openDecoder(f, sampleRate)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	channels := int(dec.NumChans)
	return &Source{
		f:   f,
		dec: dec,
		buf: &audio.IntBuffer{
			Format: dec.Format(),
			Data:   make([]int, chunkSize*channels),
		},
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   int(dec.BitDepth),
	}, nil
}

func (s *Source) SampleRate() int { return s.sampleRate }

func (s *Source) ReadChunk(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := s.dec.PCMBuffer(s.buf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, io.EOF
	}
	return toFloat(s.buf.Data[:n], s.channels, s.bitDepth), nil
}

func (s *Source) Close() error {
	return s.f.Close()
}
