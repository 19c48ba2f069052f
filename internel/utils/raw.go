package utils

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
)

const DefaultChunkSize = 4800

// RawSource streams headerless little-endian float32 mono samples, such as
// the output of an external capture tool piped through stdin.
type RawSource struct {
	r      io.Reader
	closer io.Closer
	rate   int
	buf    []byte
	carry  int
}

func NewRawSource(r io.Reader, sampleRate, chunkSize int) *RawSource {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	s := &RawSource{r: r, rate: sampleRate, buf: make([]byte, 4*chunkSize)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func OpenRawSource(filename string, sampleRate, chunkSize int) (*RawSource, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	return NewRawSource(file, sampleRate, chunkSize), nil
}

func (s *RawSource) SampleRate() int { return s.rate }

// ReadChunk returns at most one chunk of whole samples. A trailing partial
// sample is discarded at end of stream.
func (s *RawSource) ReadChunk(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := io.ReadAtLeast(s.r, s.buf[s.carry:], 4-s.carry)
	n += s.carry
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	if n < 4 {
		return nil, io.EOF
	}

	count := n / 4
	out := make([]float64, count)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(s.buf[4*i:])))
	}
	s.carry = copy(s.buf, s.buf[4*count:n])
	return out, nil
}

func (s *RawSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
