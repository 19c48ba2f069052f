package modem

import (
	"context"
	"errors"
	"io"
	"testing"

	"Audiomodem/internel/signaltest"
	"Audiomodem/pkg/frame"
)

type sliceSource struct {
	chunks [][]float64
	err    error
}

func (s *sliceSource) ReadChunk(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.chunks) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func TestStreamChunks(t *testing.T) {
	const message = "streamed"
	h, waveform := transmission(t, message, 200, 2)
	src := &sliceSource{chunks: signaltest.Split(waveform, 9)}

	frames, errs := StreamChunks(context.Background(), src)
	var got []frame.Decoded
	for f := range frames {
		got = append(got, f)
	}
	if err := <-errs; err != nil {
		t.Fatalf("Expected a clean end of stream, but got %v", err)
	}
	checkFrames(t, got, 2, h, message, 200)
}

func TestStreamChunksSourceError(t *testing.T) {
	broken := errors.New("device unplugged")
	src := &sliceSource{chunks: [][]float64{make([]float64, 100)}, err: broken}

	frames, errs := StreamChunks(context.Background(), src)
	for range frames {
		t.Error("Expected no frames")
	}
	if err := <-errs; !errors.Is(err, broken) {
		t.Errorf("Expected %v, but got %v", broken, err)
	}
}

func TestStreamChunksCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	frames, errs := StreamChunks(ctx, &sliceSource{})
	for range frames {
	}
	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, but got %v", err)
	}
}
