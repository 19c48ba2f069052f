package modem

import (
	"context"
	"errors"
	"io"

	"Audiomodem/pkg/frame"
)

// ChunkSource yields successive sample chunks and io.EOF at the end of a
// finite stream.
type ChunkSource interface {
	ReadChunk(ctx context.Context) ([]float64, error)
}

// StreamChunks runs a receiver over src in a new goroutine. Frames are sent
// as they decode; the error channel then receives exactly one value, nil when
// src ended with io.EOF, and both channels are closed.
func StreamChunks(ctx context.Context, src ChunkSource) (<-chan frame.Decoded, <-chan error) {
	return StreamChunksWith(ctx, src, NewDemodulator(SampleRate))
}

// StreamChunksWith is StreamChunks with a caller-configured receiver.
func StreamChunksWith(ctx context.Context, src ChunkSource, d *Demodulator) (<-chan frame.Decoded, <-chan error) {
	frames := make(chan frame.Decoded)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(frames)

		emit := func(decoded []frame.Decoded) bool {
			for _, f := range decoded {
				select {
				case frames <- f:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		for {
			chunk, err := src.ReadChunk(ctx)
			if errors.Is(err, io.EOF) {
				if !emit(d.Flush()) {
					errs <- ctx.Err()
					return
				}
				errs <- nil
				return
			}
			if err != nil {
				errs <- err
				return
			}
			if !emit(d.Ingest(chunk)) {
				errs <- ctx.Err()
				return
			}
		}
	}()

	return frames, errs
}
