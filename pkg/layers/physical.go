// Package layers binds the modems to audio sources and sinks.
package layers

import (
	"context"
	"errors"
	"io"
	"log"

	"Audiomodem/pkg/async"
	"Audiomodem/pkg/device"
	"Audiomodem/pkg/frame"
	"Audiomodem/pkg/modem"
)

// PhysicalLayer sends payloads through Sink and delivers frames heard on
// Source to OutputChan.
type PhysicalLayer struct {
	Source     device.AudioSource
	Sink       device.AudioSink
	DeviceName string

	Encoder  modem.FrameModulator
	RateCode uint8
	Flags    uint8

	Receiver   Receiver
	OutputChan chan frame.Decoded
}

func (p *PhysicalLayer) header(payload []byte) frame.Header {
	h := frame.NewHeader(p.RateCode, len(payload))
	h.Version = modem.DefaultVersion
	h.Flags = p.Flags
	return h
}

// Send modulates payload and blocks until it has been played.
func (p *PhysicalLayer) Send(ctx context.Context, payload []byte) error {
	samples, err := p.Encoder.Modulate(p.header(payload), payload)
	if err != nil {
		return err
	}
	return p.Sink.Play(ctx, samples, p.DeviceName)
}

func (p *PhysicalLayer) SendAsync(ctx context.Context, payload []byte) <-chan error {
	return async.Go(func() error {
		return p.Send(ctx, payload)
	})
}

// Listen feeds Source into Receiver until the source ends or ctx is done.
// End of stream flushes the receiver and returns nil. OutputChan is not closed.
func (p *PhysicalLayer) Listen(ctx context.Context) error {
	forward := func(frames []frame.Decoded) error {
		for _, f := range frames {
			select {
			case p.OutputChan <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}

	for {
		chunk, err := p.Source.ReadChunk(ctx)
		if errors.Is(err, io.EOF) {
			return forward(p.Receiver.Flush())
		}
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[Physical] read failed: %v", err)
			}
			return err
		}
		if err := forward(p.Receiver.Ingest(chunk)); err != nil {
			return err
		}
	}
}

// Receive waits for the next decoded frame.
func (p *PhysicalLayer) Receive(ctx context.Context) (frame.Decoded, error) {
	select {
	case f := <-p.OutputChan:
		return f, nil
	case <-ctx.Done():
		return frame.Decoded{}, ctx.Err()
	}
}

func (p *PhysicalLayer) Close() error {
	if p.Source == nil {
		return nil
	}
	return p.Source.Close()
}
