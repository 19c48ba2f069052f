package layers

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"Audiomodem/pkg/async"
	"Audiomodem/pkg/css"
	"Audiomodem/pkg/device"
	"Audiomodem/pkg/frame"
	"Audiomodem/pkg/modem"
)

// tape is an in-memory sink whose recording can be replayed as a source.
type tape struct {
	mu      sync.Mutex
	samples []float64
	chunk   int
	played  []string
}

func (t *tape) Play(ctx context.Context, samples []float64, deviceName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, samples...)
	t.played = append(t.played, deviceName)
	return ctx.Err()
}

func (t *tape) SampleRate() int { return modem.SampleRate }

func (t *tape) ReadChunk(ctx context.Context) ([]float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(t.samples) == 0 {
		return nil, io.EOF
	}
	n := min(t.chunk, len(t.samples))
	out := t.samples[:n]
	t.samples = t.samples[n:]
	return out, nil
}

func (t *tape) Close() error { return nil }

var (
	_ device.AudioSource = (*tape)(nil)
	_ device.AudioSink   = (*tape)(nil)
)

func TestPhysicalLayerAFSK(t *testing.T) {
	medium := &tape{chunk: 4096}
	layer := PhysicalLayer{
		Source:     medium,
		Sink:       medium,
		DeviceName: "speaker",
		Encoder:    modem.NewModulator(modem.SampleRate),
		RateCode:   2,
		Receiver:   modem.NewDemodulator(modem.SampleRate),
		OutputChan: make(chan frame.Decoded, 4),
	}

	ctx := context.Background()
	if err := layer.Send(ctx, []byte("first")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := <-layer.SendAsync(ctx, []byte("second")); err != nil {
		t.Fatalf("SendAsync() error = %v", err)
	}
	if medium.played[0] != "speaker" {
		t.Errorf("sink got device %q, want speaker", medium.played[0])
	}

	if err := layer.Listen(ctx); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	for _, want := range []string{"first", "second"} {
		got, err := layer.Receive(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if string(got.Payload) != want {
			t.Errorf("payload = %q, want %q", got.Payload, want)
		}
		if got.Metadata.Baud != 200 {
			t.Errorf("baud = %d, want 200", got.Metadata.Baud)
		}
		if got.Header.Version != modem.DefaultVersion {
			t.Errorf("version = %d, want %d", got.Header.Version, modem.DefaultVersion)
		}
	}
}

func TestPhysicalLayerCSS(t *testing.T) {
	p := css.DefaultChirpParams()
	medium := &tape{chunk: 1000}
	layer := PhysicalLayer{
		Source:     medium,
		Sink:       medium,
		Encoder:    css.NewModulator(p),
		Receiver:   NewCSSReceiver(p, css.DefaultDecodeOptions),
		OutputChan: make(chan frame.Decoded, 1),
	}

	ctx := context.Background()
	if err := layer.Send(ctx, []byte("CSS test")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := layer.Listen(ctx); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	got, err := layer.Receive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Payload) != "CSS test" || got.Metadata.SF != p.SF() {
		t.Errorf("decoded %q with sf %d", got.Payload, got.Metadata.SF)
	}
}

func TestCSSReceiverNothing(t *testing.T) {
	r := NewCSSReceiver(css.DefaultChirpParams(), css.DefaultDecodeOptions)
	if frames := r.Flush(); frames != nil {
		t.Errorf("Flush() on empty receiver = %v", frames)
	}
	r.MaxSamples = 10
	r.Ingest(make([]float64, 25))
	if len(r.buffer) != 10 {
		t.Errorf("buffer holds %d samples, want 10", len(r.buffer))
	}
	if frames := r.Flush(); frames != nil {
		t.Errorf("Flush() on noise = %v", frames)
	}
}

func TestPhysicalLayerSendError(t *testing.T) {
	layer := PhysicalLayer{
		Sink:     &tape{},
		Encoder:  modem.NewModulator(modem.SampleRate),
		RateCode: 9,
	}
	if err := layer.Send(context.Background(), []byte("x")); !errors.Is(err, modem.ErrConfiguration) {
		t.Errorf("Send() error = %v, want ErrConfiguration", err)
	}
}

func TestListenCancelled(t *testing.T) {
	layer := PhysicalLayer{
		Source:     &tape{chunk: 1},
		Receiver:   modem.NewDemodulator(modem.SampleRate),
		OutputChan: make(chan frame.Decoded),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := layer.Listen(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Listen() error = %v, want context.Canceled", err)
	}
	if _, err := layer.Receive(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Receive() error = %v, want context.Canceled", err)
	}
}

// Two nodes share a simulated room: one speaks, the other listens.
func TestPhysicalLayerOverMedium(t *testing.T) {
	room := device.Medium[string]{
		Config: device.MediumConfig[string]{
			{In: "talker", Out: "air"},
			{In: "air", Out: "listener"},
		},
		Channels: map[string]*device.Channel{"air": {Gain: 0.7, Noise: 0.002, Seed: 1}},
	}
	nodes := room.Build()

	talker := device.NewDuplex(nodes[0], modem.SampleRate)
	listener := device.NewDuplex(nodes[1], modem.SampleRate)
	listener.Blocking = true
	defer room.Join()
	defer talker.Close()
	defer listener.Close()

	sender := PhysicalLayer{
		Sink:     talker,
		Encoder:  modem.NewModulator(modem.SampleRate),
		RateCode: 2,
	}
	receiver := PhysicalLayer{
		Source:     listener,
		Receiver:   modem.NewDemodulator(modem.SampleRate),
		OutputChan: make(chan frame.Decoded, 1),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := listener.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	listening := async.Go(func() error { return receiver.Listen(ctx) })
	if err := sender.Send(ctx, []byte("over the air")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got, err := receiver.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(got.Payload) != "over the air" {
		t.Errorf("payload = %q", got.Payload)
	}

	cancel()
	if err := <-listening; !errors.Is(err, context.Canceled) {
		t.Errorf("Listen() error = %v, want context.Canceled", err)
	}
}
