package device

import (
	"context"
	"io"
	"sync"

	"Audiomodem/internel/callbacks"
	"Audiomodem/pkg/modem"
)

const defaultDepth = 256

// Duplex exposes a callback Device as both an AudioSource and an AudioSink.
// The device is started on first use and stopped by Close.
type Duplex struct {
	Device Device
	Rate   int
	// Blocking makes the device wait for ReadChunk instead of dropping input
	// buffers. Only simulated devices should set it, and something must keep
	// reading or playback stalls.
	Blocking bool
	Depth    int // input buffers held before dropping, 0 means a default

	player   callbacks.Player
	recorder *callbacks.Recorder
	mu       sync.Mutex
	started  bool
	closed   chan struct{}
	stop     sync.Once
}

func NewDuplex(dev Device, sampleRate int) *Duplex {
	return &Duplex{Device: dev, Rate: sampleRate, closed: make(chan struct{})}
}

func (d *Duplex) begin() *callbacks.Recorder {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		depth := d.Depth
		if depth <= 0 {
			depth = defaultDepth
		}
		d.recorder = callbacks.NewRecorder(depth, d.Blocking)
		d.started = true
		d.Device.Start(d.callback)
	}
	return d.recorder
}

// Open starts the device without waiting for a read or a play. Input captured
// from then on is kept for ReadChunk, so a listener that must not miss
// anything opens before the other side starts talking.
func (d *Duplex) Open() error {
	select {
	case <-d.closed:
		return io.ErrClosedPipe
	default:
	}
	d.begin()
	return nil
}

func (d *Duplex) callback(in, out []int32) {
	d.recorder.Update(in)
	d.player.Update(out)
}

func (d *Duplex) SampleRate() int { return d.Rate }

func (d *Duplex) ReadChunk(ctx context.Context) ([]float64, error) {
	select {
	case <-d.closed:
		return nil, io.EOF
	default:
	}
	rec := d.begin()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.closed:
		return nil, io.EOF
	case chunk := <-rec.C:
		return modem.Int32ToFloat64(chunk), nil
	}
}

// Play queues samples behind anything already playing and waits for them.
// The device is fixed at construction, so deviceName is ignored.
func (d *Duplex) Play(ctx context.Context, samples []float64, deviceName string) error {
	select {
	case <-d.closed:
		return io.ErrClosedPipe
	default:
	}
	d.begin()
	done := d.player.Enqueue(modem.Float64ToInt32(samples))
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.player.Reset()
		return ctx.Err()
	case <-d.closed:
		return io.ErrClosedPipe
	}
}

// Dropped reports input buffers lost because nobody was reading.
func (d *Duplex) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.recorder == nil {
		return 0
	}
	return d.recorder.Dropped()
}

func (d *Duplex) Close() error {
	d.stop.Do(func() {
		close(d.closed)
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.started {
			d.recorder.Stop()
			d.Device.Stop()
		}
		d.player.Reset()
	})
	return nil
}

var (
	_ AudioSource = (*Duplex)(nil)
	_ AudioSink   = (*Duplex)(nil)
)
