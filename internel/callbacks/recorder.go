package callbacks

import (
	"sync"
	"sync/atomic"
)

// Recorder copies every device input buffer onto a channel.
//
// A real-time device must never block inside its callback, so by default a
// buffer is dropped when the channel is full. Blocking recorders apply
// backpressure instead, which suits simulated devices.
type Recorder struct {
	C        chan []int32
	Blocking bool

	dropped atomic.Uint64
	stop    chan struct{}
	once    sync.Once
}

func NewRecorder(depth int, blocking bool) *Recorder {
	return &Recorder{
		C:        make(chan []int32, depth),
		Blocking: blocking,
		stop:     make(chan struct{}),
	}
}

func (r *Recorder) Update(in []int32) {
	chunk := make([]int32, len(in))
	copy(chunk, in)
	if r.Blocking {
		select {
		case r.C <- chunk:
		case <-r.stop:
		}
		return
	}
	select {
	case r.C <- chunk:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many input buffers were discarded.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Stop releases an Update blocked on a full channel.
func (r *Recorder) Stop() {
	r.once.Do(func() { close(r.stop) })
}
