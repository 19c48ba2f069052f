package callbacks

import "sync"

type track struct {
	samples []int32
	idx     int
	done    chan struct{}
}

// Player feeds queued tracks into a device output buffer, one after another.
// Update is called from the device callback; Enqueue from any goroutine.
type Player struct {
	mu    sync.Mutex
	queue []*track
}

// Enqueue schedules samples for playback. The returned channel is closed
// once the last sample has been handed to the device or the player is reset.
func (p *Player) Enqueue(samples []int32) <-chan struct{} {
	t := &track{samples: samples, done: make(chan struct{})}
	if len(samples) == 0 {
		close(t.done)
		return t.done
	}
	p.mu.Lock()
	p.queue = append(p.queue, t)
	p.mu.Unlock()
	return t.done
}

// Update fills out with queued samples and pads the rest with silence.
func (p *Player) Update(out []int32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := 0
	for i < len(out) && len(p.queue) > 0 {
		t := p.queue[0]
		n := copy(out[i:], t.samples[t.idx:])
		t.idx += n
		i += n
		if t.idx == len(t.samples) {
			close(t.done)
			p.queue = p.queue[1:]
		}
	}
	clear(out[i:])
}

// Pending returns the number of samples not yet played.
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.queue {
		n += len(t.samples) - t.idx
	}
	return n
}

// Reset drops everything queued and releases waiting callers.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.queue {
		close(t.done)
	}
	p.queue = nil
}
