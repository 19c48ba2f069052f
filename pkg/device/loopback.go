package device

import "time"

// Loopback feeds every output buffer back as the next input buffer, through
// an optional Channel.
type Loopback struct {
	SampleRate float64 // the fake sample rate, 0 means no limit
	Channel    *Channel
	done       chan struct{}
}

// period is the wall-clock duration of one buffer.
func period(sampleRate float64) time.Duration {
	return time.Duration(float64(time.Second) * BufferSize / sampleRate)
}

func (d *Loopback) Start(callback func([]int32, []int32)) {
	d.done = make(chan struct{})
	go func() {
		var buf = make([][]int32, 2)
		buf[0] = alloci32(BufferSize)
		buf[1] = alloci32(BufferSize)

		swap := true
		update := func() {
			in, out := buf[0], buf[1]
			if !swap {
				in, out = out, in
			}
			callback(in, out)
			d.Channel.Apply(out)
			swap = !swap
		}

		if d.SampleRate == 0 {
			for {
				select {
				case <-d.done:
					return
				default:
					update()
				}
			}
		} else {
			ticker := time.NewTicker(period(d.SampleRate))
			defer ticker.Stop()
			for {
				select {
				case <-d.done:
					return
				case <-ticker.C:
					update()
				}
			}
		}
	}()
}

func (d *Loopback) Stop() {
	close(d.done)
}
