package device

import (
	"testing"
	"time"
)

func TestMedium(t *testing.T) {

	medium := Medium[string]{
		Config: MediumConfig[string]{
			{In: "quiet", Out: "air"},
			{In: "air", Out: "sink"},
		},
		Channels: map[string]*Channel{"air": {Gain: 0.5}},
	}

	devs := medium.Build()
	if len(devs) != 2 {
		t.Fatalf("Build() returned %d devices, want 2", len(devs))
	}

	heard := make(chan []int32, 16)
	quiet := make(chan bool, 16)

	devs[0].Start(func(in, out []int32) {
		silent := true
		for _, v := range in {
			silent = silent && v == 0
		}
		select {
		case quiet <- silent:
		default:
		}
		for i := range out {
			out[i] = 1000
		}
	})
	devs[1].Start(func(in, out []int32) {
		buf := make([]int32, len(in))
		copy(buf, in)
		select {
		case heard <- buf:
		default:
		}
	})

	deadline := time.After(2 * time.Second)
	found := false
	for !found {
		select {
		case buf := <-heard:
			found = buf[0] == 500 && buf[len(buf)-1] == 500
		case <-deadline:
			medium.Stop()
			t.Fatal("transmitted signal never reached the listener")
		}
	}

	medium.Stop()
	medium.Join()

	for {
		select {
		case silent := <-quiet:
			if !silent {
				t.Fatal("transmitter heard its own output on an unrelated buffer")
			}
		default:
			return
		}
	}
}

func TestMediumStopUnstarted(t *testing.T) {
	medium := Medium[int]{Config: MediumConfig[int]{{In: 0, Out: 1}}}
	medium.Build()
	medium.Stop()
	medium.Join()
}
