package callbacks

import (
	"reflect"
	"testing"
)

func TestPlayerQueue(t *testing.T) {
	var p Player
	first := p.Enqueue([]int32{1, 2, 3})
	second := p.Enqueue([]int32{4, 5})

	if p.Pending() != 5 {
		t.Errorf("Pending() = %d, want 5", p.Pending())
	}

	out := make([]int32, 4)
	p.Update(out)
	if !reflect.DeepEqual(out, []int32{1, 2, 3, 4}) {
		t.Errorf("first buffer = %v", out)
	}
	select {
	case <-first:
	default:
		t.Error("first track not reported done")
	}
	select {
	case <-second:
		t.Error("second track reported done early")
	default:
	}

	p.Update(out)
	if !reflect.DeepEqual(out, []int32{5, 0, 0, 0}) {
		t.Errorf("second buffer = %v", out)
	}
	<-second

	p.Update(out)
	if !reflect.DeepEqual(out, []int32{0, 0, 0, 0}) {
		t.Errorf("idle buffer = %v", out)
	}
}

func TestPlayerReset(t *testing.T) {
	var p Player
	done := p.Enqueue([]int32{1, 2, 3})
	p.Reset()
	<-done
	if p.Pending() != 0 {
		t.Errorf("Pending() = %d after Reset", p.Pending())
	}
	<-p.Enqueue(nil)
}

func TestRecorderDrops(t *testing.T) {
	r := NewRecorder(1, false)
	in := []int32{7, 8}
	r.Update(in)
	in[0] = 9
	r.Update(in)

	if r.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", r.Dropped())
	}
	if got := <-r.C; !reflect.DeepEqual(got, []int32{7, 8}) {
		t.Errorf("recorded %v, want a copy of the first buffer", got)
	}
}

func TestRecorderBlockingStop(t *testing.T) {
	r := NewRecorder(0, true)
	released := make(chan struct{})
	go func() {
		r.Update([]int32{1})
		close(released)
	}()
	r.Stop()
	<-released
}
