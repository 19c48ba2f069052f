package async

import (
	"strings"
	"testing"
	"time"
)

func TestJob(t *testing.T) {
	done := Job(func() {
		time.Sleep(100 * time.Millisecond)
	})

	select {
	case <-done:
		// Test passed
	case <-time.After(time.Second):
		t.Fatal("TestJob timed out")
	}
}

func TestLine(t *testing.T) {
	select {
	case <-Line(strings.NewReader("go\n")):
	case <-time.After(time.Second):
		t.Fatal("Line did not fire on newline")
	}
	select {
	case <-Line(strings.NewReader("")):
	case <-time.After(time.Second):
		t.Fatal("Line did not fire at end of input")
	}
}
