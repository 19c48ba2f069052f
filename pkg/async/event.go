package async

import (
	"bufio"
	"io"
	"os"
)

// Line is closed once a newline (or end of input) is read from r.
func Line(r io.Reader) <-chan struct{} {
	return Job(func() {
		bufio.NewReader(r).ReadBytes('\n')
	})
}

func EnterKey() <-chan struct{} {
	return Line(os.Stdin)
}
