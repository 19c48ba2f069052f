// Package async runs blocking modem work in the background and hands the
// outcome back on a channel.
package async

// Result carries a value or the error that prevented it.
type Result[T any] struct {
	Value T
	Err   error
}

// Promise runs f in a new goroutine. The channel is buffered, so the
// goroutine finishes even if nobody receives.
func Promise[R any](f func() R) <-chan R {
	out := make(chan R, 1)
	go func() {
		out <- f()
	}()
	return out
}

// Try is Promise for functions that can fail.
func Try[T any](f func() (T, error)) <-chan Result[T] {
	return Promise(func() Result[T] {
		v, err := f()
		return Result[T]{Value: v, Err: err}
	})
}

// Gather waits for every channel and returns the first non-nil error.
func Gather(cs ...<-chan error) error {
	var first error
	for _, c := range cs {
		if err := <-c; err != nil && first == nil {
			first = err
		}
	}
	return first
}
