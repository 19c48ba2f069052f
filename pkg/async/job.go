package async

func Job(f func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	return done
}

// Go runs f in the background and reports its error.
func Go(f func() error) <-chan error {
	return Promise(f)
}
