package banner

import "context"

// Future is the single result of an asynchronous render.
type Future struct {
	done chan struct{}
	text string
	err  error
}

// Go runs fn in a goroutine and returns its future result.
func Go(fn func() (string, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.text, f.err = fn()
	}()
	return f
}

// Resolved returns a future that already holds text.
func Resolved(text string) *Future {
	f := &Future{done: make(chan struct{}), text: text}
	close(f.done)
	return f
}

// Await blocks until the result is ready or ctx is done. Awaiting a
// finished future again returns the same result.
func (f *Future) Await(ctx context.Context) (string, error) {
	select {
	case <-f.done:
		return f.text, f.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
