package srv

import "context"

// cleanupFunc adapts a close function into a Service that only participates
// in the shutdown pass.
type cleanupFunc func() error

func (f cleanupFunc) Start(context.Context) error { return nil }

func (f cleanupFunc) Shutdown(context.Context) error {
	if f == nil {
		return nil
	}
	return f()
}

// NewCleanup wraps fn, typically a Close method, so the resource releases
// alongside the real services when the process stops.
func NewCleanup(fn func() error) Service {
	return cleanupFunc(fn)
}
