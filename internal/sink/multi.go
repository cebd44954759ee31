package sink

import (
	"context"

	"go.uber.org/multierr"
)

// Target binds a sink to a destination. An empty Path uses the path passed
// to the enclosing Multi.
type Target struct {
	Sink Sink
	Path string
}

type multi []Target

// Multi writes to every target, in order, even after a failure, and
// combines the failures.
func Multi(targets ...Target) Sink {
	return multi(targets)
}

func (m multi) Write(ctx context.Context, path string, data []byte) error {
	var err error
	for _, t := range m {
		p := t.Path
		if p == "" {
			p = path
		}
		err = multierr.Append(err, t.Sink.Write(ctx, p, data))
	}
	return err
}
