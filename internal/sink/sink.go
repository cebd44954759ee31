// Package sink persists serialized reports.
package sink

import (
	"context"
	"errors"
	"fmt"
)

// Sink writes serialized report bytes to a destination. How path is
// interpreted is up to the implementation: a file name, a URL, a label.
type Sink interface {
	Write(ctx context.Context, path string, data []byte) error
}

// Func adapts a function to a Sink.
type Func func(ctx context.Context, path string, data []byte) error

func (f Func) Write(ctx context.Context, path string, data []byte) error {
	return f(ctx, path, data)
}

// SinkError reports a failed write. The report itself is intact and the
// write may be retried.
type SinkError struct {
	Path string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

// IsPermanent reports whether err, or an error it wraps, was marked with
// Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
