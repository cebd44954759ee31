package sink

import (
	"context"
	"io"
	"sync"
)

// WriterSink copies reports to an io.Writer, typically stdout. The path is
// ignored.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &SinkError{Path: path, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return &SinkError{Path: path, Err: err}
	}
	return nil
}
