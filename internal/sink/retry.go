package sink

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
)

const (
	baseBackoff = 1 * time.Second
	maxBackoff  = 2 * time.Minute
)

// RetryOptions configures Retry. Zero durations select the defaults.
type RetryOptions struct {
	// Attempts is the total number of writes, including the first.
	Attempts int
	Base     time.Duration
	Max      time.Duration
	Log      zerolog.Logger
}

type retry struct {
	next Sink
	opts RetryOptions
}

// Retry retries failed writes with exponential backoff. Permanent errors
// and context cancellation end the loop early.
func Retry(next Sink, opts RetryOptions) Sink {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.Base <= 0 {
		opts.Base = baseBackoff
	}
	if opts.Max <= 0 {
		opts.Max = maxBackoff
	}
	return &retry{next: next, opts: opts}
}

func (r *retry) Write(ctx context.Context, path string, data []byte) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = r.next.Write(ctx, path, data)
		if err == nil || IsPermanent(err) || ctx.Err() != nil || attempt >= r.opts.Attempts {
			return err
		}

		backoff := r.calcBackoff(attempt)
		r.opts.Log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("report write failed; retrying")

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
	}
}

func (r *retry) calcBackoff(attempt int) time.Duration {
	d := r.opts.Base * time.Duration(math.Pow(2, float64(attempt-1)))
	if d > r.opts.Max {
		d = r.opts.Max
	}
	return d
}
