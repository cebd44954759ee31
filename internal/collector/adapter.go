package collector

import (
	"context"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// Adapter queries one hardware class. Scalar classes return a single record;
// repeated classes return one record per device, possibly none.
type Adapter interface {
	Class() hardware.Class
	Query(ctx context.Context) ([]hardware.RawRecord, error)
}

// QueryFunc is the query half of an Adapter.
type QueryFunc func(ctx context.Context) ([]hardware.RawRecord, error)

type funcAdapter struct {
	class hardware.Class
	query QueryFunc
}

func (a funcAdapter) Class() hardware.Class { return a.class }

func (a funcAdapter) Query(ctx context.Context) ([]hardware.RawRecord, error) {
	return a.query(ctx)
}

// NewAdapter wraps fn as the Adapter for class.
func NewAdapter(class hardware.Class, fn QueryFunc) Adapter {
	return funcAdapter{class: class, query: fn}
}

// single wraps a scalar query.
func single(fn func(ctx context.Context) (hardware.RawRecord, error)) QueryFunc {
	return func(ctx context.Context) ([]hardware.RawRecord, error) {
		rec, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return []hardware.RawRecord{rec}, nil
	}
}
