// Package collector builds the hardware model from the per-class device
// adapters.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
	"github.com/go-tangra/go-tangra-hwreport/internal/normalize"
)

var (
	// ErrNoAdapter marks a class for which no adapter was registered.
	ErrNoAdapter = errors.New("no adapter")
	// ErrNoRecords marks a scalar class whose adapter returned nothing.
	ErrNoRecords = errors.New("adapter returned no records")
	// ErrMalformed marks a scalar class whose adapter returned a nil record.
	ErrMalformed = errors.New("adapter returned a malformed record")
)

// AdapterError records why one hardware class could not be detected. It is
// stored in HardwareInfo.Unknown and never returned by Detect.
type AdapterError struct {
	Class hardware.Class
	Err   error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for per-class failures and dropped fields.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// Sequential makes Detect query adapters one at a time in class order.
func Sequential() Option {
	return func(b *Builder) { b.sequential = true }
}

// Builder runs every adapter once and assembles the hardware model. A
// Builder holds no mutable state and may be used concurrently.
type Builder struct {
	adapters   map[hardware.Class]Adapter
	log        zerolog.Logger
	sequential bool
}

// NewBuilder returns a Builder over adapters. Each class may have at most one
// adapter; classes without one are reported unknown by Detect.
func NewBuilder(adapters []Adapter, opts ...Option) (*Builder, error) {
	b := &Builder{
		adapters: make(map[hardware.Class]Adapter, len(adapters)),
		log:      zerolog.Nop(),
	}
	for _, a := range adapters {
		if a == nil {
			return nil, errors.New("nil adapter")
		}
		class := a.Class()
		if !class.Valid() {
			return nil, fmt.Errorf("adapter for unknown class %q", class)
		}
		if _, dup := b.adapters[class]; dup {
			return nil, fmt.Errorf("duplicate adapter for class %s", class)
		}
		b.adapters[class] = a
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// result is the outcome of one adapter call: records or the failure cause.
type result struct {
	records []hardware.RawRecord
	err     error
}

// Detect queries every class exactly once and returns the assembled model.
// Adapter errors and panics make their class unknown; they never fail the
// call. The only error returned is ctx's, when it ends before all adapters
// have been joined, and then no model is returned.
func (b *Builder) Detect(ctx context.Context) (*hardware.HardwareInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]result, len(hardware.Classes))
	if b.sequential {
		for i, class := range hardware.Classes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = b.query(ctx, class)
		}
	} else {
		var wg conc.WaitGroup
		for i, class := range hardware.Classes {
			i, class := i, class
			wg.Go(func() {
				results[i] = b.query(ctx, class)
			})
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.assemble(results), nil
}

func (b *Builder) query(ctx context.Context, class hardware.Class) result {
	a, ok := b.adapters[class]
	if !ok {
		return result{err: &AdapterError{Class: class, Err: ErrNoAdapter}}
	}

	var (
		records []hardware.RawRecord
		err     error
		pc      panics.Catcher
	)
	pc.Try(func() {
		records, err = a.Query(ctx)
	})
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("adapter panic: %w", r.AsError())
	}

	switch {
	case err != nil:
		return result{err: &AdapterError{Class: class, Err: err}}
	case !class.Repeated() && len(records) == 0:
		return result{err: &AdapterError{Class: class, Err: ErrNoRecords}}
	case !class.Repeated() && records[0] == nil:
		return result{err: &AdapterError{Class: class, Err: ErrMalformed}}
	}
	return result{records: records}
}

func (b *Builder) assemble(results []result) *hardware.HardwareInfo {
	info := &hardware.HardwareInfo{
		MemoryModules:  []hardware.MemoryModule{},
		GPUDevices:     []hardware.Device{},
		StorageDevices: []hardware.Device{},
		NetworkDevices: []hardware.Device{},
		AudioDevices:   []hardware.Device{},
		USBControllers: []hardware.Device{},
		Unknown:        make(map[hardware.Class]error),
	}

	for i, class := range hardware.Classes {
		res := results[i]
		if res.err != nil {
			info.Unknown[class] = res.err
			b.log.Warn().Err(res.err).Str("class", class.String()).Msg("hardware class unknown")
			continue
		}
		if !class.Repeated() && len(res.records) > 1 {
			b.log.Debug().Str("class", class.String()).Int("records", len(res.records)).
				Msg("scalar class returned several records; using the first")
		}

		switch class {
		case hardware.ClassCPU:
			var c normalize.Canonical
			info.CPU, c = normalize.CPU(res.records[0])
			b.logCanonical(c)
		case hardware.ClassMotherboard:
			var c normalize.Canonical
			info.Motherboard, c = normalize.Motherboard(res.records[0])
			b.logCanonical(c)
		case hardware.ClassSystem:
			var c normalize.Canonical
			info.System, c = normalize.SystemIdentity(res.records[0])
			b.logCanonical(c)
		case hardware.ClassMemory:
			for _, raw := range res.records {
				m, c := normalize.MemoryModule(raw)
				b.logCanonical(c)
				info.MemoryModules = append(info.MemoryModules, m)
				info.TotalMemory += m.Size
			}
		default:
			devices := make([]hardware.Device, 0, len(res.records))
			for _, raw := range res.records {
				d, c := normalize.Device(class, raw)
				b.logCanonical(c)
				devices = append(devices, d)
			}
			setDevices(info, class, devices)
		}
	}
	return info
}

func setDevices(info *hardware.HardwareInfo, class hardware.Class, devices []hardware.Device) {
	switch class {
	case hardware.ClassGPU:
		info.GPUDevices = devices
	case hardware.ClassStorage:
		info.StorageDevices = devices
	case hardware.ClassNetwork:
		info.NetworkDevices = devices
	case hardware.ClassAudio:
		info.AudioDevices = devices
	case hardware.ClassUSB:
		info.USBControllers = devices
	}
}

// logCanonical reports corrupt fields and, for scalar classes whose model
// record has no extension bag, the vendor fields that were dropped.
func (b *Builder) logCanonical(c normalize.Canonical) {
	if len(c.Invalid) > 0 {
		b.log.Debug().Str("class", c.Class.String()).Strs("fields", c.Invalid).Msg("invalid raw values treated as unknown")
	}
	if len(c.Extra) > 0 && !isDeviceClass(c.Class) {
		keys := make([]string, 0, len(c.Extra))
		for k := range c.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.log.Debug().Str("class", c.Class.String()).Strs("fields", keys).Msg("vendor fields not kept in model")
	}
}

func isDeviceClass(c hardware.Class) bool {
	return c.Repeated() && c != hardware.ClassMemory
}
