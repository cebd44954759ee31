package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-tangra/go-tangra-hwreport/internal/collector"
	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
	"github.com/go-tangra/go-tangra-hwreport/internal/report"
	"github.com/go-tangra/go-tangra-hwreport/internal/sink"
)

type detectorFunc func(ctx context.Context) (*hardware.HardwareInfo, error)

func (f detectorFunc) Detect(ctx context.Context) (*hardware.HardwareInfo, error) { return f(ctx) }

func builder(t *testing.T, failing ...hardware.Class) *collector.Builder {
	t.Helper()
	fail := make(map[hardware.Class]bool)
	for _, c := range failing {
		fail[c] = true
	}
	var adapters []collector.Adapter
	for _, class := range hardware.Classes {
		class := class
		adapters = append(adapters, collector.NewAdapter(class, func(context.Context) ([]hardware.RawRecord, error) {
			if fail[class] {
				return nil, errors.New("query failed")
			}
			switch class {
			case hardware.ClassCPU:
				return []hardware.RawRecord{{"brand": "Intel", "cores": 8, "threads": 16, "arch": "x86_64", "freq": 3200000000}}, nil
			case hardware.ClassMotherboard, hardware.ClassSystem:
				return []hardware.RawRecord{{}}, nil
			}
			return nil, nil
		}))
	}
	b, err := collector.NewBuilder(adapters)
	require.NoError(t, err)
	return b
}

func generator(t *testing.T) *report.Generator {
	t.Helper()
	g, err := report.NewGenerator(report.Options{})
	require.NoError(t, err)
	return g
}

func countingSink(err error) (sink.Sink, *atomic.Int32) {
	var calls atomic.Int32
	return sink.Func(func(ctx context.Context, path string, data []byte) error {
		calls.Add(1)
		return err
	}), &calls
}

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := New(builder(t), generator(t), sink.NewFileSink(fs))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), "/reports/host.json")
	require.NoError(t, err)
	assert.Empty(t, res.Unknown)
	assert.Equal(t, "json", res.Format)

	data, err := afero.ReadFile(fs, "/reports/host.json")
	require.NoError(t, err)
	assert.Equal(t, res.Data, data)
	assert.Contains(t, string(data), `"cpuCores": 8`)
	assert.Contains(t, string(data), `"cpuThreads": 16`)
	assert.Contains(t, string(data), `"cpuArchitecture": "x86_64"`)
	assert.Contains(t, string(data), `"cpuFrequency": 3200000000`)
	assert.Contains(t, string(data), `"memoryModules": []`)
}

func TestRunIsDeterministic(t *testing.T) {
	p, err := New(builder(t, hardware.ClassGPU), generator(t), nil, WithFormat("yaml"))
	require.NoError(t, err)

	first, err := p.Run(context.Background(), "")
	require.NoError(t, err)
	second, err := p.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
}

func TestRunReportsUnknownClasses(t *testing.T) {
	s, calls := countingSink(nil)
	p, err := New(builder(t, hardware.ClassGPU, hardware.ClassNetwork), generator(t), s)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), "out")
	require.NoError(t, err)
	assert.Equal(t, []hardware.Class{hardware.ClassGPU, hardware.ClassNetwork}, res.Unknown)
	assert.Contains(t, string(res.Data), `"unknownClasses": [`)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunCancelled(t *testing.T) {
	s, calls := countingSink(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := New(builder(t), generator(t), s)
	require.NoError(t, err)

	res, err := p.Run(ctx, "out")
	assert.Nil(t, res)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageDetect, se.Stage)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestRunEncodingErrorWritesNothing(t *testing.T) {
	s, calls := countingSink(nil)
	d := detectorFunc(func(context.Context) (*hardware.HardwareInfo, error) {
		return &hardware.HardwareInfo{
			USBControllers: []hardware.Device{{Extra: map[string]any{"port": struct{}{}}}},
		}, nil
	})

	p, err := New(d, generator(t), s)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), "out")
	assert.Nil(t, res)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageSerialize, se.Stage)
	var encErr *report.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "usbControllers[0].extra.port", encErr.Path)
	assert.Zero(t, calls.Load())
}

func TestRunTypedVendorFields(t *testing.T) {
	var adapters []collector.Adapter
	for _, class := range hardware.Classes {
		class := class
		adapters = append(adapters, collector.NewAdapter(class, func(context.Context) ([]hardware.RawRecord, error) {
			switch class {
			case hardware.ClassGPU:
				return []hardware.RawRecord{{
					"name":      "GA102",
					"clocksMHz": []uint32{300, 1500},
					"limits":    map[string]int{"power": 200},
				}}, nil
			case hardware.ClassCPU, hardware.ClassMotherboard, hardware.ClassSystem:
				return []hardware.RawRecord{{}}, nil
			}
			return nil, nil
		}))
	}
	b, err := collector.NewBuilder(adapters)
	require.NoError(t, err)

	for _, format := range []string{"json", "yaml", "cbor"} {
		p, err := New(b, generator(t), nil, WithFormat(format))
		require.NoError(t, err)

		res, err := p.Run(context.Background(), "")
		require.NoError(t, err, format)
		assert.NotEmpty(t, res.Data, format)
	}
}

func TestPersistCanBeRetried(t *testing.T) {
	var detects atomic.Int32
	inner := builder(t)
	d := detectorFunc(func(ctx context.Context) (*hardware.HardwareInfo, error) {
		detects.Add(1)
		return inner.Detect(ctx)
	})

	var writes atomic.Int32
	var written []byte
	s := sink.Func(func(ctx context.Context, path string, data []byte) error {
		if writes.Add(1) == 1 {
			return &sink.SinkError{Path: path, Err: errors.New("disk full")}
		}
		written = data
		return nil
	})

	p, err := New(d, generator(t), s)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), "out")
	require.NotNil(t, res)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StagePersist, se.Stage)
	var sinkErr *sink.SinkError
	assert.ErrorAs(t, err, &sinkErr)

	require.NoError(t, p.Persist(context.Background(), res, "out"))
	assert.Equal(t, res.Data, written)
	assert.Equal(t, int32(1), detects.Load())
}

func TestPersistWithoutReport(t *testing.T) {
	s, _ := countingSink(nil)
	p, err := New(builder(t), generator(t), s)
	require.NoError(t, err)

	err = p.Persist(context.Background(), nil, "out")
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StagePersist, se.Stage)
}

func TestNew(t *testing.T) {
	_, err := New(builder(t), generator(t), nil, WithFormat("xml"))
	assert.Error(t, err)

	p, err := New(builder(t), generator(t), nil, WithFormat("yml"))
	require.NoError(t, err)
	res, err := p.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "yaml", res.Format)

	_, err = New(nil, generator(t), nil)
	assert.Error(t, err)
}

func TestStageError(t *testing.T) {
	err := &StageError{Stage: StagePersist, Err: errors.New("disk full")}
	assert.Equal(t, "persist: disk full", err.Error())
}
