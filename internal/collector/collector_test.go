package collector

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

func records(recs ...hardware.RawRecord) QueryFunc {
	return func(context.Context) ([]hardware.RawRecord, error) {
		return recs, nil
	}
}

func failing(err error) QueryFunc {
	return func(context.Context) ([]hardware.RawRecord, error) {
		return nil, err
	}
}

// stubAdapters returns one healthy adapter per class, with overrides
// replacing the query for selected classes.
func stubAdapters(overrides map[hardware.Class]QueryFunc) []Adapter {
	healthy := map[hardware.Class]QueryFunc{
		hardware.ClassCPU: records(hardware.RawRecord{
			"brand": "Intel", "cores": 8, "threads": 16, "arch": "x86_64", "freq": 3200000000,
		}),
		hardware.ClassMotherboard: records(hardware.RawRecord{
			"manufacturer": "ASUSTeK COMPUTER INC.", "product": "PRIME Z390-A", "biosVersion": "2808", "biosDate": "10/28/2021",
		}),
		hardware.ClassMemory: records(
			hardware.RawRecord{"sizeMB": 16384, "speed": 3200, "manufacturer": "80CE", "partNumber": "M378A2K43DB1-CTD", "deviceLocator": "DIMM_A1"},
			hardware.RawRecord{"sizeMB": 16384, "speed": 3200, "manufacturer": "80CE", "partNumber": "M378A2K43DB1-CTD", "deviceLocator": "DIMM_B1"},
		),
		hardware.ClassGPU:     records(hardware.RawRecord{"name": "GA102", "vendorId": "10de", "pciAddress": "0000:01:00.0"}),
		hardware.ClassStorage: records(hardware.RawRecord{"name": "nvme0n1", "sizeBytes": uint64(1 << 40), "driveType": "SSD"}),
		hardware.ClassNetwork: records(hardware.RawRecord{"name": "eth0", "macAddress": "00:1a:2b:3c:4d:5e"}),
		hardware.ClassAudio:   records(),
		hardware.ClassUSB:     records(hardware.RawRecord{"name": "xHCI", "progIf": "30"}),
		hardware.ClassSystem: records(hardware.RawRecord{
			"productName": "System Product Name", "serialNumber": "ABC123", "uuid": "4C4C4544-0037-3910-8052-B7C04F4A4E32",
		}),
	}
	var out []Adapter
	for _, class := range hardware.Classes {
		q := healthy[class]
		if o, ok := overrides[class]; ok {
			if o == nil {
				continue
			}
			q = o
		}
		out = append(out, NewAdapter(class, q))
	}
	return out
}

func detect(t *testing.T, adapters []Adapter, opts ...Option) *hardware.HardwareInfo {
	t.Helper()
	b, err := NewBuilder(adapters, opts...)
	require.NoError(t, err)
	info, err := b.Detect(context.Background())
	require.NoError(t, err)
	require.NotNil(t, info)
	return info
}

func TestDetectAllClasses(t *testing.T) {
	info := detect(t, stubAdapters(nil))

	assert.Empty(t, info.Unknown)
	assert.NoError(t, info.Err())
	assert.Equal(t, hardware.CPU{
		Brand: "Intel", Cores: 8, Threads: 16, Architecture: hardware.ArchX86_64, Frequency: 3.2e9,
	}, info.CPU)
	assert.Equal(t, "ASUS", info.Motherboard.Manufacturer)
	assert.Equal(t, "2808", info.Motherboard.BIOSVersion)
	require.Len(t, info.MemoryModules, 2)
	assert.Equal(t, "Samsung", info.MemoryModules[0].Manufacturer)
	assert.Equal(t, "DIMM_A1", info.MemoryModules[0].Slot)
	assert.Equal(t, "DIMM_B1", info.MemoryModules[1].Slot)
	assert.Equal(t, uint64(32<<30), info.TotalMemory)
	require.Len(t, info.GPUDevices, 1)
	assert.Equal(t, "NVIDIA", info.GPUDevices[0].Text("vendor"))
	assert.Equal(t, "ssd", info.StorageDevices[0].Text("driveType"))
	assert.Equal(t, "xhci", info.USBControllers[0].Text("hostInterface"))
	assert.Empty(t, info.AudioDevices)
	assert.NotNil(t, info.AudioDevices)

	// "System Product Name" is a firmware placeholder.
	assert.Equal(t, hardware.SystemIdentity{Serial: "ABC123", UUID: "4c4c4544-0037-3910-8052-b7c04f4a4e32"}, info.System)
}

func TestDetectToleratesEachClassFailing(t *testing.T) {
	boom := errors.New("access denied")
	for _, class := range hardware.Classes {
		t.Run(class.String(), func(t *testing.T) {
			info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{class: failing(boom)}))

			assert.Equal(t, []hardware.Class{class}, info.UnknownClasses())
			var ae *AdapterError
			require.ErrorAs(t, info.Unknown[class], &ae)
			assert.Equal(t, class, ae.Class)
			assert.ErrorIs(t, info.Err(), boom)

			switch class {
			case hardware.ClassCPU:
				assert.Equal(t, hardware.CPU{}, info.CPU)
			case hardware.ClassMotherboard:
				assert.Equal(t, hardware.Motherboard{}, info.Motherboard)
			case hardware.ClassSystem:
				assert.Equal(t, hardware.SystemIdentity{}, info.System)
			case hardware.ClassMemory:
				assert.NotNil(t, info.MemoryModules)
				assert.Empty(t, info.MemoryModules)
				assert.Zero(t, info.TotalMemory)
			default:
				assert.NotNil(t, info.Devices(class))
				assert.Empty(t, info.Devices(class))
			}
		})
	}
}

func TestDetectRecoversPanics(t *testing.T) {
	info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{
		hardware.ClassGPU: func(context.Context) ([]hardware.RawRecord, error) {
			panic("driver exploded")
		},
	}))

	require.Contains(t, info.Unknown, hardware.ClassGPU)
	assert.Contains(t, info.Unknown[hardware.ClassGPU].Error(), "driver exploded")
	assert.Empty(t, info.GPUDevices)
	assert.Equal(t, uint64(8), info.CPU.Cores)
}

func TestDetectMissingAdapter(t *testing.T) {
	info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{hardware.ClassAudio: nil}))

	require.Contains(t, info.Unknown, hardware.ClassAudio)
	assert.ErrorIs(t, info.Unknown[hardware.ClassAudio], ErrNoAdapter)
	assert.Len(t, info.UnknownClasses(), 1)
}

func TestDetectScalarWithoutRecords(t *testing.T) {
	info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{hardware.ClassSystem: records()}))

	assert.ErrorIs(t, info.Unknown[hardware.ClassSystem], ErrNoRecords)
	assert.Equal(t, hardware.SystemIdentity{}, info.System)
}

func TestDetectScalarNilRecord(t *testing.T) {
	info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{hardware.ClassCPU: records(nil)}))

	assert.ErrorIs(t, info.Unknown[hardware.ClassCPU], ErrMalformed)
	assert.Equal(t, []hardware.Class{hardware.ClassCPU}, info.UnknownClasses())
	assert.Equal(t, hardware.CPU{}, info.CPU)
}

func TestDetectEmptyMemory(t *testing.T) {
	info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{hardware.ClassMemory: records()}))

	assert.Empty(t, info.Unknown)
	assert.NotNil(t, info.MemoryModules)
	assert.Empty(t, info.MemoryModules)
	assert.Zero(t, info.TotalMemory)
}

func TestDetectKeepsEmptyModules(t *testing.T) {
	info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{
		hardware.ClassMemory: records(
			hardware.RawRecord{},
			hardware.RawRecord{"size": -1, "manufacturer": "Not Specified"},
			hardware.RawRecord{"sizeMB": 8192},
		),
	}))

	require.Len(t, info.MemoryModules, 3)
	assert.True(t, info.MemoryModules[0].Empty())
	assert.True(t, info.MemoryModules[1].Empty())
	assert.Equal(t, uint64(8<<30), info.TotalMemory)
}

func TestDetectScalarUsesFirstRecord(t *testing.T) {
	info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{
		hardware.ClassCPU: records(hardware.RawRecord{"cores": 4}, hardware.RawRecord{"cores": 64}),
	}))

	assert.Equal(t, uint64(4), info.CPU.Cores)
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	adapters := stubAdapters(map[hardware.Class]QueryFunc{
		hardware.ClassStorage: func(ctx context.Context) ([]hardware.RawRecord, error) {
			calls.Add(1)
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	b, err := NewBuilder(adapters)
	require.NoError(t, err)

	info, err := b.Detect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, info)
	assert.Equal(t, int32(1), calls.Load())

	info, err = b.Detect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, info)
	assert.Equal(t, int32(1), calls.Load(), "no adapter runs after cancellation")
}

func TestDetectAdapterTimeoutIsClassLevel(t *testing.T) {
	info := detect(t, stubAdapters(map[hardware.Class]QueryFunc{
		hardware.ClassNetwork: func(ctx context.Context) ([]hardware.RawRecord, error) {
			ctx, cancel := context.WithTimeout(ctx, time.Millisecond)
			defer cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}))

	assert.ErrorIs(t, info.Unknown[hardware.ClassNetwork], context.DeadlineExceeded)
	assert.Len(t, info.UnknownClasses(), 1)
}

func TestDetectCallsEachAdapterOnce(t *testing.T) {
	calls := make([]atomic.Int32, len(hardware.Classes))
	overrides := make(map[hardware.Class]QueryFunc)
	for i, class := range hardware.Classes {
		i := i
		inner := stubAdapters(nil)[i]
		require.Equal(t, class, inner.Class())
		overrides[class] = func(ctx context.Context) ([]hardware.RawRecord, error) {
			calls[i].Add(1)
			return inner.Query(ctx)
		}
	}

	for _, opts := range [][]Option{nil, {Sequential()}} {
		for i := range calls {
			calls[i].Store(0)
		}
		detect(t, stubAdapters(overrides), opts...)
		for i := range calls {
			assert.Equal(t, int32(1), calls[i].Load(), hardware.Classes[i].String())
		}
	}
}

func TestDetectDeterministic(t *testing.T) {
	adapters := stubAdapters(map[hardware.Class]QueryFunc{hardware.ClassAudio: failing(errors.New("no codec"))})

	first := detect(t, adapters)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, detect(t, adapters))
	}
	assert.Equal(t, first, detect(t, adapters, Sequential()))
}

func TestDetectLogsUnknownClasses(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	detect(t, stubAdapters(map[hardware.Class]QueryFunc{hardware.ClassUSB: failing(errors.New("no pci bus"))}), WithLogger(log))

	assert.Contains(t, buf.String(), `"class":"usb"`)
	assert.Contains(t, buf.String(), "no pci bus")
}

func TestNewBuilderRejectsBadAdapters(t *testing.T) {
	_, err := NewBuilder([]Adapter{
		NewAdapter(hardware.ClassCPU, records()),
		NewAdapter(hardware.ClassCPU, records()),
	})
	assert.ErrorContains(t, err, "duplicate adapter")

	_, err = NewBuilder([]Adapter{NewAdapter(hardware.Class("floppy"), records())})
	assert.ErrorContains(t, err, "unknown class")

	_, err = NewBuilder([]Adapter{nil})
	assert.Error(t, err)
}

func TestAdapterError(t *testing.T) {
	cause := errors.New("permission denied")
	err := &AdapterError{Class: hardware.ClassMemory, Err: cause}
	assert.Equal(t, "memory: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
}
