package report

import (
	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
	"github.com/go-tangra/go-tangra-hwreport/internal/normalize"
)

// Top-level report keys in canonical naming.
const (
	KeySchemaVersion  = "schemaVersion"
	KeyCPU            = "cpu"
	KeyMotherboard    = "motherboard"
	KeySystem         = "system"
	KeyTotalMemory    = "totalMemory"
	KeyMemoryModules  = "memoryModules"
	KeyGPUDevices     = "gpuDevices"
	KeyStorageDevices = "storageDevices"
	KeyNetworkDevices = "networkDevices"
	KeyAudioDevices   = "audioDevices"
	KeyUSBControllers = "usbControllers"
	KeyUnknown        = "unknownClasses"
	keyExtra          = "extra"
)

var deviceKeys = map[hardware.Class]string{
	hardware.ClassGPU:     KeyGPUDevices,
	hardware.ClassStorage: KeyStorageDevices,
	hardware.ClassNetwork: KeyNetworkDevices,
	hardware.ClassAudio:   KeyAudioDevices,
	hardware.ClassUSB:     KeyUSBControllers,
}

// Generator builds reports with fixed options. It holds no mutable state.
type Generator struct {
	opts Options
}

// NewGenerator validates opts and returns a Generator.
func NewGenerator(opts Options) (*Generator, error) {
	naming, err := ParseNaming(string(opts.FieldNaming))
	if err != nil {
		return nil, err
	}
	opts.FieldNaming = naming
	return &Generator{opts: opts}, nil
}

// Options returns the normalized generator options.
func (g *Generator) Options() Options { return g.opts }

// Generate projects info into a new Report. info is not modified and the
// report shares no mutable state with it.
func (g *Generator) Generate(info *hardware.HardwareInfo) *Report {
	b := builder{opts: g.opts}
	fields := map[string]any{
		b.name(KeySchemaVersion): SchemaVersion,
	}

	b.scalar(fields, KeyCPU, []field{
		{"cpuBrand", text(info.CPU.Brand)},
		{"cpuModel", text(info.CPU.Model)},
		{"cpuCores", count(info.CPU.Cores)},
		{"cpuThreads", count(info.CPU.Threads)},
		{"cpuArchitecture", arch(info.CPU.Architecture)},
		{"cpuFrequency", hertz(info.CPU.Frequency)},
	})
	b.scalar(fields, KeyMotherboard, []field{
		{"motherboardManufacturer", text(info.Motherboard.Manufacturer)},
		{"motherboardModel", text(info.Motherboard.Model)},
		{"biosVersion", text(info.Motherboard.BIOSVersion)},
		{"biosDate", text(info.Motherboard.BIOSDate)},
	})
	b.scalar(fields, KeySystem, []field{
		{"systemModel", text(info.System.Model)},
		{"systemSerial", text(info.System.Serial)},
		{"systemUUID", text(info.System.UUID)},
	})
	b.put(fields, KeyTotalMemory, count(info.TotalMemory))

	modules := make([]any, 0, len(info.MemoryModules))
	for _, m := range info.MemoryModules {
		if g.opts.DropEmptyModules && m.Empty() {
			continue
		}
		modules = append(modules, b.record([]field{
			{"size", count(m.Size)},
			{"speed", count(m.Speed)},
			{"manufacturer", text(m.Manufacturer)},
			{"partNumber", text(m.PartNumber)},
			{"slot", text(m.Slot)},
		}))
	}
	fields[b.name(KeyMemoryModules)] = modules

	for _, class := range hardware.Classes {
		key, ok := deviceKeys[class]
		if !ok {
			continue
		}
		devices := info.Devices(class)
		out := make([]any, 0, len(devices))
		for _, d := range devices {
			out = append(out, b.device(class, d))
		}
		fields[b.name(key)] = out
	}

	unknown := info.UnknownClasses()
	if len(unknown) > 0 || g.opts.IncludeUnknownFields {
		names := make([]any, len(unknown))
		for i, c := range unknown {
			names[i] = c.String()
		}
		fields[b.name(KeyUnknown)] = names
	}

	return &Report{fields: fields, unknown: unknown, naming: g.opts.FieldNaming}
}

// field is one canonical field and its value; a nil value is unknown.
type field struct {
	name  string
	value any
}

func text(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func count(n uint64) any {
	if n == 0 {
		return nil
	}
	return n
}

func hertz(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func arch(a hardware.Arch) any {
	if !a.Known() {
		return nil
	}
	return string(a)
}

type builder struct {
	opts Options
}

func (b builder) name(key string) string {
	if b.opts.FieldNaming == NamingTargetSpecific {
		return targetName(key)
	}
	return key
}

// put stores value under key, honouring the unknown-field policy.
func (b builder) put(m map[string]any, key string, value any) {
	if value == nil && !b.opts.IncludeUnknownFields {
		return
	}
	if b.opts.FieldNaming == NamingTargetSpecific {
		value = targetValue(key, value)
	}
	m[b.name(key)] = value
}

func (b builder) record(fields []field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		b.put(out, f.name, f.value)
	}
	return out
}

func (b builder) scalar(m map[string]any, key string, fields []field) {
	m[b.name(key)] = b.record(fields)
}

func (b builder) device(class hardware.Class, d hardware.Device) map[string]any {
	names := normalize.Fields(class)
	fields := make([]field, 0, len(names))
	for _, name := range names {
		v, _ := d.Get(name)
		fields = append(fields, field{name, known(v)})
	}
	// Fields set outside the schema by hand-built models are kept as well.
	for name, v := range d.Fields {
		if !contains(names, name) {
			fields = append(fields, field{name, known(v)})
		}
	}

	out := b.record(fields)
	if len(d.Extra) > 0 {
		out[b.name(keyExtra)] = deepCopy(d.Extra)
	}
	return out
}

func known(v hardware.Value) any {
	if v.Unknown() {
		return nil
	}
	return v.Interface()
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
