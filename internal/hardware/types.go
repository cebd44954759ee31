package hardware

import (
	"math"

	"go.uber.org/multierr"
)

// RawRecord is one untyped record as returned by a device adapter. Values may
// be text, integers of any width, floats, booleans, FixedPoint, byte slices,
// or vendor-specific nested data.
type RawRecord map[string]any

// FixedPoint is a decimal fixed-point number: Mantissa x 10^Exponent.
// Firmware tables often report frequencies and sizes this way.
type FixedPoint struct {
	Mantissa int64
	Exponent int
}

// Float64 returns the value as a float64.
func (f FixedPoint) Float64() float64 {
	return float64(f.Mantissa) * math.Pow10(f.Exponent)
}

// Arch is the canonical CPU architecture name.
type Arch string

const (
	ArchUnknown Arch = "unknown"
	ArchX86_64  Arch = "x86_64"
	ArchI386    Arch = "i386"
	ArchARM64   Arch = "arm64"
	ArchARM     Arch = "arm"
	ArchPPC64LE Arch = "ppc64le"
	ArchS390X   Arch = "s390x"
	ArchRISCV64 Arch = "riscv64"
)

// Known reports whether the architecture was reported.
func (a Arch) Known() bool { return a != "" && a != ArchUnknown }

// HardwareInfo is the aggregate hardware model for one detection pass. It is
// built once and treated as immutable afterwards.
type HardwareInfo struct {
	CPU            CPU
	Motherboard    Motherboard
	System         SystemIdentity
	TotalMemory    uint64
	MemoryModules  []MemoryModule
	GPUDevices     []Device
	StorageDevices []Device
	NetworkDevices []Device
	AudioDevices   []Device
	USBControllers []Device

	// Unknown maps each class whose adapter failed to the failure cause.
	Unknown map[Class]error
}

// UnknownClasses returns the classes that could not be detected, in
// detection order.
func (h *HardwareInfo) UnknownClasses() []Class {
	var out []Class
	for _, c := range Classes {
		if _, ok := h.Unknown[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Err combines every per-class failure into one error, or returns nil when
// all classes were detected.
func (h *HardwareInfo) Err() error {
	var err error
	for _, c := range h.UnknownClasses() {
		err = multierr.Append(err, h.Unknown[c])
	}
	return err
}

// Devices returns the device slice for a repeated device class. Memory and
// scalar classes return nil.
func (h *HardwareInfo) Devices(c Class) []Device {
	switch c {
	case ClassGPU:
		return h.GPUDevices
	case ClassStorage:
		return h.StorageDevices
	case ClassNetwork:
		return h.NetworkDevices
	case ClassAudio:
		return h.AudioDevices
	case ClassUSB:
		return h.USBControllers
	}
	return nil
}

// CPU holds processor details. Zero counts and frequency mean "not reported".
type CPU struct {
	Brand        string
	Model        string
	Cores        uint64
	Threads      uint64
	Architecture Arch
	Frequency    float64 // Hz
}

// Motherboard holds baseboard and firmware details.
type Motherboard struct {
	Manufacturer string
	Model        string
	BIOSVersion  string
	BIOSDate     string
}

// MemoryModule holds details for a single memory module.
type MemoryModule struct {
	Size         uint64 // bytes
	Speed        uint64 // MT/s
	Manufacturer string
	PartNumber   string
	Slot         string
}

// Empty reports whether every field of the module is unknown.
func (m MemoryModule) Empty() bool {
	return m == MemoryModule{}
}

// SystemIdentity holds the machine's model identifier, serial number and
// hardware UUID.
type SystemIdentity struct {
	Model  string
	Serial string
	UUID   string
}

// Device is a GPU, storage, network, audio or USB record: a fixed canonical
// field set (typed values) plus an open bag of vendor-specific extras.
type Device struct {
	Fields map[string]Value
	Extra  map[string]any
}

// Get returns the canonical field value, if known.
func (d Device) Get(name string) (Value, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

// Text returns a canonical text field or "".
func (d Device) Text(name string) string {
	return d.Fields[name].AsText()
}

// Uint returns a canonical integer field or 0.
func (d Device) Uint(name string) uint64 {
	return d.Fields[name].AsUint()
}
