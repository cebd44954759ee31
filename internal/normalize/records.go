package normalize

import "github.com/go-tangra/go-tangra-hwreport/internal/hardware"

// CPU normalizes a raw processor record.
func CPU(raw hardware.RawRecord) (hardware.CPU, Canonical) {
	c := Normalize(hardware.ClassCPU, raw)
	arch := hardware.Arch(c.Text("cpuArchitecture"))
	if !arch.Known() {
		arch = hardware.ArchUnknown
	}
	return hardware.CPU{
		Brand:        c.Text("cpuBrand"),
		Model:        c.Text("cpuModel"),
		Cores:        c.Uint("cpuCores"),
		Threads:      c.Uint("cpuThreads"),
		Architecture: arch,
		Frequency:    c.Float("cpuFrequency"),
	}, c
}

// Motherboard normalizes a raw baseboard and firmware record.
func Motherboard(raw hardware.RawRecord) (hardware.Motherboard, Canonical) {
	c := Normalize(hardware.ClassMotherboard, raw)
	return hardware.Motherboard{
		Manufacturer: c.Text("motherboardManufacturer"),
		Model:        c.Text("motherboardModel"),
		BIOSVersion:  c.Text("biosVersion"),
		BIOSDate:     c.Text("biosDate"),
	}, c
}

// MemoryModule normalizes one raw memory device record.
func MemoryModule(raw hardware.RawRecord) (hardware.MemoryModule, Canonical) {
	c := Normalize(hardware.ClassMemory, raw)
	return hardware.MemoryModule{
		Size:         c.Uint("size"),
		Speed:        c.Uint("speed"),
		Manufacturer: c.Text("manufacturer"),
		PartNumber:   c.Text("partNumber"),
		Slot:         c.Text("slot"),
	}, c
}

// SystemIdentity normalizes a raw system identity record.
func SystemIdentity(raw hardware.RawRecord) (hardware.SystemIdentity, Canonical) {
	c := Normalize(hardware.ClassSystem, raw)
	return hardware.SystemIdentity{
		Model:  c.Text("systemModel"),
		Serial: c.Text("systemSerial"),
		UUID:   c.Text("systemUUID"),
	}, c
}

// Device normalizes a GPU, storage, network, audio or USB record.
func Device(class hardware.Class, raw hardware.RawRecord) (hardware.Device, Canonical) {
	c := Normalize(class, raw)
	return hardware.Device{Fields: c.Fields, Extra: c.Extra}, c
}
