package collector

import (
	"context"
	"fmt"

	"github.com/yusufpapurcu/wmi"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

type win32Processor struct {
	Name                      string
	Manufacturer              string
	Family                    uint16
	Architecture              uint16
	NumberOfCores             uint32
	NumberOfLogicalProcessors uint32
	MaxClockSpeed             uint32
}

type win32PhysicalMemory struct {
	Capacity      uint64
	Speed         uint32
	Manufacturer  string
	PartNumber    string
	SerialNumber  string
	DeviceLocator string
	BankLabel     string
}

type win32ComputerSystem struct {
	Manufacturer string
	Model        string
}

type win32ComputerSystemProduct struct {
	IdentifyingNumber string
	UUID              string
	SKUNumber         string
}

type win32BIOS struct {
	Manufacturer      string
	SMBIOSBIOSVersion string
	ReleaseDate       string
	SerialNumber      string
}

type win32BaseBoard struct {
	Manufacturer string
	Product      string
	Version      string
	SerialNumber string
}

// CPUAdapter queries Win32_Processor. Architecture is the numeric
// PROCESSOR_ARCHITECTURE code.
func CPUAdapter() Adapter {
	return NewAdapter(hardware.ClassCPU, single(func(ctx context.Context) (hardware.RawRecord, error) {
		var procs []win32Processor
		q := "SELECT Name, Manufacturer, Family, Architecture, NumberOfCores, NumberOfLogicalProcessors, MaxClockSpeed FROM Win32_Processor"
		if err := wmi.Query(q, &procs); err != nil {
			return nil, fmt.Errorf("Win32_Processor: %w", err)
		}
		if len(procs) == 0 {
			return nil, fmt.Errorf("Win32_Processor: no processors reported")
		}

		// Counts cover every socket.
		var cores, threads uint64
		for _, p := range procs {
			cores += uint64(p.NumberOfCores)
			threads += uint64(p.NumberOfLogicalProcessors)
		}
		p := procs[0]
		return hardware.RawRecord{
			"name":             p.Name,
			"manufacturer":     p.Manufacturer,
			"family":           p.Family,
			"architectureCode": p.Architecture,
			"cores":            cores,
			"threads":          threads,
			"maxClockSpeed":    p.MaxClockSpeed,
			"packages":         len(procs),
		}, nil
	}))
}

// MemoryAdapter queries Win32_PhysicalMemory for per-DIMM details.
func MemoryAdapter() Adapter {
	return NewAdapter(hardware.ClassMemory, func(ctx context.Context) ([]hardware.RawRecord, error) {
		var pm []win32PhysicalMemory
		if err := wmi.Query("SELECT Capacity, Speed, Manufacturer, PartNumber, SerialNumber, DeviceLocator, BankLabel FROM Win32_PhysicalMemory", &pm); err != nil {
			return nil, fmt.Errorf("Win32_PhysicalMemory: %w", err)
		}

		records := make([]hardware.RawRecord, len(pm))
		for i, m := range pm {
			records[i] = hardware.RawRecord{
				"capacity":      m.Capacity,
				"speed":         m.Speed,
				"manufacturer":  m.Manufacturer,
				"partNumber":    m.PartNumber,
				"serialNumber":  m.SerialNumber,
				"deviceLocator": m.DeviceLocator,
				"bankLocator":   m.BankLabel,
			}
		}
		return records, nil
	})
}

// SystemAdapter queries Win32_ComputerSystem for the model and
// Win32_ComputerSystemProduct for the serial number and UUID.
func SystemAdapter() Adapter {
	return NewAdapter(hardware.ClassSystem, single(func(ctx context.Context) (hardware.RawRecord, error) {
		var cs []win32ComputerSystem
		if err := wmi.Query("SELECT Manufacturer, Model FROM Win32_ComputerSystem", &cs); err != nil {
			return nil, fmt.Errorf("Win32_ComputerSystem: %w", err)
		}

		var csp []win32ComputerSystemProduct
		if err := wmi.Query("SELECT IdentifyingNumber, UUID, SKUNumber FROM Win32_ComputerSystemProduct", &csp); err != nil {
			return nil, fmt.Errorf("Win32_ComputerSystemProduct: %w", err)
		}

		rec := hardware.RawRecord{}
		if len(cs) > 0 {
			rec["manufacturer"] = cs[0].Manufacturer
			rec["model"] = cs[0].Model
		}
		if len(csp) > 0 {
			rec["identifyingNumber"] = csp[0].IdentifyingNumber
			rec["uuid"] = csp[0].UUID
			rec["sku"] = csp[0].SKUNumber
		}

		// Some OEMs only fill the chassis serial in Win32_BIOS.
		var bios []win32BIOS
		if err := wmi.Query("SELECT Manufacturer, SMBIOSBIOSVersion, ReleaseDate, SerialNumber FROM Win32_BIOS", &bios); err == nil && len(bios) > 0 {
			rec["biosSerialNumber"] = bios[0].SerialNumber
		}
		return rec, nil
	}))
}

// MotherboardAdapter queries Win32_BaseBoard and Win32_BIOS.
func MotherboardAdapter() Adapter {
	return NewAdapter(hardware.ClassMotherboard, single(func(ctx context.Context) (hardware.RawRecord, error) {
		var boards []win32BaseBoard
		if err := wmi.Query("SELECT Manufacturer, Product, Version, SerialNumber FROM Win32_BaseBoard", &boards); err != nil {
			return nil, fmt.Errorf("Win32_BaseBoard: %w", err)
		}

		var bios []win32BIOS
		if err := wmi.Query("SELECT Manufacturer, SMBIOSBIOSVersion, ReleaseDate, SerialNumber FROM Win32_BIOS", &bios); err != nil {
			return nil, fmt.Errorf("Win32_BIOS: %w", err)
		}

		rec := hardware.RawRecord{}
		if len(boards) > 0 {
			rec["manufacturer"] = boards[0].Manufacturer
			rec["product"] = boards[0].Product
			rec["boardVersion"] = boards[0].Version
			rec["boardSerial"] = boards[0].SerialNumber
		}
		if len(bios) > 0 {
			rec["biosVendor"] = bios[0].Manufacturer
			rec["smbiosBiosVersion"] = bios[0].SMBIOSBIOSVersion
			rec["releaseDate"] = bios[0].ReleaseDate
		}
		return rec, nil
	}))
}
