package collector

import (
	"context"
	"fmt"

	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/pci"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// PCI class codes, as in pci.ids.
const (
	pciClassMultimedia = "04"
	pciClassSerialBus  = "0c"
	pciSubclassUSB     = "03"
)

// AudioAdapter lists multimedia-class PCI functions (audio controllers and
// HD audio codecs behind them).
func AudioAdapter() Adapter {
	return NewAdapter(hardware.ClassAudio, func(ctx context.Context) ([]hardware.RawRecord, error) {
		return queryPCI(func(d *pci.Device) bool {
			return classID(d) == pciClassMultimedia
		})
	})
}

// USBAdapter lists USB host controllers.
func USBAdapter() Adapter {
	return NewAdapter(hardware.ClassUSB, func(ctx context.Context) ([]hardware.RawRecord, error) {
		return queryPCI(func(d *pci.Device) bool {
			return classID(d) == pciClassSerialBus && subclassID(d) == pciSubclassUSB
		})
	})
}

func queryPCI(match func(*pci.Device) bool) ([]hardware.RawRecord, error) {
	info, err := ghw.PCI()
	if err != nil {
		return nil, fmt.Errorf("pci: %w", err)
	}
	records := []hardware.RawRecord{}
	for _, d := range info.Devices {
		if d == nil || !match(d) {
			continue
		}
		records = append(records, pciRecord(d))
	}
	return records, nil
}

// pciRecord flattens a ghw PCI device into raw fields shared by the GPU,
// audio and USB adapters.
func pciRecord(d *pci.Device) hardware.RawRecord {
	rec := hardware.RawRecord{
		"pciAddress": d.Address,
		"driver":     d.Driver,
		"revision":   d.Revision,
	}
	if d.Vendor != nil {
		rec["vendorId"] = d.Vendor.ID
		rec["vendor"] = d.Vendor.Name
	}
	if d.Product != nil {
		rec["deviceId"] = d.Product.ID
		rec["name"] = d.Product.Name
	}
	if d.Subsystem != nil && d.Subsystem.ID != "" {
		rec["subsystemId"] = d.Subsystem.ID
	}
	if d.Subclass != nil {
		rec["subclass"] = d.Subclass.Name
	}
	if d.ProgrammingInterface != nil {
		rec["progIf"] = d.ProgrammingInterface.ID
	}
	return rec
}

func classID(d *pci.Device) string {
	if d.Class == nil {
		return ""
	}
	return d.Class.ID
}

func subclassID(d *pci.Device) string {
	if d.Subclass == nil {
		return ""
	}
	return d.Subclass.ID
}
