//go:build !windows

package collector

import (
	"context"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// MemoryAdapter lists the SMBIOS memory devices (type 17), one record per
// slot. Empty slots are skipped.
func MemoryAdapter() Adapter {
	return NewAdapter(hardware.ClassMemory, queryMemory)
}

func queryMemory(ctx context.Context) ([]hardware.RawRecord, error) {
	s, err := readSMBIOS()
	if err != nil {
		return nil, err
	}

	records := make([]hardware.RawRecord, 0, len(s.MemoryDevices))
	for _, md := range s.MemoryDevices {
		size := uint64(md.Size.Megabytes())
		if size == 0 {
			continue
		}
		records = append(records, hardware.RawRecord{
			"sizeMB":        size,
			"speed":         uint64(md.Speed),
			"manufacturer":  md.Manufacturer,
			"partNumber":    md.PartNumber,
			"serialNumber":  md.SerialNumber,
			"deviceLocator": md.DeviceLocator,
			"bankLocator":   md.BankLocator,
			"assetTag":      md.AssetTag,
		})
	}
	return records, nil
}
