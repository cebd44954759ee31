package collector

import (
	"context"
	"fmt"

	"github.com/jaypipes/ghw"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// StorageAdapter lists block devices (disks, not partitions).
func StorageAdapter() Adapter {
	return NewAdapter(hardware.ClassStorage, queryStorage)
}

func queryStorage(ctx context.Context) ([]hardware.RawRecord, error) {
	info, err := ghw.Block()
	if err != nil {
		return nil, fmt.Errorf("block: %w", err)
	}
	records := make([]hardware.RawRecord, 0, len(info.Disks))
	for _, d := range info.Disks {
		if d == nil {
			continue
		}
		records = append(records, hardware.RawRecord{
			"name":              d.Name,
			"model":             d.Model,
			"vendor":            d.Vendor,
			"serialNumber":      d.SerialNumber,
			"sizeBytes":         d.SizeBytes,
			"physicalBlockSize": d.PhysicalBlockSizeBytes,
			"driveType":         d.DriveType.String(),
			"storageController": d.StorageController.String(),
			"isRemovable":       d.IsRemovable,
			"wwn":               d.WWN,
			"busPath":           d.BusPath,
			"partitions":        len(d.Partitions),
		})
	}
	return records, nil
}
