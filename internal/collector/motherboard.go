//go:build !windows

package collector

import (
	"context"
	"fmt"

	"github.com/jaypipes/ghw"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// MotherboardAdapter reports baseboard and firmware details from SMBIOS,
// falling back to the DMI files under /sys when the tables are unreadable.
func MotherboardAdapter() Adapter {
	return NewAdapter(hardware.ClassMotherboard, single(queryMotherboard))
}

func queryMotherboard(ctx context.Context) (hardware.RawRecord, error) {
	s, err := readSMBIOS()
	if err == nil {
		bb, bios := s.BaseboardInformation, s.BIOSInformation
		return hardware.RawRecord{
			"manufacturer": bb.Manufacturer,
			"product":      bb.Product,
			"boardVersion": bb.Version,
			"boardSerial":  bb.SerialNumber,
			"assetTag":     bb.AssetTag,
			"biosVendor":   bios.Vendor,
			"biosVersion":  bios.Version,
			"biosDate":     bios.ReleaseDate,
		}, nil
	}

	bb, bbErr := ghw.Baseboard()
	if bbErr != nil {
		return nil, fmt.Errorf("%w; baseboard: %v", err, bbErr)
	}
	rec := hardware.RawRecord{
		"manufacturer": bb.Vendor,
		"product":      bb.Product,
		"boardVersion": bb.Version,
		"boardSerial":  bb.SerialNumber,
		"assetTag":     bb.AssetTag,
	}
	if bios, err := ghw.BIOS(); err == nil {
		rec["biosVendor"] = bios.Vendor
		rec["biosVersion"] = bios.Version
		rec["biosDate"] = bios.Date
	}
	return rec, nil
}
