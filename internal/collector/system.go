//go:build !windows

package collector

import (
	"context"
	"fmt"

	"github.com/jaypipes/ghw"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// SystemAdapter reports the machine's model, serial number and UUID from
// SMBIOS, falling back to the DMI product files.
func SystemAdapter() Adapter {
	return NewAdapter(hardware.ClassSystem, single(querySystem))
}

func querySystem(ctx context.Context) (hardware.RawRecord, error) {
	s, err := readSMBIOS()
	if err == nil {
		si := s.SystemInformation
		return hardware.RawRecord{
			"manufacturer": si.Manufacturer,
			"productName":  si.ProductName,
			"version":      si.Version,
			"serialNumber": si.SerialNumber,
			"uuid":         si.UUID,
			"sku":          si.SKUNumber,
			"family":       si.Family,
		}, nil
	}

	p, pErr := ghw.Product()
	if pErr != nil {
		return nil, fmt.Errorf("%w; product: %v", err, pErr)
	}
	return hardware.RawRecord{
		"manufacturer": p.Vendor,
		"productName":  p.Name,
		"version":      p.Version,
		"serialNumber": p.SerialNumber,
		"uuid":         p.UUID,
		"sku":          p.SKU,
		"family":       p.Family,
	}, nil
}
