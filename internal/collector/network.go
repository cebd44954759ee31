package collector

import (
	"context"
	"fmt"

	"github.com/jaypipes/ghw"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// NetworkAdapter lists network interfaces, physical and virtual.
func NetworkAdapter() Adapter {
	return NewAdapter(hardware.ClassNetwork, queryNetwork)
}

func queryNetwork(ctx context.Context) ([]hardware.RawRecord, error) {
	info, err := ghw.Network()
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}
	records := make([]hardware.RawRecord, 0, len(info.NICs))
	for _, nic := range info.NICs {
		if nic == nil {
			continue
		}
		rec := hardware.RawRecord{
			"name":       nic.Name,
			"macAddress": nic.MacAddress,
			"isVirtual":  nic.IsVirtual,
			"speed":      nic.Speed,
			"duplex":     nic.Duplex,
		}
		if nic.PCIAddress != nil {
			rec["pciAddress"] = *nic.PCIAddress
		}
		records = append(records, rec)
	}
	return records, nil
}
