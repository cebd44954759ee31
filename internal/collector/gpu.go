package collector

import (
	"context"
	"fmt"

	"github.com/jaypipes/ghw"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// GPUAdapter lists display controllers.
func GPUAdapter() Adapter {
	return NewAdapter(hardware.ClassGPU, queryGPU)
}

func queryGPU(ctx context.Context) ([]hardware.RawRecord, error) {
	info, err := ghw.GPU()
	if err != nil {
		return nil, fmt.Errorf("gpu: %w", err)
	}
	records := make([]hardware.RawRecord, 0, len(info.GraphicsCards))
	for _, card := range info.GraphicsCards {
		if card == nil {
			continue
		}
		rec := hardware.RawRecord{"pciAddress": card.Address, "index": card.Index}
		if card.DeviceInfo != nil {
			for k, v := range pciRecord(card.DeviceInfo) {
				rec[k] = v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
