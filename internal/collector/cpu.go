//go:build !windows

package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// CPUAdapter reads processor details through gopsutil. Only the first
// package is reported; core and thread counts cover the whole machine.
func CPUAdapter() Adapter {
	return NewAdapter(hardware.ClassCPU, single(queryCPU))
}

func queryCPU(ctx context.Context) (hardware.RawRecord, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("cpu info: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("cpu info: no processors reported")
	}
	p := infos[0]

	rec := hardware.RawRecord{
		"vendorId":  p.VendorID,
		"modelName": p.ModelName,
		"family":    p.Family,
		"stepping":  p.Stepping,
		"microcode": p.Microcode,
		"cacheSize": p.CacheSize,
		"mhz":       p.Mhz,
		"packages":  countPackages(infos),
	}

	// Counts failures leave the field unreported rather than failing the class.
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		rec["cores"] = n
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		rec["threads"] = n
	}
	if hi, err := host.InfoWithContext(ctx); err == nil {
		rec["arch"] = hi.KernelArch
	}
	return rec, nil
}

func countPackages(infos []cpu.InfoStat) int {
	seen := make(map[string]struct{})
	for _, p := range infos {
		seen[p.PhysicalID] = struct{}{}
	}
	return len(seen)
}
