//go:build !windows

package collector

import (
	"fmt"
	"sync"

	"github.com/siderolabs/go-smbios/smbios"
)

// readSMBIOS decodes the firmware tables once per process; the motherboard,
// memory and system adapters share the result.
var readSMBIOS = sync.OnceValues(func() (*smbios.SMBIOS, error) {
	s, err := smbios.New()
	if err != nil {
		return nil, fmt.Errorf("read smbios: %w", err)
	}
	return s, nil
})
