package normalize

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

var archNames = map[string]hardware.Arch{
	"x86_64":  hardware.ArchX86_64,
	"x86-64":  hardware.ArchX86_64,
	"amd64":   hardware.ArchX86_64,
	"x64":     hardware.ArchX86_64,
	"intel64": hardware.ArchX86_64,
	"em64t":   hardware.ArchX86_64,
	"i386":    hardware.ArchI386,
	"i486":    hardware.ArchI386,
	"i586":    hardware.ArchI386,
	"i686":    hardware.ArchI386,
	"x86":     hardware.ArchI386,
	"386":     hardware.ArchI386,
	"ia32":    hardware.ArchI386,
	"arm64":   hardware.ArchARM64,
	"arm64e":  hardware.ArchARM64,
	"aarch64": hardware.ArchARM64,
	"armv8":   hardware.ArchARM64,
	"arm":     hardware.ArchARM,
	"armv6l":  hardware.ArchARM,
	"armv7":   hardware.ArchARM,
	"armv7l":  hardware.ArchARM,
	"armhf":   hardware.ArchARM,
	"ppc64le": hardware.ArchPPC64LE,
	"ppc64el": hardware.ArchPPC64LE,
	"s390x":   hardware.ArchS390X,
	"riscv64": hardware.ArchRISCV64,
}

// windowsArchCodes are the PROCESSOR_ARCHITECTURE values reported by
// Win32_Processor.Architecture. Itanium (6) has no canonical name.
var windowsArchCodes = map[uint64]hardware.Arch{
	0:  hardware.ArchI386,
	5:  hardware.ArchARM,
	9:  hardware.ArchX86_64,
	12: hardware.ArchARM64,
}

// archCompanions are raw keys that identify the instruction set without
// naming the architecture itself. Brand strings are never consulted.
var archCompanions = []string{"isa", "instructionset", "architecturecode"}

// parseArch maps an explicit architecture string onto the enumeration.
func parseArch(v any) (hardware.Arch, numberState) {
	s, ok := rawText(v)
	if !ok {
		return hardware.ArchUnknown, numberInvalid
	}
	if s == "" || isPlaceholder(s) {
		return hardware.ArchUnknown, numberAbsent
	}
	if a, ok := archNames[strings.ToLower(s)]; ok {
		return a, numberOK
	}
	return hardware.ArchUnknown, numberInvalid
}

// inferArch derives the architecture from a companion field. Only a single
// unambiguous answer is accepted: companions that disagree leave it unknown.
func inferArch(raw map[string]any) hardware.Arch {
	found := hardware.ArchUnknown
	for _, key := range archCompanions {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var a hardware.Arch
		if key == "architecturecode" {
			code, err := cast.ToUint64E(v)
			if err != nil {
				continue
			}
			a = windowsArchCodes[code]
		} else {
			var state numberState
			a, state = parseArch(v)
			if state != numberOK {
				continue
			}
		}
		if !a.Known() {
			continue
		}
		if found.Known() && found != a {
			return hardware.ArchUnknown
		}
		found = a
	}
	return found
}
