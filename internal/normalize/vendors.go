package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// cpuVendors maps CPUID vendor strings, ARM implementer codes and common
// marketing variants to one canonical brand.
var cpuVendors = map[string]string{
	"genuineintel":                 "Intel",
	"intel":                        "Intel",
	"intel corporation":            "Intel",
	"intel(r) corporation":         "Intel",
	"authenticamd":                 "AMD",
	"amd":                          "AMD",
	"advanced micro devices":       "AMD",
	"advanced micro devices, inc.": "AMD",
	"hygongenuine":                 "Hygon",
	"centaurhauls":                 "Centaur",
	"shanghai":                     "Zhaoxin",
	"apple":                        "Apple",
	"apple inc.":                   "Apple",
	"0x41":                         "ARM",
	"0x43":                         "Cavium",
	"0x48":                         "HiSilicon",
	"0x4e":                         "NVIDIA",
	"0x51":                         "Qualcomm",
	"0x61":                         "Apple",
}

// pciVendorIDs maps PCI-SIG vendor IDs (lower-case hex, no prefix) to names.
var pciVendorIDs = map[string]string{
	"1002": "AMD",
	"1022": "AMD",
	"10de": "NVIDIA",
	"8086": "Intel",
	"10ec": "Realtek",
	"14e4": "Broadcom",
	"168c": "Qualcomm Atheros",
	"15b3": "Mellanox",
	"1b4b": "Marvell",
	"144d": "Samsung",
	"1c5c": "SK hynix",
	"1987": "Phison",
	"15b7": "Sandisk",
	"106b": "Apple",
	"1af4": "Red Hat",
	"1b36": "Red Hat",
	"15ad": "VMware",
	"80ee": "VirtualBox",
	"1234": "QEMU",
	"1b21": "ASMedia",
	"1106": "VIA",
	"1912": "Renesas",
	"1d0f": "Amazon",
	"1414": "Microsoft",
	"13b5": "ARM",
}

// pciVendorNames collapses the long vendor names found in pci.ids.
var pciVendorNames = map[string]string{
	"advanced micro devices, inc. [amd/ati]": "AMD",
	"advanced micro devices, inc. [amd]":     "AMD",
	"nvidia corporation":                     "NVIDIA",
	"intel corporation":                      "Intel",
	"realtek semiconductor co., ltd.":        "Realtek",
	"broadcom inc. and subsidiaries":         "Broadcom",
	"qualcomm atheros":                       "Qualcomm Atheros",
	"mellanox technologies":                  "Mellanox",
	"samsung electronics co ltd":             "Samsung",
	"sk hynix":                               "SK hynix",
	"apple inc.":                             "Apple",
	"red hat, inc.":                          "Red Hat",
	"vmware":                                 "VMware",
	"asmedia technology inc.":                "ASMedia",
	"renesas technology corp.":               "Renesas",
}

// jedecIDs maps JEDEC JEP106 IDs (code<<8 | bank byte) to module makers.
var jedecIDs = map[uint16]string{
	0x2C80: "Micron",
	0xCE80: "Samsung",
	0xAD80: "SK Hynix",
	0x4F01: "Transcend",
	0x9801: "Kingston",
	0x0B83: "A-DATA",
	0xCD04: "G.Skill",
	0x5105: "Qimonda",
	0x2503: "Kingmax",
	0x029E: "Corsair",
	0xC102: "Infineon",
	0x9B05: "Crucial",
}

var jedecNames = map[string]string{
	"micron":              "Micron",
	"micron technology":   "Micron",
	"samsung":             "Samsung",
	"hynix":               "SK Hynix",
	"sk hynix":            "SK Hynix",
	"hynix semiconductor": "SK Hynix",
	"kingston":            "Kingston",
	"corsair":             "Corsair",
	"g.skill":             "G.Skill",
	"g skill":             "G.Skill",
	"crucial":             "Crucial",
	"crucial technology":  "Crucial",
	"transcend":           "Transcend",
	"a-data":              "A-DATA",
	"adata":               "A-DATA",
	"a-data technology":   "A-DATA",
	"infineon":            "Infineon",
	"qimonda":             "Qimonda",
}

// boardVendors collapses exact SMBIOS manufacturer strings.
var boardVendors = map[string]string{
	"asustek computer inc.":              "ASUS",
	"asustek computer inc":               "ASUS",
	"micro-star international co., ltd.": "MSI",
	"micro-star international co., ltd":  "MSI",
	"gigabyte technology co., ltd.":      "Gigabyte",
	"asrock":                             "ASRock",
	"dell inc.":                          "Dell",
	"apple inc.":                         "Apple",
	"lenovo":                             "Lenovo",
	"hewlett-packard":                    "HP",
	"hp":                                 "HP",
	"supermicro":                         "Supermicro",
	"intel corporation":                  "Intel",
	"microsoft corporation":              "Microsoft",
	"qemu":                               "QEMU",
	"innotek gmbh":                       "VirtualBox",
	"vmware, inc.":                       "VMware",
}

// vendorTable identifies which collapse table a vendor field uses.
type vendorTable uint8

const (
	vendorNone vendorTable = iota
	vendorCPU
	vendorPCI
	vendorJEDEC
	vendorBoard
)

// collapseVendor returns the canonical vendor name for s when the mapping is
// unambiguous, or s unchanged.
func collapseVendor(table vendorTable, s string) string {
	key := strings.ToLower(s)
	switch table {
	case vendorCPU:
		if name, ok := cpuVendors[key]; ok {
			return name
		}
	case vendorPCI:
		if id, ok := parsePCIID(s); ok {
			if name, ok := pciVendorIDs[id]; ok {
				return name
			}
			return s
		}
		if name, ok := pciVendorNames[key]; ok {
			return name
		}
	case vendorJEDEC:
		if name, ok := jedecNames[key]; ok {
			return name
		}
		if id, ok := parseJEDECID(s); ok {
			if name, ok := jedecIDs[id]; ok {
				return name
			}
		}
	case vendorBoard:
		if name, ok := boardVendors[key]; ok {
			return name
		}
	}
	return s
}

// PCIVendorName maps a canonical "0x10de"-style vendor ID to a name, or ""
// when the ID is not in the table.
func PCIVendorName(vendorID string) string {
	id, ok := parsePCIID(vendorID)
	if !ok {
		return ""
	}
	return pciVendorIDs[id]
}

// parsePCIID accepts "10de", "0x10DE" and returns the 4-digit lower-case
// hex form without prefix.
func parsePCIID(s string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(s))
	h = strings.TrimPrefix(h, "0x")
	if len(h) == 0 || len(h) > 4 {
		return "", false
	}
	n, err := strconv.ParseUint(h, 16, 16)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%04x", n), true
}

// parseJEDECID decodes the "80CE" form (bank byte, then manufacturer code)
// that Windows and some dmidecode builds report. Longer strings padded with
// zeros ("80CE000080CE") use the leading four digits.
func parseJEDECID(s string) (uint16, bool) {
	h := strings.ToLower(strings.TrimSpace(s))
	h = strings.TrimPrefix(h, "0x")
	if len(h) < 4 || len(h)%2 != 0 {
		return 0, false
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(h[:4], 16, 16)
	if err != nil {
		return 0, false
	}
	bank, code := uint16(n>>8), uint16(n&0xFF)
	return code<<8 | bank, true
}
