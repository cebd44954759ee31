package report

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// targetNames maps canonical keys to the names firmware configuration tools
// expect. PlatformInfo and memory device names follow OpenCore's
// config.plist; keys not listed fall back to PascalCase.
var targetNames = map[string]string{
	KeySchemaVersion:  "SchemaVersion",
	KeyCPU:            "CPU",
	KeySystem:         "PlatformInfo",
	KeyMemoryModules:  "Memory",
	KeyGPUDevices:     "GPUDevices",
	KeyUSBControllers: "USBControllers",
	KeyUnknown:        "UnknownClasses",

	"cpuBrand":        "ProcessorVendor",
	"cpuModel":        "ProcessorName",
	"cpuCores":        "CoreCount",
	"cpuThreads":      "ThreadCount",
	"cpuArchitecture": "Architecture",
	"cpuFrequency":    "ProcessorFrequency",

	"motherboardManufacturer": "BoardManufacturer",
	"motherboardModel":        "BoardProduct",
	"biosVersion":             "BIOSVersion",
	"biosDate":                "BIOSReleaseDate",

	"systemModel":  "SystemProductName",
	"systemSerial": "SystemSerialNumber",
	"systemUUID":   "SystemUUID",

	"slot": "DeviceLocator",

	"vendorId":   "VendorID",
	"deviceId":   "DeviceID",
	"pciAddress": "PCIAddress",
	"macAddress": "MACAddress",
	"vramBytes":  "VRAMBytes",
}

func targetName(key string) string {
	if name, ok := targetNames[key]; ok {
		return name
	}
	return pascal(key)
}

func pascal(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// targetValue applies value conventions of the target naming: identifiers
// that firmware compares case-sensitively are upper-cased.
func targetValue(key string, v any) any {
	if key == "systemUUID" {
		if s, ok := v.(string); ok {
			return strings.ToUpper(s)
		}
	}
	return v
}
