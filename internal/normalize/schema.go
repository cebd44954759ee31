package normalize

import "github.com/go-tangra/go-tangra-hwreport/internal/hardware"

// fieldKind selects how a raw value is coerced.
type fieldKind uint8

const (
	kindText      fieldKind = iota // cleaned text, passed through
	kindIdentity                   // cleaned text, firmware placeholders become unknown
	kindVendor                     // identity plus vendor table collapse
	kindCount                      // unsigned integer
	kindBytes                      // unsigned integer, bytes
	kindHertz                      // float, Hz
	kindTransfers                  // unsigned integer, MT/s
	kindBitrate                    // unsigned integer, bit/s
	kindBool
	kindArch
	kindPCIID
	kindMAC
	kindUUID
	kindDriveType
	kindHostInterface
)

// alias is a raw key (folded) that feeds a canonical field. Bare numbers
// read through it are multiplied by scale.
type alias struct {
	key   string
	scale float64
}

type fieldSpec struct {
	name    string
	kind    fieldKind
	vendors vendorTable
	aliases []alias
}

func keys(names ...string) []alias {
	out := make([]alias, len(names))
	for i, n := range names {
		out[i] = alias{key: n, scale: 1}
	}
	return out
}

func scaled(scale float64, names ...string) []alias {
	out := keys(names...)
	for i := range out {
		out[i].scale = scale
	}
	return out
}

func join(groups ...[]alias) []alias {
	var out []alias
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

const (
	kib = 1 << 10
	mib = 1 << 20
)

var pciFields = []fieldSpec{
	{name: "name", kind: kindText, aliases: keys("name", "productname", "product", "description", "model")},
	{name: "vendor", kind: kindVendor, vendors: vendorPCI, aliases: keys("vendor", "vendorname", "manufacturer")},
	{name: "vendorId", kind: kindPCIID, aliases: keys("vendorid", "pcivendorid", "vendorcode")},
	{name: "deviceId", kind: kindPCIID, aliases: keys("deviceid", "productid", "pcideviceid")},
	{name: "pciAddress", kind: kindText, aliases: keys("pciaddress", "address", "busaddress", "pcislot")},
	{name: "driver", kind: kindText, aliases: keys("driver", "drivername", "kerneldriver")},
}

// schemas lists the canonical field set of every class. Order matters: it
// is the report order and, within a field, alias priority.
var schemas = map[hardware.Class][]fieldSpec{
	hardware.ClassCPU: {
		{name: "cpuBrand", kind: kindVendor, vendors: vendorCPU, aliases: keys("cpubrand", "brand", "vendor", "vendorid", "manufacturer")},
		{name: "cpuModel", kind: kindText, aliases: keys("cpumodel", "model", "modelname", "name", "brandstring")},
		{name: "cpuCores", kind: kindCount, aliases: keys("cpucores", "cores", "corecount", "numberofcores", "physicalcores")},
		{name: "cpuThreads", kind: kindCount, aliases: keys("cputhreads", "threads", "threadcount", "numberoflogicalprocessors", "logicalprocessors", "logicalcores")},
		{name: "cpuArchitecture", kind: kindArch, aliases: keys("cpuarchitecture", "arch", "architecture", "machine")},
		{name: "cpuFrequency", kind: kindHertz, aliases: join(
			keys("cpufrequency", "frequency", "freq", "hz", "clockspeed"),
			scaled(1e6, "mhz", "frequencymhz", "maxclockspeed", "maxspeedmhz", "currentspeedmhz"),
			scaled(1e9, "ghz"),
		)},
	},
	hardware.ClassMotherboard: {
		{name: "motherboardManufacturer", kind: kindVendor, vendors: vendorBoard, aliases: keys("motherboardmanufacturer", "manufacturer", "boardmanufacturer", "boardvendor", "vendor")},
		{name: "motherboardModel", kind: kindIdentity, aliases: keys("motherboardmodel", "model", "product", "boardproduct", "boardname")},
		{name: "biosVersion", kind: kindIdentity, aliases: keys("biosversion", "firmwareversion", "smbiosbiosversion")},
		{name: "biosDate", kind: kindText, aliases: keys("biosdate", "firmwaredate", "biosreleasedate", "releasedate")},
	},
	hardware.ClassMemory: {
		{name: "size", kind: kindBytes, aliases: join(
			keys("size", "sizebytes", "capacity", "capacitybytes"),
			scaled(kib, "sizekb", "sizekib"),
			scaled(mib, "sizemb", "sizemib", "sizemegabytes"),
		)},
		{name: "speed", kind: kindTransfers, aliases: keys("speed", "speedmts", "configuredspeed", "configuredclockspeed", "mts", "speedmhz")},
		{name: "manufacturer", kind: kindVendor, vendors: vendorJEDEC, aliases: keys("manufacturer", "vendor", "manufacturerid")},
		{name: "partNumber", kind: kindIdentity, aliases: keys("partnumber", "part", "pn")},
		{name: "slot", kind: kindText, aliases: keys("slot", "devicelocator", "locator", "banklocator", "bank")},
	},
	hardware.ClassSystem: {
		{name: "systemModel", kind: kindIdentity, aliases: keys("systemmodel", "model", "productname", "product", "modelidentifier")},
		{name: "systemSerial", kind: kindIdentity, aliases: keys("systemserial", "serial", "serialnumber", "identifyingnumber")},
		{name: "systemUUID", kind: kindUUID, aliases: keys("systemuuid", "uuid", "hardwareuuid")},
	},
	hardware.ClassGPU: append(append([]fieldSpec{}, pciFields...),
		fieldSpec{name: "vramBytes", kind: kindBytes, aliases: join(
			keys("vrambytes", "vram", "memorysize", "adapterram"),
			scaled(mib, "vrammb", "vrammib"),
		)},
	),
	hardware.ClassStorage: {
		{name: "name", kind: kindText, aliases: keys("name", "devicename", "kname")},
		{name: "model", kind: kindIdentity, aliases: keys("model", "productname", "product")},
		{name: "vendor", kind: kindVendor, vendors: vendorPCI, aliases: keys("vendor", "manufacturer")},
		{name: "serial", kind: kindIdentity, aliases: keys("serial", "serialnumber")},
		{name: "sizeBytes", kind: kindBytes, aliases: keys("sizebytes", "size", "capacity")},
		{name: "driveType", kind: kindDriveType, aliases: keys("drivetype", "mediatype", "type")},
		{name: "controller", kind: kindText, aliases: keys("controller", "storagecontroller", "bustype", "interface")},
		{name: "removable", kind: kindBool, aliases: keys("removable", "isremovable")},
	},
	hardware.ClassNetwork: {
		{name: "name", kind: kindText, aliases: keys("name", "interface", "ifname", "netconnectionid")},
		{name: "vendor", kind: kindVendor, vendors: vendorPCI, aliases: keys("vendor", "manufacturer")},
		{name: "product", kind: kindText, aliases: keys("product", "productname", "model", "description")},
		{name: "macAddress", kind: kindMAC, aliases: keys("macaddress", "mac", "hardwareaddress", "hwaddr", "permanentaddress")},
		{name: "driver", kind: kindText, aliases: keys("driver", "drivername", "kerneldriver")},
		{name: "pciAddress", kind: kindText, aliases: keys("pciaddress", "busaddress")},
		{name: "virtual", kind: kindBool, aliases: keys("virtual", "isvirtual")},
		{name: "linkSpeed", kind: kindBitrate, aliases: join(
			keys("linkspeed", "speed", "linkspeedbps"),
			scaled(1e6, "speedmbps", "linkspeedmbps"),
		)},
	},
	hardware.ClassAudio: pciFields,
	hardware.ClassUSB: append(append([]fieldSpec{}, pciFields...),
		fieldSpec{name: "hostInterface", kind: kindHostInterface, aliases: keys("hostinterface", "programminginterface", "progif", "controllertype")},
	),
}

// canonicalKeys holds the folded canonical names of every class. Extra keys
// that fold onto one of these are dropped so they can never shadow a
// canonical field in a report.
var canonicalKeys = func() map[hardware.Class]map[string]struct{} {
	out := make(map[hardware.Class]map[string]struct{}, len(schemas))
	for class, specs := range schemas {
		set := make(map[string]struct{}, len(specs))
		for _, s := range specs {
			set[fold(s.name)] = struct{}{}
		}
		out[class] = set
	}
	return out
}()

// Fields returns the canonical field names of class in report order, or nil
// for an unknown class.
func Fields(class hardware.Class) []string {
	specs, ok := schemas[class]
	if !ok {
		return nil
	}
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.name
	}
	return out
}
