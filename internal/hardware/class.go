package hardware

// Class identifies one hardware class queried by a device adapter.
type Class string

const (
	ClassCPU         Class = "cpu"
	ClassMotherboard Class = "motherboard"
	ClassMemory      Class = "memory"
	ClassGPU         Class = "gpu"
	ClassStorage     Class = "storage"
	ClassNetwork     Class = "network"
	ClassAudio       Class = "audio"
	ClassUSB         Class = "usb"
	ClassSystem      Class = "system"
)

// Classes lists every hardware class in detection order.
var Classes = []Class{
	ClassCPU,
	ClassMotherboard,
	ClassMemory,
	ClassGPU,
	ClassStorage,
	ClassNetwork,
	ClassAudio,
	ClassUSB,
	ClassSystem,
}

// Repeated reports whether the class yields an ordered sequence of records
// rather than a single record.
func (c Class) Repeated() bool {
	switch c {
	case ClassMemory, ClassGPU, ClassStorage, ClassNetwork, ClassAudio, ClassUSB:
		return true
	}
	return false
}

// Valid reports whether c is one of the known classes.
func (c Class) Valid() bool {
	for _, known := range Classes {
		if c == known {
			return true
		}
	}
	return false
}

func (c Class) String() string { return string(c) }
