package collector

// DefaultAdapters returns the adapters for the local host, one per class.
func DefaultAdapters() []Adapter {
	return []Adapter{
		CPUAdapter(),
		MotherboardAdapter(),
		MemoryAdapter(),
		GPUAdapter(),
		StorageAdapter(),
		NetworkAdapter(),
		AudioAdapter(),
		USBAdapter(),
		SystemAdapter(),
	}
}
