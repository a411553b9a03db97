package cartridge

import "fmt"

// MemoryBankController is the contract every cartridge variant satisfies.
// Read/Write cover both the ROM window (0000-7FFF) and the external RAM
// window (A000-BFFF); the controller is responsible for telling them
// apart by address.
type MemoryBankController interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// SaveRAM and LoadRAM expose the external RAM contents for a driver
	// to persist to a battery-backed save file.
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// ErrUnsupportedMBC is returned by New when the cartridge header names a
// controller type this module does not implement.
type ErrUnsupportedMBC struct {
	Type uint8
}

func (e ErrUnsupportedMBC) Error() string {
	return fmt.Sprintf("cartridge: unsupported MBC type 0x%02X", e.Type)
}
