package cartridge

// mbc0 is the fixed, unbanked mapping: the whole ROM window reads the raw
// image, writes to ROM are ignored, and external RAM (if present per the
// header) is a flat array with no bank switching.
type mbc0 struct {
	rom []byte
	ram []byte
}

func newMBC0(rom []byte, header Header) *mbc0 {
	return &mbc0{rom: rom, ram: make([]byte, header.RAMSize)}
}

func (m *mbc0) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF:
		if int(address) < len(m.rom) {
			return m.rom[address]
		}
		return 0xFF
	case address >= 0xA000 && address <= 0xBFFF:
		if len(m.ram) == 0 {
			return 0xFF
		}
		offset := int(address - 0xA000)
		if offset >= len(m.ram) {
			return 0xFF
		}
		return m.ram[offset]
	}
	return 0xFF
}

func (m *mbc0) Write(address uint16, value uint8) {
	// ROM writes are a no-op in MBC0.
	if address >= 0xA000 && address <= 0xBFFF && len(m.ram) > 0 {
		offset := int(address - 0xA000)
		if offset < len(m.ram) {
			m.ram[offset] = value
		}
	}
}

func (m *mbc0) SaveRAM() []byte { return m.ram }
func (m *mbc0) LoadRAM(data []byte) {
	copy(m.ram, data)
}
