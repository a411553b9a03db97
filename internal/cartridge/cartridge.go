// Package cartridge owns the raw ROM image, decodes the header, and
// dispatches reads/writes to the memory bank controller the header
// requests (spec.md §4.1).
package cartridge

import "github.com/cespare/xxhash/v2"

// Cartridge wraps a concrete MemoryBankController chosen from the header
// at construction time.
type Cartridge struct {
	MemoryBankController
	header   Header
	checksum uint64
}

// New parses rom's header and returns a Cartridge backed by the
// controller the header's type byte (0x147) requests. rom shorter than
// 0x150 bytes, or a header naming an unrecognized controller, returns
// ErrUnsupportedMBC.
func New(rom []byte) (*Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, ErrUnsupportedMBC{Type: 0xFF}
	}
	header := parseHeader(rom)

	var mbc MemoryBankController
	switch header.CartridgeType {
	case ROM:
		mbc = newMBC0(rom, header)
	case MBC1, MBC1RAM, MBC1RAMBATT:
		mbc = newMBC1(rom, header)
	default:
		return nil, ErrUnsupportedMBC{Type: uint8(header.CartridgeType)}
	}

	return &Cartridge{
		MemoryBankController: mbc,
		header:               header,
		checksum:             xxhash.Sum64(rom),
	}, nil
}

// Header returns the parsed cartridge header.
func (c *Cartridge) Header() Header {
	return c.header
}

// Title returns the cartridge's title from the header.
func (c *Cartridge) Title() string {
	return c.header.Title
}

// Checksum returns the xxhash64 digest of the full ROM image, used to
// bind a snapshot to the cartridge it was taken against and to name
// battery-backed save files.
func (c *Cartridge) Checksum() uint64 {
	return c.checksum
}
