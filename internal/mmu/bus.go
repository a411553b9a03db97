// Package mmu implements the Game Boy's single 16-bit address space:
// cartridge, work RAM, video RAM, OAM, I/O registers, high RAM, and the
// interrupt enable byte, including echo-RAM aliasing and the boot-ROM
// overlay (spec.md §4.2).
package mmu

import (
	"github.com/bitmask-systems/lr35902core/internal/cartridge"
	"github.com/bitmask-systems/lr35902core/internal/interrupts"
	"github.com/bitmask-systems/lr35902core/internal/joypad"
	"github.com/bitmask-systems/lr35902core/internal/ram"
	"github.com/bitmask-systems/lr35902core/internal/types"
	"github.com/bitmask-systems/lr35902core/pkg/log"
)

// VideoBus is the subset of the PPU's surface the bus routes VRAM/OAM and
// register accesses to. The PPU implements this directly.
type VideoBus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Bus is the Game Boy's memory bus.
type Bus struct {
	Cart       *cartridge.Cartridge
	Interrupts *interrupts.Service
	Joypad     *joypad.State
	Video      VideoBus // VRAM, OAM, and the LCDC/STAT/SCY/SCX/LY/LYC/BGP registers

	wram *ram.RAM // C000-DFFF, 8KiB, also serves the E000-FDFF echo
	hram *ram.RAM // FF80-FFFE, 127 bytes

	// ioRegs backs every FF00-FF7F address that isn't one of the
	// specially-handled registers below (serial, sound, and anything
	// this module doesn't interpret) with plain read/write storage, so
	// unrecognized I/O addresses behave like ordinary memory instead of
	// panicking.
	ioRegs [0x80]byte

	bootROM      []byte
	bootDisabled bool

	Log log.Logger

	OutOfRangeReads  uint64
	OutOfRangeWrites uint64
}

// New returns a Bus wired to cart, with boot overlaid at 0000-00FF if
// bootROM is non-nil and exactly 256 bytes. If bootROM is nil, the boot
// overlay starts disabled (spec.md §6's driver choice).
func New(cart *cartridge.Cartridge, bootROM []byte) *Bus {
	b := &Bus{
		Cart:       cart,
		Interrupts: interrupts.NewService(),
		Joypad:     joypad.New(),
		wram:       ram.New(0x2000),
		hram:       ram.New(0x7F),
		Log:        log.New(),
	}
	if len(bootROM) == 256 {
		b.bootROM = bootROM
	} else {
		b.bootDisabled = true
	}
	return b
}

// DisableBoot turns off the boot ROM overlay immediately, as if the
// boot ROM had already written to the BOOT register. Used when a driver
// chooses to skip booting and seed post-boot state directly.
func (b *Bus) DisableBoot() {
	b.bootDisabled = true
}

// AttachVideo wires the PPU into the bus. Must be called before Read/Write
// touch VRAM, OAM, or PPU registers.
func (b *Bus) AttachVideo(v VideoBus) {
	b.Video = v
}

// Read returns the byte at address, per the dispatch table in spec.md §3.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= types.ROMBank0End:
		if !b.bootDisabled && address <= types.BootROMEnd {
			return b.bootROM[address]
		}
		return b.Cart.Read(address)
	case address <= types.ROMBankNEnd:
		return b.Cart.Read(address)
	case address <= types.VRAMEnd:
		return b.Video.Read(address)
	case address <= types.ExternalEnd:
		return b.Cart.Read(address)
	case address <= types.WRAMEnd:
		return b.wram.Read(address - types.WRAMStart)
	case address <= types.EchoEnd:
		return b.wram.Read(address - types.WRAMStart - 0x2000)
	case address <= types.OAMEnd:
		return b.Video.Read(address)
	case address <= types.UnusableEnd:
		b.OutOfRangeReads++
		b.Log.Debugf("read from unusable memory at %#04x", address)
		return 0x00
	case address == types.P1:
		return b.Joypad.Read()
	case address == types.IF:
		return b.Interrupts.Read(address)
	case isVideoRegister(address):
		return b.Video.Read(address)
	case address <= types.IOEnd:
		return b.ioRegs[address-types.IOStart]
	case address <= types.HRAMEnd:
		return b.hram.Read(address - types.HRAMStart)
	case address == types.InterruptEnable:
		return b.Interrupts.Read(address)
	}
	return 0xFF
}

// Write stores value at address, per the dispatch table in spec.md §3/§4.2.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= types.ROMBankNEnd:
		b.Cart.Write(address, value)
	case address <= types.VRAMEnd:
		b.Video.Write(address, value)
	case address <= types.ExternalEnd:
		b.Cart.Write(address, value)
	case address <= types.WRAMEnd:
		b.wram.Write(address-types.WRAMStart, value)
	case address <= types.EchoEnd:
		b.wram.Write(address-types.WRAMStart-0x2000, value)
	case address <= types.OAMEnd:
		b.Video.Write(address, value)
	case address <= types.UnusableEnd:
		b.OutOfRangeWrites++
		b.Log.Debugf("write to unusable memory at %#04x (dropped)", address)
	case address == types.DIV:
		b.ioRegs[address-types.IOStart] = 0
	case address == types.IF:
		b.Interrupts.Write(address, value)
	case address == types.P1:
		b.Joypad.Write(value)
	case address == types.DMA:
		b.ioRegs[address-types.IOStart] = value
		b.doDMA(value)
	case address == types.STAT:
		// preserve the low 3 bits (mode + coincidence); only bits 3-7 are
		// programmable, and bit 7 always reads back as 1.
		current := b.Video.Read(types.STAT)
		b.Video.Write(types.STAT, current&0x07|value&0x78|0x80)
	case address == types.LY:
		b.Video.Write(types.LY, 0)
	case address == types.BOOT:
		b.bootDisabled = true
	case isVideoRegister(address):
		b.Video.Write(address, value)
	case address <= types.IOEnd:
		b.ioRegs[address-types.IOStart] = value
	case address <= types.HRAMEnd:
		b.hram.Write(address-types.HRAMStart, value)
	case address == types.InterruptEnable:
		b.Interrupts.Write(address, value)
	}
}

// isVideoRegister reports whether address is one of the PPU-owned
// registers the Video component answers directly, rather than the
// bus's generic I/O register file.
func isVideoRegister(address uint16) bool {
	switch address {
	case types.LCDC, types.STAT, types.SCY, types.SCX, types.LY, types.LYC, types.BGP:
		return true
	}
	return false
}

// doDMA copies 160 bytes from value*0x100 into OAM, modeled as
// instantaneous (spec.md §4.2).
func (b *Bus) doDMA(value uint8) {
	src := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.Video.Write(types.OAMStart+i, b.Read(src+i))
	}
}

// ReadWord returns the little-endian word at address (low byte first).
func (b *Bus) ReadWord(address uint16) uint16 {
	low := b.Read(address)
	high := b.Read(address + 1)
	return uint16(high)<<8 | uint16(low)
}

// WriteWord writes value little-endian at address (low byte first).
func (b *Bus) WriteWord(address uint16, value uint16) {
	b.Write(address, uint8(value))
	b.Write(address+1, uint8(value>>8))
}

// RequestInterrupt sets the IF bit for kind.
func (b *Bus) RequestInterrupt(kind interrupts.Kind) {
	b.Interrupts.Request(kind)
}

// SetButton updates the joypad's logical button state and raises the
// joypad interrupt if the press is newly observed.
func (b *Bus) SetButton(btn joypad.Button, pressed bool) {
	if pressed {
		if b.Joypad.Press(btn) {
			b.RequestInterrupt(interrupts.Joypad)
		}
	} else {
		b.Joypad.Release(btn)
	}
}

// Save writes the bus's own state (WRAM, HRAM, the generic I/O register
// file, boot-overlay flag); the
// cartridge, interrupts, joypad, and video subsystems save themselves.
func (b *Bus) Save(s *types.State) {
	b.wram.Save(s)
	b.hram.Save(s)
	s.WriteData(b.ioRegs[:])
	s.WriteBool(b.bootDisabled)
}

// Load restores the bus's own state.
func (b *Bus) Load(s *types.State) {
	b.wram.Load(s)
	b.hram.Load(s)
	s.ReadData(b.ioRegs[:])
	b.bootDisabled = s.ReadBool()
}
