// Package ppu implements the pixel-processing unit: a four-mode state
// machine driven by CPU cycles that renders background tiles into a
// 160x144 framebuffer and raises LCD/V-Blank interrupts (spec.md §4.4).
package ppu

import (
	"github.com/bitmask-systems/lr35902core/internal/interrupts"
	"github.com/bitmask-systems/lr35902core/internal/ram"
	"github.com/bitmask-systems/lr35902core/internal/types"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	// cycle budgets, corrected per spec.md §9's Open Question
	// (80+172+204 = 456 per line, not the source's inconsistent 174/204).
	oamScanCycles   = 80
	transferCycles  = 172
	hblankCycles    = 204
	cyclesPerLine   = oamScanCycles + transferCycles + hblankCycles
	linesPerFrame   = 154
	vblankStartLine = 144
)

// Mode is one of the four PPU states.
type Mode = uint8

const (
	HBlank Mode = iota
	VBlank
	OAMScan
	PixelTransfer
)

// Framebuffer holds one frame of 2-bit palette indices, row-major.
type Framebuffer [ScreenWidth * ScreenHeight]byte

// PPU is the pixel-processing unit.
type PPU struct {
	vram *ram.RAM // 8000-9FFF
	oam  *ram.RAM // FE00-FE9F

	lcdc, stat, scy, scx, ly, lyc, bgp uint8

	mode      Mode
	modeClock int

	prevLCDOn bool

	framebuffer Framebuffer

	irq *interrupts.Service
}

// New returns a PPU with the LCD off and LY/mode at their power-up
// values.
func New(irq *interrupts.Service) *PPU {
	return &PPU{
		vram: ram.New(0x2000),
		oam:  ram.New(0xA0),
		irq:  irq,
		stat: uint8(OAMScan),
		mode: OAMScan,
		// prevLCDOn starts true so the very first Step call behaves as a
		// normally-running PPU rather than tripping the LCD re-enable
		// quirk below; that quirk is for a runtime LCDC bit 7 toggle.
		prevLCDOn: true,
	}
}

// Read serves VRAM, OAM, and the registers spec.md's mmu package routes
// to the Video component (LCDC, STAT, SCY, SCX, LY, LYC, BGP).
func (p *PPU) Read(address uint16) uint8 {
	switch {
	case address >= types.VRAMStart && address <= types.VRAMEnd:
		return p.vram.Read(address - types.VRAMStart)
	case address >= types.OAMStart && address <= types.OAMEnd:
		return p.oam.Read(address - types.OAMStart)
	case address == types.LCDC:
		return p.lcdc
	case address == types.STAT:
		return p.stat | 0x80
	case address == types.SCY:
		return p.scy
	case address == types.SCX:
		return p.scx
	case address == types.LY:
		return p.ly
	case address == types.LYC:
		return p.lyc
	case address == types.BGP:
		return p.bgp
	}
	return 0xFF
}

// Write stores to VRAM, OAM, or a PPU register. Direct writes to STAT/LY
// bypass the bus's special-case masking (mmu.Bus handles those rules
// before delegating here), so this method stores raw values.
func (p *PPU) Write(address uint16, value uint8) {
	switch {
	case address >= types.VRAMStart && address <= types.VRAMEnd:
		p.vram.Write(address-types.VRAMStart, value)
	case address >= types.OAMStart && address <= types.OAMEnd:
		p.oam.Write(address-types.OAMStart, value)
	case address == types.LCDC:
		p.lcdc = value
	case address == types.STAT:
		p.stat = value
	case address == types.SCY:
		p.scy = value
	case address == types.SCX:
		p.scx = value
	case address == types.LY:
		p.ly = value
	case address == types.LYC:
		p.lyc = value
	case address == types.BGP:
		p.bgp = value
	}
}

func (p *PPU) lcdOn() bool { return p.lcdc&types.Bit7 != 0 }

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	p.stat = p.stat&0xFC | mode

	var bit uint8
	switch mode {
	case HBlank:
		bit = types.Bit3
	case VBlank:
		bit = types.Bit4
	case OAMScan:
		bit = types.Bit5
	default:
		bit = 0
	}
	if bit != 0 && p.stat&bit != 0 {
		p.irq.Request(interrupts.LCDStat)
	}
}

func (p *PPU) checkCoincidence() {
	if p.ly == p.lyc {
		p.stat |= types.Bit2
		if p.stat&types.Bit6 != 0 {
			p.irq.Request(interrupts.LCDStat)
		}
	} else {
		p.stat &^= types.Bit2
	}
}

// Step advances the PPU by cycles machine cycles, driving mode
// transitions, scanline rendering, and interrupt requests.
func (p *PPU) Step(cycles uint8) {
	if !p.lcdOn() {
		p.ly = 0
		p.modeClock = 0
		p.setMode(VBlank)
		p.prevLCDOn = false
		return
	}
	if !p.prevLCDOn {
		// On the cycle the LCD re-enables, resume in H-Blank for the
		// remaining budget of the (re-started) scanline.
		p.modeClock = 0
		p.setMode(HBlank)
	}
	p.prevLCDOn = true

	p.modeClock += int(cycles)

	switch p.mode {
	case OAMScan:
		if p.modeClock >= oamScanCycles {
			p.modeClock -= oamScanCycles
			p.setMode(PixelTransfer)
		}
	case PixelTransfer:
		if p.modeClock >= transferCycles {
			p.modeClock -= transferCycles
			p.renderScanline()
			p.setMode(HBlank)
		}
	case HBlank:
		if p.modeClock >= hblankCycles {
			p.modeClock -= hblankCycles
			p.ly++
			p.checkCoincidence()
			if p.ly >= vblankStartLine {
				p.setMode(VBlank)
				p.irq.Request(interrupts.VBlank)
			} else {
				p.setMode(OAMScan)
			}
		}
	case VBlank:
		if p.modeClock >= cyclesPerLine {
			p.modeClock -= cyclesPerLine
			p.ly++
			if p.ly > linesPerFrame-1 {
				p.ly = 0
				p.checkCoincidence()
				p.setMode(OAMScan)
			} else {
				p.checkCoincidence()
			}
		}
	}
}

// renderScanline draws the background for the current LY into the
// framebuffer, per spec.md §4.4.
func (p *PPU) renderScanline() {
	if p.lcdc&types.Bit0 == 0 {
		return
	}

	y := uint16(p.scy) + uint16(p.ly)
	y &= 0xFF
	tileRow := y / 8
	rowInTile := y % 8

	var tileMapBase uint16 = 0x9800
	if p.lcdc&types.Bit3 != 0 {
		tileMapBase = 0x9C00
	}
	unsignedTiles := p.lcdc&types.Bit4 != 0

	for screenX := 0; screenX < ScreenWidth; screenX++ {
		x := (uint16(p.scx) + uint16(screenX)) & 0xFF
		tileCol := x / 8
		colInTile := x % 8

		mapAddr := tileMapBase + tileRow*32 + tileCol
		tileIndex := p.Read(mapAddr)

		var tileDataAddr uint16
		if unsignedTiles {
			tileDataAddr = 0x8000 + uint16(tileIndex)*16
		} else {
			tileDataAddr = uint16(int32(0x9000) + int32(int8(tileIndex))*16)
		}

		lo := p.Read(tileDataAddr + rowInTile*2)
		hi := p.Read(tileDataAddr + rowInTile*2 + 1)

		bit := 7 - colInTile
		colorIndex := (hi>>bit&1)<<1 | (lo >> bit & 1)

		shade := (p.bgp >> (colorIndex * 2)) & 0x03
		p.framebuffer[int(p.ly)*ScreenWidth+screenX] = shade
	}
}

// Framebuffer returns the most recently rendered frame.
func (p *PPU) Framebuffer() Framebuffer {
	return p.framebuffer
}

// LY returns the current scanline, for diagnostics/tests.
func (p *PPU) LY() uint8 { return p.ly }

// Mode returns the current PPU mode, for diagnostics/tests.
func (p *PPU) Mode() Mode { return p.mode }

// Save writes the PPU's state.
func (p *PPU) Save(s *types.State) {
	p.vram.Save(s)
	p.oam.Save(s)
	s.Write8(p.lcdc)
	s.Write8(p.stat)
	s.Write8(p.scy)
	s.Write8(p.scx)
	s.Write8(p.ly)
	s.Write8(p.lyc)
	s.Write8(p.bgp)
	s.Write8(p.mode)
	s.Write32(uint32(p.modeClock))
	s.WriteBool(p.prevLCDOn)
	s.WriteData(p.framebuffer[:])
}

// Load restores the PPU's state.
func (p *PPU) Load(s *types.State) {
	p.vram.Load(s)
	p.oam.Load(s)
	p.lcdc = s.Read8()
	p.stat = s.Read8()
	p.scy = s.Read8()
	p.scx = s.Read8()
	p.ly = s.Read8()
	p.lyc = s.Read8()
	p.bgp = s.Read8()
	p.mode = s.Read8()
	p.modeClock = int(s.Read32())
	p.prevLCDOn = s.ReadBool()
	s.ReadData(p.framebuffer[:])
}
