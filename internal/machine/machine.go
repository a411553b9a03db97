// Package machine ties the CPU, PPU, and memory bus into the driver-
// facing core API: step an instruction or a whole frame, feed button
// input, and snapshot/restore the running state. It is the only package
// above internal/cpu, internal/ppu, and internal/mmu that a driver
// (terminal renderer, test harness, WebSocket bridge) imports.
package machine

import (
	"github.com/bitmask-systems/lr35902core/internal/cartridge"
	"github.com/bitmask-systems/lr35902core/internal/cpu"
	"github.com/bitmask-systems/lr35902core/internal/joypad"
	"github.com/bitmask-systems/lr35902core/internal/mmu"
	"github.com/bitmask-systems/lr35902core/internal/ppu"
)

// Framebuffer is one rendered frame of 2-bit palette indices.
type Framebuffer = ppu.Framebuffer

// cyclesPerFrame is the fixed machine-cycle budget of one 59.7Hz frame:
// 154 scanlines of 456 cycles each.
const cyclesPerFrame = 70224

// Machine owns one Game Boy's worth of CPU, PPU, and bus state and
// advances them in lockstep: the CPU executes one instruction at a time
// and reports how many cycles it took, which Machine feeds to the PPU
// before asking the CPU to go again.
type Machine struct {
	cpu *cpu.CPU
	ppu *ppu.PPU
	bus *mmu.Bus
}

// New returns a Machine with cartridgeBytes loaded and, if bootROM is a
// valid 256-byte image, the boot overlay enabled. With no boot ROM the
// Machine starts at the standard post-boot CPU/register state.
func New(cartridgeBytes, bootROM []byte, opts ...Option) (*Machine, error) {
	cart, err := cartridge.New(cartridgeBytes)
	if err != nil {
		return nil, err
	}

	bus := mmu.New(cart, bootROM)
	video := ppu.New(bus.Interrupts)
	bus.AttachVideo(video)
	core := cpu.New(bus, bus.Interrupts)

	m := &Machine{cpu: core, ppu: video, bus: bus}

	if len(bootROM) != 256 {
		m.seedPostBootState()
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// startingRegisters are the I/O register values a real boot ROM leaves
// behind, used when a Machine skips booting.
var startingRegisters = map[uint16]uint8{
	0xFF10: 0x80, // NR10, present even though the APU is out of scope: a
	0xFF11: 0xBF, // game reading these back post-boot should see the same
	0xFF12: 0xF3, // values a real console leaves, not zero.
	0xFF14: 0xBF,
	0xFF16: 0x3F,
	0xFF19: 0xBF,
	0xFF1A: 0x7F,
	0xFF1B: 0xFF,
	0xFF1C: 0x9F,
	0xFF1E: 0xBF,
	0xFF20: 0xFF,
	0xFF24: 0x77,
	0xFF25: 0xF3,
	0xFF26: 0xF1,
}

func (m *Machine) seedPostBootState() {
	for addr, value := range startingRegisters {
		m.bus.Write(addr, value)
	}
	m.bus.Write(0xFF40, 0x91) // LCDC
	m.bus.Write(0xFF47, 0xFC) // BGP

	m.cpu.PC = 0x0100
	m.cpu.SP = 0xFFFE
	m.cpu.A, m.cpu.F = 0x01, 0xB0
	m.cpu.B, m.cpu.C = 0x00, 0x13
	m.cpu.D, m.cpu.E = 0x00, 0xD8
	m.cpu.H, m.cpu.L = 0x01, 0x4D
}

// StepInstruction executes exactly one CPU instruction (or services one
// pending interrupt), feeds its cycle cost to the PPU, and returns that
// cost. An invalid opcode is reported rather than panicking, so a driver
// can decide how to react (halt, log, fall back to a debugger).
func (m *Machine) StepInstruction() (uint8, error) {
	cycles, err := m.cpu.Step()
	if err != nil {
		m.bus.Log.Errorf("%v", err)
		return 0, err
	}
	m.ppu.Step(cycles)
	return cycles, nil
}

// StepFrame runs instructions until at least one full frame's worth of
// cycles (70224) has elapsed, then returns the PPU's framebuffer. An
// invalid opcode mid-frame stops the frame early and is dropped; the
// next StepInstruction or StepFrame call will surface it again since the
// CPU's PC hasn't moved past the bad opcode.
func (m *Machine) StepFrame() Framebuffer {
	var elapsed uint32
	for elapsed < cyclesPerFrame {
		cycles, err := m.StepInstruction()
		if err != nil {
			break
		}
		elapsed += uint32(cycles)
	}
	return m.ppu.Framebuffer()
}

// SetButton presses or releases btn, raising the joypad interrupt on a
// press if the corresponding selection line is active.
func (m *Machine) SetButton(btn joypad.Button, pressed bool) {
	m.bus.SetButton(btn, pressed)
}
