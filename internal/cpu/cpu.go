// Package cpu implements the Sharp LR35902 instruction set: fetch/decode/
// execute, the flag register, and interrupt servicing. A CPU executes one
// full instruction per Step call and reports how many machine cycles it
// took; it never ticks other components itself (internal/machine owns
// that accumulation, per spec.md's execution model).
package cpu

import (
	"fmt"

	"github.com/bitmask-systems/lr35902core/internal/interrupts"
	"github.com/bitmask-systems/lr35902core/internal/types"
)

// Bus is the memory surface the CPU fetches instructions and operands
// from. *mmu.Bus implements it.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// mode tracks the handful of CPU states that sit outside normal
// fetch-execute: halted or stopped awaiting a pending enabled
// interrupt, the halt bug's PC-repeat, and the one-instruction delay
// before EI takes effect.
type mode uint8

const (
	ModeNormal mode = iota
	ModeHalt
	ModeStop
	ModeHaltBug
	ModeEnableIME
)

// ErrInvalidInstruction is returned by Step when the fetched opcode (or
// CB-prefixed opcode) has no defined behavior on real hardware.
type ErrInvalidInstruction struct {
	PC     uint16
	Opcode uint8
}

func (e ErrInvalidInstruction) Error() string {
	return fmt.Sprintf("cpu: invalid opcode %#02x at %#04x", e.Opcode, e.PC)
}

// CPU is the Sharp LR35902 core: eight 8-bit registers (addressable as
// four 16-bit pairs), the program counter and stack pointer, and the
// interrupt master-enable flag it shares with the interrupt controller.
type CPU struct {
	Registers

	PC, SP uint16

	bus  Bus
	irq  *interrupts.Service
	mode mode
}

// New returns a CPU reading and writing through bus and sharing irq with
// the rest of the machine. The register pairs are wired to alias the
// CPU's own fields so AF/BC/DE/HL and A/F/B/C/.../L stay in sync.
func New(bus Bus, irq *interrupts.Service) *CPU {
	c := &CPU{bus: bus, irq: irq}
	c.AF = &RegisterPair{Hi: &c.A, Lo: &c.F}
	c.BC = &RegisterPair{Hi: &c.B, Lo: &c.C}
	c.DE = &RegisterPair{Hi: &c.D, Lo: &c.E}
	c.HL = &RegisterPair{Hi: &c.H, Lo: &c.L}
	return c
}

// Step executes one instruction (checking for a pending interrupt first)
// and returns the number of machine cycles it took.
func (c *CPU) Step() (uint8, error) {
	if c.irq.IME && c.hasPendingInterrupt() {
		return c.serviceInterrupt(), nil
	}

	switch c.mode {
	case ModeHalt, ModeStop:
		if c.hasPendingInterrupt() {
			c.mode = ModeNormal
		} else {
			return 4, nil
		}
	case ModeEnableIME:
		c.mode = ModeNormal
		c.irq.IME = true
	case ModeHaltBug:
		c.mode = ModeNormal
		opcode := c.bus.Read(c.PC) // PC does not advance: the halt bug replays this byte
		return c.execute(opcode)
	}

	pc := c.PC
	opcode := c.fetch8()
	cycles, err := c.execute(opcode)
	if err != nil {
		// leave PC on the faulting opcode so the next Step reports it again
		c.PC = pc
	}
	return cycles, err
}

// execute dispatches opcode through the primary table, following into
// the CB-prefixed table when opcode is 0xCB.
func (c *CPU) execute(opcode uint8) (uint8, error) {
	instr := primaryTable[opcode]
	if instr.Invalid {
		return 0, ErrInvalidInstruction{PC: c.PC - 1, Opcode: opcode}
	}
	if opcode == 0xCB {
		sub := c.fetch8()
		cbInstr := extendedTable[sub]
		if cbInstr.Invalid {
			return 0, ErrInvalidInstruction{PC: c.PC - 1, Opcode: sub}
		}
		return cbInstr.Exec(c), nil
	}
	return instr.Exec(c), nil
}

// hasPendingInterrupt reports whether any enabled interrupt is currently
// requested, regardless of IME; used to decide when HALT/STOP wake up
// and whether a HALT instruction should trigger the halt bug.
func (c *CPU) hasPendingInterrupt() bool {
	return c.irq.Pending()
}

// serviceInterrupt clears IME, acknowledges the highest-priority pending
// interrupt, and jumps to its vector. Costs 20 machine cycles. Exits
// HALT/STOP the same as a real wake-up, otherwise a CPU halted with
// interrupts enabled jumps to the vector but never leaves ModeHalt, and
// the ISR body does not run until some later, unrelated interrupt fires.
func (c *CPU) serviceInterrupt() uint8 {
	kind, ok := c.irq.Highest()
	if !ok {
		return 4
	}
	c.mode = ModeNormal
	c.irq.IME = false
	c.irq.Clear(kind)
	c.push16(c.PC)
	c.PC = interrupts.Vec(kind)
	return 20
}

// halt enters ModeHalt, or ModeHaltBug if IME is clear and an interrupt
// is already pending (the documented hardware quirk where the byte after
// HALT is fetched twice).
func (c *CPU) halt() {
	if !c.irq.IME && c.hasPendingInterrupt() {
		c.mode = ModeHaltBug
		return
	}
	c.mode = ModeHalt
}

// Save writes the CPU's registers, PC, SP, and mode. The interrupt
// controller saves itself separately since internal/machine owns it.
func (c *CPU) Save(st *types.State) {
	st.Write8(c.A)
	st.Write8(c.F)
	st.Write8(c.B)
	st.Write8(c.C)
	st.Write8(c.D)
	st.Write8(c.E)
	st.Write8(c.H)
	st.Write8(c.L)
	st.Write16(c.PC)
	st.Write16(c.SP)
	st.Write8(uint8(c.mode))
}

// Load restores what Save wrote.
func (c *CPU) Load(st *types.State) {
	c.A = st.Read8()
	c.F = st.Read8() & 0xF0
	c.B = st.Read8()
	c.C = st.Read8()
	c.D = st.Read8()
	c.E = st.Read8()
	c.H = st.Read8()
	c.L = st.Read8()
	c.PC = st.Read16()
	c.SP = st.Read16()
	c.mode = mode(st.Read8())
}
