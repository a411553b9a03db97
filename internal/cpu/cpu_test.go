package cpu

import (
	"testing"

	"github.com/bitmask-systems/lr35902core/internal/interrupts"
	"github.com/bitmask-systems/lr35902core/internal/types"
)

// flatBus is a 64KiB byte array implementing Bus, enough to exercise the
// CPU in isolation from the real mmu.Bus.
type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read(address uint16) uint8       { return b.mem[address] }
func (b *flatBus) Write(address uint16, value uint8) { b.mem[address] = value }

func newTestCPU() (*CPU, *flatBus, *interrupts.Service) {
	bus := &flatBus{}
	irq := interrupts.NewService()
	return New(bus, irq), bus, irq
}

func (b *flatBus) load(addr uint16, program ...uint8) {
	for i, v := range program {
		b.mem[addr+uint16(i)] = v
	}
}

func TestAddSetsFlagsAndCycles(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.load(0x100, 0x80) // ADD A, B
	c.PC = 0x100
	c.A = 0x3A
	c.B = 0xC6

	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4", cycles)
	}
	if c.A != 0x00 {
		t.Fatalf("A = %#x, want 0x00", c.A)
	}
	if c.F != 0xB0 {
		t.Fatalf("F = %#02x, want 0xB0 (Z,H,C set)", c.F)
	}
}

func TestSubHalfCarryBorrow(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.load(0x100, 0x90) // SUB B
	c.PC = 0x100
	c.A = 0x10
	c.B = 0x01

	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.A != 0x0F {
		t.Fatalf("A = %#x, want 0x0f", c.A)
	}
	if !c.isFlagSet(FlagHalfCarry) {
		t.Fatal("expected half-carry (borrow) flag set")
	}
	if !c.isFlagSet(FlagSubtract) {
		t.Fatal("expected subtract flag set")
	}
	if c.isFlagSet(FlagCarry) {
		t.Fatal("expected carry flag clear")
	}
}

func TestConditionalJRCycles(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.load(0x100, 0x20, 0x05) // JR NZ, +5
	c.PC = 0x100
	c.setFlag(FlagZero)

	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 8 {
		t.Fatalf("not-taken JR cycles = %d, want 8", cycles)
	}
	if c.PC != 0x102 {
		t.Fatalf("PC after not-taken JR = %#x, want 0x102", c.PC)
	}

	bus.load(0x102, 0x20, 0x05)
	c.clearFlag(FlagZero)
	cycles, err = c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 12 {
		t.Fatalf("taken JR cycles = %d, want 12", cycles)
	}
	if c.PC != 0x102+2+5 {
		t.Fatalf("PC after taken JR = %#x, want %#x", c.PC, 0x102+2+5)
	}
}

func TestConditionalCallAndRetCycles(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.SP = 0xFFFE
	bus.load(0x100, 0xC4, 0x00, 0x02) // CALL NZ, 0x0200
	c.PC = 0x100
	c.clearFlag(FlagZero)

	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 24 {
		t.Fatalf("taken CALL cycles = %d, want 24", cycles)
	}
	if c.PC != 0x0200 {
		t.Fatalf("PC after CALL = %#x, want 0x0200", c.PC)
	}

	bus.load(0x0200, 0xC0) // RET NZ
	cycles, err = c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 20 {
		t.Fatalf("taken RET cycles = %d, want 20", cycles)
	}
	if c.PC != 0x103 {
		t.Fatalf("PC after RET = %#x, want 0x103", c.PC)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.SP = 0xFFFE
	c.BC.SetUint16(0x1234)
	bus.load(0x100, 0xC5, 0xD1) // PUSH BC ; POP DE
	c.PC = 0x100

	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.DE.Uint16() != 0x1234 {
		t.Fatalf("DE = %#04x, want 0x1234", c.DE.Uint16())
	}
	if c.SP != 0xFFFE {
		t.Fatalf("SP = %#04x, want 0xfffe", c.SP)
	}
}

func TestInterruptServicing(t *testing.T) {
	c, bus, irq := newTestCPU()
	bus.load(0x100, 0x00) // NOP, shouldn't run
	c.PC = 0x100
	c.SP = 0xFFFE
	irq.IME = true
	irq.Enable = 0x1F
	irq.Request(interrupts.VBlank)

	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 20 {
		t.Fatalf("interrupt service cycles = %d, want 20", cycles)
	}
	if irq.IME {
		t.Fatal("IME should be cleared while servicing")
	}
	if irq.Flag&1 != 0 {
		t.Fatal("VBlank IF bit should be cleared")
	}
	if c.PC != interrupts.VBlankVector {
		t.Fatalf("PC = %#04x, want vblank vector", c.PC)
	}
	if c.pop16() != 0x100 {
		t.Fatal("pushed return address should be the interrupted PC")
	}
}

func TestHaltWithIMESetServicesInterruptAndExitsHaltImmediately(t *testing.T) {
	// The universal "EI; HALT" idiom: IME is set, the CPU parks in
	// ModeHalt, and a later V-Blank should both service the interrupt
	// and leave HALT in the same Step, not merely once some further
	// interrupt happens to arrive.
	c, bus, irq := newTestCPU()
	bus.load(0x100, 0x76) // HALT
	c.PC = 0x100
	c.SP = 0xFFFE
	irq.IME = true

	if _, err := c.Step(); err != nil {
		t.Fatalf("Step (HALT): %v", err)
	}
	if c.mode != ModeHalt {
		t.Fatalf("mode = %v, want ModeHalt", c.mode)
	}

	irq.Enable = 0x1F
	irq.Request(interrupts.VBlank)
	bus.load(interrupts.VBlankVector, 0x00) // NOP at the ISR entry point

	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step (service): %v", err)
	}
	if cycles != 20 {
		t.Fatalf("cycles = %d, want 20", cycles)
	}
	if c.mode != ModeNormal {
		t.Fatalf("mode = %v, want ModeNormal immediately after servicing", c.mode)
	}
	if c.PC != interrupts.VBlankVector {
		t.Fatalf("PC = %#04x, want vblank vector", c.PC)
	}

	cycles, err = c.Step() // ISR's first instruction must now run normally
	if err != nil {
		t.Fatalf("Step (ISR body): %v", err)
	}
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4 for the ISR's NOP", cycles)
	}
	if c.PC != interrupts.VBlankVector+1 {
		t.Fatalf("PC = %#04x, want the ISR to have advanced past its first instruction", c.PC)
	}
}

func TestHaltWakesOnPendingInterruptWithoutServicingWhenIMEClear(t *testing.T) {
	c, bus, irq := newTestCPU()
	bus.load(0x100, 0x76) // HALT
	c.PC = 0x100
	irq.IME = false

	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.mode != ModeHalt {
		t.Fatalf("mode = %v, want ModeHalt", c.mode)
	}

	irq.Enable = 0x1F
	irq.Request(interrupts.VBlank)
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.mode != ModeNormal {
		t.Fatal("CPU should wake from halt once an interrupt is pending")
	}
	_ = cycles
}

func TestHaltBugRepeatsNextOpcode(t *testing.T) {
	c, bus, irq := newTestCPU()
	// HALT followed by INC A; with IME clear and an interrupt already
	// pending, HALT must not advance PC past itself, so the INC A opcode
	// is fetched and executed twice.
	bus.load(0x100, 0x76, 0x3C)
	c.PC = 0x100
	irq.IME = false
	irq.Enable = 0x1F
	irq.Request(interrupts.VBlank)

	if _, err := c.Step(); err != nil { // HALT
		t.Fatalf("Step: %v", err)
	}
	if c.mode != ModeHaltBug {
		t.Fatalf("mode = %v, want ModeHaltBug", c.mode)
	}

	if _, err := c.Step(); err != nil { // first INC A, PC does not advance past it
		t.Fatalf("Step: %v", err)
	}
	if c.A != 1 {
		t.Fatalf("A = %d after first INC A, want 1", c.A)
	}
	if c.PC != 0x101 {
		t.Fatalf("PC after halt-bug replay = %#x, want 0x101", c.PC)
	}

	if _, err := c.Step(); err != nil { // INC A executes again normally
		t.Fatalf("Step: %v", err)
	}
	if c.A != 2 {
		t.Fatalf("A = %d after second INC A, want 2", c.A)
	}
}

func TestEITakesEffectAfterOneInstructionDelay(t *testing.T) {
	c, bus, irq := newTestCPU()
	bus.load(0x100, 0xFB, 0x00, 0x00) // EI ; NOP ; NOP
	c.PC = 0x100
	irq.IME = false

	if _, err := c.Step(); err != nil { // EI
		t.Fatalf("Step: %v", err)
	}
	if irq.IME {
		t.Fatal("IME must not be set immediately after EI")
	}

	if _, err := c.Step(); err != nil { // NOP, IME becomes active now
		t.Fatalf("Step: %v", err)
	}
	if !irq.IME {
		t.Fatal("IME should be set after the instruction following EI")
	}
}

func TestInvalidOpcodeReturnsError(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.load(0x100, 0xD3)
	c.PC = 0x100

	if _, err := c.Step(); err == nil {
		t.Fatal("expected ErrInvalidInstruction for 0xD3")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c, _, _ := newTestCPU()
	c.A, c.B, c.C = 0x12, 0x34, 0x56
	c.PC, c.SP = 0xABCD, 0xDCBA
	c.mode = ModeHalt

	st := types.NewState()
	c.Save(st)
	st.ResetPosition()

	c2, _, _ := newTestCPU()
	c2.Load(st)

	if c2.A != c.A || c2.B != c.B || c2.C != c.C || c2.PC != c.PC || c2.SP != c.SP || c2.mode != c.mode {
		t.Fatalf("Load did not restore what Save wrote: got %+v", c2)
	}
}
