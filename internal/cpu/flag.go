package cpu

import "github.com/bitmask-systems/lr35902core/internal/types"

// Flag identifies one of the four bits the hardware defines in the F
// register; the low nibble of F is always zero.
type Flag = types.Bit

const (
	FlagZero      Flag = types.Bit7
	FlagSubtract  Flag = types.Bit6
	FlagHalfCarry Flag = types.Bit5
	FlagCarry     Flag = types.Bit4
)

func (c *CPU) setFlag(flag Flag) {
	c.F = types.Set(c.F, flag) & 0xF0
}

func (c *CPU) clearFlag(flag Flag) {
	c.F = types.Reset(c.F, flag) & 0xF0
}

func (c *CPU) isFlagSet(flag Flag) bool {
	return types.Test(c.F, flag)
}

// shouldFlag sets flag if cond is true, clears it otherwise.
func (c *CPU) shouldFlag(flag Flag, cond bool) {
	if cond {
		c.setFlag(flag)
	} else {
		c.clearFlag(flag)
	}
}

// setFlags assigns all four flags at once, the shape nearly every ALU
// helper needs.
func (c *CPU) setFlags(zero, subtract, halfCarry, carry bool) {
	c.shouldFlag(FlagZero, zero)
	c.shouldFlag(FlagSubtract, subtract)
	c.shouldFlag(FlagHalfCarry, halfCarry)
	c.shouldFlag(FlagCarry, carry)
}

// shouldZeroFlag sets FlagZero according to value, leaving the rest alone.
func (c *CPU) shouldZeroFlag(value uint8) {
	c.shouldFlag(FlagZero, value == 0)
}
