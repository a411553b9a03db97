package cpu

// fetch8 reads the byte at PC and advances PC.
func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

// fetch16 reads a little-endian word starting at PC and advances PC by 2.
func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push8(value uint8) {
	c.SP--
	c.bus.Write(c.SP, value)
}

func (c *CPU) pop8() uint8 {
	v := c.bus.Read(c.SP)
	c.SP++
	return v
}

func (c *CPU) push16(value uint16) {
	c.push8(uint8(value >> 8))
	c.push8(uint8(value))
}

func (c *CPU) pop16() uint16 {
	lo := c.pop8()
	hi := c.pop8()
	return uint16(hi)<<8 | uint16(lo)
}

// jumpRelative adds the signed byte e to PC, used by JR.
func (c *CPU) jumpRelative(e int8) {
	c.PC = uint16(int32(c.PC) + int32(e))
}

// rst pushes PC and jumps to one of the eight fixed restart vectors.
func (c *CPU) rst(vector uint16) {
	c.push16(c.PC)
	c.PC = vector
}
