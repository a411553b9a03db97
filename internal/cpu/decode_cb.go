package cpu

// extendedTable is the 256-entry table for CB-prefixed opcodes. The low
// three bits select the operand (6 meaning (HL)); the remaining bits
// select the operation and, for BIT/RES/SET, the bit position.
var extendedTable [256]Instruction

func init() {
	rotateShiftOps := [8]func(c *CPU, v uint8) uint8{
		(*CPU).rlc,
		(*CPU).rrc,
		(*CPU).rl,
		(*CPU).rr,
		(*CPU).sla,
		(*CPU).sra,
		(*CPU).swapNibbles,
		(*CPU).srl,
	}
	rotateShiftNames := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

	for opcode := 0; opcode < 256; opcode++ {
		reg := uint8(opcode & 0x07)
		group := uint8(opcode >> 3)
		r := reg

		switch {
		case opcode < 0x40:
			op := rotateShiftOps[group]
			name := rotateShiftNames[group]
			if r == 6 {
				extendedTable[opcode] = Instruction{name + " (HL)", false, func(c *CPU) uint8 {
					c.bus.Write(c.HL.Uint16(), op(c, c.bus.Read(c.HL.Uint16())))
					return 16
				}}
			} else {
				extendedTable[opcode] = Instruction{name + " r", false, func(c *CPU) uint8 {
					reg := c.registerIndex(r)
					*reg = op(c, *reg)
					return 8
				}}
			}
		case opcode < 0x80:
			bit := group & 0x07
			if r == 6 {
				extendedTable[opcode] = Instruction{"BIT n, (HL)", false, func(c *CPU) uint8 {
					c.testBit(c.bus.Read(c.HL.Uint16()), bit)
					return 12
				}}
			} else {
				extendedTable[opcode] = Instruction{"BIT n, r", false, func(c *CPU) uint8 {
					c.testBit(*c.registerIndex(r), bit)
					return 8
				}}
			}
		case opcode < 0xC0:
			bit := group & 0x07
			if r == 6 {
				extendedTable[opcode] = Instruction{"RES n, (HL)", false, func(c *CPU) uint8 {
					c.bus.Write(c.HL.Uint16(), clearBit(c.bus.Read(c.HL.Uint16()), bit))
					return 16
				}}
			} else {
				extendedTable[opcode] = Instruction{"RES n, r", false, func(c *CPU) uint8 {
					reg := c.registerIndex(r)
					*reg = clearBit(*reg, bit)
					return 8
				}}
			}
		default:
			bit := group & 0x07
			if r == 6 {
				extendedTable[opcode] = Instruction{"SET n, (HL)", false, func(c *CPU) uint8 {
					c.bus.Write(c.HL.Uint16(), setBit(c.bus.Read(c.HL.Uint16()), bit))
					return 16
				}}
			} else {
				extendedTable[opcode] = Instruction{"SET n, r", false, func(c *CPU) uint8 {
					reg := c.registerIndex(r)
					*reg = setBit(*reg, bit)
					return 8
				}}
			}
		}
	}
}
