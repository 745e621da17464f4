package cpu

import "github.com/ts95/GameBoyEmu/bit"

// execCB decodes and executes one CB-prefixed opcode. The whole 256-entry
// space is regular: bits 7:6 select the category (rotate/shift, BIT, RES,
// SET), bits 5:3 select the sub-operation or bit index, and bits 2:0 select
// the operand register (110 = (HL)).
func (c *CPU) execCB() (int, error) {
	opcodePC := c.pc - 1
	op := c.fetch8()

	r := reg8(op & 0x7)
	field := (op >> 3) & 0x7
	category := op >> 6

	cost := 16
	if r != regHLInd {
		cost = 8
	}

	switch category {
	case 0b00: // rotate/shift group, selected by field
		v := c.readReg8(r)
		var result uint8
		switch field {
		case 0:
			result = c.rlc(v)
		case 1:
			result = c.rrc(v)
		case 2:
			result = c.rl(v)
		case 3:
			result = c.rr(v)
		case 4:
			result = c.sla(v)
		case 5:
			result = c.sra(v)
		case 6:
			result = c.swap(v)
		case 7:
			result = c.srl(v)
		}
		c.writeReg8(r, result)
		return cost, nil

	case 0b01: // BIT field,r
		v := c.readReg8(r)
		c.setFlag(FlagZ, !bit.IsSet(field, v))
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, true)
		if r == regHLInd {
			return 12, nil
		}
		return cost, nil

	case 0b10: // RES field,r
		c.writeReg8(r, bit.Clear(field, c.readReg8(r)))
		if r == regHLInd {
			return 16, nil
		}
		return cost, nil

	case 0b11: // SET field,r
		c.writeReg8(r, bit.Set(field, c.readReg8(r)))
		if r == regHLInd {
			return 16, nil
		}
		return cost, nil
	}

	return 0, &IllegalOpcodeError{Opcode: op, CB: true, PC: opcodePC}
}
