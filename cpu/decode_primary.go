package cpu

import "github.com/ts95/GameBoyEmu/bit"

// illegalPrimary is the set of primary opcodes with no defined meaning on
// the DMG; executing one is a fatal decode error.
var illegalPrimary = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true,
	0xE3: true, 0xE4: true, 0xEB: true, 0xEC: true, 0xED: true,
	0xF4: true, 0xFC: true, 0xFD: true,
}

// execNext fetches and executes one instruction, returning its cost in
// T-cycles.
func (c *CPU) execNext() (int, error) {
	opcodePC := c.pc
	op := c.fetch8()

	if illegalPrimary[op] {
		return 4, &IllegalOpcodeError{Opcode: op, PC: opcodePC}
	}

	if op == 0xCB {
		return c.execCB()
	}

	// 0x40-0x7F: LD r,r' (with 0x76 carved out as HALT).
	if op >= 0x40 && op <= 0x7F {
		if op == 0x76 {
			c.execHalt()
			return 4, nil
		}
		dst := reg8((op >> 3) & 0x7)
		src := reg8(op & 0x7)
		v := c.readReg8(src)
		c.writeReg8(dst, v)
		if dst == regHLInd || src == regHLInd {
			return 8, nil
		}
		return 4, nil
	}

	// 0x80-0xBF: ALU A,r.
	if op >= 0x80 && op <= 0xBF {
		aluSel := aluOp((op >> 3) & 0x7)
		src := reg8(op & 0x7)
		operand := c.readReg8(src)
		c.applyALU(aluSel, operand)
		if src == regHLInd {
			return 8, nil
		}
		return 4, nil
	}

	switch op {
	case 0x00: // NOP
		return 4, nil
	case 0x10: // STOP
		c.fetch8() // the second STOP byte is always discarded
		c.stopped = true
		return 4, nil

	case 0x01, 0x11, 0x21, 0x31: // LD rr,d16
		c.writeReg16SP(reg16sp(op>>4), c.fetch16())
		return 12, nil

	case 0x02: // LD (BC),A
		c.bus.Write(c.getBC(), c.a)
		return 8, nil
	case 0x12: // LD (DE),A
		c.bus.Write(c.getDE(), c.a)
		return 8, nil
	case 0x22: // LD (HL+),A
		hl := c.getHL()
		c.bus.Write(hl, c.a)
		c.setHL(hl + 1)
		return 8, nil
	case 0x32: // LD (HL-),A
		hl := c.getHL()
		c.bus.Write(hl, c.a)
		c.setHL(hl - 1)
		return 8, nil

	case 0x0A: // LD A,(BC)
		c.a = c.bus.Read(c.getBC())
		return 8, nil
	case 0x1A: // LD A,(DE)
		c.a = c.bus.Read(c.getDE())
		return 8, nil
	case 0x2A: // LD A,(HL+)
		hl := c.getHL()
		c.a = c.bus.Read(hl)
		c.setHL(hl + 1)
		return 8, nil
	case 0x3A: // LD A,(HL-)
		hl := c.getHL()
		c.a = c.bus.Read(hl)
		c.setHL(hl - 1)
		return 8, nil

	case 0x03, 0x13, 0x23, 0x33: // INC rr
		r := reg16sp(op >> 4)
		c.writeReg16SP(r, c.readReg16SP(r)+1)
		return 8, nil
	case 0x0B, 0x1B, 0x2B, 0x3B: // DEC rr
		r := reg16sp((op - 0x0B) >> 4)
		c.writeReg16SP(r, c.readReg16SP(r)-1)
		return 8, nil

	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C: // INC r
		r := reg8((op >> 3) & 0x7)
		c.writeReg8(r, c.inc8(c.readReg8(r)))
		if r == regHLInd {
			return 12, nil
		}
		return 4, nil
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D: // DEC r
		r := reg8((op >> 3) & 0x7)
		c.writeReg8(r, c.dec8(c.readReg8(r)))
		if r == regHLInd {
			return 12, nil
		}
		return 4, nil

	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E: // LD r,d8
		r := reg8((op >> 3) & 0x7)
		v := c.fetch8()
		c.writeReg8(r, v)
		if r == regHLInd {
			return 12, nil
		}
		return 8, nil

	case 0x07: // RLCA
		c.a = c.rlc(c.a)
		c.setFlag(FlagZ, false)
		return 4, nil
	case 0x0F: // RRCA
		c.a = c.rrc(c.a)
		c.setFlag(FlagZ, false)
		return 4, nil
	case 0x17: // RLA
		c.a = c.rl(c.a)
		c.setFlag(FlagZ, false)
		return 4, nil
	case 0x1F: // RRA
		c.a = c.rr(c.a)
		c.setFlag(FlagZ, false)
		return 4, nil

	case 0x08: // LD (a16),SP
		address := c.fetch16()
		c.bus.Write(address, bit.Low(c.sp))
		c.bus.Write(address+1, bit.High(c.sp))
		return 20, nil

	case 0x09, 0x19, 0x29, 0x39: // ADD HL,rr
		c.addHL16(c.readReg16SP(reg16sp(op >> 4)))
		return 8, nil

	case 0x18: // JR r8
		e := c.fetchSigned8()
		c.pc = uint16(int32(c.pc) + int32(e))
		return 12, nil
	case 0x20, 0x28, 0x30, 0x38: // JR cc,r8
		e := c.fetchSigned8()
		if c.evalCondition(condition((op - 0x20) >> 3)) {
			c.pc = uint16(int32(c.pc) + int32(e))
			return 12, nil
		}
		return 8, nil

	case 0x27: // DAA
		c.daa()
		return 4, nil
	case 0x2F: // CPL
		c.a = ^c.a
		c.setFlag(FlagN, true)
		c.setFlag(FlagH, true)
		return 4, nil
	case 0x37: // SCF
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, true)
		return 4, nil
	case 0x3F: // CCF
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, !c.flag(FlagC))
		return 4, nil

	case 0xC0, 0xC8, 0xD0, 0xD8: // RET cc
		if c.evalCondition(condition((op - 0xC0) >> 3)) {
			c.pc = c.popStack()
			return 20, nil
		}
		return 8, nil
	case 0xC9: // RET
		c.pc = c.popStack()
		return 16, nil
	case 0xD9: // RETI
		c.pc = c.popStack()
		c.ime = true
		return 16, nil

	case 0xC1, 0xD1, 0xE1, 0xF1: // POP rr
		c.writeReg16AF(reg16af((op-0xC1)>>4), c.popStack())
		return 12, nil
	case 0xC5, 0xD5, 0xE5, 0xF5: // PUSH rr
		c.pushStack(c.readReg16AF(reg16af((op - 0xC5) >> 4)))
		return 16, nil

	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,a16
		target := c.fetch16()
		if c.evalCondition(condition((op - 0xC2) >> 3)) {
			c.pc = target
			return 16, nil
		}
		return 12, nil
	case 0xC3: // JP a16
		c.pc = c.fetch16()
		return 16, nil
	case 0xE9: // JP (HL)
		c.pc = c.getHL()
		return 4, nil

	case 0xC4, 0xCC, 0xD4, 0xDC: // CALL cc,a16
		target := c.fetch16()
		if c.evalCondition(condition((op - 0xC4) >> 3)) {
			c.pushStack(c.pc)
			c.pc = target
			return 24, nil
		}
		return 12, nil
	case 0xCD: // CALL a16
		target := c.fetch16()
		c.pushStack(c.pc)
		c.pc = target
		return 24, nil

	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST n
		c.pushStack(c.pc)
		c.pc = uint16(op & 0x38)
		return 16, nil

	case 0xC6: // ADD A,d8
		c.applyALU(aluADD, c.fetch8())
		return 8, nil
	case 0xCE: // ADC A,d8
		c.applyALU(aluADC, c.fetch8())
		return 8, nil
	case 0xD6: // SUB d8
		c.applyALU(aluSUB, c.fetch8())
		return 8, nil
	case 0xDE: // SBC A,d8
		c.applyALU(aluSBC, c.fetch8())
		return 8, nil
	case 0xE6: // AND d8
		c.applyALU(aluAND, c.fetch8())
		return 8, nil
	case 0xEE: // XOR d8
		c.applyALU(aluXOR, c.fetch8())
		return 8, nil
	case 0xF6: // OR d8
		c.applyALU(aluOR, c.fetch8())
		return 8, nil
	case 0xFE: // CP d8
		c.applyALU(aluCP, c.fetch8())
		return 8, nil

	case 0xE0: // LDH (a8),A
		c.bus.Write(0xFF00+uint16(c.fetch8()), c.a)
		return 12, nil
	case 0xF0: // LDH A,(a8)
		c.a = c.bus.Read(0xFF00 + uint16(c.fetch8()))
		return 12, nil
	case 0xE2: // LD (C),A
		c.bus.Write(0xFF00+uint16(c.c), c.a)
		return 8, nil
	case 0xF2: // LD A,(C)
		c.a = c.bus.Read(0xFF00 + uint16(c.c))
		return 8, nil
	case 0xEA: // LD (a16),A
		c.bus.Write(c.fetch16(), c.a)
		return 16, nil
	case 0xFA: // LD A,(a16)
		c.a = c.bus.Read(c.fetch16())
		return 16, nil

	case 0xE8: // ADD SP,e8
		e := c.fetchSigned8()
		result, h, cy := addSPSigned(c.sp, e)
		c.sp = result
		c.setFlag(FlagZ, false)
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, h)
		c.setFlag(FlagC, cy)
		return 16, nil
	case 0xF8: // LD HL,SP+e8
		e := c.fetchSigned8()
		result, h, cy := addSPSigned(c.sp, e)
		c.setHL(result)
		c.setFlag(FlagZ, false)
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, h)
		c.setFlag(FlagC, cy)
		return 12, nil
	case 0xF9: // LD SP,HL
		c.sp = c.getHL()
		return 8, nil

	case 0xF3: // DI
		c.ime = false
		c.eiPending = false
		return 4, nil
	case 0xFB: // EI
		c.eiPending = true
		return 4, nil

	default:
		return 4, &IllegalOpcodeError{Opcode: op, PC: opcodePC}
	}
}

// execHalt puts the CPU to sleep until an interrupt is pending. If IME is
// clear and an interrupt is already pending at the moment HALT executes,
// the DMG's HALT bug triggers: the following opcode byte is fetched twice.
func (c *CPU) execHalt() {
	if !c.ime && c.pendingInterrupts() {
		c.haltBug = true
		return
	}
	c.halted = true
}

