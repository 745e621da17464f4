// Package cpu implements the Sharp LR35902 instruction decoder/executor:
// register file, fetch/decode/execute, flag computation and interrupt
// servicing. It depends only on a small Bus capability interface so it can
// be driven against a fake bus in isolation.
package cpu

import (
	"github.com/ts95/GameBoyEmu/addr"
	"github.com/ts95/GameBoyEmu/bit"
)

// Bus is the capability set the CPU needs from the address space.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// CPU holds the Sharp LR35902 register file and execution state.
type CPU struct {
	a, f, b, c, d, e, h, l uint8
	sp, pc                 uint16

	ime       bool // interrupt master enable
	eiPending bool // EI takes effect after the *next* instruction completes
	halted    bool
	stopped   bool // STOP latch; cleared by joypad input or an enabled, pending interrupt
	crashed   bool // latched after an illegal opcode; Step keeps erroring
	haltBug   bool // next fetch re-reads the same byte without advancing PC

	cycles uint64

	bus Bus
}

// New creates a CPU with the documented DMG post-boot register state. The
// caller is responsible for having already applied the power-on I/O
// register state to the bus (see memory.Bus.LoadCartridge).
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	return c
}

// Cycles returns the running total of T-cycles executed.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Crashed reports whether the CPU has latched a fatal (illegal-opcode)
// state; once true, Step keeps returning the same error.
func (c *CPU) Crashed() bool { return c.crashed }

// Stopped reports whether the CPU is in the low-power STOP state, which a
// joypad transition or an enabled, pending interrupt clears.
func (c *CPU) Stopped() bool { return c.stopped }

// WakeFromStop clears the STOP latch; the memory bus calls this when it
// detects a joypad button transition while the CPU is stopped.
func (c *CPU) WakeFromStop() { c.stopped = false }

// PC, SP and the register accessors below exist for debuggers/tests; the
// instruction set itself never needs to reach outside the package.
func (c *CPU) PC() uint16   { return c.pc }
func (c *CPU) SP() uint16   { return c.sp }
func (c *CPU) A() uint8     { return c.a }
func (c *CPU) F() uint8     { return c.f }
func (c *CPU) IME() bool    { return c.ime }
func (c *CPU) Halted() bool { return c.halted }

// Step executes exactly one instruction (or, while halted with no pending
// interrupt, consumes a single 4-cycle idle tick) and services one pending
// interrupt if enabled. It returns the number of T-cycles consumed.
func (c *CPU) Step() (int, error) {
	if c.crashed {
		return 0, &IllegalOpcodeError{PC: c.pc}
	}

	if c.stopped {
		if c.pendingInterrupts() {
			c.stopped = false
		} else {
			return 4, nil
		}
	}

	if c.halted {
		if c.pendingInterrupts() {
			c.halted = false
		} else {
			return 4, nil
		}
	}

	// EI's effect is delayed until after the instruction following it: the
	// enable armed by a *previous* Step only takes effect once this
	// instruction has executed, even if this instruction is itself an EI.
	enableAfter := c.eiPending
	c.eiPending = false

	cycles, err := c.execNext()
	if err != nil {
		c.crashed = true
		return cycles, err
	}
	c.cycles += uint64(cycles)

	if enableAfter {
		c.ime = true
	}

	dispatched := c.serviceInterrupts()
	if dispatched > 0 {
		// Covers the case where IME was already set and an interrupt was
		// already pending at the moment HALT executed: real hardware never
		// actually sleeps there, it falls straight into the ISR.
		c.halted = false
	}
	cycles += dispatched

	return cycles, nil
}

func (c *CPU) pendingInterrupts() bool {
	ie := c.bus.Read(addr.IE)
	iflag := c.bus.Read(addr.IF)
	return ie&iflag&0x1F != 0
}

// serviceInterrupts dispatches the highest-priority enabled+pending
// interrupt, if IME is set. It returns the 20 T-cycles the dispatch costs,
// or 0 if nothing was serviced.
func (c *CPU) serviceInterrupts() int {
	if !c.ime {
		return 0
	}

	ie := c.bus.Read(addr.IE)
	iflag := c.bus.Read(addr.IF)
	pending := ie & iflag & 0x1F
	if pending == 0 {
		return 0
	}

	for _, interrupt := range addr.AllInterrupts {
		if !bit.IsSet(interrupt.Bit(), pending) {
			continue
		}

		c.bus.Write(addr.IF, bit.Clear(interrupt.Bit(), iflag))
		c.ime = false
		c.pushStack(c.pc)
		c.pc = interrupt.Vector()
		return 20
	}

	return 0
}

// fetch8 reads the byte at PC and advances PC, honoring the HALT bug: the
// first fetch after a buggy HALT re-reads the same address without
// advancing.
func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
		return v
	}
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	low := c.fetch8()
	high := c.fetch8()
	return bit.Combine(high, low)
}

func (c *CPU) fetchSigned8() int8 {
	return int8(c.fetch8())
}

func (c *CPU) pushStack(v uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(v))
	c.sp--
	c.bus.Write(c.sp, bit.Low(v))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}
