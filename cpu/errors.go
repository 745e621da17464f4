package cpu

import "fmt"

// IllegalOpcodeError is returned when the fetched byte has no defined
// meaning on the DMG. It is fatal: the CPU latches a crashed state and the
// error is expected to propagate up to the scheduler.
type IllegalOpcodeError struct {
	Opcode uint8
	CB     bool
	PC     uint16
}

func (e *IllegalOpcodeError) Error() string {
	if e.CB {
		return fmt.Sprintf("illegal opcode 0xCB%02X at PC=0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("illegal opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}
