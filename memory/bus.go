// Package memory implements the DMG address bus: region dispatch, MBC1
// cartridge banking, echo-RAM aliasing, the joypad register, and the
// DIV/TIMA timer. It is the single owner of the emulator's mutable state
// outside of the CPU registers and PPU framebuffer.
package memory

import (
	"log/slog"

	"github.com/ts95/GameBoyEmu/addr"
	"github.com/ts95/GameBoyEmu/bit"
)

// powerOnRegisters holds the exact I/O byte values the DMG boot ROM leaves
// behind, per §6 of the specification. They are applied once, right after
// a cartridge is loaded and before the first CPU step.
var powerOnRegisters = map[uint16]uint8{
	0xFF05: 0x00, 0xFF06: 0x00, 0xFF07: 0x00,
	0xFF10: 0x80, 0xFF11: 0xBF, 0xFF12: 0xF3, 0xFF13: 0xFF, 0xFF14: 0xBF,
	0xFF16: 0x3F, 0xFF17: 0x00, 0xFF18: 0xFF, 0xFF19: 0xBF,
	0xFF1A: 0x7F, 0xFF1B: 0xFF, 0xFF1C: 0x9F, 0xFF1D: 0xFF, 0xFF1E: 0xBF,
	0xFF20: 0xFF, 0xFF21: 0x00, 0xFF22: 0x00, 0xFF23: 0xBF,
	0xFF24: 0x77, 0xFF25: 0xF3, 0xFF26: 0xF1,
	0xFF40: 0x91, 0xFF41: 0x00,
	0xFF42: 0x00, 0xFF43: 0x00, 0xFF44: 0x00, 0xFF45: 0x00,
	0xFF46: 0xFF, 0xFF47: 0xFC, 0xFF48: 0xFF, 0xFF49: 0xFF,
	0xFF4A: 0x00, 0xFF4B: 0x00,
	addr.IF: 0xE1, addr.IE: 0x00,
}

// Button identifies a joypad input, mapped onto the low nibble of P1.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Bus is the concrete DMG address bus: RAM regions, MBC1-backed cartridge
// ROM/RAM, timer and joypad registers, and OAM DMA.
type Bus struct {
	cart *Cartridge
	mbc  MBC
	ram  [0x10000]byte

	timer *timer

	dpad    uint8
	buttons uint8
	p1Sel   uint8

	onWake func()
}

// SetWakeHandler installs the callback invoked when a button press causes a
// high-to-low transition on a selected joypad line, which is also what
// clears the CPU's STOP latch on real hardware. The scheduler wires this to
// (*cpu.CPU).WakeFromStop.
func (b *Bus) SetWakeHandler(fn func()) {
	b.onWake = fn
}

// New creates a bus with no cartridge loaded. Reads from ROM/external RAM
// return 0xFF, matching open-bus behavior; useful for CPU/PPU unit tests
// that only need a flat 64KiB scratch space.
func New() *Bus {
	b := &Bus{
		dpad:    0x0F,
		buttons: 0x0F,
	}
	b.timer = newTimer(func() { b.RequestInterrupt(addr.Timer) })
	return b
}

// NewWithCartridge creates a bus with a cartridge loaded and applies the
// documented power-on I/O register state.
func NewWithCartridge(cart *Cartridge) *Bus {
	b := New()
	b.LoadCartridge(cart)
	return b
}

// LoadCartridge installs a cartridge, selects its MBC, and resets I/O
// registers to their power-on values. It must be called before the first
// CPU step.
func (b *Bus) LoadCartridge(cart *Cartridge) {
	b.cart = cart
	switch cart.Kind {
	case NoMBC:
		b.mbc = newNoMBC(cart.Data)
	case MBC1Kind:
		b.mbc = newMBC1(cart.Data, cart.RAMBanks)
	}

	for a, v := range powerOnRegisters {
		b.ram[a] = v
	}
	b.updateP1()
}

// Read returns the byte visible at address, per the region table in §3.
func (b *Bus) Read(address uint16) byte {
	switch {
	case address <= addr.ROMBankNEnd, address >= addr.ExtRAMStart && address <= addr.ExtRAMEnd:
		if b.mbc == nil {
			return 0xFF
		}
		return b.mbc.Read(address)
	case address >= addr.EchoStart && address <= addr.EchoEnd:
		return b.ram[address-0x2000]
	case address == addr.P1:
		return b.ram[addr.P1]
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		return b.timer.read(address)
	case address == addr.IF:
		return b.ram[addr.IF] | 0xE0
	default:
		return b.ram[address]
	}
}

// Write dispatches a write to the appropriate region, per §3/§4.2.
func (b *Bus) Write(address uint16, value byte) {
	switch {
	case address <= addr.ROMBankNEnd:
		if b.mbc == nil {
			slog.Debug("write to ROM with no cartridge loaded", "addr", address, "value", value)
			return
		}
		b.mbc.Write(address, value)
	case address >= addr.ExtRAMStart && address <= addr.ExtRAMEnd:
		if b.mbc == nil {
			return
		}
		b.mbc.Write(address, value)
	case address >= addr.EchoStart && address <= addr.EchoEnd:
		b.ram[address-0x2000] = value
	case address == addr.P1:
		b.p1Sel = value & 0x30
		b.updateP1()
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		b.timer.write(address, value)
	case address == addr.IF:
		b.ram[addr.IF] = value | 0xE0
	case address == addr.DMA:
		b.doDMA(value)
	default:
		b.ram[address] = value
	}
}

// doDMA copies 160 bytes from (value<<8) into OAM, matching real hardware's
// write-triggered transfer. The core models it as instantaneous (§4.2).
func (b *Bus) doDMA(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		b.ram[addr.OAMStart+i] = b.Read(source + i)
	}
	b.ram[addr.DMA] = value
}

// Tick advances the timer by cycles. The scheduler calls this once per
// CPU step, with the same T-cycle count fed to the PPU.
func (b *Bus) Tick(cycles int) {
	b.timer.tick(cycles)
}

// RequestInterrupt ORs the given interrupt's bit into IF.
func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	flags := b.Read(addr.IF)
	b.Write(addr.IF, bit.Set(interrupt.Bit(), flags))
}

// ReadBit reports whether the given bit of the byte at address is set.
func (b *Bus) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, b.Read(address))
}

// updateP1 recomputes the visible P1 register from the selection bits and
// current button/d-pad state, per §6's joypad semantics.
func (b *Bus) updateP1() {
	result := uint8(0xC0) | b.p1Sel

	selectDpad := !bit.IsSet(4, b.p1Sel)
	selectButtons := !bit.IsSet(5, b.p1Sel)

	switch {
	case selectDpad && selectButtons:
		result |= b.dpad & b.buttons
	case selectDpad:
		result |= b.dpad
	case selectButtons:
		result |= b.buttons
	default:
		result |= 0x0F
	}

	b.ram[addr.P1] = result
}

// PressButton marks a button as held. A high-to-low transition on a
// currently selected line raises the Joypad interrupt.
func (b *Bus) PressButton(button Button) {
	before := b.ram[addr.P1] & 0x0F
	b.setButton(button, false)
	b.updateP1()
	after := b.ram[addr.P1] & 0x0F
	if before&^after != 0 {
		b.RequestInterrupt(addr.Joypad)
		if b.onWake != nil {
			b.onWake()
		}
	}
}

// ReleaseButton marks a button as released.
func (b *Bus) ReleaseButton(button Button) {
	b.setButton(button, true)
	b.updateP1()
}

func (b *Bus) setButton(button Button, released bool) {
	var target *uint8
	var bitIndex uint8

	switch button {
	case Right:
		target, bitIndex = &b.dpad, 0
	case Left:
		target, bitIndex = &b.dpad, 1
	case Up:
		target, bitIndex = &b.dpad, 2
	case Down:
		target, bitIndex = &b.dpad, 3
	case A:
		target, bitIndex = &b.buttons, 0
	case B:
		target, bitIndex = &b.buttons, 1
	case Select:
		target, bitIndex = &b.buttons, 2
	case Start:
		target, bitIndex = &b.buttons, 3
	}

	*target = bit.SetTo(bitIndex, *target, released)
}

// CartridgeTitle returns the sanitized ROM title, or "" if none is loaded.
func (b *Bus) CartridgeTitle() string {
	if b.cart == nil {
		return ""
	}
	return b.cart.Title
}
