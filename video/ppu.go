package video

import (
	"github.com/ts95/GameBoyEmu/addr"
	"github.com/ts95/GameBoyEmu/bit"
)

// Mode is one of the four PPU scanline phases. Values match the hardware
// STAT bits 0-1 encoding directly, so setMode can write them unchanged.
type Mode uint8

const (
	HBlank       Mode = 0
	VBlankMode   Mode = 1
	OAMSearch    Mode = 2
	PixelTransfer Mode = 3
)

const (
	oamSearchCycles  = 80
	pixelTransfer    = 172
	hblankCycles     = 204
	vblankLineCycles = 456
)

// Bus is the capability set the PPU needs from the address space: reading
// its own registers and VRAM/OAM, and requesting interrupts.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	RequestInterrupt(interrupt addr.Interrupt)
}

// PPU is the DMG picture processing unit: a scanline/mode state machine
// driving a background+window+sprite pixel pipeline into a FrameBuffer.
type PPU struct {
	bus Bus
	fb  *FrameBuffer
	oam *OAM

	mode       Mode
	modeClock  int
	ly         int
	windowLine int
}

// New creates a PPU in its post-reset state: OAM_SEARCH, LY=0, modeClock=0.
func New(bus Bus) *PPU {
	p := &PPU{
		bus: bus,
		fb:  NewFrameBuffer(),
	}
	p.oam = NewOAM(bus)
	p.setMode(OAMSearch)
	return p
}

// FrameBuffer returns the buffer the last fully-rendered scanlines were
// written into. Safe to read between step calls; the scheduler owns
// synchronizing frontend access per its own threading model.
func (p *PPU) FrameBuffer() *FrameBuffer { return p.fb }

// Mode and LY expose state for debugging/testing.
func (p *PPU) Mode() Mode      { return p.mode }
func (p *PPU) LY() int         { return p.ly }
func (p *PPU) ModeClock() int  { return p.modeClock }

// Step advances the PPU by cycles T-cycles, applying as many mode
// transitions as the budget covers (Δ may exceed a single mode's budget).
func (p *PPU) Step(cycles int) {
	p.modeClock += cycles
	for p.advance() {
	}
}

func (p *PPU) modeBudget() int {
	switch p.mode {
	case OAMSearch:
		return oamSearchCycles
	case PixelTransfer:
		return pixelTransfer
	case HBlank:
		return hblankCycles
	default: // VBlankMode, budgeted per-line
		return vblankLineCycles
	}
}

// advance applies a single mode transition if modeClock has accumulated
// enough cycles, returning whether it did (so Step can keep draining Δ).
func (p *PPU) advance() bool {
	budget := p.modeBudget()
	if p.modeClock < budget {
		return false
	}
	p.modeClock -= budget

	switch p.mode {
	case OAMSearch:
		p.setMode(PixelTransfer)
	case PixelTransfer:
		p.renderScanline(p.ly)
		p.setMode(HBlank)
	case HBlank:
		p.incrementLY()
		if p.ly == 144 {
			p.setMode(VBlankMode)
			p.bus.RequestInterrupt(addr.VBlank)
		} else {
			p.setMode(OAMSearch)
		}
	case VBlankMode:
		p.incrementLY()
		if p.ly == 0 {
			p.windowLine = 0
			p.setMode(OAMSearch)
		}
	}
	return true
}

// setMode writes the new mode into STAT bits 0-1 and requests LCDSTAT if
// the corresponding mode-select enable bit (3/4/5) is set. Entering
// PIXEL_TRANSFER has no associated STAT interrupt source.
func (p *PPU) setMode(m Mode) {
	p.mode = m
	stat := p.bus.Read(addr.STAT)
	stat = stat&^0x3 | uint8(m)
	p.bus.Write(addr.STAT, stat)

	var enableBit uint8
	switch m {
	case HBlank:
		enableBit = 3
	case VBlankMode:
		enableBit = 4
	case OAMSearch:
		enableBit = 5
	default:
		return
	}
	if bit.IsSet(enableBit, stat) {
		p.bus.RequestInterrupt(addr.LCDSTAT)
	}
}

// incrementLY advances LY (wrapping 154 back to 0), writes it back, and
// re-evaluates the LY==LYC coincidence flag and interrupt.
func (p *PPU) incrementLY() {
	p.ly++
	if p.ly == 154 {
		p.ly = 0
	}
	p.bus.Write(addr.LY, uint8(p.ly))

	stat := p.bus.Read(addr.STAT)
	wasCoincident := bit.IsSet(2, stat)
	coincident := uint8(p.ly) == p.bus.Read(addr.LYC)
	stat = bit.SetTo(2, stat, coincident)
	p.bus.Write(addr.STAT, stat)

	if coincident && !wasCoincident && bit.IsSet(6, stat) {
		p.bus.RequestInterrupt(addr.LCDSTAT)
	}
}
