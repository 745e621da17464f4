// Package scheduler drives the cooperative CPU/PPU/timer loop: it steps the
// CPU one instruction at a time, feeds the resulting T-cycles to the timer
// and PPU, and exposes frame- and context-scoped run loops for frontends.
package scheduler

import (
	"context"

	"github.com/ts95/GameBoyEmu/cpu"
	"github.com/ts95/GameBoyEmu/memory"
	"github.com/ts95/GameBoyEmu/video"
)

// cyclesPerFrame is the fixed DMG frame length: 154 scanlines * 456 cycles.
const cyclesPerFrame = 70224

// Emulator owns the CPU, PPU, and bus for one running ROM, and is the sole
// component that steps them; nothing else touches the bus concurrently.
type Emulator struct {
	cpu *cpu.CPU
	ppu *video.PPU
	bus *memory.Bus

	frameCycles      int
	frameCount       uint64
	instructionCount uint64
}

// New wires a fresh CPU and PPU to a bus with cart already loaded.
func New(cart *memory.Cartridge) *Emulator {
	bus := memory.NewWithCartridge(cart)
	c := cpu.New(bus)
	bus.SetWakeHandler(c.WakeFromStop)

	return &Emulator{
		cpu: c,
		ppu: video.New(bus),
		bus: bus,
	}
}

// Step executes exactly one CPU instruction (or idle tick) and advances the
// timer and PPU by the same number of T-cycles. It is the sole unit of
// forward progress; everything else in this package is built out of it.
func (e *Emulator) Step() (int, error) {
	cycles, err := e.cpu.Step()
	if err != nil {
		return cycles, err
	}
	e.bus.Tick(cycles)
	e.ppu.Step(cycles)
	e.instructionCount++
	return cycles, nil
}

// RunUntilFrame steps until a full 70224-cycle frame has elapsed, or ctx is
// canceled. Cancellation is only observed between instructions; an
// in-flight instruction always completes.
func (e *Emulator) RunUntilFrame(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cycles, err := e.Step()
		if err != nil {
			return err
		}

		e.frameCycles += cycles
		if e.frameCycles >= cyclesPerFrame {
			e.frameCycles -= cyclesPerFrame
			e.frameCount++
			return nil
		}
	}
}

// FrameBuffer returns the PPU's current framebuffer.
func (e *Emulator) FrameBuffer() *video.FrameBuffer { return e.ppu.FrameBuffer() }

// FrameCount and InstructionCount report cumulative progress, useful for
// headless-mode logging and snapshotting.
func (e *Emulator) FrameCount() uint64       { return e.frameCount }
func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }

// PressButton and ReleaseButton forward joypad input to the bus.
func (e *Emulator) PressButton(b memory.Button)   { e.bus.PressButton(b) }
func (e *Emulator) ReleaseButton(b memory.Button) { e.bus.ReleaseButton(b) }

// CartridgeTitle returns the loaded ROM's sanitized title.
func (e *Emulator) CartridgeTitle() string { return e.bus.CartridgeTitle() }
