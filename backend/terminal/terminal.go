// Package terminal renders the emulator's framebuffer to a text terminal
// via tcell and translates keyboard input into joypad button events.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ts95/GameBoyEmu/memory"
	"github.com/ts95/GameBoyEmu/scheduler"
	"github.com/ts95/GameBoyEmu/video"
)

const (
	scaleX    = 2
	scaleY    = 1
	frameTime = time.Second / 60
)

var shadeChars = []rune{'█', '▓', '▒', '░'}

// Renderer drives an emulator against a tcell terminal screen: input on one
// goroutine, emulation+presentation ticked by a 60Hz timer on another.
type Renderer struct {
	screen  tcell.Screen
	emu     *scheduler.Emulator
	running bool
}

// New initializes the terminal screen for rendering.
func New(emu *scheduler.Emulator) (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}

	return &Renderer{screen: screen, emu: emu, running: true}, nil
}

// Run drives the emulator until the user quits (Ctrl+C or SIGTERM) or ctx is
// canceled, presenting one frame every 1/60s.
func (r *Renderer) Run(ctx context.Context) error {
	defer func() {
		slog.Info("terminal renderer exiting")
		r.screen.Fini()
	}()

	r.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	r.screen.Clear()

	go r.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for r.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signals:
			r.running = false
			return nil
		case <-ticker.C:
			if err := r.emu.RunUntilFrame(ctx); err != nil {
				return err
			}
			r.render()
			r.screen.Show()
		}
	}

	return nil
}

func (r *Renderer) handleInput() {
	for r.running {
		ev := r.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				r.running = false
				return
			}
			if button, ok := keyToButton(ev); ok {
				r.emu.PressButton(button)
			}
		case *tcell.EventResize:
			r.screen.Sync()
		}
	}
}

func keyToButton(ev *tcell.EventKey) (memory.Button, bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		return memory.Start, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return memory.Select, true
	case tcell.KeyRight:
		return memory.Right, true
	case tcell.KeyLeft:
		return memory.Left, true
	case tcell.KeyUp:
		return memory.Up, true
	case tcell.KeyDown:
		return memory.Down, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'z', 'Z':
			return memory.A, true
		case 'x', 'X':
			return memory.B, true
		}
	}
	return 0, false
}

func (r *Renderer) render() {
	fb := r.emu.FrameBuffer()
	r.screen.Clear()

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			char := shadeChars[fb.GetPixel(x, y)]
			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			screenX, screenY := x*scaleX, y*scaleY
			for sx := 0; sx < scaleX; sx++ {
				r.screen.SetContent(screenX+sx, screenY, char, nil, style)
			}
		}
	}
}
