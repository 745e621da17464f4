// Package headless runs the emulator for a fixed number of frames with no
// presentation layer, for CLI batch runs and text-snapshot debugging.
package headless

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ts95/GameBoyEmu/scheduler"
	"github.com/ts95/GameBoyEmu/video"
)

// shadeChars renders a 2-bit color index as a Unicode shade character, from
// 0 (lightest, '░') to 3 (darkest, '█').
var shadeChars = []rune{'░', '▒', '▓', '█'}

// Options controls a headless run.
type Options struct {
	Frames           int
	SnapshotInterval int
	SnapshotDir      string
}

// Run steps emu for opts.Frames frames, logging progress every 10 frames
// and optionally writing a text snapshot of the framebuffer every
// SnapshotInterval frames.
func Run(ctx context.Context, emu *scheduler.Emulator, opts Options) error {
	if opts.Frames <= 0 {
		return fmt.Errorf("headless mode requires a positive frame count")
	}

	for i := 0; i < opts.Frames; i++ {
		if err := emu.RunUntilFrame(ctx); err != nil {
			return err
		}

		if opts.SnapshotInterval > 0 && (i+1)%opts.SnapshotInterval == 0 {
			path := filepath.Join(opts.SnapshotDir, fmt.Sprintf("frame_%d.txt", i+1))
			if err := saveSnapshot(emu, path); err != nil {
				slog.Error("failed to save frame snapshot", "frame", i+1, "path", path, "error", err)
			} else {
				slog.Debug("saved frame snapshot", "frame", i+1, "path", path)
			}
		}

		if i%10 == 0 {
			slog.Info("frame progress", "completed", i+1, "total", opts.Frames)
		}
	}

	slog.Info("headless run completed", "frames", opts.Frames, "instructions", emu.InstructionCount())
	return nil
}

func saveSnapshot(emu *scheduler.Emulator, path string) error {
	fb := emu.FrameBuffer()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "# frame %d, %d instructions executed\n", emu.FrameCount(), emu.InstructionCount())
	fmt.Fprintf(file, "# %dx%d, legend: %c=0 %c=1 %c=2 %c=3\n",
		video.FramebufferWidth, video.FramebufferHeight,
		shadeChars[0], shadeChars[1], shadeChars[2], shadeChars[3])

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			fmt.Fprintf(file, "%c", shadeChars[fb.GetPixel(x, y)])
		}
		fmt.Fprintln(file)
	}

	return nil
}
