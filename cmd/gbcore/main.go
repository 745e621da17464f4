// Command gbcore runs the DMG emulator core against a ROM file, either
// headless (fixed frame count, optional text snapshots) or interactively in
// a terminal.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/ts95/GameBoyEmu/backend/headless"
	"github.com/ts95/GameBoyEmu/backend/terminal"
	"github.com/ts95/GameBoyEmu/memory"
	"github.com/ts95/GameBoyEmu/scheduler"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Description = "A Game Boy (DMG) emulator core"
	app.Usage = "gbcore [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "run without a terminal display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "save a text frame snapshot every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "directory for headless snapshots (default: a temp directory)",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("gbcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		args := c.Args()
		if args.First() == "run" {
			args = args.Tail()
		}
		if len(args) > 0 {
			romPath = args[0]
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}

	cart, warning, err := memory.NewCartridge(data)
	if err != nil {
		slog.Error("failed to load cartridge", "path", romPath, "error", err)
		return err
	}
	if warning != "" {
		slog.Warn(warning, "path", romPath)
	}
	slog.Info("loaded cartridge", "title", cart.Title, "kind", cart.Kind, "bytes", len(data))

	emu := scheduler.New(cart)
	ctx := context.Background()

	if c.Bool("headless") {
		return runHeadless(ctx, emu, c)
	}
	return runTerminal(ctx, emu)
}

func runHeadless(ctx context.Context, emu *scheduler.Emulator, c *cli.Context) error {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))

	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	snapshotDir := c.String("snapshot-dir")
	snapshotInterval := c.Int("snapshot-interval")
	if snapshotInterval > 0 && snapshotDir == "" {
		dir, err := os.MkdirTemp("", "gbcore-snapshots-*")
		if err != nil {
			return err
		}
		snapshotDir = dir
	}

	return headless.Run(ctx, emu, headless.Options{
		Frames:           frames,
		SnapshotInterval: snapshotInterval,
		SnapshotDir:      snapshotDir,
	})
}

func runTerminal(ctx context.Context, emu *scheduler.Emulator) error {
	renderer, err := terminal.New(emu)
	if err != nil {
		return err
	}
	return renderer.Run(ctx)
}
