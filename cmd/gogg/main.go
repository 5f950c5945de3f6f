package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/gogg/gg"
	"github.com/valerio/gogg/gg/backend"
	"github.com/valerio/gogg/gg/backend/headless"
	"github.com/valerio/gogg/gg/backend/sdl2"
	"github.com/valerio/gogg/gg/backend/terminal"
	"github.com/valerio/gogg/gg/debug"
	"github.com/valerio/gogg/gg/debug/console"
	"github.com/valerio/gogg/gg/disasm"
	"github.com/valerio/gogg/gg/memory"
	"github.com/valerio/gogg/gg/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "gogg"
	app.Usage = "a cycle-timed Game Boy core with a debugger"
	app.UsageText = "gogg [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Presentation backend: terminal, headless or sdl2",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing: adaptive, ticker or none (default: none for headless, adaptive otherwise)",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Integer scale for the window and snapshots",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Start paused with the console debugger on stdin (not with the terminal backend)",
		},
		cli.StringSliceFlag{
			Name:  "break",
			Usage: "Initial breakpoint address, repeatable (decimal or 0x hex)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
	}
	app.Action = runEmulator
	app.Commands = []cli.Command{
		{
			Name:      "disasm",
			Usage:     "Disassemble a ROM image to stdout",
			ArgsUsage: "<ROM file>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "no-addresses, a",
					Usage: "Omit the address column",
				},
				cli.BoolFlag{
					Name:  "no-raw, r",
					Usage: "Omit the raw instruction bytes",
				},
			},
			Action: runDisasm,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func romPath(c *cli.Context) (string, error) {
	if path := c.String("rom"); path != "" {
		return path, nil
	}
	if c.NArg() > 0 {
		return c.Args().Get(0), nil
	}
	cli.ShowAppHelp(c)
	return "", errors.New("no ROM path provided")
}

func parseBreakpoints(values []string) ([]uint16, error) {
	addresses := make([]uint16, 0, len(values))
	for _, v := range values {
		address, err := strconv.ParseUint(v, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint %q: %w", v, err)
		}
		addresses = append(addresses, uint16(address))
	}
	return addresses, nil
}

func newBackend(c *cli.Context, path string) (backend.Backend, timing.Limiter, error) {
	var (
		b    backend.Backend
		pace = "adaptive"
		name = c.String("backend")
	)
	switch name {
	case "terminal":
		b = terminal.New()
	case "sdl2":
		b = sdl2.New()
	case "headless":
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), path)
		if err != nil {
			return nil, nil, err
		}
		b = headless.New(c.Int("frames"), snapshots)
		pace = "none"
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", name)
	}

	if c.IsSet("limiter") {
		pace = c.String("limiter")
	}
	limiter, err := timing.ByName(pace)
	if err != nil {
		return nil, nil, err
	}
	return b, limiter, nil
}

func runEmulator(c *cli.Context) error {
	if err := setupLogging(os.Stderr, c.String("log-level")); err != nil {
		return err
	}

	path, err := romPath(c)
	if err != nil {
		return err
	}

	breakpoints, err := parseBreakpoints(c.StringSlice("break"))
	if err != nil {
		return err
	}
	debugging := c.Bool("debug") || len(breakpoints) > 0
	if debugging && c.String("backend") == "terminal" {
		return errors.New("the console debugger reads stdin, use --backend headless or sdl2")
	}

	b, limiter, err := newBackend(c, path)
	if err != nil {
		return err
	}
	if t, ok := limiter.(*timing.TickerLimiter); ok {
		defer t.Stop()
	}

	var dbg *debug.Adapter
	m, err := gg.NewWithFile(path, gg.WithFrameCallback(func() {
		if dbg != nil {
			dbg.OnFrame()
		}
	}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if debugging {
		dbg = debug.New(m.CPU(), m.Memory())
		m.Attach(dbg)
		for _, address := range breakpoints {
			dbg.SetBreakpoint(address)
		}
		if c.Bool("debug") {
			dbg.SetState(debug.Paused)
		}

		con, restore, err := console.Open(dbg)
		if err != nil {
			return err
		}
		defer restore()
		dbg.OnFrameDrain(con.Drain)
		if err := setupLogging(con.Output(), c.String("log-level")); err != nil {
			return err
		}

		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := con.Run(ctx); err != nil {
				slog.Error("Debugger console failed", "error", err)
			}
			cancel()
		}()
	}

	title := m.Header().Title
	if title == "" {
		title = "gogg"
	}

	config := backend.Config{
		Title:     title,
		Scale:     c.Int("scale"),
		ShowDebug: debugging,
	}
	return backend.NewRunner(m, b, limiter, config, dbg).Run(ctx)
}

func runDisasm(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		cli.ShowCommandHelp(c, "disasm")
		return errors.New("no ROM path provided")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	mem := memory.New()
	size := mem.LoadROM(data)

	format := disasm.Format{
		Addresses: !c.Bool("no-addresses"),
		Raw:       !c.Bool("no-raw"),
	}
	return disasm.Write(os.Stdout, mem, size, format)
}
