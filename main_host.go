//go:build !tinygo

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"soundmeter/app"
	"soundmeter/hal"
	"soundmeter/internal/buildinfo"
	"soundmeter/ledmatrix"
)

var (
	configPath = "soundmeter.toml"
	board      string
	headless   bool
	duration   time.Duration
	dump       bool
	source     string
	code       uint16
	scale      int
	verbose    bool
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "configuration file")
	pflag.StringVar(&board, "board", "", "board to run on: sim or periph")
	pflag.BoolVar(&headless, "headless", false, "run without a window")
	pflag.DurationVar(&duration, "duration", 0, "stop a headless run after this long (0 = until interrupted)")
	pflag.BoolVar(&dump, "dump", false, "print the panel as ASCII when a headless run ends")
	pflag.StringVar(&source, "source", "", "simulated microphone: sine, noise, constant, wav or mic")
	pflag.Uint16Var(&code, "code", 0, "converter code of the constant source")
	pflag.IntVar(&scale, "scale", 0, "window scale factor")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func main() {
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	mc, err := cfg.MeterConfig()
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	logger := hal.NewConsoleLogger(level)
	logger.WriteLineString(buildinfo.Line())

	h, closeBoard, err := openBoard(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBoard()

	m, err := app.New(h, mc)
	if err != nil {
		return errors.Wrap(err, "failed to start meter")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if cfg.Board == app.BoardSim && !cfg.Headless.Enabled {
		err = runWindow(ctx, h, m, cfg.Window.Scale)
	} else {
		hc := hal.HeadlessConfig{Duration: time.Duration(cfg.Headless.Duration)}
		if cfg.Headless.Dump && cfg.Board == app.BoardSim {
			hc.Dump = os.Stdout
		}
		err = hal.RunHeadless(ctx, h, m.Run, hc)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runWindow(ctx context.Context, h hal.HAL, m *app.Meter, scale int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(gctx) })

	werr := hal.RunWindow(gctx, h, hal.WindowConfig{
		Title: "Sound meter (" + buildinfo.Short() + ")",
		Scale: scale,
		Cell:  ledmatrix.Position,
	})
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return werr
}

func openBoard(cfg *app.FileConfig, logger hal.Logger) (hal.HAL, func(), error) {
	switch cfg.Board {
	case app.BoardPeriph:
		h, err := hal.NewPeriph(cfg.Periph, logger)
		if err != nil {
			return nil, nil, err
		}
		return h, closer(h, logger), nil
	default:
		src, err := hal.NewSource(cfg.Source)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to open source")
		}
		return hal.NewSim(src, logger), closer(src, logger), nil
	}
}

func closer(v any, logger hal.Logger) func() {
	c, ok := v.(io.Closer)
	if !ok {
		return func() {}
	}
	return func() {
		if err := c.Close(); err != nil {
			logger.WriteLineString("close: " + err.Error())
		}
	}
}

func applyFlags(cfg *app.FileConfig) {
	flags := pflag.CommandLine
	if flags.Changed("board") {
		cfg.Board = board
	}
	if flags.Changed("headless") {
		cfg.Headless.Enabled = headless
	}
	if flags.Changed("duration") {
		cfg.Headless.Duration = app.TOMLDuration(duration)
	}
	if flags.Changed("dump") {
		cfg.Headless.Dump = dump
	}
	if flags.Changed("source") {
		cfg.Source.Kind = source
	}
	if flags.Changed("code") {
		cfg.Source.Code = code
	}
	if flags.Changed("scale") {
		cfg.Window.Scale = scale
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
}
