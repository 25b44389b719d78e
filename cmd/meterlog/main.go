// Command meterlog reads the meter's console over a serial port and draws
// each reported level as a colored bar.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
)

var (
	device  = "/dev/ttyACM0"
	baud    = 115200
	width   = 40
	verbose = false
)

func init() {
	pflag.StringVarP(&device, "port", "p", device, "serial device of the meter console")
	pflag.IntVarP(&baud, "baud", "b", baud, "baud rate")
	pflag.IntVarP(&width, "width", "w", width, "bar width in characters")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
}

func main() {
	pflag.Parse()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	if err := run(logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(logger zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return errors.Wrap(err, "failed to open serial port")
	}
	defer port.Close()

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "failed to reset read timeout")
	}

	m := newMonitor(os.Stdout, logger, width)

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		logger.Debug().Msg("closing serial port")
		if err := port.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})
	errg.Go(func() error {
		err := m.consume(ctx, port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	})

	err = errg.Wait()
	m.summary()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
