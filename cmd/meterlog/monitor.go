package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"soundmeter/ledmatrix"
	"soundmeter/meter"
	"soundmeter/telemetry"
)

var (
	quietColor   = color.New(color.FgHiBlack)
	greenColor   = color.New(color.FgGreen)
	yellowColor  = color.New(color.FgYellow)
	redColor     = color.New(color.FgRed)
	offColor     = color.New(color.FgMagenta, color.Bold)
	summaryColor = color.New(color.Bold)
)

type monitor struct {
	out   io.Writer
	log   zerolog.Logger
	width int

	records uint64
	skipped uint64
	missed  uint64
	lastSeq uint64
	peak    meter.Level
}

func newMonitor(out io.Writer, log zerolog.Logger, width int) *monitor {
	if width <= 0 {
		width = 40
	}
	return &monitor{out: out, log: log, width: width}
}

// consume reads console lines from r until it fails or ctx is done.
func (m *monitor) consume(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.handle(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "failed to read console")
	}
	return io.EOF
}

func (m *monitor) handle(line string) {
	line = strings.TrimRight(line, "\r")
	rec, err := telemetry.Parse(line)
	if err != nil {
		m.skipped++
		m.log.Debug().Err(err).Str("line", line).Msg("console")
		return
	}

	if m.records > 0 && rec.Seq > m.lastSeq+1 {
		m.missed += rec.Seq - m.lastSeq - 1
		m.log.Warn().Uint64("from", m.lastSeq+1).Uint64("to", rec.Seq-1).Msg("records lost")
	}
	m.records++
	m.lastSeq = rec.Seq
	if rec.Level > m.peak {
		m.peak = rec.Level
	}
	fmt.Fprintln(m.out, m.render(rec))
}

// render draws the record as the panel would: a bar scaled to the panel
// width, colored like the LED matrix.
func (m *monitor) render(rec telemetry.Record) string {
	filled := rec.Bar * 9 / 10 * m.width / 128
	if filled > m.width {
		filled = m.width
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", m.width-filled)
	label := fmt.Sprintf("%6d  %s  level %-3d mag %.4f V", rec.Seq, bar, rec.Level, rec.Magnitude)
	return levelColor(rec.Level).Sprint(label)
}

func levelColor(level meter.Level) *color.Color {
	var g ledmatrix.Grid
	ledmatrix.Pattern(level, &g)
	switch g[12] {
	case ledmatrix.Green:
		return greenColor
	case ledmatrix.Yellow:
		return yellowColor
	case ledmatrix.Red:
		return redColor
	}
	if level == 0 {
		return quietColor
	}
	return offColor
}

func (m *monitor) summary() {
	summaryColor.Fprintf(m.out, "%d records, %d lost, %d other lines, peak level %d\n",
		m.records, m.missed, m.skipped, m.peak)
}
