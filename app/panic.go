package app

import (
	"fmt"
	"unicode/utf8"
)

// panicLineMax fits one line of the splash font across the panel.
const panicLineMax = 21

// reportPanic logs v and leaves it on the panel so a board without a
// console still shows why it stopped.
func (m *Meter) reportPanic(v any) {
	msg := fmt.Sprint(v)
	m.logf("panic: %s", msg)
	if m.display != nil {
		_ = m.display.Splash("PANIC", truncate(msg, panicLineMax))
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "~"
}
