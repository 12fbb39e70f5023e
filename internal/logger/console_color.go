package logger

import (
	"strings"

	"github.com/fatih/color"
)

// colorScheme defines the colors of diagnostic level tags.
// Red: errors
// Yellow: warnings
// Cyan: debug lines
type colorScheme struct {
	fail  *color.Color
	warn  *color.Color
	label *color.Color
	info  *color.Color
	trace *color.Color
}

// newColorScheme creates the standard color scheme.
func newColorScheme() *colorScheme {
	return &colorScheme{
		fail:  color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow),
		label: color.New(color.FgCyan),
		info:  color.New(color.FgBlue),
		trace: color.New(color.FgHiBlack),
	}
}

// forLevel returns the color used for a level tag.
func (s *colorScheme) forLevel(level string) *color.Color {
	switch strings.ToUpper(level) {
	case "TRACE":
		return s.trace
	case "DEBUG":
		return s.label
	case "INFO":
		return s.info
	case "WARN":
		return s.warn
	default:
		return s.fail
	}
}
