package renamer

import (
	"strconv"
	"strings"
)

// Pad re-renders count as a decimal number left-padded with zeros to width.
// The boolean is false when count already has the requested width and
// nothing needs to change. A representation longer than width is kept whole.
func Pad(count string, width int) (string, bool, error) {
	if len(count) == width {
		return count, false, nil
	}

	n, err := strconv.ParseUint(count, 10, strconv.IntSize)
	if err != nil {
		return "", false, err
	}

	// fmt's %0*d refuses widths above 1e6, so pad by hand.
	s := strconv.FormatUint(n, 10)
	if pad := width - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return s, true, nil
}
