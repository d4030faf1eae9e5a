package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Bytes returns a human-readable byte size (e.g. "1.5 MB").
func Bytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.Bytes(uint64(b))
}

// Dimensions formats an image size as "W × H".
func Dimensions(w, h int) string {
	return fmt.Sprintf("%d × %d", w, h)
}

// Elapsed formats a render time for display ("850 µs", "12 ms", "1.2 s").
func Elapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d µs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1f s", d.Seconds())
	}
}

// Truncate returns s cut to max runes with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
