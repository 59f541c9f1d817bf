// Package format renders timestamps, durations and tags for display.
package format

import (
	"fmt"
	"strings"
	"time"
)

const (
	absoluteLayout = "2006-01-02 15:04:05"
	NoTags         = "(no tags)"
)

// Absolute renders t as a local date and time
func Absolute(t time.Time) string {
	return t.Local().Format(absoluteLayout)
}

// Relative renders d compactly: 1d02h03m04s, 2h05m00s, 3m07s, 5s or zero.
// Leading units are unpadded, following ones are two digits.
func Relative(d time.Duration) string {
	if d < 0 {
		return "-" + Relative(-d)
	}

	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var b strings.Builder
	lead := true
	unit := func(v int64, suffix string, show bool) {
		if !show {
			return
		}
		if lead {
			fmt.Fprintf(&b, "%d%s", v, suffix)
			lead = false
			return
		}
		fmt.Fprintf(&b, "%02d%s", v, suffix)
	}

	unit(days, "d", days > 0)
	unit(hours, "h", hours > 0 || days > 0)
	unit(minutes, "m", minutes > 0 || hours > 0 || days > 0)
	unit(seconds, "s", total > 0)

	if b.Len() == 0 {
		return "zero"
	}
	return b.String()
}

// Decimal renders d in hours with three decimals
func Decimal(d time.Duration) string {
	return fmt.Sprintf("%.3fh", d.Hours())
}

// Duration picks Decimal or Relative
func Duration(d time.Duration, decimal bool) string {
	if decimal {
		return Decimal(d)
	}
	return Relative(d)
}

// Tags returns tags, or a placeholder when there are none
func Tags(tags string) string {
	if tags == "" {
		return NoTags
	}
	return tags
}
