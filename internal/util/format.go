package util

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatCount formats a counter with thousands separators.
func FormatCount(n uint64) string {
	if n > math.MaxInt64 {
		n = math.MaxInt64
	}
	return humanize.Comma(int64(n))
}

// FormatSigned formats v with an explicit sign and prec decimals.
// Non-finite values render as "--".
func FormatSigned(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--"
	}
	if prec < 0 {
		prec = 0
	}
	s := fmt.Sprintf("%+.*f", prec, v)
	if s == fmt.Sprintf("-%.*f", prec, 0.0) {
		return "+" + s[1:]
	}
	return s
}
