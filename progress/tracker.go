// Package progress computes rate-limited throughput, ETA and status text
// for byte-counted transfers. A Tracker belongs to exactly one transfer;
// sharing one across transfers corrupts the speed computation.
package progress

import (
	"fmt"
	"strings"
	"time"
)

const barSegments = 10

type Tracker struct {
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
	sampled    bool

	now func() time.Time
}

func NewTracker() *Tracker {
	t := &Tracker{now: time.Now}
	t.startTime = t.now()
	return t
}

// Sample folds a progress observation into the tracker and renders a status
// line. It returns ok=false when the sample arrives less than a second after
// the previous emitted one and the transfer is not yet complete.
func (t *Tracker) Sample(current, total int64, label string) (string, bool) {
	now := t.now()
	sinceLast := now.Sub(t.lastUpdate)

	if sinceLast < time.Second && current != total {
		return "", false
	}

	var speed float64
	if t.sampled {
		speed = float64(current-t.lastBytes) / sinceLast.Seconds()
	} else {
		elapsed := now.Sub(t.startTime).Seconds()
		if elapsed > 0 {
			speed = float64(current) / elapsed
		}
	}

	t.lastUpdate = now
	t.lastBytes = current
	t.sampled = true

	var pct float64
	if total > 0 {
		pct = float64(current) * 100 / float64(total)
	}

	// Zero ETA means "not yet known", not "instant".
	var eta float64
	if speed > 0 {
		eta = float64(total-current) / speed
	}

	status := fmt.Sprintf(
		"%s\n%s %.1f%%\nSpeed: %s\nETA: %s",
		label, Bar(pct), pct, FormatSpeed(speed), FormatDuration(time.Duration(eta*float64(time.Second))),
	)
	return status, true
}

// Bar renders a fixed-width filled/empty bar for a 0-100 percentage.
func Bar(pct float64) string {
	filled := int(pct) / barSegments
	if filled > barSegments {
		filled = barSegments
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barSegments-filled)
}

// FormatSpeed renders bytes-per-second in the largest unit under 1024.
func FormatSpeed(speed float64) string {
	for _, unit := range []string{"B/s", "KB/s", "MB/s"} {
		if speed < 1024 {
			return fmt.Sprintf("%.2f %s", speed, unit)
		}
		speed /= 1024
	}
	return fmt.Sprintf("%.2f GB/s", speed)
}

// FormatSize renders a byte count in the largest unit under 1024.
func FormatSize(size uint64) string {
	s := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if s < 1024 {
			return fmt.Sprintf("%.2f %s", s, unit)
		}
		s /= 1024
	}
	return fmt.Sprintf("%.2f TB", s)
}

// FormatDuration renders a compact h/m/s string, omitting zero components.
// Non-positive durations render as "0s".
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds <= 0 {
		return "0s"
	}

	var parts []string
	for _, u := range []struct {
		suffix string
		div    int64
	}{{"h", 3600}, {"m", 60}, {"s", 1}} {
		amount := seconds / u.div
		seconds %= u.div
		if amount > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", amount, u.suffix))
		}
	}
	return strings.Join(parts, " ")
}
