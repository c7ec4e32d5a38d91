package progress

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(start time.Time, clock *time.Time) *Tracker {
	return &Tracker{
		startTime: start,
		now:       func() time.Time { return *clock },
	}
}

func TestSampleSuppressesWithinOneSecond(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	tr := newTestTracker(start, &clock)

	clock = start.Add(2 * time.Second)
	_, ok := tr.Sample(1000, 10000, "Downloading: a.mp4")
	require.True(t, ok)

	clock = clock.Add(500 * time.Millisecond)
	_, ok = tr.Sample(2000, 10000, "Downloading: a.mp4")
	assert.False(t, ok)

	clock = clock.Add(400 * time.Millisecond)
	_, ok = tr.Sample(3000, 10000, "Downloading: a.mp4")
	assert.False(t, ok)

	clock = clock.Add(200 * time.Millisecond)
	_, ok = tr.Sample(4000, 10000, "Downloading: a.mp4")
	assert.True(t, ok)
}

func TestSampleCompletionAlwaysRenders(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	tr := newTestTracker(start, &clock)

	clock = start.Add(2 * time.Second)
	_, ok := tr.Sample(5000, 10000, "Downloading: a.mp4")
	require.True(t, ok)

	clock = clock.Add(100 * time.Millisecond)
	status, ok := tr.Sample(10000, 10000, "Downloading: a.mp4")
	require.True(t, ok)
	assert.Contains(t, status, "100.0%")
}

func TestSampleFirstSpeedUsesElapsedSinceStart(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	tr := newTestTracker(start, &clock)

	clock = start.Add(2 * time.Second)
	status, ok := tr.Sample(2048, 1 << 20, "Downloading: a.mp4")
	require.True(t, ok)
	assert.Contains(t, status, "Speed: 1.00 KB/s")
}

func TestSampleIntervalSpeedUsesDelta(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	tr := newTestTracker(start, &clock)

	clock = start.Add(2 * time.Second)
	_, ok := tr.Sample(2048, 1 << 20, "Downloading: a.mp4")
	require.True(t, ok)

	clock = clock.Add(2 * time.Second)
	status, ok := tr.Sample(2048+4096, 1<<20, "Downloading: a.mp4")
	require.True(t, ok)
	assert.Contains(t, status, "Speed: 2.00 KB/s")
}

func TestSampleRendersLabelBarAndPercent(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	tr := newTestTracker(start, &clock)

	clock = start.Add(5 * time.Second)
	status, ok := tr.Sample(500, 1000, "Merging videos...")
	require.True(t, ok)

	lines := strings.Split(status, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Merging videos...", lines[0])
	assert.Equal(t, "█████░░░░░ 50.0%", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Speed: "))
	assert.True(t, strings.HasPrefix(lines[3], "ETA: "))
}

func TestSampleUnknownTotal(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	tr := newTestTracker(start, &clock)

	clock = start.Add(2 * time.Second)
	status, ok := tr.Sample(1234, 0, "Merging videos...")
	require.True(t, ok)
	assert.Contains(t, status, "0.0%", "unknown total renders as zero percent")

	// Mid-flight samples against a zero total stay throttled like any other.
	clock = clock.Add(500 * time.Millisecond)
	_, ok = tr.Sample(2345, 0, "Merging videos...")
	assert.False(t, ok)
}

func TestBar(t *testing.T) {
	tests := []struct {
		pct    float64
		filled int
	}{
		{0, 0},
		{9.9, 0},
		{10, 1},
		{55, 5},
		{99.9, 9},
		{100, 10},
		{150, 10},
		{-5, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f", tt.pct), func(t *testing.T) {
			bar := Bar(tt.pct)
			assert.Equal(t, strings.Repeat("█", tt.filled)+strings.Repeat("░", 10-tt.filled), bar)
		})
	}
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "512.00 B/s", FormatSpeed(512))
	assert.Equal(t, "1.00 KB/s", FormatSpeed(1024))
	assert.Equal(t, "2.50 MB/s", FormatSpeed(2.5*1024*1024))
	assert.Equal(t, "1.00 GB/s", FormatSpeed(1024*1024*1024))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0.00 B", FormatSize(0))
	assert.Equal(t, "100.00 B", FormatSize(100))
	assert.Equal(t, "1.00 KB", FormatSize(1024))
	assert.Equal(t, "1.50 MB", FormatSize(3*1024*1024/2))
	assert.Equal(t, "2.00 GB", FormatSize(2*1024*1024*1024))
	assert.Equal(t, "1.00 TB", FormatSize(1024*1024*1024*1024))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "0s", FormatDuration(-3*time.Second))
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "2m", FormatDuration(2*time.Minute))
	assert.Equal(t, "1m 30s", FormatDuration(90*time.Second))
	assert.Equal(t, "1h 1m 5s", FormatDuration(time.Hour+time.Minute+5*time.Second))
	assert.Equal(t, "2h 30s", FormatDuration(2*time.Hour+30*time.Second))
}
