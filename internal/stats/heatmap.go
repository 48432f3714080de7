package stats

import "time"

// HeatmapDays is the length of the trailing activity window, today included.
const HeatmapDays = 364

// HeatmapLevels is the number of distinct intensity levels (0..4).
const HeatmapLevels = 5

// HeatDay is one calendar day of the heatmap.
type HeatDay struct {
	Date  time.Time // local noon
	Count int
	Level int
}

// Heatmap is the trailing activity window, oldest day first.
type Heatmap struct {
	Days []HeatDay
	Max  int // highest single-day count in the window
}

// HeatLevel maps a daily attempt count to its intensity level.
func HeatLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count < 5:
		return 1
	case count < 10:
		return 2
	case count < 15:
		return 3
	default:
		return 4
	}
}

func buildHeatmap(days map[time.Time]int, now time.Time) Heatmap {
	today := localNoon(now)
	y, m, d := today.Date()
	h := Heatmap{Days: make([]HeatDay, HeatmapDays)}
	for i := range HeatmapDays {
		// time.Date normalizes day underflow and keeps the entry at local noon.
		day := time.Date(y, m, d-(HeatmapDays-1-i), 12, 0, 0, 0, today.Location())
		n := days[day]
		h.Days[i] = HeatDay{Date: day, Count: n, Level: HeatLevel(n)}
		h.Max = max(h.Max, n)
	}
	return h
}

// Weeks splits the heatmap into columns of seven days, oldest first, for
// grid rendering.
func (h Heatmap) Weeks() [][]HeatDay {
	var out [][]HeatDay
	for start := 0; start < len(h.Days); start += 7 {
		out = append(out, h.Days[start:min(start+7, len(h.Days))])
	}
	return out
}

// Active returns the number of days in the window with at least one attempt.
func (h Heatmap) Active() int {
	n := 0
	for _, d := range h.Days {
		if d.Count > 0 {
			n++
		}
	}
	return n
}
