package domain

import (
	"sort"
	"time"

	"callcrm/internal/core/calday"
)

// StreakWindow bounds how many recent rows a streak looks at
const StreakWindow = 30

// Streak counts the most recent consecutive days whose target was reached.
// It stops at the first missed day or at a workday that has no row at all.
// Weekend days without a row are not gaps, and today may be missing since
// it is not over yet. Rows after today are ignored.
func Streak(rows []DayRow, today time.Time) int {
	sorted := append([]DayRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day.After(sorted[j].Day) })

	today = calday.Floor(today)
	expect := today
	n := 0
	for _, r := range sorted {
		d := calday.Floor(r.Day)
		if d.After(today) {
			continue
		}
		for gap := expect; gap.After(d); gap = calday.AddDays(gap, -1) {
			if gap.Equal(today) {
				continue
			}
			if calday.IsWorkday(gap) {
				return n
			}
		}
		if !r.TargetReached {
			return n
		}
		n++
		expect = calday.AddDays(d, -1)
	}
	return n
}

// SuccessRate is reached over total days as a rounded percentage
func SuccessRate(reached, total int) int {
	if total <= 0 {
		return 0
	}
	return int((float64(reached)*100)/float64(total) + 0.5)
}
