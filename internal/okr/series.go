package okr

import (
	"sort"
	"time"

	"github.com/starford/okrtrack/internal/models"
)

// WeekPoint is one week of a key result's chart series. Actual and Status
// are nil for future weeks.
type WeekPoint struct {
	Week      int            `json:"week"`
	WeekStart time.Time      `json:"week_start"`
	Expected  float64        `json:"expected"`
	Actual    *float64       `json:"actual"`
	Status    *models.Status `json:"status"`
	Carried   bool           `json:"carried"`
}

// LatestPerWeek assigns each entry to its period week (pre-period entries
// count as week 1) and keeps only the most recently recorded entry per week.
func LatestPerWeek(progress []models.WeeklyProgress, start, end time.Time) map[int]models.WeeklyProgress {
	out := make(map[int]models.WeeklyProgress, len(progress))
	for _, p := range progress {
		w := WeekOf(start, end, p.WeekStartDate)
		if cur, ok := out[w]; !ok || newer(p, cur) {
			out[w] = p
		}
	}
	return out
}

// BuildSeries returns expected vs. actual values for every week of the
// period. Weeks up to the current week without an explicit entry carry
// forward the latest earlier entry (or 0); future weeks stay empty. Statuses
// come from the entry when cached, otherwise they are derived with the
// weeks-behind heuristic at that week. kr is not modified.
func BuildSeries(kr models.KeyResult, start, end, now time.Time) []WeekPoint {
	total := TotalWeeks(start, end)
	current := CurrentWeek(start, end, now)
	targets := ResolveTargets(kr, total)
	byWeek := LatestPerWeek(kr.Progress, start, end)

	recorded := make([]int, 0, len(byWeek))
	for w := range byWeek {
		recorded = append(recorded, w)
	}
	sort.Ints(recorded)

	series := make([]WeekPoint, 0, total)
	for w := 1; w <= total; w++ {
		pt := WeekPoint{
			Week:      w,
			WeekStart: WeekStart(start, w),
			Expected:  targets[w-1],
		}

		if e, ok := byWeek[w]; ok {
			pt.Actual = float64Ptr(e.Value)
			pt.Status = statusPtr(cachedOrDerived(e.Status, targets, w, e.Value))
		} else if w <= current {
			value := 0.0
			var cached models.Status
			if prev, ok := latestBefore(recorded, w); ok {
				value = byWeek[prev].Value
				cached = byWeek[prev].Status
			}
			pt.Actual = float64Ptr(value)
			pt.Status = statusPtr(cachedOrDerived(cached, targets, w, value))
			pt.Carried = true
		}

		series = append(series, pt)
	}
	return series
}

// latestBefore returns the greatest recorded week strictly below w.
func latestBefore(sortedWeeks []int, w int) (int, bool) {
	i := sort.SearchInts(sortedWeeks, w)
	if i == 0 {
		return 0, false
	}
	return sortedWeeks[i-1], true
}

func cachedOrDerived(cached models.Status, targets []float64, week int, value float64) models.Status {
	if cached.Valid() {
		return cached
	}
	return StatusAt(targets, week, value)
}

func float64Ptr(v float64) *float64 { return &v }

func statusPtr(s models.Status) *models.Status { return &s }
