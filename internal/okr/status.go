package okr

import (
	"time"

	"github.com/starford/okrtrack/internal/models"
)

// Weeks-behind thresholds. A key result less than one week of expected
// progress behind is on track; less than two weeks needs attention.
const (
	onTrackBelow        = 1
	needsAttentionBelow = 2
)

// Worst returns the most severe of the given statuses. With no input it
// returns StatusOnTrack.
func Worst(statuses ...models.Status) models.Status {
	worst := models.StatusOnTrack
	for _, s := range statuses {
		if s.Valid() && s.Rank() > worst.Rank() {
			worst = s
		}
	}
	return worst
}

// Classify maps a weeks-behind distance onto a status.
func Classify(weeksBehind int) models.Status {
	switch {
	case weeksBehind < onTrackBelow:
		return models.StatusOnTrack
	case weeksBehind < needsAttentionBelow:
		return models.StatusNeedsAttention
	default:
		return models.StatusBehind
	}
}

// EquivalentWeek inverts a trajectory: it returns the largest 1-based week
// whose target is satisfied by actual, or 0 if not even week 1's is.
func EquivalentWeek(targets []float64, actual float64) int {
	for w := len(targets); w >= 1; w-- {
		if targets[w-1] <= actual {
			return w
		}
	}
	return 0
}

// StatusAt classifies actual progress at week against a resolved trajectory.
func StatusAt(targets []float64, week int, actual float64) models.Status {
	return Classify(week - EquivalentWeek(targets, actual))
}

// WeekStatus classifies actualValue for kr at weekNumber of the period
// [periodStart, periodEnd].
func WeekStatus(kr models.KeyResult, weekNumber int, actualValue float64, periodStart, periodEnd time.Time) models.Status {
	targets := ResolveTargets(kr, TotalWeeks(periodStart, periodEnd))
	return StatusAt(targets, weekNumber, actualValue)
}

// LatestEntry returns the progress entry with the greatest RecordedAt. Ties
// go to the later week, then to the entry appearing last.
func LatestEntry(progress []models.WeeklyProgress) (models.WeeklyProgress, bool) {
	if len(progress) == 0 {
		return models.WeeklyProgress{}, false
	}
	best := progress[0]
	for _, p := range progress[1:] {
		if newer(p, best) {
			best = p
		}
	}
	return best, true
}

// newer reports whether a supersedes b.
func newer(a, b models.WeeklyProgress) bool {
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.After(b.RecordedAt)
	}
	return !civil(a.WeekStartDate).Before(civil(b.WeekStartDate))
}

// CurrentProgress returns the value of the most recently recorded entry, or
// 0 when kr has no progress.
func CurrentProgress(kr models.KeyResult) float64 {
	latest, ok := LatestEntry(kr.Progress)
	if !ok {
		return 0
	}
	return latest.Value
}

// CurrentStatus classifies kr's current progress at currentWeek.
func CurrentStatus(kr models.KeyResult, p models.Period, currentWeek int) models.Status {
	return WeekStatus(kr, currentWeek, CurrentProgress(kr), p.StartDate, p.EndDate)
}
