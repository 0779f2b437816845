package okr

import "github.com/starford/okrtrack/internal/models"

// LinearTargets returns the cumulative target for each week of a linear ramp
// to targetValue: result[i] = targetValue*(i+1)/totalWeeks. The last element
// is exactly targetValue. totalWeeks <= 0 yields an empty slice.
func LinearTargets(targetValue float64, totalWeeks int) []float64 {
	if totalWeeks <= 0 {
		return []float64{}
	}
	out := make([]float64, totalWeeks)
	for i := range out {
		out[i] = targetValue * float64(i+1) / float64(totalWeeks)
	}
	out[totalWeeks-1] = targetValue
	return out
}

// ResolveTargets returns the trajectory for kr over totalWeeks. Manual
// targets are used verbatim only when their length matches totalWeeks;
// anything else (linear mode, missing or stale arrays after the period
// changed length) falls back to LinearTargets.
func ResolveTargets(kr models.KeyResult, totalWeeks int) []float64 {
	if kr.TargetMode == models.TargetModeManual && totalWeeks > 0 && len(kr.WeeklyTargets) == totalWeeks {
		out := make([]float64, totalWeeks)
		copy(out, kr.WeeklyTargets)
		return out
	}
	return LinearTargets(kr.TargetValue, totalWeeks)
}

// RescaleTargets adapts manually authored weekly targets to a new final
// target by scaling every value by newTarget/max(existing), which keeps the
// user's curve shape. Without usable existing values (none, wrong length, or
// a non-positive maximum) it starts over from LinearTargets.
func RescaleTargets(existing []float64, newTarget float64, totalWeeks int) []float64 {
	if len(existing) == 0 || len(existing) != totalWeeks {
		return LinearTargets(newTarget, totalWeeks)
	}
	oldMax := existing[0]
	for _, v := range existing[1:] {
		if v > oldMax {
			oldMax = v
		}
	}
	if oldMax <= 0 {
		return LinearTargets(newTarget, totalWeeks)
	}
	scale := newTarget / oldMax
	out := make([]float64, len(existing))
	for i, v := range existing {
		out[i] = v * scale
	}
	return out
}
