package okr

import (
	"time"

	"github.com/starford/okrtrack/internal/models"
)

// KeyResultSummary is the dashboard view of one key result.
type KeyResultSummary struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Unit         string        `json:"unit,omitempty"`
	TargetValue  float64       `json:"target_value"`
	CurrentValue float64       `json:"current_value"`
	Expected     float64       `json:"expected"`
	Percent      float64       `json:"percent"`
	Status       models.Status `json:"status"`
	StatusLabel  string        `json:"status_label"`
	StatusColor  string        `json:"status_color"`
}

// ObjectiveSummary is the dashboard view of an objective. Its status is the
// worst of its key results.
type ObjectiveSummary struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Status      models.Status      `json:"status"`
	StatusLabel string             `json:"status_label"`
	StatusColor string             `json:"status_color"`
	KeyResults  []KeyResultSummary `json:"key_results"`
}

// SummarizeKeyResult evaluates kr at the period's current week.
func SummarizeKeyResult(kr models.KeyResult, p models.Period, now time.Time) KeyResultSummary {
	total := TotalWeeks(p.StartDate, p.EndDate)
	week := CurrentWeek(p.StartDate, p.EndDate, now)
	targets := ResolveTargets(kr, total)
	current := CurrentProgress(kr)

	expected := 0.0
	if week >= 1 && week <= len(targets) {
		expected = targets[week-1]
	}
	percent := 0.0
	if kr.TargetValue != 0 {
		percent = current * 100 / kr.TargetValue
	}

	status := StatusAt(targets, week, current)
	return KeyResultSummary{
		ID:           kr.ID,
		Title:        kr.Title,
		Unit:         kr.Unit,
		TargetValue:  kr.TargetValue,
		CurrentValue: current,
		Expected:     expected,
		Percent:      percent,
		Status:       status,
		StatusLabel:  status.Label(),
		StatusColor:  status.Color(),
	}
}

// SummarizeObjective evaluates every key result of obj.
func SummarizeObjective(obj models.Objective, p models.Period, now time.Time) ObjectiveSummary {
	krs := make([]KeyResultSummary, 0, len(obj.KeyResults))
	statuses := make([]models.Status, 0, len(obj.KeyResults))
	for _, kr := range obj.KeyResults {
		s := SummarizeKeyResult(kr, p, now)
		krs = append(krs, s)
		statuses = append(statuses, s.Status)
	}
	status := Worst(statuses...)
	return ObjectiveSummary{
		ID:          obj.ID,
		Title:       obj.Title,
		Status:      status,
		StatusLabel: status.Label(),
		StatusColor: status.Color(),
		KeyResults:  krs,
	}
}
