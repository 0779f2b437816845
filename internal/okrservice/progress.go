package okrservice

import (
	"context"
	"time"

	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/okr"
)

// ProgressInput is one check-in. A nil WeekStart means the current week.
type ProgressInput struct {
	Value     float64
	WeekStart *time.Time
	Note      string
}

// RecordProgress appends a check-in for a key result. The week is normalised
// to its Monday and must overlap the key result's period. The derived status
// is cached on the entry.
func (s *Service) RecordProgress(_ context.Context, krID string, in ProgressInput) (*models.WeeklyProgress, error) {
	kr, err := s.db.GetKeyResult(krID)
	if err != nil {
		return nil, err
	}
	p, err := s.db.PeriodOfKeyResult(krID)
	if err != nil {
		return nil, err
	}

	day := s.Now()
	if in.WeekStart != nil {
		day = *in.WeekStart
	}
	monday := okr.MondayOf(day)
	first := okr.MondayOf(p.StartDate)
	last := okr.MondayOf(p.EndDate)
	if monday.Before(first) || monday.After(last) {
		return nil, invalid("week of %s is outside period %s (%s to %s)",
			monday.Format(models.DateLayout), p.Name,
			p.StartDate.Format(models.DateLayout), p.EndDate.Format(models.DateLayout))
	}

	week := okr.WeekOf(p.StartDate, p.EndDate, monday)
	entry := models.WeeklyProgress{
		ID:            newID(),
		KeyResultID:   krID,
		WeekStartDate: monday,
		Value:         in.Value,
		Status:        okr.WeekStatus(*kr, week, in.Value, p.StartDate, p.EndDate),
		Note:          in.Note,
		RecordedAt:    s.recordedAt(),
	}
	if err := s.db.InsertProgress(entry); err != nil {
		return nil, err
	}

	s.metrics.CheckIn(entry.Status)
	s.publish(EventProgressRecorded, map[string]any{
		"key_result_id": krID,
		"week":          week,
		"value":         entry.Value,
		"status":        entry.Status,
	})
	return &entry, nil
}

// Series is the chart data of one key result.
type Series struct {
	KeyResultID string            `json:"key_result_id"`
	Title       string            `json:"title"`
	Unit        string            `json:"unit,omitempty"`
	TargetValue float64           `json:"target_value"`
	Period      okr.PeriodContext `json:"period"`
	Points      []okr.WeekPoint   `json:"points"`
}

// KeyResultSeries returns expected vs. actual values for every week of the
// key result's period.
func (s *Service) KeyResultSeries(_ context.Context, krID string) (*Series, error) {
	kr, err := s.db.GetKeyResult(krID)
	if err != nil {
		return nil, err
	}
	p, err := s.db.PeriodOfKeyResult(krID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	return &Series{
		KeyResultID: kr.ID,
		Title:       kr.Title,
		Unit:        kr.Unit,
		TargetValue: kr.TargetValue,
		Period:      okr.PeriodContextFor(*p, now),
		Points:      okr.BuildSeries(*kr, p.StartDate, p.EndDate, now),
	}, nil
}
