package okrservice

import (
	"context"

	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/okr"
)

// Dashboard is the status overview of the active period.
type Dashboard struct {
	PeriodID    string                 `json:"period_id"`
	Period      okr.PeriodContext      `json:"period"`
	Status      models.Status          `json:"status"`
	StatusLabel string                 `json:"status_label"`
	Counts      map[models.Status]int  `json:"counts"`
	Objectives  []okr.ObjectiveSummary `json:"objectives"`
}

// Dashboard evaluates every key result of the active period at the current
// week. It returns apperr.ErrNoActivePeriod when no period is active.
func (s *Service) Dashboard(_ context.Context) (*Dashboard, error) {
	p, err := s.db.ActivePeriod()
	if err != nil {
		return nil, err
	}
	objs, err := s.db.LoadObjectives(p.ID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	d := &Dashboard{
		PeriodID: p.ID,
		Period:   okr.PeriodContextFor(*p, now),
		Counts: map[models.Status]int{
			models.StatusOnTrack:        0,
			models.StatusNeedsAttention: 0,
			models.StatusBehind:         0,
		},
		Objectives: make([]okr.ObjectiveSummary, 0, len(objs)),
	}
	statuses := make([]models.Status, 0, len(objs))
	for _, o := range objs {
		sum := okr.SummarizeObjective(o, *p, now)
		for _, kr := range sum.KeyResults {
			d.Counts[kr.Status]++
		}
		statuses = append(statuses, sum.Status)
		d.Objectives = append(d.Objectives, sum)
	}
	d.Status = okr.Worst(statuses...)
	d.StatusLabel = d.Status.Label()

	s.metrics.StatusCounts(d.Counts)
	return d, nil
}
