package okrservice

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/okrtrack/internal/apperr"
	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/okr"
)

// PeriodInput carries the editable fields of a period.
type PeriodInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

func (in PeriodInput) check() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("period name is required")
	}
	if okr.TotalWeeks(in.StartDate, in.EndDate) == 0 {
		return invalid("end date %s is before start date %s",
			in.EndDate.Format(models.DateLayout), in.StartDate.Format(models.DateLayout))
	}
	return nil
}

// CreatePeriod stores a new period. The first period ever created becomes
// the active one.
func (s *Service) CreatePeriod(_ context.Context, in PeriodInput) (*models.Period, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	p := models.Period{
		ID:        newID(),
		Name:      strings.TrimSpace(in.Name),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		CreatedAt: s.recordedAt(),
	}
	if err := s.db.InsertPeriod(p); err != nil {
		return nil, err
	}

	_, err := s.db.ActivePeriod()
	switch {
	case errors.Is(err, apperr.ErrNoActivePeriod):
		if err := s.db.ActivatePeriod(p.ID); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	s.publish(EventPeriodChanged, map[string]string{"id": p.ID})
	return s.db.GetPeriod(p.ID)
}

// ListPeriods returns every period, most recent first.
func (s *Service) ListPeriods(_ context.Context) ([]models.Period, error) {
	periods, err := s.db.ListPeriods()
	return nonNilSlice(periods), err
}

// GetPeriod returns a single period.
func (s *Service) GetPeriod(_ context.Context, id string) (*models.Period, error) {
	return s.db.GetPeriod(id)
}

// UpdatePeriod renames or re-dates a period. Manual weekly targets whose
// length no longer matches are left in place; reads fall back to linear.
func (s *Service) UpdatePeriod(_ context.Context, id string, in PeriodInput) (*models.Period, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	p, err := s.db.GetPeriod(id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	if err := s.db.UpdatePeriod(*p); err != nil {
		return nil, err
	}
	s.publish(EventPeriodChanged, map[string]string{"id": id})
	return p, nil
}

// DeletePeriod removes a period, everything under it and its reflection
// files.
func (s *Service) DeletePeriod(_ context.Context, id string) error {
	if err := s.db.DeletePeriod(id); err != nil {
		return err
	}
	files, err := s.journal.List(id)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		s.logger.Warn("list reflections of deleted period",
			slog.String("period_id", id), slog.String("error", err.Error()))
	}
	for _, f := range files {
		if err := s.journal.Delete(f.Path); err != nil {
			s.logger.Warn("delete reflection of deleted period",
				slog.String("path", f.Path), slog.String("error", err.Error()))
		}
	}
	s.publish(EventPeriodChanged, map[string]string{"id": id})
	return nil
}

// ActivatePeriod makes id the only active period.
func (s *Service) ActivatePeriod(_ context.Context, id string) (*models.Period, error) {
	if err := s.db.ActivatePeriod(id); err != nil {
		return nil, err
	}
	s.publish(EventPeriodActivated, map[string]string{"id": id})
	return s.db.GetPeriod(id)
}

// ActivePeriod returns the active period or apperr.ErrNoActivePeriod.
func (s *Service) ActivePeriod(_ context.Context) (*models.Period, error) {
	return s.db.ActivePeriod()
}

// PeriodContext answers "what week is it" for the period at the current
// (possibly overridden) time.
func (s *Service) PeriodContext(_ context.Context, id string) (*okr.PeriodContext, error) {
	p, err := s.db.GetPeriod(id)
	if err != nil {
		return nil, err
	}
	pc := okr.PeriodContextFor(*p, s.Now())
	return &pc, nil
}
