package okrservice

import (
	"context"
	"fmt"

	"github.com/starford/okrtrack/internal/journal"
	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/okr"
	"github.com/starford/okrtrack/internal/parser"
	"github.com/starford/okrtrack/internal/store"
)

// MaxConfidence is the top of the 0-10 confidence scale.
const MaxConfidence = 10

// ReflectionInput is a weekly reflection written by the user.
type ReflectionInput struct {
	Week       int
	Title      string
	Confidence int
	Tags       []string
	Body       string
}

// ReflectionDetail is a reflection with its Markdown body.
type ReflectionDetail struct {
	models.Reflection
	Body string `json:"body"`
}

// SaveReflection writes the reflection for a week of a period into the
// journal and indexes it. Saving the same week again replaces the file.
func (s *Service) SaveReflection(_ context.Context, periodID string, in ReflectionInput) (*ReflectionDetail, error) {
	p, err := s.db.GetPeriod(periodID)
	if err != nil {
		return nil, err
	}
	total := okr.TotalWeeks(p.StartDate, p.EndDate)
	if in.Week == 0 {
		in.Week = okr.WeekOf(p.StartDate, p.EndDate, s.Now())
	}
	if in.Week < 1 || in.Week > total {
		return nil, invalid("week must be between 1 and %d", total)
	}
	if in.Confidence < 0 || in.Confidence > MaxConfidence {
		return nil, invalid("confidence must be between 0 and %d", MaxConfidence)
	}
	if in.Title == "" {
		in.Title = fmt.Sprintf("%s week %d", p.Name, in.Week)
	}

	data, err := parser.Render(parser.Frontmatter{
		Title:      in.Title,
		Period:     periodID,
		Week:       in.Week,
		Confidence: in.Confidence,
		Tags:       in.Tags,
	}, in.Body)
	if err != nil {
		return nil, err
	}

	path := journal.ReflectionPath(periodID, in.Week)
	if err := s.journal.Write(path, data); err != nil {
		return nil, err
	}
	if err := store.IndexReflection(s.db, path, data, s.recordedAt()); err != nil {
		return nil, err
	}

	detail, err := s.readReflection(path)
	if err != nil {
		return nil, err
	}
	s.publish(EventReflectionSaved, map[string]any{"period_id": periodID, "week": in.Week, "path": path})
	return detail, nil
}

// ListReflections returns a period's indexed reflections ordered by week.
func (s *Service) ListReflections(_ context.Context, periodID string) ([]models.Reflection, error) {
	if _, err := s.db.GetPeriod(periodID); err != nil {
		return nil, err
	}
	refs, err := s.db.ListReflections(periodID)
	return nonNilSlice(refs), err
}

// GetReflection returns the reflection of one week, read from the journal.
func (s *Service) GetReflection(_ context.Context, periodID string, week int) (*ReflectionDetail, error) {
	if _, err := s.db.GetPeriod(periodID); err != nil {
		return nil, err
	}
	return s.readReflection(journal.ReflectionPath(periodID, week))
}

func (s *Service) readReflection(path string) (*ReflectionDetail, error) {
	data, err := s.journal.Read(path)
	if err != nil {
		return nil, notFoundFromFS(err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	r, err := s.db.GetReflection(path)
	if err != nil {
		return nil, err
	}
	r.Tags = nonNilSlice(r.Tags)
	return &ReflectionDetail{Reflection: *r, Body: res.Body}, nil
}

// Search runs a full-text search over objectives, key results and
// reflections.
func (s *Service) Search(_ context.Context, query string, limit int) ([]store.SearchResult, error) {
	results, err := s.db.Search(query, limit)
	return nonNilSlice(results), err
}
