package okrservice

import (
	"context"
	"strings"

	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/okr"
)

// ObjectiveInput carries the editable fields of an objective.
type ObjectiveInput struct {
	Title       string
	Description string
	Position    int
}

// ListObjectives returns a period's objectives with key results and
// progress.
func (s *Service) ListObjectives(_ context.Context, periodID string) ([]models.Objective, error) {
	if _, err := s.db.GetPeriod(periodID); err != nil {
		return nil, err
	}
	objs, err := s.db.LoadObjectives(periodID)
	return nonNilSlice(objs), err
}

// CreateObjective adds an objective to a period.
func (s *Service) CreateObjective(_ context.Context, periodID string, in ObjectiveInput) (*models.Objective, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("objective title is required")
	}
	if _, err := s.db.GetPeriod(periodID); err != nil {
		return nil, err
	}
	o := models.Objective{
		ID:          newID(),
		PeriodID:    periodID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Position:    in.Position,
		CreatedAt:   s.recordedAt(),
	}
	if err := s.db.UpsertObjective(o); err != nil {
		return nil, err
	}
	s.publish(EventObjectiveChanged, map[string]string{"id": o.ID, "period_id": periodID})
	return &o, nil
}

// GetObjective returns an objective with its key results.
func (s *Service) GetObjective(_ context.Context, id string) (*models.Objective, error) {
	o, err := s.db.GetObjective(id)
	if err != nil {
		return nil, err
	}
	if o.KeyResults, err = s.db.KeyResultsOf(id); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateObjective replaces the editable fields of an objective.
func (s *Service) UpdateObjective(ctx context.Context, id string, in ObjectiveInput) (*models.Objective, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("objective title is required")
	}
	o, err := s.db.GetObjective(id)
	if err != nil {
		return nil, err
	}
	o.Title = strings.TrimSpace(in.Title)
	o.Description = in.Description
	o.Position = in.Position
	if err := s.db.UpsertObjective(*o); err != nil {
		return nil, err
	}
	s.publish(EventObjectiveChanged, map[string]string{"id": id, "period_id": o.PeriodID})
	return s.GetObjective(ctx, id)
}

// DeleteObjective removes an objective with its key results and progress.
func (s *Service) DeleteObjective(_ context.Context, id string) error {
	if err := s.db.DeleteObjective(id); err != nil {
		return err
	}
	s.publish(EventObjectiveChanged, map[string]string{"id": id})
	return nil
}

// KeyResultInput carries the fields of a new key result. WeeklyTargets is
// only meaningful in manual mode; when empty there, a linear ramp is used.
type KeyResultInput struct {
	Title         string
	TargetValue   float64
	Unit          string
	TargetMode    string
	WeeklyTargets []float64
}

// KeyResultPatch updates a key result. Nil fields are left unchanged.
type KeyResultPatch struct {
	Title         *string
	TargetValue   *float64
	Unit          *string
	TargetMode    *string
	WeeklyTargets []float64
}

// KeyResultTargets is the resolved trajectory of a key result.
type KeyResultTargets struct {
	KeyResultID string    `json:"key_result_id"`
	TargetMode  string    `json:"target_mode"`
	TargetValue float64   `json:"target_value"`
	TotalWeeks  int       `json:"total_weeks"`
	Targets     []float64 `json:"targets"`
}

func checkMode(mode string) error {
	if mode != models.TargetModeLinear && mode != models.TargetModeManual {
		return invalid("target mode must be %q or %q", models.TargetModeLinear, models.TargetModeManual)
	}
	return nil
}

// periodOfObjective returns the period an objective belongs to.
func (s *Service) periodOfObjective(objectiveID string) (*models.Period, error) {
	o, err := s.db.GetObjective(objectiveID)
	if err != nil {
		return nil, err
	}
	return s.db.GetPeriod(o.PeriodID)
}

// CreateKeyResult adds a key result to an objective.
func (s *Service) CreateKeyResult(_ context.Context, objectiveID string, in KeyResultInput) (*models.KeyResult, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("key result title is required")
	}
	if in.TargetMode == "" {
		in.TargetMode = models.TargetModeLinear
	}
	if err := checkMode(in.TargetMode); err != nil {
		return nil, err
	}
	p, err := s.periodOfObjective(objectiveID)
	if err != nil {
		return nil, err
	}
	total := okr.TotalWeeks(p.StartDate, p.EndDate)

	kr := models.KeyResult{
		ID:          newID(),
		ObjectiveID: objectiveID,
		Title:       strings.TrimSpace(in.Title),
		TargetValue: in.TargetValue,
		Unit:        in.Unit,
		TargetMode:  in.TargetMode,
		CreatedAt:   s.recordedAt(),
	}
	if kr.TargetMode == models.TargetModeManual {
		switch {
		case len(in.WeeklyTargets) == 0:
			kr.WeeklyTargets = okr.LinearTargets(kr.TargetValue, total)
		case len(in.WeeklyTargets) != total:
			return nil, invalid("expected %d weekly targets, got %d", total, len(in.WeeklyTargets))
		default:
			kr.WeeklyTargets = append([]float64(nil), in.WeeklyTargets...)
		}
	}
	if err := s.db.UpsertKeyResult(kr); err != nil {
		return nil, err
	}
	s.publish(EventKeyResultChanged, map[string]string{"id": kr.ID, "objective_id": objectiveID})
	return &kr, nil
}

// GetKeyResult returns a key result with its progress history.
func (s *Service) GetKeyResult(_ context.Context, id string) (*models.KeyResult, error) {
	return s.db.GetKeyResult(id)
}

// UpdateKeyResult applies patch. Switching to manual without targets starts
// from a linear ramp; changing the target value of a manual key result
// rescales its curve; explicit weekly targets must cover every week.
func (s *Service) UpdateKeyResult(_ context.Context, id string, patch KeyResultPatch) (*models.KeyResult, error) {
	kr, err := s.db.GetKeyResult(id)
	if err != nil {
		return nil, err
	}
	p, err := s.db.PeriodOfKeyResult(id)
	if err != nil {
		return nil, err
	}
	total := okr.TotalWeeks(p.StartDate, p.EndDate)

	prevMode, prevTarget := kr.TargetMode, kr.TargetValue
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, invalid("key result title is required")
		}
		kr.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Unit != nil {
		kr.Unit = *patch.Unit
	}
	if patch.TargetValue != nil {
		kr.TargetValue = *patch.TargetValue
	}
	if patch.TargetMode != nil {
		if err := checkMode(*patch.TargetMode); err != nil {
			return nil, err
		}
		kr.TargetMode = *patch.TargetMode
	}

	switch {
	case kr.TargetMode == models.TargetModeLinear:
		kr.WeeklyTargets = nil
	case patch.WeeklyTargets != nil:
		if len(patch.WeeklyTargets) != total {
			return nil, invalid("expected %d weekly targets, got %d", total, len(patch.WeeklyTargets))
		}
		kr.WeeklyTargets = append([]float64(nil), patch.WeeklyTargets...)
	case prevMode != models.TargetModeManual || len(kr.WeeklyTargets) == 0:
		kr.WeeklyTargets = okr.LinearTargets(kr.TargetValue, total)
	case kr.TargetValue != prevTarget:
		kr.WeeklyTargets = okr.RescaleTargets(kr.WeeklyTargets, kr.TargetValue, total)
	}

	if err := s.db.UpsertKeyResult(*kr); err != nil {
		return nil, err
	}
	s.publish(EventKeyResultChanged, map[string]string{"id": kr.ID, "objective_id": kr.ObjectiveID})
	return kr, nil
}

// DeleteKeyResult removes a key result and its progress.
func (s *Service) DeleteKeyResult(_ context.Context, id string) error {
	if err := s.db.DeleteKeyResult(id); err != nil {
		return err
	}
	s.publish(EventKeyResultChanged, map[string]string{"id": id})
	return nil
}

// KeyResultTargets resolves the weekly trajectory the status engine uses.
func (s *Service) KeyResultTargets(_ context.Context, id string) (*KeyResultTargets, error) {
	kr, err := s.db.GetKeyResult(id)
	if err != nil {
		return nil, err
	}
	p, err := s.db.PeriodOfKeyResult(id)
	if err != nil {
		return nil, err
	}
	total := okr.TotalWeeks(p.StartDate, p.EndDate)
	return &KeyResultTargets{
		KeyResultID: kr.ID,
		TargetMode:  kr.TargetMode,
		TargetValue: kr.TargetValue,
		TotalWeeks:  total,
		Targets:     okr.ResolveTargets(*kr, total),
	}, nil
}
