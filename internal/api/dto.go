package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/okrservice"
	"github.com/starford/okrtrack/internal/store"
)

// PeriodRequest is the request body for creating or updating a period.
type PeriodRequest struct {
	Name      string `json:"name" example:"Q1 2025" validate:"required"`
	StartDate string `json:"start_date" example:"2025-01-01" validate:"required"`
	EndDate   string `json:"end_date" example:"2025-03-31" validate:"required"`
}

// Validate checks field presence and date formats.
func (r *PeriodRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.StartDate, validation.Required, validation.Date(models.DateLayout)),
		validation.Field(&r.EndDate, validation.Required, validation.Date(models.DateLayout)),
	)
}

func (r *PeriodRequest) input() okrservice.PeriodInput {
	return okrservice.PeriodInput{
		Name:      r.Name,
		StartDate: mustDate(r.StartDate),
		EndDate:   mustDate(r.EndDate),
	}
}

// ObjectiveRequest is the request body for creating or updating an objective.
type ObjectiveRequest struct {
	Title       string `json:"title" example:"Grow the newsletter" validate:"required"`
	Description string `json:"description" example:"Reach a sustainable audience"`
	Position    int    `json:"position" example:"0"`
}

// Validate checks the objective fields.
func (r *ObjectiveRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 4000)),
		validation.Field(&r.Position, validation.Min(0)),
	)
}

// KeyResultRequest is the request body for creating a key result.
type KeyResultRequest struct {
	Title         string    `json:"title" example:"Subscribers" validate:"required"`
	TargetValue   float64   `json:"target_value" example:"1000" validate:"required"`
	Unit          string    `json:"unit" example:"subscribers"`
	TargetMode    string    `json:"target_mode" example:"linear" enums:"linear,manual"`
	WeeklyTargets []float64 `json:"weekly_targets"`
}

// Validate checks the key result fields.
func (r *KeyResultRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.TargetValue, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&r.Unit, validation.Length(0, 40)),
		validation.Field(&r.TargetMode, validation.In(models.TargetModeLinear, models.TargetModeManual)),
	)
}

// KeyResultPatchRequest is the request body for updating a key result.
// Omitted fields are left unchanged.
type KeyResultPatchRequest struct {
	Title         *string   `json:"title,omitempty"`
	TargetValue   *float64  `json:"target_value,omitempty"`
	Unit          *string   `json:"unit,omitempty"`
	TargetMode    *string   `json:"target_mode,omitempty" enums:"linear,manual"`
	WeeklyTargets []float64 `json:"weekly_targets,omitempty"`
}

// Validate checks the fields that are present.
func (r *KeyResultPatchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.TargetValue, validation.Min(0.0).Exclusive()),
		validation.Field(&r.Unit, validation.Length(0, 40)),
		validation.Field(&r.TargetMode, validation.In(models.TargetModeLinear, models.TargetModeManual)),
	)
}

// ProgressRequest is the request body for a check-in.
type ProgressRequest struct {
	Value     *float64 `json:"value" example:"40" validate:"required"`
	WeekStart string   `json:"week_start" example:"2025-01-27"`
	Note      string   `json:"note" example:"Launch post went out"`
}

// Validate checks the check-in fields.
func (r *ProgressRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.NotNil),
		validation.Field(&r.WeekStart, validation.Date(models.DateLayout)),
		validation.Field(&r.Note, validation.Length(0, 2000)),
	)
}

func (r *ProgressRequest) input() okrservice.ProgressInput {
	in := okrservice.ProgressInput{Value: *r.Value, Note: r.Note}
	if r.WeekStart != "" {
		d := mustDate(r.WeekStart)
		in.WeekStart = &d
	}
	return in
}

// ReflectionRequest is the request body for saving a weekly reflection. A
// zero week means the current week.
type ReflectionRequest struct {
	Week       int      `json:"week" example:"5"`
	Title      string   `json:"title" example:"Momentum is back"`
	Confidence int      `json:"confidence" example:"7"`
	Tags       []string `json:"tags"`
	Body       string   `json:"body" example:"Shipped the referral flow." validate:"required"`
}

// Validate checks the reflection fields.
func (r *ReflectionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Week, validation.Min(0)),
		validation.Field(&r.Title, validation.Length(0, 200)),
		validation.Field(&r.Confidence, validation.Min(0), validation.Max(okrservice.MaxConfidence)),
		validation.Field(&r.Body, validation.Required, validation.Length(1, 20000)),
	)
}

// ClockRequest sets the test-date override. Exactly one field is set.
type ClockRequest struct {
	Date       string `json:"date,omitempty" example:"2025-02-10"`
	OffsetDays *int   `json:"offset_days,omitempty" example:"7"`
}

// Validate checks that exactly one override form is present.
func (r *ClockRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Date,
			validation.Date(models.DateLayout),
			validation.When(r.OffsetDays == nil, validation.Required.Error("date or offset_days is required")),
			validation.When(r.OffsetDays != nil, validation.Empty.Error("date and offset_days are exclusive")),
		),
		validation.Field(&r.OffsetDays, validation.Min(-3660), validation.Max(3660)),
	)
}

func (r *ClockRequest) override() okrservice.ClockOverride {
	if r.Date != "" {
		d := mustDate(r.Date)
		return okrservice.ClockOverride{Date: &d}
	}
	return okrservice.ClockOverride{OffsetDays: r.OffsetDays}
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}

// mustDate parses a date that already passed validation.Date.
func mustDate(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}
