// Package models defines the domain types for okrtrack.
package models

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Target modes for key results.
const (
	TargetModeLinear = "linear"
	TargetModeManual = "manual"
)

// Status is the derived health of a key result for a given week.
type Status string

// Known statuses, ordered from best to worst.
const (
	StatusOnTrack        Status = "on-track"
	StatusNeedsAttention Status = "needs-attention"
	StatusBehind         Status = "behind"
)

// Period is a named date range (e.g. a quarter). Start and end dates are
// inclusive calendar dates.
type Period struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Objective groups key results within a period.
type Objective struct {
	ID          string      `json:"id"`
	PeriodID    string      `json:"period_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Position    int         `json:"position"`
	KeyResults  []KeyResult `json:"key_results,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// KeyResult is a measurable cumulative target tracked weekly.
type KeyResult struct {
	ID            string           `json:"id"`
	ObjectiveID   string           `json:"objective_id"`
	Title         string           `json:"title"`
	TargetValue   float64          `json:"target_value"`
	Unit          string           `json:"unit,omitempty"`
	TargetMode    string           `json:"target_mode"`
	WeeklyTargets []float64        `json:"weekly_targets,omitempty"`
	Progress      []WeeklyProgress `json:"weekly_progress,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// WeeklyProgress is one check-in. Value is cumulative progress as of the week
// starting at WeekStartDate (a Monday). Status is the classification cached
// at check-in time and may be empty.
type WeeklyProgress struct {
	ID            string    `json:"id"`
	KeyResultID   string    `json:"key_result_id"`
	WeekStartDate time.Time `json:"week_start_date"`
	Value         float64   `json:"value"`
	Status        Status    `json:"status,omitempty"`
	Note          string    `json:"note,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Reflection is the index row for a weekly reflection stored in the journal.
type Reflection struct {
	Path       string    `json:"path"`
	PeriodID   string    `json:"period_id"`
	Week       int       `json:"week"`
	Title      string    `json:"title"`
	Confidence int       `json:"confidence,omitempty"`
	Tags       []string  `json:"tags"`
	Checksum   string    `json:"checksum"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// JournalFile is lightweight metadata for a journal file on disk.
type JournalFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
