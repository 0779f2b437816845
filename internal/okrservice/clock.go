package okrservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starford/okrtrack/internal/clock"
	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/store"
)

// ClockOverride pins "today" to a date or shifts it by whole days. Exactly
// one of the two is set.
type ClockOverride struct {
	Date       *time.Time
	OffsetDays *int
}

// ClockState describes the time the service currently uses.
type ClockState struct {
	Now        time.Time `json:"now"`
	Today      string    `json:"today"`
	Overridden bool      `json:"overridden"`
	Date       string    `json:"date,omitempty"`
	OffsetDays int       `json:"offset_days,omitempty"`
}

// Persisted form: "date:2025-02-10" or "offset:-3".
const (
	overrideDatePrefix   = "date:"
	overrideOffsetPrefix = "offset:"
)

func (o ClockOverride) encode() (string, error) {
	switch {
	case o.Date != nil && o.OffsetDays == nil:
		return overrideDatePrefix + o.Date.Format(models.DateLayout), nil
	case o.OffsetDays != nil && o.Date == nil:
		return overrideOffsetPrefix + strconv.Itoa(*o.OffsetDays), nil
	default:
		return "", invalid("set exactly one of date or offset_days")
	}
}

func decodeOverride(v string) (ClockOverride, error) {
	switch {
	case strings.HasPrefix(v, overrideDatePrefix):
		d, err := time.Parse(models.DateLayout, strings.TrimPrefix(v, overrideDatePrefix))
		if err != nil {
			return ClockOverride{}, fmt.Errorf("okrservice: decode clock override: %w", err)
		}
		return ClockOverride{Date: &d}, nil
	case strings.HasPrefix(v, overrideOffsetPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(v, overrideOffsetPrefix))
		if err != nil {
			return ClockOverride{}, fmt.Errorf("okrservice: decode clock override: %w", err)
		}
		return ClockOverride{OffsetDays: &n}, nil
	default:
		return ClockOverride{}, fmt.Errorf("okrservice: unknown clock override %q", v)
	}
}

// source builds the overriding clock on top of base, so a runtime offset
// shifts a configured date rather than the wall clock.
func (o ClockOverride) source(base clock.Clock) clock.Clock {
	if o.Date != nil {
		return clock.AtDate(base, *o.Date)
	}
	return clock.Offset{Base: base, Shift: time.Duration(*o.OffsetDays) * 24 * time.Hour}
}

// SetClockOverride persists o and applies it to every later time read.
func (s *Service) SetClockOverride(ctx context.Context, o ClockOverride) (*ClockState, error) {
	v, err := o.encode()
	if err != nil {
		return nil, err
	}
	if err := s.db.SetSetting(store.SettingClockOverride, v); err != nil {
		return nil, err
	}
	s.clock.Set(o.source(s.clock.Base()))
	s.publish(EventClockChanged, map[string]string{"override": v})
	return s.ClockState(ctx)
}

// ClearClockOverride returns to the base clock.
func (s *Service) ClearClockOverride(ctx context.Context) (*ClockState, error) {
	if err := s.db.DeleteSetting(store.SettingClockOverride); err != nil {
		return nil, err
	}
	s.clock.Clear()
	s.publish(EventClockChanged, map[string]string{"override": ""})
	return s.ClockState(ctx)
}

// ClockState reports the effective time and any persisted override.
func (s *Service) ClockState(_ context.Context) (*ClockState, error) {
	now := s.Now()
	st := &ClockState{
		Now:        now,
		Today:      now.Format(models.DateLayout),
		Overridden: s.clock.Active(),
	}
	v, ok, err := s.db.GetSetting(store.SettingClockOverride)
	if err != nil {
		return nil, err
	}
	if ok {
		if o, err := decodeOverride(v); err == nil {
			if o.Date != nil {
				st.Date = o.Date.Format(models.DateLayout)
			} else {
				st.OffsetDays = *o.OffsetDays
			}
		}
	}
	return st, nil
}

// RestoreClockOverride applies a persisted override, if any. It is called
// once at startup and reports whether an override was installed.
func (s *Service) RestoreClockOverride(_ context.Context) (bool, error) {
	v, ok, err := s.db.GetSetting(store.SettingClockOverride)
	if err != nil || !ok {
		return false, err
	}
	o, err := decodeOverride(v)
	if err != nil {
		return false, err
	}
	s.clock.Set(o.source(s.clock.Base()))
	return true, nil
}
