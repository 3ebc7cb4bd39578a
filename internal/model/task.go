package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidMode      = errors.New("model: invalid task mode")
	ErrInvalidDuration  = errors.New("model: invalid task duration")
	ErrInvalidDaysCount = errors.New("model: invalid daily days count")
)

// Mode selects which interval-derivation and layout path applies to a task.
// It is fixed at creation time.
type Mode string

const (
	// ModeContinuous tasks occupy one contiguous interval from StartAt.
	ModeContinuous Mode = "continuous"
	// ModeDaily tasks recur on a fixed time-of-day window across
	// DaysCount consecutive days starting at FirstDay.
	ModeDaily Mode = "daily"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeContinuous, ModeDaily:
		return true
	default:
		return false
	}
}

// Task is the central entity of the scheduler. Exactly one of the two mode
// field sets is meaningful; the other is ignored. Deps and GroupID are weak
// references: a deleted dependency counts as satisfied, a deleted group as
// ungrouped.
type Task struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
	Mode      Mode

	// Continuous mode. For daily tasks these hold the representative
	// first-day window used for sorting and comparison.
	StartAt         time.Time
	DurationMinutes int

	// Daily mode.
	FirstDay   time.Time
	DaysCount  int
	DailyStart string
	DailyEnd   string

	Deps    []string
	GroupID string

	// ExternalEventID carries the opaque reference of an imported
	// external-calendar event for future reconciliation.
	ExternalEventID string
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return errors.New("model: task text is required")
	}
	if !t.Mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, t.Mode)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	switch t.Mode {
	case ModeContinuous:
		if t.StartAt.IsZero() {
			return errors.New("model: continuous task start_at is required")
		}
		if t.DurationMinutes <= 0 {
			return fmt.Errorf("%w: %d minutes", ErrInvalidDuration, t.DurationMinutes)
		}
	case ModeDaily:
		if t.FirstDay.IsZero() {
			return errors.New("model: daily task first_day is required")
		}
		if t.DaysCount < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidDaysCount, t.DaysCount)
		}
		if strings.TrimSpace(t.DailyStart) == "" || strings.TrimSpace(t.DailyEnd) == "" {
			return errors.New("model: daily task window is required")
		}
	}
	return nil
}

// DependsOn reports whether id is among the task's dependencies.
func (t Task) DependsOn(id string) bool {
	for _, dep := range t.Deps {
		if dep == id {
			return true
		}
	}
	return false
}

// Group is a flat, named display bucket. Groups are append-only and never
// own the tasks that reference them.
type Group struct {
	ID   string
	Name string
}
