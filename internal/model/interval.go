package model

import (
	"time"

	"github.com/sequenceflow/seqflow/internal/timeutil"
)

// Interval is a half-open [Start, End) slice of time occupied by a task.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Minutes() int {
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// HasSchedule reports whether the task carries enough date information to
// derive intervals. Tasks without a schedule are excluded from timeline and
// calendar computations.
func (t Task) HasSchedule() bool {
	switch t.Mode {
	case ModeDaily:
		return !t.FirstDay.IsZero()
	case ModeContinuous:
		return !t.StartAt.IsZero() && t.DurationMinutes > 0
	default:
		return false
	}
}

// Intervals derives the task's occupied intervals in chronological order:
// a single interval for continuous tasks, one per day for daily tasks.
// Tasks without a schedule yield nil.
func (t Task) Intervals() []Interval {
	if !t.HasSchedule() {
		return nil
	}
	if t.Mode == ModeDaily {
		count := t.DaysCount
		if count < 1 {
			count = 1
		}
		out := make([]Interval, 0, count)
		for i := 0; i < count; i++ {
			day := timeutil.AddDays(t.FirstDay, i)
			out = append(out, Interval{
				Start: timeutil.Combine(day, t.DailyStart),
				End:   timeutil.Combine(day, t.DailyEnd),
			})
		}
		return out
	}
	return []Interval{{
		Start: t.StartAt,
		End:   timeutil.AddMinutes(t.StartAt, t.DurationMinutes),
	}}
}

// FirstStart returns the start of the task's first interval. The bool is
// false for tasks without a schedule.
func (t Task) FirstStart() (time.Time, bool) {
	ivs := t.Intervals()
	if len(ivs) == 0 {
		return time.Time{}, false
	}
	return ivs[0].Start, true
}

// LastEnd returns the end of the task's last interval; the dependency clamp
// in the task factory keys off this instant. The bool is false for tasks
// without a schedule.
func (t Task) LastEnd() (time.Time, bool) {
	ivs := t.Intervals()
	if len(ivs) == 0 {
		return time.Time{}, false
	}
	return ivs[len(ivs)-1].End, true
}
