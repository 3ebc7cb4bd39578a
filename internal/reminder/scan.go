// Package reminder decides which upcoming task starts deserve a desktop
// notification and fires them at the right instant. Scan is the pure
// planning half; Engine is the timer half that delivers due events on a
// channel.
package reminder

import (
	"sort"
	"time"

	"github.com/sequenceflow/seqflow/internal/model"
)

// Event is one planned notification for an upcoming task start.
type Event struct {
	TaskID       string
	Title        string
	StartAt      time.Time
	FireAt       time.Time
	NotifyBefore time.Duration
}

// Options bound a scan pass. LookAhead limits how far ahead starts are
// considered; NotifyBefore is how long before the start the event fires.
type Options struct {
	LookAhead    time.Duration
	NotifyBefore time.Duration
}

// DefaultOptions mirror the rescan loop defaults: watch the next hour,
// notify five minutes ahead.
func DefaultOptions() Options {
	return Options{
		LookAhead:    60 * time.Minute,
		NotifyBefore: 5 * time.Minute,
	}
}

// Scan returns the notification events for every incomplete task whose
// start instant falls inside (now, now+LookAhead]. The start instant is
// the continuous start or a daily task's first window start; a daily task
// already past its first day gets no reminder. Fire instants already in
// the past are skipped rather than fired late. Results are ordered by
// fire time.
func Scan(tasks []model.Task, now time.Time, opts Options) []Event {
	horizon := now.Add(opts.LookAhead)
	var out []Event
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		start, ok := t.FirstStart()
		if !ok {
			continue
		}
		if !start.After(now) || start.After(horizon) {
			continue
		}
		fireAt := start.Add(-opts.NotifyBefore)
		if !fireAt.After(now) {
			continue
		}
		out = append(out, Event{
			TaskID:       t.ID,
			Title:        t.Text,
			StartAt:      start,
			FireAt:       fireAt,
			NotifyBefore: opts.NotifyBefore,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}
