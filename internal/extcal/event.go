// Package extcal bridges the scheduler and an external calendar. Events
// are the neutral exchange shape; FileProvider moves them through an ICS
// file on disk.
package extcal

import (
	"fmt"
	"strings"
	"time"

	"github.com/sequenceflow/seqflow/internal/model"
	"github.com/sequenceflow/seqflow/internal/timeutil"
)

// Event is one calendar entry. A DailyCount above zero marks a daily
// recurring event spanning that many days from Start's window.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	DailyCount  int
	Completed   bool
}

// FromTask converts a task into its calendar event. The bool is false for
// tasks without a schedule; those are skipped during export. A daily task
// becomes a recurring event over its first day's window.
func FromTask(t model.Task) (Event, bool) {
	ivs := t.Intervals()
	if len(ivs) == 0 {
		return Event{}, false
	}
	ev := Event{
		ID:        t.ExternalEventID,
		Summary:   t.Text,
		Start:     ivs[0].Start,
		End:       ivs[0].End,
		Completed: t.Completed,
	}
	if ev.ID == "" {
		ev.ID = fmt.Sprintf("%s@seqflow", t.ID)
	}
	if t.Mode == model.ModeDaily {
		ev.DailyCount = t.DaysCount
		ev.Description = fmt.Sprintf("Daily %s to %s for %d days", t.DailyStart, t.DailyEnd, t.DaysCount)
	}
	return ev, true
}

// ToTask converts an imported event into a continuous task. Recurring
// events are flattened to their first occurrence; the span is rounded to
// whole minutes with a one-minute floor. The event id is kept so a later
// sync can reconcile.
func ToTask(ev Event, id string, now time.Time) model.Task {
	minutes := int(ev.End.Sub(ev.Start).Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	text := strings.TrimSpace(ev.Summary)
	if text == "" {
		text = "Imported event"
	}
	return model.Task{
		ID:              id,
		Text:            text,
		Completed:       ev.Completed,
		CreatedAt:       now,
		Mode:            model.ModeContinuous,
		StartAt:         ev.Start,
		DurationMinutes: minutes,
		ExternalEventID: ev.ID,
	}
}

// Overlaps reports whether the event's full span touches [from, to). A
// recurring event spans through its final day's window end.
func (ev Event) Overlaps(from, to time.Time) bool {
	end := ev.End
	if ev.DailyCount > 1 {
		end = timeutil.AddDays(end, ev.DailyCount-1)
	}
	return ev.Start.Before(to) && end.After(from)
}
