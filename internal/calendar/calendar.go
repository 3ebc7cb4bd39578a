// Package calendar buckets scheduled tasks by local calendar day and lays
// out the month grid shown in the calendar view.
package calendar

import (
	"time"

	"github.com/sequenceflow/seqflow/internal/model"
	"github.com/sequenceflow/seqflow/internal/timeutil"
)

// Entry is one task's presence on one calendar day.
type Entry struct {
	TaskID    string
	Text      string
	Completed bool
	Daily     bool
}

// BucketByDate maps local YYYY-MM-DD keys to the tasks touching that day.
// A continuous task occupies every day from its start's day through its
// end's day inclusive; a daily task occupies each of its window days.
// Unscheduled tasks are absent.
func BucketByDate(tasks []model.Task) map[string][]Entry {
	buckets := make(map[string][]Entry)
	for _, t := range tasks {
		entry := Entry{
			TaskID:    t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			Daily:     t.Mode == model.ModeDaily,
		}
		seen := make(map[string]bool)
		for _, iv := range t.Intervals() {
			day := timeutil.FloorToMidnight(iv.Start)
			last := timeutil.FloorToMidnight(iv.End)
			for !day.After(last) {
				key := timeutil.DateKey(day)
				if !seen[key] {
					seen[key] = true
					buckets[key] = append(buckets[key], entry)
				}
				day = timeutil.AddDays(day, 1)
			}
		}
	}
	return buckets
}

// Day is one cell of the month grid. Blank cells pad the first week so
// weekdays line up Sunday-first.
type Day struct {
	Date    time.Time
	Key     string
	Number  int
	Blank   bool
	Today   bool
	Entries []Entry
}

// Month is a laid out month: leading blanks plus one cell per day.
type Month struct {
	Year  int
	Month time.Month
	Cells []Day
}

// MonthGrid lays out the month containing anchor. Task entries come from
// buckets keyed by local date; today is marked relative to now.
func MonthGrid(anchor time.Time, buckets map[string][]Entry, now time.Time) Month {
	year, month, _ := anchor.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, anchor.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()
	todayKey := timeutil.DateKey(now)

	grid := Month{Year: year, Month: month}
	for i := 0; i < int(first.Weekday()); i++ {
		grid.Cells = append(grid.Cells, Day{Blank: true})
	}
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, anchor.Location())
		key := timeutil.DateKey(date)
		grid.Cells = append(grid.Cells, Day{
			Date:    date,
			Key:     key,
			Number:  d,
			Today:   key == todayKey,
			Entries: buckets[key],
		})
	}
	return grid
}

// Weeks chunks the cells into rows of seven, padding the final row with
// blanks.
func (m Month) Weeks() [][]Day {
	var weeks [][]Day
	for i := 0; i < len(m.Cells); i += 7 {
		end := i + 7
		if end > len(m.Cells) {
			end = len(m.Cells)
		}
		week := make([]Day, 7)
		copy(week, m.Cells[i:end])
		for j := end - i; j < 7; j++ {
			week[j] = Day{Blank: true}
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// Summary counts the scheduled tasks visible in a month.
type Summary struct {
	DaysWithTasks int
	TaskDays      int
}

func (m Month) Summary() Summary {
	var s Summary
	for _, c := range m.Cells {
		if len(c.Entries) > 0 {
			s.DaysWithTasks++
			s.TaskDays += len(c.Entries)
		}
	}
	return s
}
