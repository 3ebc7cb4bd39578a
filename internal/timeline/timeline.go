// Package timeline computes the Gantt chart geometry for scheduled tasks.
// The layout is pure: given tasks, groups, and a pixel scale it produces
// lane/bar/segment coordinates; rendering is left to the views layer.
package timeline

import (
	"time"

	"github.com/sequenceflow/seqflow/internal/model"
	"github.com/sequenceflow/seqflow/internal/timeutil"
)

// DefaultUnitHour is the horizontal scale in pixels per hour.
const DefaultUnitHour = 6

// Chart is a fully laid out timeline. AxisStart is the midnight floor of
// the earliest interval; AxisEnd the midnight ceiling past the latest.
type Chart struct {
	AxisStart time.Time
	AxisEnd   time.Time
	Days      int
	UnitHour  int
	DayWidth  int
	Width     int
	Lanes     []GroupLane
}

// GroupLane is one horizontal band of bars. The ungrouped lane carries an
// empty GroupID and is always last.
type GroupLane struct {
	GroupID string
	Name    string
	Bars    []Bar
}

// Bar is one task's row inside a lane. Daily tasks produce one segment per
// day; continuous tasks exactly one.
type Bar struct {
	TaskID    string
	Label     string
	Completed bool
	Blocked   bool
	Segments  []Segment
}

// Segment is a single drawable span with horizontal pixel coordinates
// relative to the chart's axis start.
type Segment struct {
	Start time.Time
	End   time.Time
	Left  int
	Width int
}

// Layout builds the chart for the given tasks. Tasks without a schedule
// are skipped; the result is nil when nothing is dateable. A unitHour at
// or below zero falls back to DefaultUnitHour.
func Layout(tasks []model.Task, groups []model.Group, unitHour int) *Chart {
	if unitHour <= 0 {
		unitHour = DefaultUnitHour
	}

	var axisStart, axisEnd time.Time
	dateable := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		ivs := t.Intervals()
		if len(ivs) == 0 {
			continue
		}
		dateable = append(dateable, t)
		first, last := ivs[0].Start, ivs[len(ivs)-1].End
		if axisStart.IsZero() || first.Before(axisStart) {
			axisStart = first
		}
		if axisEnd.IsZero() || last.After(axisEnd) {
			axisEnd = last
		}
	}
	if len(dateable) == 0 {
		return nil
	}

	axisStart = timeutil.FloorToMidnight(axisStart)
	days := timeutil.DayDiff(axisEnd, axisStart) + 1
	if days < 1 {
		days = 1
	}
	axisEnd = timeutil.AddDays(axisStart, days)

	chart := &Chart{
		AxisStart: axisStart,
		AxisEnd:   axisEnd,
		Days:      days,
		UnitHour:  unitHour,
		DayWidth:  24 * unitHour,
		Width:     days * 24 * unitHour,
	}

	byGroup := make(map[string][]Bar)
	order := make([]string, 0, len(groups)+1)
	for _, t := range dateable {
		bar := Bar{
			TaskID:    t.ID,
			Label:     t.Text,
			Completed: t.Completed,
			Blocked:   !t.Completed && !depsSatisfied(t, tasks),
		}
		for _, iv := range t.Intervals() {
			bar.Segments = append(bar.Segments, segmentFor(iv, axisStart, unitHour))
		}
		if _, seen := byGroup[t.GroupID]; !seen {
			order = append(order, t.GroupID)
		}
		byGroup[t.GroupID] = append(byGroup[t.GroupID], bar)
	}

	// Declared group order first, then any groups only discovered through
	// task references, with the ungrouped lane always last.
	emitted := make(map[string]bool)
	emit := func(id, name string) {
		if emitted[id] {
			return
		}
		emitted[id] = true
		if bars, ok := byGroup[id]; ok {
			chart.Lanes = append(chart.Lanes, GroupLane{GroupID: id, Name: name, Bars: bars})
		}
	}
	for _, g := range groups {
		emit(g.ID, g.Name)
	}
	for _, id := range order {
		if id != "" {
			emit(id, id)
		}
	}
	if _, ok := byGroup[""]; ok {
		emit("", "Ungrouped")
	}
	return chart
}

func segmentFor(iv model.Interval, axisStart time.Time, unitHour int) Segment {
	left := int(timeutil.HoursBetween(iv.Start, axisStart) * float64(unitHour))
	if left < 0 {
		left = 0
	}
	width := int(timeutil.HoursBetween(iv.End, iv.Start) * float64(unitHour))
	if width < unitHour {
		width = unitHour
	}
	return Segment{Start: iv.Start, End: iv.End, Left: left, Width: width}
}

func depsSatisfied(t model.Task, tasks []model.Task) bool {
	for _, depID := range t.Deps {
		for _, other := range tasks {
			if other.ID == depID && !other.Completed {
				return false
			}
		}
	}
	return true
}
