// Package plan owns the in-memory scheduler state and the pure operations
// over it: task creation with dependency-adjusted starts, completion
// toggling gated on dependencies, deletion, and group management. Every
// operation returns a new State; callers replace their copy wholesale.
package plan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sequenceflow/seqflow/internal/model"
	"github.com/sequenceflow/seqflow/internal/timeutil"
)

// State is the owned task/group collection. Tasks are ordered most recently
// created first. The zero value is a valid empty state.
type State struct {
	Tasks  []model.Task
	Groups []model.Group

	nextTaskID  int
	nextGroupID int
}

// DurationUnit is the unit attached to a continuous task's duration input.
type DurationUnit string

const (
	UnitMinutes DurationUnit = "minutes"
	UnitHours   DurationUnit = "hours"
	UnitDays    DurationUnit = "days"
)

// Minutes converts a duration value in this unit to whole minutes. Values
// at or below zero are floored to 1 before conversion; an unknown unit is
// treated as days, matching the widest entry-form default.
func (u DurationUnit) Minutes(value int) int {
	if value <= 0 {
		value = 1
	}
	switch u {
	case UnitMinutes:
		return value
	case UnitHours:
		return value * 60
	default:
		return value * timeutil.MinutesPerDay
	}
}

// TaskInput is the raw entry-form payload consumed by CreateTask.
type TaskInput struct {
	Text          string
	StartAt       time.Time
	DurationValue int
	DurationUnit  DurationUnit

	Daily      bool
	DaysCount  int
	DailyStart string
	DailyEnd   string

	DependsOn string
	GroupID   string
}

// minDailyWindowMinutes is the shortest daily window the factory accepts;
// supplied ends closer to the start than this are pushed out.
const minDailyWindowMinutes = 30

// CreateTask builds a task from in and prepends it to the state. The bool
// is false (and the state unchanged) when the trimmed label is empty. A
// resolvable dependency pushes the start past the dependency's final end;
// an unresolvable one is recorded but exerts no clamp.
func (s State) CreateTask(in TaskInput, now time.Time) (State, model.Task, bool) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return s, model.Task{}, false
	}

	var deps []string
	groupID := in.GroupID
	var depEnd time.Time
	depHasEnd := false
	if in.DependsOn != "" {
		deps = []string{in.DependsOn}
		if dep, ok := s.FindTask(in.DependsOn); ok {
			if end, scheduled := dep.LastEnd(); scheduled {
				depEnd = end
				depHasEnd = true
			}
			if groupID == "" && dep.GroupID != "" {
				groupID = dep.GroupID
			}
		}
	}

	next := s
	task := model.Task{
		ID:        next.claimTaskID(),
		Text:      text,
		CreatedAt: now,
		Deps:      deps,
		GroupID:   groupID,
	}

	if in.Daily {
		firstDay := timeutil.FloorToMidnight(in.StartAt)
		startMin := timeutil.ParseHHMM(in.DailyStart)
		endMin := timeutil.ParseHHMM(in.DailyEnd)
		if endMin < startMin+minDailyWindowMinutes {
			endMin = startMin + minDailyWindowMinutes
		}
		dailyStart := timeutil.FormatHHMM(startMin)
		if depHasEnd {
			for !timeutil.Combine(firstDay, dailyStart).After(depEnd) {
				firstDay = timeutil.AddDays(firstDay, 1)
			}
		}
		daysCount := in.DaysCount
		if daysCount < 1 {
			daysCount = 1
		}
		task.Mode = model.ModeDaily
		task.FirstDay = firstDay
		task.DaysCount = daysCount
		task.DailyStart = dailyStart
		task.DailyEnd = timeutil.FormatHHMM(endMin)
		// Representative start/duration, used for sorting and comparison.
		task.StartAt = timeutil.Combine(firstDay, dailyStart)
		task.DurationMinutes = endMin - startMin
	} else {
		startAt := in.StartAt
		if depHasEnd {
			minStart := timeutil.AddMinutes(depEnd, 1)
			if startAt.Before(minStart) {
				startAt = minStart
			}
		}
		task.Mode = model.ModeContinuous
		task.StartAt = startAt
		task.DurationMinutes = in.DurationUnit.Minutes(in.DurationValue)
	}

	tasks := make([]model.Task, 0, len(next.Tasks)+1)
	tasks = append(tasks, task)
	tasks = append(tasks, next.Tasks...)
	next.Tasks = tasks
	return next, task, true
}

// ToggleOutcome reports what a completion toggle did.
type ToggleOutcome string

const (
	ToggleCompleted ToggleOutcome = "completed"
	ToggleReopened  ToggleOutcome = "reopened"
	ToggleBlocked   ToggleOutcome = "blocked"
	ToggleNotFound  ToggleOutcome = "not_found"
)

// ToggleCompletion flips a task's completed flag. A transition to
// completed is rejected while any still-existing dependency is incomplete;
// deleted dependencies count as satisfied. Reopening is always allowed.
func (s State) ToggleCompletion(id string) (State, ToggleOutcome) {
	idx := s.indexOf(id)
	if idx < 0 {
		return s, ToggleNotFound
	}
	target := s.Tasks[idx]
	if !target.Completed && !s.DepsSatisfied(target) {
		return s, ToggleBlocked
	}

	next := s
	next.Tasks = make([]model.Task, len(s.Tasks))
	copy(next.Tasks, s.Tasks)
	next.Tasks[idx].Completed = !target.Completed
	if next.Tasks[idx].Completed {
		return next, ToggleCompleted
	}
	return next, ToggleReopened
}

// DepsSatisfied reports whether every dependency of t is completed or no
// longer exists.
func (s State) DepsSatisfied(t model.Task) bool {
	for _, depID := range t.Deps {
		if dep, ok := s.FindTask(depID); ok && !dep.Completed {
			return false
		}
	}
	return true
}

// DeleteTask removes a task. Dependents keep the dangling id; their
// dependency resolves as satisfied from then on.
func (s State) DeleteTask(id string) (State, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return s, false
	}
	next := s
	next.Tasks = make([]model.Task, 0, len(s.Tasks)-1)
	next.Tasks = append(next.Tasks, s.Tasks[:idx]...)
	next.Tasks = append(next.Tasks, s.Tasks[idx+1:]...)
	return next, true
}

// SetTaskGroup reassigns a task to a group; an empty groupID means
// ungrouped.
func (s State) SetTaskGroup(taskID, groupID string) (State, bool) {
	idx := s.indexOf(taskID)
	if idx < 0 {
		return s, false
	}
	next := s
	next.Tasks = make([]model.Task, len(s.Tasks))
	copy(next.Tasks, s.Tasks)
	next.Tasks[idx].GroupID = groupID
	return next, true
}

// AddGroup appends a new group. A blank name defaults to "Group {n}".
func (s State) AddGroup(name string) (State, model.Group) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = fmt.Sprintf("Group %d", len(s.Groups)+1)
	}
	next := s
	group := model.Group{ID: next.claimGroupID(), Name: trimmed}
	groups := make([]model.Group, 0, len(next.Groups)+1)
	groups = append(groups, next.Groups...)
	groups = append(groups, group)
	next.Groups = groups
	return next, group
}

// PrependTasks places imported tasks ahead of the existing collection
// without touching them.
func (s State) PrependTasks(tasks []model.Task) State {
	if len(tasks) == 0 {
		return s
	}
	next := s
	merged := make([]model.Task, 0, len(tasks)+len(s.Tasks))
	merged = append(merged, tasks...)
	merged = append(merged, s.Tasks...)
	next.Tasks = merged
	return next
}

// ClaimTaskID hands out a fresh task id for tasks built outside
// CreateTask, such as external-calendar imports.
func (s *State) ClaimTaskID() string {
	return s.claimTaskID()
}

func (s State) FindTask(id string) (model.Task, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, false
	}
	return s.Tasks[idx], true
}

func (s State) FindGroup(id string) (model.Group, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return model.Group{}, false
}

// FindGroupByName matches a group by case-insensitive name.
func (s State) FindGroupByName(name string) (model.Group, bool) {
	for _, g := range s.Groups {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return model.Group{}, false
}

// ResolveTaskRef accepts either a task id or a "#n" 1-based position in
// the current ordering, as typed in the command palette.
func (s State) ResolveTaskRef(ref string) (model.Task, bool) {
	trimmed := strings.TrimSpace(ref)
	if strings.HasPrefix(trimmed, "#") {
		n, err := strconv.Atoi(strings.TrimPrefix(trimmed, "#"))
		if err != nil || n < 1 || n > len(s.Tasks) {
			return model.Task{}, false
		}
		return s.Tasks[n-1], true
	}
	return s.FindTask(trimmed)
}

// Stats summarizes completion counts for the header panels.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

func (s State) Stats() Stats {
	st := Stats{Total: len(s.Tasks)}
	for _, t := range s.Tasks {
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

func (s State) indexOf(id string) int {
	for i, t := range s.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) claimTaskID() string {
	s.nextTaskID++
	return fmt.Sprintf("task-%d", s.nextTaskID)
}

func (s *State) claimGroupID() string {
	s.nextGroupID++
	return fmt.Sprintf("g-%d", s.nextGroupID)
}
