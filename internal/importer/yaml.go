// Package importer loads tasks in bulk from a YAML document. Every task
// goes through the regular creation path so dependency clamps, group
// inheritance, and window rules apply exactly as if typed by hand.
package importer

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sequenceflow/seqflow/internal/plan"
	"github.com/sequenceflow/seqflow/internal/timeutil"
)

// YAMLTask represents a single task in the YAML input. Daily tasks set
// daily_start/daily_end/days; continuous tasks set duration and unit.
type YAMLTask struct {
	Title      string `yaml:"title"`
	Start      string `yaml:"start,omitempty"`
	Duration   int    `yaml:"duration,omitempty"`
	Unit       string `yaml:"unit,omitempty"`
	Daily      bool   `yaml:"daily,omitempty"`
	Days       int    `yaml:"days,omitempty"`
	DailyStart string `yaml:"daily_start,omitempty"`
	DailyEnd   string `yaml:"daily_end,omitempty"`
	DependsOn  string `yaml:"depends_on,omitempty"`
	Group      string `yaml:"group,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// Import parses a YAML string and creates its tasks in document order.
// depends_on refers to the title of an earlier task in the document or an
// existing task's id; groups are resolved by name and created on first
// reference. Returns the new state and the number of tasks created.
func Import(s plan.State, yamlStr string, now time.Time) (plan.State, int, error) {
	var input YAMLInput
	if err := yaml.Unmarshal([]byte(yamlStr), &input); err != nil {
		return s, 0, fmt.Errorf("importer: YAML parse error: %w", err)
	}
	if len(input.Tasks) == 0 {
		return s, 0, fmt.Errorf("importer: no tasks found in YAML")
	}

	// Titles created in this document, so later entries can depend on
	// earlier ones before any id exists on disk.
	byTitle := make(map[string]string)
	count := 0
	for _, yt := range input.Tasks {
		title := strings.TrimSpace(yt.Title)
		if title == "" {
			return s, count, fmt.Errorf("importer: task title is required")
		}

		in := plan.TaskInput{
			Text:          title,
			DurationValue: yt.Duration,
			DurationUnit:  parseUnit(yt.Unit),
			Daily:         yt.Daily,
			DaysCount:     yt.Days,
			DailyStart:    yt.DailyStart,
			DailyEnd:      yt.DailyEnd,
		}
		if yt.Start != "" {
			start, ok := timeutil.ParseDateTime(yt.Start)
			if !ok {
				return s, count, fmt.Errorf("importer: bad start for %q: %q", title, yt.Start)
			}
			in.StartAt = start
		} else {
			in.StartAt = now
		}

		if dep := strings.TrimSpace(yt.DependsOn); dep != "" {
			if id, ok := byTitle[dep]; ok {
				in.DependsOn = id
			} else if task, ok := s.FindTask(dep); ok {
				in.DependsOn = task.ID
			} else {
				return s, count, fmt.Errorf("importer: unknown dependency %q for %q", dep, title)
			}
		}

		if name := strings.TrimSpace(yt.Group); name != "" {
			group, ok := s.FindGroupByName(name)
			if !ok {
				s, group = s.AddGroup(name)
			}
			in.GroupID = group.ID
		}

		next, task, ok := s.CreateTask(in, now)
		if !ok {
			return s, count, fmt.Errorf("importer: could not create task %q", title)
		}
		s = next
		byTitle[title] = task.ID
		count++
	}
	return s, count, nil
}

func parseUnit(raw string) plan.DurationUnit {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "minutes", "minute", "min", "m":
		return plan.UnitMinutes
	case "hours", "hour", "h":
		return plan.UnitHours
	default:
		return plan.UnitDays
	}
}
