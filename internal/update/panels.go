package update

import (
	"fmt"
	"strings"

	"github.com/sequenceflow/seqflow/internal/calendar"
	"github.com/sequenceflow/seqflow/internal/model"
	"github.com/sequenceflow/seqflow/internal/timeline"
	"github.com/sequenceflow/seqflow/internal/views"
)

func (m Model) renderClockView() string {
	return views.RenderClockPanel(views.ClockPanelData{
		TimeText: fmt.Sprintf("%s  %s", m.Clock.Format("15:04:05"), m.Clock.Format("3:04 PM")),
		DateText: m.Clock.Format("Monday, January 2, 2006 (MST)"),
		UpNext:   m.upNextLine(),
		Stats:    m.statsLine(),
	})
}

// upNextLine names the incomplete task with the nearest future start.
func (m Model) upNextLine() string {
	var best model.Task
	found := false
	for _, t := range m.Plan.Tasks {
		if t.Completed {
			continue
		}
		start, ok := t.FirstStart()
		if !ok || !start.After(m.Clock) {
			continue
		}
		if !found {
			best = t
			found = true
			continue
		}
		bestStart, _ := best.FirstStart()
		if start.Before(bestStart) {
			best = t
		}
	}
	if !found {
		return ""
	}
	start, _ := best.FirstStart()
	return fmt.Sprintf("%s at %s", best.Text, start.Format("Mon 15:04"))
}

func (m Model) renderTasksView() string {
	selected, _ := m.selectedTask()
	items := make([]views.TaskItemData, 0, len(m.Plan.Tasks))
	for i, t := range m.Plan.Tasks {
		items = append(items, views.TaskItemData{
			Index:     i + 1,
			ID:        t.ID,
			Title:     t.Text,
			Schedule:  scheduleText(t),
			GroupName: m.groupName(t.GroupID),
			DepText:   strings.Join(t.Deps, ","),
			Completed: t.Completed,
			Blocked:   !t.Completed && !m.Plan.DepsSatisfied(t),
		})
	}
	return views.RenderTasksPanel(views.TasksPanelData{
		FormView:   m.renderTaskForm(),
		Items:      items,
		SelectedID: selected,
		Stats:      m.statsLine(),
	})
}

func scheduleText(t model.Task) string {
	if t.Mode == model.ModeDaily {
		return fmt.Sprintf("daily %s-%s x%d from %s",
			t.DailyStart, t.DailyEnd, t.DaysCount, t.FirstDay.Format("2006-01-02"))
	}
	if t.StartAt.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s +%dm", t.StartAt.Format("2006-01-02 15:04"), t.DurationMinutes)
}

func (m Model) renderTaskForm() string {
	if !m.Form.Active {
		return "press i to add a task"
	}
	var b strings.Builder
	b.WriteString("new task:\n")
	fmt.Fprintf(&b, "  title: %s\n", m.titleInput.View())
	fmt.Fprintf(&b, "  start: %s\n", m.startInput.View())
	if m.Form.Daily {
		fmt.Fprintf(&b, "  days: %s\n", m.daysInput.View())
		fmt.Fprintf(&b, "  window: %s to %s\n", m.dailyStartInput.View(), m.dailyEndInput.View())
	} else {
		fmt.Fprintf(&b, "  duration: %s [ctrl+u] %s\n", m.durationInput.View(), m.Form.Unit)
	}
	mode := "once"
	if m.Form.Daily {
		mode = "daily"
	}
	fmt.Fprintf(&b, "  mode [ctrl+d]: %s\n", mode)
	dep := m.Form.DepID
	if dep == "" {
		dep = "(none)"
	}
	fmt.Fprintf(&b, "  after [ctrl+p]: %s\n", dep)
	group := m.groupName(m.Form.GroupID)
	if group == "" {
		group = "(none)"
	}
	fmt.Fprintf(&b, "  group [ctrl+g]: %s", group)
	return b.String()
}

func (m Model) renderTimelineView() string {
	chart := timeline.Layout(m.Plan.Tasks, m.Plan.Groups, m.Cfg.UnitHourPx)
	return views.RenderTimelinePanel(chart)
}

func (m Model) renderCalendarView() string {
	buckets := calendar.BucketByDate(m.Plan.Tasks)
	month := calendar.MonthGrid(m.CalendarAnchor, buckets, m.now())
	sync := ""
	if m.spinnerActive {
		sync = "sync: " + m.syncSpinner.View() + " running"
	}
	return views.RenderCalendarPanel(views.CalendarPanelData{
		Month:       month,
		MonthLabel:  m.CalendarAnchor.Format("January 2006"),
		SelectedKey: m.SelectedDayKey,
		SyncView:    sync,
	})
}

const helpMarkdown = "# seqflow\n\n" +
	"Plan sequential work: tasks chain after their dependency and daily\n" +
	"windows shift past it automatically.\n\n" +
	"## Views\n\n" +
	"- `1` clock, `2` tasks, `3` timeline, `4` calendar\n" +
	"- `?` toggles this help, `q` quits\n\n" +
	"## Tasks\n\n" +
	"- `i` opens the entry form, `tab` cycles fields, `enter` adds\n" +
	"- `ctrl+d` daily mode, `ctrl+u` unit, `ctrl+p` dependency, `ctrl+g` group\n" +
	"- `space` complete, `d` delete, `g` cycle group, `G` new group, `y` yank\n\n" +
	"## Calendar\n\n" +
	"- `h`/`l` month, `t` today, `j`/`k` day, `E` export, `I` import\n\n" +
	"## Commands\n\n" +
	"`/` opens the palette: `add`, `done`, `rm`, `group`, `assign`,\n" +
	"`export`, `import`.\n"

func (m Model) renderHelpView() string {
	return views.RenderMarkdown(helpMarkdown)
}
