package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sequenceflow/seqflow/internal/calendar"
	"github.com/sequenceflow/seqflow/internal/timeline"
)

type ClockPanelData struct {
	TimeText string
	DateText string
	UpNext   string
	Stats    string
}

type TaskItemData struct {
	Index     int
	ID        string
	Title     string
	Schedule  string
	GroupName string
	DepText   string
	Completed bool
	Blocked   bool
}

type TasksPanelData struct {
	FormView   string
	Items      []TaskItemData
	SelectedID string
	Stats      string
}

type CalendarPanelData struct {
	Month       calendar.Month
	MonthLabel  string
	SelectedKey string
	SyncView    string
}

func RenderClockPanel(data ClockPanelData) string {
	var b strings.Builder
	b.WriteString("clock:\n")
	b.WriteString(todayStyle.Render(data.TimeText) + "\n")
	b.WriteString(data.DateText + "\n")
	if data.UpNext != "" {
		b.WriteString("up next: " + data.UpNext + "\n")
	}
	if data.Stats != "" {
		b.WriteString(data.Stats + "\n")
	}
	b.WriteString("actions: [1]clock [2]tasks [3]timeline [4]calendar [?]help [q]quit")
	return strings.TrimSpace(b.String())
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	b.WriteString(data.FormView + "\n")
	b.WriteString("actions: [tab]field [enter]add [j/k]move [space]done [d]delete [g]group [y]yank\n")
	if data.Stats != "" {
		b.WriteString(data.Stats + "\n")
	}
	if len(data.Items) == 0 {
		b.WriteString("(no tasks yet)")
		return strings.TrimSpace(b.String())
	}
	for _, item := range data.Items {
		cursor := " "
		if item.ID == data.SelectedID {
			cursor = ">"
		}
		title := item.Title
		switch {
		case item.Completed:
			title = doneStyle.Render(title)
		case item.Blocked:
			title = blockStyle.Render(title + " [blocked]")
		}
		b.WriteString(fmt.Sprintf("%s #%d %s %s", cursor, item.Index, checkbox(item.Completed), title))
		if item.Schedule != "" {
			b.WriteString(" @" + item.Schedule)
		}
		if item.GroupName != "" {
			b.WriteString(" (" + item.GroupName + ")")
		}
		if item.DepText != "" {
			b.WriteString(" after:" + item.DepText)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// RenderTimelinePanel draws the chart as one text row per task, one
// column per hour.
func RenderTimelinePanel(chart *timeline.Chart) string {
	var b strings.Builder
	b.WriteString("timeline:\n")
	if chart == nil {
		b.WriteString("(no scheduled tasks)")
		return b.String()
	}

	cols := chart.Days * 24
	b.WriteString(fmt.Sprintf("axis: %s, %d day(s)\n", chart.AxisStart.Format("2006-01-02"), chart.Days))
	b.WriteString(renderAxisRow(chart.Days) + "\n")

	labelWidth := 0
	for _, lane := range chart.Lanes {
		for _, bar := range lane.Bars {
			if len(bar.Label) > labelWidth {
				labelWidth = len(bar.Label)
			}
		}
	}
	if labelWidth > 24 {
		labelWidth = 24
	}

	for _, lane := range chart.Lanes {
		b.WriteString(lane.Name + ":\n")
		for _, bar := range lane.Bars {
			row := make([]rune, cols)
			for i := range row {
				row[i] = '·'
			}
			fill := '█'
			if bar.Completed {
				fill = '░'
			} else if bar.Blocked {
				fill = '▒'
			}
			for _, seg := range bar.Segments {
				start := seg.Left * cols / chart.Width
				width := seg.Width * cols / chart.Width
				if width < 1 {
					width = 1
				}
				for i := start; i < start+width && i < cols; i++ {
					row[i] = fill
				}
			}
			label := bar.Label
			if len(label) > labelWidth {
				label = label[:labelWidth]
			}
			b.WriteString(fmt.Sprintf("  %-*s %s\n", labelWidth, label, barStyle.Render(string(row))))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderAxisRow(days int) string {
	var b strings.Builder
	for d := 0; d < days; d++ {
		b.WriteString(fmt.Sprintf("%-24s", fmt.Sprintf("|d+%d", d)))
	}
	return b.String()
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString("calendar:\n")
	b.WriteString(data.MonthLabel + "\n")
	b.WriteString("actions: [h/l]month [t]today [E]export [I]import\n")
	if data.SyncView != "" {
		b.WriteString(data.SyncView + "\n")
	}
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")
	for _, week := range data.Month.Weeks() {
		for _, day := range week {
			if day.Blank {
				b.WriteString("  . ")
				continue
			}
			cell := fmt.Sprintf("%3d", day.Number)
			if day.Today {
				cell = todayStyle.Render(cell)
			}
			marker := " "
			if n := len(day.Entries); n > 0 {
				if n > 9 {
					n = 9
				}
				marker = fmt.Sprintf("%d", n)
			}
			b.WriteString(cell + marker)
		}
		b.WriteString("\n")
	}
	b.WriteString(renderDayDetail(data.Month, data.SelectedKey))
	return strings.TrimSpace(b.String())
}

func renderDayDetail(month calendar.Month, key string) string {
	if key == "" {
		return ""
	}
	for _, cell := range month.Cells {
		if cell.Key != key {
			continue
		}
		if len(cell.Entries) == 0 {
			return fmt.Sprintf("\n%s: (free)", key)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "\n%s:\n", key)
		entries := append([]calendar.Entry(nil), cell.Entries...)
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Text < entries[j].Text })
		for _, e := range entries {
			kind := "once"
			if e.Daily {
				kind = "daily"
			}
			b.WriteString(fmt.Sprintf("%s [%s] %s\n", checkbox(e.Completed), kind, e.Text))
		}
		return strings.TrimSuffix(b.String(), "\n")
	}
	return ""
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
