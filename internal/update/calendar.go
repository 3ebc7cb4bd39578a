package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sequenceflow/seqflow/internal/extcal"
	"github.com/sequenceflow/seqflow/internal/model"
	"github.com/sequenceflow/seqflow/internal/timeutil"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.CalendarAnchor = m.CalendarAnchor.AddDate(0, -1, 0)
		m.SelectedDayKey = ""
	case "right", "l":
		m.CalendarAnchor = m.CalendarAnchor.AddDate(0, 1, 0)
		m.SelectedDayKey = ""
	case "t":
		m.CalendarAnchor = m.now()
		m.SelectedDayKey = timeutil.DateKey(m.now())
	case "up", "k":
		m.moveSelectedDay(-1)
	case "down", "j":
		m.moveSelectedDay(1)
	case "E":
		return m.startCalendarExport()
	case "I":
		return m.startCalendarImport()
	}
	return m, nil
}

// moveSelectedDay walks the selection through the anchored month.
func (m *Model) moveSelectedDay(dir int) {
	day, ok := timeutil.ParseDate(m.SelectedDayKey)
	if !ok {
		m.SelectedDayKey = timeutil.DateKey(timeutil.FloorToMidnight(m.CalendarAnchor))
		return
	}
	next := timeutil.AddDays(day, dir)
	if next.Month() != m.CalendarAnchor.Month() {
		return
	}
	m.SelectedDayKey = timeutil.DateKey(next)
}

func (m Model) startCalendarExport() (Model, tea.Cmd) {
	if m.provider == nil {
		m.Status = StatusBar{Text: "no calendar configured (set calendar_path)", IsError: true}
		return m, nil
	}
	events := make([]extcal.Event, 0, len(m.Plan.Tasks))
	for _, t := range m.Plan.Tasks {
		if ev, ok := extcal.FromTask(t); ok {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		m.Status = StatusBar{Text: "nothing to export: no scheduled tasks"}
		return m, nil
	}
	m.spinnerActive = true
	m.Status = StatusBar{Text: fmt.Sprintf("exporting %d event(s)", len(events))}
	return m, tea.Batch(m.syncSpinner.Tick, exportCalendarCmd(m.provider, events))
}

func (m Model) startCalendarImport() (Model, tea.Cmd) {
	if m.provider == nil {
		m.Status = StatusBar{Text: "no calendar configured (set calendar_path)", IsError: true}
		return m, nil
	}
	m.spinnerActive = true
	m.Status = StatusBar{Text: "importing calendar events"}
	return m, tea.Batch(m.syncSpinner.Tick, importCalendarCmd(m.provider, m.now(), m.now().AddDate(0, 1, 0)))
}

func (m Model) onExportDone(msg ExportDoneMsg) Model {
	m.spinnerActive = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: msg.Err.Error(), IsError: true}
		m.notify("Export failed", msg.Err.Error(), "export")
		return m
	}
	text := fmt.Sprintf("export complete: %d ok, %d failed", msg.Result.Success, msg.Result.Failed)
	m.Status = StatusBar{Text: text, IsError: msg.Result.Failed > 0}
	m.notify("Export", text, "export")
	return m
}

// onCalendarImportDone merges imported events, skipping ones a previous
// import already materialized.
func (m Model) onCalendarImportDone(msg ImportCalendarDoneMsg) Model {
	m.spinnerActive = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: msg.Err.Error(), IsError: true}
		return m
	}

	known := make(map[string]bool)
	for _, t := range m.Plan.Tasks {
		if t.ExternalEventID != "" {
			known[t.ExternalEventID] = true
		}
	}
	var added []model.Task
	for _, ev := range msg.Events {
		if ev.ID != "" && known[ev.ID] {
			continue
		}
		task := extcal.ToTask(ev, m.Plan.ClaimTaskID(), m.now())
		// Decoded feeds can carry malformed entries, e.g. without a start.
		if err := task.Validate(); err != nil {
			continue
		}
		added = append(added, task)
	}
	m.Plan = m.Plan.PrependTasks(added)
	m.rescan(m.now())
	m.Status = StatusBar{Text: fmt.Sprintf("imported %d event(s)", len(added))}
	m.notify("Import", m.Status.Text, "import")
	return m
}
