package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sequenceflow/seqflow/internal/extcal"
	"github.com/sequenceflow/seqflow/internal/reminder"
)

type ClockTickMsg struct {
	Time time.Time
}

type RescanTickMsg struct {
	Time time.Time
}

type ReminderDueMsg struct {
	Event reminder.Event
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type SwitchViewMsg struct {
	View View
}

type ExportDoneMsg struct {
	Result extcal.ExportResult
	Err    error
}

type ImportCalendarDoneMsg struct {
	Events []extcal.Event
	Err    error
}

type YankDoneMsg struct {
	Err error
}

func tickClockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ClockTickMsg{Time: t}
	})
}

func (m Model) rescanTickCmd() tea.Cmd {
	interval := time.Duration(m.Cfg.RescanMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return RescanTickMsg{Time: t}
	})
}

func waitForReminderCmd(ch <-chan reminder.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

// rescan runs one reminder planning pass and records the handles of
// everything newly scheduled.
func (m *Model) rescan(now time.Time) {
	if m.Engine == nil {
		return
	}
	events := reminder.Scan(m.Plan.Tasks, now, m.scanOptions())
	for _, h := range m.Engine.ScanAndSchedule(events) {
		m.handles[h.TaskID()] = h
	}
}

func (m Model) scanOptions() reminder.Options {
	opts := reminder.DefaultOptions()
	if m.Cfg.LookAheadMinutes > 0 {
		opts.LookAhead = time.Duration(m.Cfg.LookAheadMinutes) * time.Minute
	}
	if m.Cfg.NotifyBeforeMinutes > 0 {
		opts.NotifyBefore = time.Duration(m.Cfg.NotifyBeforeMinutes) * time.Minute
	}
	return opts
}

func (m *Model) onReminderDue(ev reminder.Event) {
	delete(m.handles, ev.TaskID)
	body := fmt.Sprintf("%s starts at %s", ev.Title, ev.StartAt.Format("15:04"))
	m.Status = StatusBar{Text: "reminder: " + body}
	m.notify("Up next", body, ev.TaskID)
}

func exportCalendarCmd(provider extcal.Provider, events []extcal.Event) tea.Cmd {
	return func() tea.Msg {
		result, err := provider.Export(context.Background(), events)
		return ExportDoneMsg{Result: result, Err: err}
	}
}

func importCalendarCmd(provider extcal.Provider, from, to time.Time) tea.Cmd {
	return func() tea.Msg {
		events, err := provider.Import(context.Background(), from, to)
		return ImportCalendarDoneMsg{Events: events, Err: err}
	}
}
