package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sequenceflow/seqflow/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickClockCmd(),
		func() tea.Msg { return RescanTickMsg{Time: m.now()} },
	}
	if m.Engine != nil {
		cmds = append(cmds, waitForReminderCmd(m.Engine.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)

	case spinner.TickMsg:
		if m.spinnerActive {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}

	case ClockTickMsg:
		m.Clock = typed.Time
		return m, tickClockCmd()

	case RescanTickMsg:
		m.rescan(typed.Time)
		return m, m.rescanTickCmd()

	case ReminderDueMsg:
		m.onReminderDue(typed.Event)
		if m.Engine != nil {
			return m, waitForReminderCmd(m.Engine.C())
		}
		return m, nil

	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil

	case ExportDoneMsg:
		return m.onExportDone(typed), nil

	case ImportCalendarDoneMsg:
		return m.onCalendarImportDone(typed), nil

	case YankDoneMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: "clipboard: " + typed.Err.Error(), IsError: true}
		} else {
			m.Status = StatusBar{Text: "task copied to clipboard"}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Palette.Active {
		if msg.String() == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg)
	}

	// The entry form captures everything except an emergency exit, so
	// dates and times can contain the view-switch digits.
	if m.CurrentView == ViewTasks && m.Form.Active && msg.String() != "ctrl+c" {
		return m.handleTasksKey(msg)
	}

	switch msg.String() {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Clock:
		m.CurrentView = ViewClock
		return m, nil
	case m.Keys.Tasks:
		m.CurrentView = ViewTasks
		return m, nil
	case m.Keys.Timeline:
		m.CurrentView = ViewTimeline
		return m, nil
	case m.Keys.Calendar:
		m.CurrentView = ViewCalendar
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewTasks:
		return m.handleTasksKey(msg)
	case ViewCalendar:
		return m.handleCalendarKey(msg)
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	body := ""
	if m.HelpVisible {
		body = m.renderHelpView()
	} else {
		switch m.CurrentView {
		case ViewClock:
			body = m.renderClockView()
		case ViewTasks:
			body = m.renderTasksView()
		case ViewTimeline:
			body = m.renderTimelineView()
		case ViewCalendar:
			body = m.renderCalendarView()
		}
	}

	notification := ""
	if len(m.Notifications) > 0 {
		last := m.Notifications[len(m.Notifications)-1]
		notification = views.RenderNotification("info", fmt.Sprintf("%s: %s", last.Title, last.Body))
	}
	if m.spinnerActive {
		notification = fmt.Sprintf("%s\nsync: %s running", notification, m.syncSpinner.View())
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("seqflow | view: %s | %s", m.CurrentView, m.Clock.Format("15:04:05")),
		Body:         body,
		Palette:      views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		StatusLine:   status,
		StatusIsErr:  m.Status.IsError,
		Notification: notification,
		Footer: fmt.Sprintf("keys: %s clock | %s tasks | %s timeline | %s calendar | / cmd | %s help | %s quit",
			m.Keys.Clock, m.Keys.Tasks, m.Keys.Timeline, m.Keys.Calendar, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewClock, ViewTasks, ViewTimeline, ViewCalendar:
		return true
	default:
		return false
	}
}
