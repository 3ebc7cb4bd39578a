// Package update owns the bubbletea model and message loop. State changes
// flow through plan operations; views render the result.
package update

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sequenceflow/seqflow/internal/config"
	"github.com/sequenceflow/seqflow/internal/extcal"
	"github.com/sequenceflow/seqflow/internal/notify"
	"github.com/sequenceflow/seqflow/internal/plan"
	"github.com/sequenceflow/seqflow/internal/reminder"
)

type View string

const (
	ViewClock    View = "Clock"
	ViewTasks    View = "Tasks"
	ViewTimeline View = "Timeline"
	ViewCalendar View = "Calendar"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Clock    string
	Tasks    string
	Timeline string
	Calendar string
	Help     string
	Quit     string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// Notification is one entry of the in-app toast log.
type Notification struct {
	Title string
	Body  string
	At    time.Time
}

// formField indexes the tab cycle through the task entry form.
type formField int

const (
	fieldTitle formField = iota
	fieldStart
	fieldDuration
	fieldDays
	fieldDailyStart
	fieldDailyEnd
	fieldCount
)

// TaskFormState is the entry form on the tasks view. Daily switches which
// inputs apply; Unit, DepID, and GroupID cycle rather than being typed.
type TaskFormState struct {
	Active  bool
	Focus   formField
	Daily   bool
	Unit    plan.DurationUnit
	DepID   string
	GroupID string
}

type Model struct {
	Cfg         config.RuntimeConfig
	Plan        plan.State
	CurrentView View
	Clock       time.Time
	Cursor      int
	Form        TaskFormState
	Palette     CommandPaletteState
	HelpVisible bool

	CalendarAnchor time.Time
	SelectedDayKey string

	Engine        *reminder.Engine
	handles       map[string]*reminder.Handle
	notifier      notify.Notifier
	provider      extcal.Provider
	Notifications []Notification

	Status    StatusBar
	Keys      GlobalKeyMap
	Quitting  bool
	LastError error

	titleInput      textinput.Model
	startInput      textinput.Model
	durationInput   textinput.Model
	daysInput       textinput.Model
	dailyStartInput textinput.Model
	dailyEndInput   textinput.Model
	commandInput    textinput.Model
	syncSpinner     spinner.Model
	spinnerActive   bool

	now func() time.Time
}

func NewModel() Model {
	return NewModelWithConfig(nil, notify.Noop{}, config.Default())
}

func NewModelWithEngine(engine *reminder.Engine) Model {
	return NewModelWithConfig(engine, notify.Noop{}, config.Default())
}

func NewModelWithConfig(engine *reminder.Engine, notifier notify.Notifier, cfg config.RuntimeConfig) Model {
	title := textinput.New()
	title.Placeholder = "task title"
	title.CharLimit = 120
	start := textinput.New()
	start.Placeholder = "2006-01-02T15:04"
	duration := textinput.New()
	duration.Placeholder = "1"
	days := textinput.New()
	days.Placeholder = "1"
	dailyStart := textinput.New()
	dailyStart.Placeholder = "09:00"
	dailyEnd := textinput.New()
	dailyEnd.Placeholder = "09:30"
	command := textinput.New()
	command.Placeholder = "add ..."
	command.Prompt = "/"

	m := Model{
		Cfg:         cfg,
		CurrentView: ViewClock,
		Clock:       time.Now(),
		Form: TaskFormState{
			Unit: plan.UnitHours,
		},
		CalendarAnchor: time.Now(),
		Engine:         engine,
		handles:        make(map[string]*reminder.Handle),
		notifier:       notify.Noop{},
		Keys: GlobalKeyMap{
			Clock:    "1",
			Tasks:    "2",
			Timeline: "3",
			Calendar: "4",
			Help:     "?",
			Quit:     "q",
		},
		titleInput:      title,
		startInput:      start,
		durationInput:   duration,
		daysInput:       days,
		dailyStartInput: dailyStart,
		dailyEndInput:   dailyEnd,
		commandInput:    command,
		syncSpinner:     spinner.New(),
		now:             time.Now,
	}
	if notifier != nil {
		m.notifier = notifier
	}
	if cfg.CalendarPath != "" {
		m.provider = extcal.NewFileProvider(cfg.CalendarPath)
	}
	return m
}

// SetProvider swaps the external calendar provider; tests use this to
// avoid touching disk.
func (m *Model) SetProvider(p extcal.Provider) {
	m.provider = p
}

// SetNow pins the clock source for deterministic tests.
func (m *Model) SetNow(now func() time.Time) {
	m.now = now
	m.Clock = now()
	m.CalendarAnchor = now()
}

// notify surfaces a message on the in-app log and, when enabled, the
// desktop. Delivery failures never surface; notifications are best effort.
func (m *Model) notify(title, body, tag string) {
	m.Notifications = append(m.Notifications, Notification{Title: title, Body: body, At: m.now()})
	if len(m.Notifications) > 20 {
		m.Notifications = m.Notifications[len(m.Notifications)-20:]
	}
	if m.Cfg.DesktopNotifications {
		_ = m.notifier.Send(notify.Notification{Title: title, Body: body, Tag: tag})
	}
}

// selectedTask returns the task under the cursor.
func (m Model) selectedTask() (string, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Plan.Tasks) {
		return "", false
	}
	return m.Plan.Tasks[m.Cursor].ID, true
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Plan.Tasks) {
		m.Cursor = len(m.Plan.Tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// cancelHandle withdraws any pending reminder for a task, typically after
// completion or deletion.
func (m *Model) cancelHandle(taskID string) {
	if h, ok := m.handles[taskID]; ok {
		h.Cancel()
		delete(m.handles, taskID)
	}
}

// Teardown cancels all pending reminders and stops the engine. Called
// once when the program exits.
func (m *Model) Teardown() {
	for id, h := range m.handles {
		h.Cancel()
		delete(m.handles, id)
	}
	if m.Engine != nil {
		m.Engine.Stop()
	}
}

func (m Model) groupName(id string) string {
	if id == "" {
		return ""
	}
	if g, ok := m.Plan.FindGroup(id); ok {
		return g.Name
	}
	return id
}

func (m Model) statsLine() string {
	st := m.Plan.Stats()
	return fmt.Sprintf("tasks: %d total, %d done, %d pending", st.Total, st.Completed, st.Pending)
}
