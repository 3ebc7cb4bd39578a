package update

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sequenceflow/seqflow/internal/extcal"
	"github.com/sequenceflow/seqflow/internal/plan"
	"github.com/sequenceflow/seqflow/internal/reminder"
)

var testClock = time.Date(2024, time.March, 4, 8, 0, 0, 0, time.Local)

func newTestModel() Model {
	m := NewModel()
	m.SetNow(func() time.Time { return testClock })
	return m
}

func typeRunes(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	return m
}

func pressKey(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel()
	if m.CurrentView != ViewClock {
		t.Fatalf("expected default view %q, got %q", ViewClock, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.Form.Unit != plan.UnitHours {
		t.Fatalf("expected default unit hours, got %q", m.Form.Unit)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := newTestModel()
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected tasks view, got %q", m.CurrentView)
	}
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	if m.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", m.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(SwitchViewMsg{View: ViewTimeline})
	m = updated.(Model)
	if m.CurrentView != ViewTimeline {
		t.Fatalf("expected timeline view, got %q", m.CurrentView)
	}

	updated, _ = m.Update(SwitchViewMsg{View: View("Unknown")})
	m = updated.(Model)
	if m.CurrentView != ViewTimeline {
		t.Fatalf("expected view unchanged for unknown view, got %q", m.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	m = updated.(Model)
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	updated, _ = m.Update(AppErrorMsg{Err: errors.New("boom")})
	m = updated.(Model)
	if m.LastError == nil || m.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", m.LastError)
	}
	if !m.Status.IsError || m.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", m.Status)
	}

	updated, _ = m.Update(ClearStatusMsg{})
	m = updated.(Model)
	if m.Status.Text != "" || m.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", m.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := newTestModel()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updated.(Model)
	if !m.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := newTestModel()
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	if !strings.Contains(out, "view: Clock") {
		t.Fatalf("expected view text in output: %q", out)
	}
	if !strings.Contains(out, "status: all good") {
		t.Fatalf("expected status in output: %q", out)
	}
	if !strings.Contains(out, "08:00:00") {
		t.Fatalf("expected clock time in output: %q", out)
	}
}

func TestClockTickAdvancesClock(t *testing.T) {
	m := newTestModel()
	later := testClock.Add(42 * time.Second)
	updated, cmd := m.Update(ClockTickMsg{Time: later})
	m = updated.(Model)
	if !m.Clock.Equal(later) {
		t.Fatalf("expected clock %v, got %v", later, m.Clock)
	}
	if cmd == nil {
		t.Fatal("expected next tick command")
	}
}

func TestTaskFormAddFlow(t *testing.T) {
	m := newTestModel()
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}})
	if !m.Form.Active {
		t.Fatal("expected form active after i")
	}

	m = typeRunes(t, m, "write report")
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.Plan.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(m.Plan.Tasks))
	}
	task := m.Plan.Tasks[0]
	if task.Text != "write report" {
		t.Fatalf("unexpected task text: %q", task.Text)
	}
	if task.ID != "task-1" {
		t.Fatalf("unexpected task id: %q", task.ID)
	}
	if m.titleInput.Value() != "" {
		t.Fatalf("expected empty title input after submit, got %q", m.titleInput.Value())
	}
	if !strings.Contains(m.Status.Text, "added task-1") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
}

func TestTaskFormEmptyTitleStaysOpen(t *testing.T) {
	m := newTestModel()
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}})
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.Plan.Tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(m.Plan.Tasks))
	}
	if !m.Form.Active {
		t.Fatal("expected form still active")
	}
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
}

func TestFormDailyToggleSwitchesFields(t *testing.T) {
	m := newTestModel()
	m.CurrentView = ViewTasks
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}})

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if !m.Form.Daily {
		t.Fatal("expected daily mode on")
	}
	if m.fieldApplies(fieldDuration) {
		t.Fatal("duration field should not apply in daily mode")
	}
	if !m.fieldApplies(fieldDays) {
		t.Fatal("days field should apply in daily mode")
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.Form.Daily {
		t.Fatal("expected daily mode off")
	}
}

func TestToggleCompletionRespectsDependency(t *testing.T) {
	m := newTestModel()
	m.CurrentView = ViewTasks

	var dep, dependent string
	next, created, _ := m.Plan.CreateTask(plan.TaskInput{Text: "first", StartAt: testClock, DurationValue: 1, DurationUnit: plan.UnitHours}, testClock)
	dep = created.ID
	next, created, _ = next.CreateTask(plan.TaskInput{Text: "second", DependsOn: dep}, testClock)
	dependent = created.ID
	m.Plan = next
	m.Cursor = 0

	// Newest first: cursor 0 is the dependent, still blocked.
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.Status.IsError {
		t.Fatalf("expected blocked status, got %+v", m.Status)
	}
	if got, _ := m.Plan.FindTask(dependent); got.Completed {
		t.Fatal("dependent should not complete while blocked")
	}

	m.Cursor = 1
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got, _ := m.Plan.FindTask(dep); !got.Completed {
		t.Fatal("expected dependency completed")
	}

	m.Cursor = 0
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got, _ := m.Plan.FindTask(dependent); !got.Completed {
		t.Fatal("expected dependent completed after dependency")
	}
}

func TestDeleteKeyRemovesSelected(t *testing.T) {
	m := newTestModel()
	m.CurrentView = ViewTasks
	next, created, _ := m.Plan.CreateTask(plan.TaskInput{Text: "gone"}, testClock)
	m.Plan = next
	m.Cursor = 0

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if len(m.Plan.Tasks) != 0 {
		t.Fatalf("expected 0 tasks, got %d", len(m.Plan.Tasks))
	}
	if !strings.Contains(m.Status.Text, created.ID) {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
}

func TestGroupCycleKey(t *testing.T) {
	m := newTestModel()
	m.CurrentView = ViewTasks
	next, _ := m.Plan.AddGroup("Deep Work")
	next, _, _ = next.CreateTask(plan.TaskInput{Text: "think"}, testClock)
	m.Plan = next
	m.Cursor = 0

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if got := m.Plan.Tasks[0].GroupID; got != "g-1" {
		t.Fatalf("expected group g-1, got %q", got)
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if got := m.Plan.Tasks[0].GroupID; got != "" {
		t.Fatalf("expected cycle back to ungrouped, got %q", got)
	}
}

func TestPaletteAddCommand(t *testing.T) {
	m := newTestModel()
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.Palette.Active {
		t.Fatal("expected palette active")
	}

	m = typeRunes(t, m, "add Ship release")
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Palette.Active {
		t.Fatal("expected palette closed after execute")
	}
	if len(m.Plan.Tasks) != 1 || m.Plan.Tasks[0].Text != "Ship release" {
		t.Fatalf("unexpected tasks: %+v", m.Plan.Tasks)
	}
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected switch to tasks view, got %q", m.CurrentView)
	}
}

func TestPaletteUnknownCommand(t *testing.T) {
	m := newTestModel()
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = typeRunes(t, m, "frobnicate")
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	if !strings.Contains(m.Status.Text, "unsupported command") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
}

func TestPaletteEscCloses(t *testing.T) {
	m := newTestModel()
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = typeRunes(t, m, "add half typed")
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.Palette.Active {
		t.Fatal("expected palette closed")
	}
	if len(m.Plan.Tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(m.Plan.Tasks))
	}
}

func TestPaletteDoneByIndex(t *testing.T) {
	m := newTestModel()
	next, _, _ := m.Plan.CreateTask(plan.TaskInput{Text: "finish me"}, testClock)
	m.Plan = next

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = typeRunes(t, m, "done #1")
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Plan.Tasks[0].Completed {
		t.Fatal("expected task completed via palette")
	}
}

func TestReminderDueUpdatesStatusAndLog(t *testing.T) {
	m := newTestModel()
	start := testClock.Add(10 * time.Minute)
	updated, _ := m.Update(ReminderDueMsg{Event: reminder.Event{
		TaskID:  "task-1",
		Title:   "standup",
		StartAt: start,
		FireAt:  start.Add(-5 * time.Minute),
	}})
	m = updated.(Model)

	if !strings.Contains(m.Status.Text, "standup") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
	if len(m.Notifications) != 1 || m.Notifications[0].Title != "Up next" {
		t.Fatalf("unexpected notifications: %+v", m.Notifications)
	}
}

func TestCalendarMonthNavigation(t *testing.T) {
	m := newTestModel()
	m.CurrentView = ViewCalendar

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if m.CalendarAnchor.Month() != time.April {
		t.Fatalf("expected April anchor, got %v", m.CalendarAnchor.Month())
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.CalendarAnchor.Month() != time.March {
		t.Fatalf("expected March anchor after today, got %v", m.CalendarAnchor.Month())
	}
	if m.SelectedDayKey != "2024-03-04" {
		t.Fatalf("expected today selected, got %q", m.SelectedDayKey)
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.SelectedDayKey != "2024-03-05" {
		t.Fatalf("expected next day selected, got %q", m.SelectedDayKey)
	}
}

func TestCalendarImportDoneSkipsKnownEvents(t *testing.T) {
	m := newTestModel()
	ev := extcal.Event{
		ID:      "ev-1@remote",
		Summary: "Standup",
		Start:   testClock.Add(time.Hour),
		End:     testClock.Add(90 * time.Minute),
	}

	updated, _ := m.Update(ImportCalendarDoneMsg{Events: []extcal.Event{ev}})
	m = updated.(Model)
	if len(m.Plan.Tasks) != 1 {
		t.Fatalf("expected 1 imported task, got %d", len(m.Plan.Tasks))
	}
	if m.Plan.Tasks[0].ExternalEventID != "ev-1@remote" {
		t.Fatalf("expected external id carried, got %q", m.Plan.Tasks[0].ExternalEventID)
	}

	updated, _ = m.Update(ImportCalendarDoneMsg{Events: []extcal.Event{ev}})
	m = updated.(Model)
	if len(m.Plan.Tasks) != 1 {
		t.Fatalf("expected duplicate skipped, got %d tasks", len(m.Plan.Tasks))
	}
}

func TestCalendarImportDoneDropsMalformedEvents(t *testing.T) {
	m := newTestModel()
	events := []extcal.Event{
		// No start; decodes from a VEVENT missing DTSTART.
		{ID: "broken@remote", Summary: "No start"},
		{
			ID:      "ok@remote",
			Summary: "Review",
			Start:   testClock.Add(time.Hour),
			End:     testClock.Add(2 * time.Hour),
		},
	}

	updated, _ := m.Update(ImportCalendarDoneMsg{Events: events})
	m = updated.(Model)
	if len(m.Plan.Tasks) != 1 {
		t.Fatalf("expected only the valid event imported, got %d tasks", len(m.Plan.Tasks))
	}
	if m.Plan.Tasks[0].ExternalEventID != "ok@remote" {
		t.Fatalf("unexpected imported task: %+v", m.Plan.Tasks[0])
	}
}

func TestExportDoneReportsCounts(t *testing.T) {
	m := newTestModel()
	m.spinnerActive = true
	updated, _ := m.Update(ExportDoneMsg{Result: extcal.ExportResult{Success: 3, Failed: 1}})
	m = updated.(Model)

	if m.spinnerActive {
		t.Fatal("expected spinner stopped")
	}
	if !strings.Contains(m.Status.Text, "3 ok, 1 failed") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
	if !m.Status.IsError {
		t.Fatal("expected error status when exports failed")
	}
}

func TestYankDoneMsgStatus(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(YankDoneMsg{})
	m = updated.(Model)
	if m.Status.Text != "task copied to clipboard" {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}

	updated, _ = m.Update(YankDoneMsg{Err: errors.New("no display")})
	m = updated.(Model)
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no display") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel()
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !m.HelpVisible {
		t.Fatal("expected help visible")
	}
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if m.HelpVisible {
		t.Fatal("expected help hidden")
	}
}

func TestTeardownStopsEngine(t *testing.T) {
	engine := reminder.NewEngine(4)
	engine.Start()
	m := NewModelWithEngine(engine)
	m.SetNow(func() time.Time { return testClock })

	m.Teardown()
	if _, err := engine.Schedule(reminder.Event{TaskID: "task-1", FireAt: testClock.Add(time.Hour)}); !errors.Is(err, reminder.ErrEngineStopped) {
		t.Fatalf("expected engine stopped, got %v", err)
	}
}
