package update

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sequenceflow/seqflow/internal/model"
	"github.com/sequenceflow/seqflow/internal/plan"
	"github.com/sequenceflow/seqflow/internal/timeutil"
)

func (m Model) handleTasksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Form.Active {
		return m.handleFormKey(msg), nil
	}

	switch msg.String() {
	case "i", "a", "enter":
		m.Form.Active = true
		m.Form.Focus = fieldTitle
		m.focusFormField()
		m.Status = StatusBar{Text: "task entry mode"}
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Plan.Tasks)-1 {
			m.Cursor++
		}
	case " ":
		m = m.toggleSelectedCompletion()
	case "d":
		m = m.deleteSelectedTask()
	case "g":
		m = m.cycleSelectedTaskGroup()
	case "G":
		next, group := m.Plan.AddGroup("")
		m.Plan = next
		m.Status = StatusBar{Text: fmt.Sprintf("group created: %s", group.Name)}
	case "y":
		return m, m.yankSelectedCmd()
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Form.Active = false
		m.blurFormInputs()
		m.Status = StatusBar{Text: "task list mode"}
		return m
	case "enter":
		return m.submitTaskForm()
	case "tab":
		m.Form.Focus = m.nextField(m.Form.Focus, 1)
		m.focusFormField()
		return m
	case "shift+tab":
		m.Form.Focus = m.nextField(m.Form.Focus, -1)
		m.focusFormField()
		return m
	case "ctrl+d":
		m.Form.Daily = !m.Form.Daily
		if !m.fieldApplies(m.Form.Focus) {
			m.Form.Focus = fieldTitle
		}
		m.focusFormField()
		return m
	case "ctrl+u":
		m.Form.Unit = nextUnit(m.Form.Unit)
		return m
	case "ctrl+p":
		m.Form.DepID = m.nextDependency(m.Form.DepID)
		return m
	case "ctrl+g":
		m.Form.GroupID = m.nextGroup(m.Form.GroupID)
		return m
	}

	input := m.focusedInput()
	if input == nil {
		return m
	}
	next, _ := input.Update(msg)
	*input = next
	return m
}

// submitTaskForm builds a task from the form and adds it to the plan. The
// form stays open on an empty title so a stray enter never loses input.
func (m Model) submitTaskForm() Model {
	in := plan.TaskInput{
		Text:          m.titleInput.Value(),
		DurationValue: atoiOr(m.durationInput.Value(), 1),
		DurationUnit:  m.Form.Unit,
		Daily:         m.Form.Daily,
		DaysCount:     atoiOr(m.daysInput.Value(), 1),
		DailyStart:    valueOr(m.dailyStartInput, "09:00"),
		DailyEnd:      valueOr(m.dailyEndInput, "09:30"),
		DependsOn:     m.Form.DepID,
		GroupID:       m.Form.GroupID,
	}
	if start, ok := timeutil.ParseDateTime(m.startInput.Value()); ok {
		in.StartAt = start
	} else {
		in.StartAt = m.now()
	}

	next, task, ok := m.Plan.CreateTask(in, m.now())
	if !ok {
		m.Status = StatusBar{Text: "task title is required", IsError: true}
		return m
	}
	m.Plan = next
	m.Cursor = 0
	m.resetForm()
	m.rescan(m.now())
	m.Status = StatusBar{Text: fmt.Sprintf("added %s: %s", task.ID, task.Text)}
	m.notify("Task added", task.Text, task.ID)
	return m
}

func (m Model) toggleSelectedCompletion() Model {
	id, ok := m.selectedTask()
	if !ok {
		return m
	}
	next, outcome := m.Plan.ToggleCompletion(id)
	m.Plan = next
	switch outcome {
	case plan.ToggleCompleted:
		m.cancelHandle(id)
		m.Status = StatusBar{Text: fmt.Sprintf("completed %s", id)}
		if task, found := m.Plan.FindTask(id); found {
			m.notify("Task completed", task.Text, id)
		}
	case plan.ToggleReopened:
		m.rescan(m.now())
		m.Status = StatusBar{Text: fmt.Sprintf("reopened %s", id)}
	case plan.ToggleBlocked:
		m.Status = StatusBar{Text: "blocked: finish its dependency first", IsError: true}
	}
	return m
}

func (m Model) deleteSelectedTask() Model {
	id, ok := m.selectedTask()
	if !ok {
		return m
	}
	next, deleted := m.Plan.DeleteTask(id)
	if !deleted {
		return m
	}
	m.Plan = next
	m.cancelHandle(id)
	m.clampCursor()
	m.Status = StatusBar{Text: fmt.Sprintf("deleted %s", id)}
	return m
}

// cycleSelectedTaskGroup moves the selected task through every group and
// back to ungrouped.
func (m Model) cycleSelectedTaskGroup() Model {
	id, ok := m.selectedTask()
	if !ok {
		return m
	}
	task, _ := m.Plan.FindTask(id)
	nextGroup := m.nextGroup(task.GroupID)
	next, _ := m.Plan.SetTaskGroup(id, nextGroup)
	m.Plan = next
	if nextGroup == "" {
		m.Status = StatusBar{Text: fmt.Sprintf("%s ungrouped", id)}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("%s -> %s", id, m.groupName(nextGroup))}
	}
	return m
}

func (m Model) yankSelectedCmd() tea.Cmd {
	id, ok := m.selectedTask()
	if !ok {
		return nil
	}
	task, _ := m.Plan.FindTask(id)
	text := formatTaskForYank(task)
	return func() tea.Msg {
		return YankDoneMsg{Err: clipboard.WriteAll(text)}
	}
}

func formatTaskForYank(t model.Task) string {
	var b strings.Builder
	b.WriteString(t.Text)
	if start, ok := t.FirstStart(); ok {
		b.WriteString(" @" + start.Format("2006-01-02 15:04"))
	}
	if t.Mode == model.ModeDaily {
		fmt.Fprintf(&b, " (daily %s-%s x%d)", t.DailyStart, t.DailyEnd, t.DaysCount)
	}
	return b.String()
}

func (m *Model) resetForm() {
	m.titleInput.SetValue("")
	m.startInput.SetValue("")
	m.durationInput.SetValue("")
	m.daysInput.SetValue("")
	m.dailyStartInput.SetValue("")
	m.dailyEndInput.SetValue("")
	m.Form.DepID = ""
	m.Form.Focus = fieldTitle
	m.focusFormField()
}

func (m *Model) blurFormInputs() {
	for _, input := range m.formInputs() {
		input.Blur()
	}
}

func (m *Model) focusFormField() {
	m.blurFormInputs()
	if input := m.focusedInput(); input != nil {
		input.Focus()
	}
}

func (m *Model) formInputs() []*textinput.Model {
	return []*textinput.Model{
		&m.titleInput, &m.startInput, &m.durationInput,
		&m.daysInput, &m.dailyStartInput, &m.dailyEndInput,
	}
}

func (m *Model) focusedInput() *textinput.Model {
	switch m.Form.Focus {
	case fieldTitle:
		return &m.titleInput
	case fieldStart:
		return &m.startInput
	case fieldDuration:
		return &m.durationInput
	case fieldDays:
		return &m.daysInput
	case fieldDailyStart:
		return &m.dailyStartInput
	case fieldDailyEnd:
		return &m.dailyEndInput
	default:
		return nil
	}
}

// fieldApplies reports whether a form field is meaningful under the
// current mode: duration is continuous-only, the daily window fields
// daily-only.
func (m Model) fieldApplies(f formField) bool {
	switch f {
	case fieldDuration:
		return !m.Form.Daily
	case fieldDays, fieldDailyStart, fieldDailyEnd:
		return m.Form.Daily
	default:
		return true
	}
}

func (m Model) nextField(f formField, dir int) formField {
	for i := 0; i < int(fieldCount); i++ {
		f = formField((int(f) + dir + int(fieldCount)) % int(fieldCount))
		if m.fieldApplies(f) {
			return f
		}
	}
	return fieldTitle
}

// nextDependency cycles through incomplete tasks and back to none.
func (m Model) nextDependency(current string) string {
	candidates := []string{""}
	for _, t := range m.Plan.Tasks {
		if !t.Completed {
			candidates = append(candidates, t.ID)
		}
	}
	for i, id := range candidates {
		if id == current {
			return candidates[(i+1)%len(candidates)]
		}
	}
	return ""
}

func (m Model) nextGroup(current string) string {
	candidates := []string{""}
	for _, g := range m.Plan.Groups {
		candidates = append(candidates, g.ID)
	}
	for i, id := range candidates {
		if id == current {
			return candidates[(i+1)%len(candidates)]
		}
	}
	return ""
}

func nextUnit(u plan.DurationUnit) plan.DurationUnit {
	switch u {
	case plan.UnitMinutes:
		return plan.UnitHours
	case plan.UnitHours:
		return plan.UnitDays
	default:
		return plan.UnitMinutes
	}
}

func atoiOr(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func valueOr(input textinput.Model, fallback string) string {
	if strings.TrimSpace(input.Value()) == "" {
		return fallback
	}
	return input.Value()
}
