package update

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sequenceflow/seqflow/internal/commands"
	"github.com/sequenceflow/seqflow/internal/extcal"
	"github.com/sequenceflow/seqflow/internal/importer"
	"github.com/sequenceflow/seqflow/internal/plan"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	next, _ := m.commandInput.Update(msg)
	m.commandInput = next
	m.Palette.Input = m.commandInput.Value()
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			next, task, ok := m.Plan.CreateTask(plan.TaskInput{
				Text:          a.Title,
				StartAt:       m.now(),
				DurationValue: 1,
				DurationUnit:  plan.UnitHours,
			}, m.now())
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "task title is required"}
			}
			m.Plan = next
			m.Cursor = 0
			m.CurrentView = ViewTasks
			m.rescan(m.now())
			return commands.Result{Message: fmt.Sprintf("added %s: %s", task.ID, task.Text)}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			task, ok := m.Plan.ResolveTaskRef(a.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", a.Target)}
			}
			next, outcome := m.Plan.ToggleCompletion(task.ID)
			switch outcome {
			case plan.ToggleBlocked:
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "blocked: finish its dependency first"}
			case plan.ToggleCompleted:
				m.Plan = next
				m.cancelHandle(task.ID)
				return commands.Result{Message: fmt.Sprintf("completed %s", task.ID)}, nil
			default:
				m.Plan = next
				m.rescan(m.now())
				return commands.Result{Message: fmt.Sprintf("reopened %s", task.ID)}, nil
			}
		},
		Remove: func(a commands.RemoveArgs) (commands.Result, error) {
			task, ok := m.Plan.ResolveTaskRef(a.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", a.Target)}
			}
			next, _ := m.Plan.DeleteTask(task.ID)
			m.Plan = next
			m.cancelHandle(task.ID)
			m.clampCursor()
			return commands.Result{Message: fmt.Sprintf("deleted %s", task.ID)}, nil
		},
		Group: func(a commands.GroupArgs) (commands.Result, error) {
			next, group := m.Plan.AddGroup(a.Name)
			m.Plan = next
			return commands.Result{Message: fmt.Sprintf("group created: %s", group.Name)}, nil
		},
		Assign: func(a commands.AssignArgs) (commands.Result, error) {
			task, ok := m.Plan.ResolveTaskRef(a.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", a.Target)}
			}
			group, ok := m.Plan.FindGroupByName(a.Group)
			if !ok {
				m.Plan, group = m.Plan.AddGroup(a.Group)
			}
			next, _ := m.Plan.SetTaskGroup(task.ID, group.ID)
			m.Plan = next
			return commands.Result{Message: fmt.Sprintf("%s -> %s", task.ID, group.Name)}, nil
		},
		Export: func(a commands.ExportArgs) (commands.Result, error) {
			provider := m.provider
			if a.Path != "" {
				provider = extcal.NewFileProvider(a.Path)
			}
			if provider == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no calendar configured (set calendar_path)"}
			}
			events := make([]extcal.Event, 0, len(m.Plan.Tasks))
			for _, t := range m.Plan.Tasks {
				if ev, ok := extcal.FromTask(t); ok {
					events = append(events, ev)
				}
			}
			m.spinnerActive = true
			followUp = tea.Batch(m.syncSpinner.Tick, exportCalendarCmd(provider, events))
			return commands.Result{Message: fmt.Sprintf("exporting %d event(s)", len(events))}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			path := a.Path
			if path == "" {
				path = m.Cfg.ImportPath
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("read %s: %v", path, err)}
			}
			next, count, err := importer.Import(m.Plan, string(data), m.now())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			m.Plan = next
			m.Cursor = 0
			m.rescan(m.now())
			return commands.Result{Message: fmt.Sprintf("imported %d task(s) from %s", count, path)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command failed", err.Error(), "command")
	} else {
		m.Status = StatusBar{Text: res.Message}
		m.notify("Command", res.Message, "command")
	}
	return m, followUp
}
