package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sequenceflow/seqflow/internal/config"
	"github.com/sequenceflow/seqflow/internal/notify"
	"github.com/sequenceflow/seqflow/internal/reminder"
	"github.com/sequenceflow/seqflow/internal/update"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seqflow: %v\n", err)
		os.Exit(1)
	}

	engine := reminder.NewEngine(cfg.ReminderBuffer)
	engine.Start()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.DesktopNotifications {
		notifier = notify.Desktop{}
	}

	model := update.NewModelWithConfig(engine, notifier, cfg)
	program := tea.NewProgram(model)
	final, err := program.Run()
	if m, ok := final.(update.Model); ok {
		m.Teardown()
	} else {
		engine.Stop()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "seqflow failed: %v\n", err)
		os.Exit(1)
	}
}
