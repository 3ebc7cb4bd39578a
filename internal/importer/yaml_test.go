package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/sequenceflow/seqflow/internal/plan"
)

var importNow = time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)

func TestImportContinuousAndDaily(t *testing.T) {
	src := `
tasks:
  - title: Write report
    start: 2024-01-02T09:00
    duration: 2
    unit: hours
  - title: Standup
    start: 2024-01-02
    daily: true
    days: 3
    daily_start: "09:00"
    daily_end: "09:30"
`
	s, count, err := Import(plan.State{}, src, importNow)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 || len(s.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got count=%d len=%d", count, len(s.Tasks))
	}

	report, ok := s.ResolveTaskRef("#2")
	if !ok || report.Text != "Write report" {
		t.Fatalf("unexpected task: %+v", report)
	}
	if report.DurationMinutes != 120 {
		t.Fatalf("expected 120 minutes, got %d", report.DurationMinutes)
	}
	standup, _ := s.ResolveTaskRef("#1")
	if standup.DaysCount != 3 || standup.DailyStart != "09:00" {
		t.Fatalf("unexpected daily task: %+v", standup)
	}
}

func TestImportResolvesDependencyByTitle(t *testing.T) {
	src := `
tasks:
  - title: Prepare
    start: 2024-01-02T09:00
    duration: 2
    unit: hours
  - title: Deliver
    start: 2024-01-02T09:30
    duration: 30
    unit: minutes
    depends_on: Prepare
`
	s, _, err := Import(plan.State{}, src, importNow)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	deliver, _ := s.ResolveTaskRef("#1")
	prepare, _ := s.ResolveTaskRef("#2")
	if !deliver.DependsOn(prepare.ID) {
		t.Fatalf("expected dependency on %s, got %v", prepare.ID, deliver.Deps)
	}
	// The clamp applies during import too.
	want := time.Date(2024, 1, 2, 11, 1, 0, 0, time.Local)
	if !deliver.StartAt.Equal(want) {
		t.Fatalf("expected clamped start %v, got %v", want, deliver.StartAt)
	}
}

func TestImportCreatesGroupsOnFirstReference(t *testing.T) {
	src := `
tasks:
  - title: A
    start: 2024-01-02T09:00
    duration: 1
    unit: hours
    group: Launch
  - title: B
    start: 2024-01-02T10:30
    duration: 1
    unit: hours
    group: Launch
`
	s, _, err := Import(plan.State{}, src, importNow)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(s.Groups) != 1 || s.Groups[0].Name != "Launch" {
		t.Fatalf("expected single Launch group, got %v", s.Groups)
	}
	for _, task := range s.Tasks {
		if task.GroupID != s.Groups[0].ID {
			t.Fatalf("task %s not in group: %+v", task.ID, task)
		}
	}
}

func TestImportRejectsUnknownDependency(t *testing.T) {
	src := `
tasks:
  - title: Orphan
    start: 2024-01-02T09:00
    duration: 1
    unit: hours
    depends_on: Nothing
`
	_, count, err := Import(plan.State{}, src, importNow)
	if err == nil || !strings.Contains(err.Error(), "unknown dependency") {
		t.Fatalf("expected unknown dependency error, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no tasks created, got %d", count)
	}
}

func TestImportRejectsEmptyDocument(t *testing.T) {
	if _, _, err := Import(plan.State{}, "tasks: []", importNow); err == nil {
		t.Fatal("expected error for empty document")
	}
	if _, _, err := Import(plan.State{}, ":\nbroken", importNow); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestImportDefaultsStartToNow(t *testing.T) {
	src := `
tasks:
  - title: Soon
    duration: 30
    unit: minutes
`
	s, _, err := Import(plan.State{}, src, importNow)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	task := s.Tasks[0]
	if !task.StartAt.Equal(importNow) {
		t.Fatalf("expected start defaulted to now, got %v", task.StartAt)
	}
}
