package calendar

import (
	"testing"
	"time"

	"github.com/sequenceflow/seqflow/internal/model"
)

func TestBucketByDateContinuousSpanningMidnight(t *testing.T) {
	tasks := []model.Task{{
		ID:              "task-1",
		Text:            "Night batch",
		Mode:            model.ModeContinuous,
		StartAt:         time.Date(2024, 1, 1, 23, 0, 0, 0, time.Local),
		DurationMinutes: 120,
	}}
	buckets := BucketByDate(tasks)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %v", len(buckets), buckets)
	}
	for _, key := range []string{"2024-01-01", "2024-01-02"} {
		entries := buckets[key]
		if len(entries) != 1 || entries[0].TaskID != "task-1" {
			t.Fatalf("expected task-1 on %s, got %v", key, entries)
		}
	}
}

func TestBucketByDateEndAtMidnightTouchesBothDays(t *testing.T) {
	tasks := []model.Task{{
		ID:              "task-1",
		Text:            "Evening",
		Mode:            model.ModeContinuous,
		StartAt:         time.Date(2024, 1, 1, 22, 0, 0, 0, time.Local),
		DurationMinutes: 120,
	}}
	buckets := BucketByDate(tasks)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %v", buckets)
	}
	for _, key := range []string{"2024-01-01", "2024-01-02"} {
		if entries := buckets[key]; len(entries) != 1 || entries[0].TaskID != "task-1" {
			t.Fatalf("expected task-1 on %s, got %v", key, entries)
		}
	}
}

func TestBucketByDateDailyOnePerDay(t *testing.T) {
	tasks := []model.Task{{
		ID:         "task-2",
		Text:       "Standup",
		Mode:       model.ModeDaily,
		FirstDay:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local),
		DaysCount:  3,
		DailyStart: "09:00",
		DailyEnd:   "09:30",
	}}
	buckets := BucketByDate(tasks)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	for _, key := range []string{"2024-01-10", "2024-01-11", "2024-01-12"} {
		if entries := buckets[key]; len(entries) != 1 || !entries[0].Daily {
			t.Fatalf("expected daily entry on %s, got %v", key, entries)
		}
	}
}

func TestBucketByDateSkipsUnscheduled(t *testing.T) {
	tasks := []model.Task{{ID: "task-3", Text: "Someday", Mode: model.ModeContinuous}}
	if buckets := BucketByDate(tasks); len(buckets) != 0 {
		t.Fatalf("expected no buckets, got %v", buckets)
	}
}

func TestMonthGridLeadingBlanksAndToday(t *testing.T) {
	// January 2024 starts on a Monday: one leading blank.
	anchor := time.Date(2024, 1, 15, 12, 0, 0, 0, time.Local)
	now := time.Date(2024, 1, 15, 12, 30, 0, 0, time.Local)
	grid := MonthGrid(anchor, nil, now)

	if grid.Year != 2024 || grid.Month != time.January {
		t.Fatalf("unexpected month: %d-%s", grid.Year, grid.Month)
	}
	if len(grid.Cells) != 1+31 {
		t.Fatalf("expected 32 cells, got %d", len(grid.Cells))
	}
	if !grid.Cells[0].Blank {
		t.Fatal("expected leading blank cell")
	}
	if grid.Cells[1].Number != 1 || grid.Cells[1].Blank {
		t.Fatalf("expected day 1 after blank, got %+v", grid.Cells[1])
	}

	var today int
	for _, c := range grid.Cells {
		if c.Today {
			today = c.Number
		}
	}
	if today != 15 {
		t.Fatalf("expected today on the 15th, got %d", today)
	}
}

func TestMonthGridWeeksPadsFinalRow(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	weeks := MonthGrid(anchor, nil, anchor).Weeks()
	if len(weeks) != 5 {
		t.Fatalf("expected 5 week rows, got %d", len(weeks))
	}
	for i, week := range weeks {
		if len(week) != 7 {
			t.Fatalf("week %d: expected 7 cells, got %d", i, len(week))
		}
	}
	last := weeks[len(weeks)-1]
	if last[3].Number != 31 {
		t.Fatalf("expected Jan 31 in final row, got %+v", last[3])
	}
	if !last[4].Blank || !last[6].Blank {
		t.Fatal("expected trailing blanks in final row")
	}
}

func TestMonthSummaryCounts(t *testing.T) {
	tasks := []model.Task{
		{
			ID: "task-1", Text: "A", Mode: model.ModeContinuous,
			StartAt: time.Date(2024, 1, 5, 9, 0, 0, 0, time.Local), DurationMinutes: 60,
		},
		{
			ID: "task-2", Text: "B", Mode: model.ModeContinuous,
			StartAt: time.Date(2024, 1, 5, 11, 0, 0, 0, time.Local), DurationMinutes: 60,
		},
		{
			ID: "task-3", Text: "C", Mode: model.ModeContinuous,
			StartAt: time.Date(2024, 1, 9, 9, 0, 0, 0, time.Local), DurationMinutes: 60,
		},
	}
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	grid := MonthGrid(anchor, BucketByDate(tasks), anchor)
	sum := grid.Summary()
	if sum.DaysWithTasks != 2 || sum.TaskDays != 3 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
