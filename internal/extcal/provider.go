package extcal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrNoCalendarPath = errors.New("extcal: calendar path not configured")

// ExportError records one event that could not be exported.
type ExportError struct {
	EventID string
	Err     error
}

// ExportResult aggregates an export pass.
type ExportResult struct {
	Success int
	Failed  int
	Errors  []ExportError
}

// Provider is the external calendar boundary. Implementations must not
// mutate scheduler state.
type Provider interface {
	Export(ctx context.Context, events []Event) (ExportResult, error)
	Import(ctx context.Context, from, to time.Time) ([]Event, error)
}

// FileProvider syncs against a local ICS file, the lowest common
// denominator every desktop calendar can ingest.
type FileProvider struct {
	Path string
	// Now is overridable for deterministic DTSTAMP values in tests.
	Now func() time.Time
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path, Now: time.Now}
}

// Export validates each event and writes the valid ones as one ICS
// document, replacing the previous file.
func (p *FileProvider) Export(ctx context.Context, events []Event) (ExportResult, error) {
	var result ExportResult
	if p.Path == "" {
		return result, ErrNoCalendarPath
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	valid := make([]Event, 0, len(events))
	for _, ev := range events {
		if err := validateEvent(ev); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ExportError{EventID: ev.ID, Err: err})
			continue
		}
		valid = append(valid, ev)
	}

	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return result, fmt.Errorf("extcal: create calendar dir: %w", err)
	}
	if err := os.WriteFile(p.Path, []byte(EncodeICS(valid, now)), 0o644); err != nil {
		return result, fmt.Errorf("extcal: write calendar: %w", err)
	}
	result.Success = len(valid)
	return result, nil
}

// Import reads the ICS file and returns the events overlapping [from, to).
// Zero bounds disable that side of the filter. A missing file is an empty
// calendar, not an error.
func (p *FileProvider) Import(ctx context.Context, from, to time.Time) ([]Event, error) {
	if p.Path == "" {
		return nil, ErrNoCalendarPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extcal: read calendar: %w", err)
	}

	all := DecodeICS(string(data))
	if from.IsZero() && to.IsZero() {
		return all, nil
	}
	if to.IsZero() {
		to = time.Date(9999, 1, 1, 0, 0, 0, 0, time.Local)
	}
	out := make([]Event, 0, len(all))
	for _, ev := range all {
		if ev.Overlaps(from, to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func validateEvent(ev Event) error {
	if ev.Start.IsZero() {
		return errors.New("extcal: event start is required")
	}
	if ev.End.Before(ev.Start) {
		return errors.New("extcal: event ends before it starts")
	}
	return nil
}
