package extcal

import (
	"fmt"
	"strings"
	"time"
)

const (
	icsStampLayout = "20060102T150405Z"
	icsLocalLayout = "20060102T150405"
	icsDateLayout  = "20060102"
)

// EncodeICS renders events as one VCALENDAR document. Times are written as
// floating local times so the file reads back in the machine's own zone.
func EncodeICS(events []Event, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//seqflow//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	stamp := now.UTC().Format(icsStampLayout)
	for _, ev := range events {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(ev.ID),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(ev.Summary),
			"DTSTART:"+ev.Start.Format(icsLocalLayout),
			"DTEND:"+ev.End.Format(icsLocalLayout),
		)
		if ev.Description != "" {
			lines = append(lines, "DESCRIPTION:"+escapeICSText(ev.Description))
		}
		if ev.DailyCount > 0 {
			lines = append(lines, fmt.Sprintf("RRULE:FREQ=DAILY;COUNT=%d", ev.DailyCount))
		}
		if ev.Completed {
			lines = append(lines, "STATUS:COMPLETED")
		}
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

// DecodeICS parses a VCALENDAR document back into events. Unknown
// properties are ignored; a VEVENT without a parsable DTSTART is dropped.
func DecodeICS(data string) []Event {
	var events []Event
	var cur *Event
	for _, line := range unfoldICS(data) {
		name, value := splitICSLine(line)
		switch name {
		case "BEGIN":
			if strings.EqualFold(value, "VEVENT") {
				cur = &Event{}
			}
		case "END":
			if strings.EqualFold(value, "VEVENT") && cur != nil {
				if !cur.Start.IsZero() {
					if cur.End.IsZero() {
						cur.End = cur.Start
					}
					events = append(events, *cur)
				}
				cur = nil
			}
		}
		if cur == nil {
			continue
		}
		switch name {
		case "UID":
			cur.ID = unescapeICSText(value)
		case "SUMMARY":
			cur.Summary = unescapeICSText(value)
		case "DESCRIPTION":
			cur.Description = unescapeICSText(value)
		case "DTSTART":
			if t, ok := parseICSTime(value); ok {
				cur.Start = t
			}
		case "DTEND":
			if t, ok := parseICSTime(value); ok {
				cur.End = t
			}
		case "RRULE":
			cur.DailyCount = parseDailyCount(value)
		case "STATUS":
			cur.Completed = strings.EqualFold(value, "COMPLETED")
		}
	}
	return events
}

// unfoldICS joins RFC 5545 folded continuation lines and normalizes line
// endings.
func unfoldICS(data string) []string {
	raw := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	var lines []string
	for _, line := range raw {
		if line == "" {
			continue
		}
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitICSLine separates the property name from its value, discarding any
// parameters between the name and the colon.
func splitICSLine(line string) (string, string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return strings.ToUpper(line), ""
	}
	name := line[:idx]
	if semi := strings.Index(name, ";"); semi >= 0 {
		name = name[:semi]
	}
	return strings.ToUpper(name), line[idx+1:]
}

func parseICSTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(icsStampLayout, value); err == nil {
		return t.In(time.Local), true
	}
	if t, err := time.ParseInLocation(icsLocalLayout, value, time.Local); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(icsDateLayout, value, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseDailyCount extracts COUNT from a FREQ=DAILY rule; anything else
// yields zero.
func parseDailyCount(rule string) int {
	daily := false
	count := 0
	for _, part := range strings.Split(rule, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(kv[0])) {
		case "FREQ":
			daily = strings.EqualFold(strings.TrimSpace(kv[1]), "DAILY")
		case "COUNT":
			fmt.Sscanf(strings.TrimSpace(kv[1]), "%d", &count)
		}
	}
	if !daily || count < 1 {
		return 0
	}
	return count
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}

func unescapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\\\", "\\",
		"\\;", ";",
		"\\,", ",",
		"\\n", "\n",
		"\\N", "\n",
	)
	return repl.Replace(s)
}
