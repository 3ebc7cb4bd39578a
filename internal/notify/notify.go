// Package notify sends desktop notifications through whatever the host OS
// offers. The TUI owns the in-app toast list; this package only covers the
// out-of-process channel.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Notification is a desktop-facing message. Tag groups related messages so
// repeated reminders for one task coalesce on platforms that support it.
type Notification struct {
	Title string
	Body  string
	Tag   string
}

// Notifier delivers notifications outside the terminal.
type Notifier interface {
	Send(n Notification) error
}

// Noop swallows every notification. Used when desktop notifications are
// disabled and in tests.
type Noop struct{}

func (Noop) Send(Notification) error { return nil }

// Desktop shells out to the platform notifier: notify-send on Linux,
// osascript on macOS. Other platforms are silently unsupported.
type Desktop struct{}

func (Desktop) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		args := []string{n.Title, n.Body}
		if n.Tag != "" {
			args = append([]string{"--hint", "string:x-dunst-stack-tag:" + n.Tag}, args...)
		}
		return exec.Command("notify-send", args...).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`,
			escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Recorder captures notifications for assertions.
type Recorder struct {
	Sent []Notification
}

func (r *Recorder) Send(n Notification) error {
	r.Sent = append(r.Sent, n)
	return nil
}
