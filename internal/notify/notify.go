package notify

import (
	"fmt"
	"os/exec"
	"sync"
)

// Notifier delivers user-facing notifications. The engine only flags intent;
// implementations own the delivery mechanism.
type Notifier interface {
	Notify(title, body string) error
}

// Desktop sends notifications through notify-send. Delivery failures are
// swallowed after the first lookup: a missing notification daemon must not
// take the tracking loop down.
type Desktop struct {
	hasNotifySend bool
}

// NewDesktop creates a Desktop notifier
func NewDesktop() *Desktop {
	_, err := exec.LookPath("notify-send")
	return &Desktop{hasNotifySend: err == nil}
}

func (d *Desktop) Notify(title, body string) error {
	if !d.hasNotifySend {
		return fmt.Errorf("notify-send not available")
	}

	cmd := exec.Command("notify-send", "--app-name", "biodaemon", title, body)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}

// Discard drops every notification. Used when notifications are disabled.
type Discard struct{}

func (Discard) Notify(title, body string) error { return nil }

// Memory records notifications for tests.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

type Entry struct {
	Title string
	Body  string
}

func (m *Memory) Notify(title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Title: title, Body: body})
	return nil
}

// Entries returns a copy of everything notified so far.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
