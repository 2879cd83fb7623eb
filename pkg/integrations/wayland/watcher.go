package wayland

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Arpanmondalz/digital-health-daemon/pkg/session"
)

// Watcher implements session.Watcher for Wayland sessions. Compositors do
// not expose a common lock protocol to clients, so it asks the desktop's
// ScreenSaver D-Bus service and falls back to logind's LockedHint.
type Watcher struct {
	hasGdbus    bool
	hasLoginctl bool
}

// NewWatcher creates a new Wayland watcher
func NewWatcher() *Watcher {
	return &Watcher{
		hasGdbus:    commandExists("gdbus"),
		hasLoginctl: commandExists("loginctl"),
	}
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// IsAvailable checks if Wayland detection is available
func (w *Watcher) IsAvailable() bool {
	if os.Getenv("WAYLAND_DISPLAY") == "" && os.Getenv("XDG_SESSION_TYPE") != "wayland" {
		return false
	}
	return w.hasGdbus || w.hasLoginctl
}

// Backend returns "wayland"
func (w *Watcher) Backend() string {
	return "wayland"
}

// Status returns the current lock state of the interactive session
func (w *Watcher) Status() (*session.LockStatus, error) {
	if w.hasGdbus {
		if locked, err := w.screenSaverActive(); err == nil {
			return &session.LockStatus{IsLocked: locked}, nil
		}
	}

	if w.hasLoginctl {
		if locked, err := w.lockedHint(); err == nil {
			return &session.LockStatus{IsLocked: locked}, nil
		}
	}

	return nil, fmt.Errorf("no wayland lock detection method available (gdbus or loginctl required)")
}

// screenSaverActive queries the session ScreenSaver D-Bus service
func (w *Watcher) screenSaverActive() (bool, error) {
	cmd := exec.Command("gdbus", "call", "--session",
		"--dest", "org.freedesktop.ScreenSaver",
		"--object-path", "/org/freedesktop/ScreenSaver",
		"--method", "org.freedesktop.ScreenSaver.GetActive")

	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to query ScreenSaver service: %w", err)
	}

	// Reply looks like "(true,)" or "(false,)".
	return strings.Contains(string(output), "true"), nil
}

// lockedHint reads logind's LockedHint property for the current session
func (w *Watcher) lockedHint() (bool, error) {
	cmd := exec.Command("loginctl", "show-session", "--property", "LockedHint", "--value")
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to query loginctl: %w", err)
	}

	return strings.TrimSpace(string(output)) == "yes", nil
}

// Close cleans up resources
func (w *Watcher) Close() error {
	return nil
}
