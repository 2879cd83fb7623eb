package fallback

import (
	"os/exec"
	"strings"

	"github.com/Arpanmondalz/digital-health-daemon/pkg/session"
)

// lockScreenProcesses covers lockers and lock-screen greeters across
// desktops, checked when no display-server integration is usable.
var lockScreenProcesses = []string{
	"gnome-screensaver-dialog",
	"kscreenlocker_greet",
	"kscreenlocker",
	"i3lock",
	"slock",
	"xscreensaver",
	"xsecurelock",
	"swaylock",
	"hyprlock",
	"gtklock",
}

// Watcher is the last-resort session.Watcher: a process scan for known
// screen lockers plus logind's LockedHint when loginctl is present.
type Watcher struct {
	hasPgrep    bool
	hasLoginctl bool
}

// NewWatcher creates a new fallback watcher
func NewWatcher() *Watcher {
	return &Watcher{
		hasPgrep:    commandExists("pgrep"),
		hasLoginctl: commandExists("loginctl"),
	}
}

func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// IsAvailable checks if fallback detection is available
func (w *Watcher) IsAvailable() bool {
	return w.hasPgrep || w.hasLoginctl
}

// Backend returns "fallback"
func (w *Watcher) Backend() string {
	return "fallback"
}

// Status returns the current lock state of the interactive session
func (w *Watcher) Status() (*session.LockStatus, error) {
	if w.hasLoginctl {
		cmd := exec.Command("loginctl", "show-session", "--property", "LockedHint", "--value")
		if output, err := cmd.Output(); err == nil {
			if strings.TrimSpace(string(output)) == "yes" {
				return &session.LockStatus{IsLocked: true}, nil
			}
		}
	}

	if w.hasPgrep {
		for _, proc := range lockScreenProcesses {
			cmd := exec.Command("pgrep", "-x", proc)
			if err := cmd.Run(); err == nil {
				return &session.LockStatus{IsLocked: true}, nil
			}
		}
	}

	return &session.LockStatus{IsLocked: false}, nil
}

// Close cleans up resources
func (w *Watcher) Close() error {
	return nil
}
