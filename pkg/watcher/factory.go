package watcher

import (
	"fmt"
	"os"

	"github.com/Arpanmondalz/digital-health-daemon/pkg/integrations/fallback"
	"github.com/Arpanmondalz/digital-health-daemon/pkg/integrations/wayland"
	"github.com/Arpanmondalz/digital-health-daemon/pkg/integrations/x11"
	"github.com/Arpanmondalz/digital-health-daemon/pkg/session"
)

// New picks the best available lock watcher for the current session:
// the display server's own integration first, then the generic fallback.
func New() (session.Watcher, error) {
	switch DetectDisplayServer() {
	case "wayland":
		if w := wayland.NewWatcher(); w.IsAvailable() {
			return w, nil
		}
	case "x11":
		if w := x11.NewWatcher(); w.IsAvailable() {
			return w, nil
		}
	}

	if w := fallback.NewWatcher(); w.IsAvailable() {
		return w, nil
	}

	return nil, fmt.Errorf("no session lock detection method available")
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
