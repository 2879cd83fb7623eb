package session

// LockStatus represents the interactive session's current lock state
type LockStatus struct {
	IsLocked bool
	IdleTime int64 // Idle time in seconds, 0 when unknown
}

// Watcher is the interface all session lock detection backends must satisfy
type Watcher interface {
	// Status returns the current lock state of the interactive session
	Status() (*LockStatus, error)

	// IsAvailable checks if this backend can run on the current system
	IsAvailable() bool

	// Backend returns the backend name ("x11", "wayland" or "fallback")
	Backend() string

	// Close cleans up any resources used by the backend
	Close() error
}
