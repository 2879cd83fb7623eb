package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Arpanmondalz/digital-health-daemon/internal/config"
	"github.com/Arpanmondalz/digital-health-daemon/internal/engine"
	"github.com/Arpanmondalz/digital-health-daemon/internal/models"
	"github.com/Arpanmondalz/digital-health-daemon/internal/notify"
	"github.com/Arpanmondalz/digital-health-daemon/pkg/session"
)

// EventStore is the slice of the repository the monitor writes through.
type EventStore interface {
	Create(event *models.SessionEvent) error
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// Service owns the poll ticker and the lock watcher and is the only writer
// to the health engine. The web handler and the resurrect signal path go
// through Snapshot/Resurrect, which share the same mutex, so every event is
// folded in atomically.
type Service struct {
	config   *config.Config
	store    EventStore
	watcher  session.Watcher
	notifier notify.Notifier

	mu     sync.Mutex
	engine *engine.Engine

	stopChan chan struct{}
	running  bool
}

// Snapshot is a point-in-time copy of the engine state for status surfaces.
type Snapshot struct {
	Health      float64   `json:"health"`
	Stage       string    `json:"stage"`
	Mode        string    `json:"mode"`
	WorkMinutes float64   `json:"work_minutes"`
	Dead        bool      `json:"dead"`
	SafeMinutes float64   `json:"safe_minutes"` // healthy work minutes left before degrading
	TakenAt     time.Time `json:"taken_at"`
}

func NewService(cfg *config.Config, store EventStore, w session.Watcher, n notify.Notifier) *Service {
	params := engine.Params{
		LimitRound: cfg.LimitRoundMinutes(),
		LimitDeath: cfg.LimitDeathMinutes(),
		MinBreak:   cfg.MinBreakMinutes(),
		FullReset:  cfg.FullResetMinutes(),
	}

	return &Service{
		config:   cfg,
		store:    store,
		watcher:  w,
		notifier: n,
		engine:   engine.New(params),
		stopChan: make(chan struct{}),
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("monitor is already running")
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("Starting monitor with %v tick interval", s.config.Monitor.TickInterval)

	ticker := time.NewTicker(s.config.Monitor.TickInterval)
	defer ticker.Stop()

	// Establish the initial lock state without applying work damage, so a
	// daemon started on a locked screen begins a break immediately.
	if status, err := s.watcher.Status(); err != nil {
		s.storeError(models.ErrorSourceWatcher, fmt.Errorf("failed to get initial lock state: %w", err))
	} else if status.IsLocked {
		s.mu.Lock()
		u := s.engine.LockStart(time.Now())
		s.record(models.KindLock, u.Health, u, 0, time.Now())
		s.mu.Unlock()
		log.Println("Session already locked at startup")
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Monitor stopped by context")
			s.setRunning(false)
			return ctx.Err()

		case <-s.stopChan:
			log.Println("Monitor stopped")
			s.setRunning(false)
			return nil

		case <-ticker.C:
			if err := s.pollOnce(time.Now()); err != nil {
				s.storeError(models.ErrorSourceWatcher, err)
			}
		}
	}
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopChan)
		s.running = false
	}
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) setRunning(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = v
}

// pollOnce reads the lock state and folds the elapsed interval into the
// engine: lock/unlock edges first, then work damage while unlocked. This is
// the same cadence the original polling loop used, so a tick lands in the
// same cycle the session unlocks.
func (s *Service) pollOnce(now time.Time) error {
	status, err := s.watcher.Status()
	if err != nil {
		return fmt.Errorf("failed to get lock state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if status.IsLocked {
		if s.engine.Mode() == engine.ModeWorking {
			before := s.engine.Health()
			u := s.engine.LockStart(now)
			// LockStart is a no-op while dead; only record accepted
			// transitions so the history holds no phantom rows.
			if u.Mode == engine.ModeLocked {
				log.Printf("Session locked (health: %.0f)", u.Health)
				s.record(models.KindLock, before, u, 0, now)
			}
		}
		return nil
	}

	if s.engine.Mode() == engine.ModeLocked {
		before := s.engine.Health()
		u := s.engine.LockEnd(now)
		log.Printf("Session unlocked after %dm break (health: %.0f -> %.0f)", u.BreakMinutes, before, u.Health)
		s.record(models.KindUnlock, before, u, u.BreakMinutes, now)
		s.dispatch(u)
	}

	before := s.engine.Health()
	u := s.engine.WorkTick(s.config.Monitor.TickInterval.Minutes())
	if u.Health != before || u.Notice != engine.NoticeNone {
		s.record(models.KindTick, before, u, 0, now)
	}
	if u.Notice == engine.NoticeDeath {
		log.Printf("Health reached zero after %.0f minutes of work", u.WorkMinutes)
		s.record(models.KindDeath, 0, u, 0, now)
	}
	s.dispatch(u)

	return nil
}

// Snapshot returns a copy of the current engine state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	safe := float64(s.config.LimitRoundMinutes()) - s.engine.WorkMinutes()
	if safe < 0 {
		safe = 0
	}

	return Snapshot{
		Health:      s.engine.Health(),
		Stage:       s.engine.Stage().String(),
		Mode:        s.engine.Mode().String(),
		WorkMinutes: s.engine.WorkMinutes(),
		Dead:        s.engine.Dead(),
		SafeMinutes: safe,
		TakenAt:     time.Now(),
	}
}

// Resurrect performs the caller-attested recovery ritual. Returns an error
// when the avatar is not dead.
func (s *Service) Resurrect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.Dead() {
		return fmt.Errorf("nothing to resurrect: health is %.0f", s.engine.Health())
	}

	now := time.Now()
	u := s.engine.Resurrect()
	log.Println("Resurrected after ritual")
	s.record(models.KindResurrect, 0, u, 0, now)

	s.notify("Resurrected",
		fmt.Sprintf("%s is back. You have %d mins of healthy work.",
			s.config.Notify.PetName, s.config.LimitRoundMinutes()))

	return nil
}

// dispatch turns an engine notice into a user notification. Caller holds s.mu.
func (s *Service) dispatch(u engine.Update) {
	switch u.Notice {
	case engine.NoticeDeath:
		s.notify("RIP", fmt.Sprintf("%s has died of neglect. Perform the ritual to resurrect.",
			s.config.Notify.PetName))

	case engine.NoticeHealing:
		safe := float64(s.config.LimitRoundMinutes()) - u.WorkMinutes
		if safe < 0 {
			safe = 0
		}
		if u.Health >= engine.MaxHealth {
			s.notify("Perfect Break", fmt.Sprintf("Fully rested! You have %d mins of healthy work.",
				s.config.LimitRoundMinutes()))
		} else {
			s.notify("Welcome Back", fmt.Sprintf("Recovered %.0f HP. You have %.0f mins of healthy work.",
				u.Healed, safe))
		}
	}
}

func (s *Service) notify(title, body string) {
	if err := s.notifier.Notify(title, body); err != nil {
		log.Printf("Notification failed: %v", err)
		s.storeError(models.ErrorSourceNotify, err)
	}
}

// record persists one engine transition. Caller holds s.mu.
func (s *Service) record(kind string, healthBefore float64, u engine.Update, breakMinutes int, at time.Time) {
	event := &models.SessionEvent{
		Timestamp:    at,
		Kind:         kind,
		HealthBefore: healthBefore,
		HealthAfter:  u.Health,
		Stage:        u.Stage.String(),
		WorkMinutes:  u.WorkMinutes,
		BreakMinutes: breakMinutes,
		Healed:       u.Healed,
	}

	if err := s.store.Create(event); err != nil {
		log.Printf("Failed to store %s event: %v", kind, err)
	}
}

func (s *Service) storeError(source string, err error) {
	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		Source:    source,
		ErrorMsg:  err.Error(),
	}

	if dbErr := s.store.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	} else {
		log.Printf("Error logged to database: %v", err)
	}
}
