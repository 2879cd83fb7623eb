package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/Arpanmondalz/digital-health-daemon/internal/config"
	"github.com/Arpanmondalz/digital-health-daemon/internal/models"
	"github.com/Arpanmondalz/digital-health-daemon/internal/notify"
	"github.com/Arpanmondalz/digital-health-daemon/pkg/session"
)

type fakeWatcher struct {
	mu     sync.Mutex
	locked bool
	err    error
}

func (f *fakeWatcher) Status() (*session.LockStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &session.LockStatus{IsLocked: f.locked}, nil
}

func (f *fakeWatcher) IsAvailable() bool { return true }
func (f *fakeWatcher) Backend() string   { return "fake" }
func (f *fakeWatcher) Close() error      { return nil }

func (f *fakeWatcher) setLocked(locked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = locked
}

type memStore struct {
	mu     sync.Mutex
	events []*models.SessionEvent
	errs   []*models.ErrorLog
}

func (m *memStore) Create(e *models.SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memStore) CreateErrorLog(e *models.ErrorLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, e)
	return nil
}

func (m *memStore) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Kind
	}
	return out
}

func newTestService(w session.Watcher) (*Service, *memStore, *notify.Memory) {
	cfg := config.Default()
	store := &memStore{}
	mem := &notify.Memory{}
	return NewService(cfg, store, w, mem), store, mem
}

func TestPollOnceAppliesWorkDamage(t *testing.T) {
	svc, store, _ := newTestService(&fakeWatcher{})

	now := time.Now()
	if err := svc.pollOnce(now); err != nil {
		t.Fatalf("pollOnce() error: %v", err)
	}

	snap := svc.Snapshot()
	if snap.Health != 98.75 {
		t.Errorf("Health = %v after one tick, want 98.75", snap.Health)
	}
	if snap.WorkMinutes != 1 {
		t.Errorf("WorkMinutes = %v, want 1", snap.WorkMinutes)
	}

	kinds := store.kinds()
	if len(kinds) != 1 || kinds[0] != models.KindTick {
		t.Errorf("stored kinds = %v, want [tick]", kinds)
	}
}

func TestPollOnceLockUnlockCycle(t *testing.T) {
	w := &fakeWatcher{}
	svc, store, mem := newTestService(w)

	now := time.Now()

	// Work 40 minutes.
	for i := 0; i < 40; i++ {
		now = now.Add(time.Minute)
		if err := svc.pollOnce(now); err != nil {
			t.Fatalf("pollOnce() error: %v", err)
		}
	}
	if snap := svc.Snapshot(); snap.Health != 50 {
		t.Fatalf("Health = %v after 40 ticks, want 50", snap.Health)
	}

	// Lock for 20 minutes.
	w.setLocked(true)
	now = now.Add(time.Minute)
	if err := svc.pollOnce(now); err != nil {
		t.Fatalf("pollOnce() error: %v", err)
	}
	if snap := svc.Snapshot(); snap.Mode != "locked" {
		t.Fatalf("Mode = %s while locked, want locked", snap.Mode)
	}

	// Health must not change while locked.
	for i := 0; i < 19; i++ {
		now = now.Add(time.Minute)
		if err := svc.pollOnce(now); err != nil {
			t.Fatalf("pollOnce() error: %v", err)
		}
	}
	if snap := svc.Snapshot(); snap.Health != 50 {
		t.Fatalf("Health = %v while locked, want 50", snap.Health)
	}

	// Unlock: 20 minute break fully resets, then the same cycle ticks once.
	w.setLocked(false)
	now = now.Add(time.Minute)
	if err := svc.pollOnce(now); err != nil {
		t.Fatalf("pollOnce() error: %v", err)
	}

	snap := svc.Snapshot()
	if snap.Health != 98.75 {
		t.Errorf("Health = %v after full reset plus one tick, want 98.75", snap.Health)
	}
	if snap.WorkMinutes != 1 {
		t.Errorf("WorkMinutes = %v after full reset plus one tick, want 1", snap.WorkMinutes)
	}

	var sawLock, sawUnlock bool
	for _, k := range store.kinds() {
		switch k {
		case models.KindLock:
			sawLock = true
		case models.KindUnlock:
			sawUnlock = true
		}
	}
	if !sawLock || !sawUnlock {
		t.Errorf("stored kinds missing lock/unlock: %v", store.kinds())
	}

	var healed bool
	for _, e := range mem.Entries() {
		if e.Title == "Perfect Break" {
			healed = true
		}
	}
	if !healed {
		t.Errorf("no Perfect Break notification, got %v", mem.Entries())
	}
}

func TestShortBreakDoesNotNotify(t *testing.T) {
	w := &fakeWatcher{}
	svc, _, mem := newTestService(w)

	now := time.Now()
	for i := 0; i < 10; i++ {
		now = now.Add(time.Minute)
		if err := svc.pollOnce(now); err != nil {
			t.Fatal(err)
		}
	}

	w.setLocked(true)
	now = now.Add(time.Minute)
	if err := svc.pollOnce(now); err != nil {
		t.Fatal(err)
	}

	w.setLocked(false)
	now = now.Add(time.Minute)
	if err := svc.pollOnce(now); err != nil {
		t.Fatal(err)
	}

	for _, e := range mem.Entries() {
		if e.Title == "Welcome Back" || e.Title == "Perfect Break" {
			t.Errorf("healing notified after a 1 minute break: %+v", e)
		}
	}
}

func TestDeathNotifiedOnce(t *testing.T) {
	svc, store, mem := newTestService(&fakeWatcher{})

	now := time.Now()
	for i := 0; i < 120; i++ {
		now = now.Add(time.Minute)
		if err := svc.pollOnce(now); err != nil {
			t.Fatal(err)
		}
	}

	snap := svc.Snapshot()
	if !snap.Dead || snap.Stage != "dead" {
		t.Errorf("snapshot = %+v, want dead", snap)
	}

	rips := 0
	for _, e := range mem.Entries() {
		if e.Title == "RIP" {
			rips++
		}
	}
	if rips != 1 {
		t.Errorf("RIP notifications = %d, want exactly 1", rips)
	}

	deaths := 0
	for _, k := range store.kinds() {
		if k == models.KindDeath {
			deaths++
		}
	}
	if deaths != 1 {
		t.Errorf("death rows = %d, want exactly 1", deaths)
	}
}

func TestDeadAndLockedRecordsNoEvents(t *testing.T) {
	w := &fakeWatcher{}
	svc, store, _ := newTestService(w)

	// Work to death.
	now := time.Now()
	for i := 0; i < 100; i++ {
		now = now.Add(time.Minute)
		if err := svc.pollOnce(now); err != nil {
			t.Fatal(err)
		}
	}
	if snap := svc.Snapshot(); !snap.Dead {
		t.Fatal("avatar should be dead after 100 minutes of work")
	}
	rows := len(store.kinds())

	// Locking the screen over a dead avatar is rejected by the engine, so
	// no history rows may accumulate however long it stays locked.
	w.setLocked(true)
	for i := 0; i < 30; i++ {
		now = now.Add(time.Minute)
		if err := svc.pollOnce(now); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(store.kinds()); got != rows {
		t.Errorf("dead+locked polling added %d rows: %v", got-rows, store.kinds()[rows:])
	}

	// Unlocking afterwards adds nothing either.
	w.setLocked(false)
	now = now.Add(time.Minute)
	if err := svc.pollOnce(now); err != nil {
		t.Fatal(err)
	}
	if got := len(store.kinds()); got != rows {
		t.Errorf("unlock while dead added %d rows", got-rows)
	}
}

func TestResurrect(t *testing.T) {
	svc, store, _ := newTestService(&fakeWatcher{})

	if err := svc.Resurrect(); err == nil {
		t.Error("Resurrect() while alive should fail")
	}

	now := time.Now()
	for i := 0; i < 100; i++ {
		now = now.Add(time.Minute)
		if err := svc.pollOnce(now); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.Resurrect(); err != nil {
		t.Fatalf("Resurrect() error: %v", err)
	}

	snap := svc.Snapshot()
	if snap.Health != 100 || snap.Stage != "round" || snap.Dead {
		t.Errorf("snapshot after resurrect = %+v", snap)
	}

	var sawResurrect bool
	for _, k := range store.kinds() {
		if k == models.KindResurrect {
			sawResurrect = true
		}
	}
	if !sawResurrect {
		t.Error("no resurrect row stored")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(&fakeWatcher{})

	if svc.IsRunning() {
		t.Error("IsRunning() = true before Start")
	}

	// Stop before Start, and twice in a row, must not panic or close
	// the stop channel more than once.
	svc.Stop()
	svc.Stop()

	if svc.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestWatcherErrorsAreLoggedNotFatal(t *testing.T) {
	w := &fakeWatcher{err: errStatus}
	svc, store, _ := newTestService(w)

	if err := svc.pollOnce(time.Now()); err == nil {
		t.Error("pollOnce() should surface watcher error")
	} else {
		svc.storeError(models.ErrorSourceWatcher, err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.errs) != 1 {
		t.Errorf("stored error logs = %d, want 1", len(store.errs))
	} else if store.errs[0].Source != models.ErrorSourceWatcher {
		t.Errorf("error source = %q, want %q", store.errs[0].Source, models.ErrorSourceWatcher)
	}

	if snap := svc.Snapshot(); snap.Health != 100 {
		t.Errorf("Health = %v after watcher error, want unchanged 100", snap.Health)
	}
}

var errStatus = &statusError{}

type statusError struct{}

func (*statusError) Error() string { return "lock state unavailable" }
