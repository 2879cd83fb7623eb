package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Arpanmondalz/digital-health-daemon/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	return NewRepository(db)
}

func TestCreateAndGetLatest(t *testing.T) {
	repo := newTestRepo(t)

	latest, err := repo.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest() error: %v", err)
	}
	if latest != nil {
		t.Fatalf("GetLatest() on empty db = %+v, want nil", latest)
	}

	now := time.Now()
	events := []*models.SessionEvent{
		{Timestamp: now.Add(-2 * time.Minute), Kind: models.KindTick, HealthBefore: 100, HealthAfter: 99, Stage: "round"},
		{Timestamp: now.Add(-time.Minute), Kind: models.KindLock, HealthBefore: 99, HealthAfter: 99, Stage: "round"},
		{Timestamp: now, Kind: models.KindUnlock, HealthBefore: 99, HealthAfter: 100, Stage: "round", BreakMinutes: 16, Healed: 1},
	}
	for _, e := range events {
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	latest, err = repo.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest() error: %v", err)
	}
	if latest == nil || latest.Kind != models.KindUnlock {
		t.Errorf("GetLatest() = %+v, want the unlock event", latest)
	}
}

func TestGetEventsSince(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	for i := 0; i < 5; i++ {
		event := &models.SessionEvent{
			Timestamp: now.Add(time.Duration(-i) * time.Hour),
			Kind:      models.KindTick,
			Stage:     "round",
		}
		if err := repo.Create(event); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	events, err := repo.GetEventsSince(now.Add(-90 * time.Minute))
	if err != nil {
		t.Fatalf("GetEventsSince() error: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("GetEventsSince() returned %d events, want 2", len(events))
	}

	// Ascending by timestamp.
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Error("events not ordered by timestamp")
		}
	}
}

func TestGetBreakSummarySince(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	unlocks := []*models.SessionEvent{
		{Timestamp: now, Kind: models.KindUnlock, HealthBefore: 60, HealthAfter: 60, BreakMinutes: 1, Healed: 0, Stage: "round"},
		{Timestamp: now, Kind: models.KindUnlock, HealthBefore: 60, HealthAfter: 80, BreakMinutes: 5, Healed: 20, Stage: "round"},
		{Timestamp: now, Kind: models.KindUnlock, HealthBefore: 70, HealthAfter: 100, BreakMinutes: 20, Healed: 30, Stage: "round"},
		// Outside the window, must be excluded.
		{Timestamp: now.Add(-48 * time.Hour), Kind: models.KindUnlock, BreakMinutes: 60, Healed: 50, Stage: "round"},
		// Not an unlock, must be excluded.
		{Timestamp: now, Kind: models.KindTick, HealthBefore: 80, HealthAfter: 79, Stage: "round"},
	}
	for _, e := range unlocks {
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	summary, err := repo.GetBreakSummarySince(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetBreakSummarySince() error: %v", err)
	}

	if summary.Breaks != 3 {
		t.Errorf("Breaks = %d, want 3", summary.Breaks)
	}
	if summary.BreakMinutes != 26 {
		t.Errorf("BreakMinutes = %d, want 26", summary.BreakMinutes)
	}
	if summary.LongestBreak != 20 {
		t.Errorf("LongestBreak = %d, want 20", summary.LongestBreak)
	}
	if summary.HealedTotal != 50 {
		t.Errorf("HealedTotal = %v, want 50", summary.HealedTotal)
	}
	if summary.WastedBreaks != 1 {
		t.Errorf("WastedBreaks = %d, want 1", summary.WastedBreaks)
	}
	if summary.FullResets != 1 {
		t.Errorf("FullResets = %d, want 1", summary.FullResets)
	}
}

func TestCountKindSince(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	kinds := []string{models.KindDeath, models.KindDeath, models.KindResurrect, models.KindTick}
	for _, k := range kinds {
		if err := repo.Create(&models.SessionEvent{Timestamp: now, Kind: k, Stage: "dead"}); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	deaths, err := repo.CountKindSince(models.KindDeath, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountKindSince() error: %v", err)
	}
	if deaths != 2 {
		t.Errorf("deaths = %d, want 2", deaths)
	}
}

func TestSumWorkDamageSince(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	ticks := []*models.SessionEvent{
		{Timestamp: now, Kind: models.KindTick, HealthBefore: 100, HealthAfter: 99, Stage: "round"},
		{Timestamp: now, Kind: models.KindTick, HealthBefore: 99, HealthAfter: 97, Stage: "round"},
		{Timestamp: now, Kind: models.KindUnlock, HealthBefore: 97, HealthAfter: 100, Healed: 3, Stage: "round"},
	}
	for _, e := range ticks {
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	total, err := repo.SumWorkDamageSince(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("SumWorkDamageSince() error: %v", err)
	}
	if total != 3 {
		t.Errorf("SumWorkDamageSince() = %v, want 3", total)
	}
}

func TestClearAndDeleteOld(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	if err := repo.Create(&models.SessionEvent{Timestamp: now.Add(-48 * time.Hour), Kind: models.KindTick, Stage: "round"}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := repo.Create(&models.SessionEvent{Timestamp: now, Kind: models.KindTick, Stage: "round"}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	deleted, err := repo.DeleteOldEvents(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldEvents() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteOldEvents() = %d, want 1", deleted)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	events, err := repo.GetEventsSince(now.Add(-72 * time.Hour))
	if err != nil {
		t.Fatalf("GetEventsSince() error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("%d events after Clear(), want 0", len(events))
	}
}
