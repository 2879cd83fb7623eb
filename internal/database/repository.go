package database

import (
	"time"

	"github.com/Arpanmondalz/digital-health-daemon/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for session events
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new session event into the database
func (r *Repository) Create(event *models.SessionEvent) error {
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert session event")
	}
	return nil
}

// GetEventsSince retrieves all session events since a given time
// Simple query that returns raw events - runtime does the processing
func (r *Repository) GetEventsSince(since time.Time) ([]*models.SessionEvent, error) {
	var events []*models.SessionEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query session events")
	}

	return events, nil
}

// GetLatest retrieves the most recent session event
func (r *Repository) GetLatest() (*models.SessionEvent, error) {
	var event models.SessionEvent
	result := r.db.Order("timestamp DESC").First(&event)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// GetBreakSummarySince returns aggregated break statistics since a given time
// Uses SQL aggregation for efficiency - runtime can do additional calculations
func (r *Repository) GetBreakSummarySince(since time.Time) (*models.BreakSummary, error) {
	var summary models.BreakSummary

	result := r.db.Model(&models.SessionEvent{}).
		Select(`COUNT(*) as breaks,
			COALESCE(SUM(break_minutes), 0) as break_minutes,
			COALESCE(MAX(break_minutes), 0) as longest_break,
			COALESCE(SUM(healed), 0) as healed_total,
			COALESCE(SUM(CASE WHEN healed = 0 THEN 1 ELSE 0 END), 0) as wasted_breaks,
			COALESCE(SUM(CASE WHEN healed > 0 AND health_after >= 100 THEN 1 ELSE 0 END), 0) as full_resets`).
		Where("kind = ? AND timestamp >= ?", models.KindUnlock, since).
		Scan(&summary)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query break summary")
	}

	return &summary, nil
}

// CountKindSince counts events of a given kind since a given time
func (r *Repository) CountKindSince(kind string, since time.Time) (int64, error) {
	var count int64
	result := r.db.Model(&models.SessionEvent{}).
		Where("kind = ? AND timestamp >= ?", kind, since).
		Count(&count)

	if result.Error != nil {
		return 0, errors.Wrapf(result.Error, "failed to count %s events", kind)
	}

	return count, nil
}

// SumWorkDamageSince totals the health damage dealt by work ticks since a
// given time; minutes worked is damage divided by the configured rate
func (r *Repository) SumWorkDamageSince(since time.Time) (float64, error) {
	var total float64
	result := r.db.Model(&models.SessionEvent{}).
		Select("COALESCE(SUM(health_before - health_after), 0)").
		Where("kind = ? AND timestamp >= ?", models.KindTick, since).
		Scan(&total)

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to sum work damage")
	}

	return total, nil
}

// DeleteOldEvents deletes events older than a specified date (soft delete)
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.SessionEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all session events from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM session_events")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear session events")
	}
	return nil
}
