package models

import (
	"time"

	"gorm.io/gorm"
)

// Event kinds recorded by the monitor. One row per engine transition.
const (
	KindTick      = "tick"      // work damage applied while unlocked
	KindLock      = "lock"      // session locked, break started
	KindUnlock    = "unlock"    // session unlocked, healing applied
	KindDeath     = "death"     // health reached zero
	KindResurrect = "resurrect" // caller-attested recovery ritual
)

// SessionEvent is the history row written for every engine transition.
// It is an audit log for reports only; engine state is never restored
// from it across restarts.
type SessionEvent struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	Kind         string         `gorm:"not null;index" json:"kind"`
	HealthBefore float64        `gorm:"not null" json:"health_before"`
	HealthAfter  float64        `gorm:"not null" json:"health_after"`
	Stage        string         `gorm:"not null" json:"stage"`
	WorkMinutes  float64        `gorm:"not null;default:0" json:"work_minutes"`
	BreakMinutes int            `gorm:"not null;default:0" json:"break_minutes"` // whole minutes, unlock rows only
	Healed       float64        `gorm:"not null;default:0" json:"healed"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BreakSummary aggregates the breaks taken within a report period.
type BreakSummary struct {
	Breaks        int     `json:"breaks"`
	BreakMinutes  int     `json:"break_minutes"`
	LongestBreak  int     `json:"longest_break"`
	HealedTotal   float64 `json:"healed_total"`
	WastedBreaks  int     `json:"wasted_breaks"` // breaks too short to heal
	FullResets    int     `json:"full_resets"`
	AverageLength float64 `json:"average_length,omitempty"`
}

// ReportPeriod is the time range a report covers.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

// Report is the aggregate view of a period's work/break cadence.
type Report struct {
	Period      ReportPeriod `json:"period"`
	Breaks      BreakSummary `json:"breaks"`
	WorkMinutes float64      `json:"work_minutes"`
	Deaths      int          `json:"deaths"`
	Resurrects  int          `json:"resurrects"`
	GeneratedAt time.Time    `json:"generated_at"`
}
