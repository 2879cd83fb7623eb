package engine

import (
	"math"
	"time"
)

// Stage is the avatar stage derived from the current health state.
type Stage int

const (
	StageRound Stage = iota
	StageSlouch
	StageMelt
	StageFlat
	StageDead
)

func (s Stage) String() string {
	switch s {
	case StageRound:
		return "round"
	case StageSlouch:
		return "slouch"
	case StageMelt:
		return "melt"
	case StageFlat:
		return "flat"
	case StageDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Mode is the current interactive session mode.
type Mode int

const (
	ModeWorking Mode = iota
	ModeLocked
)

func (m Mode) String() string {
	if m == ModeLocked {
		return "locked"
	}
	return "working"
}

// Notice flags a user notification the presentation layer should deliver.
type Notice string

const (
	NoticeNone    Notice = ""
	NoticeHealing Notice = "healing"
	NoticeDeath   Notice = "death"
)

const (
	// MaxHealth is full health; health is clamped to [0, MaxHealth].
	MaxHealth = 100.0
)

// Params are the four tuning knobs, fixed for the process lifetime.
// All values are whole minutes.
type Params struct {
	LimitRound int // continuous work minutes before the avatar starts degrading
	LimitDeath int // continuous work minutes at which health runs out
	MinBreak   int // breaks shorter than this heal nothing
	FullReset  int // breaks at least this long restore full health
}

// DefaultParams mirrors the documented defaults: 45/80/2/15.
func DefaultParams() Params {
	return Params{
		LimitRound: 45,
		LimitDeath: 80,
		MinBreak:   2,
		FullReset:  15,
	}
}

// Update is the rendering directive returned by every engine operation.
// Notice is empty unless this particular update should notify the user.
type Update struct {
	Health       float64
	Stage        Stage
	Mode         Mode
	WorkMinutes  float64
	Notice       Notice
	Healed       float64 // health restored by this update, 0 if none
	BreakMinutes int     // whole minutes of the break just ended, 0 otherwise
}

// Engine folds lock/unlock transitions and elapsed-work ticks into a single
// health value and a derived avatar stage. It is not safe for concurrent
// use; callers must serialize access (see internal/monitor).
type Engine struct {
	params Params
	damage float64 // health lost per minute of continuous work

	health      float64
	mode        Mode
	lockStarted time.Time
	workMinutes float64
	dead        bool
}

// New returns an engine at full health in Working mode. Damage is scaled so
// health runs out exactly when continuous work reaches LimitDeath: the
// health bar is the original fatigue counter mapped onto [0, 100].
func New(params Params) *Engine {
	return &Engine{
		params: params,
		damage: MaxHealth / float64(params.LimitDeath),
		health: MaxHealth,
		mode:   ModeWorking,
	}
}

// WorkTick applies minutes of continuous work as health damage, clamped
// at 0. Reaching 0 kills the avatar and flags a death notice exactly once;
// after that every event except Resurrect is a no-op. Ticks received while
// Locked or Dead are ignored.
func (e *Engine) WorkTick(minutes float64) Update {
	if e.dead || e.mode == ModeLocked || minutes <= 0 {
		return e.update(NoticeNone, 0)
	}

	e.health = clamp(e.health - minutes*e.damage)
	e.workMinutes += minutes

	if e.health == 0 {
		e.dead = true
		return e.update(NoticeDeath, 0)
	}

	return e.update(NoticeNone, 0)
}

// LockStart records the session locking at the given time. No health change
// happens here; healing is computed at unlock from the full break duration,
// so rapid lock/unlock taps cannot be farmed for health.
func (e *Engine) LockStart(at time.Time) Update {
	if e.dead || e.mode == ModeLocked {
		return e.update(NoticeNone, 0)
	}

	e.mode = ModeLocked
	e.lockStarted = at
	return e.update(NoticeNone, 0)
}

// LockEnd closes the current break and applies healing based on its length
// in whole minutes (truncated):
//
//	break < MinBreak:   nothing
//	break >= FullReset: full reset (health 100, work counter cleared)
//	otherwise:          health += sqrt((break-MinBreak)/(FullReset-MinBreak)) * (100-health)
//
// The square-root curve is concave, so the early minutes of a break restore
// more than the later ones. A LockEnd without a preceding LockStart is a
// no-op.
func (e *Engine) LockEnd(at time.Time) Update {
	if e.mode != ModeLocked {
		return e.update(NoticeNone, 0)
	}

	breakMinutes := int(at.Sub(e.lockStarted).Minutes())
	if breakMinutes < 0 {
		breakMinutes = 0
	}
	e.mode = ModeWorking
	e.lockStarted = time.Time{}

	healed := e.applyHealing(breakMinutes)
	u := e.update(NoticeNone, healed)
	u.BreakMinutes = breakMinutes
	if healed > 0 {
		u.Notice = NoticeHealing
	}
	return u
}

// Resurrect restores full health after death. The mandatory real-world ritual
// cannot be verified in software; the caller attests it happened.
func (e *Engine) Resurrect() Update {
	if !e.dead {
		return e.update(NoticeNone, 0)
	}

	healed := MaxHealth - e.health
	e.dead = false
	e.health = MaxHealth
	e.workMinutes = 0
	e.mode = ModeWorking
	e.lockStarted = time.Time{}
	return e.update(NoticeNone, healed)
}

func (e *Engine) applyHealing(breakMinutes int) float64 {
	if breakMinutes < e.params.MinBreak {
		return 0
	}

	before := e.health
	if breakMinutes >= e.params.FullReset {
		e.health = MaxHealth
		e.workMinutes = 0
		return e.health - before
	}

	span := float64(e.params.FullReset - e.params.MinBreak)
	fraction := math.Sqrt(float64(breakMinutes-e.params.MinBreak) / span)
	e.health = clamp(e.health + fraction*(MaxHealth-e.health))
	return e.health - before
}

// Health returns the current health value in [0, 100].
func (e *Engine) Health() float64 { return e.health }

// Mode returns the current session mode.
func (e *Engine) Mode() Mode { return e.mode }

// WorkMinutes returns the minutes of continuous work accumulated since the
// last full reset or resurrect.
func (e *Engine) WorkMinutes() float64 { return e.workMinutes }

// Dead reports whether the avatar has died and awaits Resurrect.
func (e *Engine) Dead() bool { return e.dead }

// Stage returns the avatar stage for the current state.
func (e *Engine) Stage() Stage {
	return DeriveStage(e.health, e.workMinutes, e.params)
}

func (e *Engine) update(notice Notice, healed float64) Update {
	return Update{
		Health:      e.health,
		Stage:       e.Stage(),
		Mode:        e.mode,
		WorkMinutes: e.workMinutes,
		Notice:      notice,
		Healed:      healed,
	}
}

// DeriveStage maps a health value and continuous-work counter to an avatar
// stage. Dead holds exactly when health is 0. The two intermediate stages
// sit at successive midpoints between LimitRound and LimitDeath, so the
// documented defaults (45, 80) degrade at 45, 62.5 and 71.25 minutes.
func DeriveStage(health, workMinutes float64, params Params) Stage {
	if health <= 0 {
		return StageDead
	}

	round := float64(params.LimitRound)
	death := float64(params.LimitDeath)
	slouchUntil := (round + death) / 2
	meltUntil := (slouchUntil + death) / 2

	switch {
	case workMinutes < round:
		return StageRound
	case workMinutes < slouchUntil:
		return StageSlouch
	case workMinutes < meltUntil:
		return StageMelt
	default:
		return StageFlat
	}
}

func clamp(health float64) float64 {
	return math.Max(0, math.Min(health, MaxHealth))
}
