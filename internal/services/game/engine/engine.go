package engine

import (
	"context"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"
)

// Random supplies uniform values in [0, 1) for platform placement.
type Random interface {
	Float64() float64
}

// ScoreSubmitter receives the final score of a finished run. Implementations
// must not block the caller.
type ScoreSubmitter interface {
	SubmitScore(identity string, score int)
}

// BestStore persists the device-local best score.
type BestStore interface {
	SaveBest(ctx context.Context, score int) error
}

// Config wires an Engine to its collaborators. Zero values are replaced with
// defaults: DefaultTuning, a time-seeded Random, and no-op collaborators.
type Config struct {
	Tuning    Tuning
	Random    Random
	Submitter ScoreSubmitter
	Bests     BestStore
	// Best is the previously persisted local best.
	Best int
	// Identity is the leaderboard identity; empty means anonymous.
	Identity string

	OnScore    func(score int)
	OnGameOver func(finalScore int)
}

// Engine is the jump game simulation.
type Engine struct {
	tuning    Tuning
	rng       Random
	submitter ScoreSubmitter
	bests     BestStore

	onScore    func(int)
	onGameOver func(int)

	identity string

	phase     Phase
	tick      uint64
	player    Body
	platforms []Platform
	climbed   float64
	score     int
	best      int

	left  atomic.Bool
	right atomic.Bool
}

// New builds an engine in the start phase.
func New(cfg Config) *Engine {
	tuning := cfg.Tuning
	if tuning == (Tuning{}) {
		tuning = DefaultTuning()
	}
	rng := cfg.Random
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		tuning:     tuning,
		rng:        rng,
		submitter:  cfg.Submitter,
		bests:      cfg.Bests,
		onScore:    cfg.OnScore,
		onGameOver: cfg.OnGameOver,
		identity:   strings.TrimSpace(cfg.Identity),
		phase:      PhaseStart,
		best:       cfg.Best,
		player:     Body{Width: tuning.PlayerWidth, Height: tuning.PlayerHeight},
	}
}

// Phase returns the current state machine position.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Score returns the score of the current run.
func (e *Engine) Score() int {
	return e.score
}

// Best returns the local best score.
func (e *Engine) Best() int {
	return e.best
}

// Tuning returns the constants the engine runs with.
func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// SetIdentity changes the leaderboard identity used on game over.
func (e *Engine) SetIdentity(identity string) {
	e.identity = strings.TrimSpace(identity)
}

// SetLeft records whether the left input is held. Safe for concurrent use.
func (e *Engine) SetLeft(held bool) {
	e.left.Store(held)
}

// SetRight records whether the right input is held. Safe for concurrent use.
func (e *Engine) SetRight(held bool) {
	e.right.Store(held)
}

// Start moves start -> playing with a fresh run.
func (e *Engine) Start() bool {
	if e.phase != PhaseStart {
		return false
	}
	e.reset()
	return true
}

// Restart moves gameover -> playing with a fresh run.
func (e *Engine) Restart() bool {
	if e.phase != PhaseGameOver {
		return false
	}
	e.reset()
	return true
}

// TogglePause flips playing <-> paused.
func (e *Engine) TogglePause() bool {
	switch e.phase {
	case PhasePlaying:
		e.phase = PhasePaused
	case PhasePaused:
		e.phase = PhasePlaying
	default:
		return false
	}
	return true
}

// ReturnToMenu moves any phase back to start.
func (e *Engine) ReturnToMenu() {
	e.phase = PhaseStart
}

// Snapshot copies the state for a renderer.
func (e *Engine) Snapshot() Snapshot {
	platforms := make([]Platform, len(e.platforms))
	copy(platforms, e.platforms)
	return Snapshot{
		Tick:      e.tick,
		Phase:     e.phase,
		Player:    e.player,
		Platforms: platforms,
		Score:     e.score,
		Best:      e.best,
		Climbed:   e.climbed,
	}
}

func (e *Engine) reset() {
	t := e.tuning
	e.player = Body{
		X:      t.SpawnX,
		Y:      t.SpawnY,
		VY:     t.JumpForce,
		Width:  t.PlayerWidth,
		Height: t.PlayerHeight,
	}
	e.platforms = e.initialPlatforms()
	e.climbed = 0
	e.score = 0
	e.tick = 0
	e.phase = PhasePlaying
}

func (e *Engine) currentScore() int {
	return int(math.Floor(e.climbed / e.tuning.ScoreDivisor))
}

func (e *Engine) finish() {
	e.phase = PhaseGameOver
	final := e.currentScore()
	e.score = final

	if final > e.best {
		e.best = final
		if e.bests != nil {
			if err := e.bests.SaveBest(context.Background(), final); err != nil {
				log.Printf("engine: save local best score=%d: %v", final, err)
			}
		}
	}
	if e.onGameOver != nil {
		e.onGameOver(final)
	}
	if e.identity != "" && final > 0 && e.submitter != nil {
		e.submitter.SubmitScore(e.identity, final)
	}
}
