package engine

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
)

type fixedRandom struct {
	value float64
}

func (r fixedRandom) Float64() float64 { return r.value }

type recordingSubmitter struct {
	identities []string
	scores     []int
}

func (s *recordingSubmitter) SubmitScore(identity string, score int) {
	s.identities = append(s.identities, identity)
	s.scores = append(s.scores, score)
}

type recordingBests struct {
	saved []int
	err   error
}

func (s *recordingBests) SaveBest(_ context.Context, score int) error {
	s.saved = append(s.saved, score)
	return s.err
}

func newTestEngine(cfg Config) *Engine {
	if cfg.Random == nil {
		cfg.Random = fixedRandom{value: 0.5}
	}
	return New(cfg)
}

// forceFall puts the player just above the bottom edge, falling, with nothing
// to land on.
func forceFall(e *Engine) {
	e.platforms = nil
	e.player.Y = 590
	e.player.VY = 20
}

func TestNewEngineStartsInMenu(t *testing.T) {
	e := newTestEngine(Config{})
	if e.Phase() != PhaseStart {
		t.Fatalf("phase = %q, want start", e.Phase())
	}
	e.Tick()
	if snap := e.Snapshot(); snap.Tick != 0 {
		t.Fatalf("tick = %d, want 0 before start", snap.Tick)
	}
}

func TestStartResetsRun(t *testing.T) {
	e := newTestEngine(Config{})
	if !e.Start() {
		t.Fatal("expected start to succeed")
	}

	snap := e.Snapshot()
	if snap.Phase != PhasePlaying {
		t.Fatalf("phase = %q, want playing", snap.Phase)
	}
	if snap.Player.X != 180 || snap.Player.Y != 500 || snap.Player.VY != -15 {
		t.Fatalf("player = %+v, want spawn (180,500) vy -15", snap.Player)
	}
	if len(snap.Platforms) != 7 {
		t.Fatalf("platforms = %d, want 7", len(snap.Platforms))
	}
	first := snap.Platforms[0]
	if first.X != 165 || first.Y != 550 || first.Width != 70 {
		t.Fatalf("spawn platform = %+v, want (165,550) width 70", first)
	}
	for i, p := range snap.Platforms[1:] {
		wantY := 550 - float64(i+1)*80
		if p.Y != wantY {
			t.Fatalf("platform %d y = %v, want %v", i+1, p.Y, wantY)
		}
		if p.X != 0.5*(400-70) {
			t.Fatalf("platform %d x = %v, want %v", i+1, p.X, 0.5*(400-70))
		}
	}
	if snap.Score != 0 || snap.Climbed != 0 {
		t.Fatalf("score = %d climbed = %v, want zero", snap.Score, snap.Climbed)
	}
}

func TestStartOnlyFromMenu(t *testing.T) {
	e := newTestEngine(Config{})
	e.Start()
	if e.Start() {
		t.Fatal("expected start to be rejected while playing")
	}
	if e.Restart() {
		t.Fatal("expected restart to be rejected while playing")
	}
}

func TestPauseSuspendsTicks(t *testing.T) {
	e := newTestEngine(Config{})
	e.Start()
	e.Tick()

	if !e.TogglePause() {
		t.Fatal("expected pause to succeed")
	}
	before := e.Snapshot()
	for i := 0; i < 10; i++ {
		e.Tick()
	}
	after := e.Snapshot()
	if after.Tick != before.Tick || after.Player != before.Player {
		t.Fatalf("paused engine advanced: before %+v after %+v", before.Player, after.Player)
	}

	if !e.TogglePause() || e.Phase() != PhasePlaying {
		t.Fatalf("phase = %q, want playing after resume", e.Phase())
	}
	e.Tick()
	if e.Snapshot().Tick != before.Tick+1 {
		t.Fatal("expected tick to advance after resume")
	}
}

func TestTogglePauseRejectedOutsideRun(t *testing.T) {
	e := newTestEngine(Config{})
	if e.TogglePause() {
		t.Fatal("expected pause to be rejected in menu")
	}
}

func TestReturnToMenuStopsRun(t *testing.T) {
	e := newTestEngine(Config{})
	e.Start()
	e.ReturnToMenu()
	if e.Phase() != PhaseStart {
		t.Fatalf("phase = %q, want start", e.Phase())
	}
	tick := e.Snapshot().Tick
	e.Tick()
	if e.Snapshot().Tick != tick {
		t.Fatal("expected no tick in menu")
	}
}

func TestGameOverSubmitsAndPersistsBest(t *testing.T) {
	submitter := &recordingSubmitter{}
	bests := &recordingBests{}
	var overScore = -1
	e := newTestEngine(Config{
		Submitter:  submitter,
		Bests:      bests,
		Best:       50,
		Identity:   " 0xABC ",
		OnGameOver: func(score int) { overScore = score },
	})
	e.Start()
	e.climbed = 1234
	forceFall(e)

	e.Tick()

	if e.Phase() != PhaseGameOver {
		t.Fatalf("phase = %q, want gameover", e.Phase())
	}
	if e.Score() != 123 {
		t.Fatalf("final score = %d, want 123", e.Score())
	}
	if overScore != 123 {
		t.Fatalf("game over callback score = %d, want 123", overScore)
	}
	if len(submitter.scores) != 1 || submitter.scores[0] != 123 || submitter.identities[0] != "0xABC" {
		t.Fatalf("submissions = %v %v", submitter.identities, submitter.scores)
	}
	if len(bests.saved) != 1 || bests.saved[0] != 123 || e.Best() != 123 {
		t.Fatalf("saved bests = %v best = %d", bests.saved, e.Best())
	}

	tick := e.Snapshot().Tick
	e.Tick()
	if e.Snapshot().Tick != tick {
		t.Fatal("expected no ticks after game over")
	}
}

func TestGameOverSkipsSubmitWithoutIdentityOrScore(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		climbed  float64
	}{
		{name: "anonymous", identity: "", climbed: 500},
		{name: "zero score", identity: "0xabc", climbed: 9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			submitter := &recordingSubmitter{}
			e := newTestEngine(Config{Submitter: submitter, Identity: tc.identity})
			e.Start()
			e.climbed = tc.climbed
			forceFall(e)
			e.Tick()
			if e.Phase() != PhaseGameOver {
				t.Fatalf("phase = %q, want gameover", e.Phase())
			}
			if len(submitter.scores) != 0 {
				t.Fatalf("unexpected submissions %v", submitter.scores)
			}
		})
	}
}

func TestGameOverKeepsHigherBest(t *testing.T) {
	bests := &recordingBests{}
	e := newTestEngine(Config{Bests: bests, Best: 500})
	e.Start()
	e.climbed = 100
	forceFall(e)
	e.Tick()
	if len(bests.saved) != 0 || e.Best() != 500 {
		t.Fatalf("saved = %v best = %d, want untouched 500", bests.saved, e.Best())
	}
}

func TestGameOverLogsBestStoreFailure(t *testing.T) {
	bests := &recordingBests{err: errors.New("disk full")}
	e := newTestEngine(Config{Bests: bests})
	e.Start()
	e.climbed = 100
	forceFall(e)
	e.Tick()
	if e.Best() != 10 {
		t.Fatalf("best = %d, want 10 kept in memory", e.Best())
	}
}

func TestRestartResetsAfterGameOver(t *testing.T) {
	e := newTestEngine(Config{})
	e.Start()
	e.climbed = 400
	forceFall(e)
	e.Tick()

	if !e.Restart() {
		t.Fatal("expected restart to succeed")
	}
	snap := e.Snapshot()
	if snap.Phase != PhasePlaying || snap.Score != 0 || snap.Climbed != 0 || snap.Tick != 0 {
		t.Fatalf("snapshot after restart = %+v", snap)
	}
	if snap.Player.X != 180 || snap.Player.Y != 500 || snap.Player.VY != -15 {
		t.Fatalf("player = %+v, want spawn", snap.Player)
	}
	if len(snap.Platforms) != 7 {
		t.Fatalf("platforms = %d, want 7", len(snap.Platforms))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(Config{})
	e.Start()
	snap := e.Snapshot()
	snap.Platforms[0].Y = -1
	if e.platforms[0].Y == -1 {
		t.Fatal("snapshot aliases engine platforms")
	}
}

func TestRunInvariantsHoldOverManyTicks(t *testing.T) {
	e := New(Config{Random: rand.New(rand.NewSource(7))})
	e.Start()
	rng := rand.New(rand.NewSource(11))

	previousClimbed := 0.0
	runs := 0
	for i := 0; i < 20000; i++ {
		e.SetLeft(rng.Intn(4) == 0)
		e.SetRight(rng.Intn(4) == 0)
		before := e.climbed
		e.Tick()

		switch e.Phase() {
		case PhaseGameOver:
			if e.Score() != int(math.Floor(e.climbed/10)) {
				t.Fatalf("final score = %d, climbed = %v", e.Score(), e.climbed)
			}
			e.Restart()
			runs++
			previousClimbed = 0
			continue
		case PhasePlaying:
		default:
			t.Fatalf("unexpected phase %q", e.Phase())
		}

		if e.climbed < previousClimbed {
			t.Fatalf("climbed decreased from %v to %v", previousClimbed, e.climbed)
		}
		previousClimbed = e.climbed
		if e.climbed > before {
			if len(e.platforms) != 7 {
				t.Fatalf("platforms after scroll = %d, want 7", len(e.platforms))
			}
			if e.score != int(math.Floor(e.climbed/10)) {
				t.Fatalf("score = %d, climbed = %v", e.score, e.climbed)
			}
			if e.player.Y != 300 {
				t.Fatalf("player y after scroll = %v, want clamped to 300", e.player.Y)
			}
		}
		for _, p := range e.platforms {
			if p.X < 0 || p.X >= 330 {
				t.Fatalf("platform x = %v outside [0,330)", p.X)
			}
		}
	}
	if runs == 0 {
		t.Log("no run ended within the tick budget")
	}
}
