// Package app hosts the jump engine in a desktop window.
package app

import (
	"context"
	"fmt"
	"image/color"

	"github.com/daemonn69/somnia-jump/internal/services/game/engine"
	"github.com/daemonn69/somnia-jump/internal/services/game/input"
	"github.com/daemonn69/somnia-jump/internal/services/game/loop"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	backgroundColor = color.NRGBA{R: 18, G: 20, B: 38, A: 255}
	platformColor   = color.NRGBA{R: 96, G: 214, B: 140, A: 255}
	playerColor     = color.NRGBA{R: 250, G: 200, B: 60, A: 255}
)

// Game adapts a loop controller to ebiten. Update is the refresh hook that
// flushes the frame queue.
type Game struct {
	controller *loop.Controller
	queue      *loop.Queue
	tuning     engine.Tuning
	done       <-chan struct{}
}

// NewGame builds a game around e.
func NewGame(e *engine.Engine) *Game {
	q := loop.NewQueue()
	return &Game{
		controller: loop.NewController(e, q),
		queue:      q,
		tuning:     e.Tuning(),
	}
}

// Close cancels the pending frame.
func (g *Game) Close() {
	g.controller.Close()
}

func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	input.Apply(g.controller, input.Keys{
		Left:    ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA),
		Right:   ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD),
		Confirm: inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter),
		Pause:   inpututil.IsKeyJustPressed(ebiten.KeyP),
		Menu:    inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	})
	g.queue.Flush()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	snap := g.controller.Engine().Snapshot()

	for _, p := range snap.Platforms {
		vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(g.tuning.PlatformHeight), platformColor, true)
	}
	if snap.Phase != engine.PhaseStart {
		b := snap.Player
		vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), playerColor, true)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Score: %d  Best: %d", snap.Score, snap.Best), 8, 8)
	switch snap.Phase {
	case engine.PhaseStart:
		ebitenutil.DebugPrintAt(screen, "SPACE to start  <- -> to move  P pause  ESC menu", 40, int(g.tuning.ViewportHeight/2))
	case engine.PhasePaused:
		ebitenutil.DebugPrintAt(screen, "PAUSED", int(g.tuning.ViewportWidth/2)-20, int(g.tuning.ViewportHeight/2))
	case engine.PhaseGameOver:
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("GAME OVER  score %d  SPACE to retry", snap.Score), 60, int(g.tuning.ViewportHeight/2))
	}
}

func (g *Game) Layout(int, int) (int, int) {
	return int(g.tuning.ViewportWidth), int(g.tuning.ViewportHeight)
}

// Run opens the window and blocks until it closes or ctx ends.
func Run(ctx context.Context, g *Game) error {
	defer g.Close()
	g.done = ctx.Done()
	ebiten.SetWindowSize(int(g.tuning.ViewportWidth), int(g.tuning.ViewportHeight))
	ebiten.SetWindowTitle("Somnia Jump")
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
