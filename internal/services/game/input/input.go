// Package input maps host key state onto loop controller commands.
package input

import (
	"github.com/daemonn69/somnia-jump/internal/services/game/engine"
	"github.com/daemonn69/somnia-jump/internal/services/game/loop"
)

// Keys is one frame of key state. Left and Right are held states; the rest
// are edge-triggered presses.
type Keys struct {
	Left    bool
	Right   bool
	Confirm bool
	Pause   bool
	Menu    bool
}

// Apply routes keys to c. Confirm starts from the menu and restarts after
// game over. Menu takes precedence over every other press.
func Apply(c *loop.Controller, keys Keys) {
	e := c.Engine()
	e.SetLeft(keys.Left)
	e.SetRight(keys.Right)

	switch {
	case keys.Menu:
		c.ReturnToMenu()
	case keys.Confirm && e.Phase() == engine.PhaseStart:
		c.Start()
	case keys.Confirm && e.Phase() == engine.PhaseGameOver:
		c.Restart()
	case keys.Pause:
		c.TogglePause()
	}
}
