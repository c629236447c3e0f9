package loop

import "github.com/daemonn69/somnia-jump/internal/services/game/engine"

// Controller routes phase commands to an engine and keeps exactly one frame
// callback outstanding while the engine is playing. Every transition out of
// playing cancels the outstanding frame.
//
// Controller is not safe for concurrent use; call it from the goroutine that
// flushes the scheduler.
type Controller struct {
	engine    *engine.Engine
	scheduler FrameScheduler

	frame     FrameID
	scheduled bool
	closed    bool
}

// NewController binds an engine to a scheduler.
func NewController(e *engine.Engine, scheduler FrameScheduler) *Controller {
	return &Controller{engine: e, scheduler: scheduler}
}

// Engine returns the driven engine.
func (c *Controller) Engine() *engine.Engine {
	return c.engine
}

// Running reports whether a frame is scheduled.
func (c *Controller) Running() bool {
	return c.scheduled
}

// Start begins a run from the menu.
func (c *Controller) Start() bool {
	if c.closed || !c.engine.Start() {
		return false
	}
	c.schedule()
	return true
}

// Restart begins a new run after game over.
func (c *Controller) Restart() bool {
	if c.closed || !c.engine.Restart() {
		return false
	}
	c.schedule()
	return true
}

// TogglePause suspends or resumes ticking.
func (c *Controller) TogglePause() bool {
	if c.closed || !c.engine.TogglePause() {
		return false
	}
	if c.engine.Phase() == engine.PhasePlaying {
		c.schedule()
	} else {
		c.cancel()
	}
	return true
}

// ReturnToMenu stops ticking and resets the engine to the start phase.
func (c *Controller) ReturnToMenu() {
	c.cancel()
	c.engine.ReturnToMenu()
}

// Close cancels the outstanding frame. Later commands are ignored.
func (c *Controller) Close() {
	c.cancel()
	c.closed = true
}

func (c *Controller) schedule() {
	if c.scheduled {
		return
	}
	c.frame = c.scheduler.RequestFrame(c.onFrame)
	c.scheduled = true
}

func (c *Controller) cancel() {
	if !c.scheduled {
		return
	}
	c.scheduler.CancelFrame(c.frame)
	c.scheduled = false
}

func (c *Controller) onFrame() {
	c.scheduled = false
	c.engine.Tick()
	if c.engine.Phase() == engine.PhasePlaying {
		c.schedule()
	}
}
