package engine

// Tick advances a playing run by one step. It is a no-op in every other phase.
func (e *Engine) Tick() {
	if e.phase != PhasePlaying {
		return
	}
	e.tick++

	e.applyInput()
	e.applyGravity()
	e.resolveLanding()
	e.scrollWorld()

	if e.player.Y > e.tuning.ViewportHeight {
		e.finish()
	}
}

func (e *Engine) applyInput() {
	t := e.tuning
	if e.left.Load() {
		e.player.X -= t.MoveSpeed
	}
	if e.right.Load() {
		e.player.X += t.MoveSpeed
	}
	if e.player.X > t.ViewportWidth {
		e.player.X = -e.player.Width
	} else if e.player.X < -e.player.Width {
		e.player.X = t.ViewportWidth
	}
}

func (e *Engine) applyGravity() {
	e.player.VY += e.tuning.Gravity
	e.player.Y += e.player.VY
}

// resolveLanding bounces the player off the first platform, in collection
// order, whose top edge the player's bottom crossed during this tick. When
// platforms overlap inside the window the slice order decides.
func (e *Engine) resolveLanding() {
	if e.player.VY <= 0 {
		return
	}
	bottom := e.player.bottom()
	previousBottom := bottom - e.player.VY
	for _, p := range e.platforms {
		if e.player.X+e.player.Width <= p.X || e.player.X >= p.X+p.Width {
			continue
		}
		if previousBottom <= p.Y && bottom >= p.Y {
			e.player.Y = p.Y - e.player.Height
			e.player.VY = e.tuning.JumpForce
			return
		}
	}
}

func (e *Engine) scrollWorld() {
	mid := e.tuning.midpoint()
	if e.player.Y >= mid {
		return
	}
	amount := mid - e.player.Y
	e.player.Y = mid
	e.climbed += amount

	limit := e.tuning.ViewportHeight + e.tuning.PruneMargin
	kept := e.platforms[:0]
	for _, p := range e.platforms {
		p.Y += amount
		if p.Y > limit {
			continue
		}
		kept = append(kept, p)
	}
	e.platforms = kept
	e.refill()

	e.score = e.currentScore()
	if e.onScore != nil {
		e.onScore(e.score)
	}
}
