package engine

// initialPlatforms lays out a fresh stack: one platform centred under the
// spawn point, then evenly spaced platforms above it at random x.
func (e *Engine) initialPlatforms() []Platform {
	t := e.tuning
	platforms := make([]Platform, 0, t.PlatformCount)
	platforms = append(platforms, Platform{
		X:     t.SpawnX - (t.PlatformWidth-t.PlayerWidth)/2,
		Y:     t.StartHeight,
		Width: t.PlatformWidth,
	})
	for i := 1; i < t.PlatformCount; i++ {
		platforms = append(platforms, Platform{
			X:     e.randomX(),
			Y:     t.StartHeight - float64(i)*t.PlatformGap,
			Width: t.PlatformWidth,
		})
	}
	return platforms
}

// refill generates platforms above the topmost one until the target count is
// reached.
func (e *Engine) refill() {
	t := e.tuning
	for len(e.platforms) < t.PlatformCount {
		e.platforms = append(e.platforms, Platform{
			X:     e.randomX(),
			Y:     e.topmostY() - t.PlatformGap,
			Width: t.PlatformWidth,
		})
	}
}

func (e *Engine) topmostY() float64 {
	if len(e.platforms) == 0 {
		return e.tuning.ViewportHeight
	}
	top := e.platforms[0].Y
	for _, p := range e.platforms[1:] {
		if p.Y < top {
			top = p.Y
		}
	}
	return top
}

func (e *Engine) randomX() float64 {
	return e.rng.Float64() * (e.tuning.ViewportWidth - e.tuning.PlatformWidth)
}
