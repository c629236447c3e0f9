package engine

// Tuning holds the physical constants of a run.
type Tuning struct {
	ViewportWidth  float64
	ViewportHeight float64

	PlayerWidth  float64
	PlayerHeight float64
	SpawnX       float64
	SpawnY       float64

	PlatformWidth  float64
	PlatformHeight float64 // drawing only; collisions use the top edge
	PlatformCount  int
	PlatformGap    float64 // vertical spacing between generated platforms
	StartHeight    float64 // y of the platform under the spawn point
	PruneMargin    float64 // platforms below ViewportHeight+PruneMargin are dropped

	Gravity   float64
	JumpForce float64 // negative: upward
	MoveSpeed float64

	ScoreDivisor float64
}

// DefaultTuning returns the constants the game ships with.
func DefaultTuning() Tuning {
	return Tuning{
		ViewportWidth:  400,
		ViewportHeight: 600,
		PlayerWidth:    40,
		PlayerHeight:   40,
		SpawnX:         180,
		SpawnY:         500,
		PlatformWidth:  70,
		PlatformHeight: 10,
		PlatformCount:  7,
		PlatformGap:    80,
		StartHeight:    550,
		PruneMargin:    50,
		Gravity:        0.5,
		JumpForce:      -15,
		MoveSpeed:      5,
		ScoreDivisor:   10,
	}
}

func (t Tuning) midpoint() float64 {
	return t.ViewportHeight / 2
}
