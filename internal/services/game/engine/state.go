package engine

// Phase is the game state machine position.
type Phase string

const (
	PhaseStart    Phase = "start"
	PhasePlaying  Phase = "playing"
	PhasePaused   Phase = "paused"
	PhaseGameOver Phase = "gameover"
)

// Body is the player's bounding box and vertical velocity.
type Body struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VY     float64 `json:"vy"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Body) bottom() float64 {
	return b.Y + b.Height
}

// Platform is one landing surface. Y is the top edge.
type Platform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// Snapshot is a copy of the engine state handed to renderers.
type Snapshot struct {
	Tick      uint64     `json:"tick"`
	Phase     Phase      `json:"phase"`
	Player    Body       `json:"player"`
	Platforms []Platform `json:"platforms"`
	Score     int        `json:"score"`
	Best      int        `json:"best"`
	Climbed   float64    `json:"climbed"`
}
