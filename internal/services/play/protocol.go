package play

import "github.com/daemonn69/somnia-jump/internal/services/game/engine"

// Client command types.
const (
	CommandStart   = "start"
	CommandPause   = "pause"
	CommandRestart = "restart"
	CommandMenu    = "menu"
	CommandInput   = "input"
)

// Server message types.
const (
	MessageSnapshot = "snapshot"
	MessageGameOver = "gameover"
	MessageError    = "error"
)

// Command is a client-to-server frame.
type Command struct {
	Type  string `json:"type"`
	Left  bool   `json:"left,omitempty"`
	Right bool   `json:"right,omitempty"`
}

// Message is a server-to-client frame.
type Message struct {
	Type       string           `json:"type"`
	Snapshot   *engine.Snapshot `json:"snapshot,omitempty"`
	FinalScore int              `json:"finalScore,omitempty"`
	Submitted  bool             `json:"submitted,omitempty"`
	Error      string           `json:"error,omitempty"`
}
