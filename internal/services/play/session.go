package play

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/daemonn69/somnia-jump/internal/platform/timeouts"
	"github.com/daemonn69/somnia-jump/internal/services/game/engine"
	"github.com/daemonn69/somnia-jump/internal/services/game/loop"
	"github.com/gorilla/websocket"
)

const maxCommandBytes = 4096

type session struct {
	conn       *websocket.Conn
	queue      *loop.Queue
	controller *loop.Controller
	identified bool
	interval   time.Duration

	gameOver  bool
	lastScore int
}

func newSession(conn *websocket.Conn, cfg engine.Config, interval time.Duration) *session {
	s := &session{
		conn:       conn,
		queue:      loop.NewQueue(),
		interval:   interval,
		identified: cfg.Identity != "" && cfg.Submitter != nil,
	}
	cfg.OnGameOver = func(final int) {
		s.gameOver = true
		s.lastScore = final
	}
	s.controller = loop.NewController(engine.New(cfg), s.queue)
	return s
}

// inbound is one decoded frame, or the reason it could not be decoded.
type inbound struct {
	cmd Command
	err error
}

func (s *session) readCommands(commands chan<- inbound, done chan<- error, stop <-chan struct{}) {
	s.conn.SetReadLimit(maxCommandBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(timeouts.WebsocketPong))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(timeouts.WebsocketPong))
	})
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			done <- err
			return
		}
		var in inbound
		if err := json.Unmarshal(data, &in.cmd); err != nil {
			in.err = fmt.Errorf("invalid command: %w", err)
		}
		select {
		case commands <- in:
		case <-stop:
			return
		}
	}
}

func (s *session) run(ctx context.Context) {
	defer s.conn.Close()
	defer s.controller.Close()

	commands := make(chan inbound)
	readDone := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go s.readCommands(commands, readDone, stop)

	frames := time.NewTicker(s.interval)
	defer frames.Stop()
	pings := time.NewTicker(timeouts.WebsocketPong * 9 / 10)
	defer pings.Stop()

	if err := s.sendSnapshot(); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			s.closeWith(websocket.CloseGoingAway, "server shutting down")
			return
		case err := <-readDone:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("play: read: %v", err)
			}
			return
		case in := <-commands:
			err := in.err
			if err == nil {
				err = s.apply(in.cmd)
			}
			if err != nil {
				if err := s.write(Message{Type: MessageError, Error: err.Error()}); err != nil {
					return
				}
				continue
			}
			if err := s.sendSnapshot(); err != nil {
				return
			}
		case <-frames.C:
			if s.queue.Flush() == 0 {
				continue
			}
			if err := s.sendSnapshot(); err != nil {
				return
			}
			if s.gameOver {
				s.gameOver = false
				msg := Message{Type: MessageGameOver, FinalScore: s.lastScore, Submitted: s.identified && s.lastScore > 0}
				if err := s.write(msg); err != nil {
					return
				}
			}
		case <-pings.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(timeouts.WebsocketWrite))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) apply(cmd Command) error {
	c := s.controller
	switch cmd.Type {
	case CommandStart:
		if !c.Start() {
			return fmt.Errorf("start is only valid from the menu")
		}
	case CommandRestart:
		if !c.Restart() {
			return fmt.Errorf("restart is only valid after game over")
		}
	case CommandPause:
		if !c.TogglePause() {
			return fmt.Errorf("pause is only valid while playing")
		}
	case CommandMenu:
		c.ReturnToMenu()
	case CommandInput:
		c.Engine().SetLeft(cmd.Left)
		c.Engine().SetRight(cmd.Right)
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	return nil
}

func (s *session) sendSnapshot() error {
	snap := s.controller.Engine().Snapshot()
	return s.write(Message{Type: MessageSnapshot, Snapshot: &snap})
}

func (s *session) write(msg Message) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(timeouts.WebsocketWrite))
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Printf("play: write %s: %v", msg.Type, err)
		return err
	}
	return nil
}

func (s *session) closeWith(code int, reason string) {
	deadline := time.Now().Add(timeouts.WebsocketWrite)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
