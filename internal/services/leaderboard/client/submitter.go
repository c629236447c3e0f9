package client

import (
	"context"
	"log"
	"sync"

	"github.com/daemonn69/somnia-jump/internal/platform/timeouts"
)

// Sink records a final score.
type Sink interface {
	SubmitScore(ctx context.Context, identity string, score int) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, identity string, score int) error

// SubmitScore calls f.
func (f SinkFunc) SubmitScore(ctx context.Context, identity string, score int) error {
	return f(ctx, identity, score)
}

// Submitter hands scores to a Sink in the background so the game loop never
// waits on the network. Failures are logged.
type Submitter struct {
	sink Sink
	wg   sync.WaitGroup
}

// NewSubmitter wraps sink.
func NewSubmitter(sink Sink) *Submitter {
	return &Submitter{sink: sink}
}

// SubmitScore starts a bounded submission and returns immediately.
func (s *Submitter) SubmitScore(identity string, score int) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.ScoreSubmit)
		defer cancel()
		if err := s.sink.SubmitScore(ctx, identity, score); err != nil {
			log.Printf("leaderboard submit identity=%s score=%d: %v", identity, score, err)
		}
	}()
}

// Wait blocks until in-flight submissions finish.
func (s *Submitter) Wait() {
	s.wg.Wait()
}
