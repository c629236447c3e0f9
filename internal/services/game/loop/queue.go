package loop

import "sync"

// FrameID identifies a requested frame callback.
type FrameID uint64

// FrameScheduler is the host's refresh hook. A callback requested with
// RequestFrame runs once on the next refresh unless cancelled first.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// Queue is a FrameScheduler for hosts that own their refresh cadence, such as
// a ticker or a game library's update hook. The host calls Flush once per
// refresh.
type Queue struct {
	mu      sync.Mutex
	next    FrameID
	order   []FrameID
	pending map[FrameID]func()
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: make(map[FrameID]func())}
}

// RequestFrame schedules fn for the next Flush.
func (q *Queue) RequestFrame(fn func()) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = make(map[FrameID]func())
	}
	q.next++
	id := q.next
	q.pending[id] = fn
	q.order = append(q.order, id)
	return id
}

// CancelFrame drops a pending callback. Unknown or already run ids are ignored.
func (q *Queue) CancelFrame(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
}

// Flush runs the callbacks requested before the call, in request order, and
// returns how many ran. Callbacks requested while flushing wait for the next
// Flush; callbacks cancelled while flushing do not run.
func (q *Queue) Flush() int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, id := range batch {
		q.mu.Lock()
		fn, ok := q.pending[id]
		delete(q.pending, id)
		q.mu.Unlock()
		if !ok {
			continue
		}
		fn()
		ran++
	}
	return ran
}

// Pending reports how many callbacks are waiting.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
