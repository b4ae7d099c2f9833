package session

import "github.com/cory-johannsen/turnarena/internal/game/entity"

// DeadQueue holds fighters whose death has been observed but whose removal is
// deferred until the next tick.
//
// Invariant: Drain hands back every queued handle in arrival order and leaves
// the queue empty before the caller iterates, so handles pushed during
// iteration wait for the following Drain.
type DeadQueue struct {
	items []entity.Handle
}

// Push enqueues h. Handles already queued are ignored.
func (q *DeadQueue) Push(h entity.Handle) {
	for _, x := range q.items {
		if x == h {
			return
		}
	}
	q.items = append(q.items, h)
}

// Len returns the number of queued handles.
func (q *DeadQueue) Len() int { return len(q.items) }

// Drain returns every queued handle in FIFO order and empties the queue.
func (q *DeadQueue) Drain() []entity.Handle {
	out := q.items
	q.items = nil
	return out
}
