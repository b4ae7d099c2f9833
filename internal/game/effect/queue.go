package effect

// Queue collects effects during a tick for a collaborator to drain.
//
// Queue is not safe for concurrent use; it is owned by the tick loop.
type Queue struct {
	items []Effect
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends effects in order.
func (q *Queue) Push(effects ...Effect) {
	q.items = append(q.items, effects...)
}

// Len returns the number of pending effects.
func (q *Queue) Len() int { return len(q.items) }

// Drain returns all pending effects in FIFO order and empties the queue.
//
// Postcondition: Len() == 0.
func (q *Queue) Drain() []Effect {
	out := q.items
	q.items = nil
	return out
}
