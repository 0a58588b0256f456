package event

import "errors"

// ErrEmptyQueue is returned by Pop when there is nothing to read.
var ErrEmptyQueue = errors.New("event queue is empty")

// Queue is a first-in-first-out buffer of normalized events. It is not safe
// for concurrent use.
type Queue struct {
	events []Event
	head   int
}

// Push appends e to the tail of the queue.
func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

// Len returns the number of unread events.
func (q *Queue) Len() int {
	return len(q.events) - q.head
}

// IsEmpty reports whether there are no unread events.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Pop removes and returns the oldest event.
func (q *Queue) Pop() (Event, error) {
	if q.IsEmpty() {
		return Event{}, ErrEmptyQueue
	}
	e := q.events[q.head]
	q.events[q.head] = Event{}
	q.head++
	if q.head == len(q.events) {
		// Fully drained; reuse the backing array.
		q.events = q.events[:0]
		q.head = 0
	}
	return e, nil
}
