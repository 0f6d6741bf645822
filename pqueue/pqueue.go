// Package pqueue provides a priority queue backed by an AVL tree. A Queue is
// safe for concurrent use: every operation holds the queue's mutex for that
// single structural step only.
package pqueue

import (
	"sync"

	"golang.org/x/exp/constraints"

	"bytesort/avl"
)

// ErrEmpty is returned by Dequeue and Peek on an empty queue.
var ErrEmpty = avl.ErrEmpty

// Order selects which end of the ordering is served first.
type Order int

const (
	// Ascending serves the smallest value first.
	Ascending Order = iota
	// Descending serves the largest value first.
	Descending
)

func (o Order) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	}
	return "unknown"
}

func (o Order) direction() avl.Direction {
	if o == Descending {
		return avl.Max
	}
	return avl.Min
}

// Queue is a min- or max-priority queue. Use New to create one.
type Queue[T constraints.Ordered] struct {
	mu    sync.Mutex
	tree  *avl.Tree[T]
	order Order
}

// New returns an empty queue serving values in the given order.
func New[T constraints.Ordered](order Order) *Queue[T] {
	return &Queue[T]{
		tree:  avl.New[T](),
		order: order,
	}
}

// Order reports the serving order of the queue.
func (q *Queue[T]) Order() Order {
	return q.order
}

// Enqueue adds value to the queue.
func (q *Queue[T]) Enqueue(value T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tree.Insert(value)
}

// Dequeue removes and returns the value with the highest priority.
func (q *Queue[T]) Dequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tree.RemoveExtreme(q.order.direction())
}

// Peek returns the value Dequeue would return without removing it.
func (q *Queue[T]) Peek() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tree.FindExtreme(q.order.direction())
}

// IsEmpty reports whether the queue holds no values.
func (q *Queue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tree.IsEmpty()
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tree.Len()
}

// Drain dequeues until the queue is empty, passing each value to fn in
// priority order. It stops at the first error returned by fn; the value that
// caused it has already been removed.
func (q *Queue[T]) Drain(fn func(T) error) error {
	for !q.IsEmpty() {
		v, err := q.Dequeue()
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the queued values in priority order without removing them.
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, 0, q.tree.Len())
	appendValue := func(v T) bool {
		out = append(out, v)
		return true
	}
	if q.order == Descending {
		q.tree.WalkReverse(appendValue)
	} else {
		q.tree.Walk(appendValue)
	}
	return out
}

// Clear discards every queued value.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tree.Clear()
}
