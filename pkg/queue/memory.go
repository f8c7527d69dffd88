package queue

import (
	"fmt"
	"sync"
)

const (
	// DefaultQueueSize is the capacity used when a non-positive size is given
	DefaultQueueSize = 1024
)

// ErrQueueFull is returned by Enqueue when the queue is at capacity.
type ErrQueueFull struct {
	Capacity int
}

func (e *ErrQueueFull) Error() string {
	return fmt.Sprintf("queue is full (capacity %d)", e.Capacity)
}

// IsQueueFull reports whether err is an ErrQueueFull.
func IsQueueFull(err error) bool {
	_, ok := err.(*ErrQueueFull)
	return ok
}

// InMemoryQueue implements a bounded in-memory queue.
type InMemoryQueue[T any] struct {
	ch chan T
	mu sync.Mutex
}

// NewInMemoryQueue creates a new queue with the given capacity.
func NewInMemoryQueue[T any](size int) *InMemoryQueue[T] {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &InMemoryQueue[T]{
		ch: make(chan T, size),
	}
}

// Enqueue adds an item to the end of the queue without blocking.
func (q *InMemoryQueue[T]) Enqueue(item T) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return &ErrQueueFull{Capacity: cap(q.ch)}
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue[T]) Size() int {
	return len(q.ch)
}

// ReadAllMessages drains every item that is pending at the time of the call.
func (q *InMemoryQueue[T]) ReadAllMessages() ([]T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var items []T
	for {
		select {
		case item := <-q.ch:
			items = append(items, item)
		default:
			return items, nil
		}
	}
}

// ClearQueue discards all pending items.
func (q *InMemoryQueue[T]) ClearQueue() error {
	_, err := q.ReadAllMessages()
	return err
}
