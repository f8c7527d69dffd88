package queue

// Queue is a FIFO buffer shared between a producer goroutine
// and the game loop that drains it once per tick.
type Queue[T any] interface {
	Enqueue(item T) error
	Size() int
	ReadAllMessages() ([]T, error)
	ClearQueue() error
}
