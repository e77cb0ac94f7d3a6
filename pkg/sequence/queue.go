package sequence

import "sync"

const minQueueCapacity = 16

// Queue is an unbounded FIFO queue backed by a growable ring buffer.
// It is safe for concurrent use.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
	size  int
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{items: make([]T, minQueueCapacity)}
}

// Enqueue appends value to the tail. It never blocks.
func (q *Queue[T]) Enqueue(value T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items == nil {
		q.items = make([]T, minQueueCapacity)
	}
	if q.size == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.size)%len(q.items)] = value
	q.size++
}

// Dequeue removes and returns the head of the queue.
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}
	value := q.items[q.head]
	q.items[q.head] = zero // avoid memory leak
	q.head = (q.head + 1) % len(q.items)
	q.size--
	return value, true
}

// Peek returns the head without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

// DrainAll removes every queued value and returns them in FIFO order.
func (q *Queue[T]) DrainAll() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil
	}
	out := make([]T, q.size)
	var zero T
	for i := range out {
		idx := (q.head + i) % len(q.items)
		out[i] = q.items[idx]
		q.items[idx] = zero
	}
	q.head = 0
	q.size = 0
	return out
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// grow doubles the buffer and unwraps the ring so head is at index 0.
func (q *Queue[T]) grow() {
	next := make([]T, len(q.items)*2)
	for i := 0; i < q.size; i++ {
		next[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = next
	q.head = 0
}
