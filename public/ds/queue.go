package ds

// Queue is a FIFO used to hand replies back in the order commands were
// written, reads never block
type Queue[T any] struct {
	queue []T
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{queue: make([]T, 0)}
}

// Read pops the oldest item, ok is false when the queue is empty
func (q *Queue[T]) Read() (item T, ok bool) {
	if len(q.queue) == 0 {
		return item, false
	}
	var zero T
	item = q.queue[0]
	q.queue[0] = zero
	q.queue = q.queue[1:]
	return item, true
}

func (q *Queue[T]) Write(item T) {
	q.queue = append(q.queue, item)
}

func (q *Queue[T]) Len() int {
	return len(q.queue)
}

func (q *Queue[T]) Reset() {
	q.queue = make([]T, 0)
}
