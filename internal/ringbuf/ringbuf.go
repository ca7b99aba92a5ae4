// package ringbuf implements a growable FIFO queue backed by a ring of slots.
package ringbuf

// RingBuf is a FIFO queue.
// The zero value is an empty queue ready to use.
type RingBuf[T any] struct {
	buf        []T
	head, size int
}

func (rb *RingBuf[T]) Len() int {
	return rb.size
}

func (rb *RingBuf[T]) PushBack(val T) {
	rb.grow()
	rb.buf[rb.index(rb.size)] = val
	rb.size++
}

// PopFront removes and returns the oldest element.
// ok is false if the buffer is empty.
func (rb *RingBuf[T]) PopFront() (ret T, ok bool) {
	if rb.size == 0 {
		return ret, false
	}
	ret = rb.buf[rb.head]
	var zero T
	rb.buf[rb.head] = zero
	rb.head = (rb.head + 1) % len(rb.buf)
	rb.size--
	return ret, true
}

// at returns the i-th element counting from the front.
func (rb *RingBuf[T]) at(i int) T {
	if i < 0 || i >= rb.size {
		panic(i)
	}
	return rb.buf[rb.index(i)]
}

// Slice copies the contents, front first, into a new slice.
func (rb *RingBuf[T]) Slice() []T {
	ret := make([]T, rb.size)
	for i := range ret {
		ret[i] = rb.at(i)
	}
	return ret
}

// Clone returns an independent copy of rb.
func (rb *RingBuf[T]) Clone() RingBuf[T] {
	ret := RingBuf[T]{buf: make([]T, len(rb.buf))}
	for i := 0; i < rb.size; i++ {
		ret.buf[i] = rb.at(i)
	}
	ret.size = rb.size
	return ret
}

func (rb *RingBuf[T]) index(i int) int {
	return (rb.head + i) % len(rb.buf)
}

// grow makes room for at least one more element.
func (rb *RingBuf[T]) grow() {
	if rb.size < len(rb.buf) {
		return
	}
	n := 2 * len(rb.buf)
	if n == 0 {
		n = 4
	}
	buf := make([]T, n)
	for i := 0; i < rb.size; i++ {
		buf[i] = rb.at(i)
	}
	rb.buf = buf
	rb.head = 0
}
