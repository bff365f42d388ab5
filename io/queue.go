package io

import (
	"sync"
)

// Queue is an interactive input source. Values may be pushed from any
// goroutine while the machine drains them. After Close, and once every
// pushed value has been received, Receive delivers END_OF_INPUT.
type Queue struct {
	mutex  sync.Mutex
	data   []uint32
	closed bool
}

var _ Input = (*Queue)(nil)

// Push appends values to the queue.
func (q *Queue) Push(values ...uint32) (err error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		err = ErrChannelClosed
		return
	}

	q.data = append(q.data, values...)
	return
}

// Write appends each byte of p to the queue.
func (q *Queue) Write(p []byte) (n int, err error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		err = ErrChannelClosed
		return
	}

	for _, value := range p {
		q.data = append(q.data, uint32(value))
	}
	n = len(p)

	return
}

// Close marks the end of input.
func (q *Queue) Close() (err error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closed = true
	return
}

// Len returns the number of values waiting to be received.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.data)
}

// Receive removes the oldest value from the queue.
func (q *Queue) Receive() (value uint32, ok bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(q.data) == 0 {
		if q.closed {
			value = END_OF_INPUT
			ok = true
		}
		return
	}

	value = q.data[0]
	q.data = q.data[1:]
	ok = true

	return
}
