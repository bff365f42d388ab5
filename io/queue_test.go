package io

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}

	_, ok := q.Receive()
	assert.False(ok)

	assert.NoError(q.Push(1, 2))
	n, err := q.Write([]byte{3})
	assert.NoError(err)
	assert.Equal(1, n)
	assert.Equal(3, q.Len())

	for _, expected := range []uint32{1, 2, 3} {
		value, ok := q.Receive()
		assert.True(ok)
		assert.Equal(expected, value)
	}

	_, ok = q.Receive()
	assert.False(ok)
}

func TestQueue_Close(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	assert.NoError(q.Push('a'))
	assert.NoError(q.Close())

	assert.ErrorIs(q.Push('b'), ErrChannelClosed)
	_, err := q.Write([]byte("b"))
	assert.ErrorIs(err, ErrChannelClosed)

	value, ok := q.Receive()
	assert.True(ok)
	assert.Equal(uint32('a'), value)

	value, ok = q.Receive()
	assert.True(ok)
	assert.Equal(END_OF_INPUT, value)

	value, ok = q.Receive()
	assert.True(ok)
	assert.Equal(END_OF_INPUT, value)
}

func TestQueue_Concurrent(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}

	var wg sync.WaitGroup
	for n := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = q.Push(uint32(n))
			}
		}()
	}
	wg.Wait()

	assert.Equal(400, q.Len())

	counts := map[uint32]int{}
	for {
		value, ok := q.Receive()
		if !ok {
			break
		}
		counts[value]++
	}

	assert.Equal(map[uint32]int{0: 100, 1: 100, 2: 100, 3: 100}, counts)
}
