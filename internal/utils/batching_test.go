package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchBufferSignalsFull(t *testing.T) {
	b := NewBatchBuffer[int](3)
	assert.False(t, b.HasData())
	assert.Nil(t, b.GetAndClear())

	assert.False(t, b.Add(1))
	assert.False(t, b.Add(2))
	assert.True(t, b.Add(3))
	assert.Equal(t, 3, b.Size())

	assert.Equal(t, []int{1, 2, 3}, b.GetAndClear())
	assert.Equal(t, 0, b.Size())
}

func TestBatchBufferDefaultsSize(t *testing.T) {
	b := NewBatchBuffer[string](0)
	for i := 0; i < DEFAULT_BATCH_SIZE-1; i++ {
		assert.False(t, b.Add("x"))
	}
	assert.True(t, b.Add("x"))
}

func TestBatchBufferConcurrentAdds(t *testing.T) {
	b := NewBatchBuffer[int](1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Add(n)
		}(i)
	}
	wg.Wait()
	assert.Len(t, b.GetAndClear(), 50)
}
