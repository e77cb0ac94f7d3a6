package sequence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Run("FIFO", func(t *testing.T) {
		q := NewQueue[int]()
		for i := 0; i < 5; i++ {
			q.Enqueue(i)
		}
		require.Equal(t, 5, q.Len())

		for i := 0; i < 5; i++ {
			v, ok := q.Dequeue()
			require.True(t, ok)
			assert.Equal(t, i, v)
		}
		_, ok := q.Dequeue()
		assert.False(t, ok)
		assert.True(t, q.IsEmpty())
	})

	t.Run("Grow keeps order across wrap", func(t *testing.T) {
		q := NewQueue[int]()
		// move head forward so the ring wraps before growing
		for i := 0; i < 10; i++ {
			q.Enqueue(i)
		}
		for i := 0; i < 10; i++ {
			_, _ = q.Dequeue()
		}
		for i := 0; i < 100; i++ {
			q.Enqueue(i)
		}
		got := q.DrainAll()
		require.Len(t, got, 100)
		for i, v := range got {
			assert.Equal(t, i, v)
		}
		assert.Equal(t, 0, q.Len())
	})

	t.Run("Peek", func(t *testing.T) {
		q := NewQueue[string]()
		_, ok := q.Peek()
		assert.False(t, ok)

		q.Enqueue("a")
		q.Enqueue("b")
		v, ok := q.Peek()
		require.True(t, ok)
		assert.Equal(t, "a", v)
		assert.Equal(t, 2, q.Len())
	})

	t.Run("Zero value usable", func(t *testing.T) {
		var q Queue[int]
		q.Enqueue(7)
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, 7, v)
	})

	t.Run("Concurrent producers", func(t *testing.T) {
		q := NewQueue[int]()
		var wg sync.WaitGroup
		for p := 0; p < 8; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 250; i++ {
					q.Enqueue(i)
				}
			}()
		}
		wg.Wait()
		assert.Len(t, q.DrainAll(), 2000)
	})
}
