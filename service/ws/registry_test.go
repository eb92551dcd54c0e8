package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryPutGetRemove(t *testing.T) {
	r := NewRegistry()

	replaced := r.Put("c1", 7)
	assert.False(t, replaced)

	pid, ok := r.Get("c1")
	assert.True(t, ok)
	assert.Equal(t, int64(7), pid)
	assert.Equal(t, 1, r.Size())

	r.Remove("c1")
	_, ok = r.Get("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Size())

	// removing an absent id is a no-op
	r.Remove("c1")
	assert.Equal(t, 0, r.Size())
}

func TestRegistryOverwriteLastWriterWins(t *testing.T) {
	r := NewRegistry()

	r.Put("c1", 7)
	replaced := r.Put("c1", 8)
	assert.True(t, replaced)

	pid, ok := r.Get("c1")
	assert.True(t, ok)
	assert.Equal(t, int64(8), pid)
	assert.Equal(t, 1, r.Size())
}

func TestRegistryMultipleConnsPerPlayer(t *testing.T) {
	r := NewRegistry()

	r.Put("c1", 7)
	r.Put("c2", 7)

	assert.Equal(t, 2, r.Size())
	snap := r.Snapshot()
	assert.Equal(t, int64(7), snap["c1"])
	assert.Equal(t, int64(7), snap["c2"])
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			r.Put(id, int64(i))
			r.Get(id)
			_ = r.Snapshot()
			if i%2 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, r.Size())
}
