package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cimflat/internal/record"
)

func TestIndex_PutLookup(t *testing.T) {
	idx := New()
	rec := record.New()

	prev := idx.Put("abc", rec)
	assert.Nil(t, prev)

	got, ok := idx.Lookup("abc")
	require.True(t, ok)
	assert.Same(t, rec, got)

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_LastWriteWins(t *testing.T) {
	idx := New()
	first := record.New()
	second := record.New()

	idx.Put("abc", first)
	prev := idx.Put("abc", second)

	assert.Same(t, first, prev)
	got, _ := idx.Lookup("abc")
	assert.Same(t, second, got)
	assert.Equal(t, 1, idx.Collisions())
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_RePutSameRecordIsNotACollision(t *testing.T) {
	idx := New()
	rec := record.New()
	idx.Put("abc", rec)
	idx.Put("abc", rec)
	assert.Equal(t, 0, idx.Collisions())
}

func TestIndex_ConcurrentReads(t *testing.T) {
	idx := New()
	rec := record.New()
	idx.Put("abc", rec)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok := idx.Lookup("abc")
			assert.True(t, ok)
			assert.Same(t, rec, got)
		}()
	}
	wg.Wait()
}
