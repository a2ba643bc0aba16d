package id

import (
	"sort"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsValidULID(t *testing.T) {
	s := New()
	assert.Len(t, s, 26)
	_, err := ulid.Parse(s)
	assert.NoError(t, err)
}

func TestNewIsMonotonic(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = New()
	}

	sorted := append([]string{}, ids...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, ids, "IDs should already be in lexicographic order")
}

func TestNewIsSafeForConcurrentUse(t *testing.T) {
	const perGoroutine = 200
	var wg sync.WaitGroup
	results := make([][]string, 4)

	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := make([]string, perGoroutine)
			for i := range ids {
				ids[i] = New()
			}
			results[g] = ids
		}(g)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, ids := range results {
		for _, s := range ids {
			require.False(t, seen[s], "duplicate ID %s", s)
			seen[s] = true
		}
	}
}
