package parallel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelize(t *testing.T) {
	tests := []struct {
		name    string
		items   int
		workers int
	}{
		{"none", 0, 4},
		{"fewer items than workers", 3, 8},
		{"uneven split", 10, 3},
		{"one per cpu", 17, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			seen := make([]int, tt.items)
			Parallelize(tt.items, tt.workers, func(start, end int) {
				mu.Lock()
				defer mu.Unlock()
				for i := start; i < end; i++ {
					seen[i]++
				}
			})
			for i, n := range seen {
				assert.Equal(t, 1, n, "item %d", i)
			}
		})
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	var ranges [][2]int
	ParallelizeWithThreshold(5, 10, 4, func(start, end int) {
		ranges = append(ranges, [2]int{start, end})
	})
	assert.Equal(t, [][2]int{{0, 5}}, ranges)
}
