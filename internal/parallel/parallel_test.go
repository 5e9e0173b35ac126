package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	configs := map[string]Config{
		"default":    DefaultConfig(),
		"sequential": Sequential(),
		"tiny chunk": {Enabled: true, NumWorkers: 8, MinChunkSize: 1},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			const n = 1000
			var counter int64
			seen := make([]int32, n)

			For(n, func(i int) {
				atomic.AddInt64(&counter, 1)
				atomic.AddInt32(&seen[i], 1)
			}, cfg)

			assert.Equal(t, int64(n), counter)
			for i, c := range seen {
				assert.Equal(t, int32(1), c, "index %d", i)
			}
		})
	}
}

func TestFor_Empty(t *testing.T) {
	called := false
	For(0, func(int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func TestForGrid(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}

	width, height := 5, 3
	results := make([][]bool, width)
	for x := range results {
		results[x] = make([]bool, height)
	}

	ForGrid(width, height, func(x, y int) {
		results[x][y] = true
	}, cfg)

	for x := range width {
		for y := range height {
			assert.True(t, results[x][y], "missing cell (%d, %d)", x, y)
		}
	}
}
