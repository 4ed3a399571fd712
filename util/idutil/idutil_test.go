package idutil

import (
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterGeneratorFormat(t *testing.T) {
	g := &CounterGenerator{}
	assert.Equal(t, "_1", g.Generate())
	assert.Equal(t, "_2", g.Generate())

	for i := 3; i < 36; i++ {
		g.Generate()
	}
	assert.Equal(t, "_10", g.Generate(), "the 36th id rolls over to two base-36 digits")
}

func TestCounterGeneratorConcurrentUniqueness(t *testing.T) {
	const workers, perWorker = 8, 500

	g := &CounterGenerator{}
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- g.Generate()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		assert.True(t, strings.HasPrefix(id, "_"))
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestProcessGeneratorIsShared(t *testing.T) {
	first := ProcessGenerator().Generate()
	second := ProcessGenerator().Generate()
	assert.NotEqual(t, first, second)
}

func TestUUIDRandomGenerator(t *testing.T) {
	id, err := UUIDRandomGenerator{}.Generate()
	require.NoError(t, err)

	parsed, err := uuid.FromString(id)
	require.NoError(t, err)
	assert.Equal(t, byte(uuid.V4), parsed.Version())
}
