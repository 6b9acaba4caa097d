package viewcache_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coomb/chatkit/core/viewcache"
)

// TestUpdateSequencesDoNotInterleave verifies the per-key ordering guarantee:
// no two mutate-then-refetch sequences run concurrently for the same key.
func TestUpdateSequencesDoNotInterleave(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	committed := 0
	fetched := 0

	cache := viewcache.New(func(context.Context, string) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		fetched = committed
		return fetched, nil
	})
	ctx := context.Background()

	inSequence := 0
	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := cache.Update(ctx, "counter", func(context.Context) error {
				mu.Lock()
				inSequence++
				// Only one mutation may be inside its sequence at a time.
				current := inSequence
				committed++
				inSequence--
				mu.Unlock()
				assert.Equal(t, 1, current)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The final refetch observed every committed mutation.
	require.Equal(t, workers, cache.Get(ctx, "counter").Data)
}

// TestDistinctKeysProceedConcurrently verifies that a long-running mutation
// on one key does not block another key.
func TestDistinctKeysProceedConcurrently(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	cache := viewcache.New(func(context.Context, string) (string, error) {
		return "ok", nil
	})
	ctx := context.Background()

	started := make(chan struct{})
	go func() {
		_ = cache.Update(ctx, "slow", func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	// Must complete while "slow" is still mid-mutation.
	err := cache.Update(ctx, "fast", func(context.Context) error { return nil })
	require.NoError(t, err)
	close(release)
}

// TestConcurrentReadsAndMutations exercises mixed access under the race
// detector.
func TestConcurrentReadsAndMutations(t *testing.T) {
	t.Parallel()

	cache := viewcache.New(func(_ context.Context, key int) (int, error) {
		return key, nil
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		key := i % 4
		wg.Add(3)
		go func() {
			defer wg.Done()
			cache.Get(ctx, key)
		}()
		go func() {
			defer wg.Done()
			_ = cache.Update(ctx, key, func(context.Context) error { return nil })
		}()
		go func() {
			defer wg.Done()
			cache.Peek(key)
		}()
	}
	wg.Wait()
}
