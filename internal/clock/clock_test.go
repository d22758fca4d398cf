package clock

import (
	"sync"
	"testing"
)

func TestNowMillisStrictlyIncreasing(t *testing.T) {
	c := New()
	prev := c.NowMillis()
	for i := 0; i < 10000; i++ {
		now := c.NowMillis()
		if now <= prev {
			t.Fatalf("clock went backwards: %d after %d", now, prev)
		}
		prev = now
	}
}

func TestNowMillisConcurrentUnique(t *testing.T) {
	c := New()
	const workers = 8
	const perWorker = 2000

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				local = append(local, c.NowMillis())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, v := range local {
				if seen[v] {
					t.Errorf("duplicate timestamp %d", v)
					return
				}
				seen[v] = true
			}
		}()
	}
	wg.Wait()
}
