package cache_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/phosphorco/legalnlp/internal/lnlp/cache"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

func openTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet_RoundTrips(t *testing.T) {
	c := openTestCache(t)
	snap := &snapshot.Snapshot{Version: 1, Input: snapshot.InlineInput([]string{"hello"})}

	if err := c.Put(42, snap); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if got.Version != snap.Version || got.Input.Inline[0] != "hello" {
		t.Errorf("round-tripped snapshot mismatch: %+v", got)
	}
}

func TestGet_Miss(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Get(999)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Errorf("expected a cache miss")
	}
}

func TestGetOrBuild_DedupesConcurrentMisses(t *testing.T) {
	c := openTestCache(t)
	var builds int32

	build := func() (*snapshot.Snapshot, error) {
		atomic.AddInt32(&builds, 1)
		return &snapshot.Snapshot{Version: 1}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrBuild(7, build); err != nil {
				t.Errorf("GetOrBuild: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("expected build to run exactly once, ran %d times", n)
	}
}
