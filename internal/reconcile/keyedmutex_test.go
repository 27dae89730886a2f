package reconcile

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("project:PRJ-1")
			counter++
			km.Unlock("project:PRJ-1")
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := newKeyedMutex()

	// Holding one key must not block a different key.
	km.Lock("project:PRJ-1")
	done := make(chan struct{})
	go func() {
		km.Lock("issue:ISS-1")
		km.Unlock("issue:ISS-1")
		close(done)
	}()
	<-done
	km.Unlock("project:PRJ-1")
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	km := newKeyedMutex()

	km.Lock("project:PRJ-1")
	km.Unlock("project:PRJ-1")

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Errorf("lock table has %d entries after release, want 0", len(km.locks))
	}
}
