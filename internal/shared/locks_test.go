package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockTableSerializesSameID(t *testing.T) {
	table := NewLockTable()

	var mu sync.Mutex
	active := 0
	maxActive := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := table.Acquire(1)
			defer release()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "holders of the same id lock must not overlap")
}

func TestLockTableIndependentIDs(t *testing.T) {
	table := NewLockTable()

	releaseA := table.Acquire(1)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		release := table.Acquire(2)
		release()
		close(done)
	}()
	<-done
}

func TestLockTableReleaseIsIdempotent(t *testing.T) {
	table := NewLockTable()

	release := table.Acquire(5)
	release()
	release()

	// Lock must be acquirable again after release.
	again := table.Acquire(5)
	again()
}

func TestLockTableEntriesAreReclaimed(t *testing.T) {
	table := NewLockTable()
	for id := int64(0); id < 100; id++ {
		release := table.Acquire(id)
		release()
	}

	table.mu.Lock()
	defer table.mu.Unlock()
	assert.Empty(t, table.entries)
}
