package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	l := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock("run:1")
			defer l.Unlock("run:1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyLock_TryLock(t *testing.T) {
	l := New()

	assert.True(t, l.TryLock("a"))
	assert.False(t, l.TryLock("a"), "second TryLock on a held key must fail")
	assert.True(t, l.TryLock("b"), "distinct keys are independent")

	l.Unlock("a")
	assert.True(t, l.TryLock("a"), "released key can be re-acquired")

	l.Unlock("a")
	l.Unlock("b")
}

func TestKeyLock_UnlockUnheldPanics(t *testing.T) {
	l := New()
	assert.Panics(t, func() { l.Unlock("never-locked") })
}
