package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesEveryListener(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Subscribe(func() { order = append(order, 1) })
	bus.Subscribe(func() { order = append(order, 2) })

	bus.Publish()
	assert.Equal(t, []int{1, 2}, order)
}

func TestUnsubscribe(t *testing.T) {
	var bus Bus

	calls := 0
	unsubscribe := bus.Subscribe(func() { calls++ })
	bus.Publish()
	unsubscribe()
	unsubscribe()
	bus.Publish()

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.Len())
}

func TestListenerMaySubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(func() {
		bus.Subscribe(func() {})
	})

	assert.NotPanics(t, bus.Publish)
	assert.Equal(t, 2, bus.Len())
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	calls := 0
	bus.Subscribe(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish()
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, calls)
}
