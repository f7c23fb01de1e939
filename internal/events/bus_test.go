// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribeEmitUnsubscribe(t *testing.T) {
	b := NewBus()
	var got []Name

	sub := b.Subscribe(KeyPress, func(e Event) { got = append(got, e.Name) })
	b.Emit(KeyPress)
	b.Emit(Click)
	assert.Equal(t, []Name{KeyPress}, got)

	b.Unsubscribe(sub)
	b.Emit(KeyPress)
	assert.Len(t, got, 1)
	assert.Equal(t, 0, b.Count(KeyPress))
}

func TestBus_OrderAndIsolation(t *testing.T) {
	b := NewBus()
	var order []int

	s1 := b.Subscribe(Offline, func(Event) { order = append(order, 1) })
	b.Subscribe(Offline, func(Event) { order = append(order, 2) })
	b.Subscribe(Offline, func(Event) { order = append(order, 3) })

	b.Unsubscribe(s1)
	b.Emit(Offline)
	assert.Equal(t, []int{2, 3}, order)
}

func TestBus_HandlerMayUnsubscribeItself(t *testing.T) {
	b := NewBus()
	calls := 0
	var sub Subscription
	sub = b.Subscribe(Online, func(Event) {
		calls++
		b.Unsubscribe(sub)
	})

	b.Emit(Online)
	b.Emit(Online)
	assert.Equal(t, 1, calls)
}

func TestBus_UnknownUnsubscribeIsNoop(t *testing.T) {
	b := NewBus()
	b.Unsubscribe(Subscription{name: Scroll, id: 42})
	assert.Equal(t, 0, b.Count(Scroll))
}

func TestBus_ConcurrentEmit(t *testing.T) {
	b := NewBus()
	var mu sync.Mutex
	n := 0
	b.Subscribe(PointerMove, func(Event) {
		mu.Lock()
		n++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Emit(PointerMove)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, n)
}

func TestIsActivity(t *testing.T) {
	for _, n := range ActivityEvents {
		assert.True(t, IsActivity(n), n)
	}
	assert.False(t, IsActivity(Offline))
	assert.False(t, IsActivity(BeforeUnload))
}
