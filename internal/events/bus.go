// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events provides the environment event source that stands in for
// window-level listeners: user activity, page unload and connectivity.
package events

import (
	"sync"
	"time"
)

// Name identifies an environment event.
type Name string

// Activity events. Any of these resets the inactivity monitor.
const (
	PointerDown Name = "pointer_down"
	PointerMove Name = "pointer_move"
	KeyPress    Name = "key_press"
	Scroll      Name = "scroll"
	TouchStart  Name = "touch_start"
	Click       Name = "click"
)

// Lifecycle and connectivity events.
const (
	BeforeUnload Name = "before_unload"
	Unload       Name = "unload"
	Offline      Name = "offline"
	Online       Name = "online"
)

// ActivityEvents is the fixed set of events that count as user activity.
var ActivityEvents = []Name{PointerDown, PointerMove, KeyPress, Scroll, TouchStart, Click}

// Event is delivered to handlers.
type Event struct {
	Name Name
	At   time.Time
}

// Handler reacts to an event.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	name Name
	id   uint64
}

// Source is the subscribe side of the bus. Components depend on this, not on
// *Bus, so tests can inject their own.
type Source interface {
	Subscribe(name Name, h Handler) Subscription
	Unsubscribe(sub Subscription)
}

// Bus is a synchronous in-process event bus.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[Name][]entry
	now      func() time.Time
}

type entry struct {
	id uint64
	h  Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Name][]entry),
		now:      time.Now,
	}
}

// Subscribe registers h for name.
func (b *Bus) Subscribe(name Name, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[name] = append(b.handlers[name], entry{id: b.nextID, h: h})
	return Subscription{name: name, id: b.nextID}
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[sub.name]
	for i, e := range list {
		if e.id == sub.id {
			b.handlers[sub.name] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.handlers[sub.name]) == 0 {
		delete(b.handlers, sub.name)
	}
}

// Emit delivers an event to every handler registered for name, in
// subscription order. Handlers run outside the bus lock and may subscribe or
// unsubscribe.
func (b *Bus) Emit(name Name) {
	b.mu.Lock()
	list := make([]entry, len(b.handlers[name]))
	copy(list, b.handlers[name])
	now := b.now()
	b.mu.Unlock()

	ev := Event{Name: name, At: now}
	for _, e := range list {
		e.h(ev)
	}
}

// Count returns the number of handlers registered for name.
func (b *Bus) Count(name Name) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[name])
}

// IsActivity reports whether name is one of the activity events.
func IsActivity(name Name) bool {
	for _, n := range ActivityEvents {
		if n == name {
			return true
		}
	}
	return false
}
