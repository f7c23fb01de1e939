// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cart keeps unpaid card reservations in persistent storage.
//
// Paid cards live on the backend. Unpaid ones stay here until they expire,
// their game starts or finishes, or the session is logged out.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/storage"
)

// DefaultExpiration is how long an unpaid card stays in the cart.
const DefaultExpiration = 30 * time.Minute

// ErrNotFound is returned by Remove for unknown item IDs.
var ErrNotFound = errors.New("cart: item not found")

// GameStatus is the lifecycle state of the game a card belongs to.
type GameStatus string

const (
	GameScheduled GameStatus = "scheduled"
	GameActive    GameStatus = "active"
	GameFinished  GameStatus = "finished"
)

// Item is one reserved card.
type Item struct {
	ID           string     `json:"id"`
	GameID       int64      `json:"jogoId"`
	GameName     string     `json:"jogoNome"`
	GameStatus   GameStatus `json:"jogoStatus"`
	GameStartsAt time.Time  `json:"jogoDataInicio"`
	CardNumber   int        `json:"numeroCartela"`
	Price        float64    `json:"valor"`
	AddedAt      time.Time  `json:"adicionadoEm"`
	ExpiresAt    time.Time  `json:"expiraEm"`
}

type document struct {
	Items     []Item    `json:"itens"`
	UpdatedAt time.Time `json:"ultimaAtualizacao"`
}

// Options tune expiry and the purge rules.
type Options struct {
	Expiration        time.Duration
	AutoCleanStarted  bool
	AutoCleanFinished bool
}

// DefaultOptions returns the default purge rules.
func DefaultOptions() Options {
	return Options{
		Expiration:        DefaultExpiration,
		AutoCleanStarted:  true,
		AutoCleanFinished: true,
	}
}

// Cart reads and writes the cart under storage.KeyCart.
type Cart struct {
	store storage.Store
	clock clock.Clock
	opts  Options
	mu    sync.Mutex
}

// New creates a cart over s.
func New(s storage.Store, clk clock.Clock, opts Options) *Cart {
	if clk == nil {
		clk = clock.Real()
	}
	if opts.Expiration <= 0 {
		opts.Expiration = DefaultExpiration
	}
	return &Cart{store: s, clock: clk, opts: opts}
}

// SetOptions replaces the purge rules, for settings fetched from the backend.
func (c *Cart) SetOptions(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if opts.Expiration <= 0 {
		opts.Expiration = DefaultExpiration
	}
	c.opts = opts
}

// Options returns the current purge rules.
func (c *Cart) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// load returns the stored document. A corrupt document reads as an empty
// cart.
func (c *Cart) load() (document, error) {
	raw, ok, err := c.store.Get(storage.KeyCart)
	if err != nil {
		return document{}, err
	}
	if !ok || raw == "" {
		return document{}, nil
	}
	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		log.Printf("CART_WARNING | stored cart unreadable, starting empty: %v", err)
		return document{}, nil
	}
	return doc, nil
}

func (c *Cart) save(doc document) error {
	doc.UpdatedAt = c.clock.Now().UTC()
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return c.store.Set(storage.KeyCart, string(data))
}

// Add reserves a card. ID, AddedAt and ExpiresAt are assigned here.
func (c *Cart) Add(item Item) (Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.load()
	if err != nil {
		return Item{}, err
	}
	now := c.clock.Now().UTC()
	item.ID = uuid.NewString()
	item.AddedAt = now
	item.ExpiresAt = now.Add(c.opts.Expiration)
	doc.Items = append(doc.Items, item)
	if err := c.save(doc); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Remove drops one item.
func (c *Cart) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.load()
	if err != nil {
		return err
	}
	kept := doc.Items[:0]
	for _, it := range doc.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(doc.Items) {
		return ErrNotFound
	}
	doc.Items = kept
	return c.save(doc)
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(document{})
}

// Items returns the reserved cards in insertion order.
func (c *Cart) Items() ([]Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.load()
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// Total returns the sum of the item prices.
func (c *Cart) Total() (float64, error) {
	items, err := c.Items()
	if err != nil {
		return 0, err
	}
	var total float64
	for _, it := range items {
		total += it.Price
	}
	return total, nil
}

// Count returns the number of items.
func (c *Cart) Count() (int, error) {
	items, err := c.Items()
	return len(items), err
}

// PurgeExpired removes stale items and returns how many were dropped.
// An item is stale when it expired, its game started or finished (subject
// to the options), or its game's start time has passed.
func (c *Cart) PurgeExpired(now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.load()
	if err != nil {
		return 0, err
	}

	kept := make([]Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		if reason := c.staleReason(it, now); reason != "" {
			log.Printf("CART_PURGE | game=%d card=%d reason=%s", it.GameID, it.CardNumber, reason)
			continue
		}
		kept = append(kept, it)
	}

	removed := len(doc.Items) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	doc.Items = kept
	return removed, c.save(doc)
}

func (c *Cart) staleReason(it Item, now time.Time) string {
	switch {
	case it.ExpiresAt.Before(now):
		return "expired"
	case c.opts.AutoCleanStarted && it.GameStatus == GameActive:
		return "game_started"
	case c.opts.AutoCleanFinished && it.GameStatus == GameFinished:
		return "game_finished"
	case !it.GameStartsAt.IsZero() && it.GameStartsAt.Before(now):
		return "start_passed"
	default:
		return ""
	}
}
