// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/storage"
)

var start = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func newCart(t *testing.T, opts Options) (*Cart, *clock.Fake, *storage.Volatile) {
	t.Helper()
	clk := clock.NewFake(start)
	store := storage.NewVolatile()
	return New(store, clk, opts), clk, store
}

func futureGame(id int64, card int, price float64) Item {
	return Item{
		GameID:       id,
		GameName:     "Bingo da Festa",
		GameStatus:   GameScheduled,
		GameStartsAt: start.Add(24 * time.Hour),
		CardNumber:   card,
		Price:        price,
	}
}

func TestAdd_AssignsIdentityAndExpiry(t *testing.T) {
	c, _, store := newCart(t, DefaultOptions())

	it, err := c.Add(futureGame(1, 7, 5))
	require.NoError(t, err)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, start, it.AddedAt)
	assert.Equal(t, start.Add(30*time.Minute), it.ExpiresAt)

	raw, ok, err := store.Get(storage.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"itens"`)
	assert.Contains(t, raw, `"numeroCartela":7`)
}

func TestTotalCountRemoveClear(t *testing.T) {
	c, _, _ := newCart(t, DefaultOptions())

	a, err := c.Add(futureGame(1, 1, 5))
	require.NoError(t, err)
	_, err = c.Add(futureGame(1, 2, 7.5))
	require.NoError(t, err)

	total, err := c.Total()
	require.NoError(t, err)
	assert.InDelta(t, 12.5, total, 1e-9)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, c.Remove(a.ID))
	assert.ErrorIs(t, c.Remove(a.ID), ErrNotFound)
	n, _ = c.Count()
	assert.Equal(t, 1, n)

	require.NoError(t, c.Clear())
	items, err := c.Items()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPurgeExpired_Rules(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		mutate  func(*Item)
		advance time.Duration
		purged  bool
	}{
		{name: "fresh item kept", opts: DefaultOptions(), mutate: func(*Item) {}},
		{name: "past expiry", opts: DefaultOptions(), mutate: func(*Item) {}, advance: 31 * time.Minute, purged: true},
		{name: "game started", opts: DefaultOptions(), mutate: func(i *Item) { i.GameStatus = GameActive }, purged: true},
		{name: "game started kept when disabled", opts: Options{Expiration: time.Hour}, mutate: func(i *Item) { i.GameStatus = GameActive }},
		{name: "game finished", opts: DefaultOptions(), mutate: func(i *Item) { i.GameStatus = GameFinished }, purged: true},
		{name: "game finished kept when disabled", opts: Options{Expiration: time.Hour, AutoCleanStarted: true}, mutate: func(i *Item) { i.GameStatus = GameFinished }},
		{name: "start time passed", opts: DefaultOptions(), mutate: func(i *Item) { i.GameStartsAt = start.Add(10 * time.Minute) }, advance: 11 * time.Minute, purged: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clk, _ := newCart(t, tt.opts)
			it := futureGame(1, 1, 5)
			tt.mutate(&it)
			_, err := c.Add(it)
			require.NoError(t, err)

			clk.Advance(tt.advance)
			removed, err := c.PurgeExpired(clk.Now())
			require.NoError(t, err)

			n, _ := c.Count()
			if tt.purged {
				assert.Equal(t, 1, removed)
				assert.Equal(t, 0, n)
			} else {
				assert.Equal(t, 0, removed)
				assert.Equal(t, 1, n)
			}
		})
	}
}

func TestCorruptCartReadsEmpty(t *testing.T) {
	c, _, store := newCart(t, DefaultOptions())
	require.NoError(t, store.Set(storage.KeyCart, "{broken"))

	items, err := c.Items()
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = c.Add(futureGame(2, 3, 1))
	require.NoError(t, err)
	n, _ := c.Count()
	assert.Equal(t, 1, n)
}

func TestLogoutSweepRemovesCart(t *testing.T) {
	c, _, store := newCart(t, DefaultOptions())
	_, err := c.Add(futureGame(1, 1, 5))
	require.NoError(t, err)

	_, err = storage.Sweep(store, storage.IsSessionKey)
	require.NoError(t, err)
	n, _ := c.Count()
	assert.Equal(t, 0, n)
}
