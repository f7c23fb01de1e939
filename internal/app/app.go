// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires the bingo client together: storage, REST client,
// router, session, guards, connectivity probe and cart. Both the TUI and
// the command line build on an App.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bingocomunidade/bingo-tui/internal/api"
	"github.com/bingocomunidade/bingo-tui/internal/cart"
	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/config"
	"github.com/bingocomunidade/bingo-tui/internal/connectivity"
	"github.com/bingocomunidade/bingo-tui/internal/events"
	"github.com/bingocomunidade/bingo-tui/internal/router"
	"github.com/bingocomunidade/bingo-tui/internal/security/tabguard"
	"github.com/bingocomunidade/bingo-tui/internal/session"
	"github.com/bingocomunidade/bingo-tui/internal/storage"
)

// Options overrides parts of the wiring, mostly for tests.
type Options struct {
	// Clock defaults to the real clock.
	Clock clock.Clock

	// Persistent defaults to the SQLite store at the configured path.
	Persistent storage.Store
}

// App holds every long-lived component of the client.
type App struct {
	Config *config.Config

	Clock      clock.Clock
	Bus        *events.Bus
	Client     *api.Client
	Persistent storage.Store
	Volatile   *storage.Volatile
	Router     *router.Router
	Session    *session.Manager
	TabGuard   *tabguard.Guard
	Probe      *connectivity.Probe
	Cart       *cart.Cart
	Remote     *config.RemoteCache

	closer  io.Closer
	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New builds an App from cfg. Nothing runs until Start.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{
		Config:   cfg,
		Clock:    opts.Clock,
		Bus:      events.NewBus(),
		Volatile: storage.NewVolatile(),
		Router:   router.New(router.DefaultRoutes()),
	}
	if a.Clock == nil {
		a.Clock = clock.Real()
	}

	a.Persistent = opts.Persistent
	if a.Persistent == nil {
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		p, err := storage.OpenPersistent(path)
		if err != nil {
			return nil, err
		}
		a.Persistent = p
		a.closer = p
	}

	client, err := api.NewClient(cfg.API.BaseURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	burst := int(cfg.API.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	a.Client = client.
		WithTimeout(cfg.API.Timeout()).
		WithRateLimit(cfg.API.RequestsPerSecond, burst).
		WithSessionCookies(cfg.Security.SessionCookies)

	a.Session, err = session.NewManager(session.Options{
		Backend:    a.Client,
		Persistent: a.Persistent,
		Volatile:   a.Volatile,
		Navigator:  a.Router,
		Events:     a.Bus,
		Clock:      a.Clock,
		Config:     session.Config{Timeout: cfg.Security.InactivityTimeout(), Warning: cfg.Security.InactivityWarning()},
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	// A 401 outside /auth/ ends the session; a full navigation rebuilds it
	// from storage.
	a.Client.OnUnauthorized(a.Session.HandleSessionLost)
	a.Router.OnReload(a.Session.Rehydrate)

	wipe := storage.HardWipe{Persistent: a.Persistent, Volatile: a.Volatile, Cookies: a.Client}
	a.TabGuard = tabguard.New(a.Bus, a.Clock, wipe, a.Router, cfg.Security.AdminOfflineGrace())
	a.Router.OnChange(func(c router.Change) { a.TabGuard.Sync(c.To) })

	a.Probe = connectivity.NewProbe(a.Client, a.Bus, cfg.Security.ProbeInterval())
	a.Cart = cart.New(a.Persistent, a.Clock, cartOptions(cfg))
	a.Remote = config.NewRemoteCache(a.Client, a.Clock.Now)

	return a, nil
}

func cartOptions(cfg *config.Config) cart.Options {
	return cart.Options{
		Expiration:        cfg.Cart.Expiration(),
		AutoCleanStarted:  cfg.Cart.AutoCleanStartedGames,
		AutoCleanFinished: cfg.Cart.AutoCleanFinishedGames,
	}
}

// Start mounts the session at path and begins background work. The
// connectivity probe runs until Close or ctx ends.
func (a *App) Start(ctx context.Context, path string) {
	if a.started {
		return
	}
	a.started = true

	a.Session.Mount()
	a.Router.Navigate(path)
	a.PurgeCart()

	ctx = a.background(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Probe.Run(ctx)
	}()
}

// RefreshSettings applies the backend's published settings on top of the
// local configuration. Failures keep the local values.
func (a *App) RefreshSettings(ctx context.Context) {
	a.ApplyConfig(a.Remote.Resolve(ctx, a.Config))
}

// ApplyConfig pushes the runtime-tunable parts of cfg into the running
// components: the inactivity window and the cart rules. An invalid window
// is logged and the current one kept.
func (a *App) ApplyConfig(cfg *config.Config) {
	win := session.Config{Timeout: cfg.Security.InactivityTimeout(), Warning: cfg.Security.InactivityWarning()}
	if win != a.Session.Monitor().Config() {
		if err := a.Session.Monitor().Reconfigure(win); err != nil {
			log.Printf("CONFIG | inactivity window not applied: %v", err)
		} else {
			log.Printf("CONFIG | inactivity window timeout=%s warning=%s", win.Timeout, win.Warning)
		}
	}
	a.Cart.SetOptions(cartOptions(cfg))
}

// WatchConfig reapplies path whenever the file changes, until ctx ends.
// Remote settings are resolved on top of every reload.
func (a *App) WatchConfig(ctx context.Context, path string) {
	ctx = a.background(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		err := config.Watch(ctx, path, func(cfg *config.Config) {
			log.Printf("CONFIG | reloaded %s", path)
			a.ApplyConfig(a.Remote.Resolve(ctx, cfg))
		})
		if err != nil {
			log.Printf("CONFIG | watch disabled: %v", err)
		}
	}()
}

// background derives a context that Close cancels.
func (a *App) background(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancels = append(a.cancels, cancel)
	a.mu.Unlock()
	return ctx
}

// PurgeCart drops stale cart items and logs the count.
func (a *App) PurgeCart() int {
	n, err := a.Cart.PurgeExpired(a.Clock.Now())
	if err != nil {
		log.Printf("CART_PURGE | failed: %v", err)
		return 0
	}
	return n
}

// Close stops background work, the monitor and the guard, then closes the
// persistent store. The stored session is left in place.
func (a *App) Close() error {
	a.mu.Lock()
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
	a.mu.Unlock()
	a.wg.Wait()

	if a.Session != nil {
		a.Session.Unmount()
	}
	if a.TabGuard != nil {
		a.TabGuard.Close()
	}
	if a.closer != nil {
		err := a.closer.Close()
		a.closer = nil
		return err
	}
	return nil
}

// =============================================================================
// LOGGING
// =============================================================================

// SetupLogging sends the standard logger to the configured log file so the
// terminal stays clean. The returned closer restores stderr.
func SetupLogging(cfg *config.Config) (io.Closer, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags)
	return logFile{f}, nil
}

type logFile struct{ f *os.File }

func (l logFile) Close() error {
	log.SetOutput(os.Stderr)
	return l.f.Close()
}

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = errors.New("not signed in")

// RequireSession rehydrates the stored session for one-shot commands.
func (a *App) RequireSession() (session.User, error) {
	a.Session.Rehydrate()
	u, ok := a.Session.User()
	if !ok {
		return session.User{}, ErrNotSignedIn
	}
	return u, nil
}
