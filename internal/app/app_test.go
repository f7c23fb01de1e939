// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingocomunidade/bingo-tui/internal/cart"
	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/config"
	"github.com/bingocomunidade/bingo-tui/internal/events"
	"github.com/bingocomunidade/bingo-tui/internal/security/access"
	"github.com/bingocomunidade/bingo-tui/internal/session"
	"github.com/bingocomunidade/bingo-tui/internal/storage"
)

type fixture struct {
	app   *App
	clock *clock.Fake
	store *storage.Volatile
	srv   *httptest.Server
}

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"t1","usuario":{"id":"U1","nome":"Ana","tipo":"fiel"}}`))
	})
	mux.HandleFunc("/auth/admin-site/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"a1","usuario":{"id":"A1","nome":"Root","nivel_acesso":"super_admin"}}`))
	})
	mux.HandleFunc("/configuracoes", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer expired" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token expirado"}`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"chave":"inactivityTimeout","valor":"10","tipo":"number"},
			{"chave":"inactivityWarningMinutes","valor":"1","tipo":"number"},
			{"chave":"cartExpirationMinutes","valor":"5","tipo":"number"}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := backend(t)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL
	cfg.API.RequestsPerSecond = 0

	f := &fixture{
		clock: clock.NewFake(time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)),
		store: storage.NewVolatile(),
		srv:   srv,
	}
	a, err := New(cfg, Options{Clock: f.clock, Persistent: f.store})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	f.app = a
	return f
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Security.InactivityWarningMinutes = cfg.Security.InactivityTimeoutMinutes

	_, err := New(cfg, Options{Persistent: storage.NewVolatile()})
	require.Error(t, err)
}

func TestApp_LoginLandsOnDashboard(t *testing.T) {
	f := newFixture(t)
	f.app.Start(context.Background(), access.LoginPath)

	u, err := f.app.Session.Login(context.Background(), "ana@example.org", "x")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, access.DashboardPath, f.app.Router.CurrentPath())
	assert.Equal(t, "t1", f.app.Client.Token())

	_, decision := f.app.Router.Evaluate(access.DashboardPath, f.app.Session.Credentials())
	assert.True(t, decision.Allow)
	_, decision = f.app.Router.Evaluate(access.AdminSiteDashboardPath, f.app.Session.Credentials())
	assert.False(t, decision.Allow)
}

func TestApp_InactivityLogsOut(t *testing.T) {
	f := newFixture(t)
	f.app.Start(context.Background(), access.LoginPath)
	_, err := f.app.Session.Login(context.Background(), "ana@example.org", "x")
	require.NoError(t, err)

	f.clock.Advance(14 * time.Minute)
	f.app.Bus.Emit(events.KeyPress)
	f.clock.Advance(14 * time.Minute)
	assert.True(t, f.app.Session.IsAuthenticated(), "activity restarted the cycle")

	f.clock.Advance(time.Minute)
	assert.False(t, f.app.Session.IsAuthenticated())
	assert.Equal(t, access.LoginPath, f.app.Router.CurrentPath())
	_, ok, _ := f.store.Get(storage.KeyToken)
	assert.False(t, ok)
}

func TestApp_AdminOfflineWipe(t *testing.T) {
	f := newFixture(t)
	f.app.Start(context.Background(), access.AdminSiteLoginPath)
	require.NoError(t, f.store.Set("theme", "dark"))

	_, err := f.app.Session.LoginAs(context.Background(), session.PortalAdminSite, "root", "x")
	require.NoError(t, err)
	require.Equal(t, access.AdminSiteDashboardPath, f.app.Router.CurrentPath())
	require.True(t, f.app.TabGuard.Active())

	f.app.Bus.Emit(events.Offline)
	f.clock.Advance(5 * time.Second)

	assert.Equal(t, 0, f.store.Len(), "hard wipe clears everything")
	assert.Equal(t, access.AdminSiteLoginPath, f.app.Router.CurrentPath())
	assert.False(t, f.app.Session.IsAuthenticated(), "the redirect rebuilt the session from storage")
}

func TestApp_TabGuardFollowsRoute(t *testing.T) {
	f := newFixture(t)
	f.app.Start(context.Background(), "/")
	assert.False(t, f.app.TabGuard.Active())

	f.app.Router.Navigate(access.AdminSiteDashboardPath)
	assert.True(t, f.app.TabGuard.Active())

	f.app.Router.Navigate(access.DashboardPath)
	assert.False(t, f.app.TabGuard.Active())
	assert.Equal(t, 0, f.app.Bus.Count(events.Offline))
}

func TestApp_UnauthorizedEndsSession(t *testing.T) {
	f := newFixture(t)
	f.app.Start(context.Background(), access.LoginPath)
	_, err := f.app.Session.Login(context.Background(), "ana@example.org", "x")
	require.NoError(t, err)

	f.app.Client.SetToken("expired")
	_, err = f.app.Client.Settings(context.Background())
	require.Error(t, err)

	assert.False(t, f.app.Session.IsAuthenticated())
	assert.Equal(t, access.LoginPath, f.app.Router.CurrentPath())
}

func TestApp_RefreshSettings(t *testing.T) {
	f := newFixture(t)
	f.app.Start(context.Background(), "/")

	f.app.RefreshSettings(context.Background())

	win := f.app.Session.Monitor().Config()
	assert.Equal(t, 10*time.Minute, win.Timeout)
	assert.Equal(t, time.Minute, win.Warning)

	item, err := f.app.Cart.Add(cart.Item{GameID: 7, CardNumber: 12, Price: 5})
	require.NoError(t, err)
	assert.True(t, f.clock.Now().Add(5*time.Minute).Equal(item.ExpiresAt))
}

func TestApp_ApplyConfigKeepsWindowOnInvalidValues(t *testing.T) {
	f := newFixture(t)
	cfg := config.Default()
	cfg.Security.InactivityWarningMinutes = 20
	cfg.Cart.AutoCleanStartedGames = false

	f.app.ApplyConfig(cfg)

	assert.Equal(t, 15*time.Minute, f.app.Session.Monitor().Config().Timeout)
	assert.False(t, f.app.Cart.Options().AutoCleanStarted)
}

func TestApp_WatchConfig(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := config.Default()
	cfg.API.BaseURL = f.srv.URL
	cfg.Cart.AutoCleanFinishedGames = false

	f.app.WatchConfig(context.Background(), path)

	// Rewrite until the watcher is registered and picks a change up.
	require.Eventually(t, func() bool {
		_ = config.SaveTOML(cfg, path)
		return !f.app.Cart.Options().AutoCleanFinished
	}, 5*time.Second, 300*time.Millisecond)

	// Remote settings still win for the keys the backend publishes.
	assert.Equal(t, 10*time.Minute, f.app.Session.Monitor().Config().Timeout)
}

func TestApp_PurgeCartOnStart(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.Cart.Add(cart.Item{GameID: 1, CardNumber: 1, Price: 5})
	require.NoError(t, err)

	f.clock.Advance(31 * time.Minute)
	f.app.Start(context.Background(), "/")

	n, err := f.app.Cart.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRequireSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.RequireSession()
	assert.True(t, errors.Is(err, ErrNotSignedIn))

	require.NoError(t, f.store.Set(storage.KeyToken, "t9"))
	require.NoError(t, f.store.Set(storage.KeyUser, `{"id":"U9","nome":"Bia","tipo":"fiel"}`))
	u, err := f.app.RequireSession()
	require.NoError(t, err)
	assert.Equal(t, "Bia", u.Name)
}

func TestSetupLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Path = filepath.Join(t.TempDir(), "logs", "bingo.log")

	closer, err := SetupLogging(cfg)
	require.NoError(t, err)
	log.Printf("LOGOUT_ERROR | step=test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Log.Path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "LOGOUT_ERROR | step=test"))
}
