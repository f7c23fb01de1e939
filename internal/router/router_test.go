// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingocomunidade/bingo-tui/internal/security/access"
)

type creds struct {
	token, user string
}

func (c creds) Token() (string, bool)   { return c.token, c.token != "" }
func (c creds) RawUser() (string, bool) { return c.user, c.user != "" }

func TestResolve(t *testing.T) {
	rt := New(DefaultRoutes())

	tests := []struct {
		path   string
		screen Screen
		ok     bool
		vars   map[string]string
	}{
		{"/", ScreenHome, true, nil},
		{"/login", ScreenLogin, true, nil},
		{"/admin-site/login", ScreenAdminSiteLogin, true, nil},
		{"/admin-paroquia/dashboard", ScreenAdminParoquiaDashboard, true, nil},
		{"/games/42", ScreenGame, true, map[string]string{"id": "42"}},
		{"/games/abc", ScreenNotFound, false, nil},
		{"/dashboard?tab=jogos", ScreenDashboard, true, nil},
		{"/nowhere", ScreenNotFound, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := rt.Resolve(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.screen, m.Route.Screen)
			if tt.vars != nil {
				assert.Equal(t, tt.vars, m.Vars)
			}
		})
	}

	m, _ := rt.Resolve("/dashboard?tab=jogos")
	assert.Equal(t, "jogos", m.Query.Get("tab"))
}

func TestEveryProtectedRouteHasRolesAndLogin(t *testing.T) {
	for _, r := range DefaultRoutes() {
		if !r.Protected() {
			continue
		}
		assert.NotEmpty(t, r.Guard.Allowed, r.Name)
		assert.NotEmpty(t, r.Guard.LoginPath, r.Name)
	}
}

func TestEvaluate(t *testing.T) {
	rt := New(DefaultRoutes())
	member := creds{token: "t", user: `{"id":"U1","tipo":"fiel"}`}
	admin := creds{token: "t", user: `{"id":"A1","tipo":"super_admin"}`}

	_, d := rt.Evaluate("/admin-site/dashboard", member)
	assert.False(t, d.Allow)
	assert.Equal(t, access.DashboardPath, d.Redirect)

	_, d = rt.Evaluate("/admin-site/dashboard", creds{})
	assert.False(t, d.Allow)
	assert.Equal(t, access.AdminSiteLoginPath, d.Redirect)

	_, d = rt.Evaluate("/admin-site/dashboard", admin)
	assert.True(t, d.Allow)

	_, d = rt.Evaluate("/login", creds{})
	assert.True(t, d.Allow)
}

func TestEvaluate_UnknownAndMovedRoutes(t *testing.T) {
	rt := New(DefaultRoutes())

	m, d := rt.Evaluate("/rota-inexistente", creds{})
	assert.Equal(t, ScreenNotFound, m.Route.Screen)
	assert.False(t, d.Allow)
	assert.Equal(t, HomePath, d.Redirect)

	_, d = rt.Evaluate("/games/abc", creds{})
	assert.Equal(t, HomePath, d.Redirect)

	_, d = rt.Evaluate(access.AdminSitePrefix, creds{})
	assert.False(t, d.Allow)
	assert.Equal(t, access.AdminSiteLoginPath, d.Redirect)
}

// The general dashboard is open to every signed-in principal, whatever
// role tag the backend sent.
func TestEvaluate_DashboardAdmitsAnySession(t *testing.T) {
	rt := New(DefaultRoutes())

	for _, tag := range []string{"fiel", "super_admin", "paroquia_caixa", "usuario"} {
		t.Run(tag, func(t *testing.T) {
			_, d := rt.Evaluate(access.DashboardPath, creds{token: "t", user: `{"id":"U1","tipo":"` + tag + `"}`})
			assert.True(t, d.Allow)
		})
	}

	_, d := rt.Evaluate(access.DashboardPath, creds{})
	assert.Equal(t, access.LoginPath, d.Redirect)
}

// Following a refusal must always move somewhere else, so guard chains
// terminate for every route and every principal.
func TestEvaluate_NeverRedirectsToSelf(t *testing.T) {
	rt := New(DefaultRoutes())

	principals := map[string]creds{
		"anonymous": {},
		"corrupt":   {token: "t", user: "{not json"},
		"unknown":   {token: "t", user: `{"id":"U1","tipo":"usuario"}`},
		"no tag":    {token: "t", user: `{"id":"U1"}`},
	}
	for _, r := range access.AllRoles {
		principals[string(r)] = creds{token: "t", user: `{"id":"U1","tipo":"` + string(r) + `"}`}
	}

	for _, route := range DefaultRoutes() {
		path := strings.ReplaceAll(route.Template, "{id:[0-9]+}", "1")
		for name, c := range principals {
			t.Run(route.Name+"/"+name, func(t *testing.T) {
				seen := map[string]bool{}
				current := path
				for hop := 0; hop < 4; hop++ {
					_, d := rt.Evaluate(current, c)
					if d.Allow {
						return
					}
					require.NotEqual(t, current, d.Redirect)
					require.False(t, seen[d.Redirect], "redirect cycle through %s", d.Redirect)
					seen[current] = true
					current = d.Redirect
				}
				t.Fatalf("no allowed screen reached from %s", path)
			})
		}
	}
}

func TestURL(t *testing.T) {
	rt := New(DefaultRoutes())
	p, err := rt.URL("game", "id", "7")
	require.NoError(t, err)
	assert.Equal(t, "/games/7", p)

	_, err = rt.URL("missing")
	assert.Error(t, err)
}

func TestNavigateAndRedirect(t *testing.T) {
	rt := New(DefaultRoutes())

	var order []string
	var changes []Change
	rt.OnReload(func() { order = append(order, "reload") })
	rt.OnChange(func(c Change) {
		order = append(order, "change")
		changes = append(changes, c)
	})

	rt.Navigate("dashboard")
	assert.Equal(t, "/dashboard", rt.CurrentPath())
	assert.Equal(t, []string{"change"}, order)

	rt.Redirect(access.LoginPath)
	assert.Equal(t, access.LoginPath, rt.CurrentPath())
	assert.Equal(t, []string{"change", "reload", "change"}, order)
	assert.Equal(t, []Change{
		{From: "", To: "/dashboard"},
		{From: "/dashboard", To: access.LoginPath, Full: true},
	}, changes)
}

func TestListenerMayNavigate(t *testing.T) {
	rt := New(DefaultRoutes())
	rt.OnChange(func(c Change) {
		if c.To == "/" {
			rt.Navigate(access.LoginPath)
		}
	})

	rt.Navigate("/")
	assert.Equal(t, access.LoginPath, rt.CurrentPath())
}

func TestDuplicateRouteNamePanics(t *testing.T) {
	assert.Panics(t, func() {
		New([]Route{{Name: "a", Template: "/a"}, {Name: "a", Template: "/b"}})
	})
}
