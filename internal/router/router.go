// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/bingocomunidade/bingo-tui/internal/security/access"
)

// Match is a resolved path.
type Match struct {
	Route Route
	Path  string
	Vars  map[string]string
	Query url.Values
}

// Change describes a completed navigation.
type Change struct {
	From string
	To   string
	Full bool
}

// Router holds the route table and the current path.
type Router struct {
	mux    *mux.Router
	routes map[string]Route

	mu        sync.Mutex
	current   string
	listeners []func(Change)
	reloads   []func()
}

// New builds a router. Route names must be unique.
func New(routes []Route) *Router {
	r := &Router{
		mux:    mux.NewRouter(),
		routes: make(map[string]Route, len(routes)),
	}
	for _, rt := range routes {
		if _, dup := r.routes[rt.Name]; dup {
			panic(fmt.Sprintf("router: duplicate route name %q", rt.Name))
		}
		r.routes[rt.Name] = rt
		r.mux.NewRoute().Name(rt.Name).Path(rt.Template)
	}
	return r
}

// Resolve matches path against the route table.
func (r *Router) Resolve(path string) (Match, bool) {
	u, err := url.Parse(path)
	if err != nil {
		return Match{Route: notFound, Path: path}, false
	}
	if u.Path == "" {
		u.Path = "/"
	}

	req := &http.Request{Method: http.MethodGet, URL: u, Host: "bingo.local"}
	var rm mux.RouteMatch
	if !r.mux.Match(req, &rm) || rm.Route == nil {
		return Match{Route: notFound, Path: u.Path, Query: u.Query()}, false
	}
	return Match{
		Route: r.routes[rm.Route.GetName()],
		Path:  u.Path,
		Vars:  rm.Vars,
		Query: u.Query(),
	}, true
}

// notFound stands in for paths outside the route table.
var notFound = Route{Name: "not-found", Screen: ScreenNotFound, RedirectTo: HomePath}

// Evaluate resolves path and runs its guard, if any, against creds. A
// refusal never redirects to path itself; such a decision falls back to the
// home screen.
func (r *Router) Evaluate(path string, creds access.CredentialReader) (Match, access.Decision) {
	m, _ := r.Resolve(path)
	if m.Route.RedirectTo != "" {
		reason := "route moved"
		if m.Route.Screen == ScreenNotFound {
			reason = "unknown route"
		}
		return m, access.Decision{Redirect: m.Route.RedirectTo, Reason: reason}
	}
	if m.Route.Guard == nil {
		return m, access.Decision{Allow: true}
	}
	d := m.Route.Guard.Check(creds)
	if !d.Allow && d.Redirect == m.Path {
		log.Printf("NAVIGATION | guard=%s redirected %s to itself", m.Route.Guard.Name, m.Path)
		d.Redirect = HomePath
	}
	return m, d
}

// URL builds the path of a named route.
func (r *Router) URL(name string, pairs ...string) (string, error) {
	rt := r.mux.Get(name)
	if rt == nil {
		return "", fmt.Errorf("router: unknown route %q", name)
	}
	u, err := rt.URLPath(pairs...)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// CurrentPath returns the current path.
func (r *Router) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnChange registers a listener run after every navigation.
func (r *Router) OnChange(fn func(Change)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// OnReload registers a hook run on every full navigation, before the change
// listeners.
func (r *Router) OnReload(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloads = append(r.reloads, fn)
}

// Navigate changes route inside the application.
func (r *Router) Navigate(path string) {
	r.move(path, false)
}

// Redirect performs a full navigation.
func (r *Router) Redirect(path string) {
	r.move(path, true)
}

func (r *Router) move(path string, full bool) {
	path = normalizePath(path)

	r.mu.Lock()
	from := r.current
	r.current = path
	listeners := append([]func(Change){}, r.listeners...)
	var reloads []func()
	if full {
		reloads = append(reloads, r.reloads...)
	}
	r.mu.Unlock()

	if full {
		log.Printf("NAVIGATION | redirect from=%s to=%s", from, path)
		for _, fn := range reloads {
			fn()
		}
	}

	c := Change{From: from, To: path, Full: full}
	for _, fn := range listeners {
		fn(c)
	}
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
