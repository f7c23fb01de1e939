// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router maps application paths onto screens and performs
// navigation.
//
// Paths are matched with gorilla/mux templates, so screens such as
// /games/{id} receive their variables the same way an HTTP handler would.
//
// # Navigation
//
// Navigate is an in-app route change: change listeners run and in-memory
// state is kept. Redirect is a full navigation: reload hooks run first so
// every component rebuilds its state from storage, then the change listeners
// run.
//
// # Usage
//
//	rt := router.New(router.DefaultRoutes())
//	rt.OnReload(mgr.Rehydrate)
//	rt.OnChange(func(c router.Change) { guard.Sync(c.To) })
//	rt.Navigate("/login")
package router
