// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for bingo.
//
// Supports TOML, JSON and YAML configuration files, with sensible defaults,
// a .env file, environment variable overrides, validation and settings
// published by the backend.
//
// # Key Types
//
//   - Config: main configuration structure with all settings
//   - SecurityConfig: inactivity timeout, offline grace, session cookies
//   - CartConfig: cart expiry and purge rules
//   - RemoteCache: backend settings cached for one minute
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (BINGO_*), including those from ./.env
//   - ~/.bingo/config.toml
//   - ~/.bingo/config.json
//   - ~/.bingo/config.yaml
//   - Built-in defaults
//
// Backend settings from GET /configuracoes are merged on top at runtime.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.Security.InactivityTimeout()
package config
