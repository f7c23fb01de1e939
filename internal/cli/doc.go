// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the bingo command line.
//
// With no subcommand it starts the terminal UI. The subcommands cover the
// session from a plain shell:
//
//	bingo login [--portal admin-site]   sign in and store the session
//	bingo logout                        clear the stored session
//	bingo whoami                        show the signed-in user
//	bingo setup                         create the first site administrator
//	bingo config show|path|get|set      inspect or edit the config file
//	bingo cart list|purge               inspect the reserved cards
//
// All commands return errors; Execute maps them to exit codes.
package cli
