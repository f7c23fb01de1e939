// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bingocomunidade/bingo-tui/internal/app"
	"github.com/bingocomunidade/bingo-tui/internal/config"
	"github.com/bingocomunidade/bingo-tui/internal/ui/shell"
)

// Version information, set at build time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalOptions are the persistent flags.
type globalOptions struct {
	configPath string
	jsonOut    bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}
	var startPath string

	root := &cobra.Command{
		Use:   "bingo",
		Short: "Bingo da Comunidade no terminal",
		Long: `bingo is the terminal client of the parish bingo platform.

Without a subcommand it opens the interactive interface. Sessions end after
a period of inactivity, and administrative sessions are wiped when the
connection to the server is lost.`,
		Version:       fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !CanPrompt() {
				return NewCommandError("bingo", "start", "the interface needs an interactive terminal", nil)
			}
			return withApp(cmd, opts, func(a *app.App) error {
				if path, err := configFilePath(opts); err == nil {
					if _, statErr := os.Stat(path); statErr == nil {
						a.WatchConfig(cmd.Context(), path)
					}
				}
				return shell.Run(cmd.Context(), a, startPath)
			})
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.bingo/config.toml)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	root.Flags().StringVar(&startPath, "start", "/", "screen to open first")

	root.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newSetupCommand(opts),
		newConfigCommand(opts),
		newCartCommand(opts),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	jsonOut, _ := root.PersistentFlags().GetBool("json")
	DisplayError(stderr, err, jsonOut)
	return GetExitCode(err)
}

// loadConfig reads the --config file, or the default locations. A broken
// default file is reported and the defaults are used.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFromPath(opts.configPath)
	}
	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("aviso: "+err.Error()+"; usando padrões"))
	}
	return cfg, nil
}

// withApp builds the application for one command, with logging sent to the
// log file, and tears it down afterwards.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(a *app.App) error) (err error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logCloser, err := app.SetupLogging(cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return fn(a)
}
