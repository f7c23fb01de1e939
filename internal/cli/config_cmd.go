// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bingocomunidade/bingo-tui/internal/config"
)

func newConfigCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return NewJSONResponse("config show", cfg).Print(cmd.OutOrStdout())
				}
				fmt.Fprint(cmd.OutOrStdout(), cfg.String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config, storage and log locations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				paths := map[string]string{}
				if p, err := configFilePath(opts); err == nil {
					paths["config"] = p
				}
				if p, err := cfg.StoragePath(); err == nil {
					paths["storage"] = p
				}
				if p, err := cfg.LogPath(); err == nil {
					paths["log"] = p
				}
				if opts.jsonOut {
					return NewJSONResponse("config path", paths).Print(cmd.OutOrStdout())
				}
				keys := make([]string, 0, len(paths))
				for k := range paths {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), RenderField(k, paths[k]))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:     "get <key>",
			Short:   "Print one setting",
			Example: `  bingo config get security.inactivity_timeout_minutes`,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				v, err := cfg.Get(args[0])
				if err != nil {
					return NewValidationError("key", args[0], err.Error())
				}
				if opts.jsonOut {
					return NewJSONResponse("config get", map[string]interface{}{args[0]: v}).Print(cmd.OutOrStdout())
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:     "set <key> <value>",
			Short:   "Change one setting and save the file",
			Example: `  bingo config set api.base_url https://bingo.paroquia.org.br/api`,
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return NewValidationError("key", args[0], err.Error())
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := saveConfig(cfg, opts); err != nil {
					return NewCommandError("config", "set", "could not save", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(args[0]+" = "+args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the setting keys",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, k := range config.GetAllKeys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			},
		},
	)
	return cmd
}

func configFilePath(opts *globalOptions) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return config.ConfigPathTOML()
}

func saveConfig(cfg *config.Config, opts *globalOptions) error {
	path, err := configFilePath(opts)
	if err != nil {
		return err
	}
	return config.SaveToPath(cfg, path)
}
