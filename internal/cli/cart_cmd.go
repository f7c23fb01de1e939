// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bingocomunidade/bingo-tui/internal/app"
	"github.com/bingocomunidade/bingo-tui/internal/util"
)

func newCartCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect the reserved cards",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the cards in the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app.App) error {
					a.PurgeCart()
					items, err := a.Cart.Items()
					if err != nil {
						return NewCommandError("cart", "list", "could not read the cart", err)
					}
					if opts.jsonOut {
						return NewJSONResponse("cart list", items).Print(cmd.OutOrStdout())
					}

					w := cmd.OutOrStdout()
					if len(items) == 0 {
						fmt.Fprintln(w, DimStyle.Render("Carrinho vazio."))
						return nil
					}
					total := 0.0
					for _, it := range items {
						fmt.Fprintf(w, "%s%s%s  %s\n",
							util.PadRight(util.TruncateWidth(it.GameName, 24), 26),
							util.PadRight(fmt.Sprintf("cartela %d", it.CardNumber), 16),
							brl(it.Price),
							DimStyle.Render("expira "+it.ExpiresAt.Local().Format("15:04")))
						total += it.Price
					}
					fmt.Fprintln(w, RenderSeparator(56))
					fmt.Fprintln(w, RenderField("Total", brl(total)))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "purge",
			Short: "Remove expired cards and cards of started games",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app.App) error {
					n := a.PurgeCart()
					if opts.jsonOut {
						return NewJSONResponse("cart purge", map[string]int{"removed": n}).Print(cmd.OutOrStdout())
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d cartela(s) removida(s).\n", n)
					return nil
				})
			},
		},
	)
	return cmd
}

func brl(v float64) string {
	return "R$ " + strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}
