// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bingocomunidade/bingo-tui/internal/api"
	"github.com/bingocomunidade/bingo-tui/internal/app"
	"github.com/bingocomunidade/bingo-tui/internal/session"
)

// =============================================================================
// LOGIN
// =============================================================================

func newLoginCommand(opts *globalOptions) *cobra.Command {
	var portalName, identifier string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Example: `  bingo login
  bingo login --portal admin-site -u admin
  printf 'Senha@123\n' | bingo login -u maria@example.org`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := session.ParsePortal(portalName)
			if err != nil {
				return NewValidationError("portal", portalName, "use general, admin-site or admin-paroquia")
			}

			p := newPrompter(cmd)
			defer p.Close()

			if identifier == "" {
				if identifier, err = p.Line(identifierLabel(portal)); err != nil {
					return err
				}
			}
			if identifier == "" {
				return ErrMissingArgument("identifier", "bingo login -u maria@example.org")
			}
			password, err := p.Secret("Senha")
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(a *app.App) error {
				u, err := a.Session.LoginAs(cmd.Context(), portal, identifier, password)
				if errors.Is(err, session.ErrSetupRequired) {
					fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render("Primeiro acesso: execute 'bingo setup' para criar o administrador."))
					return nil
				}
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return NewJSONResponse("login", userView(u)).Print(cmd.OutOrStdout())
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Bem-vindo, "+u.Name)+DimStyle.Render(" ("+u.Role.Label()+")"))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&portalName, "portal", "general", "login portal: general, admin-site or admin-paroquia")
	cmd.Flags().StringVarP(&identifier, "user", "u", "", "email, CPF or admin login")
	return cmd
}

func identifierLabel(p session.Portal) string {
	switch p {
	case session.PortalAdminSite:
		return "Login"
	case session.PortalAdminParoquia:
		return "Email"
	default:
		return "Email ou CPF"
	}
}

// =============================================================================
// LOGOUT
// =============================================================================

func newLogoutCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				_, err := a.RequireSession()
				wasSignedIn := err == nil
				a.Session.Logout()
				if opts.jsonOut {
					return NewJSONResponse("logout", map[string]bool{"was_signed_in": wasSignedIn}).Print(cmd.OutOrStdout())
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada.")
				return nil
			})
		},
	}
}

// =============================================================================
// WHOAMI
// =============================================================================

type whoamiView struct {
	ID        string     `json:"id"`
	Name      string     `json:"nome"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"tipo"`
	RoleLabel string     `json:"tipo_label"`
	ExpiresAt *time.Time `json:"token_expira_em,omitempty"`
	Expired   bool       `json:"token_expirado"`
}

func userView(u session.User) whoamiView {
	return whoamiView{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), RoleLabel: u.Role.Label()}
}

func newWhoamiCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				u, err := a.RequireSession()
				if err != nil {
					return err
				}
				view := userView(u)
				// The claims are informational; the backend decides validity.
				if info, err := api.TokenClaims(a.Session.Token()); err == nil && !info.ExpiresAt.IsZero() {
					exp := info.ExpiresAt
					view.ExpiresAt = &exp
					view.Expired = info.Expired(a.Clock.Now())
				}

				if opts.jsonOut {
					return NewJSONResponse("whoami", view).Print(cmd.OutOrStdout())
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, RenderField("Nome", view.Name))
				if view.Email != "" {
					fmt.Fprintln(w, RenderField("Email", view.Email))
				}
				fmt.Fprintln(w, RenderField("Perfil", view.RoleLabel))
				if view.ExpiresAt != nil {
					exp := view.ExpiresAt.Local().Format("02/01/2006 15:04")
					if view.Expired {
						exp += " (expirado)"
					}
					fmt.Fprintln(w, RenderField("Token expira", exp))
				}
				return nil
			})
		},
	}
}
