// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bingocomunidade/bingo-tui/internal/app"
	"github.com/bingocomunidade/bingo-tui/internal/session"
)

func newSetupCommand(opts *globalOptions) *cobra.Command {
	var form session.BootstrapForm

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the first site administrator",
		Long: `setup runs the first-access flow: it creates the first site
administrator and signs it in. It does nothing once an administrator exists.

On a terminal the fields are asked in a form. Otherwise pass them as flags
and pipe the password twice on stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				status, err := a.Client.FirstAccess(cmd.Context())
				if err != nil {
					return NewCommandError("setup", "check", "could not reach the server", err)
				}
				if !status.NeedsSetup {
					msg := status.Message
					if msg == "" {
						msg = "O primeiro acesso já foi concluído."
					}
					fmt.Fprintln(cmd.OutOrStdout(), msg)
					return nil
				}

				if err := fillBootstrapForm(cmd, &form); err != nil {
					return err
				}
				req, err := form.Request()
				if err != nil {
					return err
				}
				u, err := a.Session.Bootstrap(cmd.Context(), req)
				if err != nil {
					return err
				}

				if opts.jsonOut {
					return NewJSONResponse("setup", userView(u)).Print(cmd.OutOrStdout())
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Administrador criado: "+u.Name))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&form.Nome, "nome", "", "full name")
	cmd.Flags().StringVar(&form.CPF, "cpf", "", "CPF, used as the login")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Whatsapp, "whatsapp", "", "WhatsApp number with country code")
	return cmd
}

// fillBootstrapForm asks for whatever the flags left out.
func fillBootstrapForm(cmd *cobra.Command, f *session.BootstrapForm) error {
	if CanPrompt() {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Nome completo").Value(&f.Nome).Validate(required("Nome completo")),
				huh.NewInput().Title("CPF").Placeholder("000.000.000-00").Value(&f.CPF).Validate(required("CPF")),
				huh.NewInput().Title("Email").Value(&f.Email).Validate(required("Email")),
				huh.NewInput().Title("WhatsApp").Placeholder("+55 (11) 99999-9999").Value(&f.Whatsapp).Validate(required("WhatsApp")),
			),
			huh.NewGroup(
				huh.NewInput().Title("Senha").EchoMode(huh.EchoModePassword).Value(&f.Senha).Validate(session.ValidatePassword),
				huh.NewInput().Title("Confirmar senha").EchoMode(huh.EchoModePassword).Value(&f.Confirmacao),
			),
		).Run()
	}

	p := newPrompter(cmd)
	defer p.Close()
	var err error
	if f.Senha, err = p.Secret("Senha"); err != nil {
		return err
	}
	f.Confirmacao, err = p.Secret("Confirmar senha")
	return err
}

func required(label string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s é obrigatório", label)
		}
		return nil
	}
}
