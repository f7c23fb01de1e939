// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"unicode"

	"github.com/bingocomunidade/bingo-tui/internal/api"
)

// FormError is a field-level validation failure. Message is ready for
// display.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

// Password length bounds accepted by the backend.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 16
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// ValidatePassword applies the backend's password policy.
func ValidatePassword(pw string) error {
	n := len([]rune(pw))
	switch {
	case n < MinPasswordLength:
		return &FormError{Field: "senha", Message: "Senha deve ter no mínimo 6 caracteres"}
	case n > MaxPasswordLength:
		return &FormError{Field: "senha", Message: "Senha deve ter no máximo 16 caracteres"}
	case !strings.ContainsFunc(pw, unicode.IsUpper):
		return &FormError{Field: "senha", Message: "Senha deve conter pelo menos uma letra maiúscula"}
	case !strings.ContainsFunc(pw, unicode.IsLower):
		return &FormError{Field: "senha", Message: "Senha deve conter pelo menos uma letra minúscula"}
	case !strings.ContainsFunc(pw, unicode.IsDigit):
		return &FormError{Field: "senha", Message: "Senha deve conter pelo menos um número"}
	case !strings.ContainsAny(pw, passwordSpecials):
		return &FormError{Field: "senha", Message: "Senha deve conter pelo menos um caractere especial"}
	}
	return nil
}

// BootstrapForm is the first-access form as typed by the operator.
type BootstrapForm struct {
	Nome        string
	CPF         string
	Email       string
	Whatsapp    string
	Senha       string
	Confirmacao string
}

// Request validates the form and builds the bootstrap request. The CPF
// digits become the administrator's login.
func (f BootstrapForm) Request() (api.BootstrapRequest, error) {
	nome := strings.TrimSpace(f.Nome)
	if nome == "" {
		return api.BootstrapRequest{}, &FormError{Field: "nome", Message: "Nome completo é obrigatório"}
	}
	cpf := digitsOnly(normalizeIdentifier(f.CPF))
	if len(cpf) != 11 {
		return api.BootstrapRequest{}, &FormError{Field: "cpf", Message: "CPF deve conter 11 dígitos"}
	}
	email := strings.TrimSpace(f.Email)
	if !strings.Contains(email, "@") {
		return api.BootstrapRequest{}, &FormError{Field: "email", Message: "Email inválido"}
	}
	whatsapp := digitsOnly(normalizeIdentifier(f.Whatsapp))
	if len(whatsapp) != 13 {
		return api.BootstrapRequest{}, &FormError{Field: "whatsapp", Message: "WhatsApp deve estar no formato +55 (DD) 9XXXX-XXXX"}
	}
	if err := ValidatePassword(f.Senha); err != nil {
		return api.BootstrapRequest{}, err
	}
	if f.Senha != f.Confirmacao {
		return api.BootstrapRequest{}, &FormError{Field: "confirmacao", Message: "As senhas não coincidem"}
	}

	return api.BootstrapRequest{
		Nome:     nome,
		Login:    cpf,
		Email:    email,
		CPF:      cpf,
		Whatsapp: whatsapp,
		Senha:    f.Senha,
	}, nil
}
