// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
)

// ID accepts both JSON strings and numbers; the backend uses either
// depending on the table.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// UserRecord is the backend's "usuario" object. Older endpoints use the
// English field names, newer ones the Portuguese ones.
type UserRecord struct {
	ID         ID     `json:"id"`
	Nome       string `json:"nome,omitempty"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	CPF        string `json:"cpf,omitempty"`
	Tipo       string `json:"tipo,omitempty"`
	Role       string `json:"role,omitempty"`
	ParoquiaID ID     `json:"paroquia_id,omitempty"`
	ParishID   ID     `json:"parish_id,omitempty"`
	Whatsapp   string `json:"whatsapp,omitempty"`

	// Administrative accounts carry their role here instead of in Tipo.
	NivelAcesso string `json:"nivel_acesso,omitempty"`
	Login       string `json:"login,omitempty"`
}

// LoginRequest is the body of POST /auth/login. Exactly one of CPF or Email
// is set.
type LoginRequest struct {
	CPF   string `json:"cpf,omitempty"`
	Email string `json:"email,omitempty"`
	Senha string `json:"senha"`
}

// AdminSiteLoginRequest is the body of POST /auth/admin-site/login.
type AdminSiteLoginRequest struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

// AdminParoquiaLoginRequest is the body of POST /auth/admin-paroquia/login.
type AdminParoquiaLoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// TokenResponse is returned by every login endpoint.
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type,omitempty"`
	Usuario     UserRecord `json:"usuario"`
	Bootstrap   bool       `json:"bootstrap,omitempty"`
}

// BootstrapRequest provisions the first top-level administrator.
type BootstrapRequest struct {
	Nome     string `json:"nome"`
	Login    string `json:"login"`
	Email    string `json:"email,omitempty"`
	CPF      string `json:"cpf,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Senha    string `json:"senha"`
}

// BootstrapResponse is returned by POST /auth/bootstrap. The new account is
// signed in immediately.
type BootstrapResponse struct {
	Message     string     `json:"message,omitempty"`
	AdminID     ID         `json:"admin_id,omitempty"`
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type,omitempty"`
	Usuario     UserRecord `json:"usuario"`
}

// BootstrapLoginRequest is the body of POST /auth/bootstrap/login.
type BootstrapLoginRequest struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

// FirstAccessResponse is returned by GET /auth/first-access.
type FirstAccessResponse struct {
	NeedsSetup bool   `json:"needs_setup"`
	Message    string `json:"message,omitempty"`
}

// ProfileUpdate is the body of PUT /auth/profile/{id}. Nil fields are left
// untouched by the backend.
type ProfileUpdate struct {
	Nome     *string `json:"nome,omitempty"`
	Email    *string `json:"email,omitempty"`
	CPF      *string `json:"cpf,omitempty"`
	Whatsapp *string `json:"whatsapp,omitempty"`
}

// Setting is one entry of GET /configuracoes.
type Setting struct {
	Chave     string `json:"chave"`
	Valor     string `json:"valor"`
	Tipo      string `json:"tipo"`
	Categoria string `json:"categoria,omitempty"`
	Descricao string `json:"descricao,omitempty"`
}
