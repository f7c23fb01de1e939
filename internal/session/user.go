// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"github.com/bingocomunidade/bingo-tui/internal/api"
	"github.com/bingocomunidade/bingo-tui/internal/security/access"
)

// User is the signed-in principal. It is stored as JSON under
// storage.KeyUser; the role is kept in the "tipo" field the route guard reads.
type User struct {
	ID       string      `json:"id"`
	Name     string      `json:"nome"`
	Email    string      `json:"email"`
	Role     access.Role `json:"tipo"`
	CPF      string      `json:"cpf,omitempty"`
	ParishID string      `json:"paroquia_id,omitempty"`
	Whatsapp string      `json:"whatsapp,omitempty"`
}

// UserPatch carries the fields UpdateUser may change. Nil fields are kept.
// ID and Role are not patchable.
type UserPatch struct {
	Name     *string
	Email    *string
	CPF      *string
	ParishID *string
	Whatsapp *string
}

// Apply merges p into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.CPF != nil {
		u.CPF = *p.CPF
	}
	if p.ParishID != nil {
		u.ParishID = *p.ParishID
	}
	if p.Whatsapp != nil {
		u.Whatsapp = *p.Whatsapp
	}
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.CPF == nil && p.ParishID == nil && p.Whatsapp == nil
}

// NormalizeUser maps a backend usuario record onto User. The backend uses
// Portuguese or English field names depending on the endpoint, and
// administrative accounts carry their role in nivel_acesso.
func NormalizeUser(rec api.UserRecord) User {
	u := User{
		ID:       string(rec.ID),
		Name:     firstNonEmpty(rec.Nome, rec.Name, rec.Login),
		Email:    rec.Email,
		CPF:      rec.CPF,
		ParishID: firstNonEmpty(string(rec.ParoquiaID), string(rec.ParishID)),
		Whatsapp: rec.Whatsapp,
	}

	candidates := []string{rec.NivelAcesso, rec.Tipo, rec.Role}
	for _, c := range candidates {
		if r := access.ParseRole(c); r.Valid() {
			u.Role = r
			break
		}
	}
	if u.Role == "" {
		u.Role = access.ParseRole(firstNonEmpty(candidates...))
	}
	return u
}

// patchFromRecord builds the patch that brings a local user in line with a
// server answer. Empty server fields leave the local value alone.
func patchFromRecord(rec api.UserRecord) UserPatch {
	var p UserPatch
	set := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	set(&p.Name, firstNonEmpty(rec.Nome, rec.Name))
	set(&p.Email, rec.Email)
	set(&p.CPF, rec.CPF)
	set(&p.ParishID, firstNonEmpty(string(rec.ParoquiaID), string(rec.ParishID)))
	set(&p.Whatsapp, rec.Whatsapp)
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
