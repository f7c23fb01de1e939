// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors.
var (
	// ErrNetwork marks failures where no response was received.
	ErrNetwork = errors.New("api: network unavailable")

	// ErrUnauthorized marks 401 responses.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrInvalidBaseURL is returned for unusable base URLs.
	ErrInvalidBaseURL = errors.New("api: invalid base URL")
)

// User-facing fallback messages.
const (
	msgServerError    = "Erro interno do servidor. Nossa equipe técnica foi notificada."
	msgInvalidData    = "Dados inválidos. Verifique os campos preenchidos."
	msgConnection     = "Erro de conexão. Verifique sua internet ou se o servidor está online."
	msgStatusTemplate = "Erro %d: Não foi possível processar sua solicitação."
)

// Error is a failed backend call. Message is safe to show to the user.
type Error struct {
	Status  int
	Message string
	Method  string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrUnauthorized on 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the user-facing text for err, or fallback when err did not
// come from the backend.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrNetwork) {
		return msgConnection
	}
	return fallback
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Msg string `json:"msg"`
}

// decodeError maps an error response to the message the user sees. A string
// detail is passed through verbatim.
func decodeError(status int, body []byte) string {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	var detail string
	hasDetail := len(eb.Detail) > 0 && json.Unmarshal(eb.Detail, &detail) == nil && detail != ""

	switch {
	case status == http.StatusInternalServerError:
		if hasDetail {
			return detail
		}
		return msgServerError

	case status == http.StatusUnprocessableEntity:
		var list []validationDetail
		if len(eb.Detail) > 0 && json.Unmarshal(eb.Detail, &list) == nil && len(list) > 0 {
			msgs := make([]string, 0, len(list))
			for _, d := range list {
				msgs = append(msgs, d.Msg)
			}
			return strings.Join(msgs, ", ")
		}
		if hasDetail {
			return detail
		}
		return msgInvalidData

	case hasDetail:
		return detail

	default:
		return fmt.Sprintf(msgStatusTemplate, status)
	}
}
