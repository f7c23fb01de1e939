// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingocomunidade/bingo-tui/internal/api"
	"github.com/bingocomunidade/bingo-tui/internal/app"
	"github.com/bingocomunidade/bingo-tui/internal/config"
	"github.com/bingocomunidade/bingo-tui/internal/session"
)

// isolate points HOME and the API at a temporary directory and a fake
// backend.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("BINGO_STORAGE_PATH", "")
	t.Setenv("BINGO_LOG_PATH", "")
	t.Setenv("BINGO_INACTIVITY_TIMEOUT_MINUTES", "")
	t.Setenv("BINGO_INACTIVITY_WARNING_MINUTES", "")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "U1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["senha"] != "Senha@123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Credenciais inválidas"}`))
			return
		}
		fmt.Fprintf(w, `{"access_token":%q,"usuario":{"id":"U1","nome":"Ana","email":"ana@example.org","tipo":"fiel"}}`, token)
	})
	mux.HandleFunc("/auth/first-access", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"needs_setup":false,"message":"Sistema já configurado"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("BINGO_API_URL", srv.URL)
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "Senha@123\n", "login", "-u", "ana@example.org")
	require.NoError(t, err)
	assert.Contains(t, out, "Bem-vindo, Ana")

	out, _, err = run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "Fiel")
	assert.Contains(t, out, "Token expira")

	out, _, err = run(t, "", "--json", "whoami")
	require.NoError(t, err)
	var resp struct {
		Success bool       `json:"success"`
		Data    whoamiView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "U1", resp.Data.ID)
	assert.False(t, resp.Data.Expired)

	out, _, err = run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Sessão encerrada")

	_, _, err = run(t, "", "whoami")
	require.ErrorIs(t, err, app.ErrNotSignedIn)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

func TestLogin_PromptsForIdentifier(t *testing.T) {
	isolate(t)

	out, stderr, err := run(t, "ana@example.org\nSenha@123\n", "login")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Email ou CPF:")
	assert.Contains(t, out, "Bem-vindo")
}

func TestLogin_BackendMessage(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "errada\n", "login", "-u", "ana@example.org")
	require.Error(t, err)

	var le *session.LoginError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "Credenciais inválidas", le.Message)
	assert.Equal(t, ExitAuthError, GetExitCode(err))

	var buf bytes.Buffer
	DisplayError(&buf, err, false)
	assert.Contains(t, buf.String(), "Credenciais inválidas")
}

func TestLogin_RejectsUnknownPortal(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "", "login", "--portal", "nope", "-u", "x")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestLogin_MissingPasswordInput(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "", "login", "-u", "ana@example.org")
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSetup_AlreadyDone(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "", "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Sistema já configurado")
}

func TestConfigSetGet(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bingo.yaml")
	require.NoError(t, config.SaveToPath(config.Default(), path))

	_, _, err := run(t, "", "--config", path, "config", "set", "cart.expiration_minutes", "45")
	require.NoError(t, err)

	out, _, err := run(t, "", "--config", path, "config", "get", "cart.expiration_minutes")
	require.NoError(t, err)
	assert.Equal(t, "45\n", out)

	_, _, err = run(t, "", "--config", path, "config", "set", "security.inactivity_warning_minutes", "99")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	_, _, err = run(t, "", "--config", path, "config", "get", "no.such.key")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestConfigPathAndKeys(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "", "--json", "config", "path")
	require.NoError(t, err)
	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, strings.HasSuffix(resp.Data["storage"], filepath.Join(".bingo", "storage.db")))
	assert.True(t, strings.HasSuffix(resp.Data["config"], filepath.Join(".bingo", "config.toml")))

	out, _, err = run(t, "", "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "security.inactivity_timeout_minutes")
}

func TestCartCommands(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "", "cart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Carrinho vazio")

	out, _, err = run(t, "", "--json", "cart", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, `"removed": 0`)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("portal", "x", "bad"), ExitUsageError},
		{"form", &session.FormError{Field: "cpf", Message: "CPF"}, ExitUsageError},
		{"config", fmt.Errorf("invalid config: %w", config.ValidationError{Field: "api.base_url", Message: "bad"}), ExitConfigError},
		{"network", fmt.Errorf("ping: %w", api.ErrNetwork), ExitNetworkError},
		{"not signed in", app.ErrNotSignedIn, ExitAuthError},
		{"unauthorized", &api.Error{Status: http.StatusUnauthorized, Message: "x"}, ExitAuthError},
		{"timeout", context.DeadlineExceeded, ExitTimeoutError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExecute_ReportsJSONErrors(t *testing.T) {
	isolate(t)

	var out, errOut bytes.Buffer
	code := Execute(context.Background(), []string{"--json", "whoami"}, &out, &errOut)
	assert.Equal(t, ExitAuthError, code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(ExitAuthError), body["exit_code"])
}
