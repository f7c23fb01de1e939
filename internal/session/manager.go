// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/bingocomunidade/bingo-tui/internal/api"
	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/events"
	"github.com/bingocomunidade/bingo-tui/internal/security/access"
	"github.com/bingocomunidade/bingo-tui/internal/storage"
)

// Sentinel errors.
var (
	// ErrLoginInProgress is returned while another login is awaiting the
	// backend.
	ErrLoginInProgress = errors.New("session: login already in progress")

	// ErrNotAuthenticated is returned by operations that need a principal.
	ErrNotAuthenticated = errors.New("session: not authenticated")

	// ErrInvalidIdentifier is returned when the login identifier is neither
	// an email nor a CPF.
	ErrInvalidIdentifier = errors.New("session: identifier must be an email or an 11-digit CPF")

	// ErrSetupRequired is returned when the temporary bootstrap account
	// signed in and the first administrator still has to be created.
	ErrSetupRequired = errors.New("session: first access setup required")
)

// Login failure messages shown when the backend sends no detail.
const (
	msgLoginFailed      = "Erro ao fazer login"
	msgAdminLoginFailed = "Erro ao fazer login. Verifique suas credenciais."
	msgInvalidID        = "Informe um email ou um CPF com 11 dígitos."
	msgSetupDone        = "O primeiro acesso já foi concluído! Entre com as credenciais que você cadastrou."
	msgAdminOnly        = "Acesso negado. Esta área é exclusiva para Administradores do Site."
)

// FirstAccessSetupPath is where a bootstrap sign-in is sent.
const FirstAccessSetupPath = "/first-access-setup"

// LoginError is a failed sign-in. Message is the backend's detail verbatim,
// or a generic fallback.
type LoginError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LoginError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *LoginError) Unwrap() error {
	return e.Err
}

// Portal selects the login endpoint.
type Portal int

const (
	PortalGeneral Portal = iota
	PortalAdminSite
	PortalAdminParoquia
)

// String returns the portal name used on the command line.
func (p Portal) String() string {
	switch p {
	case PortalAdminSite:
		return "admin-site"
	case PortalAdminParoquia:
		return "admin-paroquia"
	default:
		return "general"
	}
}

// ParsePortal maps a command-line name onto a Portal.
func ParsePortal(s string) (Portal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "general", "fiel":
		return PortalGeneral, nil
	case "admin-site", "admin_site", "site":
		return PortalAdminSite, nil
	case "admin-paroquia", "admin_paroquia", "paroquia", "parish":
		return PortalAdminParoquia, nil
	default:
		return PortalGeneral, fmt.Errorf("unknown portal %q", s)
	}
}

// Backend is the part of the REST client the session drives.
type Backend interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	AdminSiteLogin(ctx context.Context, req api.AdminSiteLoginRequest) (*api.TokenResponse, error)
	AdminParoquiaLogin(ctx context.Context, req api.AdminParoquiaLoginRequest) (*api.TokenResponse, error)
	Bootstrap(ctx context.Context, req api.BootstrapRequest) (*api.BootstrapResponse, error)
	BootstrapLogin(ctx context.Context, req api.BootstrapLoginRequest) (*api.TokenResponse, error)
	UpdateProfile(ctx context.Context, id string, upd api.ProfileUpdate) (*api.UserRecord, error)
	SetToken(token string)
	ClearToken()
	ClearCookies() error
}

// Navigator moves the application between routes. Navigate is an in-app
// route change; Redirect is a full navigation that rebuilds in-memory state.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
	Redirect(path string)
}

// Options wires a Manager.
type Options struct {
	Backend    Backend
	Persistent storage.Store
	Volatile   storage.Store
	Navigator  Navigator
	Events     events.Source
	Clock      clock.Clock
	Config     Config
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager is the session context: the single owner of the token and user.
// Everything else reads session state through it.
type Manager struct {
	backend  Backend
	creds    *CredentialStore
	volatile storage.Store
	nav      Navigator
	monitor  *Monitor

	mu      sync.RWMutex
	token   string
	user    *User
	loading bool
}

// NewManager creates a session manager. The inactivity window is validated
// here.
func NewManager(opts Options) (*Manager, error) {
	if opts.Backend == nil || opts.Persistent == nil || opts.Navigator == nil {
		return nil, errors.New("session: backend, persistent store and navigator are required")
	}
	if opts.Volatile == nil {
		opts.Volatile = storage.NewVolatile()
	}
	if opts.Config == (Config{}) {
		opts.Config = DefaultConfig()
	}

	m := &Manager{
		backend:  opts.Backend,
		creds:    NewCredentialStore(opts.Persistent),
		volatile: opts.Volatile,
		nav:      opts.Navigator,
	}

	mon, err := NewMonitor(opts.Config, opts.Clock, opts.Events, m.handleInactivity)
	if err != nil {
		return nil, err
	}
	m.monitor = mon
	return m, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Mount rehydrates the stored session and starts the inactivity monitor.
// The stored token is trusted as-is; a stale one surfaces on the next 401.
// The monitor runs whether or not anyone is signed in.
func (m *Manager) Mount() {
	m.Rehydrate()
	m.monitor.Start()
}

// Unmount stops the inactivity monitor.
func (m *Manager) Unmount() {
	m.monitor.Stop()
}

// Rehydrate reloads token and user from persistent storage. It runs on mount
// and after every full navigation.
func (m *Manager) Rehydrate() {
	token, u, err := m.creds.Load()

	m.mu.Lock()
	if err != nil {
		m.token = ""
		m.user = nil
	} else {
		m.token = token
		m.user = &u
	}
	m.mu.Unlock()

	if err != nil {
		if errors.Is(err, ErrCorruptUser) {
			logSessionEvent("SESSION_RESTORE_FAILED", "reason=corrupt_user")
		}
		m.backend.ClearToken()
		return
	}
	m.backend.SetToken(token)
	logSessionEvent("SESSION_RESTORED", fmt.Sprintf("user=%s role=%s", u.ID, u.Role))
}

// handleInactivity is the monitor's timeout callback. It only acts when a
// token is actually stored.
func (m *Manager) handleInactivity() {
	if _, ok := m.creds.Token(); !ok {
		return
	}
	logSessionEvent("SESSION_TIMEOUT", "reason=inactivity")
	m.Logout()
}

// HandleSessionLost is the target of the REST client's 401 hook.
func (m *Manager) HandleSessionLost(path string) {
	logSessionEvent("SESSION_LOST", "path="+path)
	m.Logout()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// IsAuthenticated reports whether a token and user are held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

// User returns a copy of the signed-in user.
func (m *Manager) User() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// Token returns the bearer token.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Loading reports whether a login is awaiting the backend.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// ShowWarning reports whether the inactivity countdown is showing.
func (m *Manager) ShowWarning() bool {
	return m.monitor.ShowWarning()
}

// SecondsRemaining returns the inactivity countdown.
func (m *Manager) SecondsRemaining() int {
	return m.monitor.SecondsRemaining()
}

// Monitor returns the inactivity monitor, for UI callbacks.
func (m *Manager) Monitor() *Monitor {
	return m.monitor
}

// Credentials returns the persisted session, for the route guard.
func (m *Manager) Credentials() access.CredentialReader {
	return m.creds
}

// =============================================================================
// LOGIN
// =============================================================================

// Login signs in through the general portal with an email or CPF and lands
// on the dashboard for the user's role.
func (m *Manager) Login(ctx context.Context, identifier, password string) (User, error) {
	return m.LoginAs(ctx, PortalGeneral, identifier, password)
}

// LoginAs signs in through the given portal. Failures are returned as
// *LoginError carrying the backend's message; nothing is retried.
func (m *Manager) LoginAs(ctx context.Context, portal Portal, identifier, password string) (User, error) {
	if err := m.beginLoading(); err != nil {
		return User{}, err
	}
	defer m.endLoading()

	identifier = normalizeIdentifier(identifier)
	logSessionEvent("LOGIN_ATTEMPT", fmt.Sprintf("portal=%s identifier=%s", portal, maskIdentifier(identifier)))

	var (
		resp *api.TokenResponse
		err  error
	)
	switch portal {
	case PortalAdminSite:
		resp, err = m.backend.AdminSiteLogin(ctx, api.AdminSiteLoginRequest{Login: identifier, Senha: password})
		if err != nil && strings.EqualFold(identifier, "admin") {
			return User{}, m.tryBootstrapLogin(ctx, identifier, password, err)
		}
	case PortalAdminParoquia:
		resp, err = m.backend.AdminParoquiaLogin(ctx, api.AdminParoquiaLoginRequest{Email: identifier, Senha: password})
	default:
		req, reqErr := loginRequest(identifier, password)
		if reqErr != nil {
			logSessionEvent("LOGIN_FAILED", "reason=invalid_identifier")
			return User{}, &LoginError{Message: msgInvalidID, Err: reqErr}
		}
		resp, err = m.backend.Login(ctx, req)
	}
	if err != nil {
		fallback := msgLoginFailed
		if portal != PortalGeneral {
			fallback = msgAdminLoginFailed
		}
		logSessionEvent("LOGIN_FAILED", fmt.Sprintf("portal=%s error=%v", portal, err))
		return User{}, &LoginError{Message: api.Message(err, fallback), Err: err}
	}

	u := NormalizeUser(resp.Usuario)
	if portal == PortalAdminSite && !u.Role.IsTopAdmin() {
		logSessionEvent("LOGIN_FAILED", fmt.Sprintf("portal=%s reason=role role=%s", portal, u.Role))
		return User{}, &LoginError{Message: msgAdminOnly}
	}

	if err := m.establish(resp.AccessToken, u); err != nil {
		return User{}, &LoginError{Message: msgLoginFailed, Err: err}
	}
	logSessionEvent("LOGIN_SUCCESS", fmt.Sprintf("portal=%s user=%s role=%s", portal, u.ID, u.Role))

	m.nav.Navigate(access.LandingFor(u.Role))
	return u, nil
}

// tryBootstrapLogin attempts the temporary first-run account after the
// regular admin login failed.
func (m *Manager) tryBootstrapLogin(ctx context.Context, login, password string, loginErr error) error {
	resp, err := m.backend.BootstrapLogin(ctx, api.BootstrapLoginRequest{Login: login, Senha: password})
	if err == nil && resp.Bootstrap {
		if setErr := m.creds.Store().Set(storage.KeyBootstrap, "true"); setErr != nil {
			log.Printf("SESSION_WARNING | failed to store bootstrap flag: %v", setErr)
		}
		logSessionEvent("BOOTSTRAP_LOGIN", "setup=required")
		m.nav.Navigate(FirstAccessSetupPath)
		return ErrSetupRequired
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return &LoginError{Message: msgSetupDone, Err: err}
	}
	if err != nil {
		return &LoginError{Message: api.Message(err, msgAdminLoginFailed), Err: err}
	}
	return &LoginError{Message: api.Message(loginErr, msgAdminLoginFailed), Err: loginErr}
}

// Bootstrap creates the first top-level administrator and signs it in.
func (m *Manager) Bootstrap(ctx context.Context, req api.BootstrapRequest) (User, error) {
	if err := m.beginLoading(); err != nil {
		return User{}, err
	}
	defer m.endLoading()

	resp, err := m.backend.Bootstrap(ctx, req)
	if err != nil {
		logSessionEvent("BOOTSTRAP_FAILED", fmt.Sprintf("error=%v", err))
		return User{}, &LoginError{Message: api.Message(err, "Erro ao configurar primeiro acesso"), Err: err}
	}

	u := NormalizeUser(resp.Usuario)
	if u.Role == "" {
		u.Role = access.RoleAdminSite
	}
	if err := m.establish(resp.AccessToken, u); err != nil {
		return User{}, err
	}
	if err := m.creds.Store().Remove(storage.KeyBootstrap); err != nil {
		log.Printf("SESSION_WARNING | failed to clear bootstrap flag: %v", err)
	}
	logSessionEvent("BOOTSTRAP_COMPLETE", "user="+u.ID)

	m.nav.Navigate(access.AdminSiteDashboardPath)
	return u, nil
}

// NeedsSetup reports whether a bootstrap sign-in is pending.
func (m *Manager) NeedsSetup() bool {
	v, ok, err := m.creds.Store().Get(storage.KeyBootstrap)
	return err == nil && ok && v == "true"
}

// establish persists and adopts a new session. Storage is written first so a
// failure leaves memory untouched.
func (m *Manager) establish(token string, u User) error {
	if token == "" {
		return errors.New("session: backend returned an empty token")
	}
	if err := m.creds.Save(token, u); err != nil {
		return err
	}
	m.backend.SetToken(token)

	m.mu.Lock()
	m.token = token
	m.user = &u
	m.mu.Unlock()

	m.monitor.Reset()
	return nil
}

func (m *Manager) beginLoading() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loading {
		return ErrLoginInProgress
	}
	m.loading = true
	return nil
}

func (m *Manager) endLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}

// =============================================================================
// PROFILE
// =============================================================================

// UpdateUser merges p into the signed-in user, in memory and in storage.
// It does not contact the backend.
func (m *Manager) UpdateUser(p UserPatch) (User, error) {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return User{}, ErrNotAuthenticated
	}
	updated := *m.user
	p.Apply(&updated)
	m.user = &updated
	m.mu.Unlock()

	if err := m.creds.SaveUser(updated); err != nil {
		return updated, fmt.Errorf("failed to persist user: %w", err)
	}
	logSessionEvent("PROFILE_UPDATED", "user="+updated.ID)
	return updated, nil
}

// SaveProfile sends p to the backend and then applies the stored record
// locally.
func (m *Manager) SaveProfile(ctx context.Context, p UserPatch) (User, error) {
	u, ok := m.User()
	if !ok {
		return User{}, ErrNotAuthenticated
	}

	rec, err := m.backend.UpdateProfile(ctx, u.ID, api.ProfileUpdate{
		Nome:     p.Name,
		Email:    p.Email,
		CPF:      p.CPF,
		Whatsapp: p.Whatsapp,
	})
	if err != nil {
		return User{}, err
	}

	local := patchFromRecord(*rec)
	if local.Empty() {
		local = p
	}
	return m.UpdateUser(local)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// normalizeIdentifier folds full-width digits and compatibility characters
// that some mobile keyboards produce.
func normalizeIdentifier(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// loginRequest classifies identifier as email or CPF.
func loginRequest(identifier, password string) (api.LoginRequest, error) {
	if strings.Contains(identifier, "@") {
		return api.LoginRequest{Email: strings.ToLower(identifier), Senha: password}, nil
	}
	cpf := digitsOnly(identifier)
	if len(cpf) != 11 {
		return api.LoginRequest{}, ErrInvalidIdentifier
	}
	return api.LoginRequest{CPF: cpf, Senha: password}, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
