// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bingocomunidade/bingo-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete bingo configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	API      APIConfig      `toml:"api" json:"api" yaml:"api"`
	Security SecurityConfig `toml:"security" json:"security" yaml:"security"`
	Cart     CartConfig     `toml:"cart" json:"cart" yaml:"cart"`
	Storage  StorageConfig  `toml:"storage" json:"storage" yaml:"storage"`
	UI       UIConfig       `toml:"ui" json:"ui" yaml:"ui"`
	Log      LogConfig      `toml:"log" json:"log" yaml:"log"`
}

// APIConfig configures the REST client.
type APIConfig struct {
	BaseURL           string  `toml:"base_url" json:"base_url" yaml:"base_url"`
	TimeoutSecs       int     `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"`
}

// SecurityConfig configures the session guards.
type SecurityConfig struct {
	// InactivityTimeoutMinutes is the quiet time before a forced logout.
	InactivityTimeoutMinutes int `toml:"inactivity_timeout_minutes" json:"inactivity_timeout_minutes" yaml:"inactivity_timeout_minutes"`

	// InactivityWarningMinutes is how long before the timeout the countdown
	// appears. Must be positive and smaller than the timeout.
	InactivityWarningMinutes int `toml:"inactivity_warning_minutes" json:"inactivity_warning_minutes" yaml:"inactivity_warning_minutes"`

	// AdminOfflineGraceSeconds is how long an admin session survives a lost
	// network before it is wiped.
	AdminOfflineGraceSeconds int `toml:"admin_offline_grace_seconds" json:"admin_offline_grace_seconds" yaml:"admin_offline_grace_seconds"`

	// SessionCookies are expired on logout even when the jar does not list
	// them.
	SessionCookies []string `toml:"session_cookies" json:"session_cookies" yaml:"session_cookies"`

	// ProbeIntervalSeconds is the time between connectivity probes.
	ProbeIntervalSeconds int `toml:"probe_interval_seconds" json:"probe_interval_seconds" yaml:"probe_interval_seconds"`
}

// CartConfig configures the card reservation cart.
type CartConfig struct {
	ExpirationMinutes      int  `toml:"expiration_minutes" json:"expiration_minutes" yaml:"expiration_minutes"`
	AutoCleanStartedGames  bool `toml:"auto_clean_started_games" json:"auto_clean_started_games" yaml:"auto_clean_started_games"`
	AutoCleanFinishedGames bool `toml:"auto_clean_finished_games" json:"auto_clean_finished_games" yaml:"auto_clean_finished_games"`
}

// StorageConfig locates the persistent store.
type StorageConfig struct {
	// Path of the SQLite file. Empty means ~/.bingo/storage.db.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	Theme string `toml:"theme" json:"theme" yaml:"theme"`
	Mouse bool   `toml:"mouse" json:"mouse" yaml:"mouse"`
}

// LogConfig locates the log file.
type LogConfig struct {
	// Path of the log file. Empty means ~/.bingo/bingo.log.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// InactivityTimeout returns the timeout as a duration.
func (s SecurityConfig) InactivityTimeout() time.Duration {
	return time.Duration(s.InactivityTimeoutMinutes) * time.Minute
}

// InactivityWarning returns the warning window as a duration.
func (s SecurityConfig) InactivityWarning() time.Duration {
	return time.Duration(s.InactivityWarningMinutes) * time.Minute
}

// AdminOfflineGrace returns the offline grace period as a duration.
func (s SecurityConfig) AdminOfflineGrace() time.Duration {
	return time.Duration(s.AdminOfflineGraceSeconds) * time.Second
}

// ProbeInterval returns the connectivity probe interval as a duration.
func (s SecurityConfig) ProbeInterval() time.Duration {
	return time.Duration(s.ProbeIntervalSeconds) * time.Second
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// Expiration returns the cart expiry as a duration.
func (c CartConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			TimeoutSecs:       10,
			RequestsPerSecond: 10,
		},

		Security: SecurityConfig{
			InactivityTimeoutMinutes: 15,
			InactivityWarningMinutes: 2,
			AdminOfflineGraceSeconds: 5,
			SessionCookies:           []string{"session", "refresh_token", "csrftoken"},
			ProbeIntervalSeconds:     10,
		},

		Cart: CartConfig{
			ExpirationMinutes:      30,
			AutoCleanStartedGames:  true,
			AutoCleanFinishedGames: true,
		},

		UI: UIConfig{
			Theme: "auto",
			Mouse: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the bingo configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".bingo"), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configPath("config.toml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configPath("config.json") }

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) { return configPath("config.yaml") }

// LogPath returns the configured log file, or the default.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	return configPath("bingo.log")
}

// StoragePath returns the configured storage file, or the default.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	return configPath("storage.db")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions narrows config files to owner read/write.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the first config file found (TOML, JSON,
// then YAML), falling back to defaults. ./.env and the environment are
// applied last.
func Load() (*Config, error) {
	var candidates []string
	for _, fn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON, ConfigPathYAML} {
		if p, err := fn(); err == nil {
			candidates = append(candidates, p)
		}
	}

	var loadErr error
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		loadErr = err
		break
	}

	cfg := Default()
	loadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Defaults are usable; loadErr is informational.
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file with full
// validation. The format follows the file extension; TOML is the default.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	loadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func warnPermissions(path string) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	warnPermissions(path)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadYAML decodes a YAML file into cfg.
func LoadYAML(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

// loadDotEnv reads ./.env without overriding variables already set.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.RequestsPerSecond == 0 {
		c.API.RequestsPerSecond = d.API.RequestsPerSecond
	}
	if c.Security.InactivityTimeoutMinutes == 0 {
		c.Security.InactivityTimeoutMinutes = d.Security.InactivityTimeoutMinutes
	}
	if c.Security.InactivityWarningMinutes == 0 {
		c.Security.InactivityWarningMinutes = d.Security.InactivityWarningMinutes
	}
	if c.Security.AdminOfflineGraceSeconds <= 0 {
		c.Security.AdminOfflineGraceSeconds = d.Security.AdminOfflineGraceSeconds
	}
	if c.Security.ProbeIntervalSeconds <= 0 {
		c.Security.ProbeIntervalSeconds = d.Security.ProbeIntervalSeconds
	}
	if c.Security.SessionCookies == nil {
		c.Security.SessionCookies = d.Security.SessionCookies
	}
	if c.Cart.ExpirationMinutes <= 0 {
		c.Cart.ExpirationMinutes = d.Cart.ExpirationMinutes
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveToPath writes cfg to path in the format its extension names.
func SaveToPath(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(cfg, path)
	case ".yaml", ".yml":
		return SaveYAML(cfg, path)
	default:
		return SaveTOML(cfg, path)
	}
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# bingo configuration file\n")
	sb.WriteString("# Generated by bingo - edit with care\n\n")
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveYAML writes the configuration as YAML with 0600 permissions.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e ValidateErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validate validates the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host", c.API.BaseURL),
		})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.requests_per_second",
			Message: "must not be negative",
		})
	}

	t, w := c.Security.InactivityTimeoutMinutes, c.Security.InactivityWarningMinutes
	if t <= 0 {
		errs = append(errs, ValidationError{
			Field:   "security.inactivity_timeout_minutes",
			Message: fmt.Sprintf("must be positive, got %d", t),
		})
	}
	if w <= 0 || w >= t {
		errs = append(errs, ValidationError{
			Field:   "security.inactivity_warning_minutes",
			Message: fmt.Sprintf("must be positive and less than the timeout (%d), got %d", t, w),
		})
	}
	if c.Security.AdminOfflineGraceSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "security.admin_offline_grace_seconds",
			Message: "must be positive",
		})
	}
	for _, name := range c.Security.SessionCookies {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " ;=,") {
			errs = append(errs, ValidationError{
				Field:   "security.session_cookies",
				Message: fmt.Sprintf("invalid cookie name %q", name),
			})
		}
	}

	if c.Cart.ExpirationMinutes <= 0 {
		errs = append(errs, ValidationError{
			Field:   "cart.expiration_minutes",
			Message: "must be positive",
		})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT VARIABLE OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - BINGO_API_URL: overrides api.base_url
//   - BINGO_INACTIVITY_TIMEOUT_MINUTES: overrides security.inactivity_timeout_minutes
//   - BINGO_INACTIVITY_WARNING_MINUTES: overrides security.inactivity_warning_minutes
//   - BINGO_STORAGE_PATH: overrides storage.path
//   - BINGO_LOG_PATH: overrides log.path
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BINGO_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("BINGO_INACTIVITY_TIMEOUT_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Security.InactivityTimeoutMinutes = n
		}
	}
	if v := os.Getenv("BINGO_INACTIVITY_WARNING_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Security.InactivityWarningMinutes = n
		}
	}
	if v := os.Getenv("BINGO_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("BINGO_LOG_PATH"); v != "" {
		c.Log.Path = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "cart.expiration_minutes").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strings.TrimSpace(strVal))
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("toml"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, name, keys)
			continue
		}
		*keys = append(*keys, name)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Security.SessionCookies = append([]string(nil), c.Security.SessionCookies...)
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
