// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bingocomunidade/bingo-tui/internal/api"
	"github.com/bingocomunidade/bingo-tui/internal/app"
	"github.com/bingocomunidade/bingo-tui/internal/config"
	"github.com/bingocomunidade/bingo-tui/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command with context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError is bad command-line input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s", e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	msg += ": " + e.Reason
	if e.Example != "" {
		msg += " (e.g. " + e.Example + ")"
	}
	return msg
}

// NewCommandError wraps err with the command and action that failed.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError reports a bad flag or argument.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ErrMissingArgument reports a required input that was not given.
func ErrMissingArgument(name, example string) error {
	return &ValidationError{Field: name, Reason: "required argument missing", Example: example}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON when jsonMode is set.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		out := map[string]interface{}{
			"success":    false,
			"error":      err.Error(),
			"error_type": errorType(err),
			"exit_code":  GetExitCode(err),
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERRO]"), userMessage(err))
}

// userMessage prefers the backend's text over Go error chains.
func userMessage(err error) string {
	var le *session.LoginError
	if errors.As(err, &le) && le.Message != "" {
		return le.Message
	}
	var fe *session.FormError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return api.Message(err, err.Error())
}

func errorType(err error) string {
	var cmdErr *CommandError
	var valErr *ValidationError
	switch {
	case errors.As(err, &valErr):
		return "validation_error"
	case errors.As(err, &cmdErr):
		return "command_error"
	default:
		return "generic_error"
	}
}

// GetExitCode picks the exit code for err.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var valErr *ValidationError
	var formErr *session.FormError
	if errors.As(err, &valErr) || errors.As(err, &formErr) {
		return ExitUsageError
	}

	var cfgErr config.ValidationError
	var cfgErrs config.ValidateErrors
	if errors.As(err, &cfgErr) || errors.As(err, &cfgErrs) {
		return ExitConfigError
	}

	var loginErr *session.LoginError
	switch {
	case errors.Is(err, api.ErrNetwork):
		return ExitNetworkError
	case errors.As(err, &loginErr),
		errors.Is(err, api.ErrUnauthorized),
		errors.Is(err, app.ErrNotSignedIn),
		errors.Is(err, session.ErrNotAuthenticated):
		return ExitAuthError
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timed out") {
		return ExitTimeoutError
	}
	return ExitGeneralError
}
