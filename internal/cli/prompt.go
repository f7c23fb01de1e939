// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

// errPromptAborted is returned when the user cancels a prompt.
var errPromptAborted = errors.New("prompt aborted")

// prompter reads answers for commands that need input.
type prompter interface {
	Line(label string) (string, error)
	Secret(label string) (string, error)
	Close() error
}

// newPrompter uses line editing on a real terminal and plain line reads
// otherwise, so commands can be scripted with piped input.
func newPrompter(cmd *cobra.Command) prompter {
	if in, ok := cmd.InOrStdin().(*os.File); ok && in == os.Stdin && CanPrompt() {
		l := liner.NewLiner()
		l.SetCtrlCAborts(true)
		return &linerPrompter{state: l}
	}
	return &streamPrompter{r: bufio.NewReader(cmd.InOrStdin()), w: cmd.ErrOrStderr()}
}

type linerPrompter struct {
	state *liner.State
}

func (p *linerPrompter) Line(label string) (string, error) {
	s, err := p.state.Prompt(label + ": ")
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errPromptAborted
	}
	return strings.TrimSpace(s), err
}

func (p *linerPrompter) Secret(label string) (string, error) {
	s, err := p.state.PasswordPrompt(label + ": ")
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errPromptAborted
	}
	return s, err
}

func (p *linerPrompter) Close() error {
	return p.state.Close()
}

type streamPrompter struct {
	r *bufio.Reader
	w io.Writer
}

func (p *streamPrompter) read(label string) (string, error) {
	fmt.Fprintf(p.w, "%s: ", label)
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *streamPrompter) Line(label string) (string, error) {
	s, err := p.read(label)
	return strings.TrimSpace(s), err
}

func (p *streamPrompter) Secret(label string) (string, error) {
	return p.read(label)
}

func (p *streamPrompter) Close() error {
	return nil
}
