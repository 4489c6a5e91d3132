// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type (
	// Confirmer asks the user a yes/no question. Implementations must treat
	// defaultYes as the answer for empty or cancelled input, so destructive
	// prompts (defaultYes=false) never proceed without an explicit "y".
	Confirmer interface {
		Confirm(prompt string, defaultYes bool) (bool, error)
	}

	// TerminalConfirmer prompts on the controlling terminal when stdin is a
	// TTY and falls back to line-oriented reading otherwise.
	TerminalConfirmer struct{}

	// ReaderConfirmer reads single-line answers from an arbitrary reader.
	// Used directly in tests and as the non-TTY fallback.
	ReaderConfirmer struct {
		In  io.Reader
		Out io.Writer
	}

	// confirmModel is the Bubble Tea model behind the TTY prompt.
	confirmModel struct {
		prompt     string
		selection  bool
		defaultYes bool
		answered   bool
	}
)

var (
	promptStyle   = lipgloss.NewStyle().Bold(true)
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7C3AED")).Padding(0, 1)
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// NewTerminalConfirmer creates the production confirmer.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{}
}

// Confirm asks the question and returns the user's answer.
func (c *TerminalConfirmer) Confirm(prompt string, defaultYes bool) (bool, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return confirmTTY(prompt, defaultYes)
	}
	fallback := &ReaderConfirmer{In: os.Stdin, Out: os.Stderr}
	return fallback.Confirm(prompt, defaultYes)
}

// Confirm writes the prompt and reads a single line. An empty line or any
// answer other than y/yes/n/no resolves to the default.
func (c *ReaderConfirmer) Confirm(prompt string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	if _, err := fmt.Fprintf(c.Out, "%s %s ", prompt, hint); err != nil {
		return false, fmt.Errorf("write confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && line == "" {
		// EOF with no input: take the default, same as an empty line.
		return defaultYes, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return defaultYes, nil
	}
}

// confirmTTY runs the Bubble Tea confirm prompt on the terminal.
func confirmTTY(prompt string, defaultYes bool) (bool, error) {
	model := &confirmModel{
		prompt:     prompt,
		selection:  defaultYes,
		defaultYes: defaultYes,
	}

	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("run confirmation prompt: %w", err)
	}

	return finalModel.(*confirmModel).selection, nil
}

// Init implements tea.Model.
func (m *confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		// Cancelling takes the default answer.
		m.selection = m.defaultYes
		m.answered = true
		return m, tea.Quit
	case "y":
		m.selection = true
		m.answered = true
		return m, tea.Quit
	case "n":
		m.selection = false
		m.answered = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.selection = !m.selection
	case "enter", " ":
		m.answered = true
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m *confirmModel) View() string {
	if m.answered {
		return ""
	}

	yesView := inactiveStyle.Render("Yes")
	noView := inactiveStyle.Render("No")
	if m.selection {
		yesView = activeStyle.Render("Yes")
	} else {
		noView = activeStyle.Render("No")
	}

	return strings.Join([]string{
		promptStyle.Render(m.prompt),
		yesView + "  " + noView,
		helpStyle.Render("enter submit • y yes • n no • esc cancel"),
	}, "\n")
}
