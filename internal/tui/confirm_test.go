// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// keyMsgFor builds the tea.KeyMsg a terminal would deliver for the given key.
func keyMsgFor(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestReaderConfirmer_Confirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
	}{
		{name: "explicit yes", input: "y\n", defaultYes: false, want: true},
		{name: "explicit yes word", input: "yes\n", defaultYes: false, want: true},
		{name: "explicit no", input: "n\n", defaultYes: true, want: false},
		{name: "uppercase yes", input: "Y\n", defaultYes: false, want: true},
		{name: "empty input takes default no", input: "\n", defaultYes: false, want: false},
		{name: "empty input takes default yes", input: "\n", defaultYes: true, want: true},
		{name: "garbage takes default no", input: "maybe\n", defaultYes: false, want: false},
		{name: "garbage takes default yes", input: "maybe\n", defaultYes: true, want: true},
		{name: "eof takes default", input: "", defaultYes: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			c := &ReaderConfirmer{In: strings.NewReader(tt.input), Out: &out}

			got, err := c.Confirm("Replace container gpubox-alice?", tt.defaultYes)
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q, defaultYes=%v) = %v, want %v", tt.input, tt.defaultYes, got, tt.want)
			}
		})
	}
}

func TestReaderConfirmer_PromptHint(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := &ReaderConfirmer{In: strings.NewReader("\n"), Out: &out}
	if _, err := c.Confirm("Proceed?", false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[y/N]") {
		t.Errorf("destructive prompt hint = %q, want [y/N]", out.String())
	}

	out.Reset()
	c.In = strings.NewReader("\n")
	if _, err := c.Confirm("Proceed?", true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[Y/n]") {
		t.Errorf("default-yes prompt hint = %q, want [Y/n]", out.String())
	}
}

func TestConfirmModel_Keys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		keys       []string
		defaultYes bool
		want       bool
	}{
		{name: "y answers yes", keys: []string{"y"}, defaultYes: false, want: true},
		{name: "n answers no", keys: []string{"n"}, defaultYes: true, want: false},
		{name: "enter takes default", keys: []string{"enter"}, defaultYes: false, want: false},
		{name: "esc takes default", keys: []string{"esc"}, defaultYes: false, want: false},
		{name: "toggle then enter", keys: []string{"tab", "enter"}, defaultYes: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &confirmModel{selection: tt.defaultYes, defaultYes: tt.defaultYes, prompt: "Proceed?"}

			for _, key := range tt.keys {
				updated, _ := m.Update(keyMsgFor(key))
				m = updated.(*confirmModel)
			}

			if m.selection != tt.want {
				t.Errorf("selection after %v = %v, want %v", tt.keys, m.selection, tt.want)
			}
		})
	}
}
