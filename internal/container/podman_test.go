// SPDX-License-Identifier: MPL-2.0

package container

import (
	"slices"
	"testing"
)

func TestInjectKeepID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "run gets keep-id after the verb",
			args:     []string{"run", "-d", "--name", "gpubox-alice", "alpine:latest"},
			expected: []string{"run", "--userns=keep-id", "-d", "--name", "gpubox-alice", "alpine:latest"},
		},
		{
			name:     "non-run commands are untouched",
			args:     []string{"rm", "gpubox-alice"},
			expected: []string{"rm", "gpubox-alice"},
		},
		{
			name:     "empty args are untouched",
			args:     []string{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := injectKeepID(tt.args)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("injectKeepID(%v) = %v, want %v", tt.args, got, tt.expected)
			}
		})
	}
}

func TestPodmanEngine_CreateArgsUseKeepID(t *testing.T) {
	t.Parallel()

	engine := NewPodmanEngine()
	args := engine.CreateArgs(CreateOptions{Name: "gpubox-alice", Image: "alpine:latest"})

	if len(args) < 2 || args[1] != "--userns=keep-id" {
		t.Errorf("CreateArgs() = %v, want --userns=keep-id injected after run", args)
	}
}
