// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "create container"},
			want: "failed to create container",
		},
		{
			name: "operation and resource",
			err:  &ActionableError{Operation: "remove container", Resource: "gpubox-alice"},
			want: "failed to remove container: gpubox-alice",
		},
		{
			name: "operation, resource and cause",
			err: &ActionableError{
				Operation: "stop container",
				Resource:  "gpubox-alice",
				Cause:     errors.New("exit status 1"),
			},
			want: "failed to stop container: gpubox-alice: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("no such image")
	err := NewErrorContext().
		WithOperation("create container").
		WithResource("gpubox-alice").
		WithSuggestion("Pull the image first").
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil with operation set")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() did not match the wrapped cause")
	}
	if !err.HasSuggestions() {
		t.Error("HasSuggestions() = false, want true")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := &ActionableError{
		Operation:   "query container runtime",
		Suggestions: []string{"Check that the docker daemon is running"},
		Cause:       inner,
	}

	plain := err.Format(false)
	if !strings.Contains(plain, "• Check that the docker daemon is running") {
		t.Errorf("Format(false) missing suggestion:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Errorf("Format(false) should not include the error chain:\n%s", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("Format(true) missing error chain:\n%s", verbose)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if got := WrapWithOperation(nil, "anything"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}

	cause := errors.New("boom")
	wrapped := WrapWithOperation(cause, "inspect container")
	if wrapped.Operation != "inspect container" {
		t.Errorf("Operation = %q", wrapped.Operation)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error does not match cause")
	}
}
