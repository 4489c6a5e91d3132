// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestBaseCLIEngine_Exists_ExactMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stdout string
		want   bool
	}{
		{name: "exact name present", stdout: "gpubox-alice\n", want: true},
		{name: "no containers", stdout: "", want: false},
		{name: "similar name only", stdout: "gpubox-alice2\n", want: false},
		{name: "prefix name only", stdout: "gpubox-alic\n", want: false},
		{name: "exact among several", stdout: "gpubox-alice2\ngpubox-alice\n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := NewMockCommandRecorder()
			mock.Stdout = tt.stdout
			engine := NewBaseCLIEngine("/usr/bin/docker", WithExecCommand(mock.CommandFunc(t)))

			got, err := engine.Exists(context.Background(), "gpubox-alice")
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists() = %v, want %v (runtime output %q)", got, tt.want, tt.stdout)
			}
		})
	}
}

func TestBaseCLIEngine_Exists_InvalidName(t *testing.T) {
	t.Parallel()

	engine := NewBaseCLIEngine("/usr/bin/docker")
	_, err := engine.Exists(context.Background(), "")
	if !errors.Is(err, ErrInvalidContainerName) {
		t.Errorf("Exists(\"\") error = %v, want ErrInvalidContainerName", err)
	}
}

func TestBaseCLIEngine_Create_ReturnsHandle(t *testing.T) {
	t.Parallel()

	mock := NewMockCommandRecorder()
	mock.Stdout = "f2a9c1d4e5b6\n"
	engine := NewBaseCLIEngine("/usr/bin/docker", WithExecCommand(mock.CommandFunc(t)))

	handle, err := engine.Create(context.Background(), CreateOptions{
		Name:   "gpubox-alice",
		Image:  "alpine:latest",
		Detach: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if handle != "f2a9c1d4e5b6" {
		t.Errorf("Create() handle = %q, want %q", handle, "f2a9c1d4e5b6")
	}

	inv := mock.LastInvocation()
	if inv == nil || inv.Args[0] != "run" {
		t.Fatalf("Create() did not issue a run command: %+v", inv)
	}
}

func TestBaseCLIEngine_Create_SurfacesRuntimeStderr(t *testing.T) {
	t.Parallel()

	mock := NewMockCommandRecorder()
	mock.ExitCode = 125
	mock.Stderr = "Unable to find image 'nosuch:latest' locally"
	engine := NewBaseCLIEngine("/usr/bin/docker", WithExecCommand(mock.CommandFunc(t)))

	_, err := engine.Create(context.Background(), CreateOptions{
		Name:  "gpubox-alice",
		Image: "nosuch:latest",
	})
	if err == nil {
		t.Fatal("Create() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "Unable to find image") {
		t.Errorf("Create() error does not surface runtime stderr: %v", err)
	}
}

func TestBaseCLIEngine_StopRemove_PropagateFailure(t *testing.T) {
	t.Parallel()

	mock := NewMockCommandRecorder()
	mock.FailOnVerb = "stop"
	engine := NewBaseCLIEngine("/usr/bin/docker", WithExecCommand(mock.CommandFunc(t)))

	if err := engine.Stop(context.Background(), "gpubox-alice"); err == nil {
		t.Error("Stop() error = nil, want failure")
	}
	if err := engine.Remove(context.Background(), "gpubox-alice", false); err != nil {
		t.Errorf("Remove() error = %v, want nil", err)
	}
}

func TestBaseCLIEngine_Exec_CapturesExitCode(t *testing.T) {
	t.Parallel()

	mock := NewMockCommandRecorder()
	mock.ExitCode = 42
	engine := NewBaseCLIEngine("/usr/bin/docker", WithExecCommand(mock.CommandFunc(t)))

	result, err := engine.Exec(context.Background(), "gpubox-alice", []string{"false"}, ExecOptions{})
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if result.ExitCode != 42 {
		t.Errorf("Exec() exit code = %d, want 42", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("Exec() infrastructure error = %v, want nil", result.Error)
	}
}

func TestNewEngine_UnknownType(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine("lxc"); err == nil {
		t.Error("NewEngine(\"lxc\") error = nil, want failure")
	}
}

func TestErrEngineNotAvailable_Error(t *testing.T) {
	t.Parallel()

	err := &ErrEngineNotAvailable{Engine: "docker", Reason: "not installed"}
	want := "container engine 'docker' is not available: not installed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
