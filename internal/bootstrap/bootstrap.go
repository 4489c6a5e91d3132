// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gpubox/internal/container"

	"github.com/charmbracelet/log"
)

const (
	// DecisionCreate means no container with the identity exists; create one.
	DecisionCreate Decision = "create"
	// DecisionKeep means a container exists and the user chose to keep it.
	DecisionKeep Decision = "keep"
	// DecisionRecreate means a container exists and the user chose to replace it.
	DecisionRecreate Decision = "recreate"
)

// ErrPrecondition is the sentinel error wrapped by PreconditionError.
var ErrPrecondition = errors.New("bootstrap precondition failed")

type (
	// Decision is the outcome of the check phase. It is produced exactly
	// once per invocation and never revised afterwards.
	Decision string

	// Runtime is the capability interface the bootstrapper drives. Each
	// method issues one imperative command against the external container
	// runtime and blocks until it finishes.
	Runtime interface {
		// Name identifies the runtime CLI for user-facing instructions.
		Name() string
		// Exists reports whether a container with exactly the given name exists.
		Exists(ctx context.Context, name container.ContainerName) (bool, error)
		// Stop stops the named container.
		Stop(ctx context.Context, name container.ContainerName) error
		// Remove removes the named container.
		Remove(ctx context.Context, name container.ContainerName) error
		// Create creates a container and returns its handle.
		Create(ctx context.Context, opts container.CreateOptions) (string, error)
	}

	// Confirmer asks the user a yes/no question. The default answer applies
	// to empty or cancelled input.
	Confirmer interface {
		Confirm(prompt string, defaultYes bool) (bool, error)
	}

	// Options carries everything one bootstrap run needs, resolved up front
	// at the process boundary (no environment reads happen past this point).
	Options struct {
		// Spec is the full creation specification, including the container name.
		Spec container.CreateOptions
		// WorkspaceDir is a host directory expected to exist before the run.
		// Empty means no expectation.
		WorkspaceDir string
		// CacheDir is created if absent (idempotent). Empty means no cache dir.
		CacheDir string
	}

	// Outcome reports what the run decided and did.
	Outcome struct {
		// Decision is the check-phase outcome.
		Decision Decision
		// Handle is the runtime's reference for the created container.
		// Empty unless a container was created.
		Handle string
		// AttachCommand is the command line the user runs to enter the
		// container. Empty unless a container was created.
		AttachCommand string
	}

	// PreconditionError reports a failed precondition, including a user
	// decline on a required setup question.
	PreconditionError struct {
		Path   string
		Reason string
	}

	// Bootstrapper runs the check-and-act sequence.
	Bootstrapper struct {
		runtime   Runtime
		confirmer Confirmer
	}

	// EngineRuntime adapts a container.Engine to the Runtime interface.
	EngineRuntime struct {
		Engine container.Engine
	}
)

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed for %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrPrecondition for errors.Is() compatibility.
func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// Name returns the underlying engine name.
func (r *EngineRuntime) Name() string { return r.Engine.Name() }

// Exists reports whether the named container exists.
func (r *EngineRuntime) Exists(ctx context.Context, name container.ContainerName) (bool, error) {
	return r.Engine.Exists(ctx, name)
}

// Stop stops the named container.
func (r *EngineRuntime) Stop(ctx context.Context, name container.ContainerName) error {
	return r.Engine.Stop(ctx, name)
}

// Remove removes the named container.
func (r *EngineRuntime) Remove(ctx context.Context, name container.ContainerName) error {
	return r.Engine.Remove(ctx, name, false)
}

// Create creates a container from the given spec.
func (r *EngineRuntime) Create(ctx context.Context, opts container.CreateOptions) (string, error) {
	return r.Engine.Create(ctx, opts)
}

// New creates a Bootstrapper driving the given runtime, with destructive
// actions gated by the given confirmer.
func New(runtime Runtime, confirmer Confirmer) *Bootstrapper {
	return &Bootstrapper{
		runtime:   runtime,
		confirmer: confirmer,
	}
}

// Run executes the bootstrap sequence: verify preconditions, ensure the
// cache directory, check for an existing container by exact name, decide,
// and act. Every step is awaited before the next one starts, and the first
// failure is terminal.
func (b *Bootstrapper) Run(ctx context.Context, opts Options) (*Outcome, error) {
	name := opts.Spec.Name

	if err := b.checkWorkspace(opts.WorkspaceDir); err != nil {
		return nil, err
	}

	if err := ensureCacheDir(opts.CacheDir); err != nil {
		return nil, err
	}

	exists, err := b.runtime.Exists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check for existing container: %w", err)
	}

	decision := DecisionCreate
	if exists {
		log.Debug("container already exists", "name", name)
		recreate, confirmErr := b.confirmer.Confirm(
			fmt.Sprintf("Container %s already exists. Stop and recreate it?", name), false)
		if confirmErr != nil {
			return nil, fmt.Errorf("read recreate confirmation: %w", confirmErr)
		}
		if recreate {
			decision = DecisionRecreate
		} else {
			decision = DecisionKeep
		}
	}

	if decision == DecisionKeep {
		return &Outcome{Decision: DecisionKeep}, nil
	}

	if decision == DecisionRecreate {
		log.Debug("stopping existing container", "name", name)
		if err := b.runtime.Stop(ctx, name); err != nil {
			return nil, fmt.Errorf("stop existing container %s: %w", name, err)
		}
		log.Debug("removing existing container", "name", name)
		if err := b.runtime.Remove(ctx, name); err != nil {
			return nil, fmt.Errorf("remove existing container %s: %w", name, err)
		}
	}

	log.Debug("creating container", "name", name, "image", opts.Spec.Image)
	handle, err := b.runtime.Create(ctx, opts.Spec)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Decision:      decision,
		Handle:        handle,
		AttachCommand: fmt.Sprintf("%s exec -it %s bash", b.runtime.Name(), name),
	}, nil
}

// checkWorkspace verifies the expected workspace directory exists, asking
// the user for an explicit override when it does not.
func (b *Bootstrapper) checkWorkspace(dir string) error {
	if dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	log.Warn("workspace directory not found", "path", dir)
	// Continuing is not destructive, so empty input accepts.
	proceed, confirmErr := b.confirmer.Confirm(
		fmt.Sprintf("Workspace directory %s does not exist. Continue anyway?", dir), true)
	if confirmErr != nil {
		return fmt.Errorf("read workspace confirmation: %w", confirmErr)
	}
	if !proceed {
		return &PreconditionError{Path: dir, Reason: "workspace directory missing and user declined to continue"}
	}
	return nil
}

// ensureCacheDir creates the cache directory if it is absent. Repeated runs
// are no-ops.
func ensureCacheDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return nil
}
