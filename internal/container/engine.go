// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
)

// Engine defines the interface for container lifecycle operations.
type Engine interface {
	// Name returns the engine name (docker or podman)
	Name() string
	// Available checks if the engine is available on the system
	Available() bool
	// Version returns the engine version
	Version(ctx context.Context) (string, error)

	// Exists reports whether a container with exactly the given name exists,
	// in any state (running or stopped).
	Exists(ctx context.Context, name ContainerName) (bool, error)
	// Stop stops a running container
	Stop(ctx context.Context, name ContainerName) error
	// Remove removes a container
	Remove(ctx context.Context, name ContainerName, force bool) error
	// Create creates a container and returns the handle the runtime printed
	Create(ctx context.Context, opts CreateOptions) (string, error)
	// Exec runs a command in a running container
	Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*ExecResult, error)
}

// EngineType identifies the container engine type.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
	// EngineTypeAuto selects whichever engine is available, preferring Docker.
	EngineTypeAuto EngineType = "auto"
)

// ErrEngineNotAvailable is returned when a container engine is not available.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new container engine based on preference.
// When the preferred engine is unavailable, the other one is tried as a
// fallback before giving up.
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeAuto, "":
		return AutoDetectEngine()

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine.
// Docker is tried first because GPU passthrough (--gpus) is a Docker-first
// feature on the serving hosts gpubox targets.
func AutoDetectEngine() (Engine, error) {
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
