// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ContainerEngineDocker uses Docker as the container runtime.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEnginePodman uses Podman as the container runtime.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineAuto picks whichever runtime is available.
	ContainerEngineAuto ContainerEngine = "auto"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container runtime to use.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	// It wraps ErrInvalidContainerEngine for errors.Is() compatibility.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// CacheDirPath represents a filesystem path to a cache directory.
	// The zero value ("") is valid and means "use default cache directory".
	// Non-zero values must not be whitespace-only.
	CacheDirPath string

	// InvalidCacheDirPathError is returned when a CacheDirPath value is
	// non-empty but whitespace-only.
	InvalidCacheDirPathError struct {
		Value CacheDirPath
	}

	// ContainerConfig holds the creation specification for the managed container.
	ContainerConfig struct {
		// Image is the image the container is created from.
		Image string `mapstructure:"image"`
		// NamePrefix is joined with the user identity to form the container name.
		NamePrefix string `mapstructure:"name_prefix"`
		// ShmSize is the /dev/shm size (e.g., "10g").
		ShmSize string `mapstructure:"shm_size"`
		// Network is the container network mode.
		Network string `mapstructure:"network"`
		// GPUs is the --gpus request ("all", "device=0,1", "" for none).
		GPUs string `mapstructure:"gpus"`
		// Privileged runs the container in privileged mode.
		Privileged bool `mapstructure:"privileged"`
		// Volumes are additional bind mounts in "host:container[:ro]" format.
		Volumes []string `mapstructure:"volumes"`
	}

	// UIConfig holds user interface settings.
	UIConfig struct {
		// Verbose enables verbose diagnostic output.
		Verbose bool `mapstructure:"verbose"`
	}

	// Config is the root gpubox configuration.
	Config struct {
		// Engine is the preferred container runtime.
		Engine ContainerEngine `mapstructure:"engine"`
		// Workspace is the host directory mounted into the container at /workspace.
		Workspace string `mapstructure:"workspace"`
		// CacheDir is the host cache directory mounted into the container.
		CacheDir CacheDirPath `mapstructure:"cache_dir"`
		// Container is the creation specification.
		Container ContainerConfig `mapstructure:"container"`
		// UI holds user interface settings.
		UI UIConfig `mapstructure:"ui"`
	}

	// InvalidConfigError is returned when a Config has one or more invalid fields.
	// It wraps the individual field validation errors for inspection.
	InvalidConfigError struct {
		FieldErrs []error
	}
)

// Error implements the error interface.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman, auto)", e.Value)
}

// Unwrap returns ErrInvalidContainerEngine so callers can use errors.Is for programmatic detection.
func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

// String returns the string representation of the ContainerEngine.
func (c ContainerEngine) String() string { return string(c) }

// Validate returns an error if the ContainerEngine is not one of the defined engines.
// The zero value ("") is valid and is treated as "auto".
func (c ContainerEngine) Validate() error {
	switch c {
	case ContainerEngineDocker, ContainerEnginePodman, ContainerEngineAuto, "":
		return nil
	default:
		return &InvalidContainerEngineError{Value: c}
	}
}

// Error implements the error interface.
func (e *InvalidCacheDirPathError) Error() string {
	return fmt.Sprintf("invalid cache dir path %q: must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidCacheDirPath for errors.Is() compatibility.
func (e *InvalidCacheDirPathError) Unwrap() error { return ErrInvalidCacheDirPath }

// String returns the string representation of the CacheDirPath.
func (p CacheDirPath) String() string { return string(p) }

// Validate returns an error if the CacheDirPath is non-empty but whitespace-only.
func (p CacheDirPath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return &InvalidCacheDirPathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate returns an error if any field of the Config is invalid.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.CacheDir.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Container.Image) == "" {
		errs = append(errs, errors.New("container.image must not be empty"))
	}
	if strings.TrimSpace(c.Container.NamePrefix) == "" {
		errs = append(errs, errors.New("container.name_prefix must not be empty"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrs: errs}
	}
	return nil
}

// DefaultConfig returns the built-in defaults: a detached GPU serving
// container with host networking and a large /dev/shm, the shape expected
// by distributed training and inference workloads.
func DefaultConfig() *Config {
	return &Config{
		Engine: ContainerEngineAuto,
		Container: ContainerConfig{
			Image:      "nvcr.io/nvidia/pytorch:25.02-py3",
			NamePrefix: "gpubox",
			ShmSize:    "10g",
			Network:    "host",
			GPUs:       "all",
			Privileged: true,
		},
	}
}
