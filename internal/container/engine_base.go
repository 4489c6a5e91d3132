// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"gpubox/internal/issue"
)

var (
	// ErrInvalidContainerName is the sentinel error wrapped by InvalidContainerNameError.
	ErrInvalidContainerName = errors.New("invalid container name")

	// ErrInvalidImageRef is the sentinel error wrapped by InvalidImageRefError.
	ErrInvalidImageRef = errors.New("invalid image reference")

	// ErrInvalidHostFilesystemPath is the sentinel error wrapped by InvalidHostFilesystemPathError.
	ErrInvalidHostFilesystemPath = errors.New("invalid host filesystem path")

	// ErrInvalidMountTargetPath is the sentinel error wrapped by InvalidMountTargetPathError.
	ErrInvalidMountTargetPath = errors.New("invalid container filesystem path")

	// ErrInvalidVolumeMount is the sentinel error wrapped by InvalidVolumeMountError.
	ErrInvalidVolumeMount = errors.New("invalid volume mount")

	// ErrInvalidSharedMemorySize is the sentinel error wrapped by InvalidSharedMemorySizeError.
	ErrInvalidSharedMemorySize = errors.New("invalid shared memory size")

	// containerNamePattern matches names the docker/podman daemons accept.
	containerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

	// shmSizePattern matches sizes like "10g", "1024m", "2048".
	shmSizePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[bkmgBKMG]?$`)
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// RunArgsTransformer modifies create arguments after they're built.
	// Used by Podman to inject --userns=keep-id for rootless compatibility.
	RunArgsTransformer func(args []string) []string

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides common implementation for CLI-based container engines.
	// Docker and Podman engines embed this struct. Methods that are identical
	// across all CLI engines (Exists, Stop, Remove, Create, Exec, arg builders)
	// are implemented here; engine-specific methods (Available, Version) remain
	// on the concrete types.
	BaseCLIEngine struct {
		name               string // Engine name for error messages (e.g., "docker", "podman")
		binaryPath         HostFilesystemPath
		execCommand        ExecCommandFunc
		runArgsTransformer RunArgsTransformer
	}

	// ContainerName is the exact name a container is created with and looked
	// up by. A valid name is non-empty and matches the daemon's naming rules.
	ContainerName string

	// InvalidContainerNameError is returned when a ContainerName is empty or malformed.
	InvalidContainerNameError struct {
		Value ContainerName
	}

	// ImageRef is a container image reference (e.g., "nvcr.io/nvidia/pytorch:25.02-py3").
	// A valid reference is non-empty and not whitespace-only.
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef is empty or whitespace-only.
	InvalidImageRefError struct {
		Value ImageRef
	}

	// HostFilesystemPath represents a filesystem path on the host for volume mounts.
	// A valid path must be non-empty and not whitespace-only.
	HostFilesystemPath string

	// InvalidHostFilesystemPathError is returned when a HostFilesystemPath is empty or whitespace-only.
	InvalidHostFilesystemPathError struct {
		Value HostFilesystemPath
	}

	// MountTargetPath represents a filesystem path inside a container for volume mounts.
	// A valid path must be non-empty and not whitespace-only.
	MountTargetPath string

	// InvalidMountTargetPathError is returned when a MountTargetPath is empty or whitespace-only.
	InvalidMountTargetPathError struct {
		Value MountTargetPath
	}

	// VolumeMount represents a volume mount specification.
	VolumeMount struct {
		HostPath      HostFilesystemPath
		ContainerPath MountTargetPath
		ReadOnly      bool
	}

	// InvalidVolumeMountError is returned when a VolumeMount has one or more invalid fields.
	// It wraps the individual field validation errors for inspection.
	InvalidVolumeMountError struct {
		Value     VolumeMount
		FieldErrs []error
	}

	// GPURequest is the value passed to --gpus (e.g., "all", "device=0,1").
	// The zero value ("") means no GPU passthrough.
	GPURequest string

	// SharedMemorySize is the value passed to --shm-size (e.g., "10g").
	// The zero value ("") means the runtime default.
	SharedMemorySize string

	// InvalidSharedMemorySizeError is returned when a SharedMemorySize is malformed.
	InvalidSharedMemorySizeError struct {
		Value SharedMemorySize
	}

	// NetworkMode is the value passed to --network (e.g., "host", "bridge").
	// The zero value ("") means the runtime default.
	NetworkMode string

	// CreateOptions contains options for creating a container.
	CreateOptions struct {
		// Name is the exact container name
		Name ContainerName
		// Image is the image to run
		Image ImageRef
		// Volumes are bind mounts applied to the container
		Volumes []VolumeMount
		// Env contains environment variables
		Env map[string]string
		// WorkDir is the working directory inside the container
		WorkDir MountTargetPath
		// GPUs requests GPU device passthrough
		GPUs GPURequest
		// ShmSize sets the /dev/shm size
		ShmSize SharedMemorySize
		// Privileged runs the container in privileged mode
		Privileged bool
		// Network sets the network mode
		Network NetworkMode
		// Detach starts the container in the background
		Detach bool
		// Interactive keeps stdin open
		Interactive bool
		// TTY allocates a pseudo-TTY
		TTY bool
		// Command overrides the image entrypoint arguments
		Command []string
		// ExtraArgs are appended verbatim before the image reference
		ExtraArgs []string
	}

	// ExecOptions contains options for executing a command in a running container.
	ExecOptions struct {
		// Interactive keeps stdin open
		Interactive bool
		// TTY allocates a pseudo-TTY
		TTY bool
		// WorkDir is the working directory inside the container
		WorkDir MountTargetPath
		// Env contains environment variables
		Env map[string]string
		// Stdin is the standard input
		Stdin io.Reader
		// Stdout is where to write standard output
		Stdout io.Writer
		// Stderr is where to write standard error
		Stderr io.Writer
	}

	// ExecResult contains the result of executing a command in a container.
	ExecResult struct {
		// ExitCode is the exit code of the command
		ExitCode int
		// Error contains any infrastructure error (binary not found, etc.)
		Error error
	}
)

// Error implements the error interface.
func (e *InvalidContainerNameError) Error() string {
	return fmt.Sprintf("invalid container name %q: must be non-empty and match %s", e.Value, containerNamePattern)
}

// Unwrap returns ErrInvalidContainerName so callers can use errors.Is for programmatic detection.
func (e *InvalidContainerNameError) Unwrap() error { return ErrInvalidContainerName }

// String returns the string representation of the ContainerName.
func (n ContainerName) String() string { return string(n) }

// Validate returns an error if the ContainerName is empty or malformed.
func (n ContainerName) Validate() error {
	if !containerNamePattern.MatchString(string(n)) {
		return &InvalidContainerNameError{Value: n}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidImageRef so callers can use errors.Is for programmatic detection.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// Validate returns an error if the ImageRef is empty or whitespace-only.
func (r ImageRef) Validate() error {
	if strings.TrimSpace(string(r)) == "" {
		return &InvalidImageRefError{Value: r}
	}
	return nil
}

// String returns the string representation of the HostFilesystemPath.
func (p HostFilesystemPath) String() string { return string(p) }

// Validate returns an error if the HostFilesystemPath is invalid.
// A valid path must be non-empty and not whitespace-only.
func (p HostFilesystemPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidHostFilesystemPathError{Value: p}
	}
	return nil
}

// Error implements the error interface for InvalidHostFilesystemPathError.
func (e *InvalidHostFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid host filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidHostFilesystemPath for errors.Is() compatibility.
func (e *InvalidHostFilesystemPathError) Unwrap() error { return ErrInvalidHostFilesystemPath }

// String returns the string representation of the MountTargetPath.
func (p MountTargetPath) String() string { return string(p) }

// Validate returns an error if the MountTargetPath is invalid.
// A valid path must be non-empty and not whitespace-only.
func (p MountTargetPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidMountTargetPathError{Value: p}
	}
	return nil
}

// Error implements the error interface for InvalidMountTargetPathError.
func (e *InvalidMountTargetPathError) Error() string {
	return fmt.Sprintf("invalid container filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidMountTargetPath for errors.Is() compatibility.
func (e *InvalidMountTargetPathError) Unwrap() error { return ErrInvalidMountTargetPath }

// Error implements the error interface for InvalidVolumeMountError.
func (e *InvalidVolumeMountError) Error() string {
	return fmt.Sprintf("invalid volume mount %s:%s: %d field error(s)",
		e.Value.HostPath, e.Value.ContainerPath, len(e.FieldErrs))
}

// Unwrap returns ErrInvalidVolumeMount for errors.Is() compatibility.
func (e *InvalidVolumeMountError) Unwrap() error { return ErrInvalidVolumeMount }

// Validate returns an error if any typed field of the VolumeMount is invalid.
// ReadOnly is a bool and requires no validation.
func (v VolumeMount) Validate() error {
	var errs []error
	if err := v.HostPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := v.ContainerPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidVolumeMountError{Value: v, FieldErrs: errs}
	}
	return nil
}

// String returns the volume mount in "host:container[:ro]" format.
func (v VolumeMount) String() string {
	s := string(v.HostPath) + ":" + string(v.ContainerPath)
	if v.ReadOnly {
		s += ":ro"
	}
	return s
}

// String returns the string representation of the GPURequest.
func (g GPURequest) String() string { return string(g) }

// String returns the string representation of the SharedMemorySize.
func (s SharedMemorySize) String() string { return string(s) }

// Validate returns an error if the SharedMemorySize is malformed.
// The zero value ("") is valid and means the runtime default.
func (s SharedMemorySize) Validate() error {
	if s == "" {
		return nil
	}
	if !shmSizePattern.MatchString(string(s)) {
		return &InvalidSharedMemorySizeError{Value: s}
	}
	return nil
}

// Error implements the error interface for InvalidSharedMemorySizeError.
func (e *InvalidSharedMemorySizeError) Error() string {
	return fmt.Sprintf("invalid shared memory size %q (expected a value like \"10g\" or \"1024m\")", e.Value)
}

// Unwrap returns ErrInvalidSharedMemorySize for errors.Is() compatibility.
func (e *InvalidSharedMemorySizeError) Unwrap() error { return ErrInvalidSharedMemorySize }

// String returns the string representation of the NetworkMode.
func (n NetworkMode) String() string { return string(n) }

// Validate returns an error if any field of the CreateOptions is invalid.
func (o CreateOptions) Validate() error {
	var errs []error
	if err := o.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.ShmSize.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, v := range o.Volumes {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// --- Option Functions ---

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithRunArgsTransformer sets a custom create args transformer.
// This is used by Podman to inject --userns=keep-id for rootless compatibility.
func WithRunArgsTransformer(fn RunArgsTransformer) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.runArgsTransformer = fn
	}
}

// --- Constructor ---

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath HostFilesystemPath, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
		// Identity function by default
		runArgsTransformer: func(args []string) []string { return args },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Accessor Methods ---

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return string(e.binaryPath)
}

// --- Argument Builders ---

// ExistsArgs constructs arguments for an exact-name existence query.
// The filter is anchored (^/name$) so that similarly named containers
// ("gpubox-alice2" vs "gpubox-alice") never produce false positives;
// output is still compared line-by-line for exact equality.
//
// Generated command: <binary> ps -a --filter name=^/<name>$ --format {{.Names}}
func (e *BaseCLIEngine) ExistsArgs(name ContainerName) []string {
	return []string{
		"ps", "-a",
		"--filter", fmt.Sprintf("name=^/?%s$", name),
		"--format", "{{.Names}}",
	}
}

// StopArgs constructs arguments for a container stop command.
func (e *BaseCLIEngine) StopArgs(name ContainerName) []string {
	return []string{"stop", string(name)}
}

// RemoveArgs constructs arguments for a container remove command.
func (e *BaseCLIEngine) RemoveArgs(name ContainerName, force bool) []string {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, string(name))
	return args
}

// CreateArgs constructs arguments for a container run command.
// Returns arguments in the order expected by docker/podman run.
// Environment variables are emitted in sorted key order so the generated
// command line is deterministic.
//
// Generated command: <binary> run [options] <image> [command...]
func (e *BaseCLIEngine) CreateArgs(opts CreateOptions) []string {
	args := []string{"run"}

	if opts.Detach {
		args = append(args, "-d")
	}

	if opts.Interactive {
		args = append(args, "-i")
	}

	if opts.TTY {
		args = append(args, "-t")
	}

	if opts.Name != "" {
		args = append(args, "--name", string(opts.Name))
	}

	if opts.Privileged {
		args = append(args, "--privileged")
	}

	if opts.GPUs != "" {
		args = append(args, "--gpus", string(opts.GPUs))
	}

	if opts.ShmSize != "" {
		args = append(args, "--shm-size", string(opts.ShmSize))
	}

	if opts.Network != "" {
		args = append(args, "--network", string(opts.Network))
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", string(opts.WorkDir))
	}

	for _, k := range sortedKeys(opts.Env) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}

	for _, v := range opts.Volumes {
		args = append(args, "-v", v.String())
	}

	args = append(args, opts.ExtraArgs...)

	args = append(args, string(opts.Image))
	args = append(args, opts.Command...)

	return e.runArgsTransformer(args)
}

// ExecArgs constructs arguments for a container exec command.
//
// Generated command: <binary> exec [options] <container> <command...>
func (e *BaseCLIEngine) ExecArgs(name ContainerName, command []string, opts ExecOptions) []string {
	args := []string{"exec"}

	if opts.Interactive {
		args = append(args, "-i")
	}

	if opts.TTY {
		args = append(args, "-t")
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", string(opts.WorkDir))
	}

	for _, k := range sortedKeys(opts.Env) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}

	args = append(args, string(name))
	args = append(args, command...)

	return args
}

// --- Command Execution ---

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return commandError(string(e.binaryPath), args, stderr.String(), err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", commandError(string(e.binaryPath), args, stderr.String(), err)
	}

	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments.
// This is useful when the caller needs to customize stdin/stdout/stderr.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, string(e.binaryPath), args...)
}

// --- Promoted Engine Methods (shared by Docker and Podman) ---

// Exists reports whether a container with exactly the given name exists.
// The daemon-side filter narrows candidates; the returned names are then
// compared for exact equality, never by prefix or substring.
func (e *BaseCLIEngine) Exists(ctx context.Context, name ContainerName) (bool, error) {
	if err := name.Validate(); err != nil {
		return false, err
	}

	out, err := e.RunCommandWithOutput(ctx, e.ExistsArgs(name)...)
	if err != nil {
		return false, fmt.Errorf("query containers by name: %w", err)
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == string(name) {
			return true, nil
		}
	}
	return false, nil
}

// Stop stops a running container.
func (e *BaseCLIEngine) Stop(ctx context.Context, name ContainerName) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.StopArgs(name)...)
}

// Remove removes a container.
func (e *BaseCLIEngine) Remove(ctx context.Context, name ContainerName, force bool) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.RemoveArgs(name, force)...)
}

// Create creates a container and returns the handle printed by the runtime
// (the container ID for detached runs). It validates CreateOptions before
// executing to catch invalid fields early.
func (e *BaseCLIEngine) Create(ctx context.Context, opts CreateOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	out, err := e.RunCommandWithOutput(ctx, e.CreateArgs(opts)...)
	if err != nil {
		return "", createContainerError(e.name, opts, err)
	}

	// Detached runs print the container ID as the last non-empty line.
	lines := strings.Fields(strings.TrimSpace(out))
	if len(lines) == 0 {
		return string(opts.Name), nil
	}
	return lines[len(lines)-1], nil
}

// Exec runs a command in a running container with the caller's stdio wired
// straight through. A non-zero exit code is captured in ExecResult.ExitCode
// (not returned as error). Only infrastructure failures set ExecResult.Error.
func (e *BaseCLIEngine) Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*ExecResult, error) {
	if err := name.Validate(); err != nil {
		return nil, err
	}

	cmd := e.CreateCommand(ctx, e.ExecArgs(name, command, opts)...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err := cmd.Run()

	result := &ExecResult{}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}

	return result, nil
}

// --- Volume Mount Parsing ---

// ParseVolumeMount parses a volume string into a VolumeMount struct.
// Volume format: host_path:container_path[:ro]
// After parsing, the result is validated via VolumeMount.Validate().
func ParseVolumeMount(volume string) (VolumeMount, error) {
	mount := VolumeMount{}

	parts := strings.Split(volume, ":")

	if len(parts) >= 1 {
		mount.HostPath = HostFilesystemPath(parts[0])
	}
	if len(parts) >= 2 {
		mount.ContainerPath = MountTargetPath(parts[1])
	}
	if len(parts) >= 3 {
		for _, opt := range strings.Split(parts[2], ",") {
			if opt == "ro" {
				mount.ReadOnly = true
			}
		}
	}

	if err := mount.Validate(); err != nil {
		return mount, err
	}
	return mount, nil
}

// --- Helpers ---

// sortedKeys returns the map keys in sorted order for deterministic arg output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// commandError wraps a failed engine invocation, surfacing the runtime's own
// stderr verbatim so the user sees the real cause.
func commandError(binary string, args []string, stderr string, cause error) error {
	msg := fmt.Sprintf("command %s %v failed", binary, args)
	if s := strings.TrimSpace(stderr); s != "" {
		return fmt.Errorf("%s: %w: %s", msg, cause, s)
	}
	return fmt.Errorf("%s: %w", msg, cause)
}

// createContainerError creates an actionable error for container creation failures.
func createContainerError(engine string, opts CreateOptions, cause error) error {
	ctx := issue.NewErrorContext().
		WithOperation("create container").
		WithResource(string(opts.Name))

	ctx.WithSuggestion("Verify the image exists (try: " + engine + " pull " + string(opts.Image) + ")")
	ctx.WithSuggestion("Check that volume mount paths exist on the host")
	ctx.WithSuggestion("Remove a leftover container with the same name (try: " + engine + " rm " + string(opts.Name) + ")")

	return ctx.Wrap(cause).BuildError()
}
