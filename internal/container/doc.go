// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer for container runtimes
// (Docker/Podman) driven through their command-line interfaces. The engines
// cover exactly the lifecycle operations gpubox needs: exact-name existence
// checks, stop, remove, detached creation, and interactive exec.
package container
