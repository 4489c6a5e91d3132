// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for gpubox.
//
// This package implements the Cobra command hierarchy for the gpubox CLI:
// the root command plus subcommands for bringing the per-user GPU container
// up, tearing it down, attaching a shell, and inspecting configuration.
package cmd
