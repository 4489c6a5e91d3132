// SPDX-License-Identifier: MPL-2.0

// Package tui provides the interactive confirmation prompts gpubox uses to
// gate destructive container operations. On a TTY the prompt is a small
// Bubble Tea component; otherwise a plain line-oriented fallback reads the
// answer, so piped and scripted invocations still behave predictably.
package tui
