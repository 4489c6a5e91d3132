// SPDX-License-Identifier: MPL-2.0

// Package config loads gpubox configuration from the platform config
// directory, GPUBOX_* environment variables, and defaults, in descending
// priority. All behavior-driving state is resolved here once at the process
// boundary and handed to the bootstrap layer as an explicit struct.
package config
