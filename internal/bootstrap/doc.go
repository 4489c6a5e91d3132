// SPDX-License-Identifier: MPL-2.0

// Package bootstrap implements the idempotent check-and-act sequence that
// guarantees a user's container exists in exactly one of two acceptable end
// states: freshly created, or deliberately left untouched. Every destructive
// step is gated behind an interactive confirmation, and every external
// failure is terminal; there are no retries and no partial-state rollback.
package bootstrap
