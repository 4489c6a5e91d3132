// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gpubox/internal/testutil"

	"github.com/testcontainers/testcontainers-go"
)

// checkTestcontainersAvailable safely checks if testcontainers can be used.
// Returns true if containers are available, false otherwise.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestEngine_Integration verifies exact-name existence semantics against a
// real container runtime. Requires Docker or Podman to be available.
func TestEngine_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	engine, err := AutoDetectEngine()
	if err != nil {
		t.Skipf("skipping container integration tests: no container engine available: %v", err)
	}
	if !engine.Available() {
		t.Skip("skipping container integration tests: container engine not available")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping container integration tests: testcontainers provider not available")
	}

	sem := testutil.ContainerSemaphore()
	sem <- struct{}{}
	defer func() { <-sem }()

	ctx := context.Background()
	name := fmt.Sprintf("gpubox-it-%d", time.Now().UnixNano())

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "alpine:latest",
			Name:  name,
			Cmd:   []string{"sleep", "60"},
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start fixture container: %v", err)
	}
	defer func() {
		if terminateErr := ctr.Terminate(ctx); terminateErr != nil {
			t.Logf("failed to terminate fixture container: %v", terminateErr)
		}
	}()

	exists, err := engine.Exists(ctx, ContainerName(name))
	if err != nil {
		t.Fatalf("Exists(%q) error = %v", name, err)
	}
	if !exists {
		t.Errorf("Exists(%q) = false, want true", name)
	}

	// A strict prefix of the real name must not match.
	prefix := name[:len(name)-1]
	exists, err = engine.Exists(ctx, ContainerName(prefix))
	if err != nil {
		t.Fatalf("Exists(%q) error = %v", prefix, err)
	}
	if exists {
		t.Errorf("Exists(%q) = true for a prefix of %q, want false", prefix, name)
	}
}
