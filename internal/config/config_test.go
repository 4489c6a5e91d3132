// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gpubox/internal/testutil"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine != ContainerEngineAuto {
		t.Errorf("Engine = %q, want %q", cfg.Engine, ContainerEngineAuto)
	}
	if cfg.Container.NamePrefix != "gpubox" {
		t.Errorf("Container.NamePrefix = %q, want %q", cfg.Container.NamePrefix, "gpubox")
	}
	if cfg.Container.ShmSize != "10g" {
		t.Errorf("Container.ShmSize = %q, want %q", cfg.Container.ShmSize, "10g")
	}
	if !cfg.Container.Privileged {
		t.Error("Container.Privileged = false, want true")
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	content := []byte(`
engine: podman
container:
  image: localhost/custom:dev
  shm_size: 2g
  network: bridge
  privileged: false
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine != ContainerEnginePodman {
		t.Errorf("Engine = %q, want podman", cfg.Engine)
	}
	if cfg.Container.Image != "localhost/custom:dev" {
		t.Errorf("Container.Image = %q", cfg.Container.Image)
	}
	if cfg.Container.Network != "bridge" {
		t.Errorf("Container.Network = %q, want bridge", cfg.Container.Network)
	}
	if cfg.Container.Privileged {
		t.Error("Container.Privileged = true, want false")
	}
	// Untouched keys keep their defaults.
	if cfg.Container.NamePrefix != "gpubox" {
		t.Errorf("Container.NamePrefix = %q, want default", cfg.Container.NamePrefix)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	t.Setenv("GPUBOX_CONTAINER_IMAGE", "registry.local/box:nightly")
	t.Setenv("GPUBOX_ENGINE", "docker")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Container.Image != "registry.local/box:nightly" {
		t.Errorf("Container.Image = %q, want env override", cfg.Container.Image)
	}
	if cfg.Engine != ContainerEngineDocker {
		t.Errorf("Engine = %q, want docker", cfg.Engine)
	}
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	if err == nil {
		t.Fatal("Load() with missing explicit config file: error = nil, want failure")
	}
}

func TestLoad_InvalidEngineRejected(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	content := []byte("engine: lxc\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err == nil {
		t.Fatal("Load() with engine=lxc: error = nil, want validation failure")
	}
}

func TestDefaultCacheDir_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Cleanup(testutil.SetHomeDir(t, home))
	t.Cleanup(testutil.MustUnsetenv(t, "GPUBOX_CACHE_DIR"))

	dir, err := DefaultCacheDir()
	if err != nil {
		t.Fatalf("DefaultCacheDir() error = %v", err)
	}
	if want := filepath.Join(home, ".cache", AppName); dir != want {
		t.Errorf("DefaultCacheDir() = %q, want %q", dir, want)
	}
}

func TestDefaultCacheDir_EnvOverride(t *testing.T) {
	t.Setenv("GPUBOX_CACHE_DIR", "/tmp/custom-cache")

	dir, err := DefaultCacheDir()
	if err != nil {
		t.Fatalf("DefaultCacheDir() error = %v", err)
	}
	if dir != "/tmp/custom-cache" {
		t.Errorf("DefaultCacheDir() = %q, want env override", dir)
	}
}
