// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestContainerEngine_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   ContainerEngine
		wantErr bool
	}{
		{value: ContainerEngineDocker, wantErr: false},
		{value: ContainerEnginePodman, wantErr: false},
		{value: ContainerEngineAuto, wantErr: false},
		{value: "", wantErr: false},
		{value: "lxc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidContainerEngine) {
				t.Errorf("error %v does not wrap ErrInvalidContainerEngine", err)
			}
		})
	}
}

func TestCacheDirPath_Validate(t *testing.T) {
	t.Parallel()

	if err := CacheDirPath("").Validate(); err != nil {
		t.Errorf("empty cache dir should be valid, got %v", err)
	}
	if err := CacheDirPath("/var/cache/gpubox").Validate(); err != nil {
		t.Errorf("normal cache dir should be valid, got %v", err)
	}
	if err := CacheDirPath("   ").Validate(); !errors.Is(err, ErrInvalidCacheDirPath) {
		t.Errorf("whitespace-only cache dir error = %v, want ErrInvalidCacheDirPath", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}

	bad := DefaultConfig()
	bad.Engine = "vmware"
	bad.Container.Image = " "
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() error = %v, want InvalidConfigError", err)
	}
	var invalidErr *InvalidConfigError
	if !errors.As(err, &invalidErr) || len(invalidErr.FieldErrs) != 2 {
		t.Errorf("Validate() field errors = %v, want 2", err)
	}
}
