// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"regexp"
	"strings"

	"gpubox/internal/container"
)

// ErrNoIdentity is returned when no identity source yields a usable value.
var ErrNoIdentity = errors.New("could not determine user identity")

// identityCleaner strips characters the container runtime would reject from
// identity values (e.g., the domain separator in "CORP\alice").
var identityCleaner = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// IdentitySource yields a candidate identity value. An empty string means
// the source has nothing to offer and the next one is consulted.
type IdentitySource func() string

// EnvSource reads the identity from an environment variable.
func EnvSource(key string) IdentitySource {
	return func() string {
		return os.Getenv(key)
	}
}

// CurrentUserSource asks the OS user database for the current username.
func CurrentUserSource() IdentitySource {
	return func() string {
		u, err := user.Current()
		if err != nil {
			return ""
		}
		return u.Username
	}
}

// DefaultIdentitySources is the ordered chain used in production: the USER
// and LOGNAME environment variables, then the OS user database.
func DefaultIdentitySources() []IdentitySource {
	return []IdentitySource{
		EnvSource("USER"),
		EnvSource("LOGNAME"),
		CurrentUserSource(),
	}
}

// DeriveIdentity computes the container name for the invoking user: the
// prefix joined with the first non-empty identity source value. The result
// is stable across repeated runs by the same user and distinct across
// different users, which is the only collision protection gpubox provides
// on shared machines.
func DeriveIdentity(prefix string, sources ...IdentitySource) (container.ContainerName, error) {
	for _, source := range sources {
		raw := strings.TrimSpace(source())
		if raw == "" {
			continue
		}

		cleaned := strings.Trim(identityCleaner.ReplaceAllString(raw, "-"), "-.")
		if cleaned == "" {
			continue
		}

		name := container.ContainerName(prefix + "-" + cleaned)
		if err := name.Validate(); err != nil {
			return "", fmt.Errorf("derive container identity: %w", err)
		}
		return name, nil
	}

	return "", ErrNoIdentity
}
