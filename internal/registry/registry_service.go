// Package registry keeps the local registry records in step with the
// container CLI's registry login and default-registry state.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/container-kit/containerkit/internal/container"
	"github.com/container-kit/containerkit/internal/infrastructure/sqlite"
	"github.com/container-kit/containerkit/internal/log"
)

// ErrInvalidRegistry is returned for hosts that are not valid registry names.
var ErrInvalidRegistry = errors.New("invalid registry")

// CLI is the subset of container.Client the service drives.
type CLI interface {
	RegistryLogin(ctx context.Context, p container.LoginParams) (container.Output, error)
	RegistryLogout(ctx context.Context, registry string) (container.Output, error)
	SetDefaultRegistry(ctx context.Context, registry string) (container.Output, error)
}

// Store persists registry records.
type Store interface {
	Add(ctx context.Context, name, url string) (sqlite.Registry, error)
	List(ctx context.Context) ([]sqlite.Registry, error)
	FindByURL(ctx context.Context, url string) (sqlite.Registry, error)
	Default(ctx context.Context) (sqlite.Registry, error)
	SetDefault(ctx context.Context, url string) error
	SetLoggedIn(ctx context.Context, url string, loggedIn bool) error
}

var (
	_ CLI   = (*container.Client)(nil)
	_ Store = (*sqlite.RegistryRepository)(nil)
)

// RegistryService handles registry operations.
type RegistryService struct {
	cli   CLI
	store Store
}

// NewRegistryService creates a RegistryService.
func NewRegistryService(cli CLI, store Store) *RegistryService {
	return &RegistryService{cli: cli, store: store}
}

// NormalizeHost trims raw and checks that it names a registry host.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", fmt.Errorf("%w: empty host", ErrInvalidRegistry)
	}
	if _, err := name.NewRegistry(host, name.StrictValidation); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidRegistry, host, err)
	}
	return host, nil
}

// Add records a registry. An empty display name uses the host.
func (s *RegistryService) Add(ctx context.Context, displayName, url string) (sqlite.Registry, error) {
	host, err := NormalizeHost(url)
	if err != nil {
		return sqlite.Registry{}, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = host
	}
	return s.store.Add(ctx, displayName, host)
}

// List returns every recorded registry.
func (s *RegistryService) List(ctx context.Context) ([]sqlite.Registry, error) {
	return s.store.List(ctx)
}

// Default returns the recorded default registry.
func (s *RegistryService) Default(ctx context.Context) (sqlite.Registry, error) {
	return s.store.Default(ctx)
}

// Login logs in through the CLI and, when it succeeds, marks the registry
// logged in, recording it first if it is new.
func (s *RegistryService) Login(ctx context.Context, p container.LoginParams) (container.Output, error) {
	host, err := NormalizeHost(p.Registry)
	if err != nil {
		return container.Output{}, err
	}
	p.Registry = host

	out, err := s.cli.RegistryLogin(ctx, p)
	if err != nil || out.Error {
		return out, err
	}
	if err := s.ensure(ctx, host); err != nil {
		return out, err
	}
	if err := s.store.SetLoggedIn(ctx, host, true); err != nil {
		return out, fmt.Errorf("recording login: %w", err)
	}
	return out, nil
}

// Logout logs out through the CLI and clears the logged-in flag.
// Registries that were never recorded are left alone.
func (s *RegistryService) Logout(ctx context.Context, registry string) (container.Output, error) {
	host, err := NormalizeHost(registry)
	if err != nil {
		return container.Output{}, err
	}

	out, err := s.cli.RegistryLogout(ctx, host)
	if err != nil || out.Error {
		return out, err
	}
	err = s.store.SetLoggedIn(ctx, host, false)
	if err != nil && !errors.Is(err, sqlite.ErrRegistryNotFound) {
		return out, fmt.Errorf("recording logout: %w", err)
	}
	return out, nil
}

// SetDefault makes registry the CLI default and the recorded default.
func (s *RegistryService) SetDefault(ctx context.Context, registry string) (container.Output, error) {
	host, err := NormalizeHost(registry)
	if err != nil {
		return container.Output{}, err
	}

	out, err := s.cli.SetDefaultRegistry(ctx, host)
	if err != nil || out.Error {
		return out, err
	}
	if err := s.ensure(ctx, host); err != nil {
		return out, err
	}
	if err := s.store.SetDefault(ctx, host); err != nil {
		return out, fmt.Errorf("recording default registry: %w", err)
	}
	return out, nil
}

// maxNameAttempts bounds the suffixes ensure tries when the host is
// already taken as another registry's display name.
const maxNameAttempts = 10

// ensure records host under its own name, or "host (n)" when a different
// registry already uses that name.
func (s *RegistryService) ensure(ctx context.Context, host string) error {
	_, err := s.store.FindByURL(ctx, host)
	if errors.Is(err, sqlite.ErrRegistryNotFound) {
		log.Info(log.CatDB, "recording new registry", "url", host)
		displayName := host
		for n := 2; ; n++ {
			_, err = s.store.Add(ctx, displayName, host)
			if !errors.Is(err, sqlite.ErrDuplicateRegistry) || n > maxNameAttempts {
				break
			}
			displayName = fmt.Sprintf("%s (%d)", host, n)
		}
	}
	if err != nil {
		return fmt.Errorf("recording registry %s: %w", host, err)
	}
	return nil
}
