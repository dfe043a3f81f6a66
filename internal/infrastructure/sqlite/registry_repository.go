package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RegistryRepository reads and writes the registry table. Database errors
// are degraded by the proxy: reads see no rows and writes are dropped.
type RegistryRepository struct {
	proxy *Proxy
}

// NewRegistryRepository creates a RegistryRepository over p.
func NewRegistryRepository(p *Proxy) *RegistryRepository {
	return &RegistryRepository{proxy: p}
}

// Add inserts a registry. A name or url already present yields
// ErrDuplicateRegistry.
func (r *RegistryRepository) Add(ctx context.Context, name, url string) (Registry, error) {
	res := r.proxy.Execute(ctx, `SELECT name, url FROM registry WHERE name = ? OR url = ?`,
		[]any{name, url}, MethodGet)
	if res.First() != nil {
		return Registry{}, fmt.Errorf("%s (%s): %w", name, url, ErrDuplicateRegistry)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Registry{}, fmt.Errorf("generating registry id: %w", err)
	}
	reg := Registry{ID: id.String(), Name: name, URL: url}

	r.proxy.Execute(ctx,
		`INSERT INTO registry (id, name, url, "default", logged_in) VALUES (?, ?, ?, ?, ?)`,
		[]any{reg.ID, reg.Name, reg.URL, false, false}, MethodRun)
	return reg, nil
}

// List returns every registry ordered by name.
func (r *RegistryRepository) List(ctx context.Context) ([]Registry, error) {
	res := r.proxy.Execute(ctx, `SELECT `+registryColumns+` FROM registry ORDER BY name`, nil, MethodAll)
	out := make([]Registry, 0, len(res.Rows))
	for _, row := range res.Rows {
		reg, err := registryFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, nil
}

// FindByURL returns the registry with url or ErrRegistryNotFound.
func (r *RegistryRepository) FindByURL(ctx context.Context, url string) (Registry, error) {
	return r.findOne(ctx, `SELECT `+registryColumns+` FROM registry WHERE url = ?`, url)
}

// FindByName returns the registry called name or ErrRegistryNotFound.
func (r *RegistryRepository) FindByName(ctx context.Context, name string) (Registry, error) {
	return r.findOne(ctx, `SELECT `+registryColumns+` FROM registry WHERE name = ?`, name)
}

// Default returns the default registry or ErrRegistryNotFound.
func (r *RegistryRepository) Default(ctx context.Context) (Registry, error) {
	return r.findOne(ctx, `SELECT `+registryColumns+` FROM registry WHERE "default" = 1 ORDER BY name`)
}

func (r *RegistryRepository) findOne(ctx context.Context, query string, params ...any) (Registry, error) {
	row := r.proxy.Execute(ctx, query, params, MethodGet).First()
	if row == nil {
		return Registry{}, ErrRegistryNotFound
	}
	return registryFromRow(row)
}

// SetDefault makes url the only default registry.
func (r *RegistryRepository) SetDefault(ctx context.Context, url string) error {
	if _, err := r.FindByURL(ctx, url); err != nil {
		return err
	}
	r.proxy.Execute(ctx,
		`UPDATE registry SET "default" = CASE WHEN url = ? THEN 1 ELSE 0 END`,
		[]any{url}, MethodRun)
	return nil
}

// SetLoggedIn records the login state of url.
func (r *RegistryRepository) SetLoggedIn(ctx context.Context, url string, loggedIn bool) error {
	if _, err := r.FindByURL(ctx, url); err != nil {
		return err
	}
	r.proxy.Execute(ctx, `UPDATE registry SET logged_in = ? WHERE url = ?`,
		[]any{loggedIn, url}, MethodRun)
	return nil
}
