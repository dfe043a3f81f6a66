package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/container-kit/containerkit/internal/container"
	"github.com/container-kit/containerkit/internal/infrastructure/sqlite"
)

// Builder accumulates registry records and inserts them through the
// repository.
type Builder struct {
	t          *testing.T
	db         *sqlite.DB
	seed       bool
	registries []registryData
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sqlite.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithRegistry adds a registry with optional configuration.
func (b *Builder) WithRegistry(url string, opts ...RegistryOption) *Builder {
	r := registryData{name: url, url: url}
	for _, opt := range opts {
		opt(&r)
	}
	b.registries = append(b.registries, r)
	return b
}

// WithSeeds applies the database seeds before the registries are inserted.
func (b *Builder) WithSeeds() *Builder {
	b.seed = true
	return b
}

// Build inserts all accumulated data into the database.
func (b *Builder) Build() *sqlite.DB {
	b.t.Helper()
	ctx := context.Background()
	if b.seed {
		require.NoError(b.t, b.db.Seed(ctx))
	}
	repo := b.db.RegistryRepository()
	for _, r := range b.registries {
		_, err := repo.Add(ctx, r.name, r.url)
		require.NoError(b.t, err)
		if r.loggedIn {
			require.NoError(b.t, repo.SetLoggedIn(ctx, r.url, true))
		}
		if r.isDef {
			require.NoError(b.t, repo.SetDefault(ctx, r.url))
		}
	}
	return b.db
}

// NewContainer returns a running linux/arm64 container listing entry.
func NewContainer(id string, opts ...ContainerOption) container.ContainerClient {
	c := container.ContainerClient{Status: container.StatusRunning}
	c.Configuration.ID = id
	c.Configuration.Hostname = id
	c.Configuration.Image.Reference = "docker.io/library/alpine:latest"
	c.Configuration.Platform = container.Platform{OS: "linux", Architecture: "arm64"}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ContainersJSON renders containers the way `container ls --format json` does.
func ContainersJSON(t *testing.T, cs ...container.ContainerClient) string {
	t.Helper()
	if cs == nil {
		cs = []container.ContainerClient{}
	}
	data, err := json.Marshal(cs)
	require.NoError(t, err)
	return string(data)
}
