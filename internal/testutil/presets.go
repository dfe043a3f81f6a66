package testutil

import (
	"github.com/container-kit/containerkit/internal/container"
)

// WithStandardRegistries adds the seeded Docker Hub default plus GitHub
// (logged in) and Quay.
func (b *Builder) WithStandardRegistries() *Builder {
	return b.
		WithSeeds().
		WithRegistry("ghcr.io", Name("GitHub"), LoggedIn()).
		WithRegistry("quay.io", Name("Quay"))
}

// StandardContainers is a running web server on the default network and a
// stopped database.
func StandardContainers() []container.ContainerClient {
	return []container.ContainerClient{
		NewContainer("web", Image("docker.io/library/nginx:latest"), Attached("default", "192.168.64.3/24")),
		NewContainer("db", Image("docker.io/library/postgres:16"), Stopped(), Arch("amd64")),
	}
}
