package testutil

import (
	"github.com/container-kit/containerkit/internal/container"
)

// registryData holds a registry to be inserted.
type registryData struct {
	name     string
	url      string
	isDef    bool
	loggedIn bool
}

// RegistryOption configures a registry during builder setup.
type RegistryOption func(*registryData)

// Name sets the display name (default: the url).
func Name(name string) RegistryOption {
	return func(r *registryData) { r.name = name }
}

// Default makes the registry the default one.
func Default() RegistryOption {
	return func(r *registryData) { r.isDef = true }
}

// LoggedIn marks the registry as logged in.
func LoggedIn() RegistryOption {
	return func(r *registryData) { r.loggedIn = true }
}

// ContainerOption configures a container listing entry.
type ContainerOption func(*container.ContainerClient)

// Image sets the image reference.
func Image(ref string) ContainerOption {
	return func(c *container.ContainerClient) { c.Configuration.Image.Reference = ref }
}

// Stopped marks the container as stopped.
func Stopped() ContainerOption {
	return func(c *container.ContainerClient) { c.Status = container.StatusStopped }
}

// Attached attaches the container to network with address.
func Attached(network, address string) ContainerOption {
	return func(c *container.ContainerClient) {
		c.Networks = append(c.Networks, container.NetworkAttachment{Network: network, Address: address})
	}
}

// Arch sets the platform architecture (the OS is always linux).
func Arch(arch string) ContainerOption {
	return func(c *container.ContainerClient) { c.Configuration.Platform.Architecture = arch }
}
