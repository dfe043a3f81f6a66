package container

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/container-kit/containerkit/internal/log"
)

// DefaultScheme is used for registry logins that do not pick one.
const DefaultScheme = "auto"

// Client exposes the container CLI operations used by container-kit.
// Every method returns the validated Output; the error is non-nil only when
// the process could not be started, in which case Output.Error is set too.
type Client struct {
	runner  Runner
	builder Builder
}

// NewClient creates a Client that builds commands with b and runs them with r.
func NewClient(r Runner, b Builder) *Client {
	return &Client{runner: r, builder: b}
}

// Builder returns the client's command builder.
func (c *Client) Builder() Builder { return c.builder }

func (c *Client) run(ctx context.Context, spec CommandSpec) (Output, error) {
	res, err := c.runner.Run(ctx, spec)
	if err != nil {
		log.ErrorErr(log.CatCLI, "command could not be executed", err,
			"subcommand", subcommand(spec.Args), "mode", spec.Mode)
		return failedOutput(err), err
	}
	return Validate(res), nil
}

// ListContainers runs `container ls -a --format json`.
func (c *Client) ListContainers(ctx context.Context) (Output, error) {
	return c.run(ctx, c.builder.Command("ls", "-a", "--format", "json"))
}

// Containers lists and decodes all containers.
func (c *Client) Containers(ctx context.Context) ([]ContainerClient, error) {
	out, err := c.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	return decodeList[ContainerClient](out)
}

// CreateContainer is not supported yet.
func (c *Client) CreateContainer(ctx context.Context, name, image string) (Output, error) {
	err := fmt.Errorf("create container %s from %s: %w", name, image, ErrNotImplemented)
	return failedOutput(err), err
}

// StartContainer runs `container start <id>`.
func (c *Client) StartContainer(ctx context.Context, id string) (Output, error) {
	return c.run(ctx, c.builder.Command("start", id))
}

// StopContainer runs `container stop <id>`.
func (c *Client) StopContainer(ctx context.Context, id string) (Output, error) {
	return c.run(ctx, c.builder.Command("stop", id))
}

// RemoveContainer runs `container rm <id>`.
func (c *Client) RemoveContainer(ctx context.Context, id string) (Output, error) {
	return c.run(ctx, c.builder.Command("rm", id))
}

// InspectContainer runs `container inspect <id>`.
func (c *Client) InspectContainer(ctx context.Context, id string) (Output, error) {
	return c.run(ctx, c.builder.Command("inspect", id))
}

// ContainerLogs runs `container logs [--boot] [-n N] <id>`.
func (c *Client) ContainerLogs(ctx context.Context, id string, opts LogsOptions) (Output, error) {
	args := []string{"logs"}
	if opts.Boot {
		args = append(args, "--boot")
	}
	if opts.Lines > 0 {
		args = append(args, "-n", strconv.Itoa(opts.Lines))
	}
	args = append(args, id)
	return c.run(ctx, c.builder.Command(args...))
}

// ListImages runs `container image ls --format json`.
func (c *Client) ListImages(ctx context.Context) (Output, error) {
	return c.run(ctx, c.builder.Command("image", "ls", "--format", "json"))
}

// Images lists and decodes all local images.
func (c *Client) Images(ctx context.Context) ([]ImageRecord, error) {
	out, err := c.ListImages(ctx)
	if err != nil {
		return nil, err
	}
	return decodeList[ImageRecord](out)
}

// ListNetworks runs `container network ls --format json`.
func (c *Client) ListNetworks(ctx context.Context) (Output, error) {
	return c.run(ctx, c.builder.Command("network", "ls", "--format", "json"))
}

// Networks lists and decodes all networks.
func (c *Client) Networks(ctx context.Context) ([]Network, error) {
	out, err := c.ListNetworks(ctx)
	if err != nil {
		return nil, err
	}
	return decodeList[Network](out)
}

// RegistryLogin logs in to a registry. The password is written to the
// CLI's standard input (--password-stdin), never passed as an argument.
func (c *Client) RegistryLogin(ctx context.Context, p LoginParams) (Output, error) {
	scheme := p.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	spec := c.builder.Command(
		"registry", "login",
		"--username", p.Username,
		"--password-stdin",
		"--scheme", scheme,
		p.Registry,
	).WithStdin(p.Password)
	return c.run(ctx, spec)
}

// RegistryLogout runs `container registry logout <registry>`.
func (c *Client) RegistryLogout(ctx context.Context, registry string) (Output, error) {
	return c.run(ctx, c.builder.Command("registry", "logout", registry))
}

// DefaultRegistry runs `container registry default inspect`.
func (c *Client) DefaultRegistry(ctx context.Context) (Output, error) {
	return c.run(ctx, c.builder.Command("registry", "default", "inspect"))
}

// SetDefaultRegistry runs `container registry default set <registry>`.
func (c *Client) SetDefaultRegistry(ctx context.Context, registry string) (Output, error) {
	return c.run(ctx, c.builder.Command("registry", "default", "set", registry))
}

// UnsetDefaultRegistry runs `container registry default unset <registry>`.
func (c *Client) UnsetDefaultRegistry(ctx context.Context, registry string) (Output, error) {
	return c.run(ctx, c.builder.Command("registry", "default", "unset", registry))
}

// StartSystem starts the containerization service (`container s start`).
func (c *Client) StartSystem(ctx context.Context) (Output, error) {
	return c.run(ctx, c.builder.Command("s", "start"))
}

// StopSystem stops the containerization service.
func (c *Client) StopSystem(ctx context.Context) (Output, error) {
	return c.run(ctx, c.builder.Command("s", "stop"))
}

// SystemStatus reports the containerization service status.
func (c *Client) SystemStatus(ctx context.Context) (Output, error) {
	return c.run(ctx, c.builder.Command("s", "status"))
}

// CreateDNS creates a local DNS domain. Writing /etc/resolver needs
// administrator rights, so the command runs elevated.
func (c *Client) CreateDNS(ctx context.Context, domain string) (Output, error) {
	return c.run(ctx, c.builder.Elevated("s", "dns", "create", domain))
}

// DeleteDNS removes a local DNS domain, elevated like CreateDNS.
func (c *Client) DeleteDNS(ctx context.Context, domain string) (Output, error) {
	return c.run(ctx, c.builder.Elevated("s", "dns", "delete", domain))
}

// ListDNS runs `container s dns ls`.
func (c *Client) ListDNS(ctx context.Context) (Output, error) {
	return c.run(ctx, c.builder.Command("s", "dns", "ls"))
}

// DNSDomains lists the configured local DNS domains.
func (c *Client) DNSDomains(ctx context.Context) ([]string, error) {
	out, err := c.ListDNS(ctx)
	if err != nil {
		return nil, err
	}
	// An empty listing prints nothing, which Validate flags as an error.
	if out.Error && out.Message == MsgNoStdout && strings.TrimSpace(out.Stderr) == "" {
		return []string{}, nil
	}
	if out.Error {
		return nil, &CommandError{Output: out}
	}
	return ParseDNSDomains(out.Stdout), nil
}
