package container

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// ContainerStatus is the runtime state reported by `container ls`.
type ContainerStatus string

const (
	StatusRunning ContainerStatus = "running"
	StatusStopped ContainerStatus = "stopped"
)

// ContainerClient is one entry of `container ls -a --format json`.
type ContainerClient struct {
	Configuration ContainerConfiguration `json:"configuration"`
	Networks      []NetworkAttachment    `json:"networks"`
	Status        ContainerStatus        `json:"status"`
}

// ID returns the container id.
func (c ContainerClient) ID() string { return c.Configuration.ID }

// Running reports whether the container is running.
func (c ContainerClient) Running() bool { return c.Status == StatusRunning }

// ContainerConfiguration is the static configuration of a container.
type ContainerConfiguration struct {
	ID             string               `json:"id"`
	Hostname       string               `json:"hostname"`
	DNS            ContainerDNS         `json:"dns"`
	Resources      ContainerResources   `json:"resources"`
	Image          ImageRecord          `json:"image"`
	Sysctls        map[string]string    `json:"sysctls"`
	Platform       Platform             `json:"platform"`
	Rosetta        bool                 `json:"rosetta"`
	Networks       []NetworkAttachment  `json:"networks"`
	Labels         map[string]string    `json:"labels"`
	Mounts         []json.RawMessage    `json:"mounts"`
	RuntimeHandler string               `json:"runtimeHandler"`
	InitProcess    ContainerInitProcess `json:"initProcess"`
}

// ContainerInitProcess describes the container's entry process.
type ContainerInitProcess struct {
	Rlimits            []json.RawMessage `json:"rlimits"`
	SupplementalGroups []json.RawMessage `json:"supplementalGroups"`
	Arguments          []string          `json:"arguments"`
	User               struct {
		ID struct {
			UID int `json:"uid"`
			GID int `json:"gid"`
		} `json:"id"`
	} `json:"user"`
	Executable       string   `json:"executable"`
	WorkingDirectory string   `json:"workingDirectory"`
	Terminal         bool     `json:"terminal"`
	Environment      []string `json:"environment"`
}

// Platform is an OS/architecture pair.
type Platform struct {
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
}

func (p Platform) String() string {
	if p.OS == "" && p.Architecture == "" {
		return ""
	}
	return p.OS + "/" + p.Architecture
}

// ContainerResources are the CPU and memory limits of a container.
type ContainerResources struct {
	CPUs          int   `json:"cpus"`
	MemoryInBytes int64 `json:"memoryInBytes"`
}

// ContainerDNS is the resolver configuration inside a container.
type ContainerDNS struct {
	SearchDomains []string `json:"searchDomains"`
	Options       []string `json:"options"`
	Domain        string   `json:"domain"`
	Nameservers   []string `json:"nameservers"`
}

// NetworkAttachment links a container to a network. Older CLI releases print
// a bare network name, newer ones an object; both decode.
type NetworkAttachment struct {
	Network  string `json:"network"`
	Hostname string `json:"hostname,omitempty"`
	Address  string `json:"address,omitempty"`
	Gateway  string `json:"gateway,omitempty"`
}

// UnmarshalJSON accepts either a string or an attachment object.
func (n *NetworkAttachment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NetworkAttachment{Network: s}
		return nil
	}
	type plain NetworkAttachment
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = NetworkAttachment(p)
	return nil
}

// Descriptor is an OCI content descriptor.
type Descriptor struct {
	Digest    string `json:"digest"`
	Size      int64  `json:"size"`
	MediaType string `json:"mediaType"`
}

// ImageRecord is one entry of `container image ls --format json`.
type ImageRecord struct {
	Descriptor Descriptor `json:"descriptor"`
	Reference  string     `json:"reference"`
}

// ParsedReference parses Reference with registry defaults applied.
func (i ImageRecord) ParsedReference() (name.Reference, error) {
	ref, err := name.ParseReference(i.Reference, name.WeakValidation)
	if err != nil {
		return nil, fmt.Errorf("parsing image reference %q: %w", i.Reference, err)
	}
	return ref, nil
}

// Repository returns the repository part of the reference ("docker.io/library/alpine"),
// falling back to the raw reference when it does not parse.
func (i ImageRecord) Repository() string {
	ref, err := i.ParsedReference()
	if err != nil {
		return i.Reference
	}
	return ref.Context().Name()
}

// Tag returns the tag or digest identifying the image within its repository.
func (i ImageRecord) Tag() string {
	ref, err := i.ParsedReference()
	if err != nil {
		return ""
	}
	return ref.Identifier()
}

// ShortDigest returns the first 12 hex characters of the descriptor digest.
func (i ImageRecord) ShortDigest() string {
	d := i.Descriptor.Digest
	if _, hex, ok := strings.Cut(d, ":"); ok {
		d = hex
	}
	if len(d) > 12 {
		d = d[:12]
	}
	return d
}

// Network is one entry of `container network ls --format json`.
type Network struct {
	ID     string        `json:"id"`
	State  string        `json:"state"`
	Config NetworkConfig `json:"config"`
	Status NetworkStatus `json:"status"`
}

// NetworkConfig is the requested configuration of a network.
type NetworkConfig struct {
	ID     string `json:"id"`
	Mode   string `json:"mode,omitempty"`
	Subnet string `json:"subnet,omitempty"`
}

// NetworkStatus is the observed state of a running network.
type NetworkStatus struct {
	Address string `json:"address,omitempty"`
	Gateway string `json:"gateway,omitempty"`
}

// LoginParams are the inputs of a registry login.
type LoginParams struct {
	Username string
	Password string
	// Scheme is "http", "https" or "auto"; empty means "auto".
	Scheme   string
	Registry string
}

// LogsOptions tunes `container logs`.
type LogsOptions struct {
	// Boot shows the VM boot log instead of the container's stdio.
	Boot bool
	// Lines limits output to the last n lines when positive.
	Lines int
}

// CommandError is returned by decoding helpers when the CLI reported failure.
type CommandError struct {
	Output Output
}

func (e *CommandError) Error() string {
	if msg := strings.TrimSpace(e.Output.Stderr); msg != "" {
		return fmt.Sprintf("%s: %s", e.Output.Message, msg)
	}
	return e.Output.Message
}

// decodeList decodes a JSON array printed by a successful list command.
func decodeList[T any](out Output) ([]T, error) {
	if out.Error {
		return nil, &CommandError{Output: out}
	}
	var items []T
	if err := json.Unmarshal([]byte(out.Stdout), &items); err != nil {
		return nil, fmt.Errorf("decoding CLI output: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// ParseDNSDomains splits the space separated output of `container s dns ls`.
// The CLI has no JSON format for this listing.
func ParseDNSDomains(stdout string) []string {
	fields := strings.Fields(stdout)
	if fields == nil {
		return []string{}
	}
	return fields
}
