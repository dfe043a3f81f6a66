package presentation

import (
	"strings"

	"github.com/container-kit/containerkit/internal/container"
	"github.com/container-kit/containerkit/internal/infrastructure/sqlite"
)

// ContainerDTO represents a container for presentation
type ContainerDTO struct {
	ID       string   `json:"id"`
	Image    string   `json:"image"`
	Platform string   `json:"platform"`
	Status   string   `json:"status"`
	Networks []string `json:"networks"`
	Address  string   `json:"address,omitempty"`
}

// ImageDTO represents an image for presentation
type ImageDTO struct {
	Repository string `json:"repository"`
	Tag        string `json:"tag"`
	Digest     string `json:"digest"`
	Size       int64  `json:"size"`
	Reference  string `json:"reference"`
}

// NetworkDTO represents a network for presentation
type NetworkDTO struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	Mode    string `json:"mode,omitempty"`
	Subnet  string `json:"subnet,omitempty"`
	Gateway string `json:"gateway,omitempty"`
}

// RegistryDTO represents a recorded registry for presentation
type RegistryDTO struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Default  bool   `json:"default"`
	LoggedIn bool   `json:"logged_in"`
}

// FromContainer converts a decoded container listing entry to a DTO.
func FromContainer(c container.ContainerClient) ContainerDTO {
	attachments := c.Networks
	if len(attachments) == 0 {
		attachments = c.Configuration.Networks
	}
	networks := make([]string, 0, len(attachments))
	var address string
	for _, n := range attachments {
		networks = append(networks, n.Network)
		if address == "" && n.Address != "" {
			address = n.Address
		}
	}
	return ContainerDTO{
		ID:       c.ID(),
		Image:    c.Configuration.Image.Reference,
		Platform: c.Configuration.Platform.String(),
		Status:   string(c.Status),
		Networks: networks,
		Address:  address,
	}
}

// FromContainers converts a container listing to DTOs
func FromContainers(cs []container.ContainerClient) []ContainerDTO {
	dtos := make([]ContainerDTO, len(cs))
	for i, c := range cs {
		dtos[i] = FromContainer(c)
	}
	return dtos
}

// FromImages converts an image listing to DTOs
func FromImages(images []container.ImageRecord) []ImageDTO {
	dtos := make([]ImageDTO, len(images))
	for i, img := range images {
		dtos[i] = ImageDTO{
			Repository: img.Repository(),
			Tag:        img.Tag(),
			Digest:     img.ShortDigest(),
			Size:       img.Descriptor.Size,
			Reference:  img.Reference,
		}
	}
	return dtos
}

// FromNetworks converts a network listing to DTOs
func FromNetworks(networks []container.Network) []NetworkDTO {
	dtos := make([]NetworkDTO, len(networks))
	for i, n := range networks {
		dtos[i] = NetworkDTO{
			ID:      n.ID,
			State:   n.State,
			Mode:    n.Config.Mode,
			Subnet:  n.Config.Subnet,
			Gateway: n.Status.Gateway,
		}
	}
	return dtos
}

// FromRegistries converts registry records to DTOs
func FromRegistries(regs []sqlite.Registry) []RegistryDTO {
	dtos := make([]RegistryDTO, len(regs))
	for i, r := range regs {
		dtos[i] = RegistryDTO{Name: r.Name, URL: r.URL, Default: r.Default, LoggedIn: r.LoggedIn}
	}
	return dtos
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
