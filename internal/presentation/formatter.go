package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	json   bool
}

// NewFormatter creates a new formatter. With asJSON every listing is
// written as indented JSON instead of a table.
func NewFormatter(writer io.Writer, asJSON bool) *Formatter {
	return &Formatter{
		writer: writer,
		json:   asJSON,
	}
}

// JSON reports whether the formatter writes JSON.
func (f *Formatter) JSON() bool { return f.json }

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// FormatContainers formats a container listing
func (f *Formatter) FormatContainers(cs []ContainerDTO) error {
	rows := make([][]string, len(cs))
	for i, c := range cs {
		rows[i] = []string{c.ID, c.Image, c.Platform, c.Status, joinOrDash(c.Networks), orDash(c.Address)}
	}
	return f.format(cs, []string{"ID", "IMAGE", "PLATFORM", "STATUS", "NETWORKS", "ADDRESS"}, rows)
}

// FormatImages formats an image listing
func (f *Formatter) FormatImages(images []ImageDTO) error {
	rows := make([][]string, len(images))
	for i, img := range images {
		rows[i] = []string{img.Repository, orDash(img.Tag), orDash(img.Digest), humanSize(img.Size)}
	}
	return f.format(images, []string{"REPOSITORY", "TAG", "DIGEST", "SIZE"}, rows)
}

// FormatNetworks formats a network listing
func (f *Formatter) FormatNetworks(networks []NetworkDTO) error {
	rows := make([][]string, len(networks))
	for i, n := range networks {
		rows[i] = []string{n.ID, n.State, orDash(n.Mode), orDash(n.Subnet), orDash(n.Gateway)}
	}
	return f.format(networks, []string{"ID", "STATE", "MODE", "SUBNET", "GATEWAY"}, rows)
}

// FormatRegistries formats recorded registries
func (f *Formatter) FormatRegistries(regs []RegistryDTO) error {
	rows := make([][]string, len(regs))
	for i, r := range regs {
		rows[i] = []string{r.Name, r.URL, mark(r.Default), mark(r.LoggedIn)}
	}
	return f.format(regs, []string{"NAME", "URL", "DEFAULT", "LOGGED IN"}, rows)
}

// FormatDomains formats local DNS domains
func (f *Formatter) FormatDomains(domains []string) error {
	rows := make([][]string, len(domains))
	for i, d := range domains {
		rows[i] = []string{d}
	}
	return f.format(domains, []string{"DOMAIN"}, rows)
}

// FormatResult formats an arbitrary value as JSON
func (f *Formatter) FormatResult(result any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func (f *Formatter) format(v any, headers []string, rows [][]string) error {
	if f.json {
		return f.FormatResult(v)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
