package container

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContainers = `[
  {
    "status": "running",
    "configuration": {
      "id": "web",
      "hostname": "web",
      "image": {
        "reference": "ghcr.io/acme/web:1.2.3",
        "descriptor": {"digest": "sha256:0123456789abcdef0123", "size": 1024, "mediaType": "application/vnd.oci.image.index.v1+json"}
      },
      "platform": {"os": "linux", "architecture": "arm64"},
      "networks": ["default"],
      "labels": {"tier": "frontend"}
    },
    "networks": [{"network": "default", "hostname": "web", "address": "192.168.64.3/24", "gateway": "192.168.64.1"}]
  },
  {
    "status": "stopped",
    "configuration": {"id": "db", "image": {"reference": "postgres:16"}},
    "networks": []
  }
]`

func TestDecodeContainers(t *testing.T) {
	got, err := decodeList[ContainerClient](Output{Stdout: sampleContainers})
	require.NoError(t, err)
	require.Len(t, got, 2)

	web := got[0]
	assert.Equal(t, StatusRunning, web.Status)
	assert.Equal(t, "ghcr.io/acme/web:1.2.3", web.Configuration.Image.Reference)
	assert.Equal(t, "frontend", web.Configuration.Labels["tier"])
	require.Len(t, web.Configuration.Networks, 1)
	assert.Equal(t, "default", web.Configuration.Networks[0].Network)
	require.Len(t, web.Networks, 1)
	assert.Equal(t, "192.168.64.3/24", web.Networks[0].Address)
}

func TestDecodeList_EmptyArrayIsNotNil(t *testing.T) {
	got, err := decodeList[Network](Output{Stdout: "null"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestDecodeList_InvalidJSON(t *testing.T) {
	_, err := decodeList[Network](Output{Stdout: "not json"})
	require.Error(t, err)
}

func TestNetworkAttachment_StringOrObject(t *testing.T) {
	var atts []NetworkAttachment
	require.NoError(t, json.Unmarshal([]byte(`["default", {"network": "backend", "address": "10.0.0.2/24"}]`), &atts))
	require.Equal(t, []NetworkAttachment{
		{Network: "default"},
		{Network: "backend", Address: "10.0.0.2/24"},
	}, atts)
}

func TestImageRecord_Reference(t *testing.T) {
	img := ImageRecord{
		Reference:  "ghcr.io/acme/web:1.2.3",
		Descriptor: Descriptor{Digest: "sha256:0123456789abcdef0123"},
	}
	assert.Equal(t, "ghcr.io/acme/web", img.Repository())
	assert.Equal(t, "1.2.3", img.Tag())
	assert.Equal(t, "0123456789ab", img.ShortDigest())
}

func TestImageRecord_DefaultTag(t *testing.T) {
	img := ImageRecord{Reference: "ghcr.io/acme/web"}
	assert.Equal(t, "latest", img.Tag())
}

func TestImageRecord_InvalidReference(t *testing.T) {
	img := ImageRecord{Reference: "Not A Reference"}
	_, err := img.ParsedReference()
	require.Error(t, err)
	assert.Equal(t, "Not A Reference", img.Repository())
	assert.Empty(t, img.Tag())
}

func TestDecodeNetworks(t *testing.T) {
	raw := `[{"id": "default", "state": "running", "config": {"id": "default", "mode": "nat"}, "status": {"address": "192.168.64.0/24", "gateway": "192.168.64.1"}}]`
	got, err := decodeList[Network](Output{Stdout: raw})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "nat", got[0].Config.Mode)
	assert.Equal(t, "192.168.64.1", got[0].Status.Gateway)
}

func TestParseDNSDomains(t *testing.T) {
	assert.Equal(t, []string{}, ParseDNSDomains(""))
	assert.Equal(t, []string{}, ParseDNSDomains(" \n\t"))
	assert.Equal(t, []string{"test", "local"}, ParseDNSDomains("test local\n"))
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{Output: Output{Message: MsgNoStdout}}
	assert.Equal(t, MsgNoStdout, err.Error())
}
