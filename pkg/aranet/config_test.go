package aranet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aranet_cloud.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
endpoint: https://aranet.cloud/api/
username: user@example.com
password: hunter2
space_name: Main
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://aranet.cloud/api", cfg.Endpoint, "trailing slash is trimmed")
	assert.Equal(t, "Main", cfg.Space)
}

func TestLoadConfigDefaultEndpoint(t *testing.T) {
	path := writeConfig(t, `
username: user@example.com
password: hunter2
space_name: Main
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	path := writeConfig(t, `
username: user@example.com
space_name: Main
`)
	_, err := LoadConfig(path)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, `
username: user@example.com
password: hunter2
space_name: Main
shoe_size: 42
`)
	_, err := LoadConfig(path)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
