package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Root    string `json:"root"`
	Version string `json:"version"`
	Port    int    `json:"port"`
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json5")
	writeFile(t, path, `{
		// comments are fine in json5
		root: "data",
		version: "v1",
		port: 8420,
	}`)

	config, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Root: "data", Version: "v1", Port: 8420}, config)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "catalog.json5"), `{root: "data", port: 8420}`)
	writeFile(t, filepath.Join(dir, "catalog.local.json5"), `{root: "/tmp/scratch"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "catalog.json5"))
	require.NoError(t, err)
	require.Equal(t, "/tmp/scratch", config.Root)
	require.Equal(t, 8420, config.Port)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "catalog.local.json5"), `{root: "local-only"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "catalog.json5"))
	require.NoError(t, err)
	require.Equal(t, "local-only", config.Root)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "catalog.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
