package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".portugolrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_path: out.py\ncolor: always\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "out.py", cfg.OutputPath)
	require.Equal(t, "always", cfg.Color)
	require.Equal(t, Default().CacheDir, cfg.CacheDir)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".portugolrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nao_existe: 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidColorEnum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".portugolrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("color: purple\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDiscoverWalksUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".portugolrc.yaml"), []byte("color: never\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Discover(nested)
	require.NoError(t, err)
	require.Equal(t, "never", cfg.Color)
}
