package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetConfigDirOverride(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	t.Setenv("AIGEO_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	req.NoError(err)
	req.Equal(dir, got)

	file, err := ConfigFile("history.json")
	req.NoError(err)
	req.Equal(filepath.Join(dir, "history.json"), file)
}

func TestGetConfigDirXDG(t *testing.T) {
	req := require.New(t)
	xdg := t.TempDir()
	t.Setenv("AIGEO_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	got, err := GetConfigDir()
	req.NoError(err)
	req.Equal(filepath.Join(xdg, "aigeo"), got)
}
