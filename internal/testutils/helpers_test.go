package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTempProject(t *testing.T) {
	projectDir := CreateTempProject(t, SampleManifest, "")

	data, err := os.ReadFile(filepath.Join(projectDir, ManifestPath))
	require.NoError(t, err)
	assert.Equal(t, SampleManifest, string(data))

	_, err = os.Stat(filepath.Join(projectDir, RegistryPath))
	assert.True(t, os.IsNotExist(err), "empty content must skip the file")

	info, err := os.Stat(filepath.Join(projectDir, ".pen", "build"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewBuildFs(t *testing.T) {
	fs := NewBuildFs(t, "", SampleComponents)

	exists, err := afero.Exists(fs, ManifestPath)
	require.NoError(t, err)
	assert.False(t, exists)

	data, err := afero.ReadFile(fs, RegistryPath)
	require.NoError(t, err)
	assert.Equal(t, SampleComponents, string(data))
}

func TestRecordingFs(t *testing.T) {
	fs := NewRecordingFs(NewBuildFs(t, SampleManifest, ""))

	_, _ = fs.Stat(ManifestPath)
	_, _ = afero.ReadFile(fs, ManifestPath)
	_, _ = fs.Stat(RegistryPath)

	assert.Equal(t, []FsCall{
		{Op: "stat", Name: ".pen/build/manifest.json"},
		{Op: "open", Name: ".pen/build/manifest.json"},
		{Op: "stat", Name: ".pen/build/components.js"},
	}, fs.Calls())
	assert.True(t, fs.Touched(ManifestPath))
	assert.True(t, fs.Touched(RegistryPath))
	assert.False(t, fs.Touched("./elsewhere.json"))
}
