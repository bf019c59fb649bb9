package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuildVars(t *testing.T, version, commit, built string) {
	t.Helper()
	oldVersion, oldCommit, oldBuilt := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = version, commit, built
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = oldVersion, oldCommit, oldBuilt
	})
}

func TestGetUsesLinkerValues(t *testing.T) {
	withBuildVars(t, "v1.2.0", "abcdef0123456789", "2026-01-02T03:04:05Z")

	info := Get()

	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, "abcdef0123456789", info.GitCommit)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), info.BuildTime)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestShort(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{"release with commit", Info{Version: "v1.2.0", GitCommit: "abcdef0123"}, "v1.2.0 (abcdef0)"},
		{"dev with commit", Info{Version: "dev", GitCommit: "abcdef0123"}, "dev-abcdef0"},
		{"dev version already carries commit", Info{Version: "dev-abcdef0", GitCommit: "abcdef0123"}, "dev-abcdef0"},
		{"unknown commit", Info{Version: "v1.2.0", GitCommit: "unknown"}, "v1.2.0"},
		{"short commit", Info{Version: "v1.2.0", GitCommit: "abc"}, "v1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.info.Short())
		})
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "v1.2.0",
		GitCommit: "unknown",
		GoVersion: "go1.24.10",
		Platform:  "linux/amd64",
	}

	assert.Equal(t, "Version: v1.2.0\nGo: go1.24.10\nPlatform: linux/amd64", info.String())
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
	assert.Equal(t, 2026, parseBuildTime("2026-03-04 05:06:07").Year())
}
