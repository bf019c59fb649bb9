package testutils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Default artifact locations relative to a project root.
const (
	ManifestPath = "./.pen/build/manifest.json"
	RegistryPath = "./.pen/build/components.js"
)

// SampleManifest is the manifest `pen build` emits for the basic example app.
const SampleManifest = `{
  "/": {"url": "/", "segment": "", "screen": "app/screen.tsx", "layouts": ["app/layout.tsx"]},
  "/blog/": {"url": "/blog/", "segment": "blog", "screen": "app/blog/screen.tsx", "layouts": ["app/layout.tsx"]},
  "/about/": {"url": "/about/", "segment": "about", "screen": "app/about/screen.tsx", "layouts": ["app/layout.tsx", "app/about/layout.tsx"]}
}`

// SampleComponents is a registry script matching SampleManifest.
const SampleComponents = `
exports.components = {
  "app/layout.tsx": function (props) { return "[app " + props.children + "]"; },
  "app/about/layout.tsx": function (props) { return "<about " + props.children + ">"; },
  "app/screen.tsx": function () { return "Home"; },
  "app/blog/screen.tsx": function () { return "Blog"; },
  "app/about/screen.tsx": "About"
};
`

// CreateTempProject creates a temporary project containing the given build
// artifacts. Empty content skips the file.
func CreateTempProject(t *testing.T, manifest, components string) string {
	tempDir := t.TempDir()

	buildDir := filepath.Join(tempDir, ".pen", "build")
	require.NoError(t, os.MkdirAll(buildDir, 0755))

	if manifest != "" {
		require.NoError(t, os.WriteFile(filepath.Join(buildDir, "manifest.json"), []byte(manifest), 0644))
	}
	if components != "" {
		require.NoError(t, os.WriteFile(filepath.Join(buildDir, "components.js"), []byte(components), 0644))
	}

	return tempDir
}

// NewBuildFs returns an in-memory filesystem holding the given artifacts at
// their default locations. Empty content skips the file.
func NewBuildFs(t *testing.T, manifest, components string) afero.Fs {
	fs := afero.NewMemMapFs()
	if manifest != "" {
		require.NoError(t, afero.WriteFile(fs, ManifestPath, []byte(manifest), 0644))
	}
	if components != "" {
		require.NoError(t, afero.WriteFile(fs, RegistryPath, []byte(components), 0644))
	}
	return fs
}

// FsCall is one recorded filesystem access.
type FsCall struct {
	Op   string
	Name string
}

// RecordingFs wraps an afero.Fs and records every stat and open.
type RecordingFs struct {
	afero.Fs

	mu    sync.Mutex
	calls []FsCall
}

// NewRecordingFs wraps fs.
func NewRecordingFs(fs afero.Fs) *RecordingFs {
	return &RecordingFs{Fs: fs}
}

func (r *RecordingFs) record(op, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, FsCall{Op: op, Name: filepath.Clean(name)})
}

// Stat records and delegates.
func (r *RecordingFs) Stat(name string) (os.FileInfo, error) {
	r.record("stat", name)
	return r.Fs.Stat(name)
}

// Open records and delegates.
func (r *RecordingFs) Open(name string) (afero.File, error) {
	r.record("open", name)
	return r.Fs.Open(name)
}

// OpenFile records and delegates.
func (r *RecordingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	r.record("open", name)
	return r.Fs.OpenFile(name, flag, perm)
}

// Calls returns the recorded accesses in order.
func (r *RecordingFs) Calls() []FsCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FsCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// Touched reports whether name was stat'd or opened.
func (r *RecordingFs) Touched(name string) bool {
	clean := filepath.Clean(name)
	for _, call := range r.Calls() {
		if call.Name == clean {
			return true
		}
	}
	return false
}
