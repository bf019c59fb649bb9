package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	penerrors "github.com/conneroisu/pen/internal/errors"
	"github.com/conneroisu/pen/internal/registry"
	"github.com/conneroisu/pen/internal/testutils"
)

// recordingRenderer captures every render request.
type recordingRenderer struct {
	requests []RenderRequest
}

func (r *recordingRenderer) Render(req RenderRequest) {
	r.requests = append(r.requests, req)
}

// panicFs panics on every stat.
type panicFs struct {
	afero.Fs
}

func (panicFs) Stat(name string) (os.FileInfo, error) {
	panic("stat exploded")
}

func defaultOptions() Options {
	return Options{
		ManifestPath: testutils.ManifestPath,
		RegistryPath: testutils.RegistryPath,
	}
}

func openCalls(fs *testutils.RecordingFs) []string {
	var names []string
	for _, call := range fs.Calls() {
		if call.Op == "open" {
			names = append(names, call.Name)
		}
	}
	return names
}

func TestRunReachesReady(t *testing.T) {
	fs := testutils.NewBuildFs(t, testutils.SampleManifest, testutils.SampleComponents)
	renderer := &recordingRenderer{}

	state, err := New(renderer, WithFS(fs)).Run(context.Background(), Options{
		URL:          "/about/",
		ManifestPath: testutils.ManifestPath,
		RegistryPath: testutils.RegistryPath,
	})
	require.NoError(t, err)

	assert.True(t, state.Ready())
	assert.False(t, state.Failed())
	assert.NotEmpty(t, state.RunID)
	assert.Nil(t, state.Err)
	assert.Equal(t, []Stage{
		StageIdle,
		StageCheckingArtifacts,
		StageManifestLoaded,
		StageRegistryLoaded,
		StageTreeBuilt,
		StageReady,
	}, state.History)

	assert.Equal(t, 3, state.Manifest.Len())
	assert.Equal(t, 5, state.Registry.Count())
	assert.Equal(t, []string{"root", "blog", "about"}, state.Tree.Names())

	require.Len(t, renderer.requests, 1)
	req := renderer.requests[0]
	assert.Equal(t, "/about/", req.URL)
	assert.Same(t, state.Manifest, req.Manifest)
	assert.Same(t, state.Registry, req.Registry)
}

func TestRunPassesURLThroughUnmodified(t *testing.T) {
	for _, url := range []string{"/missing", "not-a-path", "/blog/?q=1"} {
		t.Run(url, func(t *testing.T) {
			fs := testutils.NewBuildFs(t, testutils.SampleManifest, testutils.SampleComponents)
			renderer := &recordingRenderer{}

			opts := defaultOptions()
			opts.URL = url
			_, err := New(renderer, WithFS(fs)).Run(context.Background(), opts)
			require.NoError(t, err)

			require.Len(t, renderer.requests, 1)
			assert.Equal(t, url, renderer.requests[0].URL)
		})
	}
}

func TestRunDefaultsURLAndPaths(t *testing.T) {
	fs := testutils.NewBuildFs(t, testutils.SampleManifest, testutils.SampleComponents)
	renderer := &recordingRenderer{}

	state, err := New(renderer, WithFS(fs)).Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultURL, state.URL)
	require.Len(t, renderer.requests, 1)
	assert.Equal(t, "/", renderer.requests[0].URL)
}

func TestRunMissingManifestNeverTouchesRegistry(t *testing.T) {
	fs := testutils.NewRecordingFs(testutils.NewBuildFs(t, "", testutils.SampleComponents))
	renderer := &recordingRenderer{}

	state, err := New(renderer, WithFS(fs)).Run(context.Background(), defaultOptions())
	require.Error(t, err)

	assert.True(t, penerrors.IsMissingArtifact(err))
	var penErr *penerrors.PenError
	require.ErrorAs(t, err, &penErr)
	assert.Equal(t, penerrors.ArtifactManifest, penErr.Artifact)

	assert.True(t, state.Failed())
	assert.Equal(t, StageCheckingArtifacts, state.FailedAt)
	assert.Same(t, err, state.Err)
	assert.False(t, fs.Touched(testutils.RegistryPath))
	assert.Empty(t, renderer.requests)
}

func TestRunMissingRegistryReadsNothing(t *testing.T) {
	fs := testutils.NewRecordingFs(testutils.NewBuildFs(t, testutils.SampleManifest, ""))
	renderer := &recordingRenderer{}

	state, err := New(renderer, WithFS(fs)).Run(context.Background(), defaultOptions())
	require.Error(t, err)

	var penErr *penerrors.PenError
	require.ErrorAs(t, err, &penErr)
	assert.Equal(t, penerrors.ErrorTypeMissingArtifact, penErr.Type)
	assert.Equal(t, penerrors.ArtifactRegistry, penErr.Artifact)

	assert.Equal(t, StageCheckingArtifacts, state.FailedAt)
	assert.Nil(t, state.Manifest)
	assert.Empty(t, openCalls(fs), "no artifact may be read before both exist")
	assert.Empty(t, renderer.requests)
}

func TestRunMalformedManifestStopsBeforeRegistry(t *testing.T) {
	fs := testutils.NewRecordingFs(testutils.NewBuildFs(t, `{"/": `, testutils.SampleComponents))
	renderer := &recordingRenderer{}

	state, err := New(renderer, WithFS(fs)).Run(context.Background(), defaultOptions())
	require.Error(t, err)

	assert.True(t, penerrors.IsParseError(err))
	assert.Equal(t, StageCheckingArtifacts, state.FailedAt)
	assert.NotContains(t, state.History, StageManifestLoaded)
	assert.NotContains(t, state.History, StageRegistryLoaded)
	assert.Equal(t, []string{filepath.Clean(testutils.ManifestPath)}, openCalls(fs))
	assert.Empty(t, renderer.requests)
}

func TestRunRegistryLoadError(t *testing.T) {
	fs := testutils.NewBuildFs(t, testutils.SampleManifest, `throw new Error("bundle broken");`)
	renderer := &recordingRenderer{}

	state, err := New(renderer, WithFS(fs)).Run(context.Background(), defaultOptions())
	require.Error(t, err)

	assert.True(t, penerrors.IsRegistryLoadError(err))
	assert.Contains(t, err.Error(), "bundle broken")
	assert.Equal(t, StageManifestLoaded, state.FailedAt)
	assert.NotNil(t, state.Manifest)
	assert.Nil(t, state.Registry)
	assert.Empty(t, renderer.requests)
}

func TestRunForwardsRegistryOptions(t *testing.T) {
	fs := testutils.NewBuildFs(t, testutils.SampleManifest, `exports.views = {"app/screen.tsx": "Home"};`)
	renderer := &recordingRenderer{}

	state, err := New(renderer,
		WithFS(fs),
		WithRegistryOptions(registry.WithExportName("views")),
	).Run(context.Background(), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, state.Registry.Count())
	assert.Len(t, renderer.requests, 1)
}

func TestRunEmptyManifest(t *testing.T) {
	fs := testutils.NewBuildFs(t, `{}`, `exports.components = {};`)

	state, err := New(&recordingRenderer{}, WithFS(fs)).Run(context.Background(), defaultOptions())
	require.NoError(t, err)

	assert.True(t, state.Ready())
	assert.Equal(t, 0, state.Tree.Len())
}

func TestRunNotifiesObserversInOrder(t *testing.T) {
	fs := testutils.NewBuildFs(t, testutils.SampleManifest, testutils.SampleComponents)
	var seen []string

	_, err := New(&recordingRenderer{},
		WithFS(fs),
		WithObserver(ObserverFunc(func(stage Stage, state *State) {
			assert.Equal(t, stage, state.Stage)
			seen = append(seen, "a:"+stage.String())
		})),
		WithObserver(ObserverFunc(func(stage Stage, _ *State) {
			seen = append(seen, "b:"+stage.String())
		})),
	).Run(context.Background(), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a:CheckingArtifacts", "b:CheckingArtifacts",
		"a:ManifestLoaded", "b:ManifestLoaded",
		"a:RegistryLoaded", "b:RegistryLoaded",
		"a:TreeBuilt", "b:TreeBuilt",
		"a:Ready", "b:Ready",
	}, seen)
}

func TestRunNotifiesObserverOfFailure(t *testing.T) {
	fs := testutils.NewBuildFs(t, "", "")
	var stages []Stage

	state, err := New(&recordingRenderer{},
		WithFS(fs),
		WithObserver(ObserverFunc(func(stage Stage, _ *State) {
			stages = append(stages, stage)
		})),
	).Run(context.Background(), defaultOptions())
	require.Error(t, err)

	assert.Equal(t, []Stage{StageCheckingArtifacts, StageFailed}, stages)
	assert.Equal(t, StageFailed, state.Stage)
}

func TestRunRendererCalledAfterReady(t *testing.T) {
	fs := testutils.NewBuildFs(t, testutils.SampleManifest, testutils.SampleComponents)
	var stageAtRender Stage
	var state *State

	o := New(nil,
		WithFS(fs),
		WithObserver(ObserverFunc(func(_ Stage, s *State) { state = s })),
	)
	o.renderer = RendererFunc(func(RenderRequest) { stageAtRender = state.Stage })

	_, err := o.Run(context.Background(), defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StageReady, stageAtRender)
}

func TestRunTwiceReturnsErrAlreadyRun(t *testing.T) {
	fs := testutils.NewBuildFs(t, testutils.SampleManifest, testutils.SampleComponents)
	renderer := &recordingRenderer{}
	o := New(renderer, WithFS(fs))

	_, err := o.Run(context.Background(), defaultOptions())
	require.NoError(t, err)

	state, err := o.Run(context.Background(), defaultOptions())
	assert.ErrorIs(t, err, ErrAlreadyRun)
	assert.Nil(t, state)
	assert.Len(t, renderer.requests, 1)
}

func TestRunRecoversPanicAsRawError(t *testing.T) {
	renderer := &recordingRenderer{}

	state, err := New(renderer, WithFS(panicFs{afero.NewMemMapFs()})).Run(context.Background(), defaultOptions())
	require.Error(t, err)

	assert.Equal(t, "panic during CheckingArtifacts: stat exploded", err.Error())
	var penErr *penerrors.PenError
	assert.False(t, errors.As(err, &penErr))
	assert.Equal(t, err.Error(), penerrors.Diagnostic(err))
	assert.True(t, state.Failed())
	assert.Empty(t, renderer.requests)
}

func TestRunCancelledDuringRegistryLoad(t *testing.T) {
	fs := testutils.NewBuildFs(t, testutils.SampleManifest, `while (true) {}`)
	ctx, cancel := context.WithCancel(context.Background())

	o := New(&recordingRenderer{},
		WithFS(fs),
		WithObserver(ObserverFunc(func(stage Stage, _ *State) {
			if stage == StageManifestLoaded {
				cancel()
			}
		})),
	)

	state, err := o.Run(ctx, defaultOptions())
	require.Error(t, err)
	assert.True(t, penerrors.IsRegistryLoadError(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StageManifestLoaded, state.FailedAt)
}

func TestStageTransitions(t *testing.T) {
	order := []Stage{StageIdle, StageCheckingArtifacts, StageManifestLoaded, StageRegistryLoaded, StageTreeBuilt, StageReady}
	for i := 0; i < len(order)-1; i++ {
		assert.True(t, CanTransition(order[i], order[i+1]), "%s -> %s", order[i], order[i+1])
		assert.True(t, CanTransition(order[i], StageFailed), "%s -> Failed", order[i])
		assert.False(t, CanTransition(order[i+1], order[i]), "%s -> %s", order[i+1], order[i])
	}

	assert.False(t, CanTransition(StageIdle, StageManifestLoaded))
	assert.False(t, CanTransition(StageReady, StageFailed))
	assert.False(t, CanTransition(StageFailed, StageIdle))
	assert.True(t, StageReady.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageTreeBuilt.Terminal())
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "Idle", StageIdle.String())
	assert.Equal(t, "Failed", StageFailed.String())
	assert.Equal(t, "Stage(42)", Stage(42).String())
}
