// Package bootstrap runs the startup pipeline: it checks for the build
// artifacts, loads the manifest and the component registry, derives the
// route tree and hands the result to a renderer.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	penerrors "github.com/conneroisu/pen/internal/errors"
	"github.com/conneroisu/pen/internal/logging"
	"github.com/conneroisu/pen/internal/manifest"
	"github.com/conneroisu/pen/internal/registry"
	"github.com/conneroisu/pen/internal/routetree"
)

// DefaultURL is requested when the caller does not name one.
const DefaultURL = "/"

// ErrAlreadyRun is returned when Run is called on an orchestrator that has
// already run.
var ErrAlreadyRun = errors.New("bootstrap: orchestrator has already run")

// RenderRequest is the ready state handed to the renderer.
type RenderRequest struct {
	URL      string
	Manifest *manifest.Manifest
	Registry *registry.ComponentRegistry
}

// Renderer consumes the ready state. Render is called at most once per run
// and its outcome is not inspected.
type Renderer interface {
	Render(req RenderRequest)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(req RenderRequest)

// Render calls f(req).
func (f RendererFunc) Render(req RenderRequest) { f(req) }

// Observer is notified when the pipeline enters a stage.
type Observer interface {
	StageEntered(stage Stage, state *State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(stage Stage, state *State)

// StageEntered calls f(stage, state).
func (f ObserverFunc) StageEntered(stage Stage, state *State) { f(stage, state) }

// Options are the inputs of a single run.
type Options struct {
	// URL is passed to the renderer unmodified. Empty means DefaultURL.
	URL string
	// ManifestPath defaults to manifest.DefaultPath.
	ManifestPath string
	// RegistryPath defaults to registry.DefaultPath.
	RegistryPath string
}

func (o Options) withDefaults() Options {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.ManifestPath == "" {
		o.ManifestPath = manifest.DefaultPath
	}
	if o.RegistryPath == "" {
		o.RegistryPath = registry.DefaultPath
	}
	return o
}

// State is the record of one run.
type State struct {
	RunID   string
	Stage   Stage
	History []Stage

	URL      string
	Manifest *manifest.Manifest
	Registry *registry.ComponentRegistry
	Tree     *routetree.Tree

	// Err is the cause of a failed run.
	Err error
	// FailedAt is the last stage reached before the run failed.
	FailedAt Stage
}

// Ready reports whether the run reached StageReady.
func (s *State) Ready() bool { return s.Stage == StageReady }

// Failed reports whether the run ended in StageFailed.
func (s *State) Failed() bool { return s.Stage == StageFailed }

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFS sets the filesystem the artifacts are read from.
func WithFS(fs afero.Fs) Option {
	return func(o *Orchestrator) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver adds an observer. Observers are notified in the order added.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithRegistryOptions forwards options to registry.Load.
func WithRegistryOptions(opts ...registry.LoadOption) Option {
	return func(o *Orchestrator) {
		o.registryOpts = append(o.registryOpts, opts...)
	}
}

// Orchestrator sequences the bootstrap stages.
//
// Invariants:
//   - stages run one at a time in table order and the first failure ends the run
//   - both artifacts are checked for existence, manifest first, before either is read
//   - the renderer is called exactly once, and only after StageReady
//   - an orchestrator runs once
type Orchestrator struct {
	renderer     Renderer
	fs           afero.Fs
	logger       logging.Logger
	observers    []Observer
	registryOpts []registry.LoadOption

	mu     sync.Mutex
	ran    bool
	runLog logging.Logger
}

// New creates an orchestrator handing its result to renderer.
func New(renderer Renderer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		renderer: renderer,
		fs:       afero.NewOsFs(),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.WithComponent("bootstrap")
	return o
}

// Run executes the pipeline. On success the state is Ready and the renderer
// has been called. On failure the state is Failed, the error is returned
// unchanged and the renderer is not called.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*State, error) {
	o.mu.Lock()
	if o.ran {
		o.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	o.ran = true
	o.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()

	state := &State{
		RunID:   uuid.NewString(),
		Stage:   StageIdle,
		History: []Stage{StageIdle},
		URL:     opts.URL,
	}
	logger := o.logger.With("run_id", state.RunID)
	o.runLog = logger

	logger.Debug(ctx, "Starting bootstrap",
		"url", opts.URL,
		"manifest", opts.ManifestPath,
		"registry", opts.RegistryPath)

	if err := o.execute(ctx, state, opts, logger); err != nil {
		o.fail(state, err)
		// The caller prints the diagnostic.
		logger.Debug(ctx, "Bootstrap failed", "stage", state.FailedAt.String(), "error", err.Error())
		return state, err
	}

	logger.Info(ctx, "Bootstrap ready",
		"routes", state.Manifest.Len(),
		"components", state.Registry.Count())

	if o.renderer != nil {
		o.renderer.Render(RenderRequest{
			URL:      state.URL,
			Manifest: state.Manifest,
			Registry: state.Registry,
		})
	}

	return state, nil
}

func (o *Orchestrator) execute(ctx context.Context, state *State, opts Options, logger logging.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during %s: %v", state.Stage, r)
		}
	}()

	o.enter(state, StageCheckingArtifacts)
	perf := logging.StartOperation(logger, "check_artifacts")
	if err := o.checkArtifact(penerrors.ArtifactManifest, opts.ManifestPath); err != nil {
		endStage(ctx, perf, err)
		return err
	}
	if err := o.checkArtifact(penerrors.ArtifactRegistry, opts.RegistryPath); err != nil {
		endStage(ctx, perf, err)
		return err
	}
	endStage(ctx, perf, nil)

	perf = logging.StartOperation(logger, "load_manifest")
	m, err := manifest.Load(o.fs, opts.ManifestPath)
	if err != nil {
		endStage(ctx, perf, err)
		return err
	}
	endStage(ctx, perf, nil)
	state.Manifest = m
	o.enter(state, StageManifestLoaded)

	perf = logging.StartOperation(logger, "load_registry")
	regOpts := append([]registry.LoadOption{registry.WithLogger(logger)}, o.registryOpts...)
	reg, err := registry.Load(ctx, o.fs, opts.RegistryPath, regOpts...)
	if err != nil {
		endStage(ctx, perf, err)
		return err
	}
	endStage(ctx, perf, nil)
	state.Registry = reg
	o.enter(state, StageRegistryLoaded)

	state.Tree = routetree.Build(m)
	o.enter(state, StageTreeBuilt)

	o.enter(state, StageReady)
	return nil
}

func endStage(ctx context.Context, perf *logging.PerfLogger, err error) {
	if err != nil {
		perf.Debug(ctx, "Operation failed", "error", err.Error())
		return
	}
	perf.End(ctx)
}

func (o *Orchestrator) checkArtifact(artifact, path string) error {
	exists, err := afero.Exists(o.fs, path)
	if err != nil {
		return fmt.Errorf("checking %s %s: %w", artifact, path, err)
	}
	if !exists {
		return penerrors.NewMissingArtifactError(artifact, path)
	}
	return nil
}

// enter moves state to next. An illegal move is a programming error.
func (o *Orchestrator) enter(state *State, next Stage) {
	if !CanTransition(state.Stage, next) {
		panic(fmt.Sprintf("bootstrap: illegal transition %s -> %s", state.Stage, next))
	}
	o.move(state, next)
}

// fail records err and moves state to StageFailed from whatever stage it
// reached.
func (o *Orchestrator) fail(state *State, err error) {
	state.Err = err
	state.FailedAt = state.Stage
	o.move(state, StageFailed)
}

func (o *Orchestrator) move(state *State, next Stage) {
	o.runLog.Debug(context.Background(), "Entering stage", "stage", next.String(), "from", state.Stage.String())
	state.Stage = next
	state.History = append(state.History, next)
	for _, observer := range o.observers {
		observer.StageEntered(next, state)
	}
}
