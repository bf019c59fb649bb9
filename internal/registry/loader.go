package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/spf13/afero"

	penerrors "github.com/conneroisu/pen/internal/errors"
	"github.com/conneroisu/pen/internal/logging"
)

const (
	// DefaultPath is where `pen build` writes the component registry.
	DefaultPath = "./.pen/build/components.js"
	// DefaultExportName is the export holding the component mapping.
	DefaultExportName = "components"
)

type loadConfig struct {
	exportName string
	logger     logging.Logger
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithExportName changes the export the component mapping is read from.
func WithExportName(name string) LoadOption {
	return func(cfg *loadConfig) {
		if name != "" {
			cfg.exportName = name
		}
	}
}

// WithLogger receives console output of the registry script.
func WithLogger(logger logging.Logger) LoadOption {
	return func(cfg *loadConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

func applyLoadOptions(opts []LoadOption) loadConfig {
	cfg := loadConfig{
		exportName: DefaultExportName,
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Load executes the generated registry script at path and collects the
// components from its named export.
//
// The script runs in a fresh JavaScript runtime with CommonJS-style
// `module` and `exports` bindings. The export is looked up on
// module.exports first and then as a global binding, so both
// `exports.components = {...}` and a top-level `const components = {...}`
// work. Cancelling ctx interrupts a running script.
func Load(ctx context.Context, fs afero.Fs, path string, opts ...LoadOption) (*ComponentRegistry, error) {
	cfg := applyLoadOptions(opts)
	if ctx == nil {
		ctx = context.Background()
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("checking component map %s: %w", path, err)
	}
	if !exists {
		return nil, penerrors.NewMissingArtifactError(penerrors.ArtifactRegistry, path)
	}

	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading component map %s: %w", path, err)
	}

	program, err := goja.Compile(path, string(src), false)
	if err != nil {
		return nil, penerrors.NewRegistryLoadError(path, err)
	}

	vm := goja.New()
	module := installModule(vm)
	installConsole(ctx, vm, cfg.logger.WithComponent("registry"))

	if err := runProgram(ctx, vm, program); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, penerrors.NewRegistryLoadError(path, fmt.Errorf("loading interrupted: %w", ctxErr))
		}
		return nil, penerrors.NewRegistryLoadError(path, err)
	}

	export, err := lookupExport(vm, module, cfg.exportName)
	if err != nil {
		return nil, penerrors.NewRegistryLoadError(path, err)
	}

	registry, err := extractComponents(vm, export)
	if err != nil {
		return nil, penerrors.NewRegistryLoadError(path, err)
	}
	registry.path = path

	return registry, nil
}

// extractComponents reads every own key of export. Getters and proxy traps
// run inside the VM and may throw.
func extractComponents(vm *goja.Runtime, export *goja.Object) (registry *ComponentRegistry, err error) {
	defer func() {
		if r := recover(); r != nil {
			registry = nil
			err = fmt.Errorf("reading components: %v", r)
		}
	}()

	registry = NewComponentRegistry()
	for _, id := range export.Keys() {
		registry.register(&Component{
			ID:    id,
			value: export.Get(id),
			vm:    vm,
		})
	}

	return registry, nil
}

func installModule(vm *goja.Runtime) *goja.Object {
	exports := vm.NewObject()
	module := vm.NewObject()
	_ = module.Set("exports", exports)
	_ = vm.Set("module", module)
	_ = vm.Set("exports", exports)
	_ = vm.Set("require", func(call goja.FunctionCall) goja.Value {
		panic(vm.NewTypeError("require(%s) is not available in the component map", call.Argument(0).String()))
	})
	return module
}

func installConsole(ctx context.Context, vm *goja.Runtime, logger logging.Logger) {
	console := vm.NewObject()
	for _, level := range []string{"log", "info", "debug", "warn", "error"} {
		_ = console.Set(level, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, arg.String())
			}
			logger.Debug(ctx, "component map console", "level", level, "message", strings.Join(parts, " "))
			return goja.Undefined()
		})
	}
	_ = vm.Set("console", console)
}

// runProgram runs program until it finishes or ctx is done.
func runProgram(ctx context.Context, vm *goja.Runtime, program *goja.Program) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	_, err := vm.RunProgram(program)
	close(done)
	wg.Wait()
	vm.ClearInterrupt()

	return err
}

func lookupExport(vm *goja.Runtime, module *goja.Object, name string) (obj *goja.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading export %q: %v", name, r)
		}
	}()

	var value goja.Value
	if exports, ok := module.Get("exports").(*goja.Object); ok {
		value = exports.Get(name)
	}
	if isMissing(value) {
		value = vm.Get(name)
	}
	if isMissing(value) {
		return nil, fmt.Errorf("export %q is missing or undefined", name)
	}

	obj, ok := value.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("export %q must be an object mapping component ids, got %s", name, describeValue(value))
	}
	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return nil, fmt.Errorf("export %q must be an object mapping component ids, got function", name)
	}

	return obj, nil
}

func isMissing(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}
