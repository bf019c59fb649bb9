package registry

import (
	"fmt"

	"github.com/dop251/goja"
)

// ComponentRegistry holds the components exported by the generated registry
// artifact. It is filled once by Load and is read-only afterwards.
type ComponentRegistry struct {
	components map[string]*Component
	order      []string
	path       string
}

// ComponentKind describes what a registry entry holds.
type ComponentKind int

const (
	KindFunction ComponentKind = iota
	KindStatic
	KindUnsupported
)

// String returns the string representation of the kind
func (k ComponentKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindStatic:
		return "static"
	default:
		return "unsupported"
	}
}

// Component is a loadable component implementation exported by the registry.
type Component struct {
	ID    string
	value goja.Value
	vm    *goja.Runtime
}

// NewComponentRegistry creates a new component registry
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		components: make(map[string]*Component),
	}
}

func (r *ComponentRegistry) register(component *Component) {
	if _, exists := r.components[component.ID]; !exists {
		r.order = append(r.order, component.ID)
	}
	r.components[component.ID] = component
}

// Get retrieves a component by identifier
func (r *ComponentRegistry) Get(id string) (*Component, bool) {
	component, exists := r.components[id]
	return component, exists
}

// GetAll returns all components in export order
func (r *ComponentRegistry) GetAll() []*Component {
	result := make([]*Component, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.components[id])
	}
	return result
}

// IDs returns the component identifiers in export order
func (r *ComponentRegistry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered components
func (r *ComponentRegistry) Count() int {
	return len(r.components)
}

// Path returns the artifact the registry was loaded from
func (r *ComponentRegistry) Path() string {
	return r.path
}

// Kind reports how the component will be rendered.
func (c *Component) Kind() ComponentKind {
	if _, ok := goja.AssertFunction(c.value); ok {
		return KindFunction
	}
	if _, ok := c.value.Export().(string); ok {
		return KindStatic
	}
	return KindUnsupported
}

// Render produces the component output. Functions are called with a props
// object that also carries children; string entries render as themselves.
func (c *Component) Render(props map[string]interface{}, children string) (string, error) {
	if fn, ok := goja.AssertFunction(c.value); ok {
		arg := c.vm.NewObject()
		for key, value := range props {
			if err := arg.Set(key, value); err != nil {
				return "", fmt.Errorf("component %s: setting prop %s: %w", c.ID, key, err)
			}
		}
		if err := arg.Set("children", children); err != nil {
			return "", fmt.Errorf("component %s: setting children: %w", c.ID, err)
		}

		result, err := fn(goja.Undefined(), arg)
		if err != nil {
			return "", fmt.Errorf("rendering component %s: %w", c.ID, err)
		}
		if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
			return "", nil
		}
		return result.String(), nil
	}

	if s, ok := c.value.Export().(string); ok {
		return s, nil
	}

	return "", fmt.Errorf("component %s is not renderable (got %s)", c.ID, describeValue(c.value))
}

func describeValue(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if t := v.ExportType(); t != nil {
		return t.String()
	}
	return v.String()
}
