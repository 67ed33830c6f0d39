package aifn

import (
	"fmt"
	"sort"
	"sync"
)

// keeps functions by name so they can be exposed as routes
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Invoker
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Invoker)}
}

func (r *Registry) Register(fns ...Invoker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, fn := range fns {
		name := fn.Definition().Name
		if _, ok := r.funcs[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		r.funcs[name] = fn
	}

	return nil
}

func (r *Registry) Get(name string) (Invoker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}

	return fn, nil
}

// returns registered functions sorted by name
func (r *Registry) List() []Invoker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Invoker, 0, len(r.funcs))
	for _, fn := range r.funcs {
		out = append(out, fn)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Definition().Name < out[j].Definition().Name
	})

	return out
}

// the listing entry for one function
type Info struct {
	Name        string         `json:"name"`
	Signature   string         `json:"signature"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Returns     any            `json:"returns"`
}

func Describe(fn Invoker) Info {
	def := fn.Definition()

	return Info{
		Name:        def.Name,
		Signature:   fn.Signature(),
		Description: def.Description,
		Parameters:  paramsSchema(def.Params),
		Returns:     fn.ReturnSchema(),
	}
}
