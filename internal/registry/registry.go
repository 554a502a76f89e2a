package registry

import (
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry is a read-only table of known interfaces with a selector index.
// A selector may map to functions of several unrelated interfaces.
type Registry struct {
	interfaces *orderedmap.OrderedMap[string, *Interface]
	bySelector map[Selector][]FunctionSchema
}

// New builds a registry. Interface order is kept as given.
func New(interfaces ...*Interface) (*Registry, error) {
	r := &Registry{
		interfaces: orderedmap.New[string, *Interface](),
		bySelector: make(map[Selector][]FunctionSchema),
	}
	for _, iface := range interfaces {
		if iface == nil || iface.Name == "" {
			return nil, fmt.Errorf("interface name is required")
		}
		if _, exists := r.interfaces.Get(iface.Name); exists {
			return nil, fmt.Errorf("duplicate interface: %s", iface.Name)
		}
		r.interfaces.Set(iface.Name, iface)
		for _, fn := range iface.Functions {
			r.bySelector[fn.Selector] = append(r.bySelector[fn.Selector], fn)
		}
	}
	return r, nil
}

// SchemasFor returns every registered function with the given selector, in interface order.
func (r *Registry) SchemasFor(sel Selector) []FunctionSchema {
	candidates := r.bySelector[sel]
	out := make([]FunctionSchema, len(candidates))
	copy(out, candidates)
	return out
}

// AllInterfaces returns the interfaces in registration order.
func (r *Registry) AllInterfaces() []*Interface {
	out := make([]*Interface, 0, r.interfaces.Len())
	for pair := r.interfaces.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Interface returns a registered interface by name.
func (r *Registry) Interface(name string) (*Interface, bool) {
	return r.interfaces.Get(name)
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
	defaultRegistryErr  error
)

// Default returns the built-in registry: ERC20, WETH, PoolFactory and Pool.
func Default() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = build([]builtin{
			{ERC20, erc20ABIJSON},
			{WETH, wethABIJSON},
			{PoolFactory, poolFactoryABIJSON},
			{Pool, poolABIJSON},
		})
	})
	return defaultRegistry, defaultRegistryErr
}

type builtin struct {
	name string
	abi  string
}

func build(entries []builtin) (*Registry, error) {
	interfaces := make([]*Interface, 0, len(entries))
	for _, entry := range entries {
		iface, err := ParseInterface(entry.name, []byte(entry.abi))
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, iface)
	}
	return New(interfaces...)
}
