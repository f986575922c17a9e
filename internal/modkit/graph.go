package modkit

import (
	"slices"

	"modhost/internal/modkit/di"
)

// Graph is a snapshot of a composed module tree
type Graph struct {
	Root    string       `json:"root"`
	Order   []string     `json:"order"`
	Modules []ModuleInfo `json:"modules"`
}

// ModuleInfo describes one module in a Graph
type ModuleInfo struct {
	Name        string     `json:"name"`
	Prefix      string     `json:"prefix,omitempty"`
	Imports     []string   `json:"imports"`
	Controllers []string   `json:"controllers"`
	Providers   []di.Token `json:"providers"`
}

// Module returns the info for name
func (g Graph) Module(name string) (ModuleInfo, bool) {
	for _, m := range g.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleInfo{}, false
}

func (g Graph) clone() Graph {
	out := Graph{Root: g.Root, Order: slices.Clone(g.Order), Modules: make([]ModuleInfo, len(g.Modules))}
	for i, m := range g.Modules {
		out.Modules[i] = ModuleInfo{
			Name:        m.Name,
			Prefix:      m.Prefix,
			Imports:     slices.Clone(m.Imports),
			Controllers: slices.Clone(m.Controllers),
			Providers:   slices.Clone(m.Providers),
		}
	}
	return out
}

func graphOf(root string, nodes []node) Graph {
	g := Graph{Root: root}
	for _, n := range nodes {
		imports := make([]string, len(n.ds.Imports))
		for i, d := range n.ds.Imports {
			imports[i] = d.Name()
		}
		g.Order = append(g.Order, n.ds.Name)
		g.Modules = append(g.Modules, ModuleInfo{
			Name:        n.ds.Name,
			Prefix:      n.ds.Prefix,
			Imports:     imports,
			Controllers: n.ds.ControllerNames(),
			Providers:   n.ds.ProviderTokens(),
		})
	}
	return g
}
