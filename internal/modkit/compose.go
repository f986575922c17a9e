package modkit

import (
	"context"
	"time"

	"modhost/internal/modkit/di"
	"modhost/internal/modkit/module"
	perr "modhost/internal/platform/errors"
	"modhost/internal/platform/logger"
	pstrings "modhost/internal/platform/strings"
	"modhost/internal/platform/validate"
)

// node is one module in import order
type node struct {
	ds      module.Description
	imports map[string]bool
}

// Compose builds an App from root
// On failure every singleton constructed so far is shut down before the error returns
func Compose(ctx context.Context, root *module.Descriptor, opts ...Option) (*App, error) {
	var c composeCfg
	for _, o := range opts {
		o(&c)
	}
	if c.log == nil {
		c.log = logger.Named("modkit")
	}
	if root == nil {
		return nil, perr.WithOp(perr.InvalidArgf("modkit: nil root module"), "modkit.Compose")
	}

	start := time.Now()
	nodes, err := walk(root)
	if err != nil {
		return nil, perr.WithOp(err, "modkit.Compose")
	}
	graph := graphOf(root.Name(), nodes)

	cont := di.New(di.WithLogger(c.log))
	owner, err := register(cont, &c, graph, nodes)
	if err != nil {
		return nil, perr.WithOp(err, "modkit.Compose")
	}
	if err := checkVisibility(owner, &c, nodes); err != nil {
		return nil, perr.WithOp(err, "modkit.Compose")
	}
	if err := cont.CheckGraph(); err != nil {
		return nil, perr.WithOp(err, "modkit.Compose")
	}

	app, err := build(ctx, cont, &c, nodes)
	if err != nil {
		if cerr := cont.Close(ctx); cerr != nil {
			c.log.Error().Err(cerr).Msg("cleanup after failed compose")
		}
		return nil, perr.WithOp(err, "modkit.Compose")
	}
	app.root = root.Name()
	app.graph = graph
	app.log = c.log

	c.log.Info().
		Str("root", app.root).
		Strs("order", graph.Order).
		Int("providers", len(cont.Tokens())).
		Dur("elapsed", time.Since(start)).
		Msg("modules composed")
	return app, nil
}

// walk visits imports depth first and returns modules imports-first
func walk(root *module.Descriptor) ([]node, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := map[*module.Descriptor]int{}
	byName := map[string]*module.Descriptor{}
	prefixes := map[string]string{}
	var (
		order []node
		stack []string
	)

	var visit func(d *module.Descriptor) error
	visit = func(d *module.Descriptor) error {
		switch state[d] {
		case visiting:
			for i, name := range stack {
				if name == d.Name() {
					path := append(append([]string(nil), stack[i:]...), d.Name())
					return perr.Cyclef("modkit: import cycle %s", pstrings.Join(" -> ", path...))
				}
			}
		case done:
			return nil
		}

		ds := d.Describe()
		if !validate.IsIdent(ds.Name) {
			return perr.WithField(perr.InvalidArgf("modkit: invalid module name %q", ds.Name), "name")
		}
		if other, ok := byName[ds.Name]; ok && other != d {
			return perr.WithField(perr.DuplicateKeyf("modkit: module name %q is used by two descriptors", ds.Name), "name")
		}
		byName[ds.Name] = d
		if p := pstrings.NormPrefix(ds.Prefix); p != "" {
			if other, ok := prefixes[p]; ok {
				return perr.WithField(perr.DuplicateKeyf("modkit: modules %q and %q share prefix %q", other, ds.Name, p), "prefix")
			}
			prefixes[p] = ds.Name
		}

		state[d] = visiting
		stack = append(stack, ds.Name)

		imports := make(map[string]bool, len(ds.Imports))
		for i, imp := range ds.Imports {
			if imp == nil {
				return perr.WithField(perr.InvalidArgf("modkit: module %q import %d is nil", ds.Name, i), "imports")
			}
			if err := visit(imp); err != nil {
				return err
			}
			imports[imp.Name()] = true
		}

		stack = stack[:len(stack)-1]
		state[d] = done
		order = append(order, node{ds: ds, imports: imports})
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return order, nil
}

// register puts globals and module providers into cont and returns token owners
// Globals are owned by ""
func register(cont *di.Container, c *composeCfg, g Graph, nodes []node) (map[di.Token]string, error) {
	owner := map[di.Token]string{}

	globals := append([]di.Provider{
		di.Value(TokenConfig, c.cfg),
		di.Value(TokenLogger, c.log),
		di.Value(TokenGraph, g.clone()),
	}, c.globals...)
	for _, p := range globals {
		if err := cont.Register(p); err != nil {
			return nil, err
		}
		owner[p.Token] = ""
	}

	for _, n := range nodes {
		names := map[string]bool{}
		for _, ref := range n.ds.Controllers {
			if err := validate.Struct(ref); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "modkit: module %q controller %q", n.ds.Name, ref.Name)
			}
			if names[ref.Name] {
				return nil, perr.WithField(perr.DuplicateKeyf("modkit: module %q declares controller %q twice", n.ds.Name, ref.Name), "controllers")
			}
			names[ref.Name] = true
		}

		for _, p := range n.ds.Providers {
			if prev, dup := owner[p.Token]; dup {
				if prev == "" {
					prev = "globals"
				}
				return nil, perr.WithField(perr.DuplicateKeyf("modkit: module %q provides %q, already provided by %s", n.ds.Name, p.Token, prev), string(p.Token))
			}
			if err := cont.Register(p); err != nil {
				return nil, perr.Wrapf(err, perr.CodeOf(err), "modkit: module %q", n.ds.Name)
			}
			owner[p.Token] = n.ds.Name
		}
	}
	return owner, nil
}

// checkVisibility makes sure every dependency is owned by the module itself,
// a module it imports directly, or globals
func checkVisibility(owner map[di.Token]string, c *composeCfg, nodes []node) error {
	for _, p := range c.globals {
		for _, d := range p.Deps {
			if o, ok := owner[d]; !ok || o != "" {
				return perr.WithField(perr.NotFoundf("modkit: global %q depends on %q, which is not a global", p.Token, d), string(d))
			}
		}
	}

	for _, n := range nodes {
		check := func(kind, name string, deps []di.Token) error {
			for _, d := range deps {
				o, ok := owner[d]
				switch {
				case !ok:
					return perr.WithField(perr.NotFoundf("modkit: module %q %s %q depends on unknown token %q", n.ds.Name, kind, name, d), string(d))
				case o == "" || o == n.ds.Name || n.imports[o]:
				default:
					return perr.WithField(perr.NotFoundf("modkit: module %q %s %q depends on %q from module %q, which it does not import", n.ds.Name, kind, name, d, o), string(d))
				}
			}
			return nil
		}
		for _, p := range n.ds.Providers {
			if err := check("provider", string(p.Token), p.Deps); err != nil {
				return err
			}
		}
		for _, ref := range n.ds.Controllers {
			if err := check("controller", ref.Name, ref.Deps); err != nil {
				return err
			}
		}
	}
	return nil
}

// build constructs singletons in module order and then every controller
func build(ctx context.Context, cont *di.Container, c *composeCfg, nodes []node) (*App, error) {
	singletons := func(ps []di.Provider) error {
		for _, p := range ps {
			if p.Scope != di.Singleton {
				continue
			}
			if _, err := cont.Resolve(ctx, p.Token); err != nil {
				return err
			}
		}
		return nil
	}

	if err := singletons(c.globals); err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if err := singletons(n.ds.Providers); err != nil {
			return nil, perr.Wrapf(err, perr.CodeOf(err), "modkit: module %q", n.ds.Name)
		}
	}

	app := &App{cont: cont}
	for _, n := range nodes {
		m := mounted{name: n.ds.Name, prefix: n.ds.Prefix, mw: n.ds.Middlewares}
		for _, ref := range n.ds.Controllers {
			ctrl, err := newController(ctx, cont, ref)
			if err != nil {
				code := perr.CodeOf(err)
				if code == perr.ErrorCodeUnknown {
					code = perr.ErrorCodeLifecycle
				}
				return nil, perr.Wrapf(err, code, "modkit: module %q controller %q", n.ds.Name, ref.Name)
			}
			if ctrl == nil {
				return nil, perr.InvalidArgf("modkit: module %q controller %q factory returned nil", n.ds.Name, ref.Name)
			}
			m.controllers = append(m.controllers, ctrl)
		}
		app.mods = append(app.mods, m)

		c.log.Debug().
			Str("module", n.ds.Name).
			Strs("imports", importNames(n.ds)).
			Int("providers", len(n.ds.Providers)).
			Int("controllers", len(m.controllers)).
			Msg("module ready")
	}
	return app, nil
}

// newController runs the factory, turning a panic into an error so Compose still cleans up
func newController(ctx context.Context, cont *di.Container, ref module.ControllerRef) (c module.Controller, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c, err = nil, perr.PanicErrf("modkit: controller %q panicked: %v", ref.Name, rec)
		}
	}()
	return ref.New(ctx, cont.Restrict(ref.Name, ref.Deps))
}

func importNames(ds module.Description) []string {
	out := make([]string, len(ds.Imports))
	for i, d := range ds.Imports {
		out[i] = d.Name()
	}
	return out
}
