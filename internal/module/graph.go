package module

import (
	"context"

	"github.com/otterjs/otter/internal/logging"
	"github.com/otterjs/otter/internal/ottererr"
)

// Node is one loaded module in the graph: its resolved source plus the
// specifiers it depends on (as written in the source, not yet resolved)
// and its transpiled code, if MediaType required transpilation.
type Node struct {
	URL          string
	Source       Source
	Dependencies []string // raw specifiers, in ScanImportSpecifiers order
	Compiled     string   // transpiled JS, set only when Source.MediaType == MediaTypeScript
}

// ExecutableSource returns the compiled JavaScript if this node was
// transpiled, or the original source otherwise.
func (n *Node) ExecutableSource() string {
	if n.Compiled != "" {
		return n.Compiled
	}
	return n.Source.Text
}

// Graph is a module dependency graph with cycle detection (spec §4.8).
// It owns no bytecode compilation; callers walk ExecutionOrder and feed
// each node's ExecutableSource to the compiler themselves.
type Graph struct {
	resolver   Resolver
	loader     Loader
	transpiler Transpiler
	logger     logging.Logger

	nodes map[string]*Node
}

// NewGraph wires a graph to its resolver, loader, and (optional)
// transpiler. A nil transpiler means TypeScript sources fail to load
// with ModuleTranspile the first time one is encountered.
func NewGraph(resolver Resolver, loader Loader, transpiler Transpiler) *Graph {
	return &Graph{
		resolver:   resolver,
		loader:     loader,
		transpiler: transpiler,
		logger:     logging.Noop(),
		nodes:      make(map[string]*Node),
	}
}

// SetLogger installs the sink resolution/cycle events are reported to
// (spec §10.2: "the module graph (resolution/cycle events)").
func (g *Graph) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.Noop()
	}
	g.logger = l
}

// Load performs spec §4.8's graph-building DFS traversal starting from
// entry, populating g with every transitively-reached module.
func (g *Graph) Load(ctx context.Context, entry string) error {
	visited := make(map[string]bool)
	var stack []string
	return g.loadRecursive(ctx, entry, "", visited, &stack)
}

func (g *Graph) loadRecursive(ctx context.Context, specifier, referrer string, visited map[string]bool, stack *[]string) error {
	canonicalURL, err := g.resolver.Resolve(specifier, referrer)
	if err != nil {
		return err
	}

	for _, onStack := range *stack {
		if onStack == canonicalURL {
			cycle := append(append([]string{}, *stack...), canonicalURL)
			g.logger.Log(logging.ScopeModuleGraph, "circular dependency detected", "cycle", cycle)
			return &ottererr.ModuleError{Kind: ottererr.ModuleCircular, URL: canonicalURL, Cycle: cycle}
		}
	}
	if visited[canonicalURL] {
		return nil
	}

	*stack = append(*stack, canonicalURL)
	defer func() { *stack = (*stack)[:len(*stack)-1] }()

	g.logger.Log(logging.ScopeModuleGraph, "resolving module", "url", canonicalURL, "referrer", referrer)
	src, err := g.loader.Load(ctx, canonicalURL)
	if err != nil {
		return err
	}

	var deps []string
	if !isNodeBuiltin(canonicalURL) {
		deps = ScanImportSpecifiers(src.Text)
	}

	for _, dep := range deps {
		if err := g.loadRecursive(ctx, dep, canonicalURL, visited, stack); err != nil {
			return err
		}
	}

	var compiled string
	if src.MediaType == MediaTypeScript {
		if g.transpiler == nil {
			return &ottererr.ModuleError{Kind: ottererr.ModuleTranspile, URL: canonicalURL}
		}
		code, _, err := g.transpiler.TranspileTypeScript(src.Text)
		if err != nil {
			return &ottererr.ModuleError{Kind: ottererr.ModuleTranspile, URL: canonicalURL}
		}
		compiled = code
	}

	g.nodes[canonicalURL] = &Node{URL: canonicalURL, Source: src, Dependencies: deps, Compiled: compiled}
	visited[canonicalURL] = true
	return nil
}

func isNodeBuiltin(url string) bool {
	return len(url) >= 5 && url[:5] == "node:"
}

// Get returns the loaded node for url, if present.
func (g *Graph) Get(url string) (*Node, bool) {
	n, ok := g.nodes[url]
	return n, ok
}

// Len reports how many modules are in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// ExecutionOrder returns every loaded module's canonical URL in
// dependency order: for each URL, every URL it (transitively) depends
// on appears earlier in the slice (spec §4.8 "topological order ...
// honoring dependencies edges"). Cycles cannot occur here since Load
// already rejected them during construction.
func (g *Graph) ExecutionOrder() []string {
	visited := make(map[string]bool)
	var order []string
	// Visit every known node, each at most once. The start order follows
	// map iteration and is not deterministic; only the dependency
	// constraint above is guaranteed.
	for url := range g.nodes {
		g.visitForOrder(url, visited, &order)
	}
	return order
}

func (g *Graph) visitForOrder(url string, visited map[string]bool, order *[]string) {
	if visited[url] {
		return
	}
	if node, ok := g.nodes[url]; ok {
		for _, dep := range node.Dependencies {
			// Dependencies are recorded as raw specifiers (spec §4.8 step 4);
			// re-resolve against this node's URL as referrer to find the
			// canonical key the dependency was stored under.
			resolved, err := g.resolver.Resolve(dep, url)
			if err != nil {
				continue
			}
			if _, ok := g.nodes[resolved]; ok {
				g.visitForOrder(resolved, visited, order)
			}
		}
	}
	visited[url] = true
	*order = append(*order, url)
}
