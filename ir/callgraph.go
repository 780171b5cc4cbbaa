package ir

import "github.com/gogpu/glslang/diag"

// Call is one caller→callee edge. Duplicates are permitted; the list is
// expected to stay small.
type Call struct {
	Caller string
	Callee string
}

// CallGraph is the directed multigraph of function-call edges of one
// compilation unit, later unioned across units at link time.
type CallGraph struct {
	calls []Call
}

// Add records a call edge.
func (g *CallGraph) Add(caller, callee string) {
	g.calls = append(g.calls, Call{Caller: caller, Callee: callee})
}

// Calls returns the recorded edges in arrival order.
func (g *CallGraph) Calls() []Call { return g.calls }

// Merge appends another unit's edges.
func (g *CallGraph) Merge(other *CallGraph) {
	g.calls = append(g.calls, other.calls...)
}

// adjacency builds the callee lists keyed by caller name. Duplicate
// edges collapse; cycle detection only needs connectivity.
func (g *CallGraph) adjacency() map[string][]string {
	adj := make(map[string][]string)
	seen := make(map[Call]bool)
	for _, c := range g.calls {
		if seen[c] {
			continue
		}
		seen[c] = true
		adj[c.Caller] = append(adj[c.Caller], c.Callee)
	}
	return adj
}

// CheckCycles walks the whole graph depth-first and reports every
// distinct edge that closes a cycle, once each. It returns true when
// any cycle exists, marking the program recursive.
func (g *CallGraph) CheckCycles(sink diag.Sink) bool {
	adj := g.adjacency()

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	errorGiven := make(map[Call]bool)
	recursive := false

	var visit func(name string)
	visit = func(name string) {
		visited[name] = true
		onStack[name] = true
		for _, callee := range adj[name] {
			if onStack[callee] {
				recursive = true
				edge := Call{Caller: name, Callee: callee}
				if !errorGiven[edge] {
					errorGiven[edge] = true
					sink.Error(diag.Loc{}, "recursion detected in call graph", name+"(...) calling "+callee+"(...)")
				}
				continue
			}
			if !visited[callee] {
				visit(callee)
			}
		}
		onStack[name] = false
	}

	// Every node can be a root; cycles unreachable from the entry
	// point are still illegal.
	for _, c := range g.calls {
		if !visited[c.Caller] {
			visit(c.Caller)
		}
	}

	return recursive
}

// Reachable returns the set of function names reachable from entry,
// including entry itself.
func (g *CallGraph) Reachable(entry string) map[string]bool {
	adj := g.adjacency()
	reached := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		if reached[name] {
			return
		}
		reached[name] = true
		for _, callee := range adj[name] {
			visit(callee)
		}
	}
	visit(entry)

	return reached
}

// CheckBodies verifies that every function reachable from entry has a
// definition, and prunes the bodies of unreachable functions unless
// keepUncalled is set (a library build keeps everything). bodies maps
// each defined function name to true. It returns the names whose
// bodies should be dropped.
func (g *CallGraph) CheckBodies(sink diag.Sink, entry string, bodies map[string]bool, keepUncalled bool) []string {
	reached := g.Reachable(entry)

	errorGiven := make(map[string]bool)
	for _, c := range g.calls {
		if reached[c.Caller] && !bodies[c.Callee] && !errorGiven[c.Callee] {
			errorGiven[c.Callee] = true
			sink.Error(diag.Loc{}, "no function definition (body) found", c.Callee+"(...)")
		}
	}

	if keepUncalled {
		return nil
	}
	var dead []string
	for name := range bodies {
		if !reached[name] {
			dead = append(dead, name)
		}
	}
	return dead
}
