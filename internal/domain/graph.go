package domain

import "slices"

// DependencyGraph is an adjacency index over dependency edges.
// It only reasons about ids; storage owns the edges.
type DependencyGraph struct {
	outgoing map[int64][]int64
}

// NewDependencyGraph indexes deps by TaskID. Neighbor lists are sorted so
// traversals are deterministic.
func NewDependencyGraph(deps []Dependency) *DependencyGraph {
	g := &DependencyGraph{outgoing: make(map[int64][]int64)}
	for _, d := range deps {
		g.outgoing[d.TaskID] = append(g.outgoing[d.TaskID], d.DependsOnID)
	}
	for id := range g.outgoing {
		slices.Sort(g.outgoing[id])
		g.outgoing[id] = slices.Compact(g.outgoing[id])
	}
	return g
}

// DependsOn returns the direct dependencies of id.
func (g *DependencyGraph) DependsOn(id int64) []int64 {
	return slices.Clone(g.outgoing[id])
}

// Reachable returns every task id reachable from id, in breadth-first order.
// id itself is included only when it lies on a cycle.
func (g *DependencyGraph) Reachable(id int64) []int64 {
	var out []int64
	seen := make(map[int64]bool)
	queue := slices.Clone(g.outgoing[id])
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		queue = append(queue, g.outgoing[n]...)
	}
	return out
}

// PathExists reports whether to is reachable from from.
func (g *DependencyGraph) PathExists(from, to int64) bool {
	return slices.Contains(g.Reachable(from), to)
}

// ClosesCycle reports whether adding the edge taskID -> dependsOnID would
// make the graph cyclic.
func (g *DependencyGraph) ClosesCycle(taskID, dependsOnID int64) bool {
	return taskID == dependsOnID || g.PathExists(dependsOnID, taskID)
}

// Ancestors walks parent references from id upwards and returns the chain,
// nearest parent first. A malformed tree that loops stops at the first repeat.
func Ancestors(parentOf map[int64]int64, id int64) []int64 {
	var out []int64
	seen := map[int64]bool{id: true}
	cur := id
	for {
		parent, ok := parentOf[cur]
		if !ok || seen[parent] {
			return out
		}
		seen[parent] = true
		out = append(out, parent)
		cur = parent
	}
}
