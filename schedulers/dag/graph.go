package dag

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/util"
)

// Graph is the precedence graph over the job ids named by a dependency set.
// Neighbour lists are sorted by id so every traversal is deterministic.
type Graph struct {
	nodes []types.JobID
	succ  map[types.JobID][]types.JobID
	pred  map[types.JobID][]types.JobID
}

func NewGraph(dependencies []types.Dependency) *Graph {
	g := &Graph{
		succ: make(map[types.JobID][]types.JobID),
		pred: make(map[types.JobID][]types.JobID),
	}
	seen := make(map[types.JobID]bool)
	for _, d := range dependencies {
		seen[d.Predecessor] = true
		seen[d.Successor] = true
		if slices.Contains(g.succ[d.Predecessor], d.Successor) {
			continue
		}
		g.succ[d.Predecessor] = append(g.succ[d.Predecessor], d.Successor)
		g.pred[d.Successor] = append(g.pred[d.Successor], d.Predecessor)
	}
	g.nodes = sortedIDs(maps.Keys(seen))
	for _, l := range g.succ {
		slices.Sort(l)
	}
	for _, l := range g.pred {
		slices.Sort(l)
	}
	return g
}

func (g *Graph) Nodes() []types.JobID {
	return g.nodes
}

func (g *Graph) Contains(id types.JobID) bool {
	_, ok := slices.BinarySearch(g.nodes, id)
	return ok
}

func (g *Graph) Successors(id types.JobID) []types.JobID {
	return g.succ[id]
}

func (g *Graph) Predecessors(id types.JobID) []types.JobID {
	return g.pred[id]
}

// Roots are the nodes without a predecessor.
func (g *Graph) Roots() []types.JobID {
	res := make([]types.JobID, 0)
	for _, n := range g.nodes {
		if len(g.pred[n]) == 0 {
			res = append(res, n)
		}
	}
	return res
}

// Sinks are the nodes without a successor.
func (g *Graph) Sinks() []types.JobID {
	res := make([]types.JobID, 0)
	for _, n := range g.nodes {
		if len(g.succ[n]) == 0 {
			res = append(res, n)
		}
	}
	return res
}

// TopologicalOrder is Kahn's order, smallest ready id first. When the graph has a cycle it returns
// the nodes it could order along with the error.
func (g *Graph) TopologicalOrder() ([]types.JobID, error) {
	indegree := make(map[types.JobID]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n] = len(g.pred[n])
	}
	ready := g.Roots()
	order := make([]types.JobID, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, s := range g.succ[n] {
			indegree[s]--
			if indegree[s] == 0 {
				idx, _ := slices.BinarySearch(ready, s)
				ready = slices.Insert(ready, idx, s)
			}
		}
	}
	if len(order) != len(g.nodes) {
		cyclic := make([]types.JobID, 0)
		for _, n := range g.nodes {
			if indegree[n] > 0 {
				cyclic = append(cyclic, n)
			}
		}
		return order, fmt.Errorf("dependency cycle among jobs %v", cyclic)
	}
	return order, nil
}

// ShortestPath is the breadth first path from source to target, nil when target is unreachable.
func (g *Graph) ShortestPath(source, target types.JobID) []types.JobID {
	parent := map[types.JobID]types.JobID{source: source}
	queue := util.NewQueue[types.JobID]()
	queue.Push(source)
	for !queue.Empty() {
		n := queue.Pop()
		if n == target {
			path := []types.JobID{n}
			for n != source {
				n = parent[n]
				path = append(path, n)
			}
			reverse(path)
			return path
		}
		for _, s := range g.succ[n] {
			if _, ok := parent[s]; ok {
				continue
			}
			parent[s] = n
			queue.Push(s)
		}
	}
	return nil
}

// Validate checks a dependency set against the job ids of a workload: every id must be known, no
// job may depend on itself, and the graph must be acyclic. All problems are reported together.
func Validate(jobIDs []types.JobID, dependencies []types.Dependency) error {
	var result *multierror.Error
	known := make(map[types.JobID]bool, len(jobIDs))
	for _, id := range jobIDs {
		known[id] = true
	}
	for _, d := range dependencies {
		if d.Predecessor == d.Successor {
			result = multierror.Append(result, fmt.Errorf("dependency %s: job depends on itself", d))
			continue
		}
		if !known[d.Predecessor] {
			result = multierror.Append(result, fmt.Errorf("dependency %s: unknown job %d", d, d.Predecessor))
		}
		if !known[d.Successor] {
			result = multierror.Append(result, fmt.Errorf("dependency %s: unknown job %d", d, d.Successor))
		}
	}
	if _, err := NewGraph(dependencies).TopologicalOrder(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func sortedIDs(ids []types.JobID) []types.JobID {
	slices.Sort(ids)
	return ids
}

func reverse(ids []types.JobID) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
