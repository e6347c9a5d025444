package dag

import (
	"golang.org/x/exp/slices"

	"github.com/iscas-system/powersched/schedulers/types"
)

// Analyzer partitions the jobs of a run into waves and chains. The dependency set never changes
// during a run, so both results are computed on first use and kept.
type Analyzer struct {
	jobIDs []types.JobID
	graph  *Graph

	waves  [][]types.JobID
	chains [][]types.JobID
}

func NewAnalyzer(jobIDs []types.JobID, dependencies []types.Dependency) *Analyzer {
	ids := slices.Clone(jobIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	return &Analyzer{
		jobIDs: ids,
		graph:  NewGraph(dependencies),
	}
}

// independent lists the job ids that take part in no dependency, ascending.
func (a *Analyzer) independent() []types.JobID {
	res := make([]types.JobID, 0)
	for _, id := range a.jobIDs {
		if !a.graph.Contains(id) {
			res = append(res, id)
		}
	}
	return res
}

// Waves layers the jobs by the longest path reaching them: a job sits one wave after the latest
// of its predecessors. Wave 0 holds the roots and every independent job. Each wave is sorted by id.
func (a *Analyzer) Waves() [][]types.JobID {
	if a.waves != nil {
		return a.waves
	}
	order, err := a.graph.TopologicalOrder()
	level := make(map[types.JobID]int, len(a.graph.Nodes()))
	depth := 0
	for _, n := range order {
		l := 0
		for _, p := range a.graph.Predecessors(n) {
			if level[p]+1 > l {
				l = level[p] + 1
			}
		}
		level[n] = l
		if l > depth {
			depth = l
		}
	}
	waves := make([][]types.JobID, depth+1)
	waves[0] = append(waves[0], a.independent()...)
	for _, n := range order {
		waves[level[n]] = append(waves[level[n]], n)
	}
	if err != nil {
		// jobs on a cycle never become eligible, they are parked after every other wave
		stuck := make([]types.JobID, 0)
		for _, n := range a.graph.Nodes() {
			if _, ok := level[n]; !ok {
				stuck = append(stuck, n)
			}
		}
		waves = append(waves, stuck)
	}
	a.waves = make([][]types.JobID, 0, len(waves))
	for _, w := range waves {
		if len(w) == 0 {
			continue
		}
		slices.Sort(w)
		a.waves = append(a.waves, w)
	}
	return a.waves
}

// Chains lists the critical chains of the graph, longest first. Candidate chains are the shortest
// paths between every connected root and sink pair; a job already claimed by an earlier chain is
// dropped from later ones. Jobs no chain covers follow as chains of one, graph jobs first in
// topological order, then independent jobs by id.
func (a *Analyzer) Chains() [][]types.JobID {
	if a.chains != nil {
		return a.chains
	}
	candidates := make([][]types.JobID, 0)
	for _, source := range a.graph.Roots() {
		for _, sink := range a.graph.Sinks() {
			if path := a.graph.ShortestPath(source, sink); path != nil {
				candidates = append(candidates, path)
			}
		}
	}
	slices.SortStableFunc(candidates, func(x, y []types.JobID) bool {
		return len(x) > len(y)
	})

	claimed := make(map[types.JobID]bool)
	chains := make([][]types.JobID, 0, len(candidates))
	for _, c := range candidates {
		chain := make([]types.JobID, 0, len(c))
		for _, id := range c {
			if claimed[id] {
				continue
			}
			claimed[id] = true
			chain = append(chain, id)
		}
		if len(chain) > 0 {
			chains = append(chains, chain)
		}
	}
	order, _ := a.graph.TopologicalOrder()
	for _, id := range order {
		if !claimed[id] {
			claimed[id] = true
			chains = append(chains, []types.JobID{id})
		}
	}
	for _, id := range a.independent() {
		chains = append(chains, []types.JobID{id})
	}
	a.chains = chains
	return a.chains
}
