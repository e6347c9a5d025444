package dag

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscas-system/powersched/schedulers/types"
)

func deps(pairs ...[2]types.JobID) []types.Dependency {
	res := make([]types.Dependency, 0, len(pairs))
	for _, p := range pairs {
		res = append(res, types.Dependency{Predecessor: p[0], Successor: p[1]})
	}
	return res
}

func TestAnalyzer_Waves(t *testing.T) {
	tests := map[string]struct {
		jobIDs       []types.JobID
		dependencies []types.Dependency
		expected     [][]types.JobID
	}{
		"fork and chain": {
			jobIDs:       []types.JobID{0, 1, 2, 3},
			dependencies: deps([2]types.JobID{0, 1}, [2]types.JobID{0, 2}, [2]types.JobID{1, 3}),
			expected:     [][]types.JobID{{0}, {1, 2}, {3}},
		},
		"independent jobs join the first wave": {
			jobIDs:       []types.JobID{7, 0, 1, 4},
			dependencies: deps([2]types.JobID{0, 1}),
			expected:     [][]types.JobID{{0, 4, 7}, {1}},
		},
		"longest path decides the wave": {
			jobIDs:       []types.JobID{0, 1, 2, 3},
			dependencies: deps([2]types.JobID{0, 1}, [2]types.JobID{1, 2}, [2]types.JobID{0, 2}, [2]types.JobID{3, 2}),
			expected:     [][]types.JobID{{0, 3}, {1}, {2}},
		},
		"no dependencies": {
			jobIDs:   []types.JobID{3, 1, 2},
			expected: [][]types.JobID{{1, 2, 3}},
		},
		"no jobs": {
			expected: [][]types.JobID{},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			a := NewAnalyzer(tc.jobIDs, tc.dependencies)
			assert.Equal(t, tc.expected, a.Waves())
		})
	}
}

func TestAnalyzer_Chains(t *testing.T) {
	tests := map[string]struct {
		jobIDs       []types.JobID
		dependencies []types.Dependency
		expected     [][]types.JobID
	}{
		"longest chain first, shared root kept by it": {
			jobIDs:       []types.JobID{0, 1, 2, 3},
			dependencies: deps([2]types.JobID{0, 1}, [2]types.JobID{0, 2}, [2]types.JobID{1, 3}),
			expected:     [][]types.JobID{{0, 1, 3}, {2}},
		},
		"jobs off every shortest path become chains of one": {
			jobIDs:       []types.JobID{0, 1, 2, 3, 5},
			dependencies: deps([2]types.JobID{0, 1}, [2]types.JobID{0, 2}, [2]types.JobID{1, 3}, [2]types.JobID{2, 3}),
			expected:     [][]types.JobID{{0, 1, 3}, {2}, {5}},
		},
		"disconnected components": {
			jobIDs:       []types.JobID{1, 2, 3, 4, 5},
			dependencies: deps([2]types.JobID{1, 2}, [2]types.JobID{3, 4}, [2]types.JobID{4, 5}),
			expected:     [][]types.JobID{{3, 4, 5}, {1, 2}},
		},
		"independent jobs only": {
			jobIDs:   []types.JobID{2, 1},
			expected: [][]types.JobID{{1}, {2}},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			a := NewAnalyzer(tc.jobIDs, tc.dependencies)
			assert.Equal(t, tc.expected, a.Chains())
		})
	}
}

func TestAnalyzer_Memoized(t *testing.T) {
	a := NewAnalyzer([]types.JobID{0, 1, 2, 3}, deps([2]types.JobID{0, 1}, [2]types.JobID{0, 2}, [2]types.JobID{1, 3}))
	waves := a.Waves()
	chains := a.Chains()
	assert.Equal(t, waves, a.Waves())
	assert.Equal(t, chains, a.Chains())
	// the cached slices are handed out again, not recomputed
	assert.Same(t, &waves[0][0], &a.Waves()[0][0])
	assert.Same(t, &chains[0][0], &a.Chains()[0][0])
}

func TestGraph_TopologicalOrder(t *testing.T) {
	g := NewGraph(deps([2]types.JobID{3, 1}, [2]types.JobID{2, 1}, [2]types.JobID{1, 0}))
	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []types.JobID{2, 3, 1, 0}, order)

	g = NewGraph(deps([2]types.JobID{0, 1}, [2]types.JobID{1, 2}, [2]types.JobID{2, 1}))
	order, err = g.TopologicalOrder()
	assert.Error(t, err)
	assert.Equal(t, []types.JobID{0}, order)
}

func TestGraph_ShortestPath(t *testing.T) {
	g := NewGraph(deps([2]types.JobID{0, 1}, [2]types.JobID{1, 2}, [2]types.JobID{2, 3}, [2]types.JobID{0, 3}))
	assert.Equal(t, []types.JobID{0, 3}, g.ShortestPath(0, 3))
	assert.Equal(t, []types.JobID{1, 2, 3}, g.ShortestPath(1, 3))
	assert.Nil(t, g.ShortestPath(3, 0))
	assert.Equal(t, []types.JobID{2}, g.ShortestPath(2, 2))
}

func TestValidate(t *testing.T) {
	ids := []types.JobID{0, 1, 2}
	assert.NoError(t, Validate(ids, deps([2]types.JobID{0, 1}, [2]types.JobID{1, 2})))
	assert.NoError(t, Validate(ids, nil))

	err := Validate(ids, deps([2]types.JobID{0, 1}, [2]types.JobID{1, 0}, [2]types.JobID{0, 5}))
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, err.Error(), "unknown job 5")
	assert.Contains(t, err.Error(), "dependency cycle")

	err = Validate(ids, deps([2]types.JobID{2, 2}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depends on itself")
}
