package simulator

import (
	"fmt"

	"github.com/leanovate/gopter"

	"github.com/iscas-system/powersched/schedulers/types"
)

//
// Workload generators produce random but valid workloads for property based tests
//

// genWorkload draws up to maxJobs jobs and up to maxServers servers. With dependencies set, edges only
// point from a lower to a higher job id so the graph is acyclic.
func genWorkload(genParams *gopter.GenParameters, maxJobs, maxServers int, dependencies bool) *Workload {
	rng := genParams.Rng
	w := &Workload{
		Jobs:         make([]JobSpec, 0, maxJobs),
		Servers:      make([]ServerSpec, 0, maxServers),
		Dependencies: make([]types.Dependency, 0),
	}
	periods := []types.Duration{0, 0, 3, 5}
	numJobs := rng.Intn(maxJobs) + 1
	for i := 0; i < numJobs; i++ {
		w.Jobs = append(w.Jobs, NewJobSpec(
			types.JobID(i),
			types.Time(rng.Intn(7)),
			types.Duration(rng.Intn(4)+1),
			types.Duration(rng.Intn(11)),
			periods[rng.Intn(len(periods))],
		))
	}
	numServers := rng.Intn(maxServers) + 1
	for i := 0; i < numServers; i++ {
		numFreqs := rng.Intn(3) + 1
		freqs := make([]types.Frequency, 0, numFreqs)
		for f := 0; f < numFreqs; f++ {
			freqs = append(freqs, types.Frequency(rng.Intn(4)+1))
		}
		w.Servers = append(w.Servers, ServerSpec{
			ID:          types.ServerID(fmt.Sprintf("s%d", i)),
			Frequencies: freqs,
			MaxPower:    types.Power(50 * (rng.Intn(4) + 1)),
		})
	}
	if dependencies {
		for a := 0; a < numJobs; a++ {
			for b := a + 1; b < numJobs; b++ {
				if rng.Intn(5) == 0 {
					w.Dependencies = append(w.Dependencies, types.Dependency{
						Predecessor: types.JobID(a),
						Successor:   types.JobID(b),
					})
				}
			}
		}
	}
	return w
}

// GenWorkload generates workloads of at most maxJobs jobs on at most maxServers servers.
func GenWorkload(maxJobs, maxServers int, dependencies bool) gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		w := genWorkload(genParams, maxJobs, maxServers, dependencies)
		return gopter.NewGenResult(w, gopter.NoShrinker)
	}
}
