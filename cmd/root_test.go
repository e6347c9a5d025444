package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscas-system/powersched/schedulers/types"
)

func writeScenario(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"case1.toml": `job_file = "jobs.txt"
server_file = "servers.txt"
dependency_file = "deps.txt"
power_cap = 400
energy_cap = 10000
repeat = 1
`,
		"jobs.txt":    "#id arrival duration deadline period\n0 0 2 10 0\n1 0 1 10 4\n2 1 3 12 0\n",
		"servers.txt": "s1 (1 2)\ns2 (2)\n",
		"deps.txt":    "0 - 2\n",
	}
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestRootCmd_AllPolicies(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, filepath.Join(root, "cases", "nested"))
	out := filepath.Join(root, "out")
	reports := filepath.Join(root, "reports")
	metricsFile := filepath.Join(root, "powersched.prom")

	cmd := RootCmd()
	cmd.SetArgs([]string{"all", filepath.Join(root, "cases", "**", "*.toml"),
		"--out", out,
		"--report-dir", reports,
		"--metrics-file", metricsFile,
		"--parquet",
		"--log-level", "error",
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	for _, kind := range types.PolicyKinds() {
		prefix := filepath.Join(out, "case1_"+kind.String())
		results, err := os.ReadFile(prefix + "_results.txt")
		require.NoError(t, err, kind.String())
		assert.True(t, strings.HasPrefix(string(results), "#jobID serverID starting_time ending_time frequency_used\n"))
		assert.FileExists(t, prefix+"_power.txt")
		assert.FileExists(t, prefix+".parquet")
	}
	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))

	bs, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(bs), `powersched_jobs_admitted_total{policy="cpm",scenario="case1"}`)
}

func TestRootCmd_Errors(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root)
	pattern := filepath.Join(root, "*.toml")
	tests := map[string][]string{
		"no scenario glob":   {"fifo"},
		"nothing matches":    {"fifo", filepath.Join(root, "*.yaml")},
		"unknown policy":     {"lottery", pattern},
		"bad log level":      {"fifo", pattern, "--log-level", "loud"},
		"bad deadline check": {"fifo", pattern, "--deadline-check", "soon"},
		"negative max ticks": {"fifo", pattern, "--max-ticks", "-1"},
		"too many arguments": {"fifo", pattern, "extra"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := RootCmd()
			cmd.SetArgs(append(args, "--out", filepath.Join(root, "out")))
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			assert.Error(t, cmd.ExecuteContext(context.Background()))
		})
	}
}

func TestParams_Overrides(t *testing.T) {
	p := &params{}
	overrides, err := p.overrides()
	require.NoError(t, err)
	assert.Empty(t, overrides)

	p = &params{quantum: 3, maxTicks: 10, deadlineCheck: "passed"}
	overrides, err = p.overrides()
	require.NoError(t, err)
	assert.Len(t, overrides, 3)
}
