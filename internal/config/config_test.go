package config

import (
	"os"
	"path/filepath"
	"testing"

	"grant-simulation/internal/simulation"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "obs.csv", "permno\n")
	path := writeFile(t, dir, "sim.yaml", `
simulation:
  iterations: 250
input:
  observations: obs.csv
  predictions: preds.csv
`)
	c, err := Load(path)
	require.NoError(t, err)

	opts := c.Simulation.Options()
	require.Equal(t, 250, opts.Iterations)
	require.Equal(t, simulation.DefaultSeed, opts.Seed)
	require.Equal(t, simulation.PolicyShared, opts.Policy)
	require.False(t, opts.StrictGrantWindow)

	require.Equal(t, filepath.Join(dir, "obs.csv"), c.Input.Observations)
	// Missing next to the config: kept as given.
	require.Equal(t, "preds.csv", c.Input.Predictions)
	require.Equal(t, DefaultInputDateLayouts(), c.Input.DateLayouts)
	require.Equal(t, simulation.DefaultDateLayouts(), c.Output.Layouts())
	require.Equal(t, "info", c.Log.Level)
}

func TestLoadExplicitZeroSeed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sim.yaml", `
simulation:
  iterations: 2
  seed: 0
  policy: substream
  workers: 4
`)
	c, err := Load(path)
	require.NoError(t, err)
	opts := c.Simulation.Options()
	require.Equal(t, uint64(0), opts.Seed)
	require.Equal(t, simulation.PolicySubstream, opts.Policy)
	require.Equal(t, 4, opts.Workers)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative iterations", "simulation:\n  iterations: -1\n"},
		{"too many iterations", "simulation:\n  iterations: 100001\n"},
		{"unknown policy", "simulation:\n  policy: global\n"},
		{"negative workers", "simulation:\n  workers: -2\n"},
		{"unknown level", "log:\n  level: loud\n"},
		{"bad yaml", "simulation: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "sim.yaml", tt.body)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMergeSimulation(t *testing.T) {
	seed := uint64(7)
	base := Default().Simulation
	out := MergeSimulation(base, SimulationConfig{Iterations: 40, Seed: &seed, Policy: "substream"})

	require.Equal(t, 40, out.Iterations)
	require.Equal(t, uint64(7), *out.Seed)
	require.Equal(t, "substream", out.Policy)
	require.Equal(t, base.Workers, out.Workers)
	require.False(t, out.KeepFullPath)

	require.Equal(t, base, MergeSimulation(base, SimulationConfig{}))
}

func TestValidateIterationLimit(t *testing.T) {
	for _, tc := range []struct {
		iterations int
		ok         bool
	}{
		{100000, true},
		{100001, false},
		{1_000_000_000, false},
	} {
		c := Default()
		c.Simulation = MergeSimulation(c.Simulation, SimulationConfig{Iterations: tc.iterations})
		if tc.ok {
			require.NoError(t, c.Validate(), tc.iterations)
		} else {
			require.Error(t, c.Validate(), tc.iterations)
		}
	}
}
