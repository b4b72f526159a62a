package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"grant-simulation/internal/simulation"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Valuation  ValuationConfig  `yaml:"valuation"`
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
}

type SimulationConfig struct {
	// Iterations is capped so one request cannot allocate an unbounded table.
	Iterations   int     `yaml:"iterations" json:"iterations" validate:"gte=1,lte=100000"`
	Seed         *uint64 `yaml:"seed" json:"seed,omitempty"`
	KeepFullPath bool    `yaml:"keep_full_path" json:"keep_full_path"`
	// Policy is "shared" (default) or "substream".
	Policy            string `yaml:"policy" json:"policy" validate:"omitempty,oneof=shared substream"`
	Workers           int    `yaml:"workers" json:"workers" validate:"gte=0"`
	StrictGrantWindow bool   `yaml:"strict_grant_window" json:"strict_grant_window"`
}

type ValuationConfig struct {
	Workers int `yaml:"workers" validate:"gte=0"`
}

type InputConfig struct {
	// Observations and Predictions are resolved relative to the config file.
	Observations string `yaml:"observations"`
	Predictions  string `yaml:"predictions"`
	// DateLayouts are tried in order when parsing input dates.
	DateLayouts []string `yaml:"date_layouts" validate:"dive,required"`
}

type OutputConfig struct {
	Table           string `yaml:"table"`
	Summary         string `yaml:"summary"`
	BaseDateLayout  string `yaml:"base_date_layout"`
	GrantDateLayout string `yaml:"grant_date_layout"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads config and resolves input paths, but does not apply
// defaults or validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	c.Input.Observations = resolve(path, c.Input.Observations)
	c.Input.Predictions = resolve(path, c.Input.Predictions)
	return &c, nil
}

// resolve prefers a path relative to the config file directory, falling back
// to the path as given (relative to cwd).
func resolve(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(filepath.Dir(configPath), p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) applyDefaults() {
	if c.Simulation.Iterations == 0 {
		c.Simulation.Iterations = 1
	}
	if c.Simulation.Seed == nil {
		seed := simulation.DefaultSeed
		c.Simulation.Seed = &seed
	}
	if c.Simulation.Policy == "" {
		c.Simulation.Policy = string(simulation.PolicyShared)
	}
	if len(c.Input.DateLayouts) == 0 {
		c.Input.DateLayouts = DefaultInputDateLayouts()
	}
	def := simulation.DefaultDateLayouts()
	if c.Output.BaseDateLayout == "" {
		c.Output.BaseDateLayout = def.BaseDate
	}
	if c.Output.GrantDateLayout == "" {
		c.Output.GrantDateLayout = def.GrantDate
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DefaultInputDateLayouts are the date formats accepted in input files.
func DefaultInputDateLayouts() []string {
	return []string{"2006-01-02", "01/02/2006", "2006-01-02 15:04:05"}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	return nil
}

// Options converts the simulation section to engine options.
func (s SimulationConfig) Options() simulation.Options {
	seed := simulation.DefaultSeed
	if s.Seed != nil {
		seed = *s.Seed
	}
	policy := simulation.Policy(s.Policy)
	if policy == "" {
		policy = simulation.PolicyShared
	}
	return simulation.Options{
		Iterations:        s.Iterations,
		Seed:              seed,
		KeepFullPath:      s.KeepFullPath,
		Policy:            policy,
		Workers:           s.Workers,
		StrictGrantWindow: s.StrictGrantWindow,
	}
}

// Layouts returns the output date layouts.
func (o OutputConfig) Layouts() simulation.DateLayouts {
	return simulation.DateLayouts{BaseDate: o.BaseDateLayout, GrantDate: o.GrantDateLayout}
}

// MergeSimulation overlays non-zero fields from override onto base.
// This is used to apply per-request settings on top of the file defaults.
func MergeSimulation(base, override SimulationConfig) SimulationConfig {
	out := base
	if override.Iterations != 0 {
		out.Iterations = override.Iterations
	}
	if override.Seed != nil {
		out.Seed = override.Seed
	}
	if override.KeepFullPath {
		out.KeepFullPath = true
	}
	if override.Policy != "" {
		out.Policy = override.Policy
	}
	if override.Workers != 0 {
		out.Workers = override.Workers
	}
	if override.StrictGrantWindow {
		out.StrictGrantWindow = true
	}
	return out
}
