// Package config loads tunable parameters for the fabricator: default
// scale, build/shape/pretense timings, and evolutionary search weights, so
// they live in one embedded YAML baseline instead of being scattered
// through the packages that consume them. It also carries a copy of the
// physics integrator constants (see PhysicsConfig).
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable parameter the fabricator reads at startup.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Build     BuildConfig     `yaml:"build"`
	Pretense  PretenseConfig  `yaml:"pretense"`
	Fabric    FabricConfig    `yaml:"fabric"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Fitness   FitnessConfig   `yaml:"fitness"`
}

// PhysicsConfig mirrors the integrator constants shared by every preset.
// The physics package does not read it; the engine uses its own constants.
type PhysicsConfig struct {
	IterationsPerFrame  int     `yaml:"iterations_per_frame"`
	SpeedSquaredHardCap float64 `yaml:"speed_squared_hard_cap"`
	GravityPerGram      float64 `yaml:"gravity_per_gram"`
	AntigravityBase     float64 `yaml:"antigravity_base"`
	Resurface           float64 `yaml:"resurface"`
	AmbientDrag         float64 `yaml:"ambient_drag"`
	StickyDownDrag      float64 `yaml:"sticky_down_drag"`
}

// BuildConfig holds growth-phase scheduling defaults.
type BuildConfig struct {
	ApproachSeconds     float64 `yaml:"approach_seconds"`
	CalmStrainThreshold float64 `yaml:"calm_strain_threshold"`
	CalmMaxSeconds      float64 `yaml:"calm_max_seconds"`
}

// PretenseConfig holds the defaults a FabricPlan's pretense block falls
// back to when a plan leaves a field unset.
type PretenseConfig struct {
	Percent        float64 `yaml:"percent"`
	DurationSecs   float64 `yaml:"duration_seconds"`
	FallSeconds    float64 `yaml:"fall_seconds"`
	SettleSeconds  float64 `yaml:"settle_seconds"`
	SettleEpsilon  float64 `yaml:"settle_epsilon"`
}

// FabricConfig holds fabric-wide defaults.
type FabricConfig struct {
	DefaultScaleMillimeters float64 `yaml:"default_scale_millimeters"`
}

// EvolutionConfig holds population and mutation tunables for the
// evolutionary search.
type EvolutionConfig struct {
	PopulationSize              int             `yaml:"population_size"`
	AcceptWorseProbability      float64         `yaml:"accept_worse_probability"`
	SettleSeedSeconds           float64         `yaml:"settle_seed_seconds"`
	SettleMutationSeconds       float64         `yaml:"settle_mutation_seconds"`
	CollapseHeightThresholdM    float64         `yaml:"collapse_height_threshold_meters"`
	MutationWeights             map[string]int  `yaml:"mutation_weights"`
}

// FitnessConfig holds the weighting between the two fitness functions a
// plan may select.
type FitnessConfig struct {
	SuspendedWeight float64 `yaml:"suspended_weight"`
	HeightWeight    float64 `yaml:"height_weight"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}
