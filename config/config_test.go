package config

import "testing"

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.Physics.IterationsPerFrame != 100 {
		t.Fatalf("expected default iterations_per_frame 100, got %d", cfg.Physics.IterationsPerFrame)
	}
	if cfg.Evolution.PopulationSize <= 0 {
		t.Fatalf("expected a positive default population size, got %d", cfg.Evolution.PopulationSize)
	}
	if len(cfg.Evolution.MutationWeights) == 0 {
		t.Fatalf("expected default mutation weights to be populated")
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	global = nil
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Cfg() to panic before Init()")
		}
	}()
	Cfg()
}

func TestMustInitLoadsDefaults(t *testing.T) {
	MustInit("")
	if Cfg().Fabric.DefaultScaleMillimeters <= 0 {
		t.Fatalf("expected a positive default scale")
	}
}
