// Package physics is the mass-spring integrator: per-tick force
// accumulation, integration, surface response, and muscle cycling, driven
// by named presets that the plan runner swaps at stage boundaries.
package physics

import "github.com/tensegral/fabricator/units"

// SurfaceCharacter selects how a joint below the surface plane responds.
type SurfaceCharacter int

const (
	SurfaceAbsent SurfaceCharacter = iota
	SurfaceFrozen
	SurfaceSticky
	SurfaceBouncy
)

// HasGravity reports whether this surface character implies gravity is
// active (only SurfaceAbsent has none, matching a structure still floating
// in the build/pretension phases).
func (s SurfaceCharacter) HasGravity() bool { return s != SurfaceAbsent }

const (
	gravityPerGram  = 5e-7
	antigravityBase = 1e-3
	resurface       = 0.01
	ambientDrag     = 0.9999
	stickyDownDrag  = 0.8
	// IterationsPerFrame is how many ticks a driver runs per external
	// "frame" between checking convergence/stage-transition predicates.
	IterationsPerFrame = 100
	// SpeedSquaredHardCap triggers a fatal physics-divergence panic when a
	// joint's speed^2 exceeds it, unless the active preset is Resilient.
	SpeedSquaredHardCap = 0.01
)

// Preset is a plain value record consulted by the engine each tick; swapped
// wholesale by the plan runner at stage boundaries.
type Preset struct {
	Name              string
	Drag              float64
	CycleTicks        float64
	Pretenst          units.Percent
	StiffnessFactor   float64
	MassFactor        float64
	StrainLimit       float64
	Surface           SurfaceCharacter
	Viscosity         float64
	// Resilient, when true, resets a joint's velocity to zero instead of
	// panicking when it exceeds the speed hard cap.
	Resilient bool
}

// Named presets, grounded on the original's fabric/physics.rs preset table.
var (
	Construction = Preset{
		Name: "CONSTRUCTION", Drag: 1e-3, CycleTicks: 1000, StiffnessFactor: 1e-2,
		MassFactor: 1, Pretenst: 1.0, StrainLimit: 1000, Surface: SurfaceAbsent, Viscosity: 2e4,
	}
	Liquid = Preset{
		Name: "LIQUID", Drag: 5e-6, CycleTicks: 1000, StiffnessFactor: 1e-2,
		MassFactor: 1, Pretenst: 20.0, StrainLimit: 1000, Surface: SurfaceAbsent, Viscosity: 1e5,
	}
	PrototypeFormation = Preset{
		Name: "PROTOTYPE_FORMATION", Drag: 1e-3, CycleTicks: 1000, StiffnessFactor: 1e-2,
		MassFactor: 1, Pretenst: 1.0, StrainLimit: 1000, Surface: SurfaceAbsent, Viscosity: 2e4,
	}
	BasePhysics = Preset{
		Name: "BASE_PHYSICS", Drag: 1e-5, CycleTicks: 1000, StiffnessFactor: 1.0,
		MassFactor: 1, Pretenst: 2.0, StrainLimit: 0.02, Surface: SurfaceFrozen, Viscosity: 1e2,
	}
	Pretensing = Preset{
		Name: "PRETENSING", Drag: 1e-1, CycleTicks: 1000, StiffnessFactor: 1.0,
		MassFactor: 1, Pretenst: 2.0, StrainLimit: 0.02, Surface: SurfaceAbsent, Viscosity: 1e5,
	}
	Settling = Preset{
		Name: "SETTLING", Drag: 1e-1, CycleTicks: 1000, StiffnessFactor: 1.0,
		MassFactor: 1, Pretenst: 2.0, StrainLimit: 0.02, Surface: SurfaceFrozen, Viscosity: 5e2,
	}
	Viewing = Preset{
		Name: "VIEWING", Drag: 1e-5, CycleTicks: 1000, StiffnessFactor: 1.0,
		MassFactor: 1, Pretenst: 2.0, StrainLimit: 0.02, Surface: SurfaceFrozen, Viscosity: 1e2,
	}
)

// WithSurface returns a copy of p with a different surface character,
// matching the Fall-phase "install the stored surface character" handoff.
func (p Preset) WithSurface(s SurfaceCharacter) Preset {
	p.Surface = s
	return p
}
