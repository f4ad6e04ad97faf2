// Package plan drives a FabricPlan to completion: the multi-phase stage
// machine (Build -> Shape -> Pretense -> Fall -> Settle) that sequences
// growth steps, shape operations, and the pretensing ramp, using the
// physics engine as its time base. It also provides the typed fluent
// FabricBuilder that authors a FabricPlan — the DSL surface named in the
// system's glossary, implemented as a typed builder rather than a parsed
// text grammar (see DESIGN.md, Open Question (a)).
package plan

import (
	"github.com/tensegral/fabricator/assembly"
	"github.com/tensegral/fabricator/physics"
	"github.com/tensegral/fabricator/shape"
	"github.com/tensegral/fabricator/units"
)

// PretensePhase settles growth and shaping into a pretensioned equilibrium:
// the surface the fabric is handed off onto, the altitude it is dropped
// from, the pretenst percentage, and the ramp duration.
type PretensePhase struct {
	Surface  physics.SurfaceCharacter
	Altitude units.Millimeters
	Percent  units.Percent
	Duration units.Seconds
}

// FallPhase releases the fabric under gravity for a scripted duration once
// Pretensing completes and the surface has been installed.
type FallPhase struct {
	Duration units.Seconds
}

// SettlePhase runs the Settling preset once the fabric is done falling, for
// at most Duration, ending early once every joint's speed is below Epsilon;
// it then zeroes velocities and marks the fabric frozen either way. The
// preset's damping is constant over the phase; no ramp is applied.
type SettlePhase struct {
	Duration units.Seconds
	Epsilon  float64
}

// AnimatePhase records a request for post-settle muscle-group oscillation.
// Per DESIGN.md Open Question (b), animation is modeled as an optional,
// disabled-by-default field. The runner does not read it: no stage drives
// an animation, and the physics engine's muscle pass acts on whichever
// intervals carry a MuscleGroup regardless of this field.
type AnimatePhase struct {
	Enabled bool
}

// FabricPlan is the declarative blueprint the runner executes: a build
// tree, an ordered shape step sequence, pretense settings, and optional
// post-pretense phases.
type FabricPlan struct {
	Name     string
	Scale    units.Millimeters
	Altitude units.Millimeters
	Root     *assembly.Node
	Shape    []shape.Step
	Pretense PretensePhase

	// Prism controls how any face still open when Pretensing begins is
	// finalized: true closes it into a triangle of Pulling intervals, false
	// discards it outright. Individual build branches may already request
	// an explicit AsPrism() cap at growth time; this is the default
	// disposition for whatever is left over.
	Prism bool

	Fall    *FallPhase
	Settle  *SettlePhase
	Animate *AnimatePhase
}
