package plan

import (
	"github.com/tensegral/fabricator/assembly"
	"github.com/tensegral/fabricator/physics"
	"github.com/tensegral/fabricator/shape"
	"github.com/tensegral/fabricator/units"
)

// FabricBuilder authors a FabricPlan through a fluent, chainable API — the
// typed equivalent of the original text DSL (see DESIGN.md, Open Question
// (a)): each method mutates and returns the same builder, so a plan reads
// as one expression.
type FabricBuilder struct {
	plan FabricPlan
}

// Fabric starts a new builder for a plan named name, grown at the given
// millimeter scale.
func Fabric(name string, scale units.Millimeters) *FabricBuilder {
	return &FabricBuilder{plan: FabricPlan{
		Name:  name,
		Scale: scale,
		Pretense: PretensePhase{
			Surface: physics.SurfaceFrozen,
		},
	}}
}

// Seed sets the build tree's root node.
func (b *FabricBuilder) Seed(root *assembly.Node) *FabricBuilder {
	b.plan.Root = root
	return b
}

// Shape appends steps to the shape phase, run in the order given once
// growth completes.
func (b *FabricBuilder) Shape(steps ...shape.Step) *FabricBuilder {
	b.plan.Shape = append(b.plan.Shape, steps...)
	return b
}

// Pretense configures the pretensing ramp: percent stiffening and ramp
// duration. Zero values fall back to config defaults at run time.
func (b *FabricBuilder) Pretense(percent units.Percent, duration units.Seconds) *FabricBuilder {
	b.plan.Pretense.Percent = percent
	b.plan.Pretense.Duration = duration
	return b
}

// Altitude records Plan.Altitude. The runner does not read it: the fabric is
// not moved to this height before the fall.
func (b *FabricBuilder) Altitude(alt units.Millimeters) *FabricBuilder {
	b.plan.Altitude = alt
	return b
}

// Prism marks every face still open when Pretensing begins as a closed
// triangle of Pulling intervals instead of being discarded.
func (b *FabricBuilder) Prism() *FabricBuilder {
	b.plan.Prism = true
	return b
}

// Floating configures the plan to skip Fall and Settle entirely: the
// fabric stays suspended with no surface and no gravity, and the plan
// completes as soon as Pretensing ends.
func (b *FabricBuilder) Floating() *FabricBuilder {
	b.plan.Pretense.Surface = physics.SurfaceAbsent
	b.plan.Fall = nil
	b.plan.Settle = nil
	return b
}

// Falling onto surface for the given fall/settle durations and settle
// convergence epsilon.
func (b *FabricBuilder) Falling(surface physics.SurfaceCharacter, fallSeconds, settleSeconds units.Seconds, settleEpsilon float64) *FabricBuilder {
	b.plan.Pretense.Surface = surface
	b.plan.Fall = &FallPhase{Duration: fallSeconds}
	b.plan.Settle = &SettlePhase{Duration: settleSeconds, Epsilon: settleEpsilon}
	return b
}

// Animate sets Plan.Animate. The runner does not read it and has no
// post-settle animation stage.
func (b *FabricBuilder) Animate() *FabricBuilder {
	b.plan.Animate = &AnimatePhase{Enabled: true}
	return b
}

// Build finalizes the plan.
func (b *FabricBuilder) Build() FabricPlan {
	return b.plan
}
