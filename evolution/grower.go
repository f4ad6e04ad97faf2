package evolution

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/units"
)

// MutationType labels which operator produced an offspring, matching the
// config.EvolutionConfig.MutationWeights keys exactly so a weight lookup
// never needs a translation table.
type MutationType string

const (
	MutationSeed               MutationType = "seed"
	MutationAddPush            MutationType = "add_push"
	MutationRemovePull         MutationType = "remove_pull"
	MutationShortenPull        MutationType = "shorten_pull"
	MutationLengthenPull       MutationType = "lengthen_pull"
	MutationFlatRemovePull     MutationType = "flat_remove_pull"
	MutationFlatAddConnections MutationType = "flat_add_connections"
)

const (
	pushStiffness = 1.0
	pushDensity   = 0.02
	pullStiffness = 0.5
	pullDensity   = 0.005

	// pullLengthStep is the fractional adjustment Shorten/Lengthen apply to
	// a pull's rest length per mutation (0.92x / 1.08x).
	pullLengthStep = 0.08
)

// Grower builds and mutates a seed fabric directly from push/pull
// primitives rather than the brick catalogue: evolution searches raw
// tensegrity topology, not pre-authored brick families. Grounded on
// spec.md's Evolution module description and the teacher's
// telemetry.HallOfFame bounded-population pattern for how a proven
// structure's provenance (seed, genome) is carried forward; the seed
// graph and mutation operators themselves are this module's own design,
// since original_source/src/build/evo/grower.rs was not present in the
// retrieved reference material.
type Grower struct {
	Decision      *DecisionMaker
	PushLength    units.Millimeters
	SeedPushCount int
}

// NewGrower constructs a Grower seeded for one individual's lifetime: its
// own DecisionMaker and genome drive every growth and mutation decision
// that individual (and its offspring) ever makes.
func NewGrower(seed uint64, genome Genome, pushLength units.Millimeters, seedPushCount int) *Grower {
	if seedPushCount <= 0 {
		seedPushCount = 3
	}
	return &Grower{
		Decision:      NewDecisionMaker(seed, genome),
		PushLength:    pushLength,
		SeedPushCount: seedPushCount,
	}
}

// CreateSeed builds a fresh fabric: SeedPushCount pushes placed at random
// positions and orientations, closed into a single connected graph by
// pulls joining each push's alpha ends to the next's alpha ends (and
// likewise for omega ends) around a ring. It returns the fabric and the
// push count, since later mutations need to know how many of the live
// intervals are structural pushes versus pulls.
func (g *Grower) CreateSeed() (*fabric.Fabric, int) {
	f := fabric.New("Evolution", 1000)
	length := float64(g.PushLength)
	pushMaterial := fabric.Material{StiffnessPerLength: pushStiffness, LinearDensity: pushDensity}
	pullMaterial := fabric.Material{StiffnessPerLength: pullStiffness, LinearDensity: pullDensity}

	type ends struct{ alpha, omega fabric.JointID }
	ring := make([]ends, 0, g.SeedPushCount)

	for i := 0; i < g.SeedPushCount; i++ {
		dir := g.Decision.RandomDirection()
		center := r3.Vec{
			X: g.Decision.Range(-0.3, 0.3) * length,
			Y: g.Decision.Range(-0.3, 0.3) * length,
			Z: g.Decision.Range(-0.3, 0.3) * length,
		}
		half := r3.Scale(length/2, dir)
		alpha := f.CreateJoint(r3.Sub(center, half))
		omega := f.CreateJoint(r3.Add(center, half))
		f.CreateInterval(alpha, omega, fabric.RolePushing, pushMaterial, length)
		ring = append(ring, ends{alpha, omega})
	}

	for i := range ring {
		next := (i + 1) % len(ring)
		connectDistinct(f, ring[i].alpha, ring[next].alpha, pullMaterial)
		connectDistinct(f, ring[i].omega, ring[next].omega, pullMaterial)
	}

	return f, g.SeedPushCount
}

// connectDistinct adds a pulling interval between two distinct joints at
// their current separation, a no-op if they are the same joint or already
// coincide.
func connectDistinct(f *fabric.Fabric, a, b fabric.JointID, material fabric.Material) {
	if a == b {
		return
	}
	length := r3.Norm(r3.Sub(f.Joint(b).Loc.Current(), f.Joint(a).Loc.Current()))
	if length <= 0 {
		return
	}
	f.CreateInterval(a, b, fabric.RolePulling, material, length)
}

// AddPush grows one new push from a randomly chosen existing joint,
// oriented randomly, and ties both of its ends back into the structure
// with a pull to the joint it grew from. Returns false if the fabric has
// no joints to grow from yet.
func (g *Grower) AddPush(f *fabric.Fabric) bool {
	joints := liveJoints(f)
	if len(joints) == 0 {
		return false
	}
	anchor := joints[g.Decision.Choose(len(joints))]
	anchorPos := f.Joint(anchor).Loc.Current()

	dir := g.Decision.RandomDirection()
	length := float64(g.PushLength)
	half := r3.Scale(length/2, dir)
	alpha := f.CreateJoint(r3.Sub(anchorPos, half))
	omega := f.CreateJoint(r3.Add(anchorPos, half))

	pushMaterial := fabric.Material{StiffnessPerLength: pushStiffness, LinearDensity: pushDensity}
	pullMaterial := fabric.Material{StiffnessPerLength: pullStiffness, LinearDensity: pullDensity}
	f.CreateInterval(alpha, omega, fabric.RolePushing, pushMaterial, length)
	connectDistinct(f, anchor, alpha, pullMaterial)
	connectDistinct(f, anchor, omega, pullMaterial)
	return true
}

// RemoveRandomPull removes one randomly chosen live pulling interval.
// Returns false if there are none.
func (g *Grower) RemoveRandomPull(f *fabric.Fabric) bool {
	pulls := liveIntervalsByRole(f, fabric.RolePulling)
	if len(pulls) == 0 {
		return false
	}
	f.RemoveInterval(pulls[g.Decision.Choose(len(pulls))])
	return true
}

// ShortenRandomPull shrinks a randomly chosen live pull's rest length by
// pullLengthStep. Returns false if there are none.
func (g *Grower) ShortenRandomPull(f *fabric.Fabric) bool {
	return g.scaleRandomPull(f, 1-pullLengthStep)
}

// LengthenRandomPull stretches a randomly chosen live pull's rest length
// by pullLengthStep. Returns false if there are none.
func (g *Grower) LengthenRandomPull(f *fabric.Fabric) bool {
	return g.scaleRandomPull(f, 1+pullLengthStep)
}

func (g *Grower) scaleRandomPull(f *fabric.Fabric, factor float64) bool {
	pulls := liveIntervalsByRole(f, fabric.RolePulling)
	if len(pulls) == 0 {
		return false
	}
	iv := f.Interval(pulls[g.Decision.Choose(len(pulls))])
	fixed, ok := iv.Span.(fabric.FixedSpan)
	if !ok {
		return false
	}
	newLength := fixed.Length * factor
	if newLength <= 0 {
		return false
	}
	iv.Span = fabric.FixedSpan{Length: newLength}
	return true
}

// AddMoreConnections adds a handful of pulls between random joint pairs,
// used to help a collapsed-flat structure unfold by giving it more
// internal tension paths to push against. Backs the FlatAddConnections
// recovery mutation.
func (g *Grower) AddMoreConnections(f *fabric.Fabric) {
	joints := liveJoints(f)
	if len(joints) < 2 {
		return
	}
	pullMaterial := fabric.Material{StiffnessPerLength: pullStiffness, LinearDensity: pullDensity}
	const attempts = 3
	for i := 0; i < attempts; i++ {
		a := joints[g.Decision.Choose(len(joints))]
		b := joints[g.Decision.Choose(len(joints))]
		connectDistinct(f, a, b, pullMaterial)
	}
}

// RecoverFlat runs one of the two collapse-recovery operators: most of the
// time it adds extra tension paths (FlatAddConnections) to help the
// structure unfold; occasionally it instead prunes a slack pull
// (FlatRemovePull) that may be pinning the structure flat. Returns which
// operator actually fired.
func (g *Grower) RecoverFlat(f *fabric.Fabric) MutationType {
	if g.Decision.Range(0, 1) < 0.2 && g.RemoveRandomPull(f) {
		return MutationFlatRemovePull
	}
	g.AddMoreConnections(f)
	return MutationFlatAddConnections
}

// ApplyRandomMutation dispatches to one of the four structural mutation
// operators, drawn by weights (config.EvolutionConfig.MutationWeights).
// When the drawn operator is a no-op (e.g. RemovePull on a fabric with no
// pulls left) it draws again, up to four draws in all; a redraw may pick
// the same operator. It returns the resulting push count (only AddPush
// changes it) and the mutation that fired; when no draw changed the fabric
// it returns MutationAddPush with the fabric unchanged.
func (g *Grower) ApplyRandomMutation(f *fabric.Fabric, pushCount int, weights map[string]int) (int, MutationType) {
	order := []MutationType{MutationAddPush, MutationRemovePull, MutationShortenPull, MutationLengthenPull}
	for attempt := 0; attempt < len(order); attempt++ {
		choice := g.weightedChoice(order, weights)
		switch choice {
		case MutationAddPush:
			if g.AddPush(f) {
				return pushCount + 1, MutationAddPush
			}
		case MutationRemovePull:
			if g.RemoveRandomPull(f) {
				return pushCount, MutationRemovePull
			}
		case MutationShortenPull:
			if g.ShortenRandomPull(f) {
				return pushCount, MutationShortenPull
			}
		case MutationLengthenPull:
			if g.LengthenRandomPull(f) {
				return pushCount, MutationLengthenPull
			}
		}
	}
	return pushCount, MutationAddPush
}

func (g *Grower) weightedChoice(order []MutationType, weights map[string]int) MutationType {
	total := 0
	for _, m := range order {
		total += weights[string(m)]
	}
	if total <= 0 {
		return order[g.Decision.Choose(len(order))]
	}
	target := g.Decision.Range(0, float64(total))
	cumulative := 0.0
	for _, m := range order {
		cumulative += float64(weights[string(m)])
		if target < cumulative {
			return m
		}
	}
	return order[len(order)-1]
}

func liveJoints(f *fabric.Fabric) []fabric.JointID {
	var ids []fabric.JointID
	f.EachJoint(func(id fabric.JointID, _ *fabric.Joint) { ids = append(ids, id) })
	return ids
}

func liveIntervalsByRole(f *fabric.Fabric, role fabric.Role) []fabric.IntervalID {
	var ids []fabric.IntervalID
	f.EachInterval(func(id fabric.IntervalID, iv *fabric.Interval) {
		if iv.Role == role {
			ids = append(ids, id)
		}
	})
	return ids
}
