package bricks

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/units"
)

// BakedPush and BakedPull are numeric, index-based interval templates: the
// joint-tag resolution a Prototype carries has already been thrown away.
type BakedPush struct {
	Alpha, Omega int
	Length       float64
	// Strain is the residual mismatch between the authored coordinates'
	// actual separation and the declared rest length, carried through so a
	// brick that is not in perfect equilibrium still reports an honest
	// number instead of a silently wrong rest length.
	Strain float64
}

type BakedPull struct {
	Alpha, Omega int
	Length       float64
	Strain       float64
}

// BakedFace is a numeric face template: joint indices into BakedBrick.Joints,
// a chirality, and its role-conditioned alias list.
type BakedFace struct {
	Joints  [3]int
	Spin    fabric.Spin
	Aliases []fabric.Alias
}

// BakedBrick is the catalogue's unit of storage: a brick prototype resolved
// to plain numeric data, centroid-aligned to the origin. Instantiate
// produces a rigidly transformed, role-filtered copy of one of these against
// a live Fabric.
type BakedBrick struct {
	Name   string
	Joints []r3.Vec
	Pushes []BakedPush
	Pulls  []BakedPull
	Faces  []BakedFace
}

// Bake resolves a fluent Prototype into a BakedBrick: every joint tag used
// across pushes, pulls, and faces is assigned a stable index (first-seen
// order), coordinates are recentered on the joint centroid, and each
// push/pull's residual strain against its authored coordinates is recorded.
func Bake(p *Prototype) BakedBrick {
	if len(p.order) == 0 {
		panic(fmt.Sprintf("bricks: prototype %q has no registered joints", p.Name))
	}

	index := make(map[JointTag]int, len(p.order))
	var centroid r3.Vec
	for i, tag := range p.order {
		index[tag] = i
		centroid = r3.Add(centroid, p.positions[tag])
	}
	centroid = r3.Scale(1/float64(len(p.order)), centroid)

	joints := make([]r3.Vec, len(p.order))
	for i, tag := range p.order {
		joints[i] = r3.Sub(p.positions[tag], centroid)
	}

	resolve := func(tag JointTag) int {
		idx, ok := index[tag]
		if !ok {
			panic(fmt.Sprintf("bricks: prototype %q references unregistered joint %q", p.Name, tag))
		}
		return idx
	}

	pushes := make([]BakedPush, len(p.pushes))
	for i, ps := range p.pushes {
		a, b := resolve(ps.alpha), resolve(ps.omega)
		actual := r3.Norm(r3.Sub(joints[b], joints[a]))
		pushes[i] = BakedPush{Alpha: a, Omega: b, Length: ps.length, Strain: (actual - ps.length) / ps.length}
	}

	pulls := make([]BakedPull, len(p.pulls))
	for i, ps := range p.pulls {
		a, b := resolve(ps.alpha), resolve(ps.omega)
		actual := r3.Norm(r3.Sub(joints[b], joints[a]))
		pulls[i] = BakedPull{Alpha: a, Omega: b, Length: ps.length, Strain: (actual - ps.length) / ps.length}
	}

	faces := make([]BakedFace, len(p.faces))
	for i, fs := range p.faces {
		faces[i] = BakedFace{
			Joints:  [3]int{resolve(fs.tags[0]), resolve(fs.tags[1]), resolve(fs.tags[2])},
			Spin:    fs.spin,
			Aliases: fs.aliases,
		}
	}

	return BakedBrick{Name: p.Name, Joints: joints, Pushes: pushes, Pulls: pulls, Faces: faces}
}

// Mirror returns a copy of b reflected through the YZ plane (X negated), flipping the
// chirality of every face. Used to derive a brick's "OnSpinRight" sibling
// from its authored "OnSpinLeft" geometry without a second Prototype.
func (b BakedBrick) Mirror() BakedBrick {
	out := BakedBrick{Name: b.Name, Joints: make([]r3.Vec, len(b.Joints)), Pushes: append([]BakedPush(nil), b.Pushes...), Pulls: append([]BakedPull(nil), b.Pulls...)}
	for i, j := range b.Joints {
		out.Joints[i] = r3.Vec{X: -j.X, Y: j.Y, Z: j.Z}
	}
	out.Faces = make([]BakedFace, len(b.Faces))
	for i, f := range b.Faces {
		mirrored := f
		mirrored.Spin = flipSpin(f.Spin)
		out.Faces[i] = mirrored
	}
	return out
}

func flipSpin(s fabric.Spin) fabric.Spin {
	if s == fabric.SpinLeft {
		return fabric.SpinRight
	}
	return fabric.SpinLeft
}

// Material and muscle hooks are supplied by the caller (Instantiate), since
// a brick family, not the catalogue, decides a push's stiffness budget.
type IntervalTemplate struct {
	Material fabric.Material
	Muscle   *fabric.MuscleGroup
}

// Instantiate materializes a baked brick into live joints, intervals, and
// faces on f, transformed by placement (already composed by the caller to
// account for scale, rotation, and translation) and filtered to the faces
// visible under role. It returns the new joint ids in BakedBrick.Joints
// order, so the caller can resolve Mark-style references to brick corners.
func Instantiate(f *fabric.Fabric, b BakedBrick, placement func(r3.Vec) r3.Vec, role fabric.BrickRole, pushTemplate, pullTemplate IntervalTemplate) []fabric.JointID {
	jointIDs := make([]fabric.JointID, len(b.Joints))
	for i, p := range b.Joints {
		jointIDs[i] = f.CreateJoint(placement(p))
	}

	for _, ps := range b.Pushes {
		length := ps.Length
		if length <= 0 {
			length = 1e-6
		}
		id := f.CreateInterval(jointIDs[ps.Alpha], jointIDs[ps.Omega], fabric.RolePushing, pushTemplate.Material, length)
		if pushTemplate.Muscle != nil {
			iv := f.Interval(id)
			m := *pushTemplate.Muscle
			iv.Muscle = &m
		}
	}
	for _, ps := range b.Pulls {
		length := ps.Length
		if length <= 0 {
			length = 1e-6
		}
		id := f.CreateInterval(jointIDs[ps.Alpha], jointIDs[ps.Omega], fabric.RolePulling, pullTemplate.Material, length)
		if pullTemplate.Muscle != nil {
			iv := f.Interval(id)
			m := *pullTemplate.Muscle
			iv.Muscle = &m
		}
	}

	for _, fc := range b.Faces {
		names := (&fabric.Face{Aliases: fc.Aliases}).NamesForRole(role)
		if len(fc.Aliases) > 0 && len(names) == 0 {
			continue // face not visible under this role
		}
		triple := [3]fabric.JointID{jointIDs[fc.Joints[0]], jointIDs[fc.Joints[1]], jointIDs[fc.Joints[2]]}
		f.AddFace(triple, fc.Spin, fc.Aliases)
	}
	return jointIDs
}

// Scale returns a placement function that only applies a uniform scale
// factor (millimeters per model unit) with no rotation or translation,
// suitable for a brick placed directly at a fabric's root.
func Scale(factor units.Millimeters) func(r3.Vec) r3.Vec {
	s := float64(factor)
	return func(p r3.Vec) r3.Vec { return r3.Scale(s, p) }
}

// RotationAboutY returns a rotation-only transform about the Y axis. Column
// growth does not use it; it alternates chirality with mirrored bricks.
func RotationAboutY(radians float64) func(r3.Vec) r3.Vec {
	c, s := math.Cos(radians), math.Sin(radians)
	return func(p r3.Vec) r3.Vec {
		return r3.Vec{X: c*p.X + s*p.Z, Y: p.Y, Z: -s*p.X + c*p.Z}
	}
}

// Compose chains placement functions left to right: Compose(a, b)(p) is
// b(a(p)).
func Compose(fns ...func(r3.Vec) r3.Vec) func(r3.Vec) r3.Vec {
	return func(p r3.Vec) r3.Vec {
		for _, fn := range fns {
			p = fn(p)
		}
		return p
	}
}
