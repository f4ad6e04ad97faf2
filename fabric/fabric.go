// Package fabric is the arena-based store for a tensegrity structure: the
// joint and interval arenas, the face map, and the bookkeeping (age,
// progress, build marks) that the rest of the system operates on.
package fabric

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/units"
)

// Fabric is the aggregate structure: joints, intervals, faces, and the
// bookkeeping that growth, shaping, and physics all share.
type Fabric struct {
	Name  string
	Scale units.Millimeters
	Age   units.Age

	// CyclePhase is the global muscle-cycle phase in [0,1), advanced once
	// per tick by the physics engine.
	CyclePhase float64

	// Frozen is set when the plan runner reaches Completed (after Settle, or
	// after Pretensing for a plan with no Settle); the runner integrates no
	// further after that.
	Frozen bool

	// Marks are named reference points registered during Build, consumed
	// by Shape operations (Spacer/Joiner) that need to find joints by tag.
	Marks map[string][]JointID

	joints    arena[Joint]
	intervals arena[Interval]
	faces     arena[Face]

	cachedMidpoint       *r3.Vec
	cachedBoundingRadius *float64
}

// New creates an empty, unfrozen fabric.
func New(name string, scale units.Millimeters) *Fabric {
	return &Fabric{
		Name:  name,
		Scale: scale,
		Marks: make(map[string][]JointID),
	}
}

// Tick advances Age by one and invalidates caches that depend on joint
// position. Called once per physics tick, after the joint integration pass.
func (f *Fabric) Tick() {
	f.Age++
	f.invalidateCaches()
}

func (f *Fabric) invalidateCaches() {
	f.cachedMidpoint = nil
	f.cachedBoundingRadius = nil
}

// Mark registers joint under the given mark name.
func (f *Fabric) Mark(name string, joint JointID) {
	f.Marks[name] = append(f.Marks[name], joint)
}

// ApplyTranslation moves every live joint (and its full position history) by
// v.
func (f *Fabric) ApplyTranslation(v r3.Vec) {
	f.joints.each(func(_ int, j *Joint) {
		j.Loc.Translate(v)
	})
	f.invalidateCaches()
}

// ApplyMatrix transforms every live joint's full position history by m, a
// 4x4 homogeneous matrix.
func (f *Fabric) ApplyMatrix(m *mat.Dense) {
	f.joints.each(func(_ int, j *Joint) {
		j.Loc.Transform(m)
	})
	f.invalidateCaches()
}

// Midpoint returns the centroid of all live joints' current positions.
func (f *Fabric) Midpoint() r3.Vec {
	if f.cachedMidpoint != nil {
		return *f.cachedMidpoint
	}
	var sum r3.Vec
	n := 0
	f.joints.each(func(_ int, j *Joint) {
		sum = r3.Add(sum, j.Loc.Current())
		n++
	})
	var mid r3.Vec
	if n > 0 {
		mid = r3.Scale(1.0/float64(n), sum)
	}
	f.cachedMidpoint = &mid
	return mid
}

// BoundingRadius returns the maximum distance from the centroid to any live
// joint.
func (f *Fabric) BoundingRadius() float64 {
	if f.cachedBoundingRadius != nil {
		return *f.cachedBoundingRadius
	}
	mid := f.Midpoint()
	var maxR float64
	f.joints.each(func(_ int, j *Joint) {
		d := r3.Norm(r3.Sub(j.Loc.Current(), mid))
		if d > maxR {
			maxR = d
		}
	})
	f.cachedBoundingRadius = &maxR
	return maxR
}

// AltitudeRange returns the minimum and maximum Y coordinate across all live
// joints.
func (f *Fabric) AltitudeRange() (min, max float64) {
	first := true
	f.joints.each(func(_ int, j *Joint) {
		y := j.Loc.Current().Y
		if first {
			min, max = y, y
			first = false
			return
		}
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	})
	return min, max
}

// CentralizeTranslation computes the translation that would put the
// centroid at (0, altitude, 0). If altitude is nil, the current Y of the
// centroid is kept (only X/Z are recentered).
func (f *Fabric) CentralizeTranslation(altitude *float64) r3.Vec {
	mid := f.Midpoint()
	targetY := mid.Y
	if altitude != nil {
		targetY = *altitude
	}
	return r3.Vec{X: -mid.X, Y: targetY - mid.Y, Z: -mid.Z}
}

// MergeJoints absorbs discard into keep: keep's position becomes the
// average of the two, every interval incident on discard is rerouted to
// keep (an interval that would become a self-loop is removed instead), and
// discard is finally removed.
func (f *Fabric) MergeJoints(keep, discard JointID) {
	if keep == discard {
		return
	}
	keepJoint := f.Joint(keep)
	discardJoint := f.Joint(discard)
	if keepJoint == nil || discardJoint == nil {
		return
	}
	avg := r3.Scale(0.5, r3.Add(keepJoint.Loc.Current(), discardJoint.Loc.Current()))
	keepJoint.Loc.Update(avg)

	var toRemove []IntervalID
	f.EachInterval(func(id IntervalID, iv *Interval) {
		switch discard {
		case iv.Alpha:
			iv.Alpha = keep
		case iv.Omega:
			iv.Omega = keep
		default:
			return
		}
		if iv.Alpha == iv.Omega {
			toRemove = append(toRemove, id)
		}
	})
	for _, id := range toRemove {
		f.RemoveInterval(id)
	}
	f.RemoveJoint(discard)
}

// Stats summarizes the fabric's dynamic state: total kinetic energy and the
// maximum absolute strain across live intervals.
type Stats struct {
	KineticEnergy float64
	MaxStrain     float64
	MaxSpeed      float64
}

// StatsWithDynamics computes kinetic energy (1/2 m v^2 summed over joints)
// and the maximum interval strain. Not cached: strains and velocities
// change every tick.
func (f *Fabric) StatsWithDynamics() Stats {
	var s Stats
	f.joints.each(func(_ int, j *Joint) {
		speed2 := r3.Dot(j.Velocity, j.Velocity)
		s.KineticEnergy += 0.5 * j.IntervalMass * speed2
		speed := math.Sqrt(speed2)
		if speed > s.MaxSpeed {
			s.MaxSpeed = speed
		}
	})
	f.intervals.each(func(_ int, iv *Interval) {
		a := math.Abs(iv.Strain)
		if a > s.MaxStrain {
			s.MaxStrain = a
		}
	})
	return s
}

// CheckInvariants validates arena integrity: every live interval's
// endpoints are live joints, every occupied push attachment slot points to
// a live pull and vice versa, and every face's joints are live. It panics
// with a diagnostic on the first violation found, since these are
// structural bugs rather than transient conditions.
func (f *Fabric) CheckInvariants() {
	f.intervals.each(func(id int, iv *Interval) {
		if !f.JointAlive(iv.Alpha) || !f.JointAlive(iv.Omega) {
			panic("fabric: invariant violation: interval references a dead joint")
		}
		if iv.Role == RolePushing {
			for _, slot := range iv.Attachments {
				if slot.Pull == Invalid {
					continue
				}
				pull := f.Interval(slot.Pull)
				if pull == nil {
					panic("fabric: invariant violation: push attachment slot references a dead pull")
				}
				if pull.AttachedTo == nil || pull.AttachedTo.Push != IntervalID(id) {
					panic("fabric: invariant violation: attachment is not reciprocal")
				}
			}
		}
	})
	f.faces.each(func(_ int, fc *Face) {
		for _, j := range fc.Joints {
			if !f.JointAlive(j) {
				panic("fabric: invariant violation: face references a dead joint")
			}
		}
	})
}
