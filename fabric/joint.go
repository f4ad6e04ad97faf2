package fabric

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/location"
)

// AmbientMass is the minimum effective mass every joint carries even with
// no incident intervals, preventing division by zero during integration.
const AmbientMass = 0.001

// Joint is a point mass with history-tracked position. Mass is derived each
// tick from half the linear density times ideal length of every incident
// interval; LocationFixed joints are never integrated.
type Joint struct {
	Loc            location.Location
	Velocity       r3.Vec
	Force          r3.Vec
	IntervalMass   float64
	LocationFixed  bool
}

// NewJoint creates a joint at the given position with zero velocity/force.
func NewJoint(pos r3.Vec) Joint {
	return Joint{
		Loc:          location.New(pos),
		IntervalMass: AmbientMass,
	}
}

// ResetForTick clears the per-tick force accumulator and mass contribution
// ahead of the interval force pass. Called once per joint per tick, before
// any interval reads or writes it.
func (j *Joint) ResetForTick() {
	j.Force = r3.Vec{}
	j.IntervalMass = AmbientMass
}

// CreateJoint adds a new joint to the fabric and returns its id.
func (f *Fabric) CreateJoint(pos r3.Vec) JointID {
	return JointID(f.joints.insert(NewJoint(pos)))
}

// Joint returns a pointer to the live joint with the given id, or nil.
func (f *Fabric) Joint(id JointID) *Joint {
	return f.joints.get(int(id))
}

// JointAlive reports whether id currently references a live joint.
func (f *Fabric) JointAlive(id JointID) bool {
	return f.joints.isAlive(int(id))
}

// RemoveJoint deletes a joint. Per invariant, a joint with any incident
// interval cannot be removed; this is a structural-invariant violation and
// is fatal, since it indicates a bug in the caller's topology bookkeeping
// rather than a transient condition.
func (f *Fabric) RemoveJoint(id JointID) {
	f.intervals.each(func(_ int, iv *Interval) {
		if iv.Alpha == id || iv.Omega == id {
			panic("fabric: cannot remove joint with incident interval")
		}
	})
	f.joints.remove(int(id))
}

// EachJoint visits every live joint.
func (f *Fabric) EachJoint(fn func(id JointID, j *Joint)) {
	f.joints.each(func(id int, j *Joint) { fn(JointID(id), j) })
}

// JointCount returns the number of live joints.
func (f *Fabric) JointCount() int { return f.joints.len() }
