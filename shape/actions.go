package shape

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/units"
)

// neighborhoodFraction bounds how far apart two marked joints may be for
// Spacer/Joiner to consider them a pair: a fraction of the fabric's
// bounding radius at the time the step begins.
const neighborhoodFraction = 0.5

func markedPairs(f *fabric.Fabric, mark string, maxDistance float64) [][2]fabric.JointID {
	joints := f.Marks[mark]
	var pairs [][2]fabric.JointID
	for i := 0; i < len(joints); i++ {
		for j := i + 1; j < len(joints); j++ {
			a, b := joints[i], joints[j]
			if !f.JointAlive(a) || !f.JointAlive(b) {
				continue
			}
			d := r3.Norm(r3.Sub(f.Joint(b).Loc.Current(), f.Joint(a).Loc.Current()))
			if d <= maxDistance {
				pairs = append(pairs, [2]fabric.JointID{a, b})
			}
		}
	}
	return pairs
}

// Spacer pushes every pair of joints tagged Mark that lie within a
// neighborhood apart to DistanceFactor times their current separation, via
// a temporary Pushing interval removed once the step ends.
type Spacer struct {
	Mark           string
	DistanceFactor float64

	created []fabric.IntervalID
}

func (s *Spacer) Begin(f *fabric.Fabric, now units.Age, duration units.Seconds) {
	material := fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0}
	for _, pr := range markedPairs(f, s.Mark, f.BoundingRadius()*neighborhoodFraction) {
		a, b := pr[0], pr[1]
		current := r3.Norm(r3.Sub(f.Joint(b).Loc.Current(), f.Joint(a).Loc.Current()))
		if current <= 0 {
			continue
		}
		id := f.CreateInterval(a, b, fabric.RolePushing, material, s.DistanceFactor*current)
		s.created = append(s.created, id)
	}
}

func (s *Spacer) Step(f *fabric.Fabric, now units.Age) {}

func (s *Spacer) End(f *fabric.Fabric, now units.Age) {
	for _, id := range s.created {
		if f.IntervalAlive(id) {
			f.RemoveInterval(id)
		}
	}
	s.created = nil
}

// Joiner shortens an Approaching Pulling interval between every pair of
// joints tagged Mark within a neighborhood down to zero over the step's
// duration, then merges each pair (as a face join would).
type Joiner struct {
	Mark string

	pairs   [][2]fabric.JointID
	created []fabric.IntervalID
}

func (j *Joiner) Begin(f *fabric.Fabric, now units.Age, duration units.Seconds) {
	material := fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0}
	j.pairs = markedPairs(f, j.Mark, f.BoundingRadius()*neighborhoodFraction)
	for _, pr := range j.pairs {
		a, b := pr[0], pr[1]
		current := r3.Norm(r3.Sub(f.Joint(b).Loc.Current(), f.Joint(a).Loc.Current()))
		if current <= 0 {
			continue
		}
		id := f.CreateInterval(a, b, fabric.RolePulling, material, current)
		iv := f.Interval(id)
		iv.Span = fabric.NewApproachingSpan(current, 1e-6, now, duration)
		j.created = append(j.created, id)
	}
}

func (j *Joiner) Step(f *fabric.Fabric, now units.Age) {}

func (j *Joiner) End(f *fabric.Fabric, now units.Age) {
	for _, id := range j.created {
		if f.IntervalAlive(id) {
			f.RemoveInterval(id)
		}
	}
	j.created = nil
	for _, pr := range j.pairs {
		if f.JointAlive(pr[0]) && f.JointAlive(pr[1]) {
			f.MergeJoints(pr[0], pr[1])
		}
	}
	j.pairs = nil
}

// Vulcanize adds a permanent Pulling interval between every pair of joints
// whose push/pull graph distance is exactly 2 hops and that are not
// already directly connected, closing the structure into a fully
// triangulated network.
type Vulcanize struct{}

func (Vulcanize) Begin(f *fabric.Fabric, now units.Age, duration units.Seconds) {
	adjacency := make(map[fabric.JointID]map[fabric.JointID]bool)
	addEdge := func(a, b fabric.JointID) {
		if adjacency[a] == nil {
			adjacency[a] = make(map[fabric.JointID]bool)
		}
		adjacency[a][b] = true
	}
	f.EachInterval(func(_ fabric.IntervalID, iv *fabric.Interval) {
		addEdge(iv.Alpha, iv.Omega)
		addEdge(iv.Omega, iv.Alpha)
	})

	material := fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0.01}
	seen := make(map[[2]fabric.JointID]bool)
	f.EachJoint(func(a fabric.JointID, _ *fabric.Joint) {
		for b1 := range adjacency[a] {
			for c := range adjacency[b1] {
				if c == a || adjacency[a][c] {
					continue
				}
				key := orderedPair(a, c)
				if seen[key] {
					continue
				}
				seen[key] = true
				dist := r3.Norm(r3.Sub(f.Joint(c).Loc.Current(), f.Joint(a).Loc.Current()))
				if dist <= 0 {
					continue
				}
				f.CreateInterval(a, c, fabric.RolePulling, material, dist)
			}
		}
	})
}

func orderedPair(a, b fabric.JointID) [2]fabric.JointID {
	if a < b {
		return [2]fabric.JointID{a, b}
	}
	return [2]fabric.JointID{b, a}
}

func (Vulcanize) Step(f *fabric.Fabric, now units.Age) {}
func (Vulcanize) End(f *fabric.Fabric, now units.Age)  {}

// Centralize translates the fabric (and every joint's full history) so its
// centroid lies at (0, Altitude, 0), or keeps the current altitude when
// Altitude is nil.
type Centralize struct {
	Altitude *float64
}

func (c Centralize) Begin(f *fabric.Fabric, now units.Age, duration units.Seconds) {
	v := f.CentralizeTranslation(c.Altitude)
	f.ApplyTranslation(v)
}
func (Centralize) Step(f *fabric.Fabric, now units.Age) {}
func (Centralize) End(f *fabric.Fabric, now units.Age)  {}

// PointDownwards rotates the fabric so the centroid of the joints tagged
// Mark points along -Y, applying a rotation matrix about the fabric's
// centroid.
type PointDownwards struct {
	Mark string
}

func (p PointDownwards) Begin(f *fabric.Fabric, now units.Age, duration units.Seconds) {
	joints := f.Marks[p.Mark]
	if len(joints) == 0 {
		return
	}
	mid := f.Midpoint()
	var sum r3.Vec
	n := 0
	for _, id := range joints {
		if !f.JointAlive(id) {
			continue
		}
		sum = r3.Add(sum, f.Joint(id).Loc.Current())
		n++
	}
	if n == 0 {
		return
	}
	clusterCentroid := r3.Scale(1/float64(n), sum)
	direction := r3.Sub(clusterCentroid, mid)
	if r3.Norm(direction) < 1e-9 {
		return
	}
	// Rotate about the fabric's own centroid, not the world origin: shift
	// it to the origin, rotate, then shift back.
	f.ApplyTranslation(r3.Scale(-1, mid))
	f.ApplyMatrix(rotationMatrixTo(direction, r3.Vec{Y: -1}))
	f.ApplyTranslation(mid)
}
func (PointDownwards) Step(f *fabric.Fabric, now units.Age) {}
func (PointDownwards) End(f *fabric.Fabric, now units.Age)  {}
