package shape

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/units"
)

func triangleFabric(t *testing.T) (*fabric.Fabric, []fabric.JointID) {
	t.Helper()
	f := fabric.New("t", 1000)
	a := f.CreateJoint(r3.Vec{})
	b := f.CreateJoint(r3.Vec{X: 1})
	c := f.CreateJoint(r3.Vec{X: 0.5, Y: 1})
	f.CreateInterval(a, b, fabric.RolePulling, fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0.01}, 1.0)
	f.CreateInterval(b, c, fabric.RolePulling, fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0.01}, 1.0)
	return f, []fabric.JointID{a, b, c}
}

func TestSpacerCreatesAndRemovesTemporaryIntervals(t *testing.T) {
	f, joints := triangleFabric(t)
	// An unmarked outlier widens the bounding radius so the marked pair lies
	// within the neighborhood (half the bounding radius).
	f.CreateJoint(r3.Vec{Y: 10})
	f.Mark("m", joints[0])
	f.Mark("m", joints[1])

	s := &Spacer{Mark: "m", DistanceFactor: 2.0}
	before := f.IntervalCount()
	s.Begin(f, 0, units.Seconds(1))
	if f.IntervalCount() != before+1 {
		t.Fatalf("expected one temporary interval created, got %d new", f.IntervalCount()-before)
	}
	s.End(f, 0)
	if f.IntervalCount() != before {
		t.Fatalf("expected temporary interval removed, count is %d want %d", f.IntervalCount(), before)
	}
}

func TestJoinerMergesMarkedPairs(t *testing.T) {
	f, joints := triangleFabric(t)
	// An unmarked outlier widens the bounding radius so the marked pair lies
	// within the neighborhood (half the bounding radius).
	f.CreateJoint(r3.Vec{Y: 10})
	f.Mark("end", joints[0])
	f.Mark("end", joints[2])

	j := &Joiner{Mark: "end"}
	j.Begin(f, 0, units.Seconds(1))
	j.End(f, 0)

	if f.JointCount() != 3 {
		t.Fatalf("expected 3 joints after merging the marked pair, got %d", f.JointCount())
	}
	f.CheckInvariants()
}

func TestVulcanizeAddsTwoHopConnections(t *testing.T) {
	f, _ := triangleFabric(t)
	before := f.IntervalCount()
	Vulcanize{}.Begin(f, 0, units.Seconds(0))
	if f.IntervalCount() <= before {
		t.Fatalf("expected vulcanize to add at least one closing interval")
	}
	f.CheckInvariants()
}

func TestCentralizeMovesCentroidToAltitude(t *testing.T) {
	f, _ := triangleFabric(t)
	altitude := 50.0
	c := Centralize{Altitude: &altitude}
	c.Begin(f, 0, units.Seconds(0))
	mid := f.Midpoint()
	if math.Abs(mid.Y-altitude) > 1e-9 {
		t.Fatalf("expected centroid altitude %v, got %v", altitude, mid.Y)
	}
}

func TestPointDownwardsAlignsMarkedClusterWithMinusY(t *testing.T) {
	f := fabric.New("t", 1000)
	a := f.CreateJoint(r3.Vec{})
	b := f.CreateJoint(r3.Vec{X: 5})
	f.CreateInterval(a, b, fabric.RolePulling, fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0.01}, 1.0)
	f.Mark("tip", b)

	p := PointDownwards{Mark: "tip"}
	p.Begin(f, 0, units.Seconds(0))

	mid := f.Midpoint()
	tip := f.Joint(b).Loc.Current()
	direction := r3.Unit(r3.Sub(tip, mid))
	if got := r3.Dot(direction, r3.Vec{Y: -1}); got < 0.999 {
		t.Fatalf("expected marked cluster to point along -Y, direction=%v dot=%v", direction, got)
	}
}

func TestPhaseRunsStepsInOrderAndTerminates(t *testing.T) {
	f, joints := triangleFabric(t)
	f.Mark("m", joints[0])
	f.Mark("m", joints[1])

	phase := NewPhase(
		Step{During: units.Seconds(0.001), Action: &Spacer{Mark: "m", DistanceFactor: 1.1}},
		Step{During: units.Seconds(0), Action: Vulcanize{}},
	)

	cmd := phase.Tick(f, 0)
	if cmd.Kind != CommandStartProgress {
		t.Fatalf("expected first tick to start progress, got %v", cmd.Kind)
	}

	age := units.Age(units.Seconds(1).Ticks())
	var last Command
	for i := 0; i < 10; i++ {
		last = phase.Tick(f, age)
		age++
		if last.Kind == CommandTerminate {
			break
		}
	}
	if last.Kind != CommandTerminate {
		t.Fatalf("expected phase to terminate after exhausting steps, last=%v", last.Kind)
	}
}
