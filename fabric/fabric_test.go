package fabric

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/units"
)

func TestCreateIntervalRequiresLiveJoints(t *testing.T) {
	f := New("t", 1000)
	a := f.CreateJoint(r3.Vec{})
	b := f.CreateJoint(r3.Vec{X: 1})
	id := f.CreateInterval(a, b, RolePulling, Material{StiffnessPerLength: 1, LinearDensity: 0.01}, 1.0)
	if !f.IntervalAlive(id) {
		t.Fatalf("expected interval to be alive")
	}
}

func TestCreateIntervalPanicsOnDeadJoint(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on dead joint reference")
		}
	}()
	f := New("t", 1000)
	a := f.CreateJoint(r3.Vec{})
	f.CreateInterval(a, JointID(99), RolePulling, Material{StiffnessPerLength: 1}, 1.0)
}

func TestRemoveJointWithIncidentIntervalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic removing a joint with an incident interval")
		}
	}()
	f := New("t", 1000)
	a := f.CreateJoint(r3.Vec{})
	b := f.CreateJoint(r3.Vec{X: 1})
	f.CreateInterval(a, b, RolePulling, Material{StiffnessPerLength: 1}, 1.0)
	f.RemoveJoint(a)
}

func TestCentralizeIdempotence(t *testing.T) {
	f := New("t", 1000)
	f.CreateJoint(r3.Vec{X: 1, Y: 5, Z: -2})
	f.CreateJoint(r3.Vec{X: -3, Y: 2, Z: 4})
	altitude := 10.0

	v1 := f.CentralizeTranslation(&altitude)
	f.ApplyTranslation(v1)
	mid1 := f.Midpoint()

	v2 := f.CentralizeTranslation(&altitude)
	f.ApplyTranslation(v2)
	mid2 := f.Midpoint()

	const eps = 1e-9
	if diff := r3.Norm(r3.Sub(mid1, mid2)); diff > eps {
		t.Fatalf("centralize is not idempotent: %v vs %v (diff %v)", mid1, mid2, diff)
	}
	if diff := r3.Norm(r3.Sub(mid2, r3.Vec{X: 0, Y: altitude, Z: 0})); diff > eps {
		t.Fatalf("expected centroid at altitude, got %v", mid2)
	}
}

func TestCheckInvariantsPassesOnCleanFabric(t *testing.T) {
	f := New("t", 1000)
	a := f.CreateJoint(r3.Vec{})
	b := f.CreateJoint(r3.Vec{X: 1})
	f.CreateInterval(a, b, RolePulling, Material{StiffnessPerLength: 1}, 1.0)
	f.CheckInvariants() // must not panic
}

func TestAttachmentReciprocity(t *testing.T) {
	f := New("t", 1000)
	a := f.CreateJoint(r3.Vec{})
	b := f.CreateJoint(r3.Vec{X: 1})
	push := f.CreateInterval(a, b, RolePushing, Material{StiffnessPerLength: 1}, 1.0)
	pushIv := f.Interval(push)
	pushIv.Attachments = []AttachmentSlot{{OnAlphaEnd: true, Pull: Invalid}}

	c := f.CreateJoint(r3.Vec{X: 2})
	pull := f.CreateInterval(a, c, RolePulling, Material{StiffnessPerLength: 1}, 1.0)

	if err := f.AttachPull(push, 0, pull); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.CheckInvariants()

	f.RemoveInterval(pull)
	if f.Interval(push).Attachments[0].Pull != Invalid {
		t.Fatalf("expected attachment slot cleared after pull removal")
	}
}

func TestApproachingSpanResolution(t *testing.T) {
	span := NewApproachingSpan(10, 20, units.Age(0), units.Seconds(1.0))
	if got := span.IdealLength(units.Age(0)); got != 10 {
		t.Fatalf("expected exact start value, got %v", got)
	}
	end := units.Age(units.Seconds(1.0).Ticks())
	if got := span.IdealLength(end); got != 20 {
		t.Fatalf("expected exact end value, got %v", got)
	}
	mid := units.Age(units.Seconds(0.5).Ticks())
	got := span.IdealLength(mid)
	if got < 10 || got > 20 {
		t.Fatalf("expected linear midpoint within bounds, got %v", got)
	}
}
