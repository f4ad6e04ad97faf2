package bricks

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/fabric"
)

func TestSingleTwistBakesToSixJoints(t *testing.T) {
	b := Bake(SingleTwistPrototype())
	if len(b.Joints) != 6 {
		t.Fatalf("expected 6 joints, got %d", len(b.Joints))
	}
	if len(b.Pushes) != 3 {
		t.Fatalf("expected 3 pushes, got %d", len(b.Pushes))
	}
	if len(b.Pulls) != 9 {
		t.Fatalf("expected 9 pulls, got %d", len(b.Pulls))
	}
	if len(b.Faces) != 2 {
		t.Fatalf("expected 2 named faces, got %d", len(b.Faces))
	}
}

func TestTorqueHasNinePushes(t *testing.T) {
	b := Bake(TorquePrototype())
	if len(b.Joints) != 12 {
		t.Fatalf("expected 12 joints, got %d", len(b.Joints))
	}
	if len(b.Pushes) != 9 {
		t.Fatalf("expected 9 pushes, got %d", len(b.Pushes))
	}
}

func TestOmniHasTwelveJointsSixPushes(t *testing.T) {
	b := Bake(OmniPrototype())
	if len(b.Joints) != 12 {
		t.Fatalf("expected 12 joints, got %d", len(b.Joints))
	}
	if len(b.Pushes) != 6 {
		t.Fatalf("expected 6 pushes, got %d", len(b.Pushes))
	}
	seen := make(map[int]bool)
	for _, ps := range b.Pushes {
		if seen[ps.Alpha] || seen[ps.Omega] {
			t.Fatalf("expected no shared vertices between Omni pushes")
		}
		seen[ps.Alpha], seen[ps.Omega] = true, true
	}
}

func TestBakedBricksAreCentroidAligned(t *testing.T) {
	for _, proto := range []*Prototype{SingleTwistPrototype(), TorquePrototype(), OmniPrototype()} {
		b := Bake(proto)
		var sum r3.Vec
		for _, j := range b.Joints {
			sum = r3.Add(sum, j)
		}
		centroid := r3.Scale(1/float64(len(b.Joints)), sum)
		if r3.Norm(centroid) > 1e-9 {
			t.Fatalf("%s: expected centroid at origin, got %v", proto.Name, centroid)
		}
	}
}

func TestMirrorFlipsChirality(t *testing.T) {
	b := Bake(SingleTwistPrototype())
	m := b.Mirror()
	for i := range b.Faces {
		if m.Faces[i].Spin == b.Faces[i].Spin {
			t.Fatalf("expected mirrored brick to flip face spin")
		}
	}
	for i, j := range b.Joints {
		if math.Abs(m.Joints[i].X+j.X) > 1e-12 {
			t.Fatalf("expected X coordinate negated under mirror")
		}
	}
}

func TestInstantiatePlacesJointsAndFiltersFacesByRole(t *testing.T) {
	lib := NewLibrary()
	b, err := lib.Get("Single")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := fabric.New("t", 1000)
	identity := func(p r3.Vec) r3.Vec { return p }
	template := IntervalTemplate{Material: fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0.01}}

	ids := Instantiate(f, b, identity, fabric.RoleSeed, template, template)
	if len(ids) != 6 {
		t.Fatalf("expected 6 joint ids, got %d", len(ids))
	}
	if f.JointCount() != 6 {
		t.Fatalf("expected 6 live joints, got %d", f.JointCount())
	}
	if f.IntervalCount() != 12 {
		t.Fatalf("expected 12 live intervals, got %d", f.IntervalCount())
	}
	if f.FaceCount() != 2 {
		t.Fatalf("expected both Base and Top faces visible under Seed role, got %d", f.FaceCount())
	}
}

func TestGetChiralMirrorsOnSpinRight(t *testing.T) {
	lib := NewLibrary()
	left, err := lib.GetChiral("Single", fabric.SpinLeft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	right, err := lib.GetChiral("Single", fabric.SpinRight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range left.Joints {
		if math.Abs(right.Joints[i].X+left.Joints[i].X) > 1e-12 {
			t.Fatalf("expected chiral mirror to negate X")
		}
	}
}

func TestComposeChainsTransformsLeftToRight(t *testing.T) {
	scale := Scale(2)
	rotate := RotationAboutY(math.Pi / 2)
	composed := Compose(scale, rotate)
	got := composed(r3.Vec{X: 1})
	want := rotate(scale(r3.Vec{X: 1}))
	if r3.Norm(r3.Sub(got, want)) > 1e-12 {
		t.Fatalf("expected Compose to apply transforms in order, got %v want %v", got, want)
	}
}
