package assembly

import (
	"testing"

	"github.com/tensegral/fabricator/bricks"
	"github.com/tensegral/fabricator/fabric"
)

func newGrower(t *testing.T) (*Grower, *fabric.Fabric) {
	t.Helper()
	f := fabric.New("t", 1000)
	lib := bricks.NewLibrary()
	template := bricks.IntervalTemplate{Material: fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0.01}}
	return NewGrower(f, lib, template, template), f
}

func TestPlaceSeedInstantiatesBaseFaces(t *testing.T) {
	g, f := newGrower(t)
	seed := Branching("Single", fabric.RoleSeed)
	inst, err := g.PlaceSeed(seed, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inst.Joints) != 6 {
		t.Fatalf("expected 6 joints, got %d", len(inst.Joints))
	}
	if _, ok := inst.FaceIDs["Base"]; !ok {
		t.Fatalf("expected a Base face")
	}
	if _, ok := inst.FaceIDs["Top"]; !ok {
		t.Fatalf("expected a Top face")
	}
	if f.JointCount() != 6 {
		t.Fatalf("expected 6 live joints on fabric, got %d", f.JointCount())
	}
}

func TestExtendColumnJoinsFacesAndShrinksJointCount(t *testing.T) {
	g, f := newGrower(t)
	seed := Branching("Single", fabric.RoleSeed)
	inst, err := g.PlaceSeed(seed, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top := inst.FaceIDs["Top"]

	branch := Growing(2).Scale(0.9).AsChiral()
	_, marked, err := g.ExtendColumn(top, branch, "Single")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(marked) != 6 {
		t.Fatalf("expected final brick's 6 joints returned, got %d", len(marked))
	}

	// Seed (6) + 2 column bricks (6 each) with a 3-joint merge at each of
	// the 2 joins: 6 + 6 - 3 + 6 - 3 = 12.
	if f.JointCount() != 12 {
		t.Fatalf("expected 12 live joints after two face-joined column steps, got %d", f.JointCount())
	}
	f.CheckInvariants()
}

func TestGrowOnFaceRejectsUnknownBrick(t *testing.T) {
	g, f := newGrower(t)
	seed := Branching("Single", fabric.RoleSeed)
	inst, err := g.PlaceSeed(seed, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = f
	if _, err := g.GrowOnFace(inst.FaceIDs["Top"], "NoSuchBrick", fabric.RoleOnSpinLeft, 1.0); err == nil {
		t.Fatalf("expected error for unknown brick family")
	}
}
