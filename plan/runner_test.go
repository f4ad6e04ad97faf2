package plan

import (
	"testing"

	"github.com/tensegral/fabricator/assembly"
	"github.com/tensegral/fabricator/bricks"
	"github.com/tensegral/fabricator/config"
	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/physics"
	"github.com/tensegral/fabricator/units"
)

func testTemplate() bricks.IntervalTemplate {
	return bricks.IntervalTemplate{Material: fabric.Material{StiffnessPerLength: 1e-2, LinearDensity: 0.01}}
}

func newRunner(t *testing.T, root *assembly.Node) *Runner {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	lib := bricks.NewLibrary()
	built := Fabric("t", 1000).
		Seed(root).
		Pretense(3.0, 0.05).
		Falling(physics.SurfaceFrozen, 0.05, 0.05, 1e-3).
		Build()
	return New(built, lib, cfg, testTemplate(), testTemplate())
}

func TestRunnerSingleSeedReachesCompletion(t *testing.T) {
	root := assembly.Branching("Single", fabric.RoleSeed)
	r := newRunner(t, root)

	var events []Event
	r.Events = func(e Event) { events = append(events, e) }

	if ok := r.RunToCompletion(2_000_000); !ok {
		t.Fatalf("runner did not reach a terminal stage within the tick budget")
	}
	if r.Disabled() {
		t.Fatalf("runner disabled: %s", r.Message())
	}
	if !r.Completed() {
		t.Fatalf("expected StageCompleted, got %s", r.Stage)
	}
	if !r.Fabric.Frozen {
		t.Fatalf("expected fabric to be frozen after settling")
	}
	if r.Fabric.JointCount() != 6 {
		t.Fatalf("expected 6 joints for a bare seed, got %d", r.Fabric.JointCount())
	}
	if len(events) == 0 {
		t.Fatalf("expected at least one emitted event")
	}
}

func TestRunnerGrowsColumnAndJoinsFaces(t *testing.T) {
	root := assembly.Branching("Single", fabric.RoleSeed).
		OnFace("Top", assembly.Growing(2).Scale(0.9).AsChiral().MarkTag("tip"))
	r := newRunner(t, root)

	if ok := r.RunToCompletion(3_000_000); !ok {
		t.Fatalf("runner did not reach a terminal stage within the tick budget")
	}
	if r.Disabled() {
		t.Fatalf("runner disabled: %s", r.Message())
	}
	if r.Fabric.JointCount() != 12 {
		t.Fatalf("expected 12 joints after a 2-step chiral column, got %d", r.Fabric.JointCount())
	}
	if len(r.Fabric.Marks["tip"]) != 6 {
		t.Fatalf("expected 6 joints marked \"tip\", got %d", len(r.Fabric.Marks["tip"]))
	}
	r.Fabric.CheckInvariants()
}

func TestRunnerPrismClosesOpenFaces(t *testing.T) {
	root := assembly.Branching("Single", fabric.RoleSeed)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	lib := bricks.NewLibrary()
	built := Fabric("t", 1000).
		Seed(root).
		Prism().
		Pretense(3.0, 0.05).
		Falling(physics.SurfaceFrozen, 0.05, 0.05, 1e-3).
		Build()
	r := New(built, lib, cfg, testTemplate(), testTemplate())
	r.Tick() // the Initialize stage plants the seed brick

	before := r.Fabric.IntervalCount()
	faces := r.Fabric.FaceCount()
	if faces == 0 {
		t.Fatalf("expected the bare seed to have open faces before pretensing")
	}

	if ok := r.RunToCompletion(3_000_000); !ok {
		t.Fatalf("runner did not reach a terminal stage within the tick budget")
	}
	if r.Disabled() {
		t.Fatalf("runner disabled: %s", r.Message())
	}
	if r.Fabric.FaceCount() != 0 {
		t.Fatalf("expected every face to be disposed of by pretensing, got %d remaining", r.Fabric.FaceCount())
	}
	if r.Fabric.IntervalCount() <= before {
		t.Fatalf("expected prism closing to add pulling intervals, had %d now have %d", before, r.Fabric.IntervalCount())
	}
}

func TestProgressGateNeverRegresses(t *testing.T) {
	var p units.Progress
	p.Start(0, 1.0)
	last := 0.0
	for age := units.Age(0); age <= units.Age(units.Seconds(1.0).Ticks()); age += 400 {
		n := p.Nuance(age)
		if n < last {
			t.Fatalf("progress nuance regressed from %v to %v at age %d", last, n, age)
		}
		last = n
	}
	if last != 1.0 {
		t.Fatalf("expected progress to land exactly on 1.0, got %v", last)
	}
}
