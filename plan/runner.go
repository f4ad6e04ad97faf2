package plan

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/assembly"
	"github.com/tensegral/fabricator/bricks"
	"github.com/tensegral/fabricator/config"
	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/physics"
	"github.com/tensegral/fabricator/shape"
	"github.com/tensegral/fabricator/units"
)

// columnBrick is the brick family every growth column extends with. Only
// the twist-tower bricks (Single, Torque) have the Base/Top alias pair a
// column join needs; hub hand-off uses whatever family the child Node names.
const columnBrick = "Single"

// Stage enumerates the runner's state machine, walked strictly in order
// except where a phase is entirely absent from the plan (Fall/Settle are
// optional; their stages are skipped when the plan leaves them nil).
type Stage int

const (
	StageInitialize Stage = iota
	StageBuildApproach
	StageBuildCalm
	StageBuildStep
	StageShaping
	StagePretensing
	StageFalling
	StageSettling
	StageCompleted
	StageDisabled
)

func (s Stage) String() string {
	switch s {
	case StageInitialize:
		return "Initialize"
	case StageBuildApproach:
		return "BuildApproach"
	case StageBuildCalm:
		return "BuildCalm"
	case StageBuildStep:
		return "BuildStep"
	case StageShaping:
		return "Shaping"
	case StagePretensing:
		return "Pretensing"
	case StageFalling:
		return "Falling"
	case StageSettling:
		return "Settling"
	case StageCompleted:
		return "Completed"
	case StageDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// pendingBranch is one unprocessed item in the build queue: a branch still
// waiting to extend a column from parentFace.
type pendingBranch struct {
	parentFace fabric.FaceID
	branch     *assembly.Branch
}

// Runner drives a FabricPlan to completion, one Tick at a time, swapping
// physics presets and growth operations at each stage boundary. It owns no
// goroutines or timers: every wait is expressed as a Progress window read
// back against the fabric's own tick clock.
type Runner struct {
	Plan    FabricPlan
	Fabric  *fabric.Fabric
	Library *bricks.Library
	Grower  *assembly.Grower
	Config  *config.Config
	Physics physics.Preset

	Stage Stage

	Events EventSink

	stageStartAge units.Age
	stageDuration units.Seconds

	buildQueue  []pendingBranch
	shapePhase  *shape.Phase
	disabledMsg string

	storedSurface physics.SurfaceCharacter
}

// New constructs a Runner for plan, ready to run from StageInitialize. push
// and pull are the interval templates every growth step instantiates new
// bricks with.
func New(plan FabricPlan, lib *bricks.Library, cfg *config.Config, push, pull bricks.IntervalTemplate) *Runner {
	f := fabric.New(plan.Name, plan.Scale)
	return &Runner{
		Plan:    plan,
		Fabric:  f,
		Library: lib,
		Grower:  assembly.NewGrower(f, lib, push, pull),
		Config:  cfg,
		Physics: physics.Construction,
		Stage:   StageInitialize,
	}
}

// Disabled reports whether the runner gave up (a growth operation hit a
// class-2 soft error); Message returns the reason.
func (r *Runner) Disabled() bool  { return r.Stage == StageDisabled }
func (r *Runner) Message() string { return r.disabledMsg }
func (r *Runner) Completed() bool { return r.Stage == StageCompleted }

// Tick runs exactly one physics iteration and then evaluates whether the
// current stage should advance. It is the sole external driving method;
// RunToCompletion simply calls it in a bounded loop.
func (r *Runner) Tick() {
	if r.Stage == StageCompleted || r.Stage == StageDisabled {
		return
	}
	physics.Iterate(r.Fabric, r.Physics)
	r.checkAndAdvanceStage()
}

// RunToCompletion ticks until the runner reaches StageCompleted or
// StageDisabled, or maxTicks is exhausted (whichever comes first). It
// returns false if maxTicks ran out first, a caller's signal to either keep
// running or treat the plan as stuck.
func (r *Runner) RunToCompletion(maxTicks int64) bool {
	if r.Stage == StageInitialize {
		r.emit(Event{Kind: EventStarted})
	}
	for i := int64(0); i < maxTicks; i++ {
		if r.Stage == StageCompleted || r.Stage == StageDisabled {
			return true
		}
		r.Tick()
	}
	return r.Stage == StageCompleted || r.Stage == StageDisabled
}

func (r *Runner) disable(format string, args ...any) {
	r.disabledMsg = fmt.Sprintf(format, args...)
	from := r.Stage.String()
	r.transitionTo(StageDisabled, units.Immediate)
	r.emit(Event{Kind: EventStageTransition, From: from, To: StageDisabled.String(), Message: r.disabledMsg})
}

func (r *Runner) transitionTo(next Stage, duration units.Seconds) {
	r.Stage = next
	r.stageStartAge = r.Fabric.Age
	r.stageDuration = duration
}

func (r *Runner) stageElapsed() bool {
	return r.Fabric.Age >= r.stageStartAge+units.Age(r.stageDuration.Ticks())
}

// checkAndAdvanceStage evaluates the current stage's exit predicate and, if
// satisfied, performs that transition's one-shot side effect and moves on.
// Each arm both decides the next stage/duration and performs the work that
// belongs at that boundary, mirroring the original build-runner's single
// match-driven state machine rather than splitting "decide" from "act".
func (r *Runner) checkAndAdvanceStage() {
	switch r.Stage {
	case StageInitialize:
		r.doInitialize()

	case StageBuildApproach:
		if !r.stageElapsed() {
			return
		}
		from := r.Stage.String()
		r.transitionTo(StageBuildCalm, units.Seconds(r.Config.Build.CalmMaxSeconds))
		r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String()})

	case StageBuildCalm:
		stats := r.Fabric.StatsWithDynamics()
		calm := stats.MaxStrain < r.Config.Build.CalmStrainThreshold
		if !calm && !r.stageElapsed() {
			return
		}
		from := r.Stage.String()
		r.transitionTo(StageBuildStep, units.Immediate)
		r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String()})

	case StageBuildStep:
		r.doBuildStep()

	case StageShaping:
		r.doShapingTick()

	case StagePretensing:
		if !r.stageElapsed() {
			return
		}
		r.enterFallOrBeyond()

	case StageFalling:
		if !r.stageElapsed() {
			return
		}
		r.enterSettleOrBeyond()

	case StageSettling:
		stats := r.Fabric.StatsWithDynamics()
		epsilon := r.settleEpsilon()
		settled := stats.MaxSpeed < epsilon
		if !settled && !r.stageElapsed() {
			return
		}
		r.finishSettling()
	}
}

func (r *Runner) doInitialize() {
	// Bricks are placed in model units, the same units as their rest
	// lengths; Plan.Scale (millimeters per model unit) is kept on the fabric.
	inst, err := r.Grower.PlaceSeed(r.Plan.Root, 1.0)
	if err != nil {
		r.disable("plan: failed to place seed brick %q: %v", r.Plan.Root.Brick, err)
		return
	}
	for tag, branch := range r.Plan.Root.Faces {
		faceID, ok := inst.FaceIDs[string(tag)]
		if !ok {
			r.disable("plan: seed brick %q has no face named %q", r.Plan.Root.Brick, tag)
			return
		}
		r.buildQueue = append(r.buildQueue, pendingBranch{parentFace: faceID, branch: branch})
	}
	from := r.Stage.String()
	r.transitionTo(StageBuildApproach, units.Seconds(r.Config.Build.ApproachSeconds))
	r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String()})
}

// doBuildStep pops exactly one pending branch and extends its column,
// handing off to a child hub or capping it as a prism as the branch
// dictates, then loops back through BuildApproach/BuildCalm if more work
// remains, or moves on to Shaping once the queue drains.
func (r *Runner) doBuildStep() {
	if len(r.buildQueue) == 0 {
		from := r.Stage.String()
		r.emit(Event{Kind: EventGrowthComplete, JointCount: r.Fabric.JointCount()})
		r.enterShapingOrBeyond(from)
		return
	}

	item := r.buildQueue[0]
	r.buildQueue = r.buildQueue[1:]

	exitFace, marked, err := r.Grower.ExtendColumn(item.parentFace, item.branch, columnBrick)
	if err != nil {
		r.disable("plan: growth step failed: %v", err)
		return
	}
	if item.branch.Mark != "" {
		for _, j := range marked {
			r.Fabric.Mark(item.branch.Mark, j)
		}
	}
	r.emit(Event{Kind: EventGrowthStep, JointCount: r.Fabric.JointCount()})

	switch {
	case item.branch.Child != nil:
		childInst, err := r.Grower.GrowOnFace(exitFace, item.branch.Child.Brick, item.branch.Child.Role, 1.0)
		if err != nil {
			r.disable("plan: failed to grow hub %q: %v", item.branch.Child.Brick, err)
			return
		}
		baseFace, ok := childInst.FaceIDs["Base"]
		if !ok {
			r.disable("plan: hub %q has no Base face to join", item.branch.Child.Brick)
			return
		}
		if err := r.Grower.JoinFaces(exitFace, baseFace); err != nil {
			r.disable("plan: failed to join hub %q: %v", item.branch.Child.Brick, err)
			return
		}
		for tag, childBranch := range item.branch.Child.Faces {
			faceID, ok := childInst.FaceIDs[string(tag)]
			if !ok {
				r.disable("plan: hub %q has no face named %q", item.branch.Child.Brick, tag)
				return
			}
			r.buildQueue = append(r.buildQueue, pendingBranch{parentFace: faceID, branch: childBranch})
		}

	case item.branch.Prism:
		// A capped column leaves its exit face exactly as grown; the
		// Pretensing entry disposes of it per the plan's Prism flag like any
		// other still-open face.
	}

	from := r.Stage.String()
	r.transitionTo(StageBuildApproach, units.Seconds(r.Config.Build.ApproachSeconds))
	r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String()})
}

func (r *Runner) enterShapingOrBeyond(from string) {
	if len(r.Plan.Shape) == 0 {
		r.enterPretensing(from)
		return
	}
	r.shapePhase = shape.NewPhase(r.Plan.Shape...)
	r.transitionTo(StageShaping, units.Immediate)
	r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String()})
}

func (r *Runner) doShapingTick() {
	cmd := r.shapePhase.Tick(r.Fabric, r.Fabric.Age)
	switch cmd.Kind {
	case shape.CommandStartProgress:
		r.stageDuration = cmd.Duration
		r.stageStartAge = r.Fabric.Age
	case shape.CommandTerminate:
		r.enterPretensing(r.Stage.String())
	}
}

// enterPretensing finalizes every face still open (discard or close into a
// triangle of pulls, per Plan.Prism), slackens every structural interval to
// its current actual length, and installs a PretenstSpan ramp driving pulls
// toward a shorter target and pushes toward a longer one over the pretense
// phase's duration. It swaps the active preset to Pretensing, grounded on
// the original's internal Start->Slacken->Pretensing->Settling sub-stage
// progression collapsed here into a single ramp since the runner's own
// stage machine already provides the surrounding Build/Fall/Settle stages.
func (r *Runner) enterPretensing(from string) {
	removed := r.finalizeOpenFaces()
	if removed > 0 {
		r.emit(Event{Kind: EventFacesRemoved, Count: removed})
	}

	pct := r.Plan.Pretense.Percent
	if pct == 0 {
		pct = units.Percent(r.Config.Pretense.Percent)
	}
	duration := r.Plan.Pretense.Duration
	if duration == 0 {
		duration = units.Seconds(r.Config.Pretense.DurationSecs)
	}
	fraction := pct.Fraction()
	now := r.Fabric.Age

	r.Fabric.EachInterval(func(_ fabric.IntervalID, iv *fabric.Interval) {
		switch iv.Role {
		case fabric.RolePulling:
			rest := r.currentLength(iv)
			target := rest * (1 - fraction)
			iv.Span = fabric.NewPretenstSpan(rest, target, now, duration)
		case fabric.RolePushing:
			rest := r.currentLength(iv)
			target := rest * (1 + fraction)
			iv.Span = fabric.NewPretenstSpan(rest, target, now, duration)
		}
	})

	r.Physics = physics.Pretensing
	r.emit(Event{Kind: EventPhysicsChanged, Label: r.Physics.Name})

	r.transitionTo(StagePretensing, duration)
	r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String(), Percent: pct})
}

func (r *Runner) currentLength(iv *fabric.Interval) float64 {
	alpha := r.Fabric.Joint(iv.Alpha)
	omega := r.Fabric.Joint(iv.Omega)
	return r3.Norm(r3.Sub(omega.Loc.Current(), alpha.Loc.Current()))
}

// finalizeOpenFaces disposes of every face still live once Pretensing
// begins: closed into a triangle of Pulling intervals when Plan.Prism is
// set, discarded otherwise. It returns the number of faces disposed of.
func (r *Runner) finalizeOpenFaces() int {
	var ids []fabric.FaceID
	r.Fabric.EachFace(func(id fabric.FaceID, _ *fabric.Face) { ids = append(ids, id) })

	for _, id := range ids {
		fc := r.Fabric.Face(id)
		if fc == nil {
			continue
		}
		if r.Plan.Prism {
			material := r.Grower.PullTemplate.Material
			for i := 0; i < 3; i++ {
				a, b := fc.Joints[i], fc.Joints[(i+1)%3]
				length := r3.Norm(r3.Sub(r.Fabric.Joint(b).Loc.Current(), r.Fabric.Joint(a).Loc.Current()))
				if length <= 0 {
					continue
				}
				r.Fabric.CreateInterval(a, b, fabric.RolePulling, material, length)
			}
		}
		r.Fabric.RemoveFace(id)
	}
	return len(ids)
}

func (r *Runner) enterFallOrBeyond() {
	r.storedSurface = r.Plan.Pretense.Surface
	from := r.Stage.String()
	if r.Plan.Fall == nil {
		r.enterSettleOrBeyond()
		return
	}
	r.Physics = physics.BasePhysics.WithSurface(r.storedSurface)
	r.emit(Event{Kind: EventPhysicsChanged, Label: r.Physics.Name})
	r.transitionTo(StageFalling, r.Plan.Fall.Duration)
	r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String()})
}

func (r *Runner) enterSettleOrBeyond() {
	from := r.Stage.String()
	if r.Plan.Settle == nil {
		r.finishPlan(from)
		return
	}
	r.Physics = physics.Settling.WithSurface(r.storedSurface)
	r.emit(Event{Kind: EventPhysicsChanged, Label: r.Physics.Name})
	r.transitionTo(StageSettling, r.Plan.Settle.Duration)
	r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String()})
}

func (r *Runner) settleEpsilon() float64 {
	if r.Plan.Settle != nil && r.Plan.Settle.Epsilon > 0 {
		return r.Plan.Settle.Epsilon
	}
	return r.Config.Pretense.SettleEpsilon
}

func (r *Runner) finishSettling() {
	r.Fabric.EachJoint(func(_ fabric.JointID, j *fabric.Joint) {
		j.Velocity = r3.Vec{}
	})
	r.finishPlan(r.Stage.String())
}

func (r *Runner) finishPlan(from string) {
	r.Fabric.Frozen = true
	r.transitionTo(StageCompleted, units.Immediate)
	r.emit(Event{Kind: EventCompleted})
	r.emit(Event{Kind: EventStageTransition, From: from, To: r.Stage.String()})
}
