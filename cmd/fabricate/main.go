// Command fabricate runs a single fabric plan headlessly to completion and
// prints the execution event stream, mirroring the teacher's
// cmd/<tool>/main.go layout (flag-based configuration, config.Init at
// startup, log.Fatal on unrecoverable setup errors).
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/tensegral/fabricator/assembly"
	"github.com/tensegral/fabricator/bricks"
	"github.com/tensegral/fabricator/config"
	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/physics"
	"github.com/tensegral/fabricator/plan"
	"github.com/tensegral/fabricator/shape"
	"github.com/tensegral/fabricator/units"
)

func main() {
	configPath := flag.String("config", "", "Override config YAML file (empty = use embedded defaults)")
	planName := flag.String("plan", "walker", "Built-in plan to run: single-twist | walker")
	maxTicks := flag.Int64("max-ticks", 2_000_000, "Maximum ticks to run before giving up")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	lib := bricks.NewLibrary()
	pushTemplate := bricks.IntervalTemplate{Material: fabric.Material{StiffnessPerLength: 1.0, LinearDensity: 0.02}}
	pullTemplate := bricks.IntervalTemplate{Material: fabric.Material{StiffnessPerLength: 0.5, LinearDensity: 0.005}}

	var fp plan.FabricPlan
	switch *planName {
	case "single-twist":
		fp = singleTwistPlan()
	case "walker":
		fp = walkerPlan()
	default:
		log.Fatalf("unknown plan %q", *planName)
	}

	runner := plan.New(fp, lib, cfg, pushTemplate, pullTemplate)
	runner.Events = func(e plan.Event) {
		slog.Info("event",
			"kind", e.Kind.String(),
			"tick", e.Tick,
			"fabric_time_s", fmt.Sprintf("%.3f", float64(e.FabricTime)),
			"from", e.From, "to", e.To,
			"joint_count", e.JointCount,
			"count", e.Count,
			"percent", e.Percent,
			"label", e.Label,
			"message", e.Message,
		)
	}

	if ok := runner.RunToCompletion(*maxTicks); !ok {
		log.Fatalf("plan %q did not complete within %d ticks", *planName, *maxTicks)
	}

	if runner.Disabled() {
		fmt.Printf("plan disabled: %s\n", runner.Message())
		return
	}

	stats := runner.Fabric.StatsWithDynamics()
	fmt.Printf("plan %q completed: age=%d joints=%d intervals=%d kinetic_energy=%.6f max_strain=%.6f\n",
		fp.Name, runner.Fabric.Age, runner.Fabric.JointCount(), runner.Fabric.IntervalCount(),
		stats.KineticEnergy, stats.MaxStrain)
}

// singleTwistPlan is scenario S1: a single twist brick grown into a one-
// brick column, pretensed while floating (no surface), no fall/settle.
func singleTwistPlan() plan.FabricPlan {
	seed := assembly.Branching("Single", fabric.RoleSeed).
		OnFace("Top", assembly.Growing(1))
	return plan.Fabric("single-twist", 1000).
		Seed(seed).
		Pretense(3, units.Seconds(10)).
		Floating().
		Build()
}

// walkerPlan grows an Omni seed into an 8-brick column off its Base face,
// marking the column's exit joints "end", spaces them apart and vulcanizes
// the result closed, then pretenses and drops it onto a Bouncy surface.
// This is the single-leg shape of the S2 triped-walker scenario, grown
// from the Omni seed's Base face only.
func walkerPlan() plan.FabricPlan {
	seed := assembly.Branching("Omni", fabric.RoleSeed).
		OnFace("Base", assembly.Growing(8).Scale(0.95).AsChiral().MarkTag("end"))

	steps := []shape.Step{
		{During: units.Seconds(25), Action: &shape.Spacer{Mark: "end", DistanceFactor: 1.38}},
		{During: units.Seconds(15), Action: shape.Vulcanize{}},
	}

	return plan.Fabric("walker", 1000).
		Seed(seed).
		Shape(steps...).
		Pretense(3, units.Seconds(15)).
		Altitude(1000).
		Falling(physics.SurfaceBouncy, units.Seconds(5), units.Seconds(8), 1e-3).
		Build()
}
