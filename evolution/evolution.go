package evolution

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/tensegral/fabricator/config"
	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/physics"
	"github.com/tensegral/fabricator/units"
)

// seedPushLength is the strut length every grown seed and its descendants
// use; original_source/src/build/evo/evolution.rs hardcodes the
// equivalent push_length constant rather than exposing it as a tunable.
const seedPushLength units.Millimeters = 300

// seedPushCount is how many pushes a freshly grown seed starts with.
const seedPushCount = 3

// State names one stage of the evolutionary search loop. Grounded on
// original_source/src/build/evo/evolution.rs's EvolutionState enum
// (CreatingSeed/Seeding/Settling/Evaluating/Evolving), translated into a
// Go state machine in the same style as plan.Runner's Stage.
type State int

const (
	StateCreatingSeed State = iota
	StateSeeding
	StateSettling
	StateEvaluating
	StateEvolving
)

func (s State) String() string {
	switch s {
	case StateCreatingSeed:
		return "creating-seed"
	case StateSeeding:
		return "seeding"
	case StateSettling:
		return "settling"
	case StateEvaluating:
		return "evaluating"
	case StateEvolving:
		return "evolving"
	default:
		return "unknown"
	}
}

// ViewingMode controls how many physics ticks Iterate runs per call:
// Watch runs one frame, suitable for rendering each settle step; Fast
// runs many frames at once to race through a generation when nothing is
// watching.
type ViewingMode int

const (
	Watch ViewingMode = iota
	Fast
)

const fastFramesPerIterate = 60

// candidate is a not-yet-evaluated structure mid-settle: either a fresh
// seed for a not-yet-full population, or a mutated offspring of an
// existing member.
type candidate struct {
	fabric     *fabric.Fabric
	pushCount  int
	seed       uint64
	genome     Genome
	mutation   MutationType
	parent     *Individual
	settleEnds units.Age
}

// Evolution runs the CreatingSeed -> Seeding/Evolving -> Settling ->
// Evaluating loop described in
// original_source/src/build/evo/evolution.rs: grow or mutate a candidate,
// let it settle under physics, score it, and feed the result back into
// the population.
type Evolution struct {
	Config     *config.Config
	Fitness    FitnessEvaluator
	Population *Population

	masterRNG *rand.Rand
	state     State
	mode      ViewingMode

	current *candidate
	physics physics.Preset

	generationCount int
}

// NewWithMasterSeed builds an Evolution controller. masterSeed drives
// every individual's own lineage seed and the population's tournament
// randomness, so an entire run is reproducible from this one number.
func NewWithMasterSeed(cfg *config.Config, masterSeed uint64) *Evolution {
	return &Evolution{
		Config:     cfg,
		Fitness:    NewFitnessEvaluator(cfg.Fitness),
		Population: NewPopulation(cfg.Evolution.PopulationSize, masterSeed, cfg.Evolution.AcceptWorseProbability),
		masterRNG:  rand.New(rand.NewPCG(masterSeed, masterSeed^0x2545f4914f6cdd1d)),
		state:      StateCreatingSeed,
		physics:    physics.Construction,
	}
}

// SetMode switches between frame-accurate Watch stepping and bulk Fast
// stepping.
func (e *Evolution) SetMode(mode ViewingMode) { e.mode = mode }

// State returns the controller's current stage, for display.
func (e *Evolution) State() State { return e.state }

// Generation returns how many candidates have been fully evaluated so far.
func (e *Evolution) Generation() int { return e.generationCount }

// Iterate advances the controller by one unit of work: in Watch mode, one
// physics frame; in Fast mode, a batch of frames. It dispatches on state
// the same way plan.Runner.Tick dispatches on Stage.
func (e *Evolution) Iterate() {
	switch e.state {
	case StateCreatingSeed:
		e.beginSeed()
	case StateSeeding, StateEvolving, StateSettling:
		e.settleFrame()
	case StateEvaluating:
		e.evaluate()
	}
}

func (e *Evolution) nextSeed() uint64 { return e.masterRNG.Uint64() }

func (e *Evolution) beginSeed() {
	seed := e.nextSeed()
	grower := NewGrower(seed, NewGenome(), seedPushLength, seedPushCount)
	f, pushCount := grower.CreateSeed()

	e.current = &candidate{
		fabric:    f,
		pushCount: pushCount,
		seed:      seed,
		genome:    grower.Decision.Genome(),
		mutation:  MutationSeed,
	}
	e.physics = physics.PrototypeFormation
	e.beginSettle(units.Seconds(e.Config.Evolution.SettleSeedSeconds))
	e.state = StateSeeding

	slog.Info("evolution_seed_created", "seed", seed, "pushes", pushCount)
}

// replay deterministically regrows an individual's fabric from its seed
// and genome: CreateSeed, then each recorded mutation in order. Since
// Grower's DecisionMaker output depends only on (seed, genome, call
// sequence), this reconstructs exactly the structure the individual last
// held, without needing to keep every ancestor's fabric around.
func (e *Evolution) replay(ind Individual) (*fabric.Fabric, int, *Grower) {
	g := NewGrower(ind.Seed, ind.Genome, seedPushLength, seedPushCount)
	f, pushCount := g.CreateSeed()
	for range ind.MutationLog {
		pushCount, _ = g.ApplyRandomMutation(f, pushCount, e.Config.Evolution.MutationWeights)
	}
	return f, pushCount, g
}

// beginMutation picks a random live individual, inserts a new genome skip
// at the exact point its recorded history ends, and replays its full
// lineage under the new genome plus one more mutation. Earlier decisions
// are unaffected by the new skip (WithSkipAt only changes what happens
// from that position forward), so the replay reproduces the parent
// exactly up to the new mutation, which alone sees a different draw.
func (e *Evolution) beginMutation() {
	parent, ok := e.Population.PickRandom()
	if !ok {
		e.beginSeed()
		return
	}

	_, _, probe := e.replay(parent)
	childGenome := parent.Genome.WithSkipAt(probe.Decision.VirtualPosition())

	f, pushCount, g := e.replay(Individual{Seed: parent.Seed, Genome: childGenome, MutationLog: parent.MutationLog})
	newPushCount, mutation := g.ApplyRandomMutation(f, pushCount, e.Config.Evolution.MutationWeights)

	e.current = &candidate{
		fabric:    f,
		pushCount: newPushCount,
		seed:      parent.Seed,
		genome:    childGenome,
		mutation:  mutation,
		parent:    &parent,
	}

	e.physics = physics.Settling
	e.beginSettle(units.Seconds(e.settleSecondsFor(mutation)))
	e.state = StateEvolving
}

// settleSecondsFor mirrors evolution.rs's per-mutation settle duration:
// length-only edits need less time to re-equilibrate than topology
// changes.
func (e *Evolution) settleSecondsFor(mutation MutationType) float64 {
	switch mutation {
	case MutationShortenPull, MutationLengthenPull:
		return 4.0
	case MutationAddPush, MutationRemovePull:
		return 6.0
	default:
		return e.Config.Evolution.SettleMutationSeconds
	}
}

func (e *Evolution) beginSettle(duration units.Seconds) {
	e.current.settleEnds = e.current.fabric.Age + units.Age(duration.Ticks())
}

func (e *Evolution) settleFrame() {
	if e.current == nil {
		e.beginSeed()
		return
	}

	frames := 1
	if e.mode == Fast {
		frames = fastFramesPerIterate
	}
	for i := 0; i < frames; i++ {
		if e.current.fabric.Age >= e.current.settleEnds {
			break
		}
		physics.Iterate(e.current.fabric, e.physics)
	}

	if e.current.fabric.Age >= e.current.settleEnds {
		e.state = StateEvaluating
	}
}

func (e *Evolution) evaluate() {
	details := e.Fitness.EvaluateDetailed(e.current.fabric, e.current.pushCount)

	if details.Height < float64(units.MillimetersFromMeters(units.Meters(e.Config.Evolution.CollapseHeightThresholdM))) {
		e.recoverFlat()
		details = e.Fitness.EvaluateDetailed(e.current.fabric, e.current.pushCount)
	}

	if e.current.parent == nil {
		e.Population.AddInitial(e.current.seed, e.current.genome, details.Fitness, details.Height, e.current.pushCount)
	} else {
		e.Population.TryInsert(
			e.current.seed, e.current.genome, details.Fitness, details.Height, e.current.pushCount,
			len(e.current.parent.MutationLog), e.current.parent.MutationLog, e.current.mutation,
		)
	}
	e.Population.NextGeneration()
	e.generationCount++

	slog.Info("evolution_candidate_evaluated",
		"generation", e.generationCount,
		"mutation", e.current.mutation,
		"fitness", fmt.Sprintf("%.4f", details.Fitness),
		"height", fmt.Sprintf("%.3f", details.Height),
	)

	e.current = nil

	if !e.Population.IsFull() {
		e.beginSeed()
		return
	}
	e.beginMutation()
}

// recoverFlat nudges a collapsed-flat candidate back toward a standing
// shape before scoring, by adding a handful of extra tension paths:
// original_source/src/build/evo/evolution.rs applies the same
// flat-recovery branch below its collapse-height threshold.
func (e *Evolution) recoverFlat() {
	g := NewGrower(e.current.seed, e.current.genome, seedPushLength, e.current.pushCount)
	e.current.mutation = g.RecoverFlat(e.current.fabric)
	e.current.genome = g.Decision.Genome()
}

// Best returns the best individual discovered so far, if any.
func (e *Evolution) Best() (Individual, bool) { return e.Population.BestCurrent() }

// Stats reports the current population's fitness distribution.
func (e *Evolution) Stats() Stats { return e.Population.Stats() }
