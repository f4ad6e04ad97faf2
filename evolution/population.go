package evolution

import (
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat"
)

// MutationRecord is one entry in an individual's mutation history: which
// operator fired and the fitness it produced, kept so a later display or
// diagnostic can show the lineage that led to a given structure.
type MutationRecord struct {
	Type    MutationType
	Fitness float64
}

// genomeComponent, fitnessComponent and lineageComponent are the three ark
// components every population entity carries. Splitting genome, score, and
// provenance into separate components (rather than one big struct) follows
// the teacher's own component layout, where position/velocity/organism
// state are likewise kept as distinct, independently queryable components.
type genomeComponent struct {
	Genome Genome
}

type fitnessComponent struct {
	Fitness   float64
	Height    float64
	PushCount int
}

type lineageComponent struct {
	Seed        uint64
	Mutations   int
	MutationLog []MutationRecord
}

// Individual is a read-only snapshot of one population member, returned by
// Population's query methods so callers never hold a live ark pointer past
// the call that produced it.
type Individual struct {
	Entity      ecs.Entity
	Seed        uint64
	Genome      Genome
	Fitness     float64
	Height      float64
	PushCount   int
	Mutations   int
	MutationLog []MutationRecord
}

// Population is a bounded collection of individuals stored as ark ECS
// entities: a genome, a fitness score, and a lineage record per entity.
// Insertion past capacity replaces the single weakest member — tournament
// style, the same shape as the teacher's telemetry.HallOfFame bounded
// sorted collection — with a small simulated-annealing chance of accepting
// a worse candidate anyway, so the search does not collapse to a single
// local optimum early on.
type Population struct {
	world    *ecs.World
	mapper   *ecs.Map3[genomeComponent, fitnessComponent, lineageComponent]
	filter   *ecs.Filter3[genomeComponent, fitnessComponent, lineageComponent]
	capacity int

	generation int
	rng        *rand.Rand

	acceptWorseProbability float64

	bestEver *Individual
}

// NewPopulation constructs an empty population bounded to capacity
// individuals, using masterSeed to drive its own tournament/acceptance
// randomness (separate from any individual's own DecisionMaker).
func NewPopulation(capacity int, masterSeed uint64, acceptWorseProbability float64) *Population {
	world := ecs.NewWorld()
	return &Population{
		world:                  &world,
		mapper:                 ecs.NewMap3[genomeComponent, fitnessComponent, lineageComponent](&world),
		filter:                 ecs.NewFilter3[genomeComponent, fitnessComponent, lineageComponent](&world),
		capacity:               capacity,
		rng:                    rand.New(rand.NewPCG(masterSeed, masterSeed^0xda3e39cb94b95bdb)),
		acceptWorseProbability: acceptWorseProbability,
	}
}

// Size returns the number of live individuals.
func (p *Population) Size() int {
	n := 0
	query := p.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// IsFull reports whether the population has reached capacity.
func (p *Population) IsFull() bool { return p.Size() >= p.capacity }

// AddInitial inserts a freshly grown (unmutated) seed individual. Used
// during the Seeding state, before the population reaches capacity.
func (p *Population) AddInitial(seed uint64, genome Genome, fitness, height float64, pushCount int) {
	p.insertNew(seed, genome, fitness, height, pushCount, 0, nil)
}

// TryInsert attempts to add a mutated offspring. While the population
// isn't yet full it is always accepted; once full it replaces the current
// weakest member if it scores higher, or with acceptWorseProbability
// chance even if it doesn't (simulated annealing), and is otherwise
// discarded. Returns whether it was inserted.
func (p *Population) TryInsert(
	seed uint64, genome Genome, fitness, height float64, pushCount int,
	parentMutations int, parentLog []MutationRecord, mutation MutationType,
) bool {
	log := append(append([]MutationRecord(nil), parentLog...), MutationRecord{Type: mutation, Fitness: fitness})
	mutations := parentMutations + 1

	p.considerBest(seed, genome, fitness, height, pushCount, mutations, log)

	if !p.IsFull() {
		p.insertNew(seed, genome, fitness, height, pushCount, mutations, log)
		return true
	}

	weakest, weakestFitness, ok := p.weakest()
	if !ok {
		p.insertNew(seed, genome, fitness, height, pushCount, mutations, log)
		return true
	}

	accept := fitness > weakestFitness || p.rng.Float64() < p.acceptWorseProbability
	if !accept {
		return false
	}

	g, f, l := p.mapper.Get(weakest)
	g.Genome = genome
	f.Fitness = fitness
	f.Height = height
	f.PushCount = pushCount
	l.Seed = seed
	l.Mutations = mutations
	l.MutationLog = log
	return true
}

func (p *Population) insertNew(seed uint64, genome Genome, fitness, height float64, pushCount, mutations int, log []MutationRecord) {
	p.mapper.NewEntity(
		&genomeComponent{Genome: genome},
		&fitnessComponent{Fitness: fitness, Height: height, PushCount: pushCount},
		&lineageComponent{Seed: seed, Mutations: mutations, MutationLog: log},
	)
	p.considerBest(seed, genome, fitness, height, pushCount, mutations, log)
}

func (p *Population) considerBest(seed uint64, genome Genome, fitness, height float64, pushCount, mutations int, log []MutationRecord) {
	if p.bestEver != nil && p.bestEver.Fitness >= fitness {
		return
	}
	p.bestEver = &Individual{
		Seed: seed, Genome: genome, Fitness: fitness, Height: height,
		PushCount: pushCount, Mutations: mutations, MutationLog: log,
	}
}

func (p *Population) weakest() (ecs.Entity, float64, bool) {
	var (
		found    bool
		weakest  ecs.Entity
		weakestF float64
	)
	query := p.filter.Query()
	for query.Next() {
		_, f, _ := query.Get()
		if !found || f.Fitness < weakestF {
			found = true
			weakestF = f.Fitness
			weakest = query.Entity()
		}
	}
	return weakest, weakestF, found
}

// PickRandom returns a uniformly random live individual, or false if the
// population is empty.
func (p *Population) PickRandom() (Individual, bool) {
	var entities []ecs.Entity
	query := p.filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	if len(entities) == 0 {
		return Individual{}, false
	}
	e := entities[p.rng.IntN(len(entities))]
	g, f, l := p.mapper.Get(e)
	return Individual{
		Entity: e, Seed: l.Seed, Genome: g.Genome, Fitness: f.Fitness, Height: f.Height,
		PushCount: f.PushCount, Mutations: l.Mutations, MutationLog: l.MutationLog,
	}, true
}

// BestCurrent returns the best-ever individual seen by this population,
// even if it has since been displaced by tournament replacement — a
// structure that was the best discovered is never truly lost, only pushed
// out of the active search window.
func (p *Population) BestCurrent() (Individual, bool) {
	if p.bestEver == nil {
		return Individual{}, false
	}
	return *p.bestEver, true
}

// NextGeneration advances the generation counter, called once per
// evaluation regardless of whether the candidate was accepted.
func (p *Population) NextGeneration() { p.generation++ }

// Stats summarizes the current population's fitness distribution.
type Stats struct {
	Generation    int
	Size          int
	MaxFitness    float64
	MeanFitness   float64
	MinFitness    float64
	StdDev        float64
	AvgMutations  float64
	AvgPushCount  float64
}

// Stats computes population-wide diagnostics using gonum/stat for the
// mean/standard-deviation pass, matching the rest of the module's
// preference for the gonum stack over hand-rolled numeric helpers.
func (p *Population) Stats() Stats {
	var fitnesses []float64
	var mutations, pushCounts []float64

	query := p.filter.Query()
	for query.Next() {
		_, f, l := query.Get()
		fitnesses = append(fitnesses, f.Fitness)
		mutations = append(mutations, float64(l.Mutations))
		pushCounts = append(pushCounts, float64(f.PushCount))
	}

	if len(fitnesses) == 0 {
		return Stats{Generation: p.generation}
	}

	mean, stddev := stat.MeanStdDev(fitnesses, nil)
	maxF, minF := fitnesses[0], fitnesses[0]
	for _, v := range fitnesses {
		if v > maxF {
			maxF = v
		}
		if v < minF {
			minF = v
		}
	}

	return Stats{
		Generation:   p.generation,
		Size:         len(fitnesses),
		MaxFitness:   maxF,
		MeanFitness:  mean,
		MinFitness:   minF,
		StdDev:       stddev,
		AvgMutations: stat.Mean(mutations, nil),
		AvgPushCount: stat.Mean(pushCounts, nil),
	}
}
