package evolution

import (
	"encoding/binary"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// DecisionMaker wraps a seeded ChaCha8 PRNG with genome-based skip logic,
// so the same seed plus the same genome perfectly reproduces the same
// sequence of decisions, while a different genome (a mutated skip list)
// reinterprets the same underlying random stream into different outcomes.
// Grounded on original_source/src/build/evo/decision_maker.rs, translated
// from rand_chacha's ChaCha8Rng to the standard library's math/rand/v2
// ChaCha8 source.
type DecisionMaker struct {
	rng             *rand.Rand
	genome          Genome
	virtualPosition int
}

// NewDecisionMaker seeds a DecisionMaker deterministically from a uint64,
// expanded into the 32-byte key math/rand/v2's ChaCha8 requires.
func NewDecisionMaker(seed uint64, genome Genome) *DecisionMaker {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], seed^0x9e3779b97f4a7c15)
	return &DecisionMaker{
		rng:    rand.New(rand.NewChaCha8(key)),
		genome: genome,
	}
}

// nextFloat draws the next value in [0,1) from the underlying stream,
// silently consuming (and discarding) any position the genome marks as
// skipped before returning the first unskipped draw.
func (d *DecisionMaker) nextFloat() float64 {
	for {
		value := d.rng.Float64()
		skip := d.genome.ShouldSkip(d.virtualPosition)
		d.virtualPosition++
		if skip {
			continue
		}
		return value
	}
}

// Decide makes a 50/50 boolean decision.
func (d *DecisionMaker) Decide() bool {
	return d.nextFloat() > 0.5
}

// Choose picks an index in [0, max).
func (d *DecisionMaker) Choose(max int) int {
	if max <= 0 {
		return 0
	}
	n := int(d.nextFloat() * float64(max))
	if n >= max {
		n = max - 1
	}
	return n
}

// Range picks a value in [min, max).
func (d *DecisionMaker) Range(min, max float64) float64 {
	return min + d.nextFloat()*(max-min)
}

// RandomDirection returns a random unit vector, or the zero vector in the
// vanishingly unlikely case the drawn vector is itself zero.
func (d *DecisionMaker) RandomDirection() r3.Vec {
	v := r3.Vec{
		X: d.nextFloat()*2 - 1,
		Y: d.nextFloat()*2 - 1,
		Z: d.nextFloat()*2 - 1,
	}
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// VirtualPosition returns the current position in the virtual (skip-aware)
// sequence, useful for mutation targeting: inserting a new skip ahead of
// this position leaves past decisions untouched.
func (d *DecisionMaker) VirtualPosition() int { return d.virtualPosition }

// CloneGenome returns a copy of the genome, safe to mutate independently
// (Genome.WithSkipAt already copies, but callers that hold onto the raw
// slice should not alias it).
func (d *DecisionMaker) CloneGenome() Genome {
	return GenomeFromOffsets(d.genome.Offsets())
}

// Genome returns the decision maker's current genome.
func (d *DecisionMaker) Genome() Genome { return d.genome }
