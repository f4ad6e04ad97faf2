package evolution

import (
	"github.com/tensegral/fabricator/config"
	"github.com/tensegral/fabricator/fabric"
)

// suspendedEpsilon is how far above the floor (in millimeters) a joint
// must sit to count as "suspended" rather than resting on the ground.
const suspendedEpsilon = 0.5

// FitnessDetails breaks a fitness evaluation down into the terms that went
// into it, for display and logging.
type FitnessDetails struct {
	Fitness         float64
	SuspendedJoints int
	Height          float64
	IntervalCount   int
	PushCount       int
	PullCount       int
}

// FitnessEvaluator scores a fabric under two complementary functions,
// weighted per config.FitnessConfig: "suspended" rewards height achieved
// per unit of structural cost, "height" rewards raw altitude regardless of
// how much material it took.
type FitnessEvaluator struct {
	Weights config.FitnessConfig
}

// NewFitnessEvaluator builds an evaluator from the loaded fitness weights.
func NewFitnessEvaluator(weights config.FitnessConfig) FitnessEvaluator {
	return FitnessEvaluator{Weights: weights}
}

// EvaluateDetailed scores f, given how many of its intervals are pushes
// (passed in since the caller already tracks this across mutations rather
// than recomputing it by scanning roles every time).
func (e FitnessEvaluator) EvaluateDetailed(f *fabric.Fabric, pushCount int) FitnessDetails {
	_, maxY := f.AltitudeRange()
	if maxY < 0 {
		maxY = 0
	}

	suspended := 0
	f.EachJoint(func(_ fabric.JointID, j *fabric.Joint) {
		if j.Loc.Current().Y > suspendedEpsilon {
			suspended++
		}
	})

	pullCount := f.IntervalCount() - pushCount
	if pullCount < 0 {
		pullCount = 0
	}
	cost := float64(4*pushCount + pullCount)

	suspendedFitness := 0.0
	if cost > 0 {
		suspendedFitness = float64(suspended) / cost
	}

	fitness := e.Weights.SuspendedWeight*suspendedFitness + e.Weights.HeightWeight*maxY

	return FitnessDetails{
		Fitness:         fitness,
		SuspendedJoints: suspended,
		Height:          maxY,
		IntervalCount:   f.IntervalCount(),
		PushCount:       pushCount,
		PullCount:       pullCount,
	}
}
