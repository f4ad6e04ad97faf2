// Package location tracks a joint's recent trajectory: a small ring buffer
// of positions that supports smoothed velocity and cheap oscillation
// detection, so the physics engine can selectively damp chattering modes
// without globally sluggish motion.
package location

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// HistorySize is the number of recent positions retained per joint. 6 frames
// is enough to see 2-3 oscillation cycles at typical tick frequencies.
const HistorySize = 6

// OscillationLevel classifies how much a joint's recent motion is
// oscillating rather than settling.
type OscillationLevel int

const (
	OscillationNone OscillationLevel = iota
	OscillationMild
	OscillationStrong
)

// Location is an inline (no per-joint heap allocation after construction)
// ring buffer of positions.
type Location struct {
	history    [HistorySize]r3.Vec
	writeIndex int
	count      int
}

// New creates a Location with every history slot pre-filled with initial,
// so a freshly created joint reports zero velocity instead of a spurious
// jump from uninitialized history.
func New(initial r3.Vec) Location {
	l := Location{}
	for i := range l.history {
		l.history[i] = initial
	}
	l.count = 1
	return l
}

// Update pushes a new position into the ring buffer. O(1).
func (l *Location) Update(pos r3.Vec) {
	l.history[l.writeIndex] = pos
	l.writeIndex = (l.writeIndex + 1) % HistorySize
	if l.count < HistorySize {
		l.count++
	}
}

// Current returns the most recently written position.
func (l *Location) Current() r3.Vec {
	return l.relative(0)
}

// relative returns the position offset frames ago (0 = current).
func (l *Location) relative(offset int) r3.Vec {
	if offset >= l.count {
		offset = l.count - 1
	}
	idx := l.writeIndex - offset - 1
	if idx < 0 {
		idx += HistorySize
	}
	return l.history[idx]
}

// VelocitySimple returns (current-previous)/dt. O(1).
func (l *Location) VelocitySimple(dt float64) r3.Vec {
	if l.count < 2 {
		return r3.Vec{}
	}
	return r3.Scale(1/dt, r3.Sub(l.Current(), l.relative(1)))
}

// VelocitySmooth averages over up to 4 frames of history to reduce
// integrator chatter. O(1).
func (l *Location) VelocitySmooth(dt float64) r3.Vec {
	if l.count < 2 {
		return r3.Vec{}
	}
	lookback := l.count
	if lookback > 4 {
		lookback = 4
	}
	current := l.Current()
	past := l.relative(lookback - 1)
	return r3.Scale(1/(float64(lookback-1)*dt), r3.Sub(current, past))
}

// Oscillation classifies the window's recent velocity-direction reversals.
// O(HistorySize).
func (l *Location) Oscillation() OscillationLevel {
	if l.count < 4 {
		return OscillationNone
	}
	directionChanges := 0
	checkFrames := l.count
	for i := 1; i < checkFrames-1; i++ {
		vPrev := r3.Sub(l.relative(i+1), l.relative(i+2))
		vCurr := r3.Sub(l.relative(i), l.relative(i+1))
		if r3.Dot(vPrev, vCurr) < 0 {
			directionChanges++
		}
	}
	switch {
	case directionChanges <= 1:
		return OscillationNone
	case directionChanges == 2:
		return OscillationMild
	default:
		return OscillationStrong
	}
}

// OscillationStrength is the coefficient of variation of per-frame speeds
// across the window, in [0,1]. Only worth computing once Strong is
// detected; cheap relative to a full tick but not free.
func (l *Location) OscillationStrength() float64 {
	if l.count < 4 {
		return 0
	}
	var speeds [HistorySize - 1]float64
	n := l.count - 1
	var sum float64
	for i := 0; i < n; i++ {
		v := r3.Sub(l.relative(i), l.relative(i+1))
		speeds[i] = r3.Norm(v)
		sum += speeds[i]
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	if mean <= 0.0001 {
		return 0
	}
	var variance float64
	for i := 0; i < n; i++ {
		d := speeds[i] - mean
		variance += d * d
	}
	variance /= float64(n)
	cv := math.Sqrt(variance) / mean
	if cv > 1 {
		return 1
	}
	return cv
}

// AdaptiveDampingFactor returns 0, 0.2, or 0.5+0.5*strength depending on the
// detected oscillation level, letting the physics engine damp chattering
// joints without slowing the whole fabric down.
func (l *Location) AdaptiveDampingFactor() float64 {
	switch l.Oscillation() {
	case OscillationNone:
		return 0
	case OscillationMild:
		return 0.2
	default:
		return 0.5 + 0.5*l.OscillationStrength()
	}
}

// HasFullHistory reports whether the ring buffer has wrapped at least once.
func (l *Location) HasFullHistory() bool { return l.count >= HistorySize }

// Translate applies v to every stored position, so global motions like
// centralization do not corrupt recent-history derivatives.
func (l *Location) Translate(v r3.Vec) {
	for i := range l.history {
		l.history[i] = r3.Add(l.history[i], v)
	}
}

// Transform applies a 4x4 homogeneous matrix to every stored position.
func (l *Location) Transform(m *mat.Dense) {
	for i := range l.history {
		l.history[i] = TransformPoint(m, l.history[i])
	}
}

// TransformPoint applies a 4x4 homogeneous transform to a point.
func TransformPoint(m *mat.Dense, p r3.Vec) r3.Vec {
	v := mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1})
	var out mat.VecDense
	out.MulVec(m, v)
	w := out.AtVec(3)
	if w == 0 {
		w = 1
	}
	return r3.Vec{X: out.AtVec(0) / w, Y: out.AtVec(1) / w, Z: out.AtVec(2) / w}
}
