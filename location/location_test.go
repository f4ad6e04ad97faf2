package location

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestUpdateAndCurrent(t *testing.T) {
	l := New(r3.Vec{X: 1, Y: 2, Z: 3})
	if got := l.Current(); got != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("unexpected initial position %v", got)
	}
	l.Update(r3.Vec{X: 4, Y: 5, Z: 6})
	if got := l.Current(); got != (r3.Vec{X: 4, Y: 5, Z: 6}) {
		t.Fatalf("unexpected updated position %v", got)
	}
}

func TestVelocitySimple(t *testing.T) {
	l := New(r3.Vec{X: 0, Y: 0, Z: 0})
	l.Update(r3.Vec{X: 1, Y: 0, Z: 0})
	v := l.VelocitySimple(1.0)
	if v.X != 1 {
		t.Fatalf("expected velocity.X == 1, got %v", v)
	}
}

func TestTranslateAppliesToFullHistory(t *testing.T) {
	l := New(r3.Vec{X: 0, Y: 0, Z: 0})
	for i := 0; i < HistorySize+2; i++ {
		l.Update(r3.Vec{X: float64(i), Y: 0, Z: 0})
	}
	l.Translate(r3.Vec{X: 10, Y: 0, Z: 0})
	for i := 0; i < HistorySize; i++ {
		if l.history[i].X < 10 {
			t.Fatalf("translate did not reach history slot %d: %v", i, l.history[i])
		}
	}
}

func TestOscillationDetection(t *testing.T) {
	l := New(r3.Vec{})
	// Oscillate back and forth along X.
	positions := []float64{0, 1, 0, 1, 0, 1, 0}
	for _, x := range positions {
		l.Update(r3.Vec{X: x})
	}
	if lvl := l.Oscillation(); lvl != OscillationStrong {
		t.Fatalf("expected strong oscillation, got %v", lvl)
	}
	if f := l.AdaptiveDampingFactor(); f < 0.5 {
		t.Fatalf("expected damping factor >= 0.5 for strong oscillation, got %v", f)
	}
}

func TestSmoothMotionHasNoOscillation(t *testing.T) {
	l := New(r3.Vec{})
	for i := 1; i <= HistorySize+1; i++ {
		l.Update(r3.Vec{X: float64(i)})
	}
	if lvl := l.Oscillation(); lvl != OscillationNone {
		t.Fatalf("expected no oscillation for monotonic motion, got %v", lvl)
	}
	if f := l.AdaptiveDampingFactor(); f != 0 {
		t.Fatalf("expected zero damping for smooth motion, got %v", f)
	}
}
