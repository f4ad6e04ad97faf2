package units

import "testing"

func TestMassConversions(t *testing.T) {
	mass := Grams(1000.0)
	if mass.ToKg() != 1.0 {
		t.Errorf("expected 1.0 kg, got %v", mass.ToKg())
	}
	mass2 := GramsFromKg(2.5)
	if mass2 != 2500.0 {
		t.Errorf("expected 2500g, got %v", mass2)
	}
}

func TestLengthConversions(t *testing.T) {
	length := Millimeters(1000.0)
	if length.ToMeters() != 1.0 {
		t.Errorf("expected 1.0m, got %v", length.ToMeters())
	}
	length2 := MillimetersFromMeters(0.5)
	if length2 != 500.0 {
		t.Errorf("expected 500mm, got %v", length2)
	}
}

func TestTicksRoundTrip(t *testing.T) {
	s := Seconds(2.5)
	ticks := s.Ticks()
	if ticks != int64(2.5*TicksPerSecond) {
		t.Errorf("unexpected tick count %d", ticks)
	}
	back := FromTicks(ticks)
	if back != s {
		t.Errorf("round trip mismatch: %v != %v", back, s)
	}
}

func TestProgressMonotonicity(t *testing.T) {
	var p Progress
	p.Start(Age(0), Seconds(1.0))
	prev := -1.0
	for tick := int64(0); tick <= Seconds(1.0).Ticks(); tick++ {
		now := Age(tick)
		n := p.Nuance(now)
		if n < prev {
			t.Fatalf("nuance decreased at tick %d: %v < %v", tick, n, prev)
		}
		prev = n
		busy := p.IsBusy(now)
		if !busy && n != 1.0 {
			t.Fatalf("expected nuance==1.0 exactly when not busy, got %v at tick %d", n, tick)
		}
	}
	if p.IsBusy(Age(Seconds(1.0).Ticks())) {
		t.Fatalf("expected progress to be done at end age")
	}
}

func TestProgressInactiveIsNotBusy(t *testing.T) {
	var p Progress
	if p.IsBusy(Age(0)) {
		t.Fatalf("zero-value progress should never be busy")
	}
	if p.Nuance(Age(0)) != 1.0 {
		t.Fatalf("zero-value progress should report nuance 1.0")
	}
}
