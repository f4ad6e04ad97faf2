package evolution

import "testing"

func TestDecisionMakerDeterministicWithSameSeedAndGenome(t *testing.T) {
	g := NewGenome().WithSkipAt(3)
	a := NewDecisionMaker(12345, g)
	b := NewDecisionMaker(12345, g)

	for i := 0; i < 50; i++ {
		if a.Choose(100) != b.Choose(100) {
			t.Fatalf("decision %d diverged between identically-seeded makers", i)
		}
	}
}

func TestDecisionMakerDifferentGenomeDiverges(t *testing.T) {
	a := NewDecisionMaker(999, NewGenome())
	b := NewDecisionMaker(999, NewGenome().WithSkipAt(1))

	diverged := false
	for i := 0; i < 20; i++ {
		if a.Choose(1_000_000) != b.Choose(1_000_000) {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Fatal("expected a skip at position 1 to change at least one early decision")
	}
}

func TestDecisionMakerRangeStaysWithinBounds(t *testing.T) {
	d := NewDecisionMaker(1, NewGenome())
	for i := 0; i < 200; i++ {
		v := d.Range(-2, 5)
		if v < -2 || v >= 5 {
			t.Fatalf("Range returned %f, out of [-2, 5)", v)
		}
	}
}

func TestDecisionMakerRandomDirectionIsUnitLength(t *testing.T) {
	d := NewDecisionMaker(7, NewGenome())
	for i := 0; i < 50; i++ {
		v := d.RandomDirection()
		lenSq := v.X*v.X + v.Y*v.Y + v.Z*v.Z
		if lenSq < 0.99 || lenSq > 1.01 {
			t.Fatalf("direction %v is not unit length (lenSq=%f)", v, lenSq)
		}
	}
}

func TestDecisionMakerVirtualPositionAdvancesPerDraw(t *testing.T) {
	d := NewDecisionMaker(1, NewGenome())
	start := d.VirtualPosition()
	d.Decide()
	d.Decide()
	if d.VirtualPosition() <= start {
		t.Fatal("virtual position should advance with each draw")
	}
}
