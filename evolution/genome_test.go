package evolution

import "testing"

func TestGenomeEmptyNeverSkips(t *testing.T) {
	g := NewGenome()
	for _, pos := range []int{0, 1, 255, 256, 10000} {
		if g.ShouldSkip(pos) {
			t.Errorf("empty genome should not skip position %d", pos)
		}
	}
}

func TestGenomeWithSkipAtMarksExactPosition(t *testing.T) {
	g := NewGenome().WithSkipAt(42)
	if !g.ShouldSkip(42) {
		t.Fatal("expected position 42 to be a skip point")
	}
	if g.ShouldSkip(41) || g.ShouldSkip(43) {
		t.Fatal("neighboring positions should not be skip points")
	}
}

func TestGenomeWithSkipAtBeyond256(t *testing.T) {
	g := NewGenome().WithSkipAt(300)
	if !g.ShouldSkip(300) {
		t.Fatal("expected position 300 to be a skip point")
	}
	if len(g.Offsets()) < 2 {
		t.Fatalf("expected offset >=256 to be split across multiple bytes, got %v", g.Offsets())
	}
}

func TestGenomeMultipleSkipsInOrder(t *testing.T) {
	g := NewGenome().WithSkipAt(10).WithSkipAt(20).WithSkipAt(500)
	for _, pos := range []int{10, 20, 500} {
		if !g.ShouldSkip(pos) {
			t.Errorf("expected position %d to be a skip point", pos)
		}
	}
	positions := g.SkipPositions()
	want := []int{10, 20, 500}
	if len(positions) != len(want) {
		t.Fatalf("got %v, want %v", positions, want)
	}
	for i, p := range want {
		if positions[i] != p {
			t.Errorf("position %d: got %d, want %d", i, positions[i], p)
		}
	}
}

func TestGenomeInsertionPreservesEarlierSkips(t *testing.T) {
	g := NewGenome().WithSkipAt(10).WithSkipAt(100)
	g2 := g.WithSkipAt(50)

	for _, pos := range []int{10, 50, 100} {
		if !g2.ShouldSkip(pos) {
			t.Errorf("expected position %d to remain a skip point after insertion", pos)
		}
	}
}

func TestGenomeRoundTripThroughOffsets(t *testing.T) {
	g := NewGenome().WithSkipAt(5).WithSkipAt(400).WithSkipAt(900)
	g2 := GenomeFromOffsets(g.Offsets())
	for _, pos := range []int{5, 400, 900} {
		if g2.ShouldSkip(pos) != g.ShouldSkip(pos) {
			t.Errorf("round trip mismatch at position %d", pos)
		}
	}
}
