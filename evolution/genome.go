package evolution

// Genome encodes which draws in a DecisionMaker's random stream are
// skipped: a run-length-encoded list of byte offsets between consecutive
// skip positions, where 0 means "advance 256 without a skip" so arbitrarily
// long gaps stay compact. Inserting a skip anywhere shifts every decision
// downstream of it, which is exactly the slippage mutation relies on:
// growing a structure by one more skip reinterprets the whole rest of its
// random stream instead of touching a single parameter.
//
// Ported from original_source/src/build/evo/genome.rs verbatim; the
// encoding is part of the reproducibility contract (same seed + genome
// must replay identically), so it is not a place to take Go-idiomatic
// liberties.
type Genome struct {
	skips []byte
}

// NewGenome returns an empty genome (no skips at all).
func NewGenome() Genome { return Genome{} }

// GenomeFromOffsets builds a genome from raw skip offsets, as read back
// from serialized storage.
func GenomeFromOffsets(offsets []byte) Genome {
	return Genome{skips: append([]byte(nil), offsets...)}
}

// WithSkipAt returns a mutated copy with a new skip inserted at
// absolutePosition in the virtual (skip-counting) position space. The byte
// encoding has no form for a skip at position 0 or at a gap of an exact
// multiple of 256 after the previous skip: such a skip is not recorded, and
// an existing skip left at such a gap from the new one is dropped.
func (g Genome) WithSkipAt(absolutePosition int) Genome {
	newSkips := make([]byte, 0, len(g.skips)+3)
	currentPos := 0
	inserted := false
	carry := 0

	for i := 0; i < len(g.skips); i++ {
		offset := g.skips[i]
		advance := 256
		if offset != 0 {
			advance = int(offset)
		}
		nextPos := currentPos + advance

		switch {
		case !inserted && absolutePosition < nextPos:
			encodeOffset(&newSkips, absolutePosition-currentPos)
			inserted = true
			currentPos = absolutePosition

			if offset != 0 {
				encodeOffset(&newSkips, nextPos-currentPos)
				currentPos = nextPos
			} else {
				// The rest of this skip-free run carries into the next
				// offset, so no skip is written at nextPos.
				carry = nextPos - currentPos
				currentPos = nextPos
			}

		case !inserted && absolutePosition == nextPos && offset != 0:
			newSkips = append(newSkips, offset)
			currentPos = nextPos
			inserted = true

		case carry > 0 && offset == 0:
			carry += 256
			currentPos = nextPos

		case carry > 0:
			encodeOffset(&newSkips, carry+int(offset))
			carry = 0
			currentPos = nextPos

		default:
			newSkips = append(newSkips, offset)
			if offset != 0 {
				currentPos = nextPos
			} else {
				currentPos += 256
			}
		}
	}

	if !inserted {
		encodeOffset(&newSkips, absolutePosition-currentPos)
	}

	return Genome{skips: newSkips}
}

// encodeOffset appends offset to skips, splitting it into as many 0 (i.e.
// advance-256) bytes as needed followed by the remainder.
func encodeOffset(skips *[]byte, offset int) {
	for offset >= 256 {
		*skips = append(*skips, 0)
		offset -= 256
	}
	if offset > 0 {
		*skips = append(*skips, byte(offset))
	}
}

// ShouldSkip reports whether position in the virtual sequence is a skip
// point.
func (g Genome) ShouldSkip(position int) bool {
	currentPos := 0
	for _, offset := range g.skips {
		if offset == 0 {
			currentPos += 256
			continue
		}
		currentPos += int(offset)
		if currentPos == position {
			return true
		}
		if currentPos > position {
			return false
		}
	}
	return false
}

// SkipPositions returns every skip position in absolute terms, for
// debugging and for mutation targeting that needs to avoid a position
// already skipped.
func (g Genome) SkipPositions() []int {
	var positions []int
	currentPos := 0
	for _, offset := range g.skips {
		if offset == 0 {
			currentPos += 256
			continue
		}
		currentPos += int(offset)
		positions = append(positions, currentPos)
	}
	return positions
}

// Len returns the number of skips in this genome.
func (g Genome) Len() int { return len(g.skips) }

// IsEmpty reports whether the genome has no skips.
func (g Genome) IsEmpty() bool { return len(g.skips) == 0 }

// Offsets returns the raw skip offsets, for serialization.
func (g Genome) Offsets() []byte { return g.skips }
