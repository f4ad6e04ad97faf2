// Package units provides type-safe wrappers for the physical quantities used
// throughout the fabricator, plus the fabric's tick clock and one-shot
// progress ramps.
package units

import "math"

// TicksPerSecond is the fixed simulation tick rate. One simulated second
// advances Age by this many ticks.
const TicksPerSecond = 4000

// Seconds is a duration of simulated time.
type Seconds float64

// Named durations used throughout build/shape scheduling.
const (
	Immediate Seconds = 0.0
	Moment    Seconds = 0.2
)

// Ticks converts a duration to an integer tick count at TicksPerSecond.
func (s Seconds) Ticks() int64 {
	return int64(math.Round(float64(s) * TicksPerSecond))
}

// FromTicks converts a tick count back to Seconds.
func FromTicks(ticks int64) Seconds {
	return Seconds(float64(ticks) / TicksPerSecond)
}

// Millimeters is a length in millimeters, the fabric's native scale unit.
type Millimeters float64

// ToMeters converts to Meters.
func (m Millimeters) ToMeters() Meters { return Meters(float64(m) / 1000.0) }

// MillimetersFromMeters constructs Millimeters from Meters.
func MillimetersFromMeters(m Meters) Millimeters { return Millimeters(float64(m) * 1000.0) }

// Meters is a length in meters, the model's working unit.
type Meters float64

// ToMillimeters converts to Millimeters.
func (m Meters) ToMillimeters() Millimeters { return Millimeters(float64(m) * 1000.0) }

// Grams is a mass in grams.
type Grams float64

// ToKg converts grams to kilograms.
func (g Grams) ToKg() float64 { return float64(g) / 1000.0 }

// GramsFromKg constructs Grams from kilograms.
func GramsFromKg(kg float64) Grams { return Grams(kg * 1000.0) }

// Percent is a value expressed as a percentage (3.0 means 3%).
type Percent float64

// Fraction returns the percent as a 0..1 fraction.
func (p Percent) Fraction() float64 { return float64(p) / 100.0 }

// Physical constants, reused by the physics presets.
const (
	EarthGravityMetersPerSec2      = 9.81
	EarthGravityMillimetersPerSec2 = 9810.0
)

// Age is the fabric's tick counter: the canonical time coordinate inside the
// engine. It increases by exactly one per physics tick and never resets.
type Age int64

// Seconds converts the age to simulated seconds since fabric creation.
func (a Age) Seconds() Seconds { return FromTicks(int64(a)) }

// Progress is a one-shot ramp from 0 to 1, anchored to a start Age and a
// duration. It is the engine's substitute for coroutines or timers: every
// timed behavior (an Approaching span, a pretense ramp, a shape step dwell)
// is expressed as a start age plus a duration, and progress is read back
// from the current Age.
type Progress struct {
	active   bool
	startAge Age
	endAge   Age
}

// Start begins a new ramp of the given duration, anchored to startAge.
func (p *Progress) Start(startAge Age, duration Seconds) {
	p.active = true
	p.startAge = startAge
	p.endAge = startAge + Age(duration.Ticks())
}

// Nuance returns the ramp's value in [0,1] for the given current age. It is
// non-decreasing while busy and reaches exactly 1.0 the tick IsBusy becomes
// false, never overshooting past that.
func (p *Progress) Nuance(now Age) float64 {
	if !p.active {
		return 1.0
	}
	if now >= p.endAge {
		return 1.0
	}
	total := p.endAge - p.startAge
	if total <= 0 {
		return 1.0
	}
	elapsed := now - p.startAge
	if elapsed < 0 {
		return 0.0
	}
	return float64(elapsed) / float64(total)
}

// IsBusy reports whether the ramp has not yet reached its end age.
func (p *Progress) IsBusy(now Age) bool {
	if !p.active {
		return false
	}
	return now < p.endAge
}

// EndAge returns the age at which the ramp completes.
func (p *Progress) EndAge() Age { return p.endAge }

// Lerp linearly interpolates between from and to by nuance in [0,1].
func Lerp(from, to, nuance float64) float64 {
	return from + (to-from)*nuance
}
