package fabric

import "github.com/tensegral/fabricator/units"

// Span resolves an interval's ideal (rest) length at a given fabric age.
type Span interface {
	IdealLength(now units.Age) float64
}

// FixedSpan never changes: the ideal length is constant.
type FixedSpan struct {
	Length float64
}

// IdealLength implements Span.
func (s FixedSpan) IdealLength(units.Age) float64 { return s.Length }

// ApproachingSpan linearly interpolates ideal length from From to To over
// a duration starting at a given age, landing exactly on From at the start
// and exactly on To once the ramp completes.
type ApproachingSpan struct {
	From, To float64
	progress units.Progress
}

// NewApproachingSpan starts a ramp immediately.
func NewApproachingSpan(from, to float64, startAge units.Age, duration units.Seconds) *ApproachingSpan {
	s := &ApproachingSpan{From: from, To: to}
	s.progress.Start(startAge, duration)
	return s
}

// IdealLength implements Span.
func (s *ApproachingSpan) IdealLength(now units.Age) float64 {
	return units.Lerp(s.From, s.To, s.progress.Nuance(now))
}

// IsBusy reports whether the approach has not yet completed.
func (s *ApproachingSpan) IsBusy(now units.Age) bool { return s.progress.IsBusy(now) }

// PretenstSpan ramps from a slackened rest length to a pretensioned target
// length (down for pulls, up for pushes) over the pretense ramp duration.
type PretenstSpan struct {
	RestLength   float64
	TargetLength float64
	ramp         units.Progress
}

// NewPretenstSpan starts the pretense ramp. rest must be > 0 and target must
// be >= 0 — a pretensioned length never goes negative; callers are expected
// to clamp target to >= 0 before calling.
func NewPretenstSpan(rest, target float64, startAge units.Age, duration units.Seconds) *PretenstSpan {
	if rest <= 0 {
		panic("fabric: pretenst span rest length must be positive")
	}
	if target < 0 {
		panic("fabric: pretenst span target length must not be negative")
	}
	s := &PretenstSpan{RestLength: rest, TargetLength: target}
	s.ramp.Start(startAge, duration)
	return s
}

// IdealLength implements Span.
func (s *PretenstSpan) IdealLength(now units.Age) float64 {
	return units.Lerp(s.RestLength, s.TargetLength, s.ramp.Nuance(now))
}

// IsBusy reports whether the ramp has not yet completed.
func (s *PretenstSpan) IsBusy(now units.Age) bool { return s.ramp.IsBusy(now) }
