package fabric

import (
	"math"

	"github.com/tensegral/fabricator/units"
)

// Role fixes an interval's sign convention and default stiffness/radius.
type Role int

const (
	RolePushing Role = iota
	RolePulling
	RoleSpringy
	RoleMeasure
	RoleSupport
)

func (r Role) String() string {
	switch r {
	case RolePushing:
		return "Pushing"
	case RolePulling:
		return "Pulling"
	case RoleSpringy:
		return "Springy"
	case RoleMeasure:
		return "Measure"
	case RoleSupport:
		return "Support"
	default:
		return "Unknown"
	}
}

// Material carries the per-interval stiffness and linear density used by
// the physics force pass.
type Material struct {
	// StiffnessPerLength is Newtons per millimeter of extension (linear
	// spring coefficient), scaled by the active physics preset's stiffness
	// factor.
	StiffnessPerLength float64
	// LinearDensity is grams per millimeter, used to derive each endpoint's
	// mass contribution.
	LinearDensity float64
	Support       bool
}

// MuscleGroup marks an interval as participating in a muscle cycle: its
// ideal length is modulated by amplitude*waveform(phase+offset).
type MuscleGroup struct {
	GroupID     uint8
	PhaseOffset units.Percent
	Amplitude   float64
	Waveform    Waveform
}

// Waveform selects the muscle modulation shape.
type Waveform int

const (
	WaveformSine Waveform = iota
	WaveformPulse
)

// AttachmentSlot is a discrete point on a push interval's end where a pull
// interval may terminate.
type AttachmentSlot struct {
	OnAlphaEnd bool
	Pull       IntervalID // Invalid if unoccupied
}

// AttachmentRef records which push attachment slot a pull interval
// terminates at, the reciprocal of AttachmentSlot.Pull so either endpoint
// can be traversed to the other.
type AttachmentRef struct {
	Push IntervalID
	Slot int
}

// Interval is a directed pair (Alpha, Omega) carrying a role, material,
// span, and current strain.
type Interval struct {
	ID       IntervalID
	Alpha    JointID
	Omega    JointID
	Role     Role
	Material Material
	Span     Span
	Strain   float64

	Muscle *MuscleGroup

	// Attachments is only meaningful for Role == RolePushing.
	Attachments []AttachmentSlot
	// AttachedTo is only meaningful for pull-like roles anchored to a push
	// interval's attachment slot rather than a plain joint-to-joint pull.
	AttachedTo *AttachmentRef
}

// IdealLength resolves the interval's current rest length, including any
// muscle modulation.
func (iv *Interval) IdealLength(now units.Age, cyclePhase float64) float64 {
	base := iv.Span.IdealLength(now)
	if iv.Muscle == nil {
		return base
	}
	phase := cyclePhase + iv.Muscle.PhaseOffset.Fraction()
	mod := iv.Muscle.Amplitude * sineOrPulse(iv.Muscle.Waveform, phase)
	result := base + mod
	if result <= 0 {
		return base
	}
	return result
}

func sineOrPulse(w Waveform, phase float64) float64 {
	// Normalize phase to [0,1).
	p := phase - float64(int64(phase))
	if p < 0 {
		p++
	}
	switch w {
	case WaveformPulse:
		const duty = 0.5
		if p < duty {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

// CreateInterval adds a new interval between two live joints and returns its
// id. Both endpoints must already be live joints; a reference to a dead
// joint is a structural invariant violation.
func (f *Fabric) CreateInterval(alpha, omega JointID, role Role, material Material, idealLength float64) IntervalID {
	if !f.JointAlive(alpha) || !f.JointAlive(omega) {
		panic("fabric: interval endpoints must be live joints")
	}
	if idealLength <= 0 {
		panic("fabric: interval ideal length must be strictly positive")
	}
	iv := Interval{
		Alpha:    alpha,
		Omega:    omega,
		Role:     role,
		Material: material,
		Span:     FixedSpan{Length: idealLength},
	}
	id := IntervalID(f.intervals.insert(iv))
	stored := f.intervals.get(int(id))
	stored.ID = id
	return id
}

// Interval returns a pointer to the live interval with the given id, or nil.
func (f *Fabric) Interval(id IntervalID) *Interval {
	return f.intervals.get(int(id))
}

// IntervalAlive reports whether id currently references a live interval.
func (f *Fabric) IntervalAlive(id IntervalID) bool {
	return f.intervals.isAlive(int(id))
}

// RemoveInterval tombstones an interval. If it was a push with occupied
// attachment slots, or a pull attached to a push's slot, the reciprocal
// reference is cleared so no dangling attachment is left behind.
func (f *Fabric) RemoveInterval(id IntervalID) {
	iv := f.Interval(id)
	if iv == nil {
		return
	}
	if iv.Role == RolePushing {
		for _, slot := range iv.Attachments {
			if slot.Pull != Invalid {
				if pull := f.Interval(slot.Pull); pull != nil {
					pull.AttachedTo = nil
				}
			}
		}
	}
	if iv.AttachedTo != nil {
		if push := f.Interval(iv.AttachedTo.Push); push != nil {
			slotIdx := iv.AttachedTo.Slot
			if slotIdx >= 0 && slotIdx < len(push.Attachments) {
				push.Attachments[slotIdx].Pull = Invalid
			}
		}
	}
	f.intervals.remove(int(id))
}

// EachInterval visits every live interval.
func (f *Fabric) EachInterval(fn func(id IntervalID, iv *Interval)) {
	f.intervals.each(func(id int, iv *Interval) { fn(IntervalID(id), iv) })
}

// IntervalCount returns the number of live intervals.
func (f *Fabric) IntervalCount() int { return f.intervals.len() }

// AttachPull connects a pull interval to one of a push interval's
// attachment slots, setting both the slot's forward reference and the
// pull's back-reference atomically.
func (f *Fabric) AttachPull(push IntervalID, slotIndex int, pull IntervalID) error {
	pushIv := f.Interval(push)
	if pushIv == nil || pushIv.Role != RolePushing {
		panic("fabric: attachment slot must belong to a live push interval")
	}
	pullIv := f.Interval(pull)
	if pullIv == nil {
		panic("fabric: attachment target must be a live pull interval")
	}
	if slotIndex < 0 || slotIndex >= len(pushIv.Attachments) {
		panic("fabric: attachment slot index out of range")
	}
	pushIv.Attachments[slotIndex].Pull = pull
	pullIv.AttachedTo = &AttachmentRef{Push: push, Slot: slotIndex}
	return nil
}
