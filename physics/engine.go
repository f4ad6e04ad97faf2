package physics

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/fabric"
)

// ForceOfGravity returns the per-tick gravity decrement for a joint of the
// given mass under this surface character (zero when the surface is
// Absent, matching a structure still floating during build/pretension).
func (s SurfaceCharacter) ForceOfGravity(massGrams float64) float64 {
	if s == SurfaceAbsent {
		return 0
	}
	return massGrams * gravityPerGram
}

// Antigravity returns the constant upward nudge applied while submerged.
func (s SurfaceCharacter) Antigravity() float64 {
	if s == SurfaceAbsent {
		return 0
	}
	return antigravityBase
}

// Iterate executes exactly one physics tick: interval force pass, joint
// integration pass, muscle phase advance, then advances the fabric's Age.
// It returns the average squared speed across non-fixed joints, used by
// higher-level drivers as a convergence gate.
//
// Within the tick, every interval reads joint positions from the
// start-of-tick snapshot: positions are only mutated during the joint
// integration pass, which runs strictly after the force pass completes, so
// no double buffering is needed to honor that ordering guarantee.
func Iterate(f *fabric.Fabric, preset Preset) float64 {
	f.EachJoint(func(_ fabric.JointID, j *fabric.Joint) {
		j.ResetForTick()
	})

	intervalForcePass(f, preset)
	avgSpeed2 := jointIntegrationPass(f, preset)
	advanceMuscles(f, preset)

	f.Tick()
	return avgSpeed2
}

func intervalForcePass(f *fabric.Fabric, preset Preset) {
	f.EachInterval(func(_ fabric.IntervalID, iv *fabric.Interval) {
		alpha := f.Joint(iv.Alpha)
		omega := f.Joint(iv.Omega)
		if alpha == nil || omega == nil {
			panic("physics: interval references a dead joint during force pass")
		}
		alphaPos := alpha.Loc.Current()
		omegaPos := omega.Loc.Current()
		delta := r3.Sub(omegaPos, alphaPos)
		length := r3.Norm(delta)
		ideal := iv.IdealLength(f.Age, f.CyclePhase)
		if ideal <= 0 {
			panic(fmt.Sprintf("physics: interval %d has non-positive ideal length", iv.ID))
		}

		var dir r3.Vec
		if length > 1e-12 {
			dir = r3.Scale(1/length, delta)
		}

		strain := (length - ideal) / ideal
		iv.Strain = strain

		stiffness := iv.Material.StiffnessPerLength * preset.StiffnessFactor

		switch iv.Role {
		case fabric.RolePushing:
			if strain < 0 {
				mag := stiffness * (-strain) * ideal
				applyForce(alpha, omega, dir, -mag)
			}
		default: // Pulling, Springy, Measure, Support
			if strain > 0 {
				mag := stiffness * strain * ideal
				applyForce(alpha, omega, dir, mag)
			}
		}

		massContribution := 0.5 * iv.Material.LinearDensity * ideal
		alpha.IntervalMass += massContribution
		omega.IntervalMass += massContribution
	})
}

// applyForce pushes (negative mag) or pulls (positive mag) the two
// endpoints along dir, which points from alpha toward omega.
func applyForce(alpha, omega *fabric.Joint, dir r3.Vec, mag float64) {
	f := r3.Scale(mag, dir)
	alpha.Force = r3.Add(alpha.Force, f)
	omega.Force = r3.Sub(omega.Force, f)
}

func jointIntegrationPass(f *fabric.Fabric, preset Preset) float64 {
	var sumSpeed2 float64
	var n int
	f.EachJoint(func(_ fabric.JointID, j *fabric.Joint) {
		if j.LocationFixed {
			return
		}
		n++
		pos := j.Loc.Current()
		mass := j.IntervalMass * preset.MassFactor
		if mass <= 0 {
			mass = AmbientMassFloor
		}

		damping := j.Loc.AdaptiveDampingFactor()

		speed2 := r3.Dot(j.Velocity, j.Velocity)
		if speed2 > SpeedSquaredHardCap {
			if preset.Resilient {
				j.Velocity = r3.Vec{}
				speed2 = 0
			} else {
				panic(fmt.Sprintf("physics: joint speed^2 %v exceeds hard cap %v", speed2, SpeedSquaredHardCap))
			}
		}

		aboveSurface := pos.Y >= 0 || !preset.Surface.HasGravity()
		if aboveSurface {
			gravity := preset.Surface.ForceOfGravity(mass)
			j.Velocity.Y -= gravity
			accel := r3.Scale(1/mass, j.Force)
			viscousDrag := r3.Scale(preset.Viscosity*speed2, j.Velocity)
			j.Velocity = r3.Add(j.Velocity, r3.Sub(accel, viscousDrag))
			j.Velocity = r3.Scale(ambientDrag, j.Velocity)
		} else {
			degreeSubmerged := 0.0
			if -pos.Y < 1.0 {
				degreeSubmerged = -pos.Y
			}
			antigravity := preset.Surface.Antigravity() * degreeSubmerged
			accel := r3.Scale(1/mass, j.Force)
			j.Velocity = r3.Add(j.Velocity, accel)

			switch preset.Surface {
			case SurfaceFrozen:
				j.Velocity = r3.Vec{}
				pos.Y = -resurface
			case SurfaceSticky:
				if j.Velocity.Y < 0 {
					j.Velocity.X *= stickyDownDrag
					j.Velocity.Y += antigravity
					j.Velocity.Z *= stickyDownDrag
				} else {
					j.Velocity.X *= ambientDrag
					j.Velocity.Y += antigravity
					j.Velocity.Z *= ambientDrag
				}
			case SurfaceBouncy:
				degreeCushioned := 1 - degreeSubmerged
				j.Velocity = r3.Scale(degreeCushioned, j.Velocity)
				j.Velocity.Y += antigravity
			}
		}
		if damping > 0 {
			j.Velocity = r3.Scale(1-damping, j.Velocity)
		}

		pos = r3.Add(pos, j.Velocity)
		j.Loc.Update(pos)

		sumSpeed2 += r3.Dot(j.Velocity, j.Velocity)
	})
	if n == 0 {
		return 0
	}
	return sumSpeed2 / float64(n)
}

func advanceMuscles(f *fabric.Fabric, preset Preset) {
	if preset.CycleTicks <= 0 {
		return
	}
	f.CyclePhase += 1.0 / preset.CycleTicks
	if f.CyclePhase >= 1.0 {
		f.CyclePhase -= float64(int64(f.CyclePhase))
	}
}

// AmbientMassFloor guards against division by a zero effective mass.
const AmbientMassFloor = fabric.AmbientMass
