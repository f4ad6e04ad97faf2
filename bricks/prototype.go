// Package bricks is the brick catalogue: prototypes authored once with a
// fluent builder, baked into numeric BakedBrick records, and instantiated
// per (name, role) request as a rigidly transformed clone with role-
// filtered face aliases. Baking itself is a one-time, deterministic
// placement step — the iterative offline "oven" that settles a prototype
// into physical equilibrium is treated as an external collaborator and is
// not reimplemented here; prototypes are authored with coordinates already
// close to a tensegrity equilibrium, the way a shipped baked-brick data
// file would be.
package bricks

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/fabric"
)

// JointTag names a joint within a brick prototype.
type JointTag string

// TagPair is an (alpha, omega) joint tag pair, used by the pushes/pulls
// convenience constructors.
type TagPair [2]JointTag

// pushSpec and pullSpec mirror fabric.Interval fields, resolved against
// joint tags instead of live joint ids.
type pushSpec struct {
	alpha, omega JointTag
	length       float64
}

type pullSpec struct {
	alpha, omega JointTag
	length       float64
}

type faceSpec struct {
	tags    [3]JointTag
	spin    fabric.Spin
	aliases []fabric.Alias
}

// Prototype is a declarative brick authored in code: named pushes, named
// pulls, and face templates, plus the explicit joint coordinates the
// builder was given (the baked-data stand-in described above).
type Prototype struct {
	Name      string
	positions map[JointTag]r3.Vec
	pushes    []pushSpec
	pulls     []pullSpec
	faces     []faceSpec
	order     []JointTag // first-seen order, for stable joint indices
}

// NewPrototype starts a fluent brick definition.
func NewPrototype(name string) *Prototype {
	return &Prototype{Name: name, positions: make(map[JointTag]r3.Vec)}
}

func (p *Prototype) place(tag JointTag, pos r3.Vec) {
	if _, seen := p.positions[tag]; !seen {
		p.order = append(p.order, tag)
	}
	p.positions[tag] = pos
}

// Joint registers an explicit coordinate for tag, authored by the brick
// designer as the prototype's near-equilibrium geometry.
func (p *Prototype) Joint(tag JointTag, pos r3.Vec) *Prototype {
	p.place(tag, pos)
	return p
}

// pushesOnAxis is the shared implementation behind PushesX/Y/Z: length is
// the ideal (rest) length recorded on the resulting push interval, while
// positions must already have been registered via Joint.
func (p *Prototype) pushesOnAxis(length float64, pairs []TagPair) *Prototype {
	for _, pr := range pairs {
		p.pushes = append(p.pushes, pushSpec{alpha: pr[0], omega: pr[1], length: length})
	}
	return p
}

// PushesX, PushesY, PushesZ declare compression members by symbolic joint
// tags. The axis name documents the strut's principal orientation in the
// prototype's authored geometry; resolution against live joints happens at
// Bake time using the explicit coordinates from Joint.
func (p *Prototype) PushesX(length float64, pairs ...TagPair) *Prototype { return p.pushesOnAxis(length, pairs) }
func (p *Prototype) PushesY(length float64, pairs ...TagPair) *Prototype { return p.pushesOnAxis(length, pairs) }
func (p *Prototype) PushesZ(length float64, pairs ...TagPair) *Prototype { return p.pushesOnAxis(length, pairs) }

// Pulls declares tensile members by symbolic joint tags.
func (p *Prototype) Pulls(length float64, pairs ...TagPair) *Prototype {
	for _, pr := range pairs {
		p.pulls = append(p.pulls, pullSpec{alpha: pr[0], omega: pr[1], length: length})
	}
	return p
}

// Face declares a face with role-conditioned aliases, e.g.
//
//	p.Face(fabric.SpinLeft, [3]JointTag{"b0","b1","b2"},
//	    fabric.Alias{Role: fabric.RoleSeed, Name: "Base"},
//	    fabric.Alias{Role: fabric.RoleOnSpinLeft, Name: "Attach"})
func (p *Prototype) Face(spin fabric.Spin, tags [3]JointTag, aliases ...fabric.Alias) *Prototype {
	p.faces = append(p.faces, faceSpec{tags: tags, spin: spin, aliases: aliases})
	return p
}
