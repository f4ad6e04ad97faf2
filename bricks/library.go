package bricks

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/fabric"
)

// buildTwistTower authors a brick with `layers` stacked twisted-triangle
// rings (layers+1 rings total, 3 joints per ring), each consecutive ring
// pair joined by 3 skew struts with the given twist angle — the shared
// geometry behind both the Single and the elongated Torque bricks. The
// bottom ring is aliased "Base" and the top ring "Top", each visible to
// every role, matching a brick meant to extend a column.
func buildTwistTower(name string, layers int, radius, ringHeight, twist float64) *Prototype {
	p := NewPrototype(name)
	rings := layers + 1
	ringTags := make([][3]JointTag, rings)

	for r := 0; r < rings; r++ {
		base := twist * float64(r)
		y := ringHeight * float64(r)
		for i := 0; i < 3; i++ {
			theta := base + 2*math.Pi*float64(i)/3
			tag := JointTag(fmt.Sprintf("%s-r%d-%d", name, r, i))
			pos := r3.Vec{X: radius * math.Cos(theta), Y: y, Z: radius * math.Sin(theta)}
			p.Joint(tag, pos)
			ringTags[r][i] = tag
		}
	}

	strutLen := r3.Norm(r3.Sub(p.positions[ringTags[1][0]], p.positions[ringTags[0][0]]))
	for r := 0; r < layers; r++ {
		for i := 0; i < 3; i++ {
			p.PushesX(strutLen, TagPair{ringTags[r][i], ringTags[r+1][i]})
		}
	}

	edgeLen := r3.Norm(r3.Sub(p.positions[ringTags[0][1]], p.positions[ringTags[0][0]]))
	for r := 0; r < rings; r++ {
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			p.Pulls(edgeLen, TagPair{ringTags[r][i], ringTags[r][j]})
		}
	}

	diagLen := r3.Norm(r3.Sub(p.positions[ringTags[1][1]], p.positions[ringTags[0][0]]))
	for r := 0; r < layers; r++ {
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			p.Pulls(diagLen, TagPair{ringTags[r][i], ringTags[r+1][j]})
		}
	}

	p.Face(fabric.SpinLeft, ringTags[0],
		fabric.Alias{Role: fabric.RoleSeed, Name: "Base"},
		fabric.Alias{Role: fabric.RoleOnSpinLeft, Name: "Base"},
		fabric.Alias{Role: fabric.RoleOnSpinRight, Name: "Base"},
	)
	p.Face(fabric.SpinRight, ringTags[rings-1],
		fabric.Alias{Role: fabric.RoleSeed, Name: "Top"},
		fabric.Alias{Role: fabric.RoleOnSpinLeft, Name: "Top"},
		fabric.Alias{Role: fabric.RoleOnSpinRight, Name: "Top"},
	)
	return p
}

// SingleTwistPrototype is the classic 3-strut tensegrity prism: one twisted
// layer, 6 joints, 3 pushes, 9 pulls, named Base/Top faces.
func SingleTwistPrototype() *Prototype {
	return buildTwistTower("SingleTwist", 1, 1.0, 1.2, math.Pi/3)
}

// TorquePrototype is an elongated 3-layer twist tower: 12 joints, 9 pushes.
func TorquePrototype() *Prototype {
	return buildTwistTower("Torque", 3, 1.0, 1.0, math.Pi/3)
}

// OmniPrototype is the symmetric 6-strut tensegrity built from the 12
// vertices of an icosahedron: each strut joins an antipodal vertex pair
// (6 struts, 12 joints, no shared vertices between struts), and every
// nearest-neighbor vertex pair is a pull, reproducing the icosahedron's
// edge net.
func OmniPrototype() *Prototype {
	phi := (1 + math.Sqrt(5)) / 2
	raw := [12]r3.Vec{
		{X: 0, Y: 1, Z: phi}, {X: 0, Y: 1, Z: -phi}, {X: 0, Y: -1, Z: phi}, {X: 0, Y: -1, Z: -phi},
		{X: 1, Y: phi, Z: 0}, {X: 1, Y: -phi, Z: 0}, {X: -1, Y: phi, Z: 0}, {X: -1, Y: -phi, Z: 0},
		{X: phi, Y: 0, Z: 1}, {X: phi, Y: 0, Z: -1}, {X: -phi, Y: 0, Z: 1}, {X: -phi, Y: 0, Z: -1},
	}
	antipode := [12]int{3, 2, 1, 0, 7, 6, 5, 4, 11, 10, 9, 8}

	p := NewPrototype("Omni")
	tags := make([]JointTag, 12)
	for i, v := range raw {
		tags[i] = JointTag(fmt.Sprintf("omni-%d", i))
		p.Joint(tags[i], v)
	}

	edgeLen := r3.Norm(r3.Sub(raw[0], raw[4]))
	const eps = 1e-6

	seenStrut := make(map[int]bool, 12)
	for i := 0; i < 12; i++ {
		if seenStrut[i] {
			continue
		}
		j := antipode[i]
		seenStrut[i], seenStrut[j] = true, true
		strutLen := r3.Norm(r3.Sub(raw[j], raw[i]))
		p.PushesX(strutLen, TagPair{tags[i], tags[j]})
	}

	for i := 0; i < 12; i++ {
		for j := i + 1; j < 12; j++ {
			if math.Abs(r3.Norm(r3.Sub(raw[j], raw[i]))-edgeLen) < eps {
				p.Pulls(edgeLen, TagPair{tags[i], tags[j]})
			}
		}
	}

	faceTriples := omniFaceTriples(raw[:], edgeLen, eps)
	if len(faceTriples) < 2 {
		panic("bricks: expected at least two icosahedron faces for the Omni brick")
	}
	p.Face(fabric.SpinLeft, [3]JointTag{tags[faceTriples[0][0]], tags[faceTriples[0][1]], tags[faceTriples[0][2]]},
		fabric.Alias{Role: fabric.RoleSeed, Name: "Base"},
		fabric.Alias{Role: fabric.RoleOnSpinLeft, Name: "Base"},
	)
	p.Face(fabric.SpinRight, [3]JointTag{tags[faceTriples[1][0]], tags[faceTriples[1][1]], tags[faceTriples[1][2]]},
		fabric.Alias{Role: fabric.RoleSeed, Name: "Attach"},
		fabric.Alias{Role: fabric.RoleOnSpinRight, Name: "Attach"},
	)
	return p
}

// omniFaceTriples returns every triple of vertex indices whose three
// pairwise distances all equal edgeLen, i.e. every triangular face of the
// icosahedron described by verts.
func omniFaceTriples(verts []r3.Vec, edgeLen, eps float64) [][3]int {
	isEdge := func(a, b int) bool {
		return math.Abs(r3.Norm(r3.Sub(verts[b], verts[a]))-edgeLen) < eps
	}
	var faces [][3]int
	n := len(verts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !isEdge(i, j) {
				continue
			}
			for k := j + 1; k < n; k++ {
				if isEdge(j, k) && isEdge(i, k) {
					faces = append(faces, [3]int{i, j, k})
				}
			}
		}
	}
	return faces
}

// Library is the static set of baked bricks the catalogue ships, keyed by
// family name.
type Library struct {
	bricks map[string]BakedBrick
}

// NewLibrary bakes every prototype in the standard brick families.
func NewLibrary() *Library {
	l := &Library{bricks: make(map[string]BakedBrick)}
	l.bricks["Single"] = Bake(SingleTwistPrototype())
	l.bricks["Torque"] = Bake(TorquePrototype())
	l.bricks["Omni"] = Bake(OmniPrototype())
	return l
}

// Get returns the named baked brick, left-handed as authored.
func (l *Library) Get(name string) (BakedBrick, error) {
	b, ok := l.bricks[name]
	if !ok {
		return BakedBrick{}, fmt.Errorf("bricks: unknown brick %q", name)
	}
	return b, nil
}

// GetChiral returns the named baked brick for the requested spin: SpinLeft
// returns the authored geometry, SpinRight returns its mirror image, giving
// the "SingleTwistLeft"/"SingleTwistRight" pair the column grower alternates
// between without a second hand-authored prototype.
func (l *Library) GetChiral(name string, spin fabric.Spin) (BakedBrick, error) {
	b, err := l.Get(name)
	if err != nil {
		return BakedBrick{}, err
	}
	if spin == fabric.SpinRight {
		return b.Mirror(), nil
	}
	return b, nil
}
