// Package assembly is the declarative brick-assembly layer: a BuildNode
// tree describing how bricks attach to one another's named faces, and a
// Grower that walks that tree against a live fabric, one build step at a
// time, joining faces as columns extend.
package assembly

import "github.com/tensegral/fabricator/fabric"

// FaceTag names a face the way a brick's catalogue entry aliases it
// ("Base", "Top", "Attach", ...).
type FaceTag string

// Node is one hub in the build tree: a brick instantiated under a given
// role, with zero or more named faces each carrying a growth Branch.
type Node struct {
	Brick string
	Role  fabric.BrickRole
	Faces map[FaceTag]*Branch
}

// Branch describes what grows from a single face: a column of `Count`
// bricks (1 for a single hop), shrinking by ScalePerStep each hop,
// alternating chirality when Chiral is set, tagging the final exit joints
// with Mark when set, and continuing into Child once the column completes.
type Branch struct {
	Count        int
	ScalePerStep float64
	Mark         string
	Chiral       bool
	Prism        bool
	Child        *Node
}

// Branching starts a new hub: the brick family and the role it is
// instantiated under (Seed for the root of a plan, OnSpinLeft/OnSpinRight
// for a hub reached through a chiral column).
func Branching(brick string, role fabric.BrickRole) *Node {
	return &Node{Brick: brick, Role: role, Faces: make(map[FaceTag]*Branch)}
}

// OnFace attaches a growth branch to one of this node's named faces.
func (n *Node) OnFace(tag FaceTag, branch *Branch) *Node {
	n.Faces[tag] = branch
	return n
}

// Growing starts a column branch of the given length (1 is a single brick
// hop, matching the original DSL's `growing(n)`).
func Growing(count int) *Branch {
	return &Branch{Count: count, ScalePerStep: 1.0}
}

// Scale sets the per-step shrink factor, applied before every brick in the
// column, the first included, and compounded: brick i (from 0) is grown at
// factor^(i+1).
func (b *Branch) Scale(factor float64) *Branch {
	b.ScalePerStep = factor
	return b
}

// MarkTag tags the column's final exit joints with name, for later Spacer/
// Joiner shape operations or pretense-phase face removal to find by name.
func (b *Branch) MarkTag(name string) *Branch {
	b.Mark = name
	return b
}

// AsChiral alternates SingleTwistLeft/SingleTwistRight at each column step
// instead of repeating the same chirality.
func (b *Branch) AsChiral() *Branch {
	b.Chiral = true
	return b
}

// AsPrism marks this column as a capping prism (no further branch grows
// from its terminal face; it is a dead-end decorative extension).
func (b *Branch) AsPrism() *Branch {
	b.Prism = true
	return b
}

// BuildNode continues the tree: once this branch's column completes, Grow
// recurses into child, attaching it to the column's final exit face.
func (b *Branch) BuildNode(child *Node) *Branch {
	b.Child = child
	return b
}
