package assembly

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tensegral/fabricator/bricks"
	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/units"
)

// Instance is one brick's placement result: its joints in the baked
// brick's own index order, and its visible faces keyed by alias name.
type Instance struct {
	Brick   string
	Joints  []fabric.JointID
	FaceIDs map[string]fabric.FaceID
}

// Grower walks a Node tree against a live fabric, instantiating bricks
// and joining faces one step at a time.
type Grower struct {
	Fabric  *fabric.Fabric
	Library *bricks.Library
	// PushTemplate and PullTemplate are the interval materials new bricks
	// are instantiated with; the plan runner supplies these from its
	// active build-phase config.
	PushTemplate, PullTemplate bricks.IntervalTemplate
}

// NewGrower constructs a Grower over f using lib's baked brick data.
func NewGrower(f *fabric.Fabric, lib *bricks.Library, push, pull bricks.IntervalTemplate) *Grower {
	return &Grower{Fabric: f, Library: lib, PushTemplate: push, PullTemplate: pull}
}

// PlaceSeed instantiates the root of a build tree at the fabric's origin,
// under the given uniform scale.
func (g *Grower) PlaceSeed(node *Node, scale float64) (*Instance, error) {
	baked, err := g.Library.GetChiral(node.Brick, spinForRole(node.Role))
	if err != nil {
		return nil, err
	}
	placement := bricks.Scale(units.Millimeters(scale))
	return g.instantiate(baked, node.Brick, placement, node.Role), nil
}

// spinForRole picks the chirality a role implies: Seed and OnSpinLeft
// author left-handed geometry, OnSpinRight mirrors it.
func spinForRole(role fabric.BrickRole) fabric.Spin {
	if role == fabric.RoleOnSpinRight {
		return fabric.SpinRight
	}
	return fabric.SpinLeft
}

func (g *Grower) instantiate(baked bricks.BakedBrick, name string, placement func(r3.Vec) r3.Vec, role fabric.BrickRole) *Instance {
	ids := bricks.Instantiate(g.Fabric, baked, placement, role, g.PushTemplate, g.PullTemplate)
	inst := &Instance{Brick: name, Joints: ids, FaceIDs: make(map[string]fabric.FaceID)}

	g.Fabric.EachFace(func(id fabric.FaceID, fc *fabric.Face) {
		belongs := false
		for _, j := range fc.Joints {
			for _, own := range ids {
				if j == own {
					belongs = true
				}
			}
		}
		if !belongs {
			return
		}
		for _, name := range fc.NamesForRole(role) {
			inst.FaceIDs[name] = id
		}
	})
	return inst
}

// GrowOnFace instantiates one brick of family brickName attached to
// parentFace: its Base alias face is rotated so its outward normal opposes
// the parent face's outward normal (growing away from the parent) and
// translated so the two face centroids coincide, then scaled uniformly.
func (g *Grower) GrowOnFace(parentFace fabric.FaceID, brickName string, role fabric.BrickRole, scale float64) (*Instance, error) {
	parent := g.Fabric.Face(parentFace)
	if parent == nil {
		return nil, fmt.Errorf("assembly: attachment face is not live")
	}
	var pa, pb, pc r3.Vec
	pa = g.Fabric.Joint(parent.Joints[0]).Loc.Current()
	pb = g.Fabric.Joint(parent.Joints[1]).Loc.Current()
	pc = g.Fabric.Joint(parent.Joints[2]).Loc.Current()
	parentCentroid := centroid3(pa, pb, pc)
	parentNormal := faceNormal(pa, pb, pc)
	if parent.Spin == fabric.SpinRight {
		parentNormal = r3.Scale(-1, parentNormal)
	}

	baked, err := g.Library.GetChiral(brickName, spinForRole(role))
	if err != nil {
		return nil, err
	}
	baseFace, ok := firstFaceNamed(baked, "Base")
	if !ok {
		return nil, fmt.Errorf("assembly: brick %q has no Base face to attach by", brickName)
	}
	la := baked.Joints[baseFace.Joints[0]]
	lb := baked.Joints[baseFace.Joints[1]]
	lc := baked.Joints[baseFace.Joints[2]]
	localCentroid := centroid3(la, lb, lc)
	localNormal := faceNormal(la, lb, lc)
	if baseFace.Spin == fabric.SpinRight {
		localNormal = r3.Scale(-1, localNormal)
	}

	rotate := rotationBetween(localNormal, r3.Scale(-1, parentNormal))
	placement := bricks.Compose(
		translate(r3.Scale(-1, localCentroid)),
		bricks.Scale(units.Millimeters(scale)),
		rotate,
		translate(parentCentroid),
	)
	return g.instantiate(baked, brickName, placement, role), nil
}

func firstFaceNamed(b bricks.BakedBrick, name string) (bricks.BakedFace, bool) {
	for _, fc := range b.Faces {
		for _, a := range fc.Aliases {
			if a.Name == name {
				return fc, true
			}
		}
	}
	return bricks.BakedFace{}, false
}

// ExtendColumn grows a chain of `count` SingleTwist-family bricks from
// parentFace, joining each new brick's Base face onto the previous one's
// Top face, optionally alternating chirality. It returns the exit face of
// the final brick in the chain (its Top face), for further branching.
func (g *Grower) ExtendColumn(parentFace fabric.FaceID, brick *Branch, brickName string) (fabric.FaceID, []fabric.JointID, error) {
	current := parentFace
	scale := 1.0
	var marked []fabric.JointID
	role := fabric.RoleOnSpinLeft
	for i := 0; i < brick.Count; i++ {
		if brick.Chiral && i%2 == 1 {
			role = fabric.RoleOnSpinRight
		} else {
			role = fabric.RoleOnSpinLeft
		}
		scale *= brick.ScalePerStep
		inst, err := g.GrowOnFace(current, brickName, role, scale)
		if err != nil {
			return fabric.FaceID(fabric.Invalid), nil, err
		}
		baseID, ok := inst.FaceIDs["Base"]
		if !ok {
			return fabric.FaceID(fabric.Invalid), nil, fmt.Errorf("assembly: column step produced no Base face")
		}
		if err := g.JoinFaces(current, baseID); err != nil {
			return fabric.FaceID(fabric.Invalid), nil, err
		}
		current, ok = inst.FaceIDs["Top"]
		if !ok {
			return fabric.FaceID(fabric.Invalid), nil, fmt.Errorf("assembly: column step produced no Top face")
		}
		if i == brick.Count-1 {
			marked = inst.Joints
		}
	}
	return current, marked, nil
}

// JoinFaces merges two faces per the face-join algorithm: zip their three
// joints pairwise in matching rotational order, merge each pair by moving
// the surviving (first) joint to the averaged position and rerouting every
// interval incident on the second joint, then delete the second joint and
// both faces.
func (g *Grower) JoinFaces(keep, discard fabric.FaceID) error {
	keepFace := g.Fabric.Face(keep)
	discardFace := g.Fabric.Face(discard)
	if keepFace == nil || discardFace == nil {
		return fmt.Errorf("assembly: both faces must be live to join")
	}
	pairs := matchRotational(g.Fabric, keepFace.Joints, discardFace.Joints)
	for _, pr := range pairs {
		g.Fabric.MergeJoints(pr[0], pr[1])
	}
	g.Fabric.RemoveFace(keep)
	g.Fabric.RemoveFace(discard)
	return nil
}

// matchRotational pairs two face's joints up by finding the rotational
// offset of `other` that minimizes total distance to `ref` in world space,
// since the two faces were just placed to coincide but may be wound
// starting from a different corner.
func matchRotational(f *fabric.Fabric, ref, other [3]fabric.JointID) [][2]fabric.JointID {
	refPos := [3]r3.Vec{f.Joint(ref[0]).Loc.Current(), f.Joint(ref[1]).Loc.Current(), f.Joint(ref[2]).Loc.Current()}
	bestOffset := 0
	bestDist := -1.0
	for offset := 0; offset < 3; offset++ {
		total := 0.0
		for i := 0; i < 3; i++ {
			op := f.Joint(other[(i+offset)%3]).Loc.Current()
			total += r3.Norm(r3.Sub(refPos[i], op))
		}
		if bestDist < 0 || total < bestDist {
			bestDist = total
			bestOffset = offset
		}
	}
	pairs := make([][2]fabric.JointID, 3)
	for i := 0; i < 3; i++ {
		pairs[i] = [2]fabric.JointID{ref[i], other[(i+bestOffset)%3]}
	}
	return pairs
}
