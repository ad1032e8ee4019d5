// Package physics resolves character motion against a voxel grid using
// discrete per-axis probe points.
package physics

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// Movement tuning, in voxels and seconds.
const (
	WalkSpeed   float32 = 3
	SprintSpeed float32 = 6
	JumpForce   float32 = 5
	Gravity     float32 = -9.8

	// TerminalVelocity is the momentum below which gravity stops accruing.
	TerminalVelocity = Gravity

	PlayerHalfWidth float32 = 0.15
	PlayerHeight    float32 = 2

	// FixedDelta is the physics step used by the client loop.
	FixedDelta float32 = 0.02
)

// Body is the character's collision footprint. Position is the centre of the
// feet; the footprint spans ±HalfWidth on X and Z and Height on Y.
type Body struct {
	HalfWidth float32
	Height    float32
}

// DefaultBody returns the player footprint.
func DefaultBody() Body {
	return Body{HalfWidth: PlayerHalfWidth, Height: PlayerHeight}
}

// Direction is a set of horizontal travel directions.
type Direction uint8

const (
	Front Direction = 1 << iota // +Z
	Back                        // -Z
	Right                       // +X
	Left                        // -X
)

// Has reports whether every direction in o is set in d.
func (d Direction) Has(o Direction) bool {
	return d&o == o
}

func (d Direction) String() string {
	if d == 0 {
		return "none"
	}
	var parts []string
	for _, n := range []struct {
		dir  Direction
		name string
	}{{Front, "front"}, {Back, "back"}, {Right, "right"}, {Left, "left"}} {
		if d.Has(n.dir) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// solidAt floors a world-space point and queries world. A nil world is empty.
func solidAt(world voxel.Solidity, x, y, z float32) bool {
	if world == nil {
		return false
	}
	return world.SolidAt(voxel.FloorToInt(x), voxel.FloorToInt(y), voxel.FloorToInt(z))
}

// Blocked returns the horizontal directions in which the body touches a solid
// voxel. Each side is probed at the footprint edge on its own axis, at feet
// height and one voxel above.
func Blocked(world voxel.Solidity, pos mgl32.Vec3, body Body) Direction {
	x, y, z := pos.X(), pos.Y(), pos.Z()
	w := body.HalfWidth

	side := func(px, pz float32) bool {
		return solidAt(world, px, y, pz) || solidAt(world, px, y+1, pz)
	}

	var d Direction
	if side(x, z+w) {
		d |= Front
	}
	if side(x, z-w) {
		d |= Back
	}
	if side(x+w, z) {
		d |= Right
	}
	if side(x-w, z) {
		d |= Left
	}
	return d
}

// corners reports whether any footprint corner at height y is solid.
func corners(world voxel.Solidity, pos mgl32.Vec3, w, y float32) bool {
	x, z := pos.X(), pos.Z()
	return solidAt(world, x-w, y, z-w) ||
		solidAt(world, x+w, y, z-w) ||
		solidAt(world, x+w, y, z+w) ||
		solidAt(world, x-w, y, z+w)
}

// GroundBelow reports whether the feet would enter a solid voxel after moving
// dy vertically.
func GroundBelow(world voxel.Solidity, pos mgl32.Vec3, body Body, dy float32) bool {
	return corners(world, pos, body.HalfWidth, pos.Y()+dy)
}

// HeadroomBlocked reports whether the head would enter a solid voxel after
// moving dy vertically.
func HeadroomBlocked(world voxel.Solidity, pos mgl32.Vec3, body Body, dy float32) bool {
	return corners(world, pos, body.HalfWidth, pos.Y()+body.Height+dy)
}
