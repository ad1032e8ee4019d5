package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// Resolver clamps per-step displacements so a body never steps into a solid
// voxel along any axis. It holds no per-character state.
type Resolver struct {
	World voxel.Solidity
	Body  Body
}

// NewResolver creates a resolver. A nil world is treated as empty.
func NewResolver(world voxel.Solidity, body Body) *Resolver {
	return &Resolver{World: world, Body: body}
}

// Clamp returns vel with blocked components zeroed and the updated grounded
// flag. Horizontal axes stop dead against a wall. A descending body that hits
// ground is grounded; an ascending body that hits a ceiling stops without
// changing grounded; zero vertical velocity leaves grounded unchanged.
func (r *Resolver) Clamp(pos, vel mgl32.Vec3, grounded bool) (mgl32.Vec3, bool) {
	blocked := Blocked(r.World, pos, r.Body)

	if (vel.Z() > 0 && blocked.Has(Front)) || (vel.Z() < 0 && blocked.Has(Back)) {
		vel[2] = 0
	}
	if (vel.X() > 0 && blocked.Has(Right)) || (vel.X() < 0 && blocked.Has(Left)) {
		vel[0] = 0
	}

	switch {
	case vel.Y() < 0:
		if GroundBelow(r.World, pos, r.Body, vel.Y()) {
			vel[1] = 0
			grounded = true
		} else {
			grounded = false
		}
	case vel.Y() > 0:
		if HeadroomBlocked(r.World, pos, r.Body, vel.Y()) {
			vel[1] = 0
		}
	}

	return vel, grounded
}
