// Package entity provides the player entity driven by voxel physics.
package entity

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/blueycraft/pkg/physics"
	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// EyeHeight is the camera height above the player's feet.
const EyeHeight = 1.8

// MaxStepsPerFrame bounds catch-up after a long frame. Backlog beyond it is
// dropped.
const MaxStepsPerFrame = 10

// Intent is one frame of player input already mapped to world space.
type Intent struct {
	Move           mgl32.Vec3 // horizontal direction, unnormalised
	Jump           bool       // jump pressed this frame
	SprintPressed  bool
	SprintReleased bool
}

// Player is a physics body stepped at physics.FixedDelta.
type Player struct {
	Position mgl32.Vec3

	controller  *physics.Controller
	accumulator float32
	jumpLatched bool
}

// NewPlayer creates a player with the default body at pos.
func NewPlayer(pos mgl32.Vec3, world voxel.Solidity) *Player {
	return &Player{
		Position:   pos,
		controller: physics.NewController(world, physics.DefaultBody()),
	}
}

// Eye returns the camera position.
func (p *Player) Eye() mgl32.Vec3 {
	return p.Position.Add(mgl32.Vec3{0, EyeHeight, 0})
}

// State returns the physics state.
func (p *Player) State() physics.State {
	return p.controller.State()
}

// Update advances the player by frameDt seconds of wall time in fixed steps
// and returns how many steps ran. A jump press is held until a step
// consumes it.
func (p *Player) Update(frameDt float32, in Intent) int {
	if in.SprintPressed {
		p.controller.HandleSprint(true)
	}
	if in.SprintReleased {
		p.controller.HandleSprint(false)
	}
	if in.Jump {
		p.jumpLatched = true
	}

	if frameDt > 0 {
		p.accumulator += frameDt
	}

	steps := 0
	for p.accumulator >= physics.FixedDelta && steps < MaxStepsPerFrame {
		vel, _ := p.controller.Step(p.Position, in.Move, p.jumpLatched, physics.FixedDelta)
		p.Position = p.Position.Add(vel)
		p.jumpLatched = false
		p.accumulator -= physics.FixedDelta
		steps++
	}
	if steps == MaxStepsPerFrame {
		p.accumulator = 0
	}
	return steps
}
