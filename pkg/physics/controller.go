package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// State is the kinematic state carried between physics steps.
type State struct {
	Momentum  float32
	Grounded  bool
	Sprinting bool
}

// Controller owns one character's kinematic state and resolves its motion
// every fixed step. It is not safe for concurrent use.
type Controller struct {
	resolver *Resolver
	state    State
}

// NewController creates a controller for a body in world.
func NewController(world voxel.Solidity, body Body) *Controller {
	return &Controller{resolver: NewResolver(world, body)}
}

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// SetState replaces the kinematic state, e.g. on respawn.
func (c *Controller) SetState(s State) { c.state = s }

// SetWorld changes the solidity source used by later steps.
func (c *Controller) SetWorld(world voxel.Solidity) { c.resolver.World = world }

// Body returns the collision footprint.
func (c *Controller) Body() Body { return c.resolver.Body }

// HandleSprint applies a sprint button edge: pressed starts sprinting,
// released stops it. The flag persists between edges.
func (c *Controller) HandleSprint(down bool) {
	c.state.Sprinting = down
}

// ResolveMotion integrates momentum, applies a jump request, builds this
// step's displacement from desired (a unit-scale horizontal intent) and clamps
// it against the world. It returns the displacement to apply and the grounded
// flag after the step.
func (c *Controller) ResolveMotion(pos, desired mgl32.Vec3, jumpRequested, sprinting bool, dt float32) (mgl32.Vec3, bool) {
	if dt <= 0 {
		return mgl32.Vec3{}, c.state.Grounded
	}

	if c.state.Momentum > TerminalVelocity {
		c.state.Momentum += Gravity * dt
	}

	if jumpRequested && c.state.Grounded {
		c.state.Momentum = JumpForce
		c.state.Grounded = false
	}

	speed := WalkSpeed
	if sprinting {
		speed = SprintSpeed
	}

	vel := mgl32.Vec3{desired.X(), 0, desired.Z()}.Mul(dt * speed)
	vel[1] = c.state.Momentum * dt

	clamped, grounded := c.resolver.Clamp(pos, vel, c.state.Grounded)
	if grounded && vel.Y() < 0 {
		c.state.Momentum = 0
	}
	c.state.Grounded = grounded

	return clamped, grounded
}

// Step resolves motion using the controller's own sprint flag.
func (c *Controller) Step(pos, desired mgl32.Vec3, jumpRequested bool, dt float32) (mgl32.Vec3, bool) {
	return c.ResolveMotion(pos, desired, jumpRequested, c.state.Sprinting, dt)
}
