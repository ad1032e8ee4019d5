// Package camera provides the first-person camera used by the client.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default projection settings.
const (
	DefaultFOV  = 70
	NearPlane   = 0.05
	FarPlane    = 500
	maxPitchDeg = 89
)

// FirstPersonCamera looks out from a point with yaw and pitch in degrees.
// Yaw 0 faces +Z; positive yaw turns toward +X, which is to the left in a
// right-handed view.
type FirstPersonCamera struct {
	Position mgl32.Vec3

	Yaw   float32
	Pitch float32 // positive looks up

	FOV         float32 // vertical, degrees
	Sensitivity float32 // degrees per pixel of mouse motion
	InvertY     bool
}

// New creates a camera at pos facing +Z.
func New(pos mgl32.Vec3, fov, sensitivity float32) *FirstPersonCamera {
	if fov <= 0 {
		fov = DefaultFOV
	}
	return &FirstPersonCamera{
		Position:    pos,
		FOV:         fov,
		Sensitivity: sensitivity,
	}
}

// HandleMouse applies relative mouse motion. Pitch is clamped short of
// straight up and down so the view matrix stays defined.
func (c *FirstPersonCamera) HandleMouse(dx, dy float32) {
	c.Yaw -= dx * c.Sensitivity
	if c.InvertY {
		c.Pitch += dy * c.Sensitivity
	} else {
		c.Pitch -= dy * c.Sensitivity
	}
	c.Pitch = mgl32.Clamp(c.Pitch, -maxPitchDeg, maxPitchDeg)

	c.Yaw = float32(gomath.Mod(float64(c.Yaw), 360))
	if c.Yaw < 0 {
		c.Yaw += 360
	}
}

// Forward returns the horizontal unit vector the camera faces.
func (c *FirstPersonCamera) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	return mgl32.Vec3{float32(gomath.Sin(yaw)), 0, float32(gomath.Cos(yaw))}
}

// Right returns the horizontal unit vector to the camera's right.
func (c *FirstPersonCamera) Right() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	return mgl32.Vec3{float32(-gomath.Cos(yaw)), 0, float32(gomath.Sin(yaw))}
}

// Look returns the full view direction including pitch.
func (c *FirstPersonCamera) Look() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	cp := gomath.Cos(pitch)
	return mgl32.Vec3{
		float32(gomath.Sin(yaw) * cp),
		float32(gomath.Sin(pitch)),
		float32(gomath.Cos(yaw) * cp),
	}
}

// Move maps forward/right axis input in [-1, 1] to a horizontal world
// direction. The result is not normalised, so diagonals move faster.
func (c *FirstPersonCamera) Move(forward, right float32) mgl32.Vec3 {
	return c.Forward().Mul(forward).Add(c.Right().Mul(right))
}

// ViewMatrix returns the view matrix for the current position and look.
func (c *FirstPersonCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Look()), mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *FirstPersonCamera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, NearPlane, FarPlane)
}
