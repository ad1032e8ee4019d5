package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < 1e-4
}

func TestFirstPersonCamera_Defaults(t *testing.T) {
	c := New(mgl32.Vec3{1, 2, 3}, 0, 0.2)

	if c.FOV != DefaultFOV {
		t.Errorf("expected default FOV %d, got %f", DefaultFOV, c.FOV)
	}
	if !near(c.Forward(), mgl32.Vec3{0, 0, 1}) {
		t.Errorf("expected forward +Z, got %v", c.Forward())
	}
	if !near(c.Look(), mgl32.Vec3{0, 0, 1}) {
		t.Errorf("expected level look along +Z, got %v", c.Look())
	}
}

func TestFirstPersonCamera_RightIsScreenRight(t *testing.T) {
	c := New(mgl32.Vec3{}, 70, 1)

	for _, yaw := range []float32{0, 45, 90, 200, 333} {
		c.Yaw = yaw
		want := c.Forward().Cross(mgl32.Vec3{0, 1, 0})
		if !near(c.Right(), want) {
			t.Errorf("yaw %v: right %v, want forward x up %v", yaw, c.Right(), want)
		}
		if d := c.Forward().Dot(c.Right()); mgl32.Abs(d) > 1e-6 {
			t.Errorf("yaw %v: forward and right not perpendicular (%v)", yaw, d)
		}
	}
}

func TestFirstPersonCamera_HandleMouse(t *testing.T) {
	c := New(mgl32.Vec3{}, 70, 0.5)

	// Moving the mouse right turns toward the right vector.
	right := c.Right()
	c.HandleMouse(20, 0)
	if c.Forward().Dot(right) <= 0 {
		t.Errorf("expected to turn right, forward now %v", c.Forward())
	}
	if c.Yaw < 0 || c.Yaw >= 360 {
		t.Errorf("yaw %v not wrapped into [0, 360)", c.Yaw)
	}

	// Moving the mouse up looks up.
	c.HandleMouse(0, -10)
	if c.Pitch != 5 {
		t.Errorf("expected pitch 5, got %v", c.Pitch)
	}

	c.InvertY = true
	c.HandleMouse(0, -10)
	if c.Pitch != 0 {
		t.Errorf("expected inverted pitch back to 0, got %v", c.Pitch)
	}

	c.HandleMouse(0, -10000)
	if c.Pitch != -maxPitchDeg {
		t.Errorf("expected pitch clamped to %d, got %v", -maxPitchDeg, c.Pitch)
	}
}

func TestFirstPersonCamera_Move(t *testing.T) {
	c := New(mgl32.Vec3{}, 70, 1)
	c.Pitch = 60

	// Pitch never leaks into horizontal movement.
	m := c.Move(1, 0)
	if m.Y() != 0 || !near(m, c.Forward()) {
		t.Errorf("unexpected forward move %v", m)
	}

	m = c.Move(1, 1)
	if mgl32.Abs(m.Len()-mgl32.Vec2{1, 1}.Len()) > 1e-5 {
		t.Errorf("expected unnormalised diagonal, got length %v", m.Len())
	}
	if !near(c.Move(0, 0), mgl32.Vec3{}) {
		t.Error("expected no movement without input")
	}
}

func TestFirstPersonCamera_Matrices(t *testing.T) {
	c := New(mgl32.Vec3{5, 10, 5}, 70, 1)

	// The camera position maps to the view-space origin.
	p := c.ViewMatrix().Mul4x1(c.Position.Vec4(1))
	if !near(p.Vec3(), mgl32.Vec3{}) {
		t.Errorf("expected eye at origin, got %v", p)
	}

	// A point straight ahead lies on the -Z view axis.
	ahead := c.ViewMatrix().Mul4x1(c.Position.Add(c.Look().Mul(3)).Vec4(1))
	if !near(ahead.Vec3(), mgl32.Vec3{0, 0, -3}) {
		t.Errorf("expected point ahead at (0,0,-3), got %v", ahead)
	}

	if c.Projection(0) != c.Projection(1) {
		t.Error("expected zero aspect to fall back to 1")
	}
}
