package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

func TestInterleave(t *testing.T) {
	m := voxel.NewMeshBuffers(1)
	m.AddFace(
		[4]mgl32.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}},
		[4]mgl32.Vec2{{0, 0.75}, {0, 1}, {0.25, 0.75}, {0.25, 1}},
	)

	out := Interleave(m)
	if len(out) != 4*FloatsPerVertex {
		t.Fatalf("expected %d floats, got %d", 4*FloatsPerVertex, len(out))
	}

	// Second vertex: position, uv, then the back-face normal.
	want := []float32{0, 1, 0, 0, 1, 0, 0, -1}
	got := out[FloatsPerVertex : 2*FloatsPerVertex]
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("float %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestInterleaveEmpty(t *testing.T) {
	if out := Interleave(voxel.NewMeshBuffers(0)); len(out) != 0 {
		t.Errorf("expected no floats, got %d", len(out))
	}
}
