package voxel

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidMesh is returned by MeshBuffers.Validate.
var ErrInvalidMesh = errors.New("invalid mesh buffers")

// Per-face buffer strides.
const (
	VerticesPerFace = 4
	IndicesPerFace  = 6
)

// MeshBuffers holds chunk-local geometry ready for upload. Vertices and UVs
// are parallel; Triangles indexes into Vertices.
type MeshBuffers struct {
	Vertices  []mgl32.Vec3
	Triangles []uint32
	UVs       []mgl32.Vec2
}

// NewMeshBuffers returns empty buffers with room for faces quads.
func NewMeshBuffers(faces int) *MeshBuffers {
	return &MeshBuffers{
		Vertices:  make([]mgl32.Vec3, 0, faces*VerticesPerFace),
		Triangles: make([]uint32, 0, faces*IndicesPerFace),
		UVs:       make([]mgl32.Vec2, 0, faces*VerticesPerFace),
	}
}

// FaceCount returns the number of quads in the buffers.
func (m *MeshBuffers) FaceCount() int {
	return len(m.Vertices) / VerticesPerFace
}

// Empty reports whether no faces were emitted.
func (m *MeshBuffers) Empty() bool {
	return len(m.Vertices) == 0
}

// AddFace appends one quad: four corners, their UVs and two triangles
// (0,1,2) and (2,1,3).
func (m *MeshBuffers) AddFace(corners [4]mgl32.Vec3, uvs [4]mgl32.Vec2) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, corners[:]...)
	m.UVs = append(m.UVs, uvs[:]...)
	m.Triangles = append(m.Triangles,
		base, base+1, base+2,
		base+2, base+1, base+3,
	)
}

// Validate checks the stride and index invariants of the buffers.
func (m *MeshBuffers) Validate() error {
	if len(m.Vertices)%VerticesPerFace != 0 {
		return fmt.Errorf("%w: %d vertices is not a multiple of %d", ErrInvalidMesh, len(m.Vertices), VerticesPerFace)
	}
	if len(m.UVs) != len(m.Vertices) {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrInvalidMesh, len(m.UVs), len(m.Vertices))
	}
	if want := m.FaceCount() * IndicesPerFace; len(m.Triangles) != want {
		return fmt.Errorf("%w: %d indices, want %d", ErrInvalidMesh, len(m.Triangles), want)
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Triangles {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidMesh, idx, i, n)
		}
	}
	return nil
}

// Bounds returns the axis-aligned extent of the vertices. ok is false for an
// empty mesh.
func (m *MeshBuffers) Bounds() (min, max mgl32.Vec3, ok bool) {
	if len(m.Vertices) == 0 {
		return min, max, false
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max, true
}

// Normals recomputes one unit normal per vertex from the first triangle of
// each quad. Every vertex of a quad shares its face normal.
func (m *MeshBuffers) Normals() []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(m.Vertices))
	for f := 0; f < m.FaceCount(); f++ {
		i := f * IndicesPerFace
		a := m.Vertices[m.Triangles[i]]
		b := m.Vertices[m.Triangles[i+1]]
		c := m.Vertices[m.Triangles[i+2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for v := 0; v < VerticesPerFace; v++ {
			normals[f*VerticesPerFace+v] = n
		}
	}
	return normals
}
