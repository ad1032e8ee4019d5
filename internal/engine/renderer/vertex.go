package renderer

import "github.com/Faultbox/blueycraft/pkg/voxel"

// FloatsPerVertex is the interleaved layout: position xyz, uv, normal xyz.
const FloatsPerVertex = 8

// Interleave packs mesh buffers into the vertex layout the voxel shader
// reads, with normals recomputed from the triangles.
func Interleave(m *voxel.MeshBuffers) []float32 {
	normals := m.Normals()
	out := make([]float32, 0, len(m.Vertices)*FloatsPerVertex)
	for i, v := range m.Vertices {
		uv := m.UVs[i]
		n := normals[i]
		out = append(out,
			v.X(), v.Y(), v.Z(),
			uv.X(), uv.Y(),
			n.X(), n.Y(), n.Z(),
		)
	}
	return out
}
