// Package voxel provides chunk storage and culled-face meshing for block worlds.
package voxel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// World dimensions.
const (
	ChunkWidth               = 16
	ChunkHeight              = 128
	WorldSizeInChunks        = 10
	ViewDistanceInChunks     = 5
	TextureAtlasSizeInBlocks = 4
)

// WorldSizeInVoxels is the horizontal extent of the world along X and Z.
const WorldSizeInVoxels = WorldSizeInChunks * ChunkWidth

// Face identifies one side of a voxel.
type Face int

// Face order is shared by voxelTriangles, faceChecks and FaceTextures.
const (
	FaceBack   Face = iota // -Z
	FaceFront              // +Z
	FaceTop                // +Y
	FaceBottom             // -Y
	FaceLeft               // -X
	FaceRight              // +X
)

// FaceCount is the number of faces on a voxel.
const FaceCount = 6

// Faces lists every face in canonical order.
var Faces = [FaceCount]Face{FaceBack, FaceFront, FaceTop, FaceBottom, FaceLeft, FaceRight}

// String returns the face name.
func (f Face) String() string {
	switch f {
	case FaceBack:
		return "back"
	case FaceFront:
		return "front"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	default:
		return fmt.Sprintf("Face(%d)", int(f))
	}
}

// Corners of a unit cube.
var voxelVertices = [8]mgl32.Vec3{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 0, 1},
	{1, 1, 1},
	{0, 1, 1},
}

// voxelTriangles holds, per face, the four cube corners of its quad. The two
// triangles are (0,1,2) and (2,1,3).
var voxelTriangles = [FaceCount][4]int{
	{0, 3, 1, 2}, // back
	{5, 6, 4, 7}, // front
	{3, 7, 2, 6}, // top
	{1, 5, 0, 4}, // bottom
	{4, 7, 0, 3}, // left
	{1, 2, 5, 6}, // right
}

// faceChecks is the neighbour offset for each face.
var faceChecks = [FaceCount][3]int{
	{0, 0, -1},
	{0, 0, 1},
	{0, 1, 0},
	{0, -1, 0},
	{-1, 0, 0},
	{1, 0, 0},
}

// voxelUVs is the per-vertex UV template, in units of one atlas cell.
var voxelUVs = [4]mgl32.Vec2{
	{0, 0},
	{0, 1},
	{1, 0},
	{1, 1},
}

// Offset returns the unit step from a voxel to its neighbour across f.
func (f Face) Offset() (dx, dy, dz int) {
	o := faceChecks[f]
	return o[0], o[1], o[2]
}

// Normal returns the outward unit normal of f.
func (f Face) Normal() mgl32.Vec3 {
	dx, dy, dz := f.Offset()
	return mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
}

// Corners returns the four quad corners of f for a voxel at the origin, in
// emission order.
func (f Face) Corners() [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	for i, v := range voxelTriangles[f] {
		out[i] = voxelVertices[v]
	}
	return out
}
