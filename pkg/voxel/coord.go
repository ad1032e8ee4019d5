package voxel

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a chunk column on the horizontal chunk grid.
type ChunkCoord struct {
	X, Z int
}

// Equals reports whether other refers to the same chunk. A nil other is never equal.
func (c ChunkCoord) Equals(other *ChunkCoord) bool {
	if other == nil {
		return false
	}
	return c.X == other.X && c.Z == other.Z
}

// WorldOrigin returns the world-space voxel position of the chunk's corner.
func (c ChunkCoord) WorldOrigin() (x, y, z int) {
	return c.X * ChunkWidth, 0, c.Z * ChunkWidth
}

// String returns "(x, z)".
func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}

// ChunkCoordFor returns the chunk containing a world-space position.
func ChunkCoordFor(pos mgl32.Vec3) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(FloorToInt(pos.X()), ChunkWidth),
		Z: floorDiv(FloorToInt(pos.Z()), ChunkWidth),
	}
}

// FloorToInt rounds v toward negative infinity.
func FloorToInt(v float32) int {
	return int(math.Floor(float64(v)))
}

// VoxelAt returns the integer voxel containing a world-space position.
func VoxelAt(pos mgl32.Vec3) (x, y, z int) {
	return FloorToInt(pos.X()), FloorToInt(pos.Y()), FloorToInt(pos.Z())
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
