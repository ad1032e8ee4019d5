package voxel

import "github.com/go-gl/mathgl/mgl32"

// Atlas maps texture indices to cells of a square texture atlas.
// Index 0 is the top-left cell; UV origin is bottom-left.
type Atlas struct {
	SizeInBlocks int
}

// DefaultAtlas returns the atlas layout used by the bundled assets.
func DefaultAtlas() Atlas {
	return Atlas{SizeInBlocks: TextureAtlasSizeInBlocks}
}

// BlockSize returns the normalized width of one atlas cell.
func (a Atlas) BlockSize() float32 {
	return 1 / float32(a.SizeInBlocks)
}

// Cells returns the number of textures in the atlas.
func (a Atlas) Cells() int {
	return a.SizeInBlocks * a.SizeInBlocks
}

// Origin returns the bottom-left UV of the cell holding textureID.
func (a Atlas) Origin(textureID int) mgl32.Vec2 {
	row := textureID / a.SizeInBlocks
	col := textureID % a.SizeInBlocks
	size := a.BlockSize()

	x := float32(col) * size
	y := 1 - float32(row)*size - size
	return mgl32.Vec2{x, y}
}

// FaceUVs returns the four UVs for a face textured with textureID, matching
// the vertex order emitted by the mesher.
func (a Atlas) FaceUVs(textureID int) [4]mgl32.Vec2 {
	origin := a.Origin(textureID)
	size := a.BlockSize()

	var uvs [4]mgl32.Vec2
	for i, t := range voxelUVs {
		uvs[i] = origin.Add(t.Mul(size))
	}
	return uvs
}
