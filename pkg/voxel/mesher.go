package voxel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesher turns chunk grids into culled-face meshes.
// A Mesher holds no per-build state and may be shared between goroutines as
// long as its Solidity is safe for concurrent reads.
type Mesher struct {
	blocks BlockTable
	atlas  Atlas
	world  Solidity
}

// NewMesher creates a mesher. world answers solidity for neighbours outside
// the chunk being meshed; nil treats everything outside as empty.
func NewMesher(blocks BlockTable, atlas Atlas, world Solidity) *Mesher {
	if world == nil {
		world = Empty
	}
	return &Mesher{
		blocks: blocks,
		atlas:  atlas,
		world:  world,
	}
}

// Build emits one quad for every solid-voxel face whose neighbour is not solid.
func (m *Mesher) Build(g *ChunkGrid) (*MeshBuffers, error) {
	mesh := NewMeshBuffers(0)

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			for z := 0; z < g.width; z++ {
				id := g.blocks[g.index(x, y, z)]
				bt, ok := m.blocks.Lookup(id)
				if !ok {
					return nil, fmt.Errorf("chunk %s cell (%d, %d, %d): %w: %d", g.coord, x, y, z, ErrUnknownBlock, id)
				}
				if !bt.Solid {
					continue
				}
				if err := m.addVoxel(mesh, g, x, y, z, bt); err != nil {
					return nil, err
				}
			}
		}
	}

	return mesh, nil
}

func (m *Mesher) addVoxel(mesh *MeshBuffers, g *ChunkGrid, x, y, z int, bt BlockType) error {
	pos := mgl32.Vec3{float32(x), float32(y), float32(z)}

	for _, f := range Faces {
		dx, dy, dz := f.Offset()
		solid, err := m.solid(g, x+dx, y+dy, z+dz)
		if err != nil {
			return err
		}
		if solid {
			continue
		}

		var corners [4]mgl32.Vec3
		for i, c := range f.Corners() {
			corners[i] = pos.Add(c)
		}
		mesh.AddFace(corners, m.atlas.FaceUVs(bt.TextureID(f)))
	}
	return nil
}

// solid resolves a neighbour locally when it is inside the grid and through
// the world otherwise.
func (m *Mesher) solid(g *ChunkGrid, x, y, z int) (bool, error) {
	if !g.InBounds(x, y, z) {
		return m.world.SolidAt(g.ToWorld(x, y, z)), nil
	}

	id := g.blocks[g.index(x, y, z)]
	bt, ok := m.blocks.Lookup(id)
	if !ok {
		return false, fmt.Errorf("chunk %s cell (%d, %d, %d): %w: %d", g.coord, x, y, z, ErrUnknownBlock, id)
	}
	return bt.Solid, nil
}

// BuildMesh is a convenience wrapper for a one-off build.
func BuildMesh(g *ChunkGrid, blocks BlockTable, atlas Atlas, world Solidity) (*MeshBuffers, error) {
	return NewMesher(blocks, atlas, world).Build(g)
}
