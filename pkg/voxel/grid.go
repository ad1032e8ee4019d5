package voxel

import (
	"errors"
	"fmt"
)

// ErrGridSize is returned when raw block data does not match the grid dimensions.
var ErrGridSize = errors.New("block data does not match grid size")

// ChunkGrid owns the dense block array of one chunk.
// Blocks are stored at index x + z*width + y*width*width.
//
// A grid is filled once after construction and treated as read-only once it
// has been handed to a Mesher.
type ChunkGrid struct {
	coord  ChunkCoord
	width  int
	height int
	blocks []BlockID
}

// NewChunkGrid allocates an empty grid with the standard chunk dimensions.
func NewChunkGrid(coord ChunkCoord) *ChunkGrid {
	return NewChunkGridSize(coord, ChunkWidth, ChunkHeight)
}

// NewChunkGridSize allocates an empty width x height x width grid.
func NewChunkGridSize(coord ChunkCoord, width, height int) *ChunkGrid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("voxel: invalid grid size %dx%d", width, height))
	}
	return &ChunkGrid{
		coord:  coord,
		width:  width,
		height: height,
		blocks: make([]BlockID, width*height*width),
	}
}

// Coord returns the chunk coordinate.
func (g *ChunkGrid) Coord() ChunkCoord { return g.coord }

// Width returns the horizontal size along X and Z.
func (g *ChunkGrid) Width() int { return g.width }

// Height returns the vertical size.
func (g *ChunkGrid) Height() int { return g.height }

// Len returns the number of cells.
func (g *ChunkGrid) Len() int { return len(g.blocks) }

// InBounds reports whether a local coordinate lies inside the grid.
func (g *ChunkGrid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.width &&
		y >= 0 && y < g.height &&
		z >= 0 && z < g.width
}

func (g *ChunkGrid) index(x, y, z int) int {
	return x + z*g.width + y*g.width*g.width
}

// Block returns the block at a local coordinate. ok is false outside the grid.
func (g *ChunkGrid) Block(x, y, z int) (id BlockID, ok bool) {
	if !g.InBounds(x, y, z) {
		return Air, false
	}
	return g.blocks[g.index(x, y, z)], true
}

// SetBlock writes a block during population. Out-of-bounds writes are ignored
// and reported as false.
func (g *ChunkGrid) SetBlock(x, y, z int, id BlockID) bool {
	if !g.InBounds(x, y, z) {
		return false
	}
	g.blocks[g.index(x, y, z)] = id
	return true
}

// Fill sets every cell from fn, visiting y outermost.
func (g *ChunkGrid) Fill(fn func(x, y, z int) BlockID) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			for z := 0; z < g.width; z++ {
				g.blocks[g.index(x, y, z)] = fn(x, y, z)
			}
		}
	}
}

// WorldOrigin returns the world-space position of local (0, 0, 0).
func (g *ChunkGrid) WorldOrigin() (x, y, z int) {
	return g.coord.X * g.width, 0, g.coord.Z * g.width
}

// ToWorld translates a local coordinate to world space.
func (g *ChunkGrid) ToWorld(x, y, z int) (wx, wy, wz int) {
	ox, oy, oz := g.WorldOrigin()
	return x + ox, y + oy, z + oz
}

// Raw returns the backing block slice. Callers must not modify it.
func (g *ChunkGrid) Raw() []BlockID {
	return g.blocks
}

// LoadRaw replaces the grid contents with a copy of blocks.
func (g *ChunkGrid) LoadRaw(blocks []BlockID) error {
	if len(blocks) != len(g.blocks) {
		return fmt.Errorf("%w: got %d, want %d", ErrGridSize, len(blocks), len(g.blocks))
	}
	copy(g.blocks, blocks)
	return nil
}

// Validate reports the first cell whose id is missing from table.
func (g *ChunkGrid) Validate(table BlockTable) error {
	for i, id := range g.blocks {
		if int(id) >= len(table) {
			y := i / (g.width * g.width)
			rem := i % (g.width * g.width)
			z := rem / g.width
			x := rem % g.width
			return fmt.Errorf("chunk %s cell (%d, %d, %d): %w: %d", g.coord, x, y, z, ErrUnknownBlock, id)
		}
	}
	return nil
}

// Count returns how many cells hold a solid block.
func (g *ChunkGrid) Count(table BlockTable) int {
	n := 0
	for _, id := range g.blocks {
		if table.IsSolid(id) {
			n++
		}
	}
	return n
}
