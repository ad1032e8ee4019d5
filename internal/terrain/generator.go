package terrain

import (
	"math"

	"github.com/Faultbox/blueycraft/internal/assets"
	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// subsurfaceDepth is how many blocks below the surface use the subsurface block.
const subsurfaceDepth = 4

// Generator decides the block at every world position for one seed and biome.
// It is safe for concurrent use.
type Generator struct {
	seed  int64
	biome assets.Biome
	noise *Noise
}

// New creates a generator.
func New(seed int64, biome assets.Biome) *Generator {
	return &Generator{
		seed:  seed,
		biome: biome,
		noise: NewNoise(seed),
	}
}

// Seed returns the generator seed.
func (g *Generator) Seed() int64 { return g.seed }

// Biome returns the biome in use.
func (g *Generator) Biome() assets.Biome { return g.biome }

// InWorld reports whether a voxel lies inside the finite world.
func InWorld(x, y, z int) bool {
	return x >= 0 && x < voxel.WorldSizeInVoxels &&
		y >= 0 && y < voxel.ChunkHeight &&
		z >= 0 && z < voxel.WorldSizeInVoxels
}

// Height returns the surface height of column (x, z).
func (g *Generator) Height(x, z int) int {
	n := g.noise.Get2D(x, z, 0, g.biome.TerrainScale)
	return int(math.Floor(float64(float32(g.biome.TerrainHeight)*n))) + g.biome.SolidGroundHeight
}

// VoxelAt returns the generated block at a world position.
func (g *Generator) VoxelAt(x, y, z int) voxel.BlockID {
	if !InWorld(x, y, z) {
		return voxel.Air
	}
	if y == 0 {
		return g.biome.Bedrock
	}

	h := g.Height(x, z)
	var id voxel.BlockID
	switch {
	case y == h:
		id = g.biome.Surface
	case y < h && y > h-subsurfaceDepth:
		id = g.biome.Subsurface
	case y > h:
		return voxel.Air
	default:
		id = g.biome.Stone
	}

	if id != g.biome.Stone {
		return id
	}
	for _, l := range g.biome.Lodes {
		if y > l.MinHeight && y < l.MaxHeight &&
			g.noise.Get3D(x, y, z, l.NoiseOffset, l.Scale, l.Threshold) {
			id = l.Block
		}
	}
	return id
}

// Populate fills a chunk grid from the generator.
func (g *Generator) Populate(grid *voxel.ChunkGrid) {
	grid.Fill(func(x, y, z int) voxel.BlockID {
		return g.VoxelAt(grid.ToWorld(x, y, z))
	})
}

// Generate allocates and populates the chunk at coord.
func (g *Generator) Generate(coord voxel.ChunkCoord) *voxel.ChunkGrid {
	grid := voxel.NewChunkGrid(coord)
	g.Populate(grid)
	return grid
}
