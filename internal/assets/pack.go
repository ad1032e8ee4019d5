package assets

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// Asset file names looked up in every source.
const (
	BlocksFile = "blocks.yaml"
	BiomeFile  = "biome.yaml"
	AtlasFile  = "atlas.png"
	AtlasBMP   = "atlas.bmp"
)

// Pack errors.
var (
	ErrInvalidBiome   = errors.New("invalid biome")
	ErrInvalidLode    = errors.New("invalid lode")
	ErrDuplicateBlock = errors.New("duplicate block name")
	ErrBlockTexture   = errors.New("block must set texture or textures, not both")
)

// Lode replaces stone with Block where its 3D noise passes Threshold,
// strictly between MinHeight and MaxHeight.
type Lode struct {
	Name        string
	Block       voxel.BlockID
	MinHeight   int
	MaxHeight   int
	Scale       float32
	Threshold   float32
	NoiseOffset float32
}

// Biome controls terrain shape and which blocks fill each layer.
type Biome struct {
	Name              string
	SolidGroundHeight int
	TerrainHeight     int
	TerrainScale      float32

	Bedrock    voxel.BlockID
	Stone      voxel.BlockID
	Surface    voxel.BlockID
	Subsurface voxel.BlockID

	Lodes []Lode
}

// Pack is a validated set of block types, atlas layout and biome.
type Pack struct {
	Atlas  voxel.Atlas
	Blocks voxel.BlockTable
	Biome  Biome

	// AtlasImage is the raw atlas.png or atlas.bmp from an override
	// directory, or nil when the client should generate one.
	AtlasImage []byte
}

type blocksDoc struct {
	AtlasSize int        `yaml:"atlas_size"`
	Blocks    []blockDoc `yaml:"blocks"`
}

type blockDoc struct {
	Name     string              `yaml:"name"`
	Solid    bool                `yaml:"solid"`
	Texture  *int                `yaml:"texture"`
	Textures *voxel.FaceTextures `yaml:"textures"`
}

type biomeDoc struct {
	Name              string    `yaml:"name"`
	SolidGroundHeight int       `yaml:"solid_ground_height"`
	TerrainHeight     int       `yaml:"terrain_height"`
	TerrainScale      float32   `yaml:"terrain_scale"`
	BedrockBlock      string    `yaml:"bedrock_block"`
	StoneBlock        string    `yaml:"stone_block"`
	SurfaceBlock      string    `yaml:"surface_block"`
	SubsurfaceBlock   string    `yaml:"subsurface_block"`
	Lodes             []lodeDoc `yaml:"lodes"`
}

type lodeDoc struct {
	Name        string  `yaml:"name"`
	Block       string  `yaml:"block"`
	MinHeight   int     `yaml:"min_height"`
	MaxHeight   int     `yaml:"max_height"`
	Scale       float32 `yaml:"scale"`
	Threshold   float32 `yaml:"threshold"`
	NoiseOffset float32 `yaml:"noise_offset"`
}

// Default loads the embedded pack.
func Default() (*Pack, error) {
	return NewManager().LoadPack()
}

// LoadDir loads a pack with files in dir overriding the embedded defaults.
// An empty dir loads the defaults.
func LoadDir(dir string) (*Pack, error) {
	m := NewManager()
	if dir != "" {
		if err := m.AddDir(dir); err != nil {
			return nil, err
		}
	}
	return m.LoadPack()
}

// LoadPack reads and validates the block table and biome.
func (m *Manager) LoadPack() (*Pack, error) {
	data, err := m.Load(BlocksFile)
	if err != nil {
		return nil, err
	}
	blocks, atlas, err := ParseBlocks(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BlocksFile, err)
	}

	data, err = m.Load(BiomeFile)
	if err != nil {
		return nil, err
	}
	biome, err := ParseBiome(data, blocks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BiomeFile, err)
	}

	var img []byte
	for _, name := range []string{AtlasFile, AtlasBMP} {
		img, err = m.Load(name)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	return &Pack{Atlas: atlas, Blocks: blocks, Biome: biome, AtlasImage: img}, nil
}

// ParseBlocks decodes and validates a block table document.
func ParseBlocks(data []byte) (voxel.BlockTable, voxel.Atlas, error) {
	var doc blocksDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, voxel.Atlas{}, fmt.Errorf("parsing blocks: %w", err)
	}

	atlas := voxel.DefaultAtlas()
	if doc.AtlasSize != 0 {
		atlas.SizeInBlocks = doc.AtlasSize
	}

	seen := make(map[string]bool, len(doc.Blocks))
	table := make(voxel.BlockTable, 0, len(doc.Blocks))
	for i, b := range doc.Blocks {
		if seen[b.Name] {
			return nil, atlas, fmt.Errorf("block %d: %w: %q", i, ErrDuplicateBlock, b.Name)
		}
		seen[b.Name] = true

		bt := voxel.BlockType{Name: b.Name, Solid: b.Solid}
		switch {
		case b.Texture != nil && b.Textures != nil:
			return nil, atlas, fmt.Errorf("block %d (%q): %w", i, b.Name, ErrBlockTexture)
		case b.Texture != nil:
			bt.Textures = voxel.Uniform(*b.Texture)
		case b.Textures != nil:
			bt.Textures = *b.Textures
		}
		table = append(table, bt)
	}

	if err := table.Validate(atlas.SizeInBlocks); err != nil {
		return nil, atlas, err
	}
	return table, atlas, nil
}

// ParseBiome decodes a biome document and resolves its block names against table.
func ParseBiome(data []byte, table voxel.BlockTable) (Biome, error) {
	var doc biomeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Biome{}, fmt.Errorf("parsing biome: %w", err)
	}

	ids := make(map[string]voxel.BlockID, len(table))
	for i, bt := range table {
		ids[bt.Name] = voxel.BlockID(i)
	}

	layer := func(role, name string) (voxel.BlockID, error) {
		id, ok := ids[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s block %q not defined", ErrInvalidBiome, role, name)
		}
		if !table.IsSolid(id) {
			return 0, fmt.Errorf("%w: %s block %q is not solid", ErrInvalidBiome, role, name)
		}
		return id, nil
	}

	b := Biome{
		Name:              doc.Name,
		SolidGroundHeight: doc.SolidGroundHeight,
		TerrainHeight:     doc.TerrainHeight,
		TerrainScale:      doc.TerrainScale,
	}

	var err error
	if b.Bedrock, err = layer("bedrock", doc.BedrockBlock); err != nil {
		return Biome{}, err
	}
	if b.Stone, err = layer("stone", doc.StoneBlock); err != nil {
		return Biome{}, err
	}
	if b.Surface, err = layer("surface", doc.SurfaceBlock); err != nil {
		return Biome{}, err
	}
	if b.Subsurface, err = layer("subsurface", doc.SubsurfaceBlock); err != nil {
		return Biome{}, err
	}

	for i, l := range doc.Lodes {
		id, ok := ids[l.Block]
		if !ok {
			return Biome{}, fmt.Errorf("lode %d (%q): %w: block %q not defined", i, l.Name, ErrInvalidLode, l.Block)
		}
		b.Lodes = append(b.Lodes, Lode{
			Name:        l.Name,
			Block:       id,
			MinHeight:   l.MinHeight,
			MaxHeight:   l.MaxHeight,
			Scale:       l.Scale,
			Threshold:   l.Threshold,
			NoiseOffset: l.NoiseOffset,
		})
	}

	if err := b.Validate(); err != nil {
		return Biome{}, err
	}
	return b, nil
}

// Validate checks that the terrain fits in a chunk and lodes are well formed.
func (b Biome) Validate() error {
	if b.SolidGroundHeight < 1 {
		return fmt.Errorf("%w: solid_ground_height %d must be at least 1", ErrInvalidBiome, b.SolidGroundHeight)
	}
	if b.TerrainHeight < 0 {
		return fmt.Errorf("%w: terrain_height %d is negative", ErrInvalidBiome, b.TerrainHeight)
	}
	if top := b.SolidGroundHeight + b.TerrainHeight; top >= voxel.ChunkHeight {
		return fmt.Errorf("%w: terrain top %d reaches chunk height %d", ErrInvalidBiome, top, voxel.ChunkHeight)
	}
	if b.TerrainScale <= 0 {
		return fmt.Errorf("%w: terrain_scale must be positive", ErrInvalidBiome)
	}

	for i, l := range b.Lodes {
		if l.MinHeight < 0 || l.MaxHeight <= l.MinHeight {
			return fmt.Errorf("lode %d (%q): %w: height range (%d, %d)", i, l.Name, ErrInvalidLode, l.MinHeight, l.MaxHeight)
		}
		if l.Scale <= 0 {
			return fmt.Errorf("lode %d (%q): %w: scale must be positive", i, l.Name, ErrInvalidLode)
		}
	}
	return nil
}
