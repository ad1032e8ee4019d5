package voxel

import (
	"errors"
	"fmt"
)

// BlockID indexes a BlockTable. Zero is air.
type BlockID uint8

// Air is the empty block.
const Air BlockID = 0

// MaxBlockTypes is the number of distinct BlockID values.
const MaxBlockTypes = 256

// Block table errors.
var (
	ErrEmptyBlockTable    = errors.New("block table is empty")
	ErrTooManyBlockTypes  = errors.New("block table exceeds 256 entries")
	ErrAirSolid           = errors.New("block 0 must not be solid")
	ErrTextureOutOfRange  = errors.New("texture index outside atlas")
	ErrUnknownBlock       = errors.New("unknown block id")
	ErrInvalidAtlasSizing = errors.New("atlas size must be positive")
)

// FaceTextures holds an atlas texture index for each face of a block.
type FaceTextures struct {
	Back   int `yaml:"back"`
	Front  int `yaml:"front"`
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// ForFace returns the texture index for f.
func (t FaceTextures) ForFace(f Face) int {
	switch f {
	case FaceBack:
		return t.Back
	case FaceFront:
		return t.Front
	case FaceTop:
		return t.Top
	case FaceBottom:
		return t.Bottom
	case FaceLeft:
		return t.Left
	case FaceRight:
		return t.Right
	default:
		return 0
	}
}

// Uniform returns FaceTextures using the same texture on every face.
func Uniform(texture int) FaceTextures {
	return FaceTextures{texture, texture, texture, texture, texture, texture}
}

// BlockType describes how a block id behaves and looks.
type BlockType struct {
	Name     string       `yaml:"name"`
	Solid    bool         `yaml:"solid"`
	Textures FaceTextures `yaml:"textures"`
}

// TextureID returns the atlas index used on face f.
func (b BlockType) TextureID(f Face) int {
	return b.Textures.ForFace(f)
}

// BlockTable maps BlockID to BlockType by position.
type BlockTable []BlockType

// Lookup returns the type registered for id.
func (t BlockTable) Lookup(id BlockID) (BlockType, bool) {
	if int(id) >= len(t) {
		return BlockType{}, false
	}
	return t[id], true
}

// IsSolid reports whether id is a known solid block. Unknown ids are not solid.
func (t BlockTable) IsSolid(id BlockID) bool {
	bt, ok := t.Lookup(id)
	return ok && bt.Solid
}

// Validate checks the table against an atlas of atlasSize x atlasSize cells.
func (t BlockTable) Validate(atlasSize int) error {
	if atlasSize <= 0 {
		return ErrInvalidAtlasSizing
	}
	if len(t) == 0 {
		return ErrEmptyBlockTable
	}
	if len(t) > MaxBlockTypes {
		return fmt.Errorf("%w: %d", ErrTooManyBlockTypes, len(t))
	}
	if t[Air].Solid {
		return fmt.Errorf("%w (%q)", ErrAirSolid, t[Air].Name)
	}

	cells := atlasSize * atlasSize
	for id, bt := range t {
		for _, f := range Faces {
			tex := bt.TextureID(f)
			if tex < 0 || tex >= cells {
				return fmt.Errorf("block %d (%q) %s face: %w: %d not in [0,%d)",
					id, bt.Name, f, ErrTextureOutOfRange, tex, cells)
			}
		}
	}
	return nil
}
