package voxel

// Solidity answers whether the world voxel at integer coordinates is solid.
// Implementations must be safe for concurrent reads, must not block, and
// must answer false for regions they cannot resolve.
type Solidity interface {
	SolidAt(x, y, z int) bool
}

// SolidityFunc adapts a function to Solidity.
type SolidityFunc func(x, y, z int) bool

// SolidAt calls f.
func (f SolidityFunc) SolidAt(x, y, z int) bool {
	return f(x, y, z)
}

// Provider is the read side of a world: block ids by position plus the
// block type table.
type Provider interface {
	Solidity
	BlockAt(x, y, z int) (BlockID, bool)
	BlockType(id BlockID) (BlockType, bool)
}

// Empty is a Solidity with nothing in it.
var Empty Solidity = SolidityFunc(func(int, int, int) bool { return false })

// Filled is a Solidity that is solid everywhere.
var Filled Solidity = SolidityFunc(func(int, int, int) bool { return true })
