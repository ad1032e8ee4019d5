package voxel

import (
	"errors"
	"testing"
)

func TestChunkGrid_Bounds(t *testing.T) {
	g := NewChunkGrid(ChunkCoord{})

	if g.Len() != ChunkWidth*ChunkHeight*ChunkWidth {
		t.Errorf("expected %d cells, got %d", ChunkWidth*ChunkHeight*ChunkWidth, g.Len())
	}

	outside := [][3]int{
		{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		{ChunkWidth, 0, 0}, {0, ChunkHeight, 0}, {0, 0, ChunkWidth},
	}
	for _, p := range outside {
		if g.InBounds(p[0], p[1], p[2]) {
			t.Errorf("expected %v out of bounds", p)
		}
		if _, ok := g.Block(p[0], p[1], p[2]); ok {
			t.Errorf("expected Block(%v) to report out of bounds", p)
		}
		if g.SetBlock(p[0], p[1], p[2], 1) {
			t.Errorf("expected SetBlock(%v) to be rejected", p)
		}
	}
}

func TestChunkGrid_IndexLayout(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 4, 3)
	g.SetBlock(1, 2, 3, 9)

	// x + z*w + y*w*w
	idx := 1 + 3*4 + 2*4*4
	if g.Raw()[idx] != 9 {
		t.Errorf("expected block at flat index %d", idx)
	}
	if id, ok := g.Block(1, 2, 3); !ok || id != 9 {
		t.Errorf("expected (9, true), got (%d, %v)", id, ok)
	}
}

func TestChunkGrid_FillAndToWorld(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{X: 2, Z: -1}, 4, 2)
	g.Fill(func(x, y, z int) BlockID { return BlockID(x + y + z) })

	if id, _ := g.Block(3, 1, 2); id != 6 {
		t.Errorf("expected 6, got %d", id)
	}

	wx, wy, wz := g.ToWorld(1, 1, 1)
	if wx != 9 || wy != 1 || wz != -3 {
		t.Errorf("expected (9,1,-3), got (%d,%d,%d)", wx, wy, wz)
	}
}

func TestChunkGrid_LoadRaw(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 2, 2)

	if err := g.LoadRaw(make([]BlockID, 3)); !errors.Is(err, ErrGridSize) {
		t.Errorf("expected ErrGridSize, got %v", err)
	}

	data := []BlockID{1, 2, 3, 4, 5, 6, 7, 8}
	if err := g.LoadRaw(data); err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	data[0] = 99
	if id, _ := g.Block(0, 0, 0); id != 1 {
		t.Errorf("expected grid to keep its own copy, got %d", id)
	}
}

func TestChunkGrid_Validate(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 2, 2)
	g.SetBlock(1, 1, 0, 2)

	if err := g.Validate(testBlocks()); err != nil {
		t.Errorf("expected valid grid, got %v", err)
	}

	g.SetBlock(0, 1, 1, 5)
	if err := g.Validate(testBlocks()); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("expected ErrUnknownBlock, got %v", err)
	}

	if n := g.Count(testBlocks()); n != 1 {
		t.Errorf("expected 1 solid cell, got %d", n)
	}
}
